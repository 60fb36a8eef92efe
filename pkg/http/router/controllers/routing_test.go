package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/operations"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	helper "github.com/lintang-b-s/navroute/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/navroute/pkg/http/usecases"
	"github.com/lintang-b-s/navroute/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeRoutingService struct {
	routeReq    routing.RouteRequest
	routeErr    error
	adjustName  string
	adjustReq   costfunction.AdjustEdgesRequest
	adjustErr   error
	topic       string
	cells       []uint8
	publishErr  error
	collisionOn da.Index
	collision   operations.OperationResult
}

func (f *fakeRoutingService) ComputeRoute(ctx context.Context, req routing.RouteRequest) (usecases.RouteResult, error) {
	f.routeReq = req
	if f.routeErr != nil {
		return usecases.RouteResult{}, f.routeErr
	}
	return usecases.RouteResult{
		RouteId:   "route-1",
		Cost:      2,
		StartNode: req.StartID,
		EdgeIds:   []da.Index{12, 23},
		NodeIds:   []da.Index{1, 2, 3},
		Path:      "??",
	}, nil
}

func (f *fakeRoutingService) AdjustEdges(ctx context.Context, name string,
	req costfunction.AdjustEdgesRequest) (costfunction.AdjustEdgesResponse, error) {
	f.adjustName = name
	f.adjustReq = req
	if f.adjustErr != nil {
		return costfunction.AdjustEdgesResponse{}, f.adjustErr
	}
	return costfunction.AdjustEdgesResponse{Success: true}, nil
}

func (f *fakeRoutingService) PublishCostmap(ctx context.Context, topic string, sizeX, sizeY uint32, resolution,
	originX, originY float64, data []uint8) error {
	f.topic = topic
	f.cells = data
	return f.publishErr
}

func (f *fakeRoutingService) CheckCollision(ctx context.Context, currEdgeId da.Index, routeEdgeIds []da.Index,
	pose da.Coordinates) (operations.OperationResult, error) {
	f.collisionOn = currEdgeId
	return f.collision, nil
}

func newTestRouter(t *testing.T, svc RoutingService) *httprouter.Router {
	t.Helper()
	router := httprouter.New()
	New(svc, zaptest.NewLogger(t)).Routes(helper.NewRouteGroup(router, "/api"))
	return router
}

func serve(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var body struct {
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestComputeRouteByIds(t *testing.T) {
	svc := &fakeRoutingService{}
	router := newTestRouter(t, svc)

	rec := serve(router, http.MethodGet, "/api/computeRoute?start_id=1&goal_id=3&blocked_ids=5,6", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	resp := decodeData[computeRouteResponse](t, rec)
	assert.Equal(t, "route-1", resp.RouteId)
	assert.Equal(t, []da.Index{12, 23}, resp.EdgeIds)
	assert.Equal(t, []da.Index{1, 2, 3}, resp.NodeIds)

	assert.False(t, svc.routeReq.UsePoses)
	assert.Equal(t, da.Index(1), svc.routeReq.StartID)
	assert.Equal(t, da.Index(3), svc.routeReq.GoalID)
	assert.Equal(t, []da.Index{5, 6}, svc.routeReq.BlockedIDs)
}

func TestComputeRouteBadQuery(t *testing.T) {
	router := newTestRouter(t, &fakeRoutingService{})

	tests := []struct {
		name   string
		target string
	}{
		{"missing start", "/api/computeRoute?goal_id=3"},
		{"negative goal", "/api/computeRoute?start_id=1&goal_id=-3"},
		{"bad blocked list", "/api/computeRoute?start_id=1&goal_id=3&blocked_ids=1,x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(router, http.MethodGet, tt.target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "bad_request", decodeError(t, rec).Error.Code)
		})
	}
}

func TestComputeRoutePoses(t *testing.T) {
	svc := &fakeRoutingService{}
	router := newTestRouter(t, svc)

	rec := serve(router, http.MethodPost, "/api/computeRoute",
		`{"use_poses":true,"start":{"x":0.5,"y":1},"goal":{"x":4,"y":2},"blocked_ids":[7]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, svc.routeReq.UsePoses)
	assert.Equal(t, da.NewCoordinates(0.5, 1), svc.routeReq.Start)
	assert.Equal(t, da.NewCoordinates(4, 2), svc.routeReq.Goal)
	assert.Equal(t, []da.Index{7}, svc.routeReq.BlockedIDs)

	rec = serve(router, http.MethodPost, "/api/computeRoute", `{"use_poses":true,"start":{"x":0.5,"y":1}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPost, "/api/computeRoute", `{"use_poses":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComputeRouteErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", util.WrapErrorf(routing.ErrNoRouteFound, util.ErrNotFound, "no route"), http.StatusNotFound, "not_found"},
		{"timeout", util.WrapErrorf(routing.ErrSearchTimedOut, util.ErrTimeout, "timed out"), http.StatusGatewayTimeout, "timeout"},
		{"bad input", util.WrapErrorf(routing.ErrIndeterminateNodes, util.ErrBadParamInput, "bad pose"), http.StatusBadRequest, "bad_request"},
		{"conflict", util.WrapErrorf(operations.ErrOperationFailed, util.ErrConflict, "no costmap"), http.StatusConflict, "conflict"},
		{"internal", routing.ErrInvalidGraph, http.StatusInternalServerError, "internal_server_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &fakeRoutingService{routeErr: tt.err})
			rec := serve(router, http.MethodGet, "/api/computeRoute?start_id=1&goal_id=3", "")
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.code, resp.Error.Code)
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, util.MessageInternalServerError, resp.Error.Message)
			}
		})
	}
}

func TestAdjustEdgesEndpoint(t *testing.T) {
	svc := &fakeRoutingService{}
	router := newTestRouter(t, svc)

	rec := serve(router, http.MethodPost, "/api/scorers/closures/adjustEdges",
		`{"closed_edges":[1,2],"opened_edges":[3],"adjust_edges":[{"edgeid":4,"cost":9.5}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeData[adjustEdgesResponse](t, rec).Success)

	assert.Equal(t, "closures", svc.adjustName)
	assert.Equal(t, []da.Index{1, 2}, svc.adjustReq.ClosedEdges)
	assert.Equal(t, []da.Index{3}, svc.adjustReq.OpenedEdges)
	assert.Equal(t, []costfunction.EdgeCostAdjustment{{EdgeId: 4, Cost: 9.5}}, svc.adjustReq.AdjustEdges)

	rec = serve(router, http.MethodPost, "/api/scorers/closures/adjustEdges", `{"adjust_edges":[{"edgeid":4,"cost":-1}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.adjustErr = util.WrapErrorf(nil, util.ErrNotFound, "no adjuster")
	rec = serve(router, http.MethodPost, "/api/scorers/missing/adjustEdges", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPublishCostmapEndpoint(t *testing.T) {
	svc := &fakeRoutingService{}
	router := newTestRouter(t, svc)

	rec := serve(router, http.MethodPut, "/api/costmaps/local_costmap/costmap_raw",
		`{"size_x":2,"size_y":1,"resolution":0.5,"data":[0,254]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "local_costmap/costmap_raw", svc.topic)
	assert.Equal(t, []uint8{0, 254}, svc.cells)

	rec = serve(router, http.MethodPut, "/api/costmaps/local", `{"size_x":2,"size_y":1,"resolution":0.5,"data":[0,300]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, http.MethodPut, "/api/costmaps/local", `{"size_x":2,"size_y":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckCollisionEndpoint(t *testing.T) {
	svc := &fakeRoutingService{collision: operations.OperationResult{Reroute: true, BlockedIDs: []da.Index{23}}}
	router := newTestRouter(t, svc)

	rec := serve(router, http.MethodPost, "/api/checkCollision",
		`{"curr_edge_id":12,"route_edge_ids":[12,23],"pose":{"x":0.5,"y":0.5}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeData[checkCollisionResponse](t, rec)
	assert.True(t, resp.Reroute)
	assert.Equal(t, []da.Index{23}, resp.BlockedIds)
	assert.Equal(t, da.Index(12), svc.collisionOn)

	svc.collision = operations.OperationResult{}
	rec = serve(router, http.MethodPost, "/api/checkCollision", `{"curr_edge_id":12,"route_edge_ids":[12]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []da.Index{}, decodeData[checkCollisionResponse](t, rec).BlockedIds)

	rec = serve(router, http.MethodPost, "/api/checkCollision", `{"curr_edge_id":12,"route_edge_ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
