package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	helper "github.com/lintang-b-s/navroute/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/navroute/pkg/util"
	"go.uber.org/zap"
)

type routingAPI struct {
	routingService RoutingService
	log            *zap.Logger
}

func New(routingService RoutingService, log *zap.Logger) *routingAPI {
	return &routingAPI{
		routingService: routingService,
		log:            log,
	}
}

func (api *routingAPI) Routes(group *helper.RouteGroup) {
	group.GET("/computeRoute", api.computeRouteByIds)
	group.POST("/computeRoute", api.computeRoute)
	group.POST("/scorers/:name/adjustEdges", api.adjustEdges)
	group.PUT("/costmaps/*topic", api.publishCostmap)
	group.POST("/checkCollision", api.checkCollision)
}

func (api *routingAPI) computeRouteByIds(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request computeRouteRequest

	query := r.URL.Query()

	startId, err := strconv.ParseUint(query.Get("start_id"), 10, 32)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("start_id is required and must be a valid unsigned int"))
		return
	}
	goalId, err := strconv.ParseUint(query.Get("goal_id"), 10, 32)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("goal_id is required and must be a valid unsigned int"))
		return
	}
	blocked, err := util.ParseIndexList(query.Get("blocked_ids"))
	if err != nil {
		api.BadRequestResponse(w, r, fmt.Errorf("blocked_ids must be a comma separated list of ids: %w", err))
		return
	}

	request.StartId = uint32(startId)
	request.GoalId = uint32(goalId)
	request.BlockedIds = blocked

	api.serveRoute(w, r, request)
}

func (api *routingAPI) computeRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request computeRouteRequest
	if !api.decodeJSON(w, r, &request) {
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	api.serveRoute(w, r, request)
}

func (api *routingAPI) serveRoute(w http.ResponseWriter, r *http.Request, request computeRouteRequest) {
	res, err := api.routingService.ComputeRoute(r.Context(), request.toRouteRequest())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewComputeRouteResponse(res)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) adjustEdges(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request adjustEdgesRequest
	if !api.decodeJSON(w, r, &request) {
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	resp, err := api.routingService.AdjustEdges(r.Context(), p.ByName("name"), request.toAdjustEdgesRequest())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": adjustEdgesResponse{Success: resp.Success}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) publishCostmap(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	topic := strings.Trim(p.ByName("topic"), "/")
	if topic == "" {
		api.BadRequestResponse(w, r, errors.New("costmap topic is required"))
		return
	}

	var request costmapRequest
	if !api.decodeJSON(w, r, &request) {
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	err := api.routingService.PublishCostmap(r.Context(), topic, request.SizeX, request.SizeY, request.Resolution,
		request.OriginX, request.OriginY, request.cells())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": map[string]string{"topic": topic}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) checkCollision(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request checkCollisionRequest
	if !api.decodeJSON(w, r, &request) {
		return
	}
	if err := validateRequest(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	res, err := api.routingService.CheckCollision(r.Context(), da.Index(request.CurrEdgeId), request.routeEdgeIds(),
		da.NewCoordinates(request.Pose.X, request.Pose.Y))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	blocked := res.BlockedIDs
	if blocked == nil {
		blocked = []da.Index{}
	}
	if err := api.writeJSON(w, http.StatusOK, envelope{"data": checkCollisionResponse{Reroute: res.Reroute,
		BlockedIds: blocked}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *routingAPI) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.BadRequestResponse(w, r, err)
		return false
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return false
	}
	return true
}

func validateRequest(request any) error {
	validate := validator.New()
	err := validate.Struct(request)
	if err == nil {
		return nil
	}
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)
	vv := translateError(err, trans)
	vvString := []string{}
	for _, v := range vv {
		vvString = append(vvString, v.Error())
	}
	return fmt.Errorf("validation error: %v", vvString)
}
