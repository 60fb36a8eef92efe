package controllers

import (
	"github.com/lintang-b-s/navroute/pkg/costfunction"
	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/engine/routing"
	"github.com/lintang-b-s/navroute/pkg/http/usecases"
)

type envelope map[string]any

type poseRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type computeRouteRequest struct {
	UsePoses   bool         `json:"use_poses"`
	StartId    uint32       `json:"start_id"`
	GoalId     uint32       `json:"goal_id"`
	Start      *poseRequest `json:"start" validate:"required_if=UsePoses true"`
	Goal       *poseRequest `json:"goal" validate:"required_if=UsePoses true"`
	BlockedIds []uint32     `json:"blocked_ids"`
}

func (r computeRouteRequest) toRouteRequest() routing.RouteRequest {
	req := routing.RouteRequest{
		UsePoses:   r.UsePoses,
		StartID:    da.Index(r.StartId),
		GoalID:     da.Index(r.GoalId),
		BlockedIDs: make([]da.Index, 0, len(r.BlockedIds)),
	}
	if r.Start != nil {
		req.Start = da.NewCoordinates(r.Start.X, r.Start.Y)
	}
	if r.Goal != nil {
		req.Goal = da.NewCoordinates(r.Goal.X, r.Goal.Y)
	}
	for _, id := range r.BlockedIds {
		req.BlockedIDs = append(req.BlockedIDs, da.Index(id))
	}
	return req
}

type computeRouteResponse struct {
	RouteId   string     `json:"route_id"`
	Cost      float64    `json:"cost"`
	StartNode da.Index   `json:"start_node"`
	EdgeIds   []da.Index `json:"edges"`
	NodeIds   []da.Index `json:"nodes"`
	Path      string     `json:"path"`
}

func NewComputeRouteResponse(res usecases.RouteResult) computeRouteResponse {
	return computeRouteResponse{
		RouteId:   res.RouteId,
		Cost:      res.Cost,
		StartNode: res.StartNode,
		EdgeIds:   res.EdgeIds,
		NodeIds:   res.NodeIds,
		Path:      res.Path,
	}
}

type edgeCostAdjustmentRequest struct {
	EdgeId uint32  `json:"edgeid"`
	Cost   float64 `json:"cost" validate:"gte=0"`
}

type adjustEdgesRequest struct {
	ClosedEdges []uint32                    `json:"closed_edges"`
	OpenedEdges []uint32                    `json:"opened_edges"`
	AdjustEdges []edgeCostAdjustmentRequest `json:"adjust_edges" validate:"dive"`
}

func (r adjustEdgesRequest) toAdjustEdgesRequest() costfunction.AdjustEdgesRequest {
	req := costfunction.AdjustEdgesRequest{
		ClosedEdges: make([]da.Index, 0, len(r.ClosedEdges)),
		OpenedEdges: make([]da.Index, 0, len(r.OpenedEdges)),
		AdjustEdges: make([]costfunction.EdgeCostAdjustment, 0, len(r.AdjustEdges)),
	}
	for _, id := range r.ClosedEdges {
		req.ClosedEdges = append(req.ClosedEdges, da.Index(id))
	}
	for _, id := range r.OpenedEdges {
		req.OpenedEdges = append(req.OpenedEdges, da.Index(id))
	}
	for _, adj := range r.AdjustEdges {
		req.AdjustEdges = append(req.AdjustEdges, costfunction.EdgeCostAdjustment{EdgeId: da.Index(adj.EdgeId), Cost: adj.Cost})
	}
	return req
}

type adjustEdgesResponse struct {
	Success bool `json:"success"`
}

type costmapRequest struct {
	SizeX      uint32  `json:"size_x" validate:"required,gt=0"`
	SizeY      uint32  `json:"size_y" validate:"required,gt=0"`
	Resolution float64 `json:"resolution" validate:"required,gt=0"`
	OriginX    float64 `json:"origin_x"`
	OriginY    float64 `json:"origin_y"`
	Data       []int   `json:"data" validate:"dive,min=0,max=255"`
}

func (r costmapRequest) cells() []uint8 {
	if len(r.Data) == 0 {
		return nil
	}
	data := make([]uint8, len(r.Data))
	for i, v := range r.Data {
		data[i] = uint8(v)
	}
	return data
}

type checkCollisionRequest struct {
	CurrEdgeId uint32      `json:"curr_edge_id"`
	RouteEdges []uint32    `json:"route_edge_ids" validate:"required,min=1"`
	Pose       poseRequest `json:"pose"`
}

func (r checkCollisionRequest) routeEdgeIds() []da.Index {
	ids := make([]da.Index, 0, len(r.RouteEdges))
	for _, id := range r.RouteEdges {
		ids = append(ids, da.Index(id))
	}
	return ids
}

type checkCollisionResponse struct {
	Reroute    bool       `json:"reroute"`
	BlockedIds []da.Index `json:"blocked_ids"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
