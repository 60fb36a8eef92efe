package datastructure

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

type pendingEdge struct {
	edgeId, startId, endId Index
	edgeCost               EdgeCost
	metadata               Metadata
}

// ReadGeoJSONGraph reads a route graph from a geojson FeatureCollection.
// Point features are nodes {id, metadata}; LineString/MultiLineString features are edges
// {id, startid, endid, cost?, overridable?, metadata}.
func ReadGeoJSONGraph(filePath string) (*Graph, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", filePath, err)
	}
	return ParseGeoJSONGraph(data)
}

func ParseGeoJSONGraph(data []byte) (*Graph, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse geojson: %v", ErrInvalidGraph, err)
	}

	numNodes := 0
	for _, f := range fc.Features {
		if _, ok := f.Geometry.(orb.Point); ok {
			numNodes++
		}
	}

	g := NewGraphWithSize(numNodes, len(fc.Features)-numNodes)
	edges := make([]pendingEdge, 0, len(fc.Features)-numNodes)

	// nodes first, edges can reference nodes declared later in the file
	for i, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Point:
			nodeId, err := propIndex(f.Properties, "id")
			if err != nil {
				return nil, fmt.Errorf("%w: feature %d: %v", ErrInvalidGraph, i, err)
			}
			if _, err := g.AddNode(nodeId, NewCoordinates(geom[0], geom[1]), propMetadata(f.Properties)); err != nil {
				return nil, err
			}
		case orb.LineString, orb.MultiLineString:
			pe, err := parseEdgeFeature(f)
			if err != nil {
				return nil, fmt.Errorf("%w: feature %d: %v", ErrInvalidGraph, i, err)
			}
			edges = append(edges, pe)
		case nil:
			return nil, fmt.Errorf("%w: feature %d has no geometry", ErrInvalidGraph, i)
		default:
			return nil, fmt.Errorf("%w: feature %d: unsupported geometry %q", ErrInvalidGraph, i, f.Geometry.GeoJSONType())
		}
	}

	for _, pe := range edges {
		start, ok := g.IndexOf(pe.startId)
		if !ok {
			return nil, fmt.Errorf("%w: edge %d starts at unknown node %d", ErrInvalidGraph, pe.edgeId, pe.startId)
		}
		end, ok := g.IndexOf(pe.endId)
		if !ok {
			return nil, fmt.Errorf("%w: edge %d ends at unknown node %d", ErrInvalidGraph, pe.edgeId, pe.endId)
		}
		if _, err := g.AddEdge(pe.edgeId, start, end, pe.edgeCost, pe.metadata); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func parseEdgeFeature(f *geojson.Feature) (pendingEdge, error) {
	edgeId, err := propIndex(f.Properties, "id")
	if err != nil {
		return pendingEdge{}, err
	}
	startId, err := propIndex(f.Properties, "startid")
	if err != nil {
		return pendingEdge{}, err
	}
	endId, err := propIndex(f.Properties, "endid")
	if err != nil {
		return pendingEdge{}, err
	}

	// edge without static cost must be scored by the plugins
	edgeCost := NewEdgeCost(0, true)
	if _, ok := f.Properties["cost"]; ok {
		edgeCost.Cost = f.Properties.MustFloat64("cost", 0)
		edgeCost.Overridable = false
	}
	if _, ok := f.Properties["overridable"]; ok {
		edgeCost.Overridable = f.Properties.MustBool("overridable", edgeCost.Overridable)
	}

	return pendingEdge{
		edgeId:   edgeId,
		startId:  startId,
		endId:    endId,
		edgeCost: edgeCost,
		metadata: propMetadata(f.Properties),
	}, nil
}

func propIndex(props geojson.Properties, key string) (Index, error) {
	v, ok := props[key]
	if !ok {
		return 0, fmt.Errorf("missing property %q", key)
	}
	switch n := v.(type) {
	case float64:
		if n < 0 || n > math.MaxUint32-1 || n != math.Trunc(n) {
			return 0, fmt.Errorf("property %q is not a valid id: %v", key, n)
		}
		return Index(n), nil
	case string:
		return ParseIndex(n)
	}
	return 0, fmt.Errorf("property %q has unsupported type %T", key, v)
}

func propMetadata(props geojson.Properties) Metadata {
	raw, ok := props["metadata"].(map[string]interface{})
	if !ok {
		return Metadata{}
	}
	md := make(Metadata, len(raw))
	for k, v := range raw {
		md[k] = v
	}
	return md
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u >= math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}
