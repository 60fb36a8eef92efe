package routing

import (
	"errors"

	da "github.com/lintang-b-s/navroute/pkg/datastructure"
)

var (
	// ErrInvalidGraph empty graph, out of range node, or a zero static cost on an edge that cannot be scored
	ErrInvalidGraph = da.ErrInvalidGraph
	// ErrNoRouteFound goal unreachable under the current blocks and scores
	ErrNoRouteFound = errors.New("could not find a route to the requested goal")
	// ErrSearchTimedOut iteration cap exceeded
	ErrSearchTimedOut = errors.New("maximum iterations was exceeded")
	// ErrIndeterminateNodes start or goal pose cannot be matched to a graph node
	ErrIndeterminateNodes = errors.New("could not determine start or goal node")
)
