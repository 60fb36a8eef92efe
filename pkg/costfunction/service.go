package costfunction

import (
	"fmt"
	"sort"
	"sync"

	da "github.com/lintang-b-s/navroute/pkg/datastructure"
)

type EdgeCostAdjustment struct {
	EdgeId da.Index `json:"edgeid"`
	Cost   float64  `json:"cost"`
}

// AdjustEdgesRequest closes, reopens and re-costs edges. applied atomically.
type AdjustEdgesRequest struct {
	ClosedEdges []da.Index           `json:"closed_edges"`
	OpenedEdges []da.Index           `json:"opened_edges"`
	AdjustEdges []EdgeCostAdjustment `json:"adjust_edges"`
}

type AdjustEdgesResponse struct {
	Success bool `json:"success"`
}

type EdgeAdjuster interface {
	AdjustEdges(req AdjustEdgesRequest) AdjustEdgesResponse
}

// ServiceRegistrar lets plugins expose request channels at configure time
type ServiceRegistrar interface {
	RegisterEdgeAdjuster(name string, adjuster EdgeAdjuster) error
}

// ServiceRegistry name -> edge adjuster, looked up by the transport layer
type ServiceRegistry struct {
	mu        sync.RWMutex
	adjusters map[string]EdgeAdjuster
}

func NewServiceRegistry() *ServiceRegistry {
	return &ServiceRegistry{adjusters: make(map[string]EdgeAdjuster)}
}

func (r *ServiceRegistry) RegisterEdgeAdjuster(name string, adjuster EdgeAdjuster) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adjusters[name]; ok {
		return fmt.Errorf("%w: edge adjuster %q already registered", ErrConfiguration, name)
	}
	r.adjusters[name] = adjuster
	return nil
}

func (r *ServiceRegistry) GetEdgeAdjuster(name string) (EdgeAdjuster, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adjusters[name]
	return a, ok
}

func (r *ServiceRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adjusters))
	for n := range r.adjusters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
