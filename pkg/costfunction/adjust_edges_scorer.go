package costfunction

import (
	"sync"
	"sync/atomic"

	da "github.com/lintang-b-s/navroute/pkg/datastructure"
	"github.com/lintang-b-s/navroute/pkg/metrics"
	"go.uber.org/zap"
)

const AdjustEdgesScorerType = "AdjustEdgesScorer"

type adjustState struct {
	closed    map[da.Index]struct{}
	penalties map[da.Index]float64
}

func (st *adjustState) clone() *adjustState {
	next := &adjustState{
		closed:    make(map[da.Index]struct{}, len(st.closed)),
		penalties: make(map[da.Index]float64, len(st.penalties)),
	}
	for e := range st.closed {
		next.closed[e] = struct{}{}
	}
	for e, c := range st.penalties {
		next.penalties[e] = c
	}
	return next
}

// AdjustEdgesScorer closes edges and overrides edge costs at runtime.
// state is copy on write: AdjustEdges builds a new state and swaps it in, so a search never sees a half applied request.
type AdjustEdgesScorer struct {
	name   string
	logger *zap.Logger

	mu       sync.Mutex // serializes writers
	state    atomic.Pointer[adjustState]
	snapshot *adjustState // pinned by Prepare for the duration of one search
}

func NewAdjustEdgesScorer() *AdjustEdgesScorer {
	s := &AdjustEdgesScorer{logger: zap.NewNop()}
	s.state.Store(&adjustState{
		closed:    make(map[da.Index]struct{}),
		penalties: make(map[da.Index]float64),
	})
	return s
}

func (s *AdjustEdgesScorer) Configure(pc PluginContext, name string) error {
	s.name = name
	s.logger = pc.logger()
	s.logger.Info("configuring adjust edges scorer")

	s.state.Store(&adjustState{
		closed:    make(map[da.Index]struct{}),
		penalties: make(map[da.Index]float64),
	})
	s.snapshot = nil

	if pc.Services != nil {
		return pc.Services.RegisterEdgeAdjuster(name, s)
	}
	return nil
}

// AdjustEdges adds closed edges, removes reopened ones, then installs cost overrides.
func (s *AdjustEdgesScorer) AdjustEdges(req AdjustEdgesRequest) AdjustEdgesResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("edge closure and cost adjustment in progress",
		zap.Int("closed", len(req.ClosedEdges)),
		zap.Int("opened", len(req.OpenedEdges)),
		zap.Int("adjusted", len(req.AdjustEdges)))

	next := s.state.Load().clone()
	for _, e := range req.ClosedEdges {
		next.closed[e] = struct{}{}
	}
	for _, e := range req.OpenedEdges {
		delete(next.closed, e)
	}
	for _, adj := range req.AdjustEdges {
		next.penalties[adj.EdgeId] = adj.Cost
	}
	s.state.Store(next)
	metrics.EdgeAdjustments.Inc()

	return AdjustEdgesResponse{Success: true}
}

func (s *AdjustEdgesScorer) Prepare() {
	s.snapshot = s.state.Load()
}

func (s *AdjustEdgesScorer) Score(e EdgeAttributes, cost float64) (float64, bool) {
	st := s.snapshot
	if st == nil {
		st = s.state.Load()
	}

	if _, closed := st.closed[e.GetEdgeId()]; closed {
		return cost, false
	}
	if penalty, ok := st.penalties[e.GetEdgeId()]; ok {
		return penalty, true
	}
	return cost, true
}

func (s *AdjustEdgesScorer) Name() string {
	return s.name
}

func (s *AdjustEdgesScorer) IsClosed(edgeId da.Index) bool {
	_, ok := s.state.Load().closed[edgeId]
	return ok
}
