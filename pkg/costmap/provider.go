package costmap

import (
	"sort"
	"sync"
)

// Provider source of the latest costmap snapshot
type Provider interface {
	GetCostmap() (*Costmap, error)
}

// Subscriber keeps the most recently published costmap of one topic.
// readers get the snapshot pointer, a published costmap must not be mutated afterwards.
type Subscriber struct {
	mu      sync.RWMutex
	topic   string
	costmap *Costmap
	updates uint64
}

func NewSubscriber(topic string) *Subscriber {
	return &Subscriber{topic: topic}
}

func (s *Subscriber) Topic() string {
	return s.topic
}

func (s *Subscriber) Publish(cm *Costmap) {
	s.mu.Lock()
	s.costmap = cm
	s.updates++
	s.mu.Unlock()
}

func (s *Subscriber) GetCostmap() (*Costmap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.costmap == nil {
		return nil, ErrNoCostmap
	}
	return s.costmap, nil
}

func (s *Subscriber) Updates() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updates
}

// Hub topic -> subscriber. subscribers are created on first use so that publishers
// and consumers can be wired in any order.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]*Subscriber
	onPublish   func(topic string)
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]*Subscriber)}
}

// OnPublish registers a hook called after every Publish (metrics).
func (h *Hub) OnPublish(fn func(topic string)) {
	h.mu.Lock()
	h.onPublish = fn
	h.mu.Unlock()
}

func (h *Hub) Subscribe(topic string) *Subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subscribers[topic]
	if !ok {
		sub = NewSubscriber(topic)
		h.subscribers[topic] = sub
	}
	return sub
}

func (h *Hub) Publish(topic string, cm *Costmap) {
	sub := h.Subscribe(topic)
	sub.Publish(cm)

	h.mu.Lock()
	fn := h.onPublish
	h.mu.Unlock()
	if fn != nil {
		fn(topic)
	}
}

func (h *Hub) Topics() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	topics := make([]string, 0, len(h.subscribers))
	for t := range h.subscribers {
		topics = append(topics, t)
	}
	sort.Strings(topics)
	return topics
}
