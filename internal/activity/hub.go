package activity

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"luciadash/internal/logging"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "luciadash",
		Subsystem: "activity",
		Name:      "events_total",
		Help:      "Live activity events consumed from the backend feed, by type.",
	}, []string{"type"})

	connStateGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "luciadash",
		Subsystem: "activity",
		Name:      "connection_state",
		Help:      "Upstream event feed connection state (1 for the current state).",
	}, []string{"state"})
)

// Broadcaster pushes updates out to connected dashboard clients. The
// server's SSE manager implements it.
type Broadcaster interface {
	Broadcast(event string, payload interface{})
}

// ActivityUpdate is the payload of an "activity" broadcast: the event
// that caused the change (absent for timer-driven changes) plus the
// full resulting view.
type ActivityUpdate struct {
	Event *LiveEvent `json:"event,omitempty"`
	Snapshot
}

// ConnectionUpdate is the payload of a "connection" broadcast.
type ConnectionUpdate struct {
	State ConnState `json:"state"`
}

// Hub owns the reducer and fans reduced state out to clients. One Run
// loop applies events strictly in arrival order.
type Hub struct {
	reducer     *Reducer
	broadcaster Broadcaster

	mu        sync.RWMutex
	connState ConnState
}

// NewHub creates a hub around a fresh reducer. Reducer options are
// passed through so tests can inject a manual scheduler.
func NewHub(b Broadcaster, opts ...Option) *Hub {
	h := &Hub{
		broadcaster: b,
		connState:   ConnReconnecting,
	}
	opts = append(opts, WithTransitionListener(h.broadcastSnapshot))
	h.reducer = NewReducer(opts...)
	connStateGauge.WithLabelValues(string(ConnReconnecting)).Set(1)
	return h
}

// Run consumes the stream's channels until the context ends or both
// channels close.
func (h *Hub) Run(ctx context.Context, events <-chan LiveEvent, states <-chan ConnState) {
	for events != nil || states != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			h.HandleEvent(ev)
		case st, ok := <-states:
			if !ok {
				states = nil
				continue
			}
			h.SetConnState(st)
		}
	}
}

// HandleEvent applies one event and broadcasts the resulting view.
func (h *Hub) HandleEvent(ev LiveEvent) {
	h.reducer.Apply(ev)
	eventsTotal.WithLabelValues(string(ev.Type)).Inc()

	if h.broadcaster != nil {
		snap := h.reducer.Snapshot()
		h.broadcaster.Broadcast("activity", ActivityUpdate{Event: &ev, Snapshot: snap})
	}
}

// SetConnState records the upstream feed state and tells clients.
func (h *Hub) SetConnState(state ConnState) {
	h.mu.Lock()
	prev := h.connState
	h.connState = state
	h.mu.Unlock()

	if prev == state {
		return
	}

	for _, s := range []ConnState{ConnConnected, ConnReconnecting, ConnDisconnected} {
		v := 0.0
		if s == state {
			v = 1.0
		}
		connStateGauge.WithLabelValues(string(s)).Set(v)
	}

	logging.Info("Activity feed %s", state)
	if h.broadcaster != nil {
		h.broadcaster.Broadcast("connection", ConnectionUpdate{State: state})
	}
}

// ConnState returns the current upstream feed state.
func (h *Hub) ConnState() ConnState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.connState
}

// Snapshot returns the current merged mesh view.
func (h *Hub) Snapshot() Snapshot {
	return h.reducer.Snapshot()
}

// History returns the bounded event history, oldest first.
func (h *Hub) History() []LiveEvent {
	return h.reducer.History()
}

// SetBaseTopology installs a freshly fetched mesh as the static layer.
func (h *Hub) SetBaseTopology(t Topology) {
	h.reducer.SetBaseTopology(t)
	h.broadcastSnapshot()
}

func (h *Hub) broadcastSnapshot() {
	if h.broadcaster == nil {
		return
	}
	h.broadcaster.Broadcast("activity", ActivityUpdate{Snapshot: h.reducer.Snapshot()})
}
