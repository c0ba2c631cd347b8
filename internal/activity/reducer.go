package activity

import (
	"sync"
	"time"
)

// HistoryLimit is how many events the reducer keeps, oldest first out.
const HistoryLimit = 100

// Deferred transition delays. An agent that finished generating fades
// back to idle after AgentIdleDelay; a completed request tears the
// whole view down after RequestClearDelay.
const (
	AgentIdleDelay    = 2000 * time.Millisecond
	RequestClearDelay = 3000 * time.Millisecond
)

// Scheduler defers reducer transitions. The production scheduler wraps
// time.AfterFunc; tests substitute a manual one so nothing sleeps.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) (cancel func() bool)
}

type timerScheduler struct{}

func (timerScheduler) Schedule(d time.Duration, fn func()) func() bool {
	t := time.AfterFunc(d, fn)
	return t.Stop
}

// Option configures a Reducer.
type Option func(*Reducer)

// WithScheduler replaces the deferred-transition scheduler.
func WithScheduler(s Scheduler) Option {
	return func(r *Reducer) { r.scheduler = s }
}

// WithHistoryLimit overrides the event history capacity.
func WithHistoryLimit(n int) Option {
	return func(r *Reducer) {
		if n > 0 {
			r.historyLimit = n
		}
	}
}

// WithTransitionListener registers a callback invoked after a deferred
// transition fires. Apply-driven changes are visible to the caller of
// Apply already; the listener exists so timer-driven changes reach the
// broadcast path too.
func WithTransitionListener(fn func()) Option {
	return func(r *Reducer) { r.onTransition = fn }
}

// Snapshot is a self-contained copy of the current mesh view.
type Snapshot struct {
	NodeStates map[string]NodeState `json:"nodeStates"`
	Topology   Topology             `json:"topology"`
}

// Reducer folds the live event feed into node states and an ephemeral
// tool topology. All methods are safe for concurrent use.
type Reducer struct {
	mu sync.Mutex

	history      []LiveEvent
	historyLimit int

	nodeStates map[string]NodeState
	// generations count writes per node so a deferred idle fade can
	// tell whether the node was touched after it was scheduled.
	generations map[string]uint64

	// base is the static topology from the backend; overlay holds the
	// synthetic tool nodes derived from toolCall events. The two layers
	// stay separate so a bulk overlay clear can never corrupt base.
	base         Topology
	overlayNodes map[string]Node
	overlayOrder []string
	overlayEdges map[Edge]struct{}
	edgeOrder    []Edge

	scheduler    Scheduler
	cancelClear  func() bool
	onTransition func()
}

// NewReducer returns an empty reducer.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		historyLimit: HistoryLimit,
		nodeStates:   make(map[string]NodeState),
		generations:  make(map[string]uint64),
		overlayNodes: make(map[string]Node),
		overlayEdges: make(map[Edge]struct{}),
		scheduler:    timerScheduler{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetBaseTopology replaces the static topology layer. The tool overlay
// survives so a background mesh refresh does not drop live activity.
func (r *Reducer) SetBaseTopology(t Topology) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.base = t.Clone()
}

// Apply folds one event into the view. Every event lands in history,
// whatever its type; events missing the fields their type needs change
// no state beyond that.
func (r *Reducer) Apply(ev LiveEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.appendHistory(ev)

	switch ev.Type {
	case EventRequestStart:
		// A new request supersedes a pending teardown from the
		// previous one.
		r.stopClearTimer()
		r.setNodeState(OrchestratorID, NodeState{State: StateProcessing, Active: true})

	case EventRouting:
		r.setNodeState(OrchestratorID, NodeState{State: StateRouting, Active: true})

	case EventAgentStart:
		if ev.AgentName == "" {
			return
		}
		r.setNodeState(ev.AgentName, NodeState{State: StateWorking, Active: true})

	case EventToolCall:
		if ev.AgentName == "" || ev.ToolName == "" {
			return
		}
		id := ToolNodeID(ev.AgentName, ev.ToolName)
		r.addToolNode(id, ev.ToolName, ev.AgentName)
		r.setNodeState(id, NodeState{State: StateWorking, Active: true})

	case EventToolResult:
		if ev.AgentName == "" || ev.ToolName == "" {
			return
		}
		id := ToolNodeID(ev.AgentName, ev.ToolName)
		r.setNodeState(id, NodeState{State: StateIdle, Active: false})

	case EventAgentComplete:
		if ev.AgentName == "" {
			return
		}
		name := ev.AgentName
		r.setNodeState(name, NodeState{State: StateGenerating, Active: true})
		gen := r.generations[name]
		r.scheduler.Schedule(AgentIdleDelay, func() {
			r.fadeToIdle(name, gen)
		})

	case EventRequestComplete:
		r.setNodeState(OrchestratorID, NodeState{State: StateIdle, Active: false})
		r.stopClearTimer()
		r.cancelClear = r.scheduler.Schedule(RequestClearDelay, r.clearAll)

	case EventError:
		name := ev.AgentName
		if name == "" {
			name = OrchestratorID
		}
		r.setNodeState(name, NodeState{State: StateError, Active: false})
	}
}

// History returns a copy of the bounded event history, oldest first.
func (r *Reducer) History() []LiveEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]LiveEvent, len(r.history))
	copy(out, r.history)
	return out
}

// NodeStates returns a copy of the node-state map.
func (r *Reducer) NodeStates() map[string]NodeState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.copyStates()
}

// Snapshot merges the base topology with the tool overlay and pairs it
// with the current node states.
func (r *Reducer) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	topo := r.base.Clone()
	for _, id := range r.overlayOrder {
		topo.Nodes = append(topo.Nodes, r.overlayNodes[id])
	}
	topo.Edges = append(topo.Edges, r.edgeOrder...)
	if topo.Nodes == nil {
		topo.Nodes = []Node{}
	}
	if topo.Edges == nil {
		topo.Edges = []Edge{}
	}

	return Snapshot{
		NodeStates: r.copyStates(),
		Topology:   topo,
	}
}

func (r *Reducer) appendHistory(ev LiveEvent) {
	r.history = append(r.history, ev)
	if len(r.history) > r.historyLimit {
		r.history = r.history[len(r.history)-r.historyLimit:]
	}
}

func (r *Reducer) setNodeState(id string, state NodeState) {
	r.nodeStates[id] = state
	r.generations[id]++
}

func (r *Reducer) copyStates() map[string]NodeState {
	out := make(map[string]NodeState, len(r.nodeStates))
	for k, v := range r.nodeStates {
		out[k] = v
	}
	return out
}

// addToolNode adds the synthetic tool node and its edge, once. Repeated
// toolCall events for the same agent/tool pair are no-ops here.
func (r *Reducer) addToolNode(id, label, agentName string) {
	if _, exists := r.overlayNodes[id]; !exists {
		r.overlayNodes[id] = Node{ID: id, Label: label, NodeType: NodeTypeTool}
		r.overlayOrder = append(r.overlayOrder, id)
	}
	edge := Edge{Source: agentName, Target: id}
	if _, exists := r.overlayEdges[edge]; !exists {
		r.overlayEdges[edge] = struct{}{}
		r.edgeOrder = append(r.edgeOrder, edge)
	}
}

// fadeToIdle is the deferred half of agentComplete. It aborts when the
// node was written again after the fade was scheduled, so stale timers
// can never clobber newer activity.
func (r *Reducer) fadeToIdle(name string, gen uint64) {
	r.mu.Lock()
	if r.generations[name] != gen {
		r.mu.Unlock()
		return
	}
	r.setNodeState(name, NodeState{State: StateIdle, Active: false})
	r.mu.Unlock()
	r.notifyTransition()
}

// clearAll is the deferred half of requestComplete: every node state
// goes away and the tool overlay is dropped wholesale. The base layer
// is untouched.
func (r *Reducer) clearAll() {
	r.mu.Lock()
	r.cancelClear = nil
	r.nodeStates = make(map[string]NodeState)
	// Bump every known generation so in-flight idle fades die too.
	for k := range r.generations {
		r.generations[k]++
	}
	r.overlayNodes = make(map[string]Node)
	r.overlayOrder = nil
	r.overlayEdges = make(map[Edge]struct{})
	r.edgeOrder = nil
	r.mu.Unlock()
	r.notifyTransition()
}

// stopClearTimer cancels the pending teardown, if any. At most one
// teardown is ever pending.
func (r *Reducer) stopClearTimer() {
	if r.cancelClear != nil {
		r.cancelClear()
		r.cancelClear = nil
	}
}

func (r *Reducer) notifyTransition() {
	if r.onTransition != nil {
		r.onTransition()
	}
}
