package server

import (
	"sync"
	"sync/atomic"
	"time"
)

// defaultNotificationTTL is how long a toast stays active before the
// server tells clients to drop it.
const defaultNotificationTTL = 4 * time.Second

// Notification levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)

// Notification is one toast pushed to dashboard clients.
type Notification struct {
	ID        int64     `json:"id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type broadcaster interface {
	Broadcast(event string, payload interface{})
}

// Notifier pushes toast notifications to SSE clients and expires them
// after a fixed lifetime. Ids are monotonic per instance, so two
// dashboard processes can never hand out clashing ids to the same
// browser session.
type Notifier struct {
	broadcaster broadcaster
	ttl         time.Duration
	nextID      atomic.Int64

	mu     sync.Mutex
	active map[int64]*time.Timer
	closed bool
}

// NewNotifier creates a notifier publishing through b. A non-positive
// ttl selects the default toast lifetime.
func NewNotifier(b broadcaster, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = defaultNotificationTTL
	}
	return &Notifier{
		broadcaster: b,
		ttl:         ttl,
		active:      make(map[int64]*time.Timer),
	}
}

// Notify creates a toast, broadcasts it and schedules its expiry.
func (n *Notifier) Notify(level, message string) Notification {
	note := Notification{
		ID:        n.nextID.Add(1),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return note
	}
	n.active[note.ID] = time.AfterFunc(n.ttl, func() { n.expire(note.ID) })
	n.mu.Unlock()

	n.broadcaster.Broadcast("notification", note)
	return note
}

// Active returns the not-yet-expired notifications, for the initial
// frame of a new SSE connection.
func (n *Notifier) Active() []int64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	ids := make([]int64, 0, len(n.active))
	for id := range n.active {
		ids = append(ids, id)
	}
	return ids
}

// Close cancels all pending expiries.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for id, timer := range n.active {
		timer.Stop()
		delete(n.active, id)
	}
}

func (n *Notifier) expire(id int64) {
	n.mu.Lock()
	_, ok := n.active[id]
	delete(n.active, id)
	n.mu.Unlock()

	if !ok {
		return
	}
	n.broadcaster.Broadcast("notificationExpired", map[string]int64{"id": id})
}
