package lucia

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"luciadash/internal/activity"
	"luciadash/internal/logging"
)

// Stream reconnect defaults. After maxAttempts consecutive dial
// failures the stream goes disconnected and stays there until an
// operator asks for a reconnect.
const (
	defaultStreamBaseBackoff = 1 * time.Second
	defaultStreamMaxBackoff  = 30 * time.Second
	defaultStreamMaxAttempts = 5

	streamReadTimeout  = 90 * time.Second
	streamPingInterval = 30 * time.Second
)

// StreamOption configures a Stream.
type StreamOption func(*Stream)

// WithBackoff overrides the reconnect backoff bounds.
func WithBackoff(base, max time.Duration) StreamOption {
	return func(s *Stream) {
		if base > 0 {
			s.baseBackoff = base
		}
		if max > 0 {
			s.maxBackoff = max
		}
	}
}

// WithMaxAttempts overrides how many consecutive dial failures are
// tolerated before the stream gives up.
func WithMaxAttempts(n int) StreamOption {
	return func(s *Stream) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// Stream subscribes to the backend's live activity feed over a
// websocket and delivers events in arrival order. It reconnects by
// itself until the failure budget is spent; after that only an
// explicit Reconnect revives it.
type Stream struct {
	client *Client

	baseBackoff time.Duration
	maxBackoff  time.Duration
	maxAttempts int

	events    chan activity.LiveEvent
	states    chan activity.ConnState
	reconnect chan struct{}
	done      chan struct{}

	mu     sync.Mutex
	state  activity.ConnState
	cancel context.CancelFunc
}

// NewStream creates a stream bound to the client's backend.
func NewStream(c *Client, opts ...StreamOption) *Stream {
	s := &Stream{
		client:      c,
		baseBackoff: defaultStreamBaseBackoff,
		maxBackoff:  defaultStreamMaxBackoff,
		maxAttempts: defaultStreamMaxAttempts,
		events:      make(chan activity.LiveEvent, 256),
		states:      make(chan activity.ConnState, 16),
		reconnect:   make(chan struct{}, 1),
		done:        make(chan struct{}),
		state:       activity.ConnReconnecting,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Events is the ordered event feed. It closes when the stream stops.
func (s *Stream) Events() <-chan activity.LiveEvent {
	return s.events
}

// States delivers connection state changes. It closes when the stream
// stops.
func (s *Stream) States() <-chan activity.ConnState {
	return s.states
}

// State returns the current connection state.
func (s *Stream) State() activity.ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start launches the connect/read loop. Call once.
func (s *Stream) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go s.run(ctx)
}

// Close stops the stream and waits for the loop to exit.
func (s *Stream) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-s.done
}

// Reconnect restarts the connect loop after the failure budget was
// spent. It only acts in the disconnected state and reports whether a
// reconnect was actually started.
func (s *Stream) Reconnect() bool {
	if s.State() != activity.ConnDisconnected {
		return false
	}
	select {
	case s.reconnect <- struct{}{}:
		return true
	default:
		return true
	}
}

func (s *Stream) run(ctx context.Context) {
	defer func() {
		close(s.events)
		close(s.states)
		close(s.done)
	}()

	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := s.dial(ctx)
		if err != nil {
			attempts++
			logging.Debug("Activity feed dial failed (attempt %d/%d): %v", attempts, s.maxAttempts, err)

			if attempts >= s.maxAttempts {
				s.setState(ctx, activity.ConnDisconnected)
				select {
				case <-ctx.Done():
					return
				case <-s.reconnect:
					attempts = 0
					s.setState(ctx, activity.ConnReconnecting)
					continue
				}
			}

			s.setState(ctx, activity.ConnReconnecting)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.backoff(attempts)):
			}
			continue
		}

		attempts = 0
		s.setState(ctx, activity.ConnConnected)
		s.readLoop(ctx, conn)

		if ctx.Err() != nil {
			return
		}
		s.setState(ctx, activity.ConnReconnecting)
	}
}

// dial opens the websocket, authenticating with the same session token
// the REST client uses.
func (s *Stream) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	token, err := s.client.sessionToken(ctx)
	if err != nil {
		return nil, err
	}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	wsURL := httpToWS(s.client.BaseURL) + "/activity/events"

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, resp, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		// A 401 here means the cached token went stale between REST
		// calls; drop it so the next attempt re-authenticates.
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			s.client.invalidateToken()
		}
		return nil, err
	}
	return conn, nil
}

func (s *Stream) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)

	// Keepalive pings; the read deadline is pushed forward by pongs and
	// by every received event.
	go func() {
		ticker := time.NewTicker(streamPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadDeadline(time.Now().Add(streamReadTimeout)) //nolint:errcheck
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamReadTimeout))
	})

	for {
		var ev activity.LiveEvent
		if err := conn.ReadJSON(&ev); err != nil {
			if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Debug("Activity feed read error: %v", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(streamReadTimeout)) //nolint:errcheck

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Stream) setState(ctx context.Context, state activity.ConnState) {
	s.mu.Lock()
	if s.state == state {
		s.mu.Unlock()
		return
	}
	s.state = state
	s.mu.Unlock()

	select {
	case s.states <- state:
	case <-ctx.Done():
	}
}

func (s *Stream) backoff(attempt int) time.Duration {
	d := s.baseBackoff << (attempt - 1)
	if d > s.maxBackoff || d <= 0 {
		return s.maxBackoff
	}
	return d
}

// httpToWS converts the backend base URL to its websocket counterpart.
func httpToWS(base string) string {
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	default:
		return base
	}
}
