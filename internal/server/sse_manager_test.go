package server

import (
	"fmt"
	"strings"
	"testing"
)

func TestFormatSSE(t *testing.T) {
	frame, err := FormatSSE("notification", map[string]string{"message": "hello"})
	if err != nil {
		t.Fatal(err)
	}

	expected := "event: notification\ndata: {\"message\":\"hello\"}\n\n"
	if frame != expected {
		t.Errorf("expected %q, got %q", expected, frame)
	}
}

func TestSSEManagerBroadcast(t *testing.T) {
	m := NewSSEManager()

	client := NewSSEClient()
	m.Register(client)
	defer m.Unregister(client)

	other := NewSSEClient()
	m.Register(other)
	defer m.Unregister(other)

	if m.ClientCount() != 2 {
		t.Fatalf("expected 2 clients, got %d", m.ClientCount())
	}

	m.Broadcast("connection", map[string]string{"state": "connected"})

	for i, c := range []*SSEClient{client, other} {
		select {
		case msg := <-c.Messages:
			if !strings.HasPrefix(msg, "event: connection\n") {
				t.Errorf("client %d: unexpected frame %q", i, msg)
			}
			if !strings.Contains(msg, `"state":"connected"`) {
				t.Errorf("client %d: payload missing from frame %q", i, msg)
			}
		default:
			t.Errorf("client %d received nothing", i)
		}
	}
}

func TestSSEManagerEvictsStalledClients(t *testing.T) {
	m := NewSSEManager()

	stalled := NewSSEClient()
	healthy := NewSSEClient()
	m.Register(stalled)
	m.Register(healthy)
	defer m.Unregister(healthy)

	// Fill the stalled client's buffer so the next send blocks past the
	// send timeout.
	for i := 0; i < cap(stalled.Messages); i++ {
		stalled.Messages <- fmt.Sprintf("frame %d", i)
	}

	m.Broadcast("activity", map[string]int{"n": 1})

	if m.ClientCount() != 1 {
		t.Fatalf("expected stalled client to be evicted, count = %d", m.ClientCount())
	}

	select {
	case <-stalled.Close:
	default:
		t.Errorf("expected eviction to signal the client's close channel")
	}

	// The healthy client still got the frame.
	select {
	case msg := <-healthy.Messages:
		if !strings.HasPrefix(msg, "event: activity\n") {
			t.Errorf("unexpected frame %q", msg)
		}
	default:
		t.Errorf("healthy client received nothing")
	}
}

func TestSSEManagerBroadcastWithoutClients(t *testing.T) {
	m := NewSSEManager()
	// Must not panic or block.
	m.Broadcast("activity", map[string]int{"n": 1})
}
