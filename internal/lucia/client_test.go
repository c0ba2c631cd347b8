package lucia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a minimal Lucia backend for client tests. It issues
// numbered session tokens and lets tests mark tokens revoked.
type fakeBackend struct {
	mu           sync.Mutex
	apiKey       string
	sessionCalls int
	revoked      map[string]bool
	handler      http.HandlerFunc
}

func newFakeBackend(apiKey string, handler http.HandlerFunc) *fakeBackend {
	return &fakeBackend{
		apiKey:  apiKey,
		revoked: make(map[string]bool),
		handler: handler,
	}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/auth/session" {
		f.mu.Lock()
		defer f.mu.Unlock()

		var body struct {
			APIKey string `json:"apiKey"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.APIKey != f.apiKey {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid API key"})
			return
		}
		f.sessionCalls++
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token":     fmt.Sprintf("token-%d", f.sessionCalls),
			"expiresAt": time.Now().Add(time.Hour),
		})
		return
	}

	if f.apiKey != "" {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		bad := token == "" || f.revoked[token]
		f.mu.Unlock()
		if bad {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "session expired"})
			return
		}
	}

	f.handler(w, r)
}

func (f *fakeBackend) revoke(token string) {
	f.mu.Lock()
	f.revoked[token] = true
	f.mu.Unlock()
}

func (f *fakeBackend) sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessionCalls
}

func TestSessionTokenIssuedOnceAndReused(t *testing.T) {
	backend := newFakeBackend("secret-key", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "secret-key")
	ctx := context.Background()

	var out map[string]string
	for i := 0; i < 3; i++ {
		if err := client.get(ctx, "/health", nil, &out); err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
	}

	if got := backend.sessions(); got != 1 {
		t.Errorf("Expected 1 session request for 3 calls, got %d", got)
	}
}

func TestUnauthorizedRetriedWithFreshToken(t *testing.T) {
	var requests int
	backend := newFakeBackend("secret-key", func(w http.ResponseWriter, r *http.Request) {
		requests++
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "secret-key")
	ctx := context.Background()

	var out map[string]string
	if err := client.get(ctx, "/health", nil, &out); err != nil {
		t.Fatalf("First request failed: %v", err)
	}

	// Revoke the first token server-side; the next call should hit a
	// 401, re-authenticate, and succeed without surfacing the error.
	backend.revoke("token-1")

	if err := client.get(ctx, "/health", nil, &out); err != nil {
		t.Fatalf("Request after revocation failed: %v", err)
	}
	if got := backend.sessions(); got != 2 {
		t.Errorf("Expected 2 session requests after revocation, got %d", got)
	}
	if requests != 2 {
		t.Errorf("Expected 2 handled requests, got %d", requests)
	}
}

func TestAPIErrorParsing(t *testing.T) {
	backend := newFakeBackend("", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "trace not found"})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "")
	_, err := client.GetTrace(context.Background(), "missing")
	if err == nil {
		t.Fatal("Expected an error for a 404 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Status != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", apiErr.Status)
	}
	if apiErr.Message != "trace not found" {
		t.Errorf("Expected backend message, got %q", apiErr.Message)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound should be true for a 404")
	}
	if IsUnauthorized(err) {
		t.Error("IsUnauthorized should be false for a 404")
	}
}

func TestNoAuthWhenAPIKeyEmpty(t *testing.T) {
	var sawAuth bool
	backend := newFakeBackend("", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			sawAuth = true
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "")
	var out map[string]string
	if err := client.get(context.Background(), "/health", nil, &out); err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if sawAuth {
		t.Error("Expected no Authorization header when no API key is configured")
	}
	if got := backend.sessions(); got != 0 {
		t.Errorf("Expected no session requests, got %d", got)
	}
}

func TestListTracesPagination(t *testing.T) {
	backend := newFakeBackend("", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/traces" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("Expected page=2, got %q", got)
		}
		if got := r.URL.Query().Get("pageSize"); got != "25" {
			t.Errorf("Expected pageSize=25, got %q", got)
		}
		if got := r.URL.Query().Get("status"); got != "error" {
			t.Errorf("Expected status=error, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"items": []map[string]interface{}{
				{"id": "tr-1", "status": "error", "durationMs": 1200},
				{"id": "tr-2", "status": "error", "durationMs": 90},
			},
			"page":       2,
			"totalPages": 4,
			"totalCount": 87,
		})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "")
	page, err := client.ListTraces(context.Background(), "error", 2, 25)
	if err != nil {
		t.Fatalf("ListTraces failed: %v", err)
	}

	if len(page.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != "tr-1" || page.Items[0].DurationMs != 1200 {
		t.Errorf("First item decoded wrong: %+v", page.Items[0])
	}
	if page.Page != 2 || page.TotalPages != 4 || page.TotalCount != 87 {
		t.Errorf("Page envelope decoded wrong: page=%d totalPages=%d totalCount=%d",
			page.Page, page.TotalPages, page.TotalCount)
	}
}

func TestPagedItemsNeverNil(t *testing.T) {
	backend := newFakeBackend("", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"page": 1, "totalPages": 0, "totalCount": 0,
		})
	})
	server := httptest.NewServer(backend)
	defer server.Close()

	client := New(server.URL, "")
	page, err := client.ListTasks(context.Background(), "", 1, 20)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if page.Items == nil {
		t.Error("Items should be an empty slice, not nil")
	}
}
