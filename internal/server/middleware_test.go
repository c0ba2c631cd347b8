package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"luciadash/internal/database"
)

func deactivateOperator(t *testing.T, id int) error {
	t.Helper()
	_, err := database.GetDB().Exec("UPDATE operators SET is_active = 0 WHERE id = ?", id)
	return err
}

func TestSetupRequiredMiddleware(t *testing.T) {
	initTestDB(t)
	s := newTestServer(t, "")

	next := func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}

	t.Run("empty database blocks requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
		w := httptest.NewRecorder()
		s.SetupRequiredMiddleware(next)(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}

		envelope := decodeEnvelope(t, w)
		if envelope["setupRequired"] != true {
			t.Errorf("expected setupRequired flag, got %v", envelope)
		}
	})

	t.Run("passes once an operator exists", func(t *testing.T) {
		if _, err := s.createOperator("admin", "correct horse", "", true); err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/agents", nil)
		w := httptest.NewRecorder()
		s.SetupRequiredMiddleware(next)(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}

func TestAuthRequiredMiddleware(t *testing.T) {
	initTestDB(t)
	s := newTestServer(t, "")

	op, err := s.createOperator("admin", "correct horse", "", true)
	if err != nil {
		t.Fatal(err)
	}

	var seen *httptest.ResponseRecorder
	next := func(w http.ResponseWriter, r *http.Request) {
		operator := getOperatorFromContext(r.Context())
		if operator == nil {
			t.Errorf("expected operator in request context")
			writeError(w, http.StatusInternalServerError, "no operator")
			return
		}
		if operator.Username != "admin" {
			t.Errorf("expected operator admin, got %q", operator.Username)
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}

	t.Run("rejects anonymous requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		w := httptest.NewRecorder()
		s.AuthRequiredMiddleware(next)(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("accepts a valid session", func(t *testing.T) {
		// Borrow a session cookie from a login response.
		login := postJSON(t, s.handleLogin, "/api/login", map[string]string{
			"username": "admin",
			"password": "correct horse",
		})
		if login.Code != http.StatusOK {
			t.Fatalf("login failed: %d", login.Code)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		seen = httptest.NewRecorder()
		s.AuthRequiredMiddleware(next)(seen, req)

		if seen.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", seen.Code, seen.Body.String())
		}
	})

	t.Run("rejects a deactivated operator", func(t *testing.T) {
		login := postJSON(t, s.handleLogin, "/api/login", map[string]string{
			"username": "admin",
			"password": "correct horse",
		})
		if login.Code != http.StatusOK {
			t.Fatalf("login failed: %d", login.Code)
		}

		if err := deactivateOperator(t, op.ID); err != nil {
			t.Fatal(err)
		}

		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		for _, c := range login.Result().Cookies() {
			req.AddCookie(c)
		}
		w := httptest.NewRecorder()
		s.AuthRequiredMiddleware(next)(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for deactivated operator, got %d", w.Code)
		}
	})
}

func TestRequestLogger(t *testing.T) {
	t.Run("passes the response code through", func(t *testing.T) {
		handler := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusTeapot, "nope")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/agents", nil))

		if w.Code != http.StatusTeapot {
			t.Fatalf("expected 418, got %d", w.Code)
		}
	})

	t.Run("keeps the writer flushable for streaming", func(t *testing.T) {
		handler := requestLogger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := w.(http.Flusher); !ok {
				t.Error("expected response writer to support flushing")
			}
			w.WriteHeader(http.StatusOK)
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})
}
