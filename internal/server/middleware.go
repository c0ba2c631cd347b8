package server

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"luciadash/internal/database"
	"luciadash/internal/logging"
	"luciadash/internal/telemetry"
)

// SetupRequiredMiddleware rejects API calls until the first operator
// account exists. The browser UI watches for setupRequired and shows
// the first-run form.
func (s *Server) SetupRequiredMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := database.CountOperators()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}

		if count == 0 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"success":       false,
				"error":         "Setup required",
				"setupRequired": true,
			})
			return
		}

		next(w, r)
	}
}

// AuthRequiredMiddleware checks for a valid operator session. The API
// answers 401 with the JSON envelope rather than redirecting; the
// browser UI owns navigation.
func (s *Server) AuthRequiredMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionStore.Get(r, sessionName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		operatorID, ok := session.Values["operator_id"].(int)
		if !ok || operatorID == 0 {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		op, err := database.GetOperatorByID(operatorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Database error")
			return
		}
		if op == nil || !op.IsActive {
			// Stale session for a deleted or disabled account.
			delete(session.Values, "operator_id")
			_ = session.Save(r, w)
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		next(w, r.WithContext(setOperatorContext(r.Context(), op)))
	}
}

// statusRecorder captures the response code for the request log.
// Flush is forwarded so SSE streaming keeps working behind it.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// requestLogger wraps the whole mux with a per-request span and a debug
// access log line.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The SSE stream stays open for the life of the browser tab;
		// holding a span that long just pollutes the trace store.
		if strings.HasSuffix(r.URL.Path, "/activity/events") {
			next.ServeHTTP(w, r)
			return
		}

		ctx, span := telemetry.StartSpan(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r.WithContext(ctx))

		span.SetAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.target", r.URL.Path),
			attribute.Int("http.status_code", rec.status),
		)
		logging.Debug("%s %s -> %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}
