package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"luciadash/internal/logging"
	"luciadash/internal/lucia"
)

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Errorf("Failed to encode response: %v", err)
	}
}

// writeError sends the standard failure envelope.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

// writeBackendError maps a lucia client error onto the failure
// envelope. Backend API errors keep their status code; transport
// failures become a 502.
func writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *lucia.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.Status, apiErr.Message)
		return
	}
	writeError(w, http.StatusBadGateway, "Backend unreachable: "+err.Error())
}

// requireConfirm enforces the confirm=true query parameter on
// destructive endpoints. Returns false after writing the rejection.
func requireConfirm(w http.ResponseWriter, r *http.Request) bool {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusBadRequest, "Confirmation required: retry with confirm=true")
		return false
	}
	return true
}
