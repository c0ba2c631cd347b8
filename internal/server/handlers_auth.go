package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"luciadash/internal/database"
	"luciadash/internal/logging"
)

// operatorResponse is the operator DTO returned by the auth endpoints.
type operatorResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

func toOperatorResponse(op *database.Operator) operatorResponse {
	resp := operatorResponse{
		ID:       op.ID,
		Username: op.Username,
		IsAdmin:  op.IsAdmin,
	}
	if op.Email.Valid {
		resp.Email = op.Email.String
	}
	return resp
}

// handleSetup handles POST /api/setup: first-run creation of the
// initial admin operator. Refused once any operator exists.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	count, err := database.CountOperators()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}
	if count > 0 {
		writeError(w, http.StatusConflict, "Setup already completed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeError(w, http.StatusBadRequest, "Username is required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	op, err := s.createOperator(req.Username, req.Password, req.Email, true)
	if err != nil {
		logging.Errorf("Setup failed: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create operator")
		return
	}

	session, _ := s.sessionStore.Get(r, sessionName)
	session.Values["operator_id"] = op.ID
	if err := session.Save(r, w); err != nil {
		logging.Errorf("Failed to save session: %v", err)
	}

	logging.Printf("Initial operator %s created", op.Username)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"operator": toOperatorResponse(op),
	})
}

// handleLogin handles POST /api/login.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	op, err := s.authenticateOperator(req.Username, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	session, _ := s.sessionStore.Get(r, sessionName)
	session.Values["operator_id"] = op.ID
	if err := session.Save(r, w); err != nil {
		logging.Errorf("Failed to save session: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"operator": toOperatorResponse(op),
	})
}

// handleLogout handles POST /api/logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessionStore.Get(r, sessionName)
	if err == nil {
		delete(session.Values, "operator_id")
		if err := session.Save(r, w); err != nil {
			logging.Errorf("Failed to save session: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// handleMe handles GET /api/me.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	op := getOperatorFromContext(r.Context())
	if op == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"operator": toOperatorResponse(op),
	})
}
