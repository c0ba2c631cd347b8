package server

import (
	"net/http"
	"strings"
)

// handleTasks handles GET /api/tasks with status/page filters.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page, pageSize := parsePage(r)
	tasks, err := s.lucia.ListTasks(r.Context(), r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writePaged(w, "tasks", tasks)
}

// routeTask dispatches /api/tasks/{id}/cancel.
func (s *Server) routeTask(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/tasks/")
	path = strings.TrimSuffix(path, "/")

	if !strings.HasSuffix(path, "/cancel") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	s.handleTaskCancel(w, r, strings.TrimSuffix(path, "/cancel"))
}

func (s *Server) handleTaskCancel(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.lucia.CancelTask(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	s.notifier.Notify(LevelInfo, "Task cancelled")
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
