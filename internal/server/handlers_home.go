package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"luciadash/internal/lucia"
)

// Household surfaces: presence, alarms and lists are thin passthroughs
// to the backend, wrapped in the standard envelope.

// handlePresence handles GET /api/presence.
func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	presence, err := s.lucia.GetPresence(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"presence": presence,
	})
}

// handlePresenceSensors handles GET (list) and POST (create) on
// /api/presence/sensors.
func (s *Server) handlePresenceSensors(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sensors, err := s.lucia.ListPresenceSensors(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"sensors": sensors,
		})

	case http.MethodPost:
		var sensor lucia.PresenceSensor
		if err := json.NewDecoder(r.Body).Decode(&sensor); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(sensor.Name) == "" || strings.TrimSpace(sensor.PersonName) == "" {
			writeError(w, http.StatusBadRequest, "Sensor name and person are required")
			return
		}
		created, err := s.lucia.CreatePresenceSensor(r.Context(), &sensor)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"sensor":  created,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// routePresenceSensor dispatches /api/presence/sensors/{id}.
func (s *Server) routePresenceSensor(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/presence/sensors/")
	id = strings.TrimSuffix(id, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Sensor id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var sensor lucia.PresenceSensor
		if err := json.NewDecoder(r.Body).Decode(&sensor); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		updated, err := s.lucia.UpdatePresenceSensor(r.Context(), id, &sensor)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"sensor":  updated,
		})

	case http.MethodDelete:
		if err := s.lucia.DeletePresenceSensor(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAlarms handles GET (list) and POST (create) on /api/alarms.
func (s *Server) handleAlarms(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alarms, err := s.lucia.ListAlarms(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"alarms":  alarms,
		})

	case http.MethodPost:
		var alarm lucia.Alarm
		if err := json.NewDecoder(r.Body).Decode(&alarm); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if alarm.Time == "" {
			writeError(w, http.StatusBadRequest, "Alarm time is required")
			return
		}
		created, err := s.lucia.CreateAlarm(r.Context(), &alarm)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelSuccess, fmt.Sprintf("Alarm %q created", created.Name))
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"alarm":   created,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// routeAlarm dispatches /api/alarms/{id} and its enable/disable
// actions.
func (s *Server) routeAlarm(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/alarms/")
	path = strings.TrimSuffix(path, "/")

	switch {
	case strings.HasSuffix(path, "/enable"):
		s.handleAlarmToggle(w, r, strings.TrimSuffix(path, "/enable"), true)
	case strings.HasSuffix(path, "/disable"):
		s.handleAlarmToggle(w, r, strings.TrimSuffix(path, "/disable"), false)
	case path == "":
		writeError(w, http.StatusBadRequest, "Alarm id is required")
	default:
		s.handleAlarmByID(w, r, path)
	}
}

func (s *Server) handleAlarmToggle(w http.ResponseWriter, r *http.Request, id string, enable bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var err error
	if enable {
		err = s.lucia.EnableAlarm(r.Context(), id)
	} else {
		err = s.lucia.DisableAlarm(r.Context(), id)
	}
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleAlarmByID(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut:
		var alarm lucia.Alarm
		if err := json.NewDecoder(r.Body).Decode(&alarm); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		updated, err := s.lucia.UpdateAlarm(r.Context(), id, &alarm)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"alarm":   updated,
		})

	case http.MethodDelete:
		if !requireConfirm(w, r) {
			return
		}
		if err := s.lucia.DeleteAlarm(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelInfo, "Alarm deleted")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLists handles GET (list) and POST (create) on /api/lists.
func (s *Server) handleLists(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		lists, err := s.lucia.GetLists(r.Context())
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"lists":   lists,
		})

	case http.MethodPost:
		var list lucia.List
		if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if strings.TrimSpace(list.Name) == "" {
			writeError(w, http.StatusBadRequest, "List name is required")
			return
		}
		created, err := s.lucia.CreateList(r.Context(), &list)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"list":    created,
		})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// routeList dispatches /api/lists/{id} and its item sub-resources:
// DELETE /api/lists/{id}, POST /api/lists/{id}/items,
// PUT|DELETE /api/lists/{id}/items/{itemID}.
func (s *Server) routeList(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/lists/")
	path = strings.TrimSuffix(path, "/")
	parts := strings.Split(path, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		s.handleListByID(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "items":
		s.handleListItems(w, r, parts[0])
	case len(parts) == 3 && parts[1] == "items":
		s.handleListItemByID(w, r, parts[0], parts[2])
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) handleListByID(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := s.lucia.DeleteList(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request, listID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "Item text is required")
		return
	}

	item, err := s.lucia.AddListItem(r.Context(), listID, req.Text)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"item":    item,
	})
}

func (s *Server) handleListItemByID(w http.ResponseWriter, r *http.Request, listID, itemID string) {
	switch r.Method {
	case http.MethodPut:
		var req struct {
			Done bool `json:"done"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := s.lucia.CheckListItem(r.Context(), listID, itemID, req.Done); err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	case http.MethodDelete:
		if err := s.lucia.RemoveListItem(r.Context(), listID, itemID); err != nil {
			writeBackendError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
