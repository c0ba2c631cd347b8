package server

import (
	"net/http"
	"net/url"
	"strings"
)

// handlePromptCache handles GET (paged entries) and DELETE (clear all)
// on /api/cache/prompt.
func (s *Server) handlePromptCache(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		page, pageSize := parsePage(r)
		entries, err := s.lucia.ListPromptCacheEntries(r.Context(), page, pageSize)
		if err != nil {
			writeBackendError(w, err)
			return
		}
		writePaged(w, "entries", entries)

	case http.MethodDelete:
		if !requireConfirm(w, r) {
			return
		}
		if err := s.lucia.ClearPromptCache(r.Context()); err != nil {
			writeBackendError(w, err)
			return
		}
		s.notifier.Notify(LevelInfo, "Prompt cache cleared")
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handlePromptCacheEntry handles DELETE /api/cache/prompt/entries/{key}.
// Keys are opaque backend hashes and arrive path-escaped.
func (s *Server) handlePromptCacheEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/api/cache/prompt/entries/")
	key = strings.TrimSuffix(key, "/")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	if key == "" {
		writeError(w, http.StatusBadRequest, "Cache key is required")
		return
	}

	if err := s.lucia.DeletePromptCacheEntry(r.Context(), key); err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
