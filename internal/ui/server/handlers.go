// # internal/ui/server/handlers.go
package server

import (
	"net/http"
	"strconv"

	"steward/internal/core/errors"
	"steward/internal/core/ports"
)

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.Analysis(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	tree, err := s.service.Refresh(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	content, err := s.service.FileContent(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Server) handleOverlay(w http.ResponseWriter, r *http.Request) {
	req := ports.OverlayRequest{Path: r.URL.Query().Get("path")}

	var err error
	if req.SliceStart, err = intParam(r, "sliceStart"); err != nil {
		writeError(w, err)
		return
	}
	if req.SliceEnd, err = intParam(r, "sliceEnd"); err != nil {
		writeError(w, err)
		return
	}
	if req.FocusStart, err = intParam(r, "focusStart"); err != nil {
		writeError(w, err)
		return
	}
	if req.FocusEnd, err = intParam(r, "focusEnd"); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.service.Overlay(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleScopeGraph(w http.ResponseWriter, r *http.Request) {
	req := ports.ScopeGraphRequest{Path: r.URL.Query().Get("path")}

	var err error
	if req.FocusStart, err = intParam(r, "focusStart"); err != nil {
		writeError(w, err)
		return
	}
	if req.FocusEnd, err = intParam(r, "focusEnd"); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.service.ScopeGraph(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleFunctions(w http.ResponseWriter, r *http.Request) {
	fm, err := s.service.Functions(r.Context(), r.URL.Query().Get("path"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fm)
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.spec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "up"})
}

// intParam reads an optional integer query parameter. Absent means zero,
// which the overlay and scope graph operations read as "whole file".
func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Newf(errors.CodeValidationError, "parameter %q must be an integer", name)
	}
	return n, nil
}
