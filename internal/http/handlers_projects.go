package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Projects.List(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p core.Project
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	created, err := s.svc.Projects.Create(r.Context(), p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	p, err := s.svc.Projects.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	var p core.Project
	if err := decodeJSON(r, &p); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	p.ID = id
	updated, err := s.svc.Projects.Update(r.Context(), p)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	if err := s.svc.Projects.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// handleProjectSummary merges the project's finance, card exposure and
// deduction roll-up into one response.
func (s *Server) handleProjectSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	summary, err := s.svc.Projects.Comprehensive(r.Context(), id, s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
