package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleListDeductions(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Deductions.List(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateDeduction(w http.ResponseWriter, r *http.Request) {
	var d core.Deduction
	if err := decodeJSON(r, &d); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	created, err := s.svc.Deductions.Create(r.Context(), d)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetDeduction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid deduction id")
		return
	}
	d, err := s.svc.Deductions.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleUpdateDeduction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid deduction id")
		return
	}
	var d core.Deduction
	if err := decodeJSON(r, &d); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	d.ID = id
	updated, err := s.svc.Deductions.Update(r.Context(), d)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteDeduction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid deduction id")
		return
	}
	if err := s.svc.Deductions.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleEmployeeDeductions(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Deductions.EmployeeDeductions(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
