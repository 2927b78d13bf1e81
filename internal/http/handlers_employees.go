package http

import (
	"net/http"

	"tally/internal/core"
	"tally/internal/services"
)

func (s *Server) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Employees.List(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e core.Employee
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	created, err := s.svc.Employees.Create(r.Context(), e)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	e, err := s.svc.Employees.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	var e core.Employee
	if err := decodeJSON(r, &e); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	e.ID = id
	updated, err := s.svc.Employees.Update(r.Context(), e)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	if err := s.svc.Employees.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleSalaryHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	history, err := s.svc.Salary.History(r.Context(), id, s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, history)
}

func (s *Server) handleRecordSalaryPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid employee id")
		return
	}
	var req services.PaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	req.EmployeeID = id
	payment, err := s.svc.Salary.RecordPayment(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, payment)
}
