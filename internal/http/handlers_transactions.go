package http

import (
	"net/http"

	"tally/internal/core"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	page, err := s.svc.Transactions.List(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// transactionRequest is a transaction write with optional links to
// existing deductions.
type transactionRequest struct {
	core.Transaction
	Deductions []core.DeductionLinkInput `json:"deductions"`
}

// transactionDetail is a single transaction with its deduction links.
type transactionDetail struct {
	core.Transaction
	Deductions []core.DeductionLink `json:"deductions"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	created, err := s.svc.Transactions.Create(r.Context(), req.Transaction, req.Deductions...)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	t, err := s.svc.Transactions.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	links, err := s.svc.Transactions.Links(r.Context(), id)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if links == nil {
		links = []core.DeductionLink{}
	}
	respondJSON(w, http.StatusOK, transactionDetail{Transaction: t, Deductions: links})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	req.ID = id
	updated, err := s.svc.Transactions.Update(r.Context(), req.Transaction, req.Deductions...)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}
	if err := s.svc.Transactions.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTransactionCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Transactions.Categories(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func (s *Server) handleFinancialYears(w http.ResponseWriter, r *http.Request) {
	years, err := s.svc.Transactions.FinancialYears(r.Context())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if years == nil {
		years = []string{}
	}
	respondJSON(w, http.StatusOK, map[string][]string{"financial_years": years})
}
