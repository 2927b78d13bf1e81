package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Reports.Dashboard(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, d)
}

func (s *Server) handleFinancialYearReport(w http.ResponseWriter, r *http.Request) {
	fy := strings.TrimSpace(r.PathValue("fy"))
	if fy == "" {
		respondError(w, http.StatusBadRequest, "financial year is required")
		return
	}
	report, err := s.svc.Reports.FinancialYear(r.Context(), fy)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleProfitLoss(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Reports.ProfitLoss(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleBalanceSheet(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Reports.BalanceSheet(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleProjectReports lists each project's income and expenses within
// the filter scope.
func (s *Server) handleProjectReports(w http.ResponseWriter, r *http.Request) {
	d, err := s.svc.Reports.Dashboard(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"projects": d.ProjectSummaries})
}

func (s *Server) handleProjectFinancialSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	summary, err := s.svc.Reports.ProjectFinancialSummary(r.Context(), id, s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleProjectFinanceReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.Reports.ProjectFinance(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleSalaryReport(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Reports.SalaryReport(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"employees": entries})
}

func (s *Server) handleMonthlySalarySummary(w http.ResponseWriter, r *http.Request) {
	months, err := s.svc.Salary.MonthlySummary(r.Context(), s.filter(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"months": months})
}

func (s *Server) handleFYSalarySummary(w http.ResponseWriter, r *http.Request) {
	fy := strings.TrimSpace(r.PathValue("fy"))
	if fy == "" {
		respondError(w, http.StatusBadRequest, "financial year is required")
		return
	}
	summary, err := s.svc.Salary.FinancialYearSummary(r.Context(), fy)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
