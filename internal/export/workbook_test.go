package export

import (
	"testing"

	"tally/internal/core"
	"tally/internal/services"
)

func mny(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.MoneyFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestBuildWorkbook(t *testing.T) {
	data := ReportData{
		Dashboard: services.Dashboard{
			TotalsByType: map[core.AccountType]core.Money{
				core.AccountAsset: mny(t, "1200.50"),
			},
			TotalIncome:    mny(t, "5000"),
			TotalExpenses:  mny(t, "3000"),
			NetBalance:     mny(t, "2000"),
			ActiveAccounts: 3,
		},
		ProfitLoss: services.ProfitLoss{
			FinancialYear: "2024-2025",
			TotalIncome:   mny(t, "5000"),
			TotalExpenses: mny(t, "3000"),
			NetProfit:     mny(t, "2000"),
			ProfitMargin:  mny(t, "40"),
		},
		BalanceSheet: services.BalanceSheet{
			TotalAssets: mny(t, "1200.50"),
		},
		ProjectFinance: services.ProjectFinanceReport{
			Projects: []services.ProjectFinanceEntry{{
				Finance: core.ComputeProjectFinance(
					core.Project{Code: "PRJ-001", Name: "Website", Status: core.StatusActive},
					nil,
				),
			}},
		},
		Salaries: []services.SalaryReportEntry{{
			Employee:       core.Employee{EmployeeCode: "EMP-001", FirstName: "Asha", LastName: "Verma"},
			MonthsWorked:   6,
			AnnualExpected: mny(t, "36000"),
			TotalPaid:      mny(t, "18000"),
			Outstanding:    mny(t, "18000"),
			Progress:       mny(t, "50"),
		}},
	}

	f, err := BuildWorkbook(data)
	if err != nil {
		t.Fatalf("build workbook: %v", err)
	}
	defer f.Close()

	wantSheets := []string{sheetDashboard, sheetProfitLoss, sheetBalance, sheetProjects, sheetSalaries}
	sheets := f.GetSheetList()
	if len(sheets) != len(wantSheets) {
		t.Fatalf("sheets: got %v", sheets)
	}

	tests := []struct {
		sheet string
		cell  string
		want  string
	}{
		{sheetDashboard, "A2", "Total income"},
		{sheetDashboard, "B2", "5000"},
		{sheetDashboard, "B5", "3"},
		{sheetProfitLoss, "B1", "2024-2025"},
		{sheetProfitLoss, "B5", "40"},
		{sheetBalance, "B1", "1200.5"},
		{sheetProjects, "A2", "PRJ-001"},
		{sheetProjects, "A3", "TOTAL"},
		{sheetSalaries, "B2", "Asha Verma"},
		{sheetSalaries, "C2", "6"},
	}
	for _, tt := range tests {
		got, err := f.GetCellValue(tt.sheet, tt.cell)
		if err != nil {
			t.Fatalf("get %s!%s: %v", tt.sheet, tt.cell, err)
		}
		if got != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, got, tt.want)
		}
	}
}
