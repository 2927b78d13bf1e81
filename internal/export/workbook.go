// Package export renders the reports into Excel workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tally/internal/core"
	"tally/internal/services"
)

// ReportData is everything one workbook shows.
type ReportData struct {
	Dashboard      services.Dashboard
	ProfitLoss     services.ProfitLoss
	BalanceSheet   services.BalanceSheet
	ProjectFinance services.ProjectFinanceReport
	Salaries       []services.SalaryReportEntry
}

const (
	sheetDashboard  = "Dashboard"
	sheetProfitLoss = "Profit & Loss"
	sheetBalance    = "Balance Sheet"
	sheetProjects   = "Projects"
	sheetSalaries   = "Salaries"
)

// BuildWorkbook renders the report data into a new workbook. The caller
// owns the returned file and must Close it.
func BuildWorkbook(data ReportData) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeDashboardSheet(f, data.Dashboard); err != nil {
		return nil, err
	}
	if err := writeProfitLossSheet(f, data.ProfitLoss); err != nil {
		return nil, err
	}
	if err := writeBalanceSheet(f, data.BalanceSheet); err != nil {
		return nil, err
	}
	if err := writeProjectsSheet(f, data.ProjectFinance); err != nil {
		return nil, err
	}
	if err := writeSalariesSheet(f, data.Salaries); err != nil {
		return nil, err
	}

	// The default sheet excelize creates is replaced by the dashboard.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheetDashboard)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	return f, nil
}

func cellValue(m core.Money) float64 {
	return m.Round2().Decimal().InexactFloat64()
}

func setHeaders(f *excelize.File, sheet string, headers []string) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("set header %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
		}
	}
	return nil
}

func writeDashboardSheet(f *excelize.File, d services.Dashboard) error {
	if _, err := f.NewSheet(sheetDashboard); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetDashboard, err)
	}

	rows := [][]any{
		{"Metric", "Value"},
		{"Total income", cellValue(d.TotalIncome)},
		{"Total expenses", cellValue(d.TotalExpenses)},
		{"Net balance", cellValue(d.NetBalance)},
		{"Active accounts", d.ActiveAccounts},
		{"Active projects", d.ActiveProjects},
		{"Active employees", d.ActiveEmployees},
	}
	for _, at := range []core.AccountType{core.AccountAsset, core.AccountLiability, core.AccountEquity, core.AccountIncome, core.AccountExpense} {
		if total, ok := d.TotalsByType[at]; ok {
			rows = append(rows, []any{fmt.Sprintf("Total %s", at), cellValue(total)})
		}
	}
	for i, r := range rows {
		if err := setRow(f, sheetDashboard, i+1, r); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheetDashboard, "A", "A", 22); err != nil {
		return err
	}
	return f.SetColWidth(sheetDashboard, "B", "B", 14)
}

func writeProfitLossSheet(f *excelize.File, pl services.ProfitLoss) error {
	if _, err := f.NewSheet(sheetProfitLoss); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetProfitLoss, err)
	}

	period := pl.FinancialYear
	if period == "" {
		period = "all time"
	}
	rows := [][]any{
		{"Period", period},
		{"Total income", cellValue(pl.TotalIncome)},
		{"Total expenses", cellValue(pl.TotalExpenses)},
		{"Net profit", cellValue(pl.NetProfit)},
		{"Profit margin %", cellValue(pl.ProfitMargin)},
	}
	for i, r := range rows {
		if err := setRow(f, sheetProfitLoss, i+1, r); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetProfitLoss, "A", "A", 18)
}

func writeBalanceSheet(f *excelize.File, bs services.BalanceSheet) error {
	if _, err := f.NewSheet(sheetBalance); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetBalance, err)
	}

	rows := [][]any{
		{"Total assets", cellValue(bs.TotalAssets)},
		{"Total liabilities", cellValue(bs.TotalLiabilities)},
		{"Total equity", cellValue(bs.TotalEquity)},
		{"Net position", cellValue(bs.NetPosition)},
	}
	for i, r := range rows {
		if err := setRow(f, sheetBalance, i+1, r); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetBalance, "A", "A", 18)
}

func writeProjectsSheet(f *excelize.File, report services.ProjectFinanceReport) error {
	if _, err := f.NewSheet(sheetProjects); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetProjects, err)
	}

	headers := []string{"Code", "Name", "Status", "Income", "Expenses", "Net profit", "Margin %", "Card outstanding", "Deductions"}
	if err := setHeaders(f, sheetProjects, headers); err != nil {
		return err
	}
	for i, entry := range report.Projects {
		p := entry.Finance.Project
		row := []any{
			p.Code,
			p.Name,
			string(p.Status),
			cellValue(entry.Finance.TotalIncome),
			cellValue(entry.Finance.TotalExpenses),
			cellValue(entry.Finance.NetProfit),
			cellValue(entry.Finance.ProfitMargin),
			cellValue(entry.CreditCard.OutstandingBalance),
			cellValue(entry.Deductions.TotalDeductions),
		}
		if err := setRow(f, sheetProjects, i+2, row); err != nil {
			return err
		}
	}

	totalsRow := len(report.Projects) + 2
	totals := []any{
		"TOTAL", "", "",
		cellValue(report.TotalIncome),
		cellValue(report.TotalExpenses),
		cellValue(report.TotalNetProfit),
		"", "",
		cellValue(report.TotalDeductions),
	}
	if err := setRow(f, sheetProjects, totalsRow, totals); err != nil {
		return err
	}
	return f.SetColWidth(sheetProjects, "B", "B", 24)
}

func writeSalariesSheet(f *excelize.File, entries []services.SalaryReportEntry) error {
	if _, err := f.NewSheet(sheetSalaries); err != nil {
		return fmt.Errorf("new sheet %s: %w", sheetSalaries, err)
	}

	headers := []string{"Code", "Name", "Months worked", "Annual expected", "Total paid", "Outstanding", "Progress %"}
	if err := setHeaders(f, sheetSalaries, headers); err != nil {
		return err
	}
	for i, e := range entries {
		row := []any{
			e.Employee.EmployeeCode,
			e.Employee.FullName(),
			e.MonthsWorked,
			cellValue(e.AnnualExpected),
			cellValue(e.TotalPaid),
			cellValue(e.Outstanding),
			cellValue(e.Progress),
		}
		if err := setRow(f, sheetSalaries, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheetSalaries, "B", "B", 24)
}
