package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/services"
)

// Exporter regenerates the report workbook on demand.
type Exporter struct {
	reports *services.ReportService
	dir     string
	logger  *log.Logger
}

func NewExporter(reports *services.ReportService, dir string, logger *log.Logger) *Exporter {
	return &Exporter{
		reports: reports,
		dir:     dir,
		logger:  logger.WithComponent(log.ComponentExport),
	}
}

// Generate builds a fresh workbook from the current state of the books
// and writes it under the export directory. It returns the written path.
func (e *Exporter) Generate(ctx context.Context) (string, error) {
	data, err := e.collect(ctx)
	if err != nil {
		return "", err
	}

	f, err := BuildWorkbook(data)
	if err != nil {
		return "", fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(e.dir, fmt.Sprintf("reports_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.InfoContext(ctx, "workbook exported", log.FieldWorkbook, path)
	return path, nil
}

func (e *Exporter) collect(ctx context.Context) (ReportData, error) {
	var data ReportData
	var err error

	f := core.Filter{}
	if data.Dashboard, err = e.reports.Dashboard(ctx, f); err != nil {
		return ReportData{}, fmt.Errorf("collect dashboard: %w", err)
	}
	if data.ProfitLoss, err = e.reports.ProfitLoss(ctx, f); err != nil {
		return ReportData{}, fmt.Errorf("collect profit and loss: %w", err)
	}
	if data.BalanceSheet, err = e.reports.BalanceSheet(ctx, f); err != nil {
		return ReportData{}, fmt.Errorf("collect balance sheet: %w", err)
	}
	if data.ProjectFinance, err = e.reports.ProjectFinance(ctx, f); err != nil {
		return ReportData{}, fmt.Errorf("collect project finance: %w", err)
	}
	if data.Salaries, err = e.reports.SalaryReport(ctx, f); err != nil {
		return ReportData{}, fmt.Errorf("collect salary report: %w", err)
	}
	return data, nil
}
