package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tally/internal/amqp"
	"tally/internal/export"
	"tally/internal/log"
	"tally/internal/services"
	"tally/internal/storage"
)

func newTestWorker(t *testing.T) (*ExportWorker, string) {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	exportDir := t.TempDir()
	logger := log.New(log.DefaultConfig())
	exporter := export.NewExporter(services.NewReportService(store), exportDir, logger)
	return NewExportWorker(exporter, time.Second, logger), exportDir
}

func workbookCount(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".xlsx" {
			count++
		}
	}
	return count
}

func TestExportPendingDebounces(t *testing.T) {
	w, dir := newTestWorker(t)
	ctx := context.Background()

	ran, err := w.ExportPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Fatal("clean state must not export")
	}

	for i := 0; i < 3; i++ {
		msg := amqp.NewEntityChangeMessage("account", int64(i+1), amqp.ActionCreated)
		if err := w.HandleEntityChange(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}

	ran, err = w.ExportPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("dirty state must export")
	}
	if got := workbookCount(t, dir); got != 1 {
		t.Fatalf("three changes must collapse into one workbook, got %d", got)
	}

	// Dirty flag is consumed by the export.
	ran, err = w.ExportPending(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ran {
		t.Fatal("second pass must be a no-op")
	}
}

func TestStartupExport(t *testing.T) {
	w, dir := newTestWorker(t)

	if err := w.StartupExport(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := workbookCount(t, dir); got != 1 {
		t.Fatalf("workbooks: got %d", got)
	}
}
