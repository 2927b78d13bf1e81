// Package worker drives the background report export.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tally/internal/amqp"
	"tally/internal/export"
	"tally/internal/log"
)

// ExportWorker consumes entity-change events and regenerates the report
// workbook. Changes are debounced: an event only marks the books dirty,
// and the ticker loop exports at most once per interval.
type ExportWorker struct {
	exporter *export.Exporter
	interval time.Duration
	logger   *log.Logger

	mu    sync.Mutex
	dirty bool
}

func NewExportWorker(exporter *export.Exporter, interval time.Duration, logger *log.Logger) *ExportWorker {
	return &ExportWorker{
		exporter: exporter,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEntityChange marks the books dirty. The actual export happens on
// the next tick of Run.
func (w *ExportWorker) HandleEntityChange(ctx context.Context, msg *amqp.EntityChangeMessage) error {
	w.mu.Lock()
	w.dirty = true
	w.mu.Unlock()

	w.logger.DebugContext(ctx, "entity change received",
		log.FieldEntity, msg.Entity,
		log.FieldEntityID, msg.ID,
		"action", msg.Action)
	return nil
}

// ExportPending regenerates the workbook if anything changed since the
// last export. It reports whether an export ran.
func (w *ExportWorker) ExportPending(ctx context.Context) (bool, error) {
	w.mu.Lock()
	if !w.dirty {
		w.mu.Unlock()
		return false, nil
	}
	w.dirty = false
	w.mu.Unlock()

	path, err := w.exporter.Generate(ctx)
	if err != nil {
		// Keep the dirty mark so the next tick retries.
		w.mu.Lock()
		w.dirty = true
		w.mu.Unlock()
		return false, fmt.Errorf("export pending changes: %w", err)
	}

	w.logger.InfoContext(ctx, "report workbook regenerated", log.FieldWorkbook, path)
	return true, nil
}

// StartupExport produces one workbook unconditionally so a fresh worker
// always leaves a current export behind, even with no traffic.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	path, err := w.exporter.Generate(ctx)
	if err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	w.logger.InfoContext(ctx, "startup export complete", log.FieldWorkbook, path)
	return nil
}

// Run exports dirty state on each tick until the context ends.
func (w *ExportWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := w.ExportPending(ctx); err != nil {
				w.logger.ErrorContext(ctx, "export failed", log.FieldError, err)
			}
		}
	}
}
