// Package worker renders queued CSV export requests to files on disk.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/export"
)

// Lister is the slice of the ledger the worker needs: the full history read.
type Lister interface {
	ListAllTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error)
}

// ExportWorker consumes export requests and writes one CSV file per request
// into its export directory.
type ExportWorker struct {
	store     Lister
	exportDir string
	now       func() time.Time
}

func NewExportWorker(store Lister, exportDir string) *ExportWorker {
	return &ExportWorker{
		store:     store,
		exportDir: exportDir,
		now:       time.Now,
	}
}

// HandleExportRequest reads the owner's full ledger and renders it to
// <exportDir>/owner-<id>-<timestamp>.csv. The file carries whatever the
// ledger holds at processing time, newest row first.
func (w *ExportWorker) HandleExportRequest(ctx context.Context, msg *amqp.ExportRequest) error {
	slog.InfoContext(ctx, "Processing export request",
		"owner_id", msg.OwnerID,
		"requested_at", msg.RequestedAt)

	txs, err := w.store.ListAllTransactions(ctx, msg.OwnerID)
	if err != nil {
		return fmt.Errorf("list transactions for export: %w", err)
	}

	if err := os.MkdirAll(w.exportDir, 0755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	path := filepath.Join(w.exportDir, w.fileName(msg.OwnerID))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}

	if err := export.WriteCSV(f, txs); err != nil {
		f.Close()
		os.Remove(path) // don't leave a truncated export behind
		return fmt.Errorf("write export file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}

	slog.InfoContext(ctx, "Export written",
		"owner_id", msg.OwnerID,
		"path", path,
		"rows", len(txs))

	return nil
}

func (w *ExportWorker) fileName(ownerID int64) string {
	return fmt.Sprintf("owner-%d-%s.csv", ownerID, w.now().UTC().Format("20060102T150405"))
}
