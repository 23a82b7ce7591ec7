package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/amqp"
	"budget/internal/core"
	"budget/internal/export"
	"budget/internal/storage/memory"
)

func TestHandleExportRequestWritesCSV(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	owner, err := store.CreateOwner(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	for _, tx := range []core.Transaction{
		{OwnerID: owner.ID, Date: core.NewDate(2025, 11, 1), Amount: core.Money{Cents: 250000}, Category: "Salary", Kind: core.Income, Description: "Nov salary"},
		{OwnerID: owner.ID, Date: core.NewDate(2025, 11, 6), Amount: core.Money{Cents: 4560}, Category: "Groceries", Kind: core.Expense},
	} {
		if _, err := store.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}

	dir := t.TempDir()
	w := NewExportWorker(store, dir)
	w.now = func() time.Time { return time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC) }

	if err := w.HandleExportRequest(ctx, amqp.NewExportRequest(owner.ID)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	path := filepath.Join(dir, "owner-1-20251120T120000.csv")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()

	rows, err := export.ReadCSV(f)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	// Store order: newest first.
	if rows[0].Category != "Groceries" || rows[1].Category != "Salary" {
		t.Fatalf("rows out of order: %+v", rows)
	}
}

func TestHandleExportRequestEmptyLedger(t *testing.T) {
	store := memory.New()
	dir := t.TempDir()
	w := NewExportWorker(store, dir)

	if err := w.HandleExportRequest(context.Background(), amqp.NewExportRequest(99)); err != nil {
		t.Fatalf("handle: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one export file, got %d", len(entries))
	}
}

type failingLister struct{}

func (failingLister) ListAllTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return nil, errors.New("store down")
}

func TestHandleExportRequestStoreFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewExportWorker(failingLister{}, dir)

	if err := w.HandleExportRequest(context.Background(), amqp.NewExportRequest(1)); err == nil {
		t.Fatal("expected error")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("no file should be written on failure, found %d", len(entries))
	}
}
