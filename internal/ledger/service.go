// Package ledger implements the aggregation engine on top of a pluggable
// transaction store.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"budget/internal/core"
)

// Store is the persistence contract the engine runs against. Both the SQLite
// repository and the in-memory store satisfy it. Every method is scoped to a
// single owner; implementations enforce the owner predicate inside the same
// query that does the work.
type Store interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	UpdateTransaction(ctx context.Context, ownerID, id int64, t core.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id int64) error
	ListTransactions(ctx context.Context, ownerID int64, p core.Period) ([]core.Transaction, error)
	ListAllTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error)
	SumByKind(ctx context.Context, ownerID int64, p core.Period, kind core.Kind) (int64, error)
	CategoryTotals(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryAmount, error)
	WalletBalance(ctx context.Context, ownerID int64) (int64, error)
}

// Service orchestrates ledger operations. It is stateless between calls and
// safe for concurrent use; all mutable state lives in the store.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add validates and stores a new transaction for the owner.
func (s *Service) Add(ctx context.Context, ownerID int64, t core.Transaction) (int64, error) {
	t.OwnerID = ownerID
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("add transaction: %w", err)
	}
	return id, nil
}

// Edit replaces the mutable fields of the owner's transaction. A row that
// does not exist and a row owned by someone else are both core.ErrNotFound;
// callers cannot tell the difference.
func (s *Service) Edit(ctx context.Context, ownerID, id int64, t core.Transaction) error {
	t.OwnerID = ownerID
	if err := t.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateTransaction(ctx, ownerID, id, t); err != nil {
		if err == core.ErrNotFound {
			return err
		}
		return fmt.Errorf("edit transaction: %w", err)
	}
	return nil
}

// Delete removes the owner's transaction, with the same joint-match rule as Edit.
func (s *Service) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.DeleteTransaction(ctx, ownerID, id); err != nil {
		if err == core.ErrNotFound {
			return err
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

// ListAll returns the owner's full history, newest first.
func (s *Service) ListAll(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	txs, err := s.store.ListAllTransactions(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return txs, nil
}

// Summarize computes the owner's summary for the period: detail rows, income
// and expense totals, net, and the expense-by-category breakdown, plus the
// all-time wallet balance. The wallet balance ignores the period on purpose;
// for an all-time period it coincides with Net by construction, never by a
// special case.
func (s *Service) Summarize(ctx context.Context, ownerID int64, p core.Period) (core.Summary, error) {
	if err := p.Validate(); err != nil {
		return core.Summary{}, err
	}

	txs, err := s.store.ListTransactions(ctx, ownerID, p)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: list: %w", err)
	}

	income, err := s.store.SumByKind(ctx, ownerID, p, core.Income)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: income total: %w", err)
	}

	expense, err := s.store.SumByKind(ctx, ownerID, p, core.Expense)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: expense total: %w", err)
	}

	breakdown, err := s.store.CategoryTotals(ctx, ownerID, p)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: category totals: %w", err)
	}

	balance, err := s.store.WalletBalance(ctx, ownerID)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summarize: wallet balance: %w", err)
	}

	// An abandoned caller must never receive a partial summary.
	if err := ctx.Err(); err != nil {
		return core.Summary{}, err
	}

	slog.DebugContext(ctx, "Summary computed",
		"owner_id", ownerID,
		"period", p.Key(),
		"rows", len(txs),
		"income_cents", income,
		"expense_cents", expense)

	return core.Summary{
		Period:            p,
		Transactions:      txs,
		TotalIncome:       core.Money{Cents: income},
		TotalExpense:      core.Money{Cents: expense},
		Net:               core.Money{Cents: income - expense},
		CategoryBreakdown: breakdown,
		WalletBalance:     core.Money{Cents: balance},
	}, nil
}
