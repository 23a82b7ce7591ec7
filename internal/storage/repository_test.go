package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"budget/internal/core"
)

func newRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedOwner(t *testing.T, repo *SQLiteRepository, username string) core.Owner {
	t.Helper()
	o, err := repo.CreateOwner(context.Background(), username, "$2a$14$fakehash")
	if err != nil {
		t.Fatalf("create owner %q: %v", username, err)
	}
	return o
}

func seedTx(t *testing.T, repo *SQLiteRepository, ownerID int64, date string, cents int64, category string, kind core.Kind, desc string) int64 {
	t.Helper()
	d, err := core.ParseDate(date)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	id, err := repo.CreateTransaction(context.Background(), core.Transaction{
		OwnerID:     ownerID,
		Date:        d,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Kind:        kind,
		Description: desc,
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	return id
}

func TestCreateOwnerUniqueUsername(t *testing.T) {
	repo := newRepo(t)
	seedOwner(t, repo, "alice")

	_, err := repo.CreateOwner(context.Background(), "alice", "otherhash")
	if !errors.Is(err, core.ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}
}

func TestGetOwnerByUsername(t *testing.T) {
	repo := newRepo(t)
	created := seedOwner(t, repo, "alice")

	got, err := repo.GetOwnerByUsername(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get owner: %v", err)
	}
	if got.ID != created.ID || got.Username != "alice" || got.PasswordHash != created.PasswordHash {
		t.Fatalf("got %+v, want %+v", got, created)
	}

	if _, err := repo.GetOwnerByUsername(context.Background(), "nobody"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing owner: got %v, want ErrNotFound", err)
	}
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newRepo(t)
	owner := seedOwner(t, repo, "alice")
	id := seedTx(t, repo, owner.ID, "2025-11-06", 4560, "Groceries", core.Expense, "Weekly shop")

	txs, err := repo.ListAllTransactions(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("expected 1 row, got %d", len(txs))
	}
	got := txs[0]
	if got.ID != id || got.OwnerID != owner.ID || got.Date.String() != "2025-11-06" ||
		got.Amount.Cents != 4560 || got.Category != "Groceries" ||
		got.Kind != core.Expense || got.Description != "Weekly shop" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestListOrderingStable(t *testing.T) {
	repo := newRepo(t)
	owner := seedOwner(t, repo, "alice")

	older := seedTx(t, repo, owner.ID, "2025-11-01", 100, "A", core.Expense, "")
	first := seedTx(t, repo, owner.ID, "2025-11-06", 200, "B", core.Expense, "")
	second := seedTx(t, repo, owner.ID, "2025-11-06", 300, "C", core.Expense, "")

	for i := 0; i < 3; i++ {
		txs, err := repo.ListAllTransactions(context.Background(), owner.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(txs) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(txs))
		}
		if txs[0].ID != second || txs[1].ID != first || txs[2].ID != older {
			t.Fatalf("order not date desc, id desc: %d, %d, %d", txs[0].ID, txs[1].ID, txs[2].ID)
		}
	}
}

func TestPeriodFilterMatchesYearMonthPrefix(t *testing.T) {
	repo := newRepo(t)
	owner := seedOwner(t, repo, "alice")

	seedTx(t, repo, owner.ID, "2025-11-01", 100, "A", core.Expense, "")
	seedTx(t, repo, owner.ID, "2025-11-30", 200, "B", core.Expense, "")
	seedTx(t, repo, owner.ID, "2025-10-31", 300, "C", core.Expense, "")
	seedTx(t, repo, owner.ID, "2024-11-15", 400, "D", core.Expense, "")

	nov, err := repo.ListTransactions(context.Background(), owner.ID, core.YearMonth(2025, 11))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(nov) != 2 {
		t.Fatalf("expected 2 november rows, got %d", len(nov))
	}
	for _, tx := range nov {
		if tx.Date.Year() != 2025 || tx.Date.Month() != 11 {
			t.Fatalf("row outside period: %+v", tx)
		}
	}

	all, err := repo.ListTransactions(context.Background(), owner.ID, core.AllTime())
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 rows all-time, got %d", len(all))
	}
}

func TestJointOwnerPredicateOnMutations(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	alice := seedOwner(t, repo, "alice")
	bob := seedOwner(t, repo, "bob")
	bobTx := seedTx(t, repo, bob.ID, "2025-11-03", 8000, "Rent", core.Expense, "")

	// Alice cannot delete bob's row even knowing its id.
	if err := repo.DeleteTransaction(ctx, alice.ID, bobTx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner delete: got %v, want ErrNotFound", err)
	}
	// Nor edit it.
	err := repo.UpdateTransaction(ctx, alice.ID, bobTx, core.Transaction{
		Date:     core.NewDate(2025, 11, 3),
		Amount:   core.Money{Cents: 1},
		Category: "Rent",
		Kind:     core.Expense,
	})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-owner update: got %v, want ErrNotFound", err)
	}

	// Bob's row is untouched.
	txs, err := repo.ListAllTransactions(ctx, bob.ID)
	if err != nil {
		t.Fatalf("list bob: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount.Cents != 8000 {
		t.Fatalf("bob's row changed: %+v", txs)
	}

	// Alice sees nothing of bob's.
	aliceTxs, err := repo.ListAllTransactions(ctx, alice.ID)
	if err != nil {
		t.Fatalf("list alice: %v", err)
	}
	if len(aliceTxs) != 0 {
		t.Fatalf("foreign rows leaked into alice's view: %+v", aliceTxs)
	}

	// A genuinely missing id is the same NotFound.
	if err := repo.DeleteTransaction(ctx, alice.ID, 999999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing id delete: got %v, want ErrNotFound", err)
	}
}

func TestAggregatesMatchDetailRows(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	owner := seedOwner(t, repo, "alice")

	// Original demo fixture.
	seedTx(t, repo, owner.ID, "2025-11-01", 250000, "Salary", core.Income, "November salary")
	seedTx(t, repo, owner.ID, "2025-11-06", 4560, "Groceries", core.Expense, "Weekly shop")
	seedTx(t, repo, owner.ID, "2025-11-07", 1250, "Transport", core.Expense, "Bus pass top-up")
	seedTx(t, repo, owner.ID, "2025-11-09", 12000, "Utilities", core.Expense, "Electricity bill")
	seedTx(t, repo, owner.ID, "2025-11-15", 10000, "Freelance", core.Income, "Side gig")

	p := core.YearMonth(2025, 11)
	income, err := repo.SumByKind(ctx, owner.ID, p, core.Income)
	if err != nil {
		t.Fatalf("sum income: %v", err)
	}
	expense, err := repo.SumByKind(ctx, owner.ID, p, core.Expense)
	if err != nil {
		t.Fatalf("sum expense: %v", err)
	}

	// SQL aggregates must agree exactly with summing the detail rows.
	txs, err := repo.ListTransactions(ctx, owner.ID, p)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var wantIncome, wantExpense int64
	for _, tx := range txs {
		if tx.Kind == core.Income {
			wantIncome += tx.Amount.Cents
		} else {
			wantExpense += tx.Amount.Cents
		}
	}
	if income != wantIncome || expense != wantExpense {
		t.Fatalf("aggregates (%d, %d) != detail sums (%d, %d)", income, expense, wantIncome, wantExpense)
	}

	breakdown, err := repo.CategoryTotals(ctx, owner.ID, p)
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	var breakdownSum int64
	for _, ca := range breakdown {
		breakdownSum += ca.Amount.Cents
	}
	if breakdownSum != expense {
		t.Fatalf("breakdown sum %d != expense total %d", breakdownSum, expense)
	}
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 expense categories, got %+v", breakdown)
	}

	balance, err := repo.WalletBalance(ctx, owner.ID)
	if err != nil {
		t.Fatalf("wallet balance: %v", err)
	}
	if balance != wantIncome-wantExpense {
		t.Fatalf("wallet balance %d != %d", balance, wantIncome-wantExpense)
	}
}

func TestSumByKindEmptyIsZero(t *testing.T) {
	repo := newRepo(t)
	owner := seedOwner(t, repo, "alice")

	total, err := repo.SumByKind(context.Background(), owner.ID, core.YearMonth(2031, 2), core.Income)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if total != 0 {
		t.Fatalf("empty sum = %d, want 0", total)
	}

	breakdown, err := repo.CategoryTotals(context.Background(), owner.ID, core.AllTime())
	if err != nil {
		t.Fatalf("category totals: %v", err)
	}
	if len(breakdown) != 0 {
		t.Fatalf("breakdown should be empty, got %+v", breakdown)
	}
}
