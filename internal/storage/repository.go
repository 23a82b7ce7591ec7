// Package storage persists owners and transactions in SQLite.
//
// Every transaction query and mutation carries the owner id inside the SQL
// predicate itself. There is deliberately no separate "does this row belong
// to me" lookup: a mismatched owner simply affects zero rows, which callers
// see as core.ErrNotFound.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"budget/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateOwner inserts a new owner row. A username collision surfaces as
// core.ErrUsernameTaken.
func (r *SQLiteRepository) CreateOwner(ctx context.Context, username, passwordHash string) (core.Owner, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO owners(username, password_hash) VALUES(?, ?)`,
		username, passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Owner{}, core.ErrUsernameTaken
		}
		return core.Owner{}, fmt.Errorf("insert owner: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Owner{}, fmt.Errorf("owner last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Owner created", "owner_id", id, "username", username)

	return core.Owner{ID: id, Username: username, PasswordHash: passwordHash}, nil
}

// GetOwnerByUsername looks an owner up for login.
func (r *SQLiteRepository) GetOwnerByUsername(ctx context.Context, username string) (core.Owner, error) {
	var o core.Owner
	err := r.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM owners WHERE username = ?`,
		username).Scan(&o.ID, &o.Username, &o.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Owner{}, core.ErrNotFound
	}
	if err != nil {
		return core.Owner{}, fmt.Errorf("get owner by username: %w", err)
	}
	return o, nil
}

// CreateTransaction inserts a validated transaction and returns its id.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions(owner_id, date, amount_cents, category, kind, description)
		 VALUES(?, ?, ?, ?, ?, ?)`,
		t.OwnerID, t.Date.String(), t.Amount.Cents, t.Category, string(t.Kind), t.Description)
	if err != nil {
		return 0, fmt.Errorf("insert transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("transaction last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"owner_id", t.OwnerID,
		"date", t.Date.String(),
		"amount_cents", t.Amount.Cents,
		"kind", string(t.Kind),
		"category", t.Category)

	return id, nil
}

// UpdateTransaction replaces date/amount/category/kind/description of the row
// jointly matching (id, ownerID). Id and owner never change.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, ownerID, id int64, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET date = ?, amount_cents = ?, category = ?, kind = ?, description = ?
		 WHERE id = ? AND owner_id = ?`,
		t.Date.String(), t.Amount.Cents, t.Category, string(t.Kind), t.Description, id, ownerID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes the row jointly matching (id, ownerID).
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE id = ? AND owner_id = ?`,
		id, ownerID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rows affected: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ownerID)
	return nil
}

// periodClause is the single filter predicate shared by every period-scoped
// query. The period key is passed twice: once for the all-time bypass and
// once for the YYYY-MM prefix comparison.
const periodClause = `(? = 'all' OR strftime('%Y-%m', date) = ?)`

// ListTransactions returns an owner's rows for the period, newest first.
// Ordering is date descending with id descending as tiebreak, so repeated
// calls paginate and export identically.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, ownerID int64, p core.Period) ([]core.Transaction, error) {
	key := p.Key()
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_id, date, amount_cents, category, kind, description
		 FROM transactions
		 WHERE owner_id = ? AND `+periodClause+`
		 ORDER BY date DESC, id DESC`,
		ownerID, key, key)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// ListAllTransactions returns an owner's full history, newest first.
func (r *SQLiteRepository) ListAllTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return r.ListTransactions(ctx, ownerID, core.AllTime())
}

// SumByKind totals one kind over the period. Empty sets sum to zero.
func (r *SQLiteRepository) SumByKind(ctx context.Context, ownerID int64, p core.Period, kind core.Kind) (int64, error) {
	key := p.Key()
	var total int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0)
		 FROM transactions
		 WHERE owner_id = ? AND kind = ? AND `+periodClause,
		ownerID, string(kind), key, key).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum by kind: %w", err)
	}
	return total, nil
}

// CategoryTotals sums expense rows per category over the period. Categories
// with no matching rows never appear; GROUP BY cannot emit empty groups.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryAmount, error) {
	key := p.Key()
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, SUM(amount_cents) AS total
		 FROM transactions
		 WHERE owner_id = ? AND kind = 'expense' AND `+periodClause+`
		 GROUP BY category
		 ORDER BY category`,
		ownerID, key, key)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	defer rows.Close()

	var out []core.CategoryAmount
	for rows.Next() {
		var ca core.CategoryAmount
		if err := rows.Scan(&ca.Name, &ca.Amount.Cents); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		out = append(out, ca)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category totals: %w", err)
	}
	return out, nil
}

// WalletBalance is all-time income minus all-time expense for the owner,
// independent of any period selector.
func (r *SQLiteRepository) WalletBalance(ctx context.Context, ownerID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE kind WHEN 'income' THEN amount_cents ELSE -amount_cents END), 0)
		 FROM transactions
		 WHERE owner_id = ?`,
		ownerID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("wallet balance: %w", err)
	}
	return balance, nil
}

func scanTransaction(rows *sql.Rows) (core.Transaction, error) {
	var (
		t       core.Transaction
		dateStr string
		kindStr string
	)
	if err := rows.Scan(&t.ID, &t.OwnerID, &dateStr, &t.Amount.Cents, &t.Category, &kindStr, &t.Description); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	t.Date = date
	t.Kind = core.Kind(kindStr)
	return t, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
