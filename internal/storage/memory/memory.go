// Package memory provides an in-process implementation of the ledger store.
// It backs tests and the DATA_BACKEND=memory mode, where no database file is
// wanted. Semantics mirror the SQLite repository: joint owner predicates,
// date-descending ordering, zero-default sums.
package memory

import (
	"context"
	"sort"
	"sync"

	"budget/internal/core"
)

type Store struct {
	mu           sync.RWMutex
	nextOwnerID  int64
	nextTxID     int64
	owners       map[int64]core.Owner
	byUsername   map[string]int64
	transactions map[int64]core.Transaction
}

func New() *Store {
	return &Store{
		nextOwnerID:  1,
		nextTxID:     1,
		owners:       make(map[int64]core.Owner),
		byUsername:   make(map[string]int64),
		transactions: make(map[int64]core.Transaction),
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateOwner(ctx context.Context, username, passwordHash string) (core.Owner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return core.Owner{}, core.ErrUsernameTaken
	}

	o := core.Owner{ID: s.nextOwnerID, Username: username, PasswordHash: passwordHash}
	s.nextOwnerID++
	s.owners[o.ID] = o
	s.byUsername[username] = o.ID
	return o, nil
}

func (s *Store) GetOwnerByUsername(ctx context.Context, username string) (core.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return core.Owner{}, core.ErrNotFound
	}
	return s.owners[id], nil
}

func (s *Store) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.nextTxID
	s.nextTxID++
	s.transactions[t.ID] = t
	return t.ID, nil
}

func (s *Store) UpdateTransaction(ctx context.Context, ownerID, id int64, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[id]
	if !ok || existing.OwnerID != ownerID {
		return core.ErrNotFound
	}

	// Full replace; id and owner stay fixed.
	t.ID = id
	t.OwnerID = ownerID
	s.transactions[id] = t
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.transactions[id]
	if !ok || existing.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.transactions, id)
	return nil
}

func (s *Store) ListTransactions(ctx context.Context, ownerID int64, p core.Period) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []core.Transaction
	for _, t := range s.transactions {
		if t.OwnerID != ownerID || !p.Matches(t.Date) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) ListAllTransactions(ctx context.Context, ownerID int64) ([]core.Transaction, error) {
	return s.ListTransactions(ctx, ownerID, core.AllTime())
}

func (s *Store) SumByKind(ctx context.Context, ownerID int64, p core.Period, kind core.Kind) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && t.Kind == kind && p.Matches(t.Date) {
			total += t.Amount.Cents
		}
	}
	return total, nil
}

func (s *Store) CategoryTotals(ctx context.Context, ownerID int64, p core.Period) ([]core.CategoryAmount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := make(map[string]int64)
	for _, t := range s.transactions {
		if t.OwnerID == ownerID && t.Kind == core.Expense && p.Matches(t.Date) {
			totals[t.Category] += t.Amount.Cents
		}
	}

	out := make([]core.CategoryAmount, 0, len(totals))
	for name, cents := range totals {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (s *Store) WalletBalance(ctx context.Context, ownerID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var balance int64
	for _, t := range s.transactions {
		if t.OwnerID != ownerID {
			continue
		}
		if t.Kind == core.Income {
			balance += t.Amount.Cents
		} else {
			balance -= t.Amount.Cents
		}
	}
	return balance, nil
}
