// Package auth verifies credentials and issues sessions. The rest of the
// system only ever sees the opaque owner id this package resolves; raw
// passwords never travel past it.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"budget/internal/core"
)

// OwnerStore is the slice of the ledger store auth needs.
type OwnerStore interface {
	CreateOwner(ctx context.Context, username, passwordHash string) (core.Owner, error)
	GetOwnerByUsername(ctx context.Context, username string) (core.Owner, error)
}

type Service struct {
	owners   OwnerStore
	sessions SessionStore
	cost     int
}

// NewService wires credential verification to an owner store and a session
// provider. cost is the bcrypt work factor; 0 picks the library default.
func NewService(owners OwnerStore, sessions SessionStore, cost int) *Service {
	return &Service{owners: owners, sessions: sessions, cost: cost}
}

// Register creates a new owner with a hashed secret. A taken username
// surfaces as core.ErrUsernameTaken.
func (s *Service) Register(ctx context.Context, username, password string) (core.Owner, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return core.Owner{}, core.ErrInvalidCredentials
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return core.Owner{}, fmt.Errorf("hash password: %w", err)
	}

	owner, err := s.owners.CreateOwner(ctx, username, hash)
	if err != nil {
		if errors.Is(err, core.ErrUsernameTaken) {
			return core.Owner{}, err
		}
		return core.Owner{}, fmt.Errorf("create owner: %w", err)
	}

	slog.InfoContext(ctx, "Owner registered", "owner_id", owner.ID, "username", username)
	return owner, nil
}

// Login verifies the credentials and returns the owner. An unknown username
// and a wrong password produce the same error so callers cannot probe for
// account existence.
func (s *Service) Login(ctx context.Context, username, password string) (core.Owner, error) {
	owner, err := s.owners.GetOwnerByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.Owner{}, core.ErrInvalidCredentials
		}
		return core.Owner{}, fmt.Errorf("look up owner: %w", err)
	}

	if !CheckPassword(password, owner.PasswordHash) {
		return core.Owner{}, core.ErrInvalidCredentials
	}

	return owner, nil
}

// StartSession issues a session token for an authenticated owner.
func (s *Service) StartSession(ctx context.Context, owner core.Owner) (string, error) {
	token, err := s.sessions.Create(ctx, owner.ID)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// ResolveSession maps a session token back to an owner id.
func (s *Service) ResolveSession(ctx context.Context, token string) (int64, error) {
	return s.sessions.Resolve(ctx, token)
}

// EndSession invalidates a session token. Unknown tokens are a no-op.
func (s *Service) EndSession(ctx context.Context, token string) {
	s.sessions.Destroy(ctx, token)
}
