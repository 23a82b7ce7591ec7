package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"budget/internal/core"
	"budget/internal/storage/memory"
)

// bcrypt.MinCost keeps the hashing fast in tests.
func newAuth(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.New(), NewMemorySessionStore(time.Hour), bcrypt.MinCost)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	owner, err := svc.Register(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if owner.ID == 0 || owner.Username != "alice" {
		t.Fatalf("bad owner: %+v", owner)
	}
	if owner.PasswordHash == "s3cret" || owner.PasswordHash == "" {
		t.Fatal("password stored unhashed")
	}

	got, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != owner.ID {
		t.Fatalf("login owner id = %d, want %d", got.ID, owner.ID)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPassword := svc.Login(ctx, "alice", "nope")
	_, unknownUser := svc.Login(ctx, "mallory", "nope")

	if !errors.Is(wrongPassword, core.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", wrongPassword)
	}
	if !errors.Is(unknownUser, core.ErrInvalidCredentials) {
		t.Fatalf("unknown user: got %v", unknownUser)
	}
	if wrongPassword.Error() != unknownUser.Error() {
		t.Fatal("login errors must not reveal account existence")
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "one"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "two"); !errors.Is(err, core.ErrUsernameTaken) {
		t.Fatalf("got %v, want ErrUsernameTaken", err)
	}
}

func TestRegisterRejectsBlankInput(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	for _, tc := range []struct{ user, pass string }{
		{"", "pw"},
		{"  ", "pw"},
		{"alice", ""},
	} {
		if _, err := svc.Register(ctx, tc.user, tc.pass); !errors.Is(err, core.ErrInvalidCredentials) {
			t.Fatalf("(%q, %q): got %v, want ErrInvalidCredentials", tc.user, tc.pass, err)
		}
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := newAuth(t)
	ctx := context.Background()

	owner, err := svc.Register(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	token, err := svc.StartSession(ctx, owner)
	if err != nil {
		t.Fatalf("start session: %v", err)
	}

	gotID, err := svc.ResolveSession(ctx, token)
	if err != nil || gotID != owner.ID {
		t.Fatalf("resolve = (%d, %v), want (%d, nil)", gotID, err, owner.ID)
	}

	svc.EndSession(ctx, token)
	if _, err := svc.ResolveSession(ctx, token); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("resolve after logout: got %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	store := NewMemorySessionStore(time.Minute)
	base := time.Now()
	store.now = func() time.Time { return base }

	token, err := store.Create(context.Background(), 42)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if id, err := store.Resolve(context.Background(), token); err != nil || id != 42 {
		t.Fatalf("fresh resolve = (%d, %v)", id, err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := store.Resolve(context.Background(), token); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("expired resolve: got %v", err)
	}

	// Purge sweeps whatever lazy resolution has not touched.
	if _, err := store.Create(context.Background(), 43); err != nil {
		t.Fatalf("create: %v", err)
	}
	store.now = func() time.Time { return base.Add(time.Hour) }
	if purged := store.Purge(); purged != 1 {
		t.Fatalf("purged %d sessions, want 1", purged)
	}
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword("pw", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("other", hash) {
		t.Fatal("wrong password accepted")
	}
}
