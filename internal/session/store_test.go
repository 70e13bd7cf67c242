package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/logbookhq/logbook/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &Session{
		ID:            "sess-1",
		Username:      "alice",
		Role:          model.RoleStandard,
		UpstreamToken: "tok-abc",
	}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}

	got, err := store.Get(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "alice" || got.UpstreamToken != "tok-abc" {
		t.Errorf("unexpected session: %+v", got)
	}
	if got.IsAdmin() {
		t.Error("standard session must not be admin")
	}
}

func TestSessionNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &Session{ID: "sess-2", Username: "bob", Role: model.RoleStandard, UpstreamToken: "t"}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Delete(ctx, "sess-2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "sess-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// A second delete of the same session must not fail.
	if err := store.Delete(ctx, "sess-2"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestAdminRoleIsStored(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sess := &Session{ID: "sess-3", Username: "admin", Role: model.RoleAdmin, UpstreamToken: "t"}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, "sess-3")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.IsAdmin() {
		t.Error("expected stored admin role")
	}
}

func TestDeleteExpired(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	old := &Session{ID: "old", Username: "alice", Role: model.RoleStandard, UpstreamToken: "t"}
	if err := store.Create(ctx, old); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Backdate the row past any plausible TTL.
	if _, err := store.db.Exec("UPDATE sessions SET created_at = ? WHERE id = 'old'",
		time.Now().UTC().Add(-48*time.Hour)); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	fresh := &Session{ID: "fresh", Username: "bob", Role: model.RoleStandard, UpstreamToken: "t"}
	if err := store.Create(ctx, fresh); err != nil {
		t.Fatalf("Create: %v", err)
	}

	n, err := store.DeleteExpired(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 expired session removed, got %d", n)
	}
	if count, _ := store.Count(ctx); count != 1 {
		t.Errorf("expected 1 remaining session, got %d", count)
	}
}

func TestJanitorSweepsExpiredSessions(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stale := &Session{ID: "stale", Username: "alice", Role: model.RoleStandard, UpstreamToken: "t"}
	if err := store.Create(ctx, stale); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.db.Exec("UPDATE sessions SET created_at = ? WHERE id = 'stale'",
		time.Now().UTC().Add(-48*time.Hour)); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	// A long interval: only the immediate sweep should fire during the test.
	store.StartJanitor(ctx, 24*time.Hour, time.Hour, logger)

	deadline := time.Now().Add(2 * time.Second)
	for {
		count, err := store.Count(ctx)
		if err != nil {
			t.Fatalf("Count: %v", err)
		}
		if count == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("expired session still present after sweep, count=%d", count)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	sess := &Session{ID: "durable", Username: "alice", Role: model.RoleStandard, UpstreamToken: "tok"}
	if err := store.Create(ctx, sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Get(ctx, "durable")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if got.UpstreamToken != "tok" {
		t.Errorf("token lost across reopen: %+v", got)
	}
}

func TestSettings(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetSetting(ctx, "instance_id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.SetSetting(ctx, "instance_id", "abc"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if err := store.SetSetting(ctx, "instance_id", "xyz"); err != nil {
		t.Fatalf("SetSetting upsert: %v", err)
	}
	got, err := store.GetSetting(ctx, "instance_id")
	if err != nil {
		t.Fatalf("GetSetting: %v", err)
	}
	if got != "xyz" {
		t.Errorf("setting: got %q, want %q", got, "xyz")
	}
}
