package service

import (
	"context"
	"strings"
	"testing"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/session"
	"github.com/logbookhq/logbook/internal/sheets"
)

const testJWTSecret = "test-secret-for-session-tokens"

// stubGateway implements CredentialGateway and RecordGateway in memory and
// counts calls, so tests can assert that local failures never hit the wire.
type stubGateway struct {
	calls int

	loginSession sheets.Session
	loginErr     error
	changeErr    error
	addPassword  string
	addErr       error
	users        []model.UserSummary
	listErr      error
	deleteErr    error

	searchResults []model.VehicleRecord
	searchErr     error
	updateErr     error
	lastCriteria  model.Criteria
	lastToken     string
	lastRecord    model.VehicleRecord
}

func (g *stubGateway) Login(ctx context.Context, username, passwordHash string) (sheets.Session, error) {
	g.calls++
	return g.loginSession, g.loginErr
}

func (g *stubGateway) ChangePassword(ctx context.Context, token, currentHash, newHash string) error {
	g.calls++
	g.lastToken = token
	return g.changeErr
}

func (g *stubGateway) AddUser(ctx context.Context, token, newUsername string) (string, error) {
	g.calls++
	g.lastToken = token
	return g.addPassword, g.addErr
}

func (g *stubGateway) ListUsers(ctx context.Context, token string) ([]model.UserSummary, error) {
	g.calls++
	g.lastToken = token
	return g.users, g.listErr
}

func (g *stubGateway) DeleteUser(ctx context.Context, token, username string) error {
	g.calls++
	g.lastToken = token
	return g.deleteErr
}

func (g *stubGateway) Search(ctx context.Context, criteria model.Criteria) ([]model.VehicleRecord, error) {
	g.calls++
	g.lastCriteria = criteria
	return g.searchResults, g.searchErr
}

func (g *stubGateway) Update(ctx context.Context, token string, record model.VehicleRecord) error {
	g.calls++
	g.lastToken = token
	g.lastRecord = record
	return g.updateErr
}

func newTestAuth(t *testing.T, gw *stubGateway) (*AuthService, *session.Store) {
	t.Helper()
	store, err := session.NewStore("")
	if err != nil {
		t.Fatalf("session.NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewAuthService(gw, store, testJWTSecret), store
}

// seedSession creates a logged-in session directly in the store.
func seedSession(t *testing.T, store *session.Store, username string, role model.Role) *session.Session {
	t.Helper()
	sess := &session.Session{
		ID:            "sess-" + username,
		Username:      username,
		Role:          role,
		UpstreamToken: "upstream-" + username,
	}
	if err := store.Create(context.Background(), sess); err != nil {
		t.Fatalf("seedSession: %v", err)
	}
	return sess
}

func TestHashPassword(t *testing.T) {
	a := HashPassword("secret123")
	b := HashPassword("secret123")
	c := HashPassword("secret124")

	if a != b {
		t.Error("same input must yield the same digest")
	}
	if a == c {
		t.Error("different inputs must yield different digests")
	}
	if a == "secret123" {
		t.Error("digest must never equal the plaintext")
	}
	if len(a) != 64 {
		t.Errorf("digest length: got %d, want 64 hex chars", len(a))
	}
	if strings.ToLower(a) != a {
		t.Error("digest must be lowercase hex")
	}
	// Known vector so the algorithm can never drift silently: a drifting
	// hash would lock every user out of the sheet.
	if got := HashPassword("password"); got != "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8" {
		t.Errorf("sha256(\"password\") = %q", got)
	}
}

func TestLoginCreatesDurableSession(t *testing.T) {
	gw := &stubGateway{loginSession: sheets.Session{Token: "up-tok", Username: "alice"}}
	auth, store := newTestAuth(t, gw)
	ctx := context.Background()

	sess, token, err := auth.Login(ctx, "alice", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Role != model.RoleStandard {
		t.Errorf("role: got %v, want standard", sess.Role)
	}
	if sess.UpstreamToken != "up-tok" {
		t.Errorf("upstream token: got %q", sess.UpstreamToken)
	}

	// The issued token round-trips to the stored session.
	got, err := auth.Authenticate(ctx, token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != sess.ID || got.Username != "alice" {
		t.Errorf("authenticated session mismatch: %+v", got)
	}

	// Logout destroys it; the same token no longer authenticates.
	if err := auth.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, err := auth.Authenticate(ctx, token); !model.IsKind(err, model.KindAuth) {
		t.Fatalf("expected auth error after logout, got %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); err != session.ErrNotFound {
		t.Errorf("session row should be gone, got %v", err)
	}
}

func TestLoginAdminRoleDecidedOnce(t *testing.T) {
	gw := &stubGateway{loginSession: sheets.Session{Token: "t", Username: "admin"}}
	auth, _ := newTestAuth(t, gw)

	sess, _, err := auth.Login(context.Background(), "admin", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if sess.Role != model.RoleAdmin {
		t.Errorf("role: got %v, want admin", sess.Role)
	}
}

func TestLoginRejectedKeepsGenericError(t *testing.T) {
	gw := &stubGateway{loginErr: model.NewError(model.KindAuth, "login rejected")}
	auth, _ := newTestAuth(t, gw)

	_, _, err := auth.Login(context.Background(), "alice", "wrong")
	if !model.IsKind(err, model.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestLoginEmptyCredentials(t *testing.T) {
	gw := &stubGateway{}
	auth, _ := newTestAuth(t, gw)

	_, _, err := auth.Login(context.Background(), "  ", "pw")
	if !model.IsKind(err, model.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	auth, _ := newTestAuth(t, &stubGateway{})
	ctx := context.Background()

	if err := auth.Logout(ctx, "never-existed"); err != nil {
		t.Fatalf("Logout of unknown session: %v", err)
	}
	if err := auth.Logout(ctx, "never-existed"); err != nil {
		t.Fatalf("repeated Logout: %v", err)
	}
}

func TestChangePasswordValidation(t *testing.T) {
	tests := []struct {
		name                 string
		current, newPw, conf string
	}{
		{"mismatch", "old", "new123", "new124"},
		{"too short", "old", "ab", "ab"},
		{"empty", "old", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &stubGateway{}
			auth, store := newTestAuth(t, gw)
			sess := seedSession(t, store, "alice", model.RoleStandard)

			err := auth.ChangePassword(context.Background(), sess, tt.current, tt.newPw, tt.conf)
			if !model.IsKind(err, model.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if gw.calls != 0 {
				t.Errorf("expected no gateway call, got %d", gw.calls)
			}
		})
	}
}

func TestChangePasswordSendsDigests(t *testing.T) {
	gw := &stubGateway{}
	auth, store := newTestAuth(t, gw)
	sess := seedSession(t, store, "alice", model.RoleStandard)

	if err := auth.ChangePassword(context.Background(), sess, "oldpw1", "newpw1", "newpw1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("expected exactly one gateway call, got %d", gw.calls)
	}
	if gw.lastToken != sess.UpstreamToken {
		t.Errorf("token: got %q, want %q", gw.lastToken, sess.UpstreamToken)
	}
}

func TestChangePasswordUpstreamRejection(t *testing.T) {
	gw := &stubGateway{changeErr: model.NewError(model.KindService, "Current password is incorrect")}
	auth, store := newTestAuth(t, gw)
	sess := seedSession(t, store, "alice", model.RoleStandard)

	err := auth.ChangePassword(context.Background(), sess, "wrong", "newpw1", "newpw1")
	if !model.IsKind(err, model.KindAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestAddUserRequiresAdmin(t *testing.T) {
	gw := &stubGateway{addPassword: "generated1"}
	auth, store := newTestAuth(t, gw)

	standard := seedSession(t, store, "alice", model.RoleStandard)
	if _, err := auth.AddUser(context.Background(), standard, "bob"); !model.IsKind(err, model.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}

	admin := seedSession(t, store, "admin", model.RoleAdmin)
	pw, err := auth.AddUser(context.Background(), admin, "  bob  ")
	if err != nil {
		t.Fatalf("AddUser: %v", err)
	}
	if pw != "generated1" {
		t.Errorf("default password: got %q", pw)
	}
}

func TestAddUserEmptyUsername(t *testing.T) {
	gw := &stubGateway{}
	auth, store := newTestAuth(t, gw)
	admin := seedSession(t, store, "admin", model.RoleAdmin)

	if _, err := auth.AddUser(context.Background(), admin, "   "); !model.IsKind(err, model.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}
}

func TestListUsersRequiresAdmin(t *testing.T) {
	gw := &stubGateway{users: []model.UserSummary{{Username: "admin"}, {Username: "bob"}}}
	auth, store := newTestAuth(t, gw)

	standard := seedSession(t, store, "alice", model.RoleStandard)
	if _, err := auth.ListUsers(context.Background(), standard); !model.IsKind(err, model.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}

	admin := seedSession(t, store, "admin", model.RoleAdmin)
	users, err := auth.ListUsers(context.Background(), admin)
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("users: got %d, want 2", len(users))
	}
}

func TestDeleteUserProtectsAdminAccount(t *testing.T) {
	gw := &stubGateway{}
	auth, store := newTestAuth(t, gw)
	admin := seedSession(t, store, "admin", model.RoleAdmin)

	err := auth.DeleteUser(context.Background(), admin, "admin")
	if !model.IsKind(err, model.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}
}

func TestDeleteUserRequiresAdmin(t *testing.T) {
	gw := &stubGateway{}
	auth, store := newTestAuth(t, gw)
	standard := seedSession(t, store, "alice", model.RoleStandard)

	err := auth.DeleteUser(context.Background(), standard, "bob")
	if !model.IsKind(err, model.KindAuthorization) {
		t.Fatalf("expected authorization error, got %v", err)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}

	admin := seedSession(t, store, "admin", model.RoleAdmin)
	if err := auth.DeleteUser(context.Background(), admin, "bob"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	if gw.calls != 1 {
		t.Errorf("expected one gateway call, got %d", gw.calls)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	auth, _ := newTestAuth(t, &stubGateway{})

	token, err := auth.IssueToken("sess-42")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	id, err := auth.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id != "sess-42" {
		t.Errorf("session id: got %q", id)
	}

	if _, err := auth.ValidateToken("not-a-token"); !model.IsKind(err, model.KindAuth) {
		t.Fatalf("expected auth error for garbage token, got %v", err)
	}
}

func TestTokenFromDifferentSecretRejected(t *testing.T) {
	auth, _ := newTestAuth(t, &stubGateway{})
	store2, err := session.NewStore("")
	if err != nil {
		t.Fatalf("session.NewStore: %v", err)
	}
	t.Cleanup(func() { store2.Close() })
	other := NewAuthService(&stubGateway{}, store2, "a-different-secret")

	token, err := other.IssueToken("sess-1")
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := auth.ValidateToken(token); !model.IsKind(err, model.KindAuth) {
		t.Fatalf("expected auth error for foreign token, got %v", err)
	}
}
