// Package service holds the two core components: authentication/session
// management and the vehicle search/edit contract. Both are pure
// request/response layers; no presentation concerns live here.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/logbookhq/logbook/internal/model"
	"github.com/logbookhq/logbook/internal/session"
	"github.com/logbookhq/logbook/internal/sheets"
)

// MinPasswordLength is the shortest password the gateway accepts. Checked
// locally before any network call.
const MinPasswordLength = 6

// DefaultSessionTTL bounds local sessions. The gateway expires its tokens on
// its own schedule and rejects them lazily; this caps how long a stale row
// can linger.
const DefaultSessionTTL = 24 * time.Hour

// CredentialGateway is the slice of the sheets client the auth component
// needs.
type CredentialGateway interface {
	Login(ctx context.Context, username, passwordHash string) (sheets.Session, error)
	ChangePassword(ctx context.Context, token, currentHash, newHash string) error
	AddUser(ctx context.Context, token, newUsername string) (string, error)
	ListUsers(ctx context.Context, token string) ([]model.UserSummary, error)
	DeleteUser(ctx context.Context, token, username string) error
}

// HashPassword returns the fixed-length hex digest of the UTF-8 encoding of
// plaintext. It is the gateway's reference algorithm: the same transform is
// applied for login, password change, and the stored hashes on the sheet, so
// a mismatch anywhere means no login ever succeeds. The plaintext is never
// logged or transmitted.
func HashPassword(plaintext string) string {
	h := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(h[:])
}

// AuthService turns credentials into durable sessions and gates the admin
// operations. Session state lives in the injected store — the single source
// of truth; nothing is held in package globals.
type AuthService struct {
	gateway       CredentialGateway
	sessions      *session.Store
	jwtSecret     []byte
	sessionTTL    time.Duration
	adminUsername string
}

// NewAuthService creates an AuthService with the default session TTL and the
// reserved admin username.
func NewAuthService(gateway CredentialGateway, sessions *session.Store, jwtSecret string) *AuthService {
	return &AuthService{
		gateway:       gateway,
		sessions:      sessions,
		jwtSecret:     []byte(jwtSecret),
		sessionTTL:    DefaultSessionTTL,
		adminUsername: model.AdminUsername,
	}
}

// SessionTTL returns the local session lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}

// WithSessionTTL overrides the default session lifetime. Non-positive
// values are ignored.
func (s *AuthService) WithSessionTTL(ttl time.Duration) *AuthService {
	if ttl > 0 {
		s.sessionTTL = ttl
	}
	return s
}

// Login hashes the password, verifies the credentials against the gateway,
// and on success creates a durable session. The role is decided here, once,
// from the authenticated username — the earliest point the gateway protocol
// allows — and stored with the session. Returns the session and a signed
// token for the browser to present on later requests.
//
// The gateway reports one generic message for any credential failure;
// whether the username or the password was wrong is not distinguished.
func (s *AuthService) Login(ctx context.Context, username, password string) (*session.Session, string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, "", model.NewError(model.KindValidation, "username and password are required")
	}

	upstream, err := s.gateway.Login(ctx, username, HashPassword(password))
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}

	role := model.RoleStandard
	if upstream.Username == s.adminUsername {
		role = model.RoleAdmin
	}

	sess := &session.Session{
		ID:            uuid.Must(uuid.NewV7()).String(),
		Username:      upstream.Username,
		Role:          role,
		UpstreamToken: upstream.Token,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("persist session: %w", err)
	}

	token, err := s.IssueToken(sess.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return sess, token, nil
}

// Logout deletes the session. It never contacts the gateway and is
// idempotent: logging out an already-dead session succeeds. In-flight calls
// that captured the old token are not cancelled; they complete or fail on
// their own.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Authenticate resolves a signed token to its live session. A token whose
// session row is gone (logout, expiry sweep) is an auth failure.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*session.Session, error) {
	id, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessions.Get(ctx, id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, model.NewError(model.KindAuth, "session expired or logged out")
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	return sess, nil
}

// ChangePassword validates the new password locally, then asks the gateway
// to swap the digests. Mismatched or short passwords fail before any network
// call. A gateway rejection (wrong current password, expired token) is an
// auth failure.
func (s *AuthService) ChangePassword(ctx context.Context, sess *session.Session, current, newPw, confirm string) error {
	if sess == nil {
		return model.NewError(model.KindAuthorization, "login required to change password")
	}
	if newPw != confirm {
		return model.NewError(model.KindValidation, "new passwords do not match")
	}
	if len(newPw) < MinPasswordLength {
		return model.NewError(model.KindValidation,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	err := s.gateway.ChangePassword(ctx, sess.UpstreamToken, HashPassword(current), HashPassword(newPw))
	if err != nil {
		return asAuthFailure(err, "change password")
	}
	return nil
}

// AddUser creates a new standard account. Admin only. Returns the generated
// default password, which is surfaced once and never stored.
func (s *AuthService) AddUser(ctx context.Context, sess *session.Session, newUsername string) (string, error) {
	if !sess.IsAdmin() {
		return "", model.NewError(model.KindAuthorization, "only the admin can add users")
	}
	newUsername = strings.TrimSpace(newUsername)
	if newUsername == "" {
		return "", model.NewError(model.KindValidation, "username is required")
	}

	defaultPassword, err := s.gateway.AddUser(ctx, sess.UpstreamToken, newUsername)
	if err != nil {
		return "", asAuthFailure(err, "add user")
	}
	return defaultPassword, nil
}

// ListUsers returns all accounts in the gateway's own order. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, sess *session.Session) ([]model.UserSummary, error) {
	if !sess.IsAdmin() {
		return nil, model.NewError(model.KindAuthorization, "only the admin can list users")
	}
	users, err := s.gateway.ListUsers(ctx, sess.UpstreamToken)
	if err != nil {
		return nil, asAuthFailure(err, "list users")
	}
	return users, nil
}

// DeleteUser removes an account. The reserved admin account is refused
// locally before any network call; the gateway enforces the same protection
// server-side, since a client-side check alone is not a guarantee.
func (s *AuthService) DeleteUser(ctx context.Context, sess *session.Session, username string) error {
	if username == s.adminUsername {
		return model.NewError(model.KindValidation, "the admin account cannot be deleted")
	}
	if !sess.IsAdmin() {
		return model.NewError(model.KindAuthorization, "only the admin can delete users")
	}

	if err := s.gateway.DeleteUser(ctx, sess.UpstreamToken, username); err != nil {
		return asAuthFailure(err, "delete user")
	}
	return nil
}

// asAuthFailure reclassifies a gateway-reported rejection of an
// authenticated operation as an auth failure. This is where lazy token
// expiry surfaces: nothing validates tokens in the background, the first
// rejected call does. Transport errors pass through unchanged.
func asAuthFailure(err error, op string) error {
	if model.IsKind(err, model.KindService) {
		return model.WrapError(model.KindAuth, op+" rejected by gateway", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ---------------------------------------------------------------------------
// Session tokens
// ---------------------------------------------------------------------------

type sessionClaims struct {
	jwt.RegisteredClaims
}

// IssueToken creates a signed token whose subject is the session ID. The
// token itself carries no secrets; the upstream gateway token stays in the
// store.
func (s *AuthService) IssueToken(sessionID string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
			Issuer:    "logbook",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken verifies a signed token and returns the session ID.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", model.NewError(model.KindAuth, "invalid session token")
	}
	return claims.Subject, nil
}
