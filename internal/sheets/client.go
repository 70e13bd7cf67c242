// Package sheets is the client for the spreadsheet gateway that backs the
// logbook registry. The gateway is an Apps-Script style web app: every
// operation is a single HTTP GET with query parameters and a JSON response.
//
// The protocol puts secrets (session token, password hashes) in the query
// string, which is acceptable only over end-to-end TLS. That is the gateway's
// contract, inherited here rather than fixed.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/logbookhq/logbook/internal/model"
)

// DefaultTimeout bounds each gateway exchange. There is no retry: a failed
// call surfaces to the user, who may retry.
const DefaultTimeout = 30 * time.Second

// maxResponseSize caps the gateway response body to keep a misbehaving
// upstream from exhausting memory.
const maxResponseSize = 10 * 1024 * 1024

// Session is the gateway's proof of a successful login. The token is opaque;
// expiry is service-defined and never tracked here.
type Session struct {
	Token    string
	Username string
}

// Client speaks the gateway protocol. All methods issue exactly one
// request/response exchange and classify failures per model.ErrorKind.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given web-app URL. A zero
// timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
			Timeout: timeout,
		},
	}
}

// envelope is the union of all gateway response shapes. Search responses
// carry only results; action responses carry success plus action-specific
// fields.
type envelope struct {
	Success         bool                  `json:"success"`
	Error           string                `json:"error"`
	Token           string                `json:"token"`
	Username        string                `json:"username"`
	DefaultPassword string                `json:"defaultPassword"`
	Users           []model.UserSummary   `json:"users"`
	Results         []model.VehicleRecord `json:"results"`
}

// get performs one gateway exchange. Network failures, non-2xx statuses, and
// unparseable bodies all classify as transport errors: a response we cannot
// read is indistinguishable from no response and must be treated as failure.
func (c *Client) get(ctx context.Context, params url.Values) (*envelope, error) {
	reqURL := c.baseURL
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, model.WrapError(model.KindTransport, "build gateway request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.WrapError(model.KindTransport, "gateway unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, model.NewError(model.KindTransport,
			fmt.Sprintf("gateway returned HTTP %d", resp.StatusCode))
	}

	var env envelope
	limited := http.MaxBytesReader(nil, resp.Body, maxResponseSize)
	if err := json.NewDecoder(limited).Decode(&env); err != nil {
		return nil, model.WrapError(model.KindTransport, "decode gateway response", err)
	}
	return &env, nil
}

// act performs an action exchange and converts a reported logical failure
// into a service error carrying the gateway's message.
func (c *Client) act(ctx context.Context, params url.Values, fallback string) (*envelope, error) {
	env, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fallback
		}
		return nil, model.NewError(model.KindService, msg)
	}
	return env, nil
}

// Search queries the registry. Each non-empty criterion is matched by the
// gateway as a case-insensitive substring; criteria combine with AND. An
// absent results field decodes as an empty, successful result set.
func (c *Client) Search(ctx context.Context, criteria model.Criteria) ([]model.VehicleRecord, error) {
	env, err := c.get(ctx, searchRequest{Criteria: criteria}.values())
	if err != nil {
		return nil, err
	}
	if env.Results == nil {
		return []model.VehicleRecord{}, nil
	}
	return env.Results, nil
}

// Update overwrites one row addressed by the record's locator. The gateway
// applies last-write-wins; no conflict detection exists in the protocol.
func (c *Client) Update(ctx context.Context, token string, record model.VehicleRecord) error {
	_, err := c.act(ctx, updateRequest{Token: token, Record: record}.values(),
		"failed to update vehicle")
	return err
}

// Login exchanges a username and password digest for a session token. The
// gateway returns one generic message for any credential failure; whether
// the username or password was wrong is deliberately not distinguishable.
func (c *Client) Login(ctx context.Context, username, passwordHash string) (Session, error) {
	env, err := c.act(ctx, loginRequest{Username: username, PasswordHash: passwordHash}.values(),
		"login failed")
	if err != nil {
		if model.IsKind(err, model.KindService) {
			// A reported login failure is a credential rejection.
			return Session{}, model.WrapError(model.KindAuth, "login rejected", err)
		}
		return Session{}, err
	}
	return Session{Token: env.Token, Username: env.Username}, nil
}

// ChangePassword replaces the caller's password. Both digests are computed
// by the caller; plaintext never reaches this client.
func (c *Client) ChangePassword(ctx context.Context, token, currentHash, newHash string) error {
	_, err := c.act(ctx, changePasswordRequest{
		Token:               token,
		CurrentPasswordHash: currentHash,
		NewPasswordHash:     newHash,
	}.values(), "failed to change password")
	return err
}

// AddUser creates an account and returns its generated one-time default
// password. The password is surfaced to the admin and never stored.
func (c *Client) AddUser(ctx context.Context, token, newUsername string) (string, error) {
	env, err := c.act(ctx, addUserRequest{Token: token, NewUsername: newUsername}.values(),
		"failed to add user")
	if err != nil {
		return "", err
	}
	return env.DefaultPassword, nil
}

// ListUsers returns all accounts in the gateway's own order.
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.UserSummary, error) {
	env, err := c.act(ctx, listUsersRequest{Token: token}.values(), "failed to list users")
	if err != nil {
		return nil, err
	}
	if env.Users == nil {
		return []model.UserSummary{}, nil
	}
	return env.Users, nil
}

// DeleteUser removes an account. The gateway enforces protection of the
// reserved admin account server-side; callers are expected to refuse it
// locally as well.
func (c *Client) DeleteUser(ctx context.Context, token, username string) error {
	_, err := c.act(ctx, deleteUserRequest{Token: token, UsernameToDelete: username}.values(),
		"failed to delete user")
	return err
}

// Ping checks that the gateway endpoint answers HTTP at all. Used by the
// readiness probe; any well-formed response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return model.WrapError(model.KindTransport, "build gateway request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.WrapError(model.KindTransport, "gateway unreachable", err)
	}
	resp.Body.Close()
	return nil
}
