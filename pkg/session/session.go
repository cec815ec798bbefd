// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

/*
Package session is the client-side counterpart of the Lantern auth API.

It owns the full lifecycle of an authenticated session: logging in,
restoring a persisted session on startup, exposing the current state to
the embedding application, and tearing everything down on logout.

Architecture:

  - Controller holds a single mutex-guarded State snapshot.
  - A TokenStore persists the token only for "remember me" sessions.
  - Every outcome of a server call is folded into State; callers never
    see raw HTTP responses.

# Usage

	controller := session.NewController("https://api.lantern.dev",
		session.WithTokenStore(session.NewFileTokenStore(path)),
	)
	if controller.Restore(ctx) {
		// previous session is live again
	}
*/
package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
	"github.com/kimdahyun/lantern/internal/platform/validate"
)

// ExtendedSessionMaxAge bounds how long a persisted "remember me" token is
// kept on disk. It mirrors the lifetime of the token the server issues.
const ExtendedSessionMaxAge = 30 * 24 * time.Hour

// # Controller State

// ErrorKind classifies a failed operation so the embedding application can
// choose how to present it without parsing error strings.
type ErrorKind int

const (
	// KindNone means the last operation succeeded.
	KindNone ErrorKind = iota

	// KindValidation means the input was rejected before or by the server.
	KindValidation

	// KindInvalidCredentials means the identifier/password pair was wrong.
	KindInvalidCredentials

	// KindAccountLocked means the account is temporarily locked out.
	KindAccountLocked

	// KindTooManyAttempts means the client is being rate limited.
	KindTooManyAttempts

	// KindSessionExpired means a previously valid session is no longer usable.
	KindSessionExpired

	// KindNetwork means the server could not be reached at all.
	KindNetwork

	// KindGeneric covers every other failure.
	KindGeneric
)

// User is the client-side view of the authenticated account, mirroring the
// wire shape the server returns.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Name      string    `json:"name,omitempty"`
	AvatarURL string    `json:"avatar,omitempty"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
}

// State is an immutable snapshot of the session.
//
// Invariant: IsAuthenticated is true exactly when User is non-nil.
type State struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	Err             string
	ErrKind         ErrorKind

	// FieldErrors carries per-field validation codes when ErrKind is
	// KindValidation, keyed by wire field name.
	FieldErrors map[string]string
}

// # Controller

// Controller drives the login flow against a Lantern API server and holds
// the resulting session state. All methods are safe for concurrent use.
type Controller struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore
	navigate   func(path string)
	logger     *slog.Logger

	mu    sync.Mutex
	token string
	state State
}

// Option configures a Controller.
type Option func(*Controller)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(controller *Controller) { controller.httpClient = client }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(controller *Controller) { controller.httpClient.Timeout = timeout }
}

// WithTokenStore sets the persistence backend for "remember me" sessions.
func WithTokenStore(store TokenStore) Option {
	return func(controller *Controller) { controller.store = store }
}

// WithNavigator sets the hook invoked after logout, typically routing the
// application back to its login screen.
func WithNavigator(navigate func(path string)) Option {
	return func(controller *Controller) { controller.navigate = navigate }
}

// WithLogger sets the structured logger. Logging is off by default.
func WithLogger(logger *slog.Logger) Option {
	return func(controller *Controller) { controller.logger = logger }
}

// NewController creates a session controller for the API at baseURL.
func NewController(baseURL string, options ...Option) *Controller {
	controller := &Controller{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		store:      NewMemoryTokenStore(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, option := range options {
		option(controller)
	}
	return controller
}

// State returns a snapshot of the current session state.
func (controller *Controller) State() State {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.state
}

// Token returns the current session token, or "" when not authenticated.
func (controller *Controller) Token() string {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	return controller.token
}

// ClearError resets the error fields of the state without touching the
// authentication status.
func (controller *Controller) ClearError() {
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.state.Err = ""
	controller.state.ErrKind = KindNone
	controller.state.FieldErrors = nil
}

// # Wire Envelopes

type successEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Field string `json:"field"`
		Code  string `json:"code"`
	} `json:"details"`
}

type loginData struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// # Login

// Login validates the credentials locally, submits them, and on success
// installs the authenticated session. It reports whether the user is now
// authenticated.
//
// When rememberMe is set the token is persisted to the TokenStore so a
// later Restore can pick the session back up.
func (controller *Controller) Login(ctx context.Context, identifier, password string, rememberMe bool) bool {
	// Pre-submit validation mirrors the server's login rules so obvious
	// mistakes never leave the client.
	validator := &validate.Validator{}
	validator.Required("emailOrPhone", identifier).
		Required("password", password)
	if validator.HasErrors() {
		controller.setValidationErrors(validator.Errors())
		return false
	}

	controller.setLoading()

	payload := map[string]any{
		"emailOrPhone": identifier,
		"password":     password,
		"rememberMe":   rememberMe,
	}
	body, status, err := controller.post(ctx, "/auth/login", payload, "")
	if err != nil {
		controller.setFailure(KindNetwork, "Could not reach the server")
		return false
	}

	if status != http.StatusOK {
		kind, message, fields := classifyError(status, body)
		controller.setFailureWithFields(kind, message, fields)
		return false
	}

	var envelope successEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || !envelope.Success {
		controller.setFailure(KindGeneric, "Unexpected server response")
		return false
	}
	var data loginData
	if err := json.Unmarshal(envelope.Data, &data); err != nil || data.User == nil || data.Token == "" {
		controller.setFailure(KindGeneric, "Unexpected server response")
		return false
	}

	controller.mu.Lock()
	controller.token = data.Token
	controller.state = State{User: data.User, IsAuthenticated: true}
	controller.mu.Unlock()

	if rememberMe {
		if err := controller.store.Save(data.Token, ExtendedSessionMaxAge); err != nil {
			controller.logger.Warn("token_persist_failed", slog.Any("error", err))
		}
	}

	controller.logger.Info("session_established", slog.String("user_id", data.User.ID))
	return true
}

// # Session Restore

// Restore attempts to resume a previously persisted session. It is meant
// to run once on application startup.
//
// Any failure is silent: the stored token is discarded and the controller
// ends up anonymous with no error surfaced.
func (controller *Controller) Restore(ctx context.Context) bool {
	token, err := controller.store.Load()
	if err != nil {
		return false
	}

	controller.setLoading()

	body, status, err := controller.get(ctx, "/auth/me", token)
	if err != nil || status != http.StatusOK {
		controller.discardSession()
		return false
	}

	var envelope successEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || !envelope.Success {
		controller.discardSession()
		return false
	}
	var data struct {
		User *User `json:"user"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil || data.User == nil {
		controller.discardSession()
		return false
	}

	controller.mu.Lock()
	controller.token = token
	controller.state = State{User: data.User, IsAuthenticated: true}
	controller.mu.Unlock()

	controller.logger.Info("session_restored", slog.String("user_id", data.User.ID))
	return true
}

// # Logout

// Logout notifies the server, then unconditionally clears all local
// session state and navigates back to the login screen.
//
// The server call is best effort: a failed or unreachable server never
// leaves the client logged in.
func (controller *Controller) Logout(ctx context.Context) {
	controller.mu.Lock()
	token := controller.token
	controller.mu.Unlock()

	if _, _, err := controller.post(ctx, "/auth/logout", nil, token); err != nil {
		controller.logger.Warn("logout_request_failed", slog.Any("error", err))
	}

	controller.discardSession()

	if controller.navigate != nil {
		controller.navigate("/login")
	}
}

// # Password Recovery

// RequestPasswordReset asks the server to start password recovery for the
// given email. It reports whether the request was accepted.
//
// The server answers identically for known and unknown addresses, so a
// true result never confirms that an account exists.
func (controller *Controller) RequestPasswordReset(ctx context.Context, email string) bool {
	validator := &validate.Validator{}
	validator.Required("email", email).
		Email("email", email)
	if validator.HasErrors() {
		controller.setValidationErrors(validator.Errors())
		return false
	}

	controller.setLoading()

	body, status, err := controller.post(ctx, "/auth/reset-password", map[string]any{"email": email}, "")
	if err != nil {
		controller.setFailure(KindNetwork, "Could not reach the server")
		return false
	}
	if status != http.StatusOK {
		kind, message, fields := classifyError(status, body)
		controller.setFailureWithFields(kind, message, fields)
		return false
	}

	controller.mu.Lock()
	controller.state.IsLoading = false
	controller.mu.Unlock()
	return true
}

// # Internals

// discardSession clears the token, the persisted copy, and the state.
func (controller *Controller) discardSession() {
	if err := controller.store.Clear(); err != nil {
		controller.logger.Warn("token_clear_failed", slog.Any("error", err))
	}

	controller.mu.Lock()
	controller.token = ""
	controller.state = State{}
	controller.mu.Unlock()
}

func (controller *Controller) setLoading() {
	controller.mu.Lock()
	controller.state.IsLoading = true
	controller.state.Err = ""
	controller.state.ErrKind = KindNone
	controller.state.FieldErrors = nil
	controller.mu.Unlock()
}

func (controller *Controller) setFailure(kind ErrorKind, message string) {
	controller.setFailureWithFields(kind, message, nil)
}

func (controller *Controller) setFailureWithFields(kind ErrorKind, message string, fields map[string]string) {
	controller.mu.Lock()
	controller.state.IsLoading = false
	controller.state.Err = message
	controller.state.ErrKind = kind
	controller.state.FieldErrors = fields
	controller.mu.Unlock()
}

func (controller *Controller) setValidationErrors(fieldErrors []apperr.FieldError) {
	fields := make(map[string]string, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		if _, taken := fields[fieldError.Field]; !taken {
			fields[fieldError.Field] = fieldError.Code
		}
	}
	controller.setFailureWithFields(KindValidation, "Please check the highlighted fields", fields)
}

// classifyError maps an HTTP error response onto an ErrorKind and a
// user-presentable message.
func classifyError(status int, body []byte) (ErrorKind, string, map[string]string) {
	var envelope errorEnvelope
	_ = json.Unmarshal(body, &envelope)

	message := envelope.Error
	if message == "" {
		message = "Something went wrong, please try again"
	}

	var fields map[string]string
	if len(envelope.Details) > 0 {
		fields = make(map[string]string, len(envelope.Details))
		for _, detail := range envelope.Details {
			if _, taken := fields[detail.Field]; !taken {
				fields[detail.Field] = detail.Code
			}
		}
	}

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation, message, fields
	case status == http.StatusUnauthorized && envelope.Code == "TOKEN_EXPIRED":
		return KindSessionExpired, message, nil
	case status == http.StatusUnauthorized:
		return KindInvalidCredentials, message, nil
	case status == http.StatusLocked:
		return KindAccountLocked, message, nil
	case status == http.StatusTooManyRequests:
		return KindTooManyAttempts, message, nil
	default:
		return KindGeneric, message, nil
	}
}

// # HTTP Plumbing

func (controller *Controller) post(ctx context.Context, path string, payload any, token string) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal_request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	return controller.do(ctx, http.MethodPost, path, body, token)
}

func (controller *Controller) get(ctx context.Context, path string, token string) ([]byte, int, error) {
	return controller.do(ctx, http.MethodGet, path, nil, token)
}

func (controller *Controller) do(ctx context.Context, method, path string, body io.Reader, token string) ([]byte, int, error) {
	request, err := http.NewRequestWithContext(ctx, method, controller.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build_request: %w", err)
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := controller.httpClient.Do(request)
	if err != nil {
		return nil, 0, fmt.Errorf("send_request: %w", err)
	}
	defer response.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return nil, response.StatusCode, fmt.Errorf("read_response: %w", err)
	}
	return raw, response.StatusCode, nil
}
