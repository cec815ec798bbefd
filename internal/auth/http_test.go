// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimdahyun/lantern/internal/auth"
	"github.com/kimdahyun/lantern/internal/platform/middleware"
	"github.com/kimdahyun/lantern/internal/platform/sec"
)

// successBody mirrors the success envelope for decoding in assertions.
type successBody struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// errorBody mirrors the error envelope for decoding in assertions.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details []struct {
		Field string `json:"field"`
		Code  string `json:"code"`
	} `json:"details"`
}

// newTestServer stands up the auth routes behind the real authentication
// middleware, the same shape the production router uses.
func newTestServer(t *testing.T) (*httptest.Server, *auth.Service, *sec.TokenService) {
	t.Helper()

	tokens, err := sec.NewTokenService("http-test-secret", "lantern.dev")
	require.NoError(t, err)

	service := auth.NewService(
		auth.NewMemoryUserDirectory(auth.SeedUsers()),
		auth.NewMemoryResetTokenRepository(),
		auth.NewMemoryLoginAttemptRepository(),
		tokens,
	)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Mount("/auth", auth.NewHandler(service).Routes())

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server, service, tokens
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	response, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	return response
}

func decodeSuccess(t *testing.T, response *http.Response) successBody {
	t.Helper()
	defer response.Body.Close()

	var body successBody
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	require.True(t, body.Success)
	return body
}

func decodeError(t *testing.T, response *http.Response) errorBody {
	t.Helper()
	defer response.Body.Close()

	var body errorBody
	require.NoError(t, json.NewDecoder(response.Body).Decode(&body))
	require.False(t, body.Success)
	return body
}

/*
TestHTTP_Login_Success verifies the 200 envelope: user profile plus token,
with the password hash never leaving the server.
*/
func TestHTTP_Login_Success(t *testing.T) {
	server, _, _ := newTestServer(t)

	response := postJSON(t, server.URL+"/auth/login", map[string]any{
		"emailOrPhone": "user@example.com",
		"password":     "password123",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)

	body := decodeSuccess(t, response)

	var data struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))

	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "1", data.User["id"])
	assert.Equal(t, "user@example.com", data.User["email"])
	assert.Equal(t, "김토스", data.User["name"])

	// The hash is tagged out of the wire representation.
	_, exposed := data.User["passwordHash"]
	assert.False(t, exposed)
}

/*
TestHTTP_Login_MissingFields verifies the 400 envelope with per-field
symbolic codes.
*/
func TestHTTP_Login_MissingFields(t *testing.T) {
	server, _, _ := newTestServer(t)

	response := postJSON(t, server.URL+"/auth/login", map[string]any{
		"emailOrPhone": "",
		"password":     "",
	})
	require.Equal(t, http.StatusBadRequest, response.StatusCode)

	body := decodeError(t, response)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Details, 2)
	assert.Equal(t, "emailOrPhone", body.Details[0].Field)
	assert.Equal(t, "required", body.Details[0].Code)
	assert.Equal(t, "password", body.Details[1].Field)
	assert.Equal(t, "required", body.Details[1].Code)
}

/*
TestHTTP_Login_WrongPassword verifies the generic 401 rejection.
*/
func TestHTTP_Login_WrongPassword(t *testing.T) {
	server, _, _ := newTestServer(t)

	response := postJSON(t, server.URL+"/auth/login", map[string]any{
		"emailOrPhone": "user@example.com",
		"password":     "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)

	body := decodeError(t, response)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.Equal(t, "Invalid login credentials", body.Error)
}

/*
TestHTTP_Login_Lockout verifies the 423 response after too many failures.
*/
func TestHTTP_Login_Lockout(t *testing.T) {
	server, _, _ := newTestServer(t)

	payload := map[string]any{
		"emailOrPhone": "demo@tossstyle.com",
		"password":     "wrong-password",
	}
	for attempt := 0; attempt < auth.MaxLoginAttempts; attempt++ {
		response := postJSON(t, server.URL+"/auth/login", payload)
		response.Body.Close()
	}

	response := postJSON(t, server.URL+"/auth/login", map[string]any{
		"emailOrPhone": "demo@tossstyle.com",
		"password":     "password123",
	})
	require.Equal(t, http.StatusLocked, response.StatusCode)

	body := decodeError(t, response)
	assert.Equal(t, "ACCOUNT_LOCKED", body.Code)
}

/*
TestHTTP_Me verifies profile retrieval behind a Bearer token together with
the distinct failure codes for missing, malformed, and expired tokens.
*/
func TestHTTP_Me(t *testing.T) {
	server, _, tokens := newTestServer(t)

	validToken, _, err := tokens.GenerateToken("1", "user@example.com", time.Hour)
	require.NoError(t, err)
	expiredToken, _, err := tokens.GenerateToken("1", "user@example.com", -time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
		wantCode   string
	}{
		{"valid_token", "Bearer " + validToken, http.StatusOK, ""},
		{"missing_token", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"malformed_token", "Bearer not-a-token", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"expired_token", "Bearer " + expiredToken, http.StatusUnauthorized, "TOKEN_EXPIRED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, err := http.NewRequest(http.MethodGet, server.URL+"/auth/me", nil)
			require.NoError(t, err)
			if tt.authHeader != "" {
				request.Header.Set("Authorization", tt.authHeader)
			}

			response, err := http.DefaultClient.Do(request)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, response.StatusCode)

			if tt.wantCode == "" {
				body := decodeSuccess(t, response)

				var data struct {
					User map[string]any `json:"user"`
				}
				require.NoError(t, json.Unmarshal(body.Data, &data))
				assert.Equal(t, "user@example.com", data.User["email"])
			} else {
				body := decodeError(t, response)
				assert.Equal(t, tt.wantCode, body.Code)
			}
		})
	}
}

/*
TestHTTP_Me_VanishedAccount verifies that a valid token for a deleted
account reads as unauthenticated.
*/
func TestHTTP_Me_VanishedAccount(t *testing.T) {
	server, _, tokens := newTestServer(t)

	token, _, err := tokens.GenerateToken("no-such-id", "ghost@example.com", time.Hour)
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodGet, server.URL+"/auth/me", nil)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, response.StatusCode)

	body := decodeError(t, response)
	assert.Equal(t, "UNAUTHORIZED", body.Code)
}

/*
TestHTTP_Logout verifies the acknowledgment for both anonymous and
authenticated calls.
*/
func TestHTTP_Logout(t *testing.T) {
	server, _, tokens := newTestServer(t)

	// Anonymous logout is still a success: the client clears its own state.
	response := postJSON(t, server.URL+"/auth/logout", nil)
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := decodeSuccess(t, response)
	assert.Equal(t, "Logged out successfully", body.Message)

	// Authenticated logout.
	token, _, err := tokens.GenerateToken("1", "user@example.com", time.Hour)
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, server.URL+"/auth/logout", nil)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)

	authedResponse, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, authedResponse.StatusCode)
	decodeSuccess(t, authedResponse)
}

/*
TestHTTP_Register verifies account creation, policy failures, and conflicts.
*/
func TestHTTP_Register(t *testing.T) {
	server, _, _ := newTestServer(t)

	valid := map[string]any{
		"email":           "new@example.com",
		"phone":           "010-2222-3333",
		"password":        "NewSecret1!",
		"confirmPassword": "NewSecret1!",
		"agreeToTerms":    true,
		"name":            "신규가입",
	}

	response := postJSON(t, server.URL+"/auth/register", valid)
	require.Equal(t, http.StatusCreated, response.StatusCode)
	body := decodeSuccess(t, response)

	var created map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &created))
	assert.Equal(t, "new@example.com", created["email"])
	assert.Equal(t, false, created["verified"])

	// Weak password.
	weak := map[string]any{
		"email":           "weak@example.com",
		"password":        "alllowercase1",
		"confirmPassword": "alllowercase1",
		"agreeToTerms":    true,
	}
	response = postJSON(t, server.URL+"/auth/register", weak)
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	errBody := decodeError(t, response)
	require.NotEmpty(t, errBody.Details)
	assert.Equal(t, "weak-password", errBody.Details[0].Code)

	// Mismatched confirmation.
	mismatch := map[string]any{
		"email":           "mismatch@example.com",
		"password":        "NewSecret1!",
		"confirmPassword": "Different1!",
		"agreeToTerms":    true,
	}
	response = postJSON(t, server.URL+"/auth/register", mismatch)
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	errBody = decodeError(t, response)
	require.NotEmpty(t, errBody.Details)
	assert.Equal(t, "password-mismatch", errBody.Details[0].Code)

	// Terms not accepted.
	noTerms := map[string]any{
		"email":           "terms@example.com",
		"password":        "NewSecret1!",
		"confirmPassword": "NewSecret1!",
		"agreeToTerms":    false,
	}
	response = postJSON(t, server.URL+"/auth/register", noTerms)
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	errBody = decodeError(t, response)
	require.NotEmpty(t, errBody.Details)
	assert.Equal(t, "agreeToTerms", errBody.Details[0].Field)

	// Duplicate email.
	response = postJSON(t, server.URL+"/auth/register", valid)
	require.Equal(t, http.StatusConflict, response.StatusCode)
	errBody = decodeError(t, response)
	assert.Equal(t, "CONFLICT", errBody.Code)
}

/*
TestHTTP_ResetPassword verifies the generic response independent of whether
the account exists.
*/
func TestHTTP_ResetPassword(t *testing.T) {
	server, _, _ := newTestServer(t)

	for _, email := range []string{"user@example.com", "ghost@example.com"} {
		response := postJSON(t, server.URL+"/auth/reset-password", map[string]any{"email": email})
		require.Equal(t, http.StatusOK, response.StatusCode)

		body := decodeSuccess(t, response)
		assert.Equal(t, "If this email is registered, a reset link has been sent.", body.Message)
	}

	// Invalid email format is rejected before the service runs.
	response := postJSON(t, server.URL+"/auth/reset-password", map[string]any{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, response.StatusCode)
	errBody := decodeError(t, response)
	assert.Equal(t, "VALIDATION_ERROR", errBody.Code)
}

/*
TestHTTP_ConfirmResetPassword verifies the completion step end to end.
*/
func TestHTTP_ConfirmResetPassword(t *testing.T) {
	server, service, _ := newTestServer(t)

	token, err := service.RequestPasswordReset(context.Background(), "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	response := postJSON(t, server.URL+"/auth/reset-password/confirm", map[string]any{
		"token":    token,
		"password": "RotatedSecret1!",
	})
	require.Equal(t, http.StatusOK, response.StatusCode)
	body := decodeSuccess(t, response)
	assert.Equal(t, "Password updated successfully", body.Message)

	// The new password logs in.
	loginResponse := postJSON(t, server.URL+"/auth/login", map[string]any{
		"emailOrPhone": "user@example.com",
		"password":     "RotatedSecret1!",
	})
	require.Equal(t, http.StatusOK, loginResponse.StatusCode)
	loginResponse.Body.Close()

	// An unknown token is rejected.
	response = postJSON(t, server.URL+"/auth/reset-password/confirm", map[string]any{
		"token":    "bogus-token",
		"password": "RotatedSecret1!",
	})
	require.Equal(t, http.StatusNotFound, response.StatusCode)
	errBody := decodeError(t, response)
	assert.Equal(t, "NOT_FOUND", errBody.Code)
}
