// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimdahyun/lantern/pkg/session"
)

const (
	testToken = "issued-session-token"
	testUser  = `{"id":"1","email":"user@example.com","phone":"010-1234-5678","name":"김토스","verified":true,"createdAt":"2024-01-01T00:00:00Z"}`
)

// handleMethod registers handler for path restricted to the given HTTP
// method, matching the behavior of Go 1.22+ "METHOD /path" mux patterns,
// which are unavailable on the Go 1.21 toolchain this builds with.
func handleMethod(mux *http.ServeMux, method, path string, handler http.HandlerFunc) {
	mux.HandleFunc(path, func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != method {
			http.Error(writer, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		handler(writer, request)
	})
}

// newFakeAPI stands up a minimal server speaking the auth wire protocol:
// one demo account, bearer-checked /auth/me, and an always-200 logout.
func newFakeAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var logoutCalls atomic.Int32

	mux := http.NewServeMux()
	handleMethod(mux, http.MethodPost, "/auth/login", func(writer http.ResponseWriter, request *http.Request) {
		var input struct {
			EmailOrPhone string `json:"emailOrPhone"`
			Password     string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(request.Body).Decode(&input))

		if input.EmailOrPhone != "user@example.com" || input.Password != "password123" {
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			writer.Write([]byte(`{"success":false,"error":"Invalid login credentials","code":"UNAUTHORIZED"}`))
			return
		}

		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"success":true,"data":{"user":` + testUser + `,"token":"` + testToken + `"}}`))
	})
	handleMethod(mux, http.MethodGet, "/auth/me", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		if request.Header.Get("Authorization") != "Bearer "+testToken {
			writer.WriteHeader(http.StatusUnauthorized)
			writer.Write([]byte(`{"success":false,"error":"Session has expired, please log in again","code":"TOKEN_EXPIRED"}`))
			return
		}
		writer.Write([]byte(`{"success":true,"data":{"user":` + testUser + `}}`))
	})
	handleMethod(mux, http.MethodPost, "/auth/logout", func(writer http.ResponseWriter, request *http.Request) {
		logoutCalls.Add(1)
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"success":true,"message":"Logged out successfully"}`))
	})
	handleMethod(mux, http.MethodPost, "/auth/reset-password", func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "application/json")
		writer.Write([]byte(`{"success":true,"message":"If this email is registered, a reset link has been sent."}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &logoutCalls
}

// assertStateInvariant checks that IsAuthenticated always agrees with the
// presence of a user.
func assertStateInvariant(t *testing.T, state session.State) {
	t.Helper()
	assert.Equal(t, state.User != nil, state.IsAuthenticated)
}

/*
TestController_Login_Success verifies the authenticated state after a
successful login without persistence.
*/
func TestController_Login_Success(t *testing.T) {
	server, _ := newFakeAPI(t)
	store := session.NewMemoryTokenStore()
	controller := session.NewController(server.URL, session.WithTokenStore(store))

	require.True(t, controller.Login(context.Background(), "user@example.com", "password123", false))

	state := controller.State()
	assertStateInvariant(t, state)
	require.NotNil(t, state.User)
	assert.Equal(t, "1", state.User.ID)
	assert.Equal(t, "김토스", state.User.Name)
	assert.False(t, state.IsLoading)
	assert.Equal(t, session.KindNone, state.ErrKind)
	assert.Equal(t, testToken, controller.Token())

	// Without rememberMe nothing is persisted.
	_, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

/*
TestController_Login_Remembered verifies that rememberMe persists the token
to the store.
*/
func TestController_Login_Remembered(t *testing.T) {
	server, _ := newFakeAPI(t)
	store := session.NewMemoryTokenStore()
	controller := session.NewController(server.URL, session.WithTokenStore(store))

	require.True(t, controller.Login(context.Background(), "user@example.com", "password123", true))

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, testToken, saved)
}

/*
TestController_Login_InvalidCredentials verifies the anonymous error state
after a rejected login.
*/
func TestController_Login_InvalidCredentials(t *testing.T) {
	server, _ := newFakeAPI(t)
	controller := session.NewController(server.URL)

	require.False(t, controller.Login(context.Background(), "user@example.com", "wrong", false))

	state := controller.State()
	assertStateInvariant(t, state)
	assert.Nil(t, state.User)
	assert.False(t, state.IsLoading)
	assert.Equal(t, session.KindInvalidCredentials, state.ErrKind)
	assert.Equal(t, "Invalid login credentials", state.Err)
	assert.Empty(t, controller.Token())
}

/*
TestController_Login_ErrorKinds verifies the mapping from server rejections
onto error kinds: 423 means locked, 429 means throttled, a 401 carrying the
TOKEN_EXPIRED code means the session lapsed, and anything unrecognized stays
generic.
*/
func TestController_Login_ErrorKinds(t *testing.T) {
	cases := []struct {
		name        string
		status      int
		body        string
		wantKind    session.ErrorKind
		wantMessage string
	}{
		{
			name:        "account_locked",
			status:      http.StatusLocked,
			body:        `{"success":false,"error":"Account is temporarily locked. Try again later.","code":"ACCOUNT_LOCKED"}`,
			wantKind:    session.KindAccountLocked,
			wantMessage: "Account is temporarily locked. Try again later.",
		},
		{
			name:        "too_many_attempts",
			status:      http.StatusTooManyRequests,
			body:        `{"success":false,"error":"Too many requests. Try again in 1s.","code":"RATE_LIMITED"}`,
			wantKind:    session.KindTooManyAttempts,
			wantMessage: "Too many requests. Try again in 1s.",
		},
		{
			name:        "expired_token",
			status:      http.StatusUnauthorized,
			body:        `{"success":false,"error":"Session has expired, please log in again","code":"TOKEN_EXPIRED"}`,
			wantKind:    session.KindSessionExpired,
			wantMessage: "Session has expired, please log in again",
		},
		{
			name:        "server_error",
			status:      http.StatusInternalServerError,
			body:        `{"success":false,"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`,
			wantKind:    session.KindGeneric,
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "unparseable_body",
			status:      http.StatusBadGateway,
			body:        `<html>upstream timeout</html>`,
			wantKind:    session.KindGeneric,
			wantMessage: "Something went wrong, please try again",
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			mux := http.NewServeMux()
			handleMethod(mux, http.MethodPost, "/auth/login", func(writer http.ResponseWriter, request *http.Request) {
				writer.Header().Set("Content-Type", "application/json")
				writer.WriteHeader(testCase.status)
				writer.Write([]byte(testCase.body))
			})
			server := httptest.NewServer(mux)
			t.Cleanup(server.Close)

			controller := session.NewController(server.URL)
			require.False(t, controller.Login(context.Background(), "user@example.com", "password123", false))

			state := controller.State()
			assertStateInvariant(t, state)
			assert.Nil(t, state.User)
			assert.Equal(t, testCase.wantKind, state.ErrKind)
			assert.Equal(t, testCase.wantMessage, state.Err)
			assert.Empty(t, controller.Token())
		})
	}
}

/*
TestController_Login_LocalValidation verifies that empty fields never reach
the server.
*/
func TestController_Login_LocalValidation(t *testing.T) {
	// No server at all: local validation must short-circuit.
	controller := session.NewController("http://127.0.0.1:0")

	require.False(t, controller.Login(context.Background(), "", "", false))

	state := controller.State()
	assertStateInvariant(t, state)
	assert.Equal(t, session.KindValidation, state.ErrKind)
	assert.Equal(t, "required", state.FieldErrors["emailOrPhone"])
	assert.Equal(t, "required", state.FieldErrors["password"])
}

/*
TestController_ClearError verifies that clearing the error keeps the rest
of the state intact.
*/
func TestController_ClearError(t *testing.T) {
	server, _ := newFakeAPI(t)
	controller := session.NewController(server.URL)

	controller.Login(context.Background(), "user@example.com", "wrong", false)
	require.Equal(t, session.KindInvalidCredentials, controller.State().ErrKind)

	controller.ClearError()

	state := controller.State()
	assert.Equal(t, session.KindNone, state.ErrKind)
	assert.Empty(t, state.Err)
	assert.Nil(t, state.FieldErrors)
	assert.False(t, state.IsAuthenticated)
}

/*
TestController_Restore verifies that a persisted token resumes the session
silently.
*/
func TestController_Restore(t *testing.T) {
	server, _ := newFakeAPI(t)
	store := session.NewMemoryTokenStore()
	require.NoError(t, store.Save(testToken, time.Hour))

	controller := session.NewController(server.URL, session.WithTokenStore(store))

	require.True(t, controller.Restore(context.Background()))

	state := controller.State()
	assertStateInvariant(t, state)
	require.NotNil(t, state.User)
	assert.Equal(t, "user@example.com", state.User.Email)
	assert.Equal(t, testToken, controller.Token())
}

/*
TestController_Restore_RejectedToken verifies the silent failure path: a
stale token is discarded without surfacing an error.
*/
func TestController_Restore_RejectedToken(t *testing.T) {
	server, _ := newFakeAPI(t)
	store := session.NewMemoryTokenStore()
	require.NoError(t, store.Save("stale-token", time.Hour))

	controller := session.NewController(server.URL, session.WithTokenStore(store))

	require.False(t, controller.Restore(context.Background()))

	state := controller.State()
	assertStateInvariant(t, state)
	assert.Nil(t, state.User)
	assert.Empty(t, state.Err)
	assert.Equal(t, session.KindNone, state.ErrKind)

	// The rejected token was purged from the store.
	_, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

/*
TestController_Restore_EmptyStore verifies that restore without a saved
token is a quiet no-op.
*/
func TestController_Restore_EmptyStore(t *testing.T) {
	server, _ := newFakeAPI(t)
	controller := session.NewController(server.URL)

	require.False(t, controller.Restore(context.Background()))
	assert.Equal(t, session.KindNone, controller.State().ErrKind)
}

/*
TestController_Logout verifies the full teardown: server notified, state
cleared, store cleared, navigation invoked.
*/
func TestController_Logout(t *testing.T) {
	server, logoutCalls := newFakeAPI(t)
	store := session.NewMemoryTokenStore()

	var navigatedTo string
	controller := session.NewController(server.URL,
		session.WithTokenStore(store),
		session.WithNavigator(func(path string) { navigatedTo = path }),
	)

	require.True(t, controller.Login(context.Background(), "user@example.com", "password123", true))

	controller.Logout(context.Background())

	state := controller.State()
	assertStateInvariant(t, state)
	assert.Nil(t, state.User)
	assert.Empty(t, controller.Token())
	assert.Equal(t, "/login", navigatedTo)
	assert.Equal(t, int32(1), logoutCalls.Load())

	_, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

/*
TestController_Logout_ServerUnreachable verifies that logout clears local
state even when the server cannot be reached.
*/
func TestController_Logout_ServerUnreachable(t *testing.T) {
	server, _ := newFakeAPI(t)
	store := session.NewMemoryTokenStore()

	var navigatedTo string
	controller := session.NewController(server.URL,
		session.WithTokenStore(store),
		session.WithNavigator(func(path string) { navigatedTo = path }),
	)
	require.True(t, controller.Login(context.Background(), "user@example.com", "password123", true))

	// Kill the server before logging out.
	server.Close()

	controller.Logout(context.Background())

	state := controller.State()
	assertStateInvariant(t, state)
	assert.Nil(t, state.User)
	assert.Empty(t, controller.Token())
	assert.Equal(t, "/login", navigatedTo)

	_, err := store.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)
}

/*
TestController_RequestPasswordReset verifies the recovery request and its
local email validation.
*/
func TestController_RequestPasswordReset(t *testing.T) {
	server, _ := newFakeAPI(t)
	controller := session.NewController(server.URL)

	assert.True(t, controller.RequestPasswordReset(context.Background(), "user@example.com"))

	require.False(t, controller.RequestPasswordReset(context.Background(), "not-an-email"))
	state := controller.State()
	assert.Equal(t, session.KindValidation, state.ErrKind)
	assert.Equal(t, "invalid-email", state.FieldErrors["email"])
}

/*
TestFileTokenStore verifies persistence across store instances and max-age
expiry handling.
*/
func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	store := session.NewFileTokenStore(path)
	require.NoError(t, store.Save(testToken, time.Hour))

	// A fresh instance reads the same file.
	reopened := session.NewFileTokenStore(path)
	saved, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, testToken, saved)

	// An expired entry reads as absent.
	require.NoError(t, store.Save(testToken, -time.Minute))
	_, err = reopened.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)

	// Clear is idempotent.
	require.NoError(t, store.Clear())
	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, session.ErrNoToken)
}
