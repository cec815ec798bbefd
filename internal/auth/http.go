// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

/*
HTTP delivery layer for the authentication domain.

# Architecture

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: RESTful JSON with the {success, data?, message?} envelope.
  - Security: Bearer token transport; the authentication middleware verifies
    tokens before protected handlers run.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/

package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kimdahyun/lantern/internal/platform/ctxutil"
	"github.com/kimdahyun/lantern/internal/platform/middleware"
	requestutil "github.com/kimdahyun/lantern/internal/platform/request"
	"github.com/kimdahyun/lantern/internal/platform/respond"
	"github.com/kimdahyun/lantern/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /login                  : Authenticates and returns a token.
//   - POST /logout                 : Acknowledges a client-side logout.
//   - GET  /me                     : Returns the profile behind a Bearer token.
//   - POST /register               : Creates a new account.
//   - POST /reset-password         : Starts the forgot-password flow.
//   - POST /reset-password/confirm : Completes the forgot-password flow.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/logout", handler.logout)
	router.Post("/register", handler.register)
	router.Post("/reset-password", handler.resetPassword)
	router.Post("/reset-password/confirm", handler.confirmResetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	EmailOrPhone string `json:"emailOrPhone"`
	Password     string `json:"password"`
	RememberMe   bool   `json:"rememberMe"`
}

type registerRequest struct {
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AgreeToTerms    bool   `json:"agreeToTerms"`
	Name            string `json:"name"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type confirmResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

/*
Login authenticates a user and issues a session token.

POST /auth/login

Description: Verifies credentials against the user directory and returns
a signed token together with the sanitized user profile.

Request:
  - Body: loginRequest (EmailOrPhone, Password, RememberMe)

Response:
  - 200: {user, token}
  - 400: VALIDATION_ERROR: Bad input
  - 401: UNAUTHORIZED: Invalid credentials
  - 423: ACCOUNT_LOCKED: Too many failed attempts
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmailOrPhone, input.EmailOrPhone).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Identifier: input.EmailOrPhone,
		Password:   input.Password,
		RememberMe: input.RememberMe,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		FieldUser:  result.User,
		FieldToken: result.Token,
	})
}

/*
Logout acknowledges a client-side logout.

POST /auth/logout

Description: The server keeps no record of issued tokens, so there is
nothing to revoke; the client clears its own state and persisted token.
The request is logged when it carries verified claims.

Response:
  - 200: message: Logged out
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if claims := requestutil.Claims(request); claims != nil {
		ctxutil.GetLogger(request.Context()).InfoContext(request.Context(),
			"user_logged_out", slog.String("user_id", claims.UserID))
	}

	respond.Message(writer, "Logged out successfully")
}

/*
Me returns the profile of the authenticated user.

GET /auth/me

Description: Requires a valid Bearer token. Expired tokens produce
TOKEN_EXPIRED, malformed or tampered ones UNAUTHORIZED — both 401, but
with distinct codes so the client can word the prompt accordingly.

Response:
  - 200: {user}
  - 401: UNAUTHORIZED / TOKEN_EXPIRED: Missing, invalid, or expired token
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.WhoAmI(request.Context(), claims.UserID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{FieldUser: user})
}

/*
Register handles the creation of a new user account.

POST /auth/register

Description: Applies the strict credential policy (strong password,
matching confirmation, accepted terms), then persists the account.

Request:
  - Body: registerRequest (Email, Phone?, Password, ConfirmPassword, AgreeToTerms, Name?)

Response:
  - 201: User: Created user profile
  - 400: VALIDATION_ERROR: Bad input or policy failure
  - 409: CONFLICT: Email or phone already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		StrongPassword(FieldPassword, input.Password).
		Match(FieldConfirmPassword, input.Password, input.ConfirmPassword).
		True(FieldAgreeToTerms, input.AgreeToTerms)

	if input.Phone != "" {
		validator.Phone(FieldPhone, input.Phone)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		Name:     input.Name,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
ResetPassword initiates the password recovery flow.

POST /auth/reset-password

Description: Stores a short-lived reset token when the account exists.
Always answers with the same generic message to prevent user enumeration.

Request:
  - Body: resetPasswordRequest (Email)

Response:
  - 200: message: Reset link sent (generic)
  - 400: VALIDATION_ERROR: Invalid email format
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if _, err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "If this email is registered, a reset link has been sent.")
}

/*
ConfirmResetPassword completes the password recovery flow.

POST /auth/reset-password/confirm

Description: Validates the reset token and updates the user's password.

Request:
  - Body: confirmResetPasswordRequest (Token, Password)

Response:
  - 200: message: Password updated
  - 400: VALIDATION_ERROR: Weak password or missing token
  - 404: NOT_FOUND: Reset token invalid or expired
*/
func (handler *Handler) confirmResetPassword(writer http.ResponseWriter, request *http.Request) {
	var input confirmResetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldToken, input.Token).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ConfirmPasswordReset(request.Context(), input.Token, input.Password); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Message(writer, "Password updated successfully")
}
