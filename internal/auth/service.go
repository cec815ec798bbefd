// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

/*
Service layer for the authentication domain.

Architecture:

  - Service: Orchestrates business logic (Login, Register, password recovery).
  - Repositories: Abstracted interfaces over the user directory (memory or
    Postgres) and the volatile stores (memory or Redis).
  - Security: Leverages bcrypt hashing and HMAC-signed JWTs via [sec].

The service never inspects HTTP types; transport concerns stay in http.go.
*/

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
	"github.com/kimdahyun/lantern/internal/platform/sec"
)

// # Contracts & Types

// TokenProvider defines the contract for generating session tokens.
type TokenProvider interface {
	// GenerateToken creates a signed token string for the given user.
	//
	// # Parameters
	//   - userID: The ID of the account.
	//   - email: The email of the account.
	//   - timeToLive: The duration before the token expires.
	//
	// # Returns
	//   - The signed token, its expiry time, or an error if signing fails.
	GenerateToken(userID, email string, timeToLive time.Duration) (string, time.Time, error)
}

// Service implements the authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, lockout,
// or login logic must be reviewed by the security team.
type Service struct {
	directory     UserDirectory
	resetTokens   ResetTokenRepository
	loginAttempts LoginAttemptRepository
	tokenProvider TokenProvider
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	directory UserDirectory,
	resetTokens ResetTokenRepository,
	loginAttempts LoginAttemptRepository,
	tokenProvider TokenProvider,
) *Service {
	return &Service{
		directory:     directory,
		resetTokens:   resetTokens,
		loginAttempts: loginAttempts,
		tokenProvider: tokenProvider,
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Identifier string // Email or phone number
	Password   string
	RememberMe bool
}

// LoginResult represents a successfully established login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
Login validates user credentials and issues a session token.

Description: Resolves the identifier against the directory, performs a
constant-time password comparison, enforces the failed-attempt lockout,
and signs a token whose lifetime depends on the rememberMe flag (24 hours
by default, 30 days when extended).

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Transport-ready token and user profile
  - err: Unauthorized, Locked, or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {

	// Resolve the identifier. A genuine miss gets the generic message to
	// prevent enumeration; storage failures stay on the internal path so
	// the client sees a 500, not bad credentials.
	user, err := service.directory.FindByIdentifier(context, input.Identifier)
	if err != nil {
		if directoryErr := apperr.As(err); directoryErr != nil && directoryErr.Code == "NOT_FOUND" {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("auth_service_directory_lookup_failed: %w", err)
	}

	// Reject while the account is locked out, before touching the password.
	failures, err := service.loginAttempts.Failures(context, user.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_lockout_check_failed: %w", err)
	}
	if failures >= MaxLoginAttempts {
		return nil, apperr.Locked("Account is temporarily locked. Try again later.")
	}

	// Verify the password against the stored salted hash. bcrypt compares
	// in constant time to prevent timing attacks.
	matches, err := service.directory.VerifyPassword(context, user.ID, input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_password_check_failed: %w", err)
	}
	if !matches {
		count, recordErr := service.loginAttempts.RecordFailure(context, user.ID)
		if recordErr == nil && count >= MaxLoginAttempts {
			return nil, apperr.Locked("Account is temporarily locked. Try again later.")
		}
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Successful login clears the failure counter.
	_ = service.loginAttempts.Reset(context, user.ID)

	// Token lifetime depends on the rememberMe choice.
	timeToLive := SessionTokenTTL
	if input.RememberMe {
		timeToLive = ExtendedSessionTokenTTL
	}

	token, expiresAt, err := service.tokenProvider.GenerateToken(user.ID, user.Email, timeToLive)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}

/*
WhoAmI resolves verified token claims back to the full user profile.

Description: Backs the "me" endpoint. The claims were already verified by
the authentication middleware; this only re-reads the directory so the
response reflects the current profile rather than the snapshot baked into
the token.

Parameters:
  - context: context.Context
  - userID: string (from verified claims)

Returns:
  - *User: Current profile
  - err: Unauthorized when the account no longer exists
*/
func (service *Service) WhoAmI(context context.Context, userID string) (*User, error) {
	user, err := service.directory.FindByID(context, userID)
	if err != nil {
		// A valid token for a vanished account reads as unauthenticated.
		return nil, apperr.Unauthorized("User not found")
	}
	return user, nil
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
type RegisterInput struct {
	Email    string
	Phone    string
	Password string
	Name     string
}

/*
Register validates, hashes, and persists a brand new user account.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	if _, err := service.directory.FindByEmail(context, input.Email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify phone uniqueness when one was provided.
	if input.Phone != "" {
		if _, err := service.directory.FindByIdentifier(context, input.Phone); err == nil {
			return nil, apperr.Conflict("Phone number is already registered")
		}
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        input.Email,
		Phone:        input.Phone,
		PasswordHash: hashedPassword,
		Name:         input.Name,
		Verified:     false,
	}

	if err := service.directory.Create(context, user); err != nil {
		return nil, err
	}

	return user, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and stores it in the volatile
repository. Fire-and-forget from the caller's perspective.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: The reset token (empty when the email is unknown)
  - err: Generation or storage errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.directory.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokens.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	// TODO: hand the token to the mailer service once transactional email lands.

	return token, nil
}

/*
ConfirmPasswordReset completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the
directory, and clears any lockout so the user can log in immediately.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: NotFound (invalid/expired token) or update failures
*/
func (service *Service) ConfirmPasswordReset(context context.Context, token, newPassword string) error {

	userID, err := service.resetTokens.Get(context, token)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.directory.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Single use: drop the token and clear any lockout state.
	_ = service.resetTokens.Delete(context, token)
	_ = service.loginAttempts.Reset(context, userID)

	return nil
}
