// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserDirectory defines the data access contract for user accounts.
//
// The seeded in-memory fixture is the default implementation; the
// PostgreSQL one substitutes for it without changing any caller.
type UserDirectory interface {

	/*
		FindByID returns the account with the given ID (exact match).

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindByIdentifier returns the account whose email OR phone exactly
		matches the identifier.

		Parameters:
		  - context: context.Context
		  - identifier: string (email or phone)

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByIdentifier(context context.Context, identifier string) (*User, error)

	/*
		VerifyPassword compares a candidate password against the stored
		salted hash for the account. The comparison uses the same one-way
		hashing primitive that produced the stored value, never a
		plaintext comparison.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - password: string (plain text candidate)

		Returns:
		  - bool: true when the password matches
		  - error: apperr.NotFound or retrieval failures
	*/
	VerifyPassword(context context.Context, userID, password string) (bool, error)

	/*
		Create persists a brand-new user account.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on duplicate email/phone, or persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password
// reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: apperr.NotFound when absent or expired
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// LoginAttemptRepository tracks failed password attempts per account so
// repeated failures temporarily lock the account (HTTP 423).
type LoginAttemptRepository interface {

	/*
		RecordFailure increments the failure counter for the account and
		returns the new count. The counter expires after [LockoutWindow].

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: Failure count inside the current window
		  - error: Persistence failures
	*/
	RecordFailure(context context.Context, userID string) (int, error)

	/*
		Failures returns the current failure count inside the window.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - int: Failure count (0 when none recorded)
		  - error: Persistence failures
	*/
	Failures(context context.Context, userID string) (int, error)

	/*
		Reset clears the failure counter after a successful login or a
		completed password reset.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	Reset(context context.Context, userID string) error
}
