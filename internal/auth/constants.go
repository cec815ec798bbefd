// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package auth

import "time"

// # Authentication Constraints

const (
	// SessionTokenTTL is the default validity of an issued session token.
	SessionTokenTTL = 24 * time.Hour

	// ExtendedSessionTokenTTL is the validity when "remember me" is requested.
	ExtendedSessionTokenTTL = 30 * 24 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// MaxLoginAttempts is the number of failed password attempts before the
	// account is temporarily locked.
	MaxLoginAttempts = 5

	// LockoutWindow is both the counting window for failed attempts and the
	// duration the lock persists once triggered.
	LockoutWindow = 15 * time.Minute
)
