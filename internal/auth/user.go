// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

/*
Package auth implements the user identity and session management layer.

It defines the core domain entity (User) and the logic for login, token
issuance and verification, registration, and password recovery.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to user
identity. The server holds no record of issued tokens: a token remains
valid until its encoded expiry, and logout is a client-side state change
the server merely acknowledges.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered account.
//
// Once issued to a client the record is immutable except for the password
// hash, which never crosses the server boundary.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	Name         string    `json:"name,omitempty"`
	AvatarURL    string    `json:"avatar,omitempty"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

// # Field Identifiers

// Wire-level field names for validation and identity mapping in the
// authentication domain. The camelCase spelling is part of the public API.
const (
	FieldEmailOrPhone    = "emailOrPhone"
	FieldEmail           = "email"
	FieldPhone           = "phone"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldAgreeToTerms    = "agreeToTerms"
	FieldName            = "name"
	FieldToken           = "token"
	FieldUser            = "user"
	FieldRememberMe      = "rememberMe"
)
