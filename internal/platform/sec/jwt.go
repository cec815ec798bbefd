// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via the [auth.TokenProvider] interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure classes. Callers must map these to distinct
// user-facing outcomes: an expired token prompts re-login with a different
// message than a tampered or malformed one.
var (
	// ErrTokenExpired marks a structurally valid, correctly signed token
	// whose expiry has passed.
	ErrTokenExpired = errors.New("sec: token expired")

	// ErrTokenInvalid marks a malformed token or an invalid signature.
	ErrTokenInvalid = errors.New("sec: token invalid")
)

// AuthClaims represents the payload embedded inside a session token.
//
// # Why custom claims?
//
// By embedding the UserID and Email directly inside the JWT, the
// authentication middleware can reconstruct the active user context
// WITHOUT querying the directory on every single API request.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID string `json:"uid"`
	Email  string `json:"eml"`
}

// TokenService handles generation and verification of JWT tokens using HS256.
//
// The signing key is process configuration, loaded once at startup —
// never derived per-request.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService from the configured secret.
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("sec: signing secret must not be empty")
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// GenerateToken creates a signed session token for a user.
//
// # Parameters
//   - userID: The ID of the account.
//   - email: The email of the account.
//   - timeToLive: The duration before the token expires.
//
// # Returns
//   - The signed token string and its expiry time, or an error if signing fails.
func (service *TokenService) GenerateToken(userID, email string, timeToLive time.Duration) (string, time.Time, error) {
	currentTime := time.Now()
	expiresAt := currentTime.Add(timeToLive)

	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// VerifyToken checks the signature and validity of a token string.
//
// # Failure Classification
//
// Returns an error wrapping [ErrTokenExpired] when the token is correctly
// signed but past its expiry, and [ErrTokenInvalid] for every other failure
// (malformed structure, wrong algorithm, bad signature).
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return service.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims payload", ErrTokenInvalid)
	}

	return claims, nil
}
