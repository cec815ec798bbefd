// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kimdahyun/lantern/internal/platform/sec"
)

const testSecret = "unit-test-signing-secret"

/*
TestTokenService_RoundTrip verifies that a generated token carries the user
identity back through verification.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "lantern.dev")
	require.NoError(t, err)

	token, expiresAt, err := service.GenerateToken("user-1", "user@example.com", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "lantern.dev", claims.Issuer)
}

/*
TestTokenService_Expired verifies that a past-expiry token is classified as
expired, not as generically invalid.
*/
func TestTokenService_Expired(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "lantern.dev")
	require.NoError(t, err)

	token, _, err := service.GenerateToken("user-1", "user@example.com", -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
	assert.NotErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_InvalidSignature verifies that a token signed with a
different secret is rejected as invalid.
*/
func TestTokenService_InvalidSignature(t *testing.T) {
	issuing, err := sec.NewTokenService("other-secret", "lantern.dev")
	require.NoError(t, err)
	verifying, err := sec.NewTokenService(testSecret, "lantern.dev")
	require.NoError(t, err)

	token, _, err := issuing.GenerateToken("user-1", "user@example.com", time.Hour)
	require.NoError(t, err)

	_, err = verifying.VerifyToken(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, sec.ErrTokenInvalid)
}

/*
TestTokenService_Malformed verifies that garbage input is rejected as invalid.
*/
func TestTokenService_Malformed(t *testing.T) {
	service, err := sec.NewTokenService(testSecret, "lantern.dev")
	require.NoError(t, err)

	for _, tokenString := range []string{"", "not-a-token", "a.b.c"} {
		_, err := service.VerifyToken(tokenString)
		require.Error(t, err)
		assert.ErrorIs(t, err, sec.ErrTokenInvalid)
	}
}

/*
TestTokenService_EmptySecret verifies that construction fails without a
signing secret.
*/
func TestTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "lantern.dev")
	assert.Error(t, err)
}

/*
TestHashPassword verifies the bcrypt round trip and rejection of a wrong
candidate.
*/
func TestHashPassword(t *testing.T) {
	hash, err := sec.HashPassword("Secret1!")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", hash)

	assert.True(t, sec.CheckPasswordHash("Secret1!", hash))
	assert.False(t, sec.CheckPasswordHash("wrong", hash))
}

/*
TestGenerateSecureToken verifies length and uniqueness of generated opaque
tokens.
*/
func TestGenerateSecureToken(t *testing.T) {
	first, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)
	second, err := sec.GenerateSecureToken(32)
	require.NoError(t, err)

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
