// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// In-process implementations of the volatile repositories, used when no
// Redis URL is configured (development, tests). Entries expire lazily on
// read; the maps stay small enough that no sweeper is needed.

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
)

// # Reset Tokens

type memoryResetToken struct {
	userID    string
	expiresAt time.Time
}

// MemoryResetTokenRepository implements [ResetTokenRepository] in process memory.
type MemoryResetTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]memoryResetToken
}

// NewMemoryResetTokenRepository creates an empty in-memory [ResetTokenRepository].
func NewMemoryResetTokenRepository() *MemoryResetTokenRepository {
	return &MemoryResetTokenRepository{tokens: make(map[string]memoryResetToken)}
}

// Set stores a reset token with its associated userID and TTL.
func (repository *MemoryResetTokenRepository) Set(_ context.Context, token string, userID string, ttl time.Duration) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.tokens[token] = memoryResetToken{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Get retrieves the userID for a given token.
// Returns apperr.NotFound if the token is absent or expired.
func (repository *MemoryResetTokenRepository) Get(_ context.Context, token string) (string, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	entry, found := repository.tokens[token]
	if !found {
		return "", apperr.NotFound("Reset token")
	}
	if time.Now().After(entry.expiresAt) {
		delete(repository.tokens, token)
		return "", apperr.NotFound("Reset token")
	}
	return entry.userID, nil
}

// Delete removes a token after use. Deleting an absent token is not an error.
func (repository *MemoryResetTokenRepository) Delete(_ context.Context, token string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	delete(repository.tokens, token)
	return nil
}

// # Login Attempts

type memoryAttemptCounter struct {
	count     int
	expiresAt time.Time
}

// MemoryLoginAttemptRepository implements [LoginAttemptRepository] in process memory.
type MemoryLoginAttemptRepository struct {
	mu       sync.Mutex
	counters map[string]memoryAttemptCounter
}

// NewMemoryLoginAttemptRepository creates an empty in-memory [LoginAttemptRepository].
func NewMemoryLoginAttemptRepository() *MemoryLoginAttemptRepository {
	return &MemoryLoginAttemptRepository{counters: make(map[string]memoryAttemptCounter)}
}

// RecordFailure increments the account's failure counter and returns the
// new count. The window starts at the first failure.
func (repository *MemoryLoginAttemptRepository) RecordFailure(_ context.Context, userID string) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	entry, found := repository.counters[userID]
	if !found || time.Now().After(entry.expiresAt) {
		entry = memoryAttemptCounter{count: 0, expiresAt: time.Now().Add(LockoutWindow)}
	}
	entry.count++
	repository.counters[userID] = entry

	return entry.count, nil
}

// Failures returns the current failure count inside the window.
func (repository *MemoryLoginAttemptRepository) Failures(_ context.Context, userID string) (int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	entry, found := repository.counters[userID]
	if !found {
		return 0, nil
	}
	if time.Now().After(entry.expiresAt) {
		delete(repository.counters, userID)
		return 0, nil
	}
	return entry.count, nil
}

// Reset clears the failure counter for the account.
func (repository *MemoryLoginAttemptRepository) Reset(_ context.Context, userID string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	delete(repository.counters, userID)
	return nil
}
