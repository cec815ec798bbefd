// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
	"github.com/kimdahyun/lantern/internal/platform/sec"
)

// MemoryUserDirectory is the in-memory [UserDirectory] used in development
// and tests. It stands in for a real persistent credential store; the
// PostgreSQL implementation substitutes for it without changing callers.
//
// # Concurrency
//
// All access is guarded by a mutex — the HTTP server calls into the
// directory from many goroutines.
type MemoryUserDirectory struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by ID
}

// NewMemoryUserDirectory creates a directory pre-populated with the given users.
func NewMemoryUserDirectory(seed []*User) *MemoryUserDirectory {
	directory := &MemoryUserDirectory{users: make(map[string]*User, len(seed))}
	for _, user := range seed {
		clone := *user
		directory.users[user.ID] = &clone
	}
	return directory
}

// SeedUsers returns the fixed demo accounts the development server ships
// with. Both accounts use the password "password123".
func SeedUsers() []*User {
	const demoHash = "$2b$10$8K1p/a0drtIzU0u.kxk5ButA4HDYgdQmLJkNjpWM6.Ln.5q3K2Rhu"
	return []*User{
		{
			ID:           "1",
			Email:        "user@example.com",
			Phone:        "010-1234-5678",
			PasswordHash: demoHash,
			Name:         "김토스",
			Verified:     true,
			CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:           "2",
			Email:        "demo@tossstyle.com",
			Phone:        "010-9876-5432",
			PasswordHash: demoHash,
			Name:         "데모사용자",
			Verified:     true,
			CreatedAt:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
	}
}

// FindByID returns the account with the given ID.
func (directory *MemoryUserDirectory) FindByID(_ context.Context, id string) (*User, error) {
	directory.mu.RLock()
	defer directory.mu.RUnlock()

	user, found := directory.users[id]
	if !found {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

// FindByEmail returns the account with the given email (exact match).
func (directory *MemoryUserDirectory) FindByEmail(_ context.Context, email string) (*User, error) {
	directory.mu.RLock()
	defer directory.mu.RUnlock()

	for _, user := range directory.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// FindByIdentifier returns the account matching the identifier against
// either the email or the phone field.
func (directory *MemoryUserDirectory) FindByIdentifier(_ context.Context, identifier string) (*User, error) {
	directory.mu.RLock()
	defer directory.mu.RUnlock()

	for _, user := range directory.users {
		if user.Email == identifier || (user.Phone != "" && user.Phone == identifier) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

// VerifyPassword compares the candidate against the stored bcrypt hash.
func (directory *MemoryUserDirectory) VerifyPassword(_ context.Context, userID, password string) (bool, error) {
	directory.mu.RLock()
	user, found := directory.users[userID]
	directory.mu.RUnlock()

	if !found {
		return false, apperr.NotFound("User")
	}
	return sec.CheckPasswordHash(password, user.PasswordHash), nil
}

// Create registers a new account, rejecting duplicate emails and phones.
func (directory *MemoryUserDirectory) Create(_ context.Context, user *User) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	for _, existing := range directory.users {
		if existing.Email == user.Email {
			return apperr.Conflict("Email is already registered")
		}
		if user.Phone != "" && existing.Phone == user.Phone {
			return apperr.Conflict("Phone number is already registered")
		}
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	clone := *user
	directory.users[user.ID] = &clone
	return nil
}

// UpdatePassword replaces the stored password hash for the account.
func (directory *MemoryUserDirectory) UpdatePassword(_ context.Context, userID, newHash string) error {
	directory.mu.Lock()
	defer directory.mu.Unlock()

	user, found := directory.users[userID]
	if !found {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()
	return nil
}
