// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoToken is returned by a TokenStore when no usable token is saved.
var ErrNoToken = errors.New("no stored session token")

// # Token Persistence

// TokenStore persists the session token between controller lifetimes.
//
// The controller writes to the store only when the user opted into a
// persistent session. A maxAge of zero means the token should not outlive
// the store instance.
type TokenStore interface {
	// Load returns the saved token, or ErrNoToken when nothing usable remains.
	Load() (string, error)

	// Save persists the token for at most maxAge.
	Save(token string, maxAge time.Duration) error

	// Clear removes any saved token. Clearing an empty store is not an error.
	Clear() error
}

// # In-Memory Store

// MemoryTokenStore keeps the token in process memory only.
//
// It is the default store, equivalent to a session that ends when the
// process exits.
type MemoryTokenStore struct {
	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (store *MemoryTokenStore) Load() (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.token == "" {
		return "", ErrNoToken
	}
	if !store.expiresAt.IsZero() && time.Now().After(store.expiresAt) {
		store.token = ""
		return "", ErrNoToken
	}
	return store.token, nil
}

func (store *MemoryTokenStore) Save(token string, maxAge time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.token = token
	if maxAge > 0 {
		store.expiresAt = time.Now().Add(maxAge)
	} else {
		store.expiresAt = time.Time{}
	}
	return nil
}

func (store *MemoryTokenStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.token = ""
	store.expiresAt = time.Time{}
	return nil
}

// # File-Backed Store

// storedToken is the on-disk JSON shape of a persisted session token.
type storedToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

// FileTokenStore persists the token as a JSON file with owner-only
// permissions. Expired tokens are treated as absent and removed on Load.
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore creates a store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

func (store *FileTokenStore) Load() (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	raw, err := os.ReadFile(store.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("read_token_file: %w", err)
	}

	var saved storedToken
	if err := json.Unmarshal(raw, &saved); err != nil {
		// A corrupt file is as good as no file.
		_ = os.Remove(store.path)
		return "", ErrNoToken
	}

	if saved.Token == "" {
		return "", ErrNoToken
	}
	if !saved.ExpiresAt.IsZero() && time.Now().After(saved.ExpiresAt) {
		_ = os.Remove(store.path)
		return "", ErrNoToken
	}
	return saved.Token, nil
}

func (store *FileTokenStore) Save(token string, maxAge time.Duration) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	saved := storedToken{Token: token}
	if maxAge > 0 {
		saved.ExpiresAt = time.Now().Add(maxAge)
	}

	raw, err := json.Marshal(saved)
	if err != nil {
		return fmt.Errorf("marshal_token_file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(store.path), 0o700); err != nil {
		return fmt.Errorf("create_token_dir: %w", err)
	}
	if err := os.WriteFile(store.path, raw, 0o600); err != nil {
		return fmt.Errorf("write_token_file: %w", err)
	}
	return nil
}

func (store *FileTokenStore) Clear() error {
	store.mu.Lock()
	defer store.mu.Unlock()

	if err := os.Remove(store.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove_token_file: %w", err)
	}
	return nil
}
