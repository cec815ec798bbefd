// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// Redis implementations of the volatile repositories (reset tokens and
// failed-login counters). Both rely on key TTLs for expiry, so no cleanup
// job is needed.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
	"github.com/kimdahyun/lantern/internal/platform/constants"
)

// # Reset Tokens

// RedisResetTokenRepository implements [ResetTokenRepository] using Redis.
type RedisResetTokenRepository struct {
	client *redis.Client
}

// NewRedisResetTokenRepository creates a Redis-backed [ResetTokenRepository].
func NewRedisResetTokenRepository(client *redis.Client) *RedisResetTokenRepository {
	return &RedisResetTokenRepository{client: client}
}

// Set stores a reset token with its associated userID and TTL.
func (repository *RedisResetTokenRepository) Set(context context.Context, token string, userID string, ttl time.Duration) error {
	key := constants.RedisPrefixResetToken + token

	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_set_failed: %w", err)
	}
	return nil
}

// Get retrieves the userID for a given token.
// Returns apperr.NotFound if the token is absent or expired.
func (repository *RedisResetTokenRepository) Get(context context.Context, token string) (string, error) {
	key := constants.RedisPrefixResetToken + token

	userID, err := repository.client.Get(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("Reset token")
		}
		return "", fmt.Errorf("redis_reset_token_get_failed: %w", err)
	}
	return userID, nil
}

// Delete removes a token after use. Deleting an absent token is not an error.
func (repository *RedisResetTokenRepository) Delete(context context.Context, token string) error {
	key := constants.RedisPrefixResetToken + token

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_reset_token_delete_failed: %w", err)
	}
	return nil
}

// # Login Attempts

// RedisLoginAttemptRepository implements [LoginAttemptRepository] using Redis
// INCR counters with a [LockoutWindow] expiry.
type RedisLoginAttemptRepository struct {
	client *redis.Client
}

// NewRedisLoginAttemptRepository creates a Redis-backed [LoginAttemptRepository].
func NewRedisLoginAttemptRepository(client *redis.Client) *RedisLoginAttemptRepository {
	return &RedisLoginAttemptRepository{client: client}
}

// RecordFailure increments the account's failure counter and returns the
// new count. The expiry is set when the counter is first created, so the
// lock clears [LockoutWindow] after the first failure in the window.
func (repository *RedisLoginAttemptRepository) RecordFailure(context context.Context, userID string) (int, error) {
	key := constants.RedisPrefixLockout + userID

	count, err := repository.client.Incr(context, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_login_attempt_incr_failed: %w", err)
	}

	if count == 1 {
		if err := repository.client.Expire(context, key, LockoutWindow).Err(); err != nil {
			return int(count), fmt.Errorf("redis_login_attempt_expire_failed: %w", err)
		}
	}

	return int(count), nil
}

// Failures returns the current failure count inside the window.
func (repository *RedisLoginAttemptRepository) Failures(context context.Context, userID string) (int, error) {
	key := constants.RedisPrefixLockout + userID

	count, err := repository.client.Get(context, key).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("redis_login_attempt_get_failed: %w", err)
	}
	return count, nil
}

// Reset clears the failure counter for the account.
func (repository *RedisLoginAttemptRepository) Reset(context context.Context, userID string) error {
	key := constants.RedisPrefixLockout + userID

	if err := repository.client.Del(context, key).Err(); err != nil {
		return fmt.Errorf("redis_login_attempt_reset_failed: %w", err)
	}
	return nil
}
