// Copyright (c) 2026 Lantern. All rights reserved.
// Author: dahyun.kim.dev@gmail.com

// PostgreSQL implementation of the [UserDirectory] contract.
//
// # Error Mapping
//
// Storage-specific errors (like pgx.ErrNoRows) are mapped to domain-friendly
// [apperr.AppError] types to avoid leaking storage implementation details.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kimdahyun/lantern/internal/platform/apperr"
	"github.com/kimdahyun/lantern/internal/platform/sec"
)

// pgUniqueViolation is the SQLSTATE for unique-constraint violations.
const pgUniqueViolation = "23505"

// PostgresUserDirectory implements [UserDirectory] using pgx.
type PostgresUserDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresUserDirectory creates a new PostgreSQL implementation of the directory.
func NewPostgresUserDirectory(pool *pgxpool.Pool) *PostgresUserDirectory {
	return &PostgresUserDirectory{pool: pool}
}

const accountColumns = `id, email, phone, passwordhash, name, avatarurl, verified, createdat, updatedat`

// scanUser hydrates a [User] from a single account row.
func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Phone,
		&user.PasswordHash,
		&user.Name,
		&user.AvatarURL,
		&user.Verified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_directory_scan_failed: %w", err)
	}
	return &user, nil
}

/*
FindByID retrieves an account by its primary key.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or connectivity errors
*/
func (directory *PostgresUserDirectory) FindByID(context context.Context, id string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM auth.account WHERE id = $1`
	return scanUser(directory.pool.QueryRow(context, query, id))
}

/*
FindByEmail retrieves an account by its unique email address.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or connectivity errors
*/
func (directory *PostgresUserDirectory) FindByEmail(context context.Context, email string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM auth.account WHERE email = $1`
	return scanUser(directory.pool.QueryRow(context, query, email))
}

/*
FindByIdentifier retrieves an account whose email or phone exactly matches.

Parameters:
  - context: context.Context
  - identifier: string

Returns:
  - *User: Hydrated entity
  - error: apperr.NotFound or connectivity errors
*/
func (directory *PostgresUserDirectory) FindByIdentifier(context context.Context, identifier string) (*User, error) {
	query := `SELECT ` + accountColumns + ` FROM auth.account WHERE email = $1 OR phone = $1`
	return scanUser(directory.pool.QueryRow(context, query, identifier))
}

/*
VerifyPassword fetches the stored hash and compares the candidate with bcrypt.

Parameters:
  - context: context.Context
  - userID: string
  - password: string

Returns:
  - bool: true when the password matches
  - error: apperr.NotFound or connectivity errors
*/
func (directory *PostgresUserDirectory) VerifyPassword(context context.Context, userID, password string) (bool, error) {
	const query = `SELECT passwordhash FROM auth.account WHERE id = $1`

	var storedHash string
	if err := directory.pool.QueryRow(context, query, userID).Scan(&storedHash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperr.NotFound("User")
		}
		return false, fmt.Errorf("postgres_directory_verify_failed: %w", err)
	}

	return sec.CheckPasswordHash(password, storedHash), nil
}

/*
Create persists a new account row.

Parameters:
  - context: context.Context
  - user: *User

Returns:
  - error: apperr.Conflict on duplicate email/phone, or connectivity errors
*/
func (directory *PostgresUserDirectory) Create(context context.Context, user *User) error {
	const query = `
		INSERT INTO auth.account (
			id, email, phone, passwordhash, name, avatarurl, verified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := directory.pool.Exec(context, query,
		user.ID,
		user.Email,
		user.Phone,
		user.PasswordHash,
		user.Name,
		user.AvatarURL,
		user.Verified,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		var pgError *pgconn.PgError
		if errors.As(err, &pgError) && pgError.Code == pgUniqueViolation {
			return apperr.Conflict("Email or phone is already registered")
		}
		return fmt.Errorf("postgres_directory_create_failed: %w", err)
	}

	return nil
}

/*
UpdatePassword replaces only the password hash of an account.

Parameters:
  - context: context.Context
  - userID: string
  - newHash: string

Returns:
  - error: apperr.NotFound or connectivity errors
*/
func (directory *PostgresUserDirectory) UpdatePassword(context context.Context, userID, newHash string) error {
	const query = `UPDATE auth.account SET passwordhash = $2, updatedat = $3 WHERE id = $1`

	tag, err := directory.pool.Exec(context, query, userID, newHash, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_directory_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}

	return nil
}
