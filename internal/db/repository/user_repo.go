package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tasklane/internal/db"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/user"
	"tasklane/internal/logging"
)

const userColumns = "id, username, email, password_hash, full_name, is_active, created_at, updated_at"

type UserRepository struct {
	client *db.Client
	logger logging.Logger
}

func NewUserRepository(client *db.Client, logger logging.Logger) dom.Repository {
	return &UserRepository{
		client: client,
		logger: logger.With("component", "user_repo"),
	}
}

func scanUser(row pgx.Row) (*dom.User, error) {
	var u dom.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FullName, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*dom.User, error) {
	row := r.client.Pool().QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcommon.NewNotFound("user")
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*dom.User, error) {
	row := r.client.Pool().QueryRow(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = $1", username)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcommon.NewNotFound("user")
		}
		return nil, fmt.Errorf("query user by username: %w", err)
	}
	return u, nil
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.client.Pool().QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)",
		username, email,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return exists, nil
}

func (r *UserRepository) Create(ctx context.Context, u *dom.User) error {
	row := r.client.Pool().QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, full_name, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.PasswordHash, u.FullName, u.IsActive,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *dom.User) error {
	row := r.client.Pool().QueryRow(ctx, `
		UPDATE users
		SET email = $1, full_name = $2, is_active = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`,
		u.Email, u.FullName, u.IsActive, u.ID,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domcommon.NewNotFound("user")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.client.Pool().Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domcommon.NewNotFound("user")
	}
	return nil
}
