package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tasklane/internal/db"
	dom "tasklane/internal/domain/category"
	domcommon "tasklane/internal/domain/common"
	"tasklane/internal/logging"
)

const categoryColumns = "id, name, description, color, user_id, created_at, updated_at"

type CategoryRepository struct {
	client *db.Client
	logger logging.Logger
}

func NewCategoryRepository(client *db.Client, logger logging.Logger) dom.Repository {
	return &CategoryRepository{
		client: client,
		logger: logger.With("component", "category_repo"),
	}
}

func scanCategory(row pgx.Row) (*dom.Category, error) {
	var c dom.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.Color,
		&c.UserID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*dom.Category, error) {
	row := r.client.Pool().QueryRow(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE id = $1", id)

	c, err := scanCategory(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcommon.NewNotFound("category")
		}
		return nil, fmt.Errorf("query category: %w", err)
	}
	return c, nil
}

func (r *CategoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]dom.Category, error) {
	rows, err := r.client.Pool().Query(ctx,
		"SELECT "+categoryColumns+" FROM categories WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []dom.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return categories, nil
}

func (r *CategoryRepository) NameExists(ctx context.Context, userID uuid.UUID, name string, exclude *uuid.UUID) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1 AND user_id = $2"
	args := []any{name, userID}
	if exclude != nil {
		query += " AND id != $3"
		args = append(args, *exclude)
	}
	query += ")"

	var exists bool
	if err := r.client.Pool().QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *dom.Category) error {
	row := r.client.Pool().QueryRow(ctx, `
		INSERT INTO categories (name, description, color, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		c.Name, c.Description, c.Color, c.UserID,
	)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *dom.Category) error {
	row := r.client.Pool().QueryRow(ctx, `
		UPDATE categories
		SET name = $1, description = $2, color = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at`,
		c.Name, c.Description, c.Color, c.ID,
	)
	if err := row.Scan(&c.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domcommon.NewNotFound("category")
		}
		return fmt.Errorf("update category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.client.Pool().Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domcommon.NewNotFound("category")
	}
	return nil
}
