package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tasklane/internal/db"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/tag"
	"tasklane/internal/logging"
)

const tagColumns = "id, name, user_id, created_at"

type TagRepository struct {
	client *db.Client
	logger logging.Logger
}

func NewTagRepository(client *db.Client, logger logging.Logger) dom.Repository {
	return &TagRepository{
		client: client,
		logger: logger.With("component", "tag_repo"),
	}
}

func scanTag(row pgx.Row) (*dom.Tag, error) {
	var t dom.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.UserID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TagRepository) GetByID(ctx context.Context, id uuid.UUID) (*dom.Tag, error) {
	row := r.client.Pool().QueryRow(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE id = $1", id)

	t, err := scanTag(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcommon.NewNotFound("tag")
		}
		return nil, fmt.Errorf("query tag: %w", err)
	}
	return t, nil
}

func (r *TagRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]dom.Tag, error) {
	rows, err := r.client.Pool().Query(ctx,
		"SELECT "+tagColumns+" FROM tags WHERE user_id = $1 ORDER BY name", userID)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var tags []dom.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tags: %w", err)
	}
	return tags, nil
}

func (r *TagRepository) NameExists(ctx context.Context, userID uuid.UUID, name string) (bool, error) {
	var exists bool
	err := r.client.Pool().QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM tags WHERE name = $1 AND user_id = $2)",
		name, userID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check tag name: %w", err)
	}
	return exists, nil
}

func (r *TagRepository) Create(ctx context.Context, t *dom.Tag) error {
	row := r.client.Pool().QueryRow(ctx, `
		INSERT INTO tags (name, user_id)
		VALUES ($1, $2)
		RETURNING id, created_at`,
		t.Name, t.UserID,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.client.Pool().Exec(ctx, "DELETE FROM tags WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domcommon.NewNotFound("tag")
	}
	return nil
}

func (r *TagRepository) Assign(ctx context.Context, todoID, tagID uuid.UUID) error {
	var exists bool
	if err := r.client.Pool().QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM todos WHERE id = $1)", todoID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check todo: %w", err)
	}
	if !exists {
		return domcommon.NewNotFound("todo")
	}

	if err := r.client.Pool().QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM tags WHERE id = $1)", tagID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("check tag: %w", err)
	}
	if !exists {
		return domcommon.NewNotFound("tag")
	}

	if _, err := r.client.Pool().Exec(ctx,
		"INSERT INTO todo_tags (todo_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		todoID, tagID,
	); err != nil {
		return fmt.Errorf("assign tag: %w", err)
	}
	return nil
}

func (r *TagRepository) Unassign(ctx context.Context, todoID, tagID uuid.UUID) error {
	tag, err := r.client.Pool().Exec(ctx,
		"DELETE FROM todo_tags WHERE todo_id = $1 AND tag_id = $2", todoID, tagID)
	if err != nil {
		return fmt.Errorf("unassign tag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domcommon.NewNotFound("tag assignment")
	}
	return nil
}
