package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"tasklane/internal/db"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/todo"
	"tasklane/internal/logging"
)

const todoColumns = "id, title, description, completed, user_id, category_id, priority, due_date, created_at, updated_at"

type TodoRepository struct {
	client *db.Client
	logger logging.Logger
}

func NewTodoRepository(client *db.Client, logger logging.Logger) dom.Repository {
	return &TodoRepository{
		client: client,
		logger: logger.With("component", "todo_repo"),
	}
}

func scanTodo(row pgx.Row) (*dom.Todo, error) {
	var t dom.Todo
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Completed,
		&t.UserID, &t.CategoryID, &t.Priority, &t.DueDate,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TodoRepository) GetByID(ctx context.Context, id uuid.UUID) (*dom.Todo, error) {
	row := r.client.Pool().QueryRow(ctx,
		"SELECT "+todoColumns+" FROM todos WHERE id = $1", id)

	t, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domcommon.NewNotFound("todo")
		}
		return nil, fmt.Errorf("query todo: %w", err)
	}
	return t, nil
}

// List builds the WHERE clause incrementally; every filter is optional and
// they all AND together, mirroring the query surface of the HTTP API.
func (r *TodoRepository) List(ctx context.Context, filter dom.ListFilter) ([]dom.Todo, int64, error) {
	var conds []string
	var args []any

	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		conds = append(conds, fmt.Sprintf("completed = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		conds = append(conds, fmt.Sprintf("priority = $%d", len(args)))
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Tag != "" {
		args = append(args, "%"+filter.Tag+"%")
		conds = append(conds, fmt.Sprintf(
			"id IN (SELECT tt.todo_id FROM todo_tags tt JOIN tags t ON tt.tag_id = t.id WHERE t.name ILIKE $%d)",
			len(args)))
	}
	if filter.Overdue {
		conds = append(conds, "due_date < NOW() AND completed = FALSE")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int64
	if err := r.client.Pool().QueryRow(ctx, "SELECT COUNT(*) FROM todos"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count todos: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}
	offset := (page - 1) * perPage

	query := fmt.Sprintf(
		"SELECT %s FROM todos%s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		todoColumns, where, perPage, offset)

	rows, err := r.client.Pool().Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	var todos []dom.Todo
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, total, nil
}

func (r *TodoRepository) Create(ctx context.Context, t *dom.Todo) error {
	row := r.client.Pool().QueryRow(ctx, `
		INSERT INTO todos (title, description, completed, user_id, category_id, priority, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		t.Title, t.Description, t.Completed, t.UserID, t.CategoryID, t.Priority, t.DueDate,
	)
	if err := row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Update(ctx context.Context, t *dom.Todo) error {
	row := r.client.Pool().QueryRow(ctx, `
		UPDATE todos
		SET title = $1, description = $2, completed = $3, category_id = $4,
		    priority = $5, due_date = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at`,
		t.Title, t.Description, t.Completed, t.CategoryID, t.Priority, t.DueDate, t.ID,
	)
	if err := row.Scan(&t.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domcommon.NewNotFound("todo")
		}
		return fmt.Errorf("update todo: %w", err)
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.client.Pool().Exec(ctx, "DELETE FROM todos WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domcommon.NewNotFound("todo")
	}
	return nil
}

func (r *TodoRepository) BatchUpdate(ctx context.Context, ids []uuid.UUID, changes dom.BatchChanges) ([]uuid.UUID, error) {
	tx, err := r.client.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin batch update: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	updated := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		var got uuid.UUID
		err := tx.QueryRow(ctx, `
			UPDATE todos
			SET completed = COALESCE($1, completed),
			    category_id = COALESCE($2, category_id),
			    priority = COALESCE($3, priority),
			    updated_at = NOW()
			WHERE id = $4
			RETURNING id`,
			changes.Completed, changes.CategoryID, changes.Priority, id,
		).Scan(&got)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				continue // missing todos are skipped, not errors
			}
			return nil, fmt.Errorf("batch update todo %s: %w", id, err)
		}
		updated = append(updated, got)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit batch update: %w", err)
	}
	return updated, nil
}

func (r *TodoRepository) BatchDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	tag, err := r.client.Pool().Exec(ctx, "DELETE FROM todos WHERE id = ANY($1)", ids)
	if err != nil {
		return 0, fmt.Errorf("batch delete todos: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *TodoRepository) ReplaceTags(ctx context.Context, todoID uuid.UUID, ownerID uuid.UUID, names []string) error {
	tx, err := r.client.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin replace tags: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, "DELETE FROM todo_tags WHERE todo_id = $1", todoID); err != nil {
		return fmt.Errorf("unlink tags: %w", err)
	}

	for _, name := range names {
		var tagID uuid.UUID
		err := tx.QueryRow(ctx, `
			INSERT INTO tags (name, user_id) VALUES ($1, $2)
			ON CONFLICT (name, user_id) DO UPDATE SET name = EXCLUDED.name
			RETURNING id`,
			name, ownerID,
		).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		if _, err := tx.Exec(ctx,
			"INSERT INTO todo_tags (todo_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			todoID, tagID,
		); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit replace tags: %w", err)
	}
	return nil
}

func (r *TodoRepository) ListTags(ctx context.Context, todoID uuid.UUID) ([]dom.TagRef, error) {
	rows, err := r.client.Pool().Query(ctx, `
		SELECT t.id, t.name FROM tags t
		JOIN todo_tags tt ON t.id = tt.tag_id
		WHERE tt.todo_id = $1
		ORDER BY t.name`,
		todoID,
	)
	if err != nil {
		return nil, fmt.Errorf("query todo tags: %w", err)
	}
	defer rows.Close()

	var refs []dom.TagRef
	for rows.Next() {
		var ref dom.TagRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("scan todo tag: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todo tags: %w", err)
	}
	return refs, nil
}

func (r *TodoRepository) Stats(ctx context.Context, userID *uuid.UUID) (*dom.Stats, error) {
	where := ""
	var args []any
	if userID != nil {
		where = " WHERE user_id = $1"
		args = append(args, *userID)
	}
	and := func(cond string) string {
		if where == "" {
			return " WHERE " + cond
		}
		return where + " AND " + cond
	}

	pool := r.client.Pool()
	stats := &dom.Stats{}

	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM todos"+where, args...).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("count todos: %w", err)
	}
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM todos"+and("completed = TRUE"), args...).Scan(&stats.Completed); err != nil {
		return nil, fmt.Errorf("count completed todos: %w", err)
	}
	stats.Pending = stats.Total - stats.Completed

	if err := pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM todos"+and("due_date < NOW() AND completed = FALSE"), args...,
	).Scan(&stats.Overdue); err != nil {
		return nil, fmt.Errorf("count overdue todos: %w", err)
	}

	rows, err := pool.Query(ctx,
		"SELECT COALESCE(priority, 0), COUNT(*) FROM todos"+where+" GROUP BY 1 ORDER BY 1", args...)
	if err != nil {
		return nil, fmt.Errorf("count todos by priority: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pc dom.PriorityCount
		if err := rows.Scan(&pc.Priority, &pc.Count); err != nil {
			return nil, fmt.Errorf("scan priority count: %w", err)
		}
		stats.ByPriority = append(stats.ByPriority, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate priority counts: %w", err)
	}

	catWhere := where
	if catWhere != "" {
		catWhere = " WHERE t.user_id = $1"
	}
	catRows, err := pool.Query(ctx, `
		SELECT t.category_id, c.name, COUNT(*)
		FROM todos t
		LEFT JOIN categories c ON t.category_id = c.id`+catWhere+`
		GROUP BY t.category_id, c.name
		ORDER BY COUNT(*) DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("count todos by category: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var cc dom.CategoryCount
		if err := catRows.Scan(&cc.CategoryID, &cc.CategoryName, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	if err := catRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}

	return stats, nil
}
