package todo

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter narrows List results. Zero values mean "no constraint".
type ListFilter struct {
	Completed  *bool
	CategoryID *uuid.UUID
	Priority   *int
	Search     string
	Tag        string
	Overdue    bool
	Page       int
	PerPage    int
}

// BatchChanges is the shared patch applied to every todo in a batch update.
type BatchChanges struct {
	Completed  *bool
	CategoryID *uuid.UUID
	Priority   *int
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Todo, error)
	// List returns one page plus the total row count for the filter.
	List(ctx context.Context, filter ListFilter) ([]Todo, int64, error)
	Create(ctx context.Context, t *Todo) error
	Update(ctx context.Context, t *Todo) error
	Delete(ctx context.Context, id uuid.UUID) error

	// BatchUpdate applies changes to every existing id and returns the ids it
	// actually touched; missing ids are skipped, not errors.
	BatchUpdate(ctx context.Context, ids []uuid.UUID, changes BatchChanges) ([]uuid.UUID, error)
	// BatchDelete removes the given ids and returns how many rows went away.
	BatchDelete(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ReplaceTags upserts the named tags for the owner and relinks the todo
	// to exactly that set.
	ReplaceTags(ctx context.Context, todoID uuid.UUID, ownerID uuid.UUID, names []string) error
	ListTags(ctx context.Context, todoID uuid.UUID) ([]TagRef, error)

	Stats(ctx context.Context, userID *uuid.UUID) (*Stats, error)
}
