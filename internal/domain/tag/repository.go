package tag

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tag, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Tag, error)
	NameExists(ctx context.Context, userID uuid.UUID, name string) (bool, error)
	Create(ctx context.Context, t *Tag) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Assign links a tag to a todo, tolerating an existing link.
	Assign(ctx context.Context, todoID, tagID uuid.UUID) error
	// Unassign removes the link; a missing link is a not-found error.
	Unassign(ctx context.Context, todoID, tagID uuid.UUID) error
}
