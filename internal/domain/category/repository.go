package category

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Category, error)
	// NameExists checks the per-user unique name constraint; exclude skips
	// one id so renames don't collide with themselves.
	NameExists(ctx context.Context, userID uuid.UUID, name string, exclude *uuid.UUID) (bool, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}
