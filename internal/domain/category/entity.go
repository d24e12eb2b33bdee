package category

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID          uuid.UUID
	Name        string
	Description *string
	Color       *string
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
