package todo

import (
	"time"

	"github.com/google/uuid"
)

type Todo struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Completed   bool
	UserID      *uuid.UUID
	CategoryID  *uuid.UUID
	Priority    *int
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TagRef is the tag view a todo carries; full tag management lives in the
// tag domain.
type TagRef struct {
	ID   uuid.UUID
	Name string
}

// Stats aggregates the todo table, optionally scoped to one user.
type Stats struct {
	Total      int64
	Completed  int64
	Pending    int64
	Overdue    int64
	ByPriority []PriorityCount
	ByCategory []CategoryCount
}

type PriorityCount struct {
	Priority int
	Count    int64
}

type CategoryCount struct {
	CategoryID   *uuid.UUID
	CategoryName *string
	Count        int64
}
