package todo

import (
	"time"

	"github.com/google/uuid"
)

type createTodoRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Priority    *int       `json:"priority" validate:"omitempty,min=1,max=5"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

type updateTodoRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Completed   *bool      `json:"completed"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Priority    *int       `json:"priority" validate:"omitempty,min=1,max=5"`
	DueDate     *time.Time `json:"due_date"`
	Tags        []string   `json:"tags" validate:"omitempty,dive,min=1,max=50"`
}

type batchUpdateRequest struct {
	TodoIDs    []uuid.UUID `json:"todo_ids" validate:"required,min=1,max=100"`
	Completed  *bool       `json:"completed"`
	CategoryID *uuid.UUID  `json:"category_id"`
	Priority   *int        `json:"priority" validate:"omitempty,min=1,max=5"`
}
