package todo

import (
	"time"

	"github.com/google/uuid"

	domcat "tasklane/internal/domain/category"
	dom "tasklane/internal/domain/todo"
)

type TodoDto struct {
	Id          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description *string      `json:"description,omitempty"`
	Completed   bool         `json:"completed"`
	UserId      *uuid.UUID   `json:"user_id,omitempty"`
	Category    *CategoryRef `json:"category,omitempty"`
	Priority    *int         `json:"priority,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	Tags        []TagRef     `json:"tags"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type CategoryRef struct {
	Id    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color *string   `json:"color,omitempty"`
}

type TagRef struct {
	Id   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type TodoListDto struct {
	Todos   []TodoDto `json:"todos"`
	Total   int64     `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

type CreateTodoInput struct {
	Title       string
	Description *string
	CategoryID  *uuid.UUID
	Priority    *int
	DueDate     *time.Time
	Tags        []string
}

type UpdateTodoInput struct {
	ID          uuid.UUID
	Title       *string
	Description *string
	Completed   *bool
	CategoryID  *uuid.UUID
	Priority    *int
	DueDate     *time.Time
	Tags        []string // nil leaves tags untouched
}

type ListTodosInput struct {
	Completed  *bool
	CategoryID *uuid.UUID
	Priority   *int
	Search     string
	Tag        string
	Overdue    bool
	Page       int
	PerPage    int
}

type BatchUpdateInput struct {
	TodoIDs    []uuid.UUID
	Completed  *bool
	CategoryID *uuid.UUID
	Priority   *int
}

func toDTO(t *dom.Todo, cat *domcat.Category, tags []dom.TagRef) *TodoDto {
	if t == nil {
		return nil
	}

	dto := &TodoDto{
		Id:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		UserId:      t.UserID,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        make([]TagRef, 0, len(tags)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if cat != nil {
		dto.Category = &CategoryRef{Id: cat.ID, Name: cat.Name, Color: cat.Color}
	}
	for _, tag := range tags {
		dto.Tags = append(dto.Tags, TagRef{Id: tag.ID, Name: tag.Name})
	}
	return dto
}
