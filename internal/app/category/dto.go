package category

import (
	"time"

	"github.com/google/uuid"

	dom "tasklane/internal/domain/category"
)

type CategoryDto struct {
	Id          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       *string   `json:"color,omitempty"`
	UserId      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateCategoryInput struct {
	Name        string
	Description *string
	Color       *string
	UserID      uuid.UUID
}

type UpdateCategoryInput struct {
	ID          uuid.UUID
	Name        *string
	Description *string
	Color       *string
}

func toDTO(c *dom.Category) *CategoryDto {
	if c == nil {
		return nil
	}
	return &CategoryDto{
		Id:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		UserId:      c.UserID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func toDTOs(list []dom.Category) []CategoryDto {
	res := make([]CategoryDto, 0, len(list))
	for i := range list {
		res = append(res, *toDTO(&list[i]))
	}
	return res
}
