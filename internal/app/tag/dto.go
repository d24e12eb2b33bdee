package tag

import (
	"time"

	"github.com/google/uuid"

	dom "tasklane/internal/domain/tag"
)

type TagDto struct {
	Id        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	UserId    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateTagInput struct {
	Name   string
	UserID uuid.UUID
}

func toDTO(t *dom.Tag) *TagDto {
	if t == nil {
		return nil
	}
	return &TagDto{
		Id:        t.ID,
		Name:      t.Name,
		UserId:    t.UserID,
		CreatedAt: t.CreatedAt,
	}
}

func toDTOs(list []dom.Tag) []TagDto {
	res := make([]TagDto, 0, len(list))
	for i := range list {
		res = append(res, *toDTO(&list[i]))
	}
	return res
}
