package user

import (
	"time"

	"github.com/google/uuid"

	dom "tasklane/internal/domain/user"
)

type UserDto struct {
	Id        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  *string   `json:"full_name,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthDto struct {
	User  UserDto `json:"user"`
	Token string  `json:"token"`
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName *string
}

type LoginInput struct {
	Username string
	Password string
}

type UpdateUserInput struct {
	ID       uuid.UUID
	Email    *string
	FullName *string
	IsActive *bool
}

func toDTO(u *dom.User) *UserDto {
	if u == nil {
		return nil
	}
	return &UserDto{
		Id:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
