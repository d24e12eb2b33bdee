package user

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tasklane/internal/auth"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/user"
	"tasklane/internal/events"
	"tasklane/internal/logging"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*UserDto, error)
	Login(ctx context.Context, input LoginInput) (*AuthDto, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDto, error)
	Update(ctx context.Context, input UpdateUserInput) (*UserDto, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   dom.Repository
	issuer *auth.Issuer
	events events.Publisher
	logger logging.Logger
}

func NewService(
	repo dom.Repository,
	issuer *auth.Issuer,
	publisher events.Publisher,
	logger logging.Logger,
) Service {
	return &service{
		repo:   repo,
		issuer: issuer,
		events: publisher,
		logger: logger.With("component", "user_service"),
	}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*UserDto, error) {
	taken, err := s.repo.ExistsByUsernameOrEmail(ctx, input.Username, input.Email)
	if err != nil {
		s.logger.Error("failed to check user uniqueness", "error", err)
		return nil, fmt.Errorf("check user uniqueness: %w", err)
	}
	if taken {
		return nil, domcommon.NewConflict("user", "username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &dom.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		FullName:     input.FullName,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Error("failed to create user", "error", err, "username", input.Username)
		return nil, fmt.Errorf("create user: %w", err)
	}

	event := events.UserRegistered{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		FullName: u.FullName,
	}
	if err := s.events.Publish(ctx, event, &u.ID); err != nil {
		s.logger.Error("failed to publish UserRegistered event", "error", err, "id", u.ID)
	}

	return toDTO(u), nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthDto, error) {
	u, err := s.repo.GetByUsername(ctx, input.Username)
	if err != nil {
		if domcommon.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(u.ID, u.Username)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	event := events.UserLoggedIn{
		UserID:         u.ID,
		Username:       u.Username,
		LoginTimestamp: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event, &u.ID); err != nil {
		s.logger.Error("failed to publish UserLoggedIn event", "error", err, "id", u.ID)
	}

	return &AuthDto{User: *toDTO(u), Token: token}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDto, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(u), nil
}

func (s *service) Update(ctx context.Context, input UpdateUserInput) (*UserDto, error) {
	u, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		u.Email = *input.Email
	}
	if input.FullName != nil {
		u.FullName = input.FullName
	}
	if input.IsActive != nil {
		u.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, u); err != nil {
		s.logger.Error("failed to update user", "error", err, "id", input.ID)
		return nil, err
	}

	return toDTO(u), nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
