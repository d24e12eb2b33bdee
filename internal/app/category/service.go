package category

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	dom "tasklane/internal/domain/category"
	domcommon "tasklane/internal/domain/common"
	"tasklane/internal/events"
	"tasklane/internal/logging"
)

type Service interface {
	Create(ctx context.Context, input CreateCategoryInput) (*CategoryDto, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]CategoryDto, error)
	Get(ctx context.Context, id uuid.UUID) (*CategoryDto, error)
	Update(ctx context.Context, actorID *uuid.UUID, input UpdateCategoryInput) (*CategoryDto, error)
	Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error
}

type service struct {
	repo   dom.Repository
	events events.Publisher
	logger logging.Logger
}

func NewService(repo dom.Repository, publisher events.Publisher, logger logging.Logger) Service {
	return &service{
		repo:   repo,
		events: publisher,
		logger: logger.With("component", "category_service"),
	}
}

func (s *service) Create(ctx context.Context, input CreateCategoryInput) (*CategoryDto, error) {
	exists, err := s.repo.NameExists(ctx, input.UserID, input.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("check category name: %w", err)
	}
	if exists {
		return nil, domcommon.NewConflict("category", "name already exists")
	}

	c := &dom.Category{
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
		UserID:      input.UserID,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("failed to create category", "error", err, "name", input.Name)
		return nil, fmt.Errorf("create category: %w", err)
	}

	event := events.CategoryCreated{
		CategoryID:  c.ID,
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
		UserID:      c.UserID,
	}
	if err := s.events.Publish(ctx, event, &c.UserID); err != nil {
		s.logger.Error("failed to publish CategoryCreated event", "error", err, "id", c.ID)
	}

	return toDTO(c), nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]CategoryDto, error) {
	categories, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list categories", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return toDTOs(categories), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*CategoryDto, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(c), nil
}

func (s *service) Update(ctx context.Context, actorID *uuid.UUID, input UpdateCategoryInput) (*CategoryDto, error) {
	c, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && *input.Name != c.Name {
		exists, err := s.repo.NameExists(ctx, c.UserID, *input.Name, &c.ID)
		if err != nil {
			return nil, fmt.Errorf("check category name: %w", err)
		}
		if exists {
			return nil, domcommon.NewConflict("category", "name already exists")
		}
		c.Name = *input.Name
	}
	if input.Description != nil {
		c.Description = input.Description
	}
	if input.Color != nil {
		c.Color = input.Color
	}

	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("failed to update category", "error", err, "id", input.ID)
		return nil, err
	}

	event := events.CategoryUpdated{
		CategoryID:  c.ID,
		Name:        input.Name,
		Description: input.Description,
		Color:       input.Color,
	}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish CategoryUpdated event", "error", err, "id", c.ID)
	}

	return toDTO(c), nil
}

func (s *service) Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event := events.CategoryDeleted{CategoryID: id, DeletedAt: time.Now().UTC()}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish CategoryDeleted event", "error", err, "id", id)
	}
	return nil
}
