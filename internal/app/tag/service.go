package tag

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/tag"
	"tasklane/internal/events"
	"tasklane/internal/logging"
)

type Service interface {
	Create(ctx context.Context, input CreateTagInput) (*TagDto, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]TagDto, error)
	Get(ctx context.Context, id uuid.UUID) (*TagDto, error)
	Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error
	Assign(ctx context.Context, todoID, tagID uuid.UUID) error
	Unassign(ctx context.Context, todoID, tagID uuid.UUID) error
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
		logger: logger.With("component", "tag_service"),
	}
}

func (s *service) Create(ctx context.Context, input CreateTagInput) (*TagDto, error) {
	exists, err := s.repo.NameExists(ctx, input.UserID, input.Name)
	if err != nil {
		return nil, fmt.Errorf("check tag name: %w", err)
	}
	if exists {
		return nil, domcommon.NewConflict("tag", "name already exists")
	}

	t := &dom.Tag{Name: input.Name, UserID: input.UserID}
	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create tag", "error", err, "name", input.Name)
		return nil, fmt.Errorf("create tag: %w", err)
	}

	event := events.TagCreated{TagID: t.ID, Name: t.Name, UserID: t.UserID}
	if err := s.events.Publish(ctx, event, &t.UserID); err != nil {
		s.logger.Error("failed to publish TagCreated event", "error", err, "id", t.ID)
	}

	return toDTO(t), nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID) ([]TagDto, error) {
	tags, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tags", "error", err, "user_id", userID)
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return toDTOs(tags), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TagDto, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(t), nil
}

func (s *service) Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event := events.TagDeleted{TagID: id, DeletedAt: time.Now().UTC()}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish TagDeleted event", "error", err, "id", id)
	}
	return nil
}

func (s *service) Assign(ctx context.Context, todoID, tagID uuid.UUID) error {
	return s.repo.Assign(ctx, todoID, tagID)
}

func (s *service) Unassign(ctx context.Context, todoID, tagID uuid.UUID) error {
	return s.repo.Unassign(ctx, todoID, tagID)
}
