package todo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	appcommon "tasklane/internal/app/common"
	"tasklane/internal/cache"
	domcat "tasklane/internal/domain/category"
	domcommon "tasklane/internal/domain/common"
	dom "tasklane/internal/domain/todo"
	"tasklane/internal/events"
	"tasklane/internal/logging"
)

const (
	defaultTodoCacheTTL = 5 * time.Minute
	maxBatchSize        = 100
)

type Service interface {
	Create(ctx context.Context, actorID *uuid.UUID, input CreateTodoInput) (*TodoDto, error)
	List(ctx context.Context, input ListTodosInput) (*TodoListDto, error)
	Get(ctx context.Context, id uuid.UUID) (*TodoDto, error)
	Update(ctx context.Context, actorID *uuid.UUID, input UpdateTodoInput) (*TodoDto, error)
	Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error
	BatchUpdate(ctx context.Context, actorID *uuid.UUID, input BatchUpdateInput) ([]TodoDto, error)
	BatchDelete(ctx context.Context, actorID *uuid.UUID, ids []uuid.UUID) (int64, error)
}

type service struct {
	repo       dom.Repository
	categories domcat.Repository
	cache      cache.TodoCache
	events     events.Publisher
	logger     logging.Logger
}

func NewService(
	repo dom.Repository,
	categories domcat.Repository,
	todoCache cache.TodoCache,
	publisher events.Publisher,
	logger logging.Logger,
) Service {
	return &service{
		repo:       repo,
		categories: categories,
		cache:      todoCache,
		events:     publisher,
		logger:     logger.With("component", "todo_service"),
	}
}

// view loads the todo's category and tags, the shape every read returns.
func (s *service) view(ctx context.Context, t *dom.Todo) (*TodoDto, error) {
	var cat *domcat.Category
	if t.CategoryID != nil {
		c, err := s.categories.GetByID(ctx, *t.CategoryID)
		if err != nil && !domcommon.IsNotFound(err) {
			return nil, fmt.Errorf("load todo category: %w", err)
		}
		cat = c
	}

	tags, err := s.repo.ListTags(ctx, t.ID)
	if err != nil {
		return nil, fmt.Errorf("load todo tags: %w", err)
	}

	return toDTO(t, cat, tags), nil
}

func (s *service) cacheSet(ctx context.Context, dto *TodoDto) {
	data, err := json.Marshal(dto)
	if err != nil {
		s.logger.Error("failed to marshal todo for cache", "error", err, "id", dto.Id)
		return
	}
	if err := s.cache.Set(ctx, dto.Id, data, defaultTodoCacheTTL); err != nil {
		s.logger.Error("failed to set todo cache", "error", err, "id", dto.Id)
	}
}

func (s *service) cacheDrop(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Error("failed to drop todo cache", "error", err, "id", id)
	}
}

func (s *service) Create(ctx context.Context, actorID *uuid.UUID, input CreateTodoInput) (*TodoDto, error) {
	t := &dom.Todo{
		Title:       input.Title,
		Description: input.Description,
		UserID:      actorID,
		CategoryID:  input.CategoryID,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
	}

	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("failed to create todo", "error", err)
		return nil, fmt.Errorf("create todo: %w", err)
	}

	if len(input.Tags) > 0 {
		owner := uuid.Nil
		if actorID != nil {
			owner = *actorID
		}
		if err := s.repo.ReplaceTags(ctx, t.ID, owner, input.Tags); err != nil {
			s.logger.Error("failed to attach tags to todo", "error", err, "id", t.ID)
			return nil, fmt.Errorf("attach tags: %w", err)
		}
	}

	dto, err := s.view(ctx, t)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, dto)

	owner := uuid.Nil
	if actorID != nil {
		owner = *actorID
	}
	event := events.TodoCreated{
		TodoID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		UserID:      owner,
		CategoryID:  t.CategoryID,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		Tags:        input.Tags,
	}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish TodoCreated event", "error", err, "id", t.ID)
	}

	return dto, nil
}

func (s *service) List(ctx context.Context, input ListTodosInput) (*TodoListDto, error) {
	filter := dom.ListFilter{
		Completed:  input.Completed,
		CategoryID: input.CategoryID,
		Priority:   input.Priority,
		Search:     input.Search,
		Tag:        input.Tag,
		Overdue:    input.Overdue,
		Page:       input.Page,
		PerPage:    input.PerPage,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 || filter.PerPage > 100 {
		filter.PerPage = 10
	}

	todos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list todos", "error", err)
		return nil, fmt.Errorf("list todos: %w", err)
	}

	dtos := make([]TodoDto, 0, len(todos))
	for i := range todos {
		dto, err := s.view(ctx, &todos[i])
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}

	return &TodoListDto{
		Todos:   dtos,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TodoDto, error) {
	if data, err := s.cache.GetByID(ctx, id); err == nil && data != nil {
		var dto TodoDto
		if err := json.Unmarshal(data, &dto); err == nil {
			return &dto, nil
		}
		s.logger.Error("failed to unmarshal todo from cache", "error", err, "id", id)
	} else if err != nil {
		s.logger.Error("failed to get todo from cache", "error", err, "id", id)
	}

	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	dto, err := s.view(ctx, t)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, dto)
	return dto, nil
}

func (s *service) Update(ctx context.Context, actorID *uuid.UUID, input UpdateTodoInput) (*TodoDto, error) {
	t, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	wasCompleted := t.Completed

	if input.Title != nil {
		t.Title = *input.Title
	}
	if input.Description != nil {
		t.Description = input.Description
	}
	if input.Completed != nil {
		t.Completed = *input.Completed
	}
	if input.CategoryID != nil {
		t.CategoryID = input.CategoryID
	}
	if input.Priority != nil {
		t.Priority = input.Priority
	}
	if input.DueDate != nil {
		t.DueDate = input.DueDate
	}

	if err := s.repo.Update(ctx, t); err != nil {
		s.logger.Error("failed to update todo", "error", err, "id", input.ID)
		return nil, err
	}

	if input.Tags != nil {
		owner := uuid.Nil
		if t.UserID != nil {
			owner = *t.UserID
		}
		if err := s.repo.ReplaceTags(ctx, t.ID, owner, input.Tags); err != nil {
			s.logger.Error("failed to replace todo tags", "error", err, "id", t.ID)
			return nil, fmt.Errorf("replace tags: %w", err)
		}
	}

	dto, err := s.view(ctx, t)
	if err != nil {
		return nil, err
	}
	s.cacheSet(ctx, dto)

	event := events.TodoUpdated{
		TodoID:      t.ID,
		Title:       input.Title,
		Description: input.Description,
		Completed:   input.Completed,
		CategoryID:  input.CategoryID,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        input.Tags,
	}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish TodoUpdated event", "error", err, "id", t.ID)
	}

	// Completion is its own transition, emitted only on the false -> true flip.
	if !wasCompleted && t.Completed {
		completed := events.TodoCompleted{TodoID: t.ID, CompletedAt: t.UpdatedAt}
		if err := s.events.Publish(ctx, completed, actorID); err != nil {
			s.logger.Error("failed to publish TodoCompleted event", "error", err, "id", t.ID)
		}
	}

	return dto, nil
}

func (s *service) Delete(ctx context.Context, actorID *uuid.UUID, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.cacheDrop(ctx, id)

	event := events.TodoDeleted{TodoID: id, DeletedAt: time.Now().UTC()}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish TodoDeleted event", "error", err, "id", id)
	}
	return nil
}

func validateBatch(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return appcommon.NewValidation("no todo ids provided")
	}
	if len(ids) > maxBatchSize {
		return appcommon.NewValidation(fmt.Sprintf("too many todos (max %d)", maxBatchSize))
	}
	return nil
}

func (s *service) BatchUpdate(ctx context.Context, actorID *uuid.UUID, input BatchUpdateInput) ([]TodoDto, error) {
	if err := validateBatch(input.TodoIDs); err != nil {
		return nil, err
	}

	changes := dom.BatchChanges{
		Completed:  input.Completed,
		CategoryID: input.CategoryID,
		Priority:   input.Priority,
	}
	updated, err := s.repo.BatchUpdate(ctx, input.TodoIDs, changes)
	if err != nil {
		s.logger.Error("failed to batch update todos", "error", err)
		return nil, fmt.Errorf("batch update todos: %w", err)
	}

	dtos := make([]TodoDto, 0, len(updated))
	for _, id := range updated {
		s.cacheDrop(ctx, id)
		t, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		dto, err := s.view(ctx, t)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, *dto)
	}

	if len(updated) > 0 {
		event := events.TodosUpdatedBatch{
			TodoIDs:      updated,
			UpdatedCount: len(updated),
			UpdatedAt:    time.Now().UTC(),
			Changes: events.TodoUpdated{
				Completed:  input.Completed,
				CategoryID: input.CategoryID,
				Priority:   input.Priority,
			},
		}
		if err := s.events.Publish(ctx, event, actorID); err != nil {
			s.logger.Error("failed to publish TodosUpdatedBatch event", "error", err)
		}
	}

	return dtos, nil
}

func (s *service) BatchDelete(ctx context.Context, actorID *uuid.UUID, ids []uuid.UUID) (int64, error) {
	if err := validateBatch(ids); err != nil {
		return 0, err
	}

	deleted, err := s.repo.BatchDelete(ctx, ids)
	if err != nil {
		s.logger.Error("failed to batch delete todos", "error", err)
		return 0, fmt.Errorf("batch delete todos: %w", err)
	}
	if deleted == 0 {
		return 0, domcommon.NewNotFound("todo")
	}

	for _, id := range ids {
		s.cacheDrop(ctx, id)
	}

	event := events.TodosDeletedBatch{
		TodoIDs:      ids,
		DeletedCount: int(deleted),
		DeletedAt:    time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event, actorID); err != nil {
		s.logger.Error("failed to publish TodosDeletedBatch event", "error", err)
	}

	return deleted, nil
}
