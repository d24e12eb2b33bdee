package stats

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	dom "tasklane/internal/domain/todo"
	"tasklane/internal/logging"
)

type TodoStatsDto struct {
	TotalTodos      int64              `json:"total_todos"`
	CompletedTodos  int64              `json:"completed_todos"`
	PendingTodos    int64              `json:"pending_todos"`
	OverdueTodos    int64              `json:"overdue_todos"`
	TodosByPriority []PriorityCountDto `json:"todos_by_priority"`
	TodosByCategory []CategoryCountDto `json:"todos_by_category"`
}

type PriorityCountDto struct {
	Priority int   `json:"priority"`
	Count    int64 `json:"count"`
}

type CategoryCountDto struct {
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName *string    `json:"category_name"`
	Count        int64      `json:"count"`
}

type Service interface {
	TodoStats(ctx context.Context, userID *uuid.UUID) (*TodoStatsDto, error)
}

type service struct {
	todos  dom.Repository
	logger logging.Logger
}

func NewService(todos dom.Repository, logger logging.Logger) Service {
	return &service{
		todos:  todos,
		logger: logger.With("component", "stats_service"),
	}
}

func (s *service) TodoStats(ctx context.Context, userID *uuid.UUID) (*TodoStatsDto, error) {
	stats, err := s.todos.Stats(ctx, userID)
	if err != nil {
		s.logger.Error("failed to compute todo stats", "error", err)
		return nil, fmt.Errorf("todo stats: %w", err)
	}

	dto := &TodoStatsDto{
		TotalTodos:      stats.Total,
		CompletedTodos:  stats.Completed,
		PendingTodos:    stats.Pending,
		OverdueTodos:    stats.Overdue,
		TodosByPriority: make([]PriorityCountDto, 0, len(stats.ByPriority)),
		TodosByCategory: make([]CategoryCountDto, 0, len(stats.ByCategory)),
	}
	for _, pc := range stats.ByPriority {
		dto.TodosByPriority = append(dto.TodosByPriority, PriorityCountDto{Priority: pc.Priority, Count: pc.Count})
	}
	for _, cc := range stats.ByCategory {
		dto.TodosByCategory = append(dto.TodosByCategory, CategoryCountDto{
			CategoryID:   cc.CategoryID,
			CategoryName: cc.CategoryName,
			Count:        cc.Count,
		})
	}
	return dto, nil
}
