package stats

import (
	"net/http"

	"github.com/google/uuid"

	appstats "tasklane/internal/app/stats"
	"tasklane/internal/auth"
	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type Handler struct {
	service appstats.Service
	logger  logging.Logger
}

func NewHandler(service appstats.Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "stats_http_handler"),
	}
}

// TodoStats GET /stats/todos
//
// Scope resolves to the authenticated actor when present, then the
// user_id query parameter. With neither the stats cover all todos.
func (h *Handler) TodoStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := auth.ActorFromContext(ctx)
	if userID == nil {
		if v := r.URL.Query().Get("user_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				responses.WriteBadRequest(w, "invalid user_id")
				return
			}
			userID = &id
		}
	}

	dto, err := h.service.TodoStats(ctx, userID)
	if err != nil {
		h.logger.Error("failed to compute todo stats", "error", err)
		responses.WriteInternalError(w)
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}
