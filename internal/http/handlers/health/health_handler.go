package health

import (
	"net/http"

	"tasklane/internal/cache"
	"tasklane/internal/db"
	"tasklane/internal/events"
	"tasklane/internal/http/responses"
)

type Handler struct {
	db     *db.Client
	cache  *cache.RedisClient
	events events.Publisher
}

func NewHandler(dbClient *db.Client, redisClient *cache.RedisClient, publisher events.Publisher) *Handler {
	return &Handler{
		db:     dbClient,
		cache:  redisClient,
		events: publisher,
	}
}

// Check reports liveness plus the state of each backing dependency.
// A degraded dependency downgrades the status but keeps the 200, the
// service still serves requests without Redis or Kafka.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := http.StatusOK
	body := map[string]string{
		"status":   "ok",
		"database": "ok",
		"cache":    "ok",
		"events":   "enabled",
	}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unavailable"
		body["database"] = "unreachable"
	}
	if err := h.cache.Ping(ctx); err != nil {
		if body["status"] == "ok" {
			body["status"] = "degraded"
		}
		body["cache"] = "unreachable"
	}
	if !h.events.IsEnabled() {
		body["events"] = "disabled"
	}

	responses.WriteJSON(w, status, body)
}
