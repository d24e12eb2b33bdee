package tag

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appcommon "tasklane/internal/app/common"
	apptag "tasklane/internal/app/tag"
	"tasklane/internal/auth"
	"tasklane/internal/http/binding"
	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type Handler struct {
	service apptag.Service
	logger  logging.Logger
}

func NewHandler(service apptag.Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "tag_http_handler"),
	}
}

type createTagRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}

func ownerID(r *http.Request) (uuid.UUID, bool) {
	if actor := auth.ActorFromContext(r.Context()); actor != nil {
		return *actor, true
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case appcommon.IsNotFound(err):
		responses.WriteError(w, http.StatusNotFound, err.Error())
	case appcommon.IsConflict(err):
		responses.WriteConflict(w, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		responses.WriteInternalError(w)
	}
}

// Create POST /tags
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := ownerID(r)
	if !ok {
		responses.WriteBadRequest(w, "user_id is required")
		return
	}

	var req createTagRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Create(ctx, apptag.CreateTagInput{
		Name:   req.Name,
		UserID: owner,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to create tag")
		return
	}

	responses.WriteJSON(w, http.StatusCreated, dto)
}

// List GET /tags
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := ownerID(r)
	if !ok {
		responses.WriteBadRequest(w, "user_id is required")
		return
	}

	dtos, err := h.service.ListByUser(ctx, owner)
	if err != nil {
		h.writeServiceError(w, err, "failed to list tags")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dtos)
}

// GetByID GET /tags/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid tag id")
		return
	}

	dto, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get tag")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Delete DELETE /tags/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid tag id")
		return
	}

	if err := h.service.Delete(ctx, auth.ActorFromContext(ctx), id); err != nil {
		h.writeServiceError(w, err, "failed to delete tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) todoAndTagIDs(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	todoID, err := uuid.Parse(chi.URLParam(r, "todoID"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid todo id")
		return uuid.Nil, uuid.Nil, false
	}
	tagID, err := uuid.Parse(chi.URLParam(r, "tagID"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid tag id")
		return uuid.Nil, uuid.Nil, false
	}
	return todoID, tagID, true
}

// Assign PUT /todos/{todoID}/tags/{tagID}
func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	todoID, tagID, ok := h.todoAndTagIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Assign(r.Context(), todoID, tagID); err != nil {
		h.writeServiceError(w, err, "failed to assign tag")
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Unassign DELETE /todos/{todoID}/tags/{tagID}
func (h *Handler) Unassign(w http.ResponseWriter, r *http.Request) {
	todoID, tagID, ok := h.todoAndTagIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Unassign(r.Context(), todoID, tagID); err != nil {
		h.writeServiceError(w, err, "failed to unassign tag")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
