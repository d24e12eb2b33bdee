package category

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appcategory "tasklane/internal/app/category"
	appcommon "tasklane/internal/app/common"
	"tasklane/internal/auth"
	"tasklane/internal/http/binding"
	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type Handler struct {
	service appcategory.Service
	logger  logging.Logger
}

func NewHandler(service appcategory.Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "category_http_handler"),
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Color       *string `json:"color" validate:"omitempty,hexcolor"`
}

// ownerID resolves the user scope: the authenticated actor, or the user_id
// query parameter for anonymous callers.
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

// Create POST /categories
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := ownerID(r)
	if !ok {
		responses.WriteBadRequest(w, "user_id is required")
		return
	}

	var req createCategoryRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Create(ctx, appcategory.CreateCategoryInput{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		UserID:      owner,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to create category")
		return
	}

	responses.WriteJSON(w, http.StatusCreated, dto)
}

// List GET /categories
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	owner, ok := ownerID(r)
	if !ok {
		responses.WriteBadRequest(w, "user_id is required")
		return
	}

	dtos, err := h.service.ListByUser(ctx, owner)
	if err != nil {
		h.writeServiceError(w, err, "failed to list categories")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dtos)
}

// GetByID GET /categories/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid category id")
		return
	}

	dto, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get category")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Update PATCH /categories/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid category id")
		return
	}

	var req updateCategoryRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Update(ctx, auth.ActorFromContext(ctx), appcategory.UpdateCategoryInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to update category")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Delete DELETE /categories/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid category id")
		return
	}

	if err := h.service.Delete(ctx, auth.ActorFromContext(ctx), id); err != nil {
		h.writeServiceError(w, err, "failed to delete category")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
