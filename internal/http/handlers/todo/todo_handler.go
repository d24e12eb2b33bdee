package todo

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appcommon "tasklane/internal/app/common"
	apptodo "tasklane/internal/app/todo"
	"tasklane/internal/auth"
	"tasklane/internal/http/binding"
	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type Handler struct {
	service apptodo.Service
	logger  logging.Logger
}

func NewHandler(service apptodo.Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "todo_http_handler"),
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error, msg string) {
	switch {
	case appcommon.IsValidation(err):
		responses.WriteBadRequest(w, err.Error())
	case appcommon.IsNotFound(err):
		responses.WriteError(w, http.StatusNotFound, err.Error())
	case appcommon.IsConflict(err):
		responses.WriteConflict(w, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		responses.WriteInternalError(w)
	}
}

// Create POST /todos
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createTodoRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Create(ctx, auth.ActorFromContext(ctx), apptodo.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to create todo")
		return
	}

	responses.WriteJSON(w, http.StatusCreated, dto)
}

// List GET /todos
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	input := apptodo.ListTodosInput{
		Search: q.Get("search"),
		Tag:    q.Get("tag"),
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			input.Page = page
		}
	}
	if v := q.Get("per_page"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil {
			input.PerPage = perPage
		}
	}
	if v := q.Get("completed"); v != "" {
		if completed, err := strconv.ParseBool(v); err == nil {
			input.Completed = &completed
		}
	}
	if v := q.Get("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			responses.WriteBadRequest(w, "invalid category_id")
			return
		}
		input.CategoryID = &id
	}
	if v := q.Get("priority"); v != "" {
		if priority, err := strconv.Atoi(v); err == nil {
			input.Priority = &priority
		}
	}
	if v := q.Get("overdue"); v != "" {
		if overdue, err := strconv.ParseBool(v); err == nil {
			input.Overdue = overdue
		}
	}

	list, err := h.service.List(ctx, input)
	if err != nil {
		h.writeServiceError(w, err, "failed to list todos")
		return
	}

	responses.WriteJSON(w, http.StatusOK, list)
}

// GetByID GET /todos/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid todo id")
		return
	}

	dto, err := h.service.Get(ctx, id)
	if err != nil {
		h.writeServiceError(w, err, "failed to get todo")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Update PATCH /todos/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid todo id")
		return
	}

	var req updateTodoRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Update(ctx, auth.ActorFromContext(ctx), apptodo.UpdateTodoInput{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		Tags:        req.Tags,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to update todo")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Delete DELETE /todos/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid todo id")
		return
	}

	if err := h.service.Delete(ctx, auth.ActorFromContext(ctx), id); err != nil {
		h.writeServiceError(w, err, "failed to delete todo")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// BatchUpdate PATCH /todos/batch
func (h *Handler) BatchUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req batchUpdateRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dtos, err := h.service.BatchUpdate(ctx, auth.ActorFromContext(ctx), apptodo.BatchUpdateInput{
		TodoIDs:    req.TodoIDs,
		Completed:  req.Completed,
		CategoryID: req.CategoryID,
		Priority:   req.Priority,
	})
	if err != nil {
		h.writeServiceError(w, err, "failed to batch update todos")
		return
	}

	responses.WriteJSON(w, http.StatusOK, dtos)
}

// BatchDelete DELETE /todos/batch, body is a raw JSON array of ids.
func (h *Handler) BatchDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var ids []uuid.UUID
	if err := json.NewDecoder(r.Body).Decode(&ids); err != nil {
		responses.WriteBadRequest(w, "invalid JSON payload")
		return
	}

	if _, err := h.service.BatchDelete(ctx, auth.ActorFromContext(ctx), ids); err != nil {
		h.writeServiceError(w, err, "failed to batch delete todos")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
