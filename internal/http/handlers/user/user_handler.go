package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	appuser "tasklane/internal/app/user"
	"tasklane/internal/http/binding"
	"tasklane/internal/http/responses"
	"tasklane/internal/logging"
)

type Handler struct {
	service appuser.Service
	logger  logging.Logger
}

func NewHandler(service appuser.Service, logger logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger.With("component", "user_http_handler"),
	}
}

// Register POST /users/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Register(ctx, appuser.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		if appuser.IsConflict(err) {
			responses.WriteConflict(w, err.Error())
			return
		}
		h.logger.Error("failed to register user", "error", err)
		responses.WriteInternalError(w)
		return
	}

	responses.WriteJSON(w, http.StatusCreated, dto)
}

// Login POST /users/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Login(ctx, appuser.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, appuser.ErrInvalidCredentials) {
			responses.WriteUnauthorized(w, "invalid credentials")
			return
		}
		h.logger.Error("failed to login user", "error", err)
		responses.WriteInternalError(w)
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// GetByID GET /users/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid user id")
		return
	}

	dto, err := h.service.Get(ctx, id)
	if err != nil {
		if appuser.IsNotFound(err) {
			responses.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to get user", "error", err, "id", id)
		responses.WriteInternalError(w)
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Update PATCH /users/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid user id")
		return
	}

	var req updateUserRequest
	if !binding.BindAndValidate(w, r, &req) {
		return
	}

	dto, err := h.service.Update(ctx, appuser.UpdateUserInput{
		ID:       id,
		Email:    req.Email,
		FullName: req.FullName,
		IsActive: req.IsActive,
	})
	if err != nil {
		if appuser.IsNotFound(err) {
			responses.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to update user", "error", err, "id", id)
		responses.WriteInternalError(w)
		return
	}

	responses.WriteJSON(w, http.StatusOK, dto)
}

// Delete DELETE /users/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		responses.WriteBadRequest(w, "invalid user id")
		return
	}

	if err := h.service.Delete(ctx, id); err != nil {
		if appuser.IsNotFound(err) {
			responses.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to delete user", "error", err, "id", id)
		responses.WriteInternalError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
