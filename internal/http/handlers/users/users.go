// Package users exposes the administrative account endpoints and the
// activation-status route available to every authenticated caller.
package users

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
)

// Service is the application-layer contract of the user handlers.
type Service interface {
	List(ctx context.Context) ([]*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, email, rawPassword, role string, firstname, lastname, phone *string, editorID *int64) (*models.User, error)
	Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, rawPassword string) error
	UpdateStatus(ctx context.Context, caller models.Identity, targetID int64, activated bool) error
	Delete(ctx context.Context, id int64) error
	RegistrationsByMonth(ctx context.Context, now time.Time) ([]models.MonthCount, error)
}

// Handler serves the /users routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the users Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// CreateRequest is the administrative account creation payload.
type CreateRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Role      string  `json:"role" validate:"required"`
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	EditorID  *int64  `json:"editor_id,omitempty"`
}

// UpdateRequest is the partial profile/role update payload.
type UpdateRequest struct {
	Email     *string `json:"email,omitempty" validate:"omitempty,email"`
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      *string `json:"role,omitempty"`
}

// PasswordRequest replaces an account password.
type PasswordRequest struct {
	Password string `json:"password" validate:"required,min=8"`
}

// StatusRequest toggles an account's activation flag.
type StatusRequest struct {
	UserID    int64 `json:"user_id" validate:"required,gte=1"`
	Activated *bool `json:"activated" validate:"required"`
}

// List handles GET /users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.List"
	log := h.opLog(r, op)

	users, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list users", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(users, "users"))
}

// Get handles GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Get"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Warn("failed to get user", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(user, "user"))
}

// Create handles POST /users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Create"
	log := h.opLog(r, op)

	var req CreateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	user, err := h.service.Create(r.Context(), req.Email, req.Password, req.Role,
		req.Firstname, req.Lastname, req.Phone, req.EditorID)
	if err != nil {
		log.Error("failed to create user", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("user created", slog.Int64("user_id", user.ID), slog.String("role", string(user.Role)))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(user, "user created"))
}

// Update handles PUT /users/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Update"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	upd := models.UserUpdate{
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
	}
	if req.Role != nil {
		role, err := models.ParseRole(*req.Role)
		if err != nil {
			response.Err(w, r, apperr.New(apperr.InvalidRequest, "unknown role"))
			return
		}
		upd.Role = &role
	}

	user, err := h.service.Update(r.Context(), id, upd)
	if err != nil {
		log.Error("failed to update user", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(user, "user updated"))
}

// UpdatePassword handles PUT /users/{id}/password.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.UpdatePassword"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	var req PasswordRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.UpdatePassword(r.Context(), id, req.Password); err != nil {
		log.Error("failed to update password", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "password updated"))
}

// UpdateStatus handles POST /users/updateStatus. Clients may only
// deactivate themselves; the service enforces the rule.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.UpdateStatus"
	log := h.opLog(r, op)

	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
		return
	}
	var req StatusRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	if err := h.service.UpdateStatus(r.Context(), identity, req.UserID, *req.Activated); err != nil {
		log.Warn("failed to update status", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("user status updated",
		slog.Int64("target_id", req.UserID),
		slog.Bool("activated", *req.Activated))
	render.JSON(w, r, response.OK(nil, "status updated"))
}

// Delete handles DELETE /users/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.Delete"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete user", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "user deleted"))
}

// StatsByMonth handles GET /users/stats/by-month.
func (h *Handler) StatsByMonth(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.users.StatsByMonth"
	log := h.opLog(r, op)

	stats, err := h.service.RegistrationsByMonth(r.Context(), time.Now())
	if err != nil {
		log.Error("failed to compute registration stats", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(stats, "registrations by month"))
}
