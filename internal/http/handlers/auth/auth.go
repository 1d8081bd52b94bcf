// Package auth exposes registration, login, token refresh and
// self-deactivation endpoints.
package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
	authservice "github.com/saabal/saabal-api/internal/services/auth"
)

// Service is the application-layer contract of the auth handlers.
type Service interface {
	Register(ctx context.Context, email, rawPassword string, firstname, lastname, phone *string) (*models.User, error)
	Login(ctx context.Context, email, rawPassword string) (*authservice.LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Deactivate(ctx context.Context, userID int64) error
}

// Handler serves the /auth routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the auth Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=8"`
	Firstname *string `json:"firstname,omitempty"`
	Lastname  *string `json:"lastname,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token to exchange.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// Register handles POST /auth/register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Register"
	log := h.opLog(r, op)

	var req RegisterRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req.Email, req.Password, req.Firstname, req.Lastname, req.Phone)
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("user registered", slog.Int64("user_id", user.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(user, "account created"))
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Login"
	log := h.opLog(r, op)

	var req LoginRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("user logged in", slog.Int64("user_id", result.User.ID))
	render.JSON(w, r, response.OK(result, "logged in"))
}

// Refresh handles POST /auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Refresh"
	log := h.opLog(r, op)

	var req RefreshRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		log.Warn("token refresh failed", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	render.JSON(w, r, response.OK(map[string]string{"access_token": accessToken}, "token refreshed"))
}

// Deactivate handles POST /auth/me/deactivate.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.Deactivate"
	log := h.opLog(r, op)

	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
		return
	}

	if err := h.service.Deactivate(r.Context(), identity.UserID); err != nil {
		log.Error("self-deactivation failed", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("account deactivated", slog.Int64("user_id", identity.UserID))
	render.JSON(w, r, response.OK(nil, "account deactivated"))
}
