// Package categories exposes the newsletter category endpoints.
package categories

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
)

// Service is the application-layer contract of the category handlers.
type Service interface {
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Handler serves the /categories routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the categories Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// CreateRequest is the category creation payload.
type CreateRequest struct {
	Name string `json:"name" validate:"required"`
}

// List handles GET /categories.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.categories.List"
	log := h.opLog(r, op)

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error("failed to list categories", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(categories, "categories"))
}

// Create handles POST /categories.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.categories.Create"
	log := h.opLog(r, op)

	var req CreateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		log.Error("failed to create category", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("category created", slog.Int64("category_id", category.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(category, "category created"))
}

// Delete handles DELETE /categories/{id}. Referenced categories cannot
// be deleted.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.categories.Delete"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		log.Warn("failed to delete category", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "category deleted"))
}
