// Package lectures exposes the reading-progress endpoints.
package lectures

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
)

// Service is the application-layer contract of the lecture handlers.
type Service interface {
	Save(ctx context.Context, userID, newsletterID int64, page int) (*models.Lecture, error)
	Get(ctx context.Context, userID, newsletterID int64) (*models.Lecture, error)
	InProgress(ctx context.Context, userID int64) ([]models.LectureInfo, error)
}

// Handler serves the /lectures routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the lectures Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

func identityOr401(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
	}
	return identity, ok
}

// SaveRequest records the last viewed page of a newsletter.
type SaveRequest struct {
	NewsletterID int64 `json:"journal_id" validate:"required,gte=1"`
	Page         int   `json:"page" validate:"required,gte=1"`
}

// Save handles POST /lectures.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lectures.Save"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	var req SaveRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	lecture, err := h.service.Save(r.Context(), identity.UserID, req.NewsletterID, req.Page)
	if err != nil {
		log.Warn("failed to save reading progress", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(lecture, "reading progress saved"))
}

// Get handles GET /lectures/{journalID}: the caller's progress in one
// newsletter, defaulting to page one.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lectures.Get"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	newsletterID, ok := bind.ID(w, r, "journalID")
	if !ok {
		return
	}

	lecture, err := h.service.Get(r.Context(), identity.UserID, newsletterID)
	if err != nil {
		log.Error("failed to get reading progress", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(lecture, "reading progress"))
}

// InProgress handles GET /lectures/me: newsletters the caller has read
// past the first page.
func (h *Handler) InProgress(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.lectures.InProgress"
	log := h.opLog(r, op)

	identity, ok := identityOr401(w, r)
	if !ok {
		return
	}
	rows, err := h.service.InProgress(r.Context(), identity.UserID)
	if err != nil {
		log.Error("failed to list reading progress", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "reading progress"))
}
