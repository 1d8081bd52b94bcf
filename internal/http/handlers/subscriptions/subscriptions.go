// Package subscriptions exposes the subscription endpoints: the
// caller's own subscription state and the administrative lifecycle
// routes.
package subscriptions

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
)

// Service is the application-layer contract of the subscription handlers.
type Service interface {
	Create(ctx context.Context, userID, offerID int64, price *float64, start, end time.Time) (*models.Subscription, error)
	CurrentForUser(ctx context.Context, userID int64) (*models.Subscription, error)
	HistoryForUser(ctx context.Context, userID int64) ([]models.Subscription, error)
	List(ctx context.Context) ([]models.SubscriptionInfo, error)
	UpdateCurrent(ctx context.Context, userID int64, upd models.SubscriptionUpdate) error
	DeleteCurrent(ctx context.Context, userID int64) error
	RevenueByMonth(ctx context.Context, now time.Time) ([]models.MonthAmount, error)
	MostPopularOffer(ctx context.Context) (*models.OfferCount, error)
}

// Handler serves the /abonnements routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the subscriptions Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// CreateRequest is the administrative subscription creation payload.
// An omitted price captures the offer's current price.
type CreateRequest struct {
	UserID  int64     `json:"user_id" validate:"required,gte=1"`
	OfferID int64     `json:"offre_id" validate:"required,gte=1"`
	Price   *float64  `json:"prix,omitempty" validate:"omitempty,gte=0"`
	Start   time.Time `json:"debut" validate:"required"`
	End     time.Time `json:"fin" validate:"required"`
}

// UpdateRequest is the partial update applied to a user's current
// subscription.
type UpdateRequest struct {
	OfferID *int64     `json:"offre_id,omitempty"`
	Price   *float64   `json:"prix,omitempty" validate:"omitempty,gte=0"`
	Start   *time.Time `json:"debut,omitempty"`
	End     *time.Time `json:"fin,omitempty"`
}

// Me handles GET /abonnements/me: the caller's current subscription, or
// an empty payload when every row has expired.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Me"
	log := h.opLog(r, op)

	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
		return
	}

	current, err := h.service.CurrentForUser(r.Context(), identity.UserID)
	if err != nil {
		log.Error("failed to resolve current subscription", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	if current == nil {
		render.JSON(w, r, response.OK(nil, "no current subscription"))
		return
	}
	render.JSON(w, r, response.OK(current, "current subscription"))
}

// History handles GET /abonnements/me/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.History"
	log := h.opLog(r, op)

	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
		return
	}

	rows, err := h.service.HistoryForUser(r.Context(), identity.UserID)
	if err != nil {
		log.Error("failed to list subscription history", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "subscription history"))
}

// List handles GET /abonnements.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.List"
	log := h.opLog(r, op)

	rows, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list subscriptions", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(rows, "subscriptions"))
}

// Create handles POST /abonnements.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Create"
	log := h.opLog(r, op)

	var req CreateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	sub, err := h.service.Create(r.Context(), req.UserID, req.OfferID, req.Price, req.Start, req.End)
	if err != nil {
		log.Error("failed to create subscription", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("subscription created",
		slog.Int64("user_id", req.UserID),
		slog.Int64("offer_id", req.OfferID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(sub, "subscription created"))
}

// Update handles PUT /abonnements/user/{userID}: modifies the user's
// current subscription row.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Update"
	log := h.opLog(r, op)

	userID, ok := bind.ID(w, r, "userID")
	if !ok {
		return
	}
	var req UpdateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	upd := models.SubscriptionUpdate{
		OfferID: req.OfferID,
		Price:   req.Price,
		Start:   req.Start,
		End:     req.End,
	}
	if err := h.service.UpdateCurrent(r.Context(), userID, upd); err != nil {
		log.Warn("failed to update subscription", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "subscription updated"))
}

// Delete handles DELETE /abonnements/user/{userID}: removes the user's
// current subscription row.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.Delete"
	log := h.opLog(r, op)

	userID, ok := bind.ID(w, r, "userID")
	if !ok {
		return
	}
	if err := h.service.DeleteCurrent(r.Context(), userID); err != nil {
		log.Warn("failed to delete subscription", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "subscription deleted"))
}

// StatsByMonth handles GET /abonnements/stats/by-month.
func (h *Handler) StatsByMonth(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.StatsByMonth"
	log := h.opLog(r, op)

	stats, err := h.service.RevenueByMonth(r.Context(), time.Now())
	if err != nil {
		log.Error("failed to compute revenue stats", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(stats, "revenue by month"))
}

// PopularOffer handles GET /abonnements/stats/most-popular-offre.
func (h *Handler) PopularOffer(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscriptions.PopularOffer"
	log := h.opLog(r, op)

	top, err := h.service.MostPopularOffer(r.Context())
	if err != nil {
		log.Error("failed to resolve popular offer", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(top, "most popular offer"))
}
