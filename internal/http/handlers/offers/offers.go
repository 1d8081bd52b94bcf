// Package offers exposes the subscription plan endpoints: public reads
// and super-admin writes.
package offers

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

// Service is the application-layer contract of the offer handlers.
type Service interface {
	Create(ctx context.Context, name string, price float64, description *string) (*models.Offer, error)
	Get(ctx context.Context, id int64) (*models.Offer, error)
	List(ctx context.Context) ([]*models.Offer, error)
	Update(ctx context.Context, id int64, name *string, price *float64, description *string) (*models.Offer, error)
	Delete(ctx context.Context, id int64) error
}

// Handler serves the /offres routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the offers Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// CreateRequest is the offer creation payload.
type CreateRequest struct {
	Name        string   `json:"nom" validate:"required"`
	Price       *float64 `json:"prix" validate:"required,gte=0"`
	Description *string  `json:"description,omitempty"`
}

// UpdateRequest is the partial offer update payload.
type UpdateRequest struct {
	Name        *string  `json:"nom,omitempty"`
	Price       *float64 `json:"prix,omitempty" validate:"omitempty,gte=0"`
	Description *string  `json:"description,omitempty"`
}

// List handles GET /offres.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offers.List"
	log := h.opLog(r, op)

	offers, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list offers", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(offers, "offers"))
}

// Get handles GET /offres/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offers.Get"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	offer, err := h.service.Get(r.Context(), id)
	if err != nil {
		log.Warn("failed to get offer", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(offer, "offer"))
}

// Create handles POST /offres.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offers.Create"
	log := h.opLog(r, op)

	var req CreateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	offer, err := h.service.Create(r.Context(), req.Name, *req.Price, req.Description)
	if err != nil {
		log.Error("failed to create offer", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("offer created", slog.Int64("offer_id", offer.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OK(offer, "offer created"))
}

// Update handles PUT /offres/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offers.Update"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	var req UpdateRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	offer, err := h.service.Update(r.Context(), id, req.Name, req.Price, req.Description)
	if err != nil {
		log.Error("failed to update offer", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(offer, "offer updated"))
}

// Delete handles DELETE /offres/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offers.Delete"
	log := h.opLog(r, op)

	id, ok := bind.ID(w, r, "id")
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		log.Error("failed to delete offer", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "offer deleted"))
}
