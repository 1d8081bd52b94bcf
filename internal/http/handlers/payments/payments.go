// Package payments exposes the PayTech checkout and IPN endpoints.
package payments

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/saabal/saabal-api/internal/http/handlers/bind"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/sl"
	paymentservice "github.com/saabal/saabal-api/internal/services/payment"
)

// maxIPNBody caps the IPN payload size.
const maxIPNBody = 1 << 20

// Service is the application-layer contract of the payment handlers.
type Service interface {
	InitCheckout(ctx context.Context, userID, offerID int64) (*paymentservice.Checkout, error)
	ProcessIPN(ctx context.Context, body []byte) error
}

// Handler serves the /payments routes.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New creates the payments Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service, validate: validator.New()}
}

func (h *Handler) opLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// InitRequest starts a checkout for one offer.
type InitRequest struct {
	OfferID int64 `json:"offre_id" validate:"required,gte=1"`
}

// Init handles POST /payments/paytech/init.
func (h *Handler) Init(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.Init"
	log := h.opLog(r, op)

	identity, ok := middlewarectx.Identity(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing authorization header"))
		return
	}
	var req InitRequest
	if !bind.JSON(w, r, log, h.validate, &req) {
		return
	}

	checkout, err := h.service.InitCheckout(r.Context(), identity.UserID, req.OfferID)
	if err != nil {
		log.Error("failed to initiate checkout", sl.Err(err))
		response.Err(w, r, err)
		return
	}

	log.Info("checkout initiated",
		slog.Int64("user_id", identity.UserID),
		slog.Int64("offer_id", req.OfferID))
	render.JSON(w, r, response.OK(checkout, "checkout initiated"))
}

// IPN handles POST /payments/paytech/ipn. The endpoint is public; the
// payload authenticates itself through the embedded credential hashes.
func (h *Handler) IPN(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payments.IPN"
	log := h.opLog(r, op)

	body, err := io.ReadAll(io.LimitReader(r.Body, maxIPNBody))
	if err != nil {
		log.Error("failed to read IPN body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("unreadable request body"))
		return
	}

	if err := h.service.ProcessIPN(r.Context(), body); err != nil {
		log.Warn("IPN rejected", sl.Err(err))
		response.Err(w, r, err)
		return
	}
	render.JSON(w, r, response.OK(nil, "ipn processed"))
}
