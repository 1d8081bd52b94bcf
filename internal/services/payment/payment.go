// Package payment drives the PayTech checkout flow and turns confirmed
// payment notifications into subscription rows.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/config"
	"github.com/saabal/saabal-api/internal/metrics"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/paymentprovider"
	"github.com/saabal/saabal-api/internal/storage"
)

const grantDuration = 30 * 24 * time.Hour

// Provider initializes checkout sessions with the payment gateway.
type Provider interface {
	InitPayment(ctx context.Context, reqParams paymentprovider.InitPaymentRequest) (*paymentprovider.InitPaymentResponse, error)
}

// Repository is the persistence contract of the payment service.
type Repository interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetOfferByID(ctx context.Context, id int64) (*models.Offer, error)
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
}

// Service handles checkout initialization and IPN processing.
type Service struct {
	log      *slog.Logger
	cfg      config.PayTech
	provider Provider
	repo     Repository
}

// New creates a payment Service.
func New(log *slog.Logger, cfg config.PayTech, provider Provider, repo Repository) *Service {
	return &Service{log: log, cfg: cfg, provider: provider, repo: repo}
}

// Checkout is the payload returned to the client after a checkout
// session has been created.
type Checkout struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	RefCommand  string `json:"ref_command"`
}

// InitCheckout creates a PayTech checkout session for the user and
// offer. The user and offer ids travel through the provider in the
// custom_field metadata and come back on the IPN.
func (s *Service) InitCheckout(ctx context.Context, userID, offerID int64) (*Checkout, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	offer, err := s.repo.GetOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidRequest, "offer not found")
		}
		return nil, err
	}

	custom, err := json.Marshal(paymentprovider.CustomField{UserID: user.ID, OfferID: offer.ID})
	if err != nil {
		return nil, err
	}

	refCommand := uuid.NewString()
	resp, err := s.provider.InitPayment(ctx, paymentprovider.InitPaymentRequest{
		ItemName:    offer.Name,
		ItemPrice:   strconv.FormatFloat(offer.Price, 'f', -1, 64),
		Currency:    "XOF",
		RefCommand:  refCommand,
		CommandName: "Abonnement " + offer.Name,
		Env:         s.cfg.Env,
		IPNURL:      s.cfg.IPNURL,
		SuccessURL:  s.cfg.SuccessURL,
		CancelURL:   s.cfg.CancelURL,
		CustomField: string(custom),
	})
	if err != nil {
		return nil, err
	}

	metrics.CheckoutsInitiated.Inc()
	s.log.Info("checkout initiated",
		slog.Int64("user_id", user.ID),
		slog.Int64("offer_id", offer.ID),
		slog.String("ref_command", refCommand))

	return &Checkout{Token: resp.Token, RedirectURL: resp.RedirectURL, RefCommand: refCommand}, nil
}

// ProcessIPN authenticates and applies one IPN delivery. A confirmed
// sale grants a 30-day subscription at the offer's current price; every
// other event type is acknowledged without effect. Deliveries are not
// deduplicated: a replayed sale_complete inserts another history row.
func (s *Service) ProcessIPN(ctx context.Context, body []byte) error {
	event, err := paymentprovider.ParseIPN(body, s.cfg.APIKey, s.cfg.APISecret)
	if err != nil {
		if apperr.KindOf(err) == apperr.Forbidden {
			metrics.IPNEvents.WithLabelValues("rejected").Inc()
		} else {
			metrics.IPNEvents.WithLabelValues("malformed").Inc()
		}
		return err
	}

	if event.Type != paymentprovider.EventSaleComplete {
		metrics.IPNEvents.WithLabelValues("ignored").Inc()
		s.log.Info("ignoring IPN event",
			slog.String("type", event.Type),
			slog.String("ref_command", event.RefCommand))
		return nil
	}

	offer, err := s.repo.GetOfferByID(ctx, event.OfferID)
	if err != nil {
		metrics.IPNEvents.WithLabelValues("failed").Inc()
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.InvalidRequest, "offer not found")
		}
		return err
	}
	if _, err := s.repo.GetUserByID(ctx, event.UserID); err != nil {
		metrics.IPNEvents.WithLabelValues("failed").Inc()
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.InvalidRequest, "user not found")
		}
		return err
	}

	now := time.Now()
	sub := models.Subscription{
		UserID:  event.UserID,
		OfferID: &offer.ID,
		Price:   offer.Price,
		Start:   now,
		End:     now.Add(grantDuration),
	}
	if _, err := s.repo.CreateSubscription(ctx, sub); err != nil {
		metrics.IPNEvents.WithLabelValues("failed").Inc()
		return err
	}

	metrics.IPNEvents.WithLabelValues("granted").Inc()
	metrics.SubscriptionsGranted.Inc()
	s.log.Info("subscription granted from payment",
		slog.Int64("user_id", event.UserID),
		slog.Int64("offer_id", offer.ID),
		slog.String("ref_command", event.RefCommand))
	return nil
}
