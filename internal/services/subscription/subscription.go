// Package subscription implements the subscription lifecycle: additive
// history rows per user, with the "current" subscription resolved at
// read time.
package subscription

import (
	"context"
	"errors"
	"time"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/lib/month"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// Repository is the persistence contract of the subscription service.
type Repository interface {
	CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error)
	ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]models.SubscriptionInfo, error)
	UpdateSubscriptionByID(ctx context.Context, id int64, upd models.SubscriptionUpdate) error
	DeleteSubscriptionByID(ctx context.Context, id int64) error
	ListSubscriptionStarts(ctx context.Context, since time.Time) ([]models.Subscription, error)
	MostPopularOffer(ctx context.Context) (*models.OfferCount, error)
}

// OfferRepository resolves offers referenced by new subscriptions.
type OfferRepository interface {
	GetOfferByID(ctx context.Context, id int64) (*models.Offer, error)
}

// Service manages subscription history rows.
type Service struct {
	repo   Repository
	offers OfferRepository
}

// New creates a subscription Service.
func New(repo Repository, offers OfferRepository) *Service {
	return &Service{repo: repo, offers: offers}
}

// Current resolves the current subscription among history rows: the one
// with the latest end date among rows still valid at now. Returns nil
// when every row has expired or there are none.
func Current(rows []models.Subscription, now time.Time) *models.Subscription {
	var current *models.Subscription
	for i := range rows {
		if rows[i].End.Before(now) {
			continue
		}
		if current == nil || rows[i].End.After(current.End) {
			current = &rows[i]
		}
	}
	return current
}

// Create inserts a new subscription row for the user. The offer must
// exist. A nil price captures the offer's current price on the row;
// a caller-supplied price (negotiated or legacy) is recorded as given.
// Either way the row never tracks later offer changes. Existing rows
// are left untouched.
func (s *Service) Create(ctx context.Context, userID, offerID int64, price *float64, start, end time.Time) (*models.Subscription, error) {
	if !end.After(start) {
		return nil, apperr.New(apperr.InvalidRequest, "end date must be after start date")
	}
	offer, err := s.offers.GetOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidRequest, "offer not found")
		}
		return nil, err
	}

	captured := offer.Price
	if price != nil {
		captured = *price
	}
	sub := models.Subscription{
		UserID:  userID,
		OfferID: &offer.ID,
		Price:   captured,
		Start:   start,
		End:     end,
	}
	id, err := s.repo.CreateSubscription(ctx, sub)
	if err != nil {
		return nil, err
	}
	sub.ID = id
	return &sub, nil
}

// CurrentForUser returns the user's current subscription, or nil when
// the user has no valid subscription.
func (s *Service) CurrentForUser(ctx context.Context, userID int64) (*models.Subscription, error) {
	rows, err := s.repo.ListSubscriptionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Current(rows, time.Now()), nil
}

// HistoryForUser returns every subscription row of the user, newest
// end date first.
func (s *Service) HistoryForUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	return s.repo.ListSubscriptionsByUser(ctx, userID)
}

// List returns every subscription joined with its user, for the admin
// dashboard.
func (s *Service) List(ctx context.Context) ([]models.SubscriptionInfo, error) {
	return s.repo.ListSubscriptions(ctx)
}

// UpdateCurrent applies upd to the user's current subscription row.
// A user without a current subscription yields NotFound. The patched
// window must stay valid: end after start, with omitted bounds taken
// from the existing row.
func (s *Service) UpdateCurrent(ctx context.Context, userID int64, upd models.SubscriptionUpdate) error {
	current, err := s.CurrentForUser(ctx, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return apperr.New(apperr.NotFound, "no current subscription for this user")
	}
	start, end := current.Start, current.End
	if upd.Start != nil {
		start = *upd.Start
	}
	if upd.End != nil {
		end = *upd.End
	}
	if !end.After(start) {
		return apperr.New(apperr.InvalidRequest, "end date must be after start date")
	}
	if upd.OfferID != nil {
		if _, err := s.offers.GetOfferByID(ctx, *upd.OfferID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return apperr.New(apperr.InvalidRequest, "offer not found")
			}
			return err
		}
	}
	if err := s.repo.UpdateSubscriptionByID(ctx, current.ID, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "subscription not found")
		}
		return err
	}
	return nil
}

// DeleteCurrent removes the user's current subscription row. History
// rows stay.
func (s *Service) DeleteCurrent(ctx context.Context, userID int64) error {
	current, err := s.CurrentForUser(ctx, userID)
	if err != nil {
		return err
	}
	if current == nil {
		return apperr.New(apperr.NotFound, "no current subscription for this user")
	}
	if err := s.repo.DeleteSubscriptionByID(ctx, current.ID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "subscription not found")
		}
		return err
	}
	return nil
}

// RevenueByMonth sums captured subscription prices per start month over
// the trailing 12 calendar months, oldest first.
func (s *Service) RevenueByMonth(ctx context.Context, now time.Time) ([]models.MonthAmount, error) {
	windows := month.Windows(now, 12)
	rows, err := s.repo.ListSubscriptionStarts(ctx, windows[0].Start)
	if err != nil {
		return nil, err
	}

	result := make([]models.MonthAmount, len(windows))
	for i, w := range windows {
		result[i] = models.MonthAmount{Month: w.Label}
		for _, row := range rows {
			if w.Contains(row.Start) {
				result[i].Amount += row.Price
			}
		}
	}
	return result, nil
}

// MostPopularOffer returns the offer with the most subscription rows.
// With no subscriptions at all it reports the "aucune" bucket with a
// zero count rather than an error.
func (s *Service) MostPopularOffer(ctx context.Context) (*models.OfferCount, error) {
	top, err := s.repo.MostPopularOffer(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.OfferCount{Name: "aucune"}, nil
		}
		return nil, err
	}
	return top, nil
}
