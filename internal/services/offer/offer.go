// Package offer manages the purchasable subscription plans.
package offer

import (
	"context"
	"errors"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// Repository is the persistence contract of the offer service.
type Repository interface {
	CreateOffer(ctx context.Context, offer models.Offer) (*models.Offer, error)
	GetOfferByID(ctx context.Context, id int64) (*models.Offer, error)
	ListOffers(ctx context.Context) ([]*models.Offer, error)
	UpdateOffer(ctx context.Context, id int64, name *string, price *float64, description *string) error
	DeleteOffer(ctx context.Context, id int64) error
}

// Service manages offers.
type Service struct {
	repo Repository
}

// New creates an offer Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds an offer; the price must be non-negative.
func (s *Service) Create(ctx context.Context, name string, price float64, description *string) (*models.Offer, error) {
	if price < 0 {
		return nil, apperr.New(apperr.InvalidRequest, "price must be non-negative")
	}
	return s.repo.CreateOffer(ctx, models.Offer{Name: name, Price: price, Description: description})
}

// Get returns one offer.
func (s *Service) Get(ctx context.Context, id int64) (*models.Offer, error) {
	offer, err := s.repo.GetOfferByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "offer not found")
		}
		return nil, err
	}
	return offer, nil
}

// List returns all offers.
func (s *Service) List(ctx context.Context) ([]*models.Offer, error) {
	return s.repo.ListOffers(ctx)
}

// Update applies a partial update; a provided price must be
// non-negative.
func (s *Service) Update(ctx context.Context, id int64, name *string, price *float64, description *string) (*models.Offer, error) {
	if price != nil && *price < 0 {
		return nil, apperr.New(apperr.InvalidRequest, "price must be non-negative")
	}
	if err := s.repo.UpdateOffer(ctx, id, name, price, description); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "offer not found")
		}
		return nil, err
	}
	return s.repo.GetOfferByID(ctx, id)
}

// Delete removes the offer. Subscription rows keep their captured price
// and a dangling offer reference is tolerated.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteOffer(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "offer not found")
		}
		return err
	}
	return nil
}
