package storage

import (
	"context"
	"fmt"

	"github.com/saabal/saabal-api/internal/models"
)

// CreateOffer inserts an offer and returns it with id and timestamp set.
func (s *Storage) CreateOffer(ctx context.Context, offer models.Offer) (*models.Offer, error) {
	const op = "storage.CreateOffer"

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO offers (name, price, description) VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		offer.Name, offer.Price, offer.Description).Scan(&offer.ID, &offer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &offer, nil
}

// GetOfferByID returns the offer or ErrNotFound.
func (s *Storage) GetOfferByID(ctx context.Context, id int64) (*models.Offer, error) {
	const op = "storage.GetOfferByID"

	var offer models.Offer
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, price, description, created_at FROM offers WHERE id = $1`, id).
		Scan(&offer.ID, &offer.Name, &offer.Price, &offer.Description, &offer.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &offer, nil
}

// ListOffers returns all offers, newest first.
func (s *Storage) ListOffers(ctx context.Context) ([]*models.Offer, error) {
	const op = "storage.ListOffers"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, price, description, created_at FROM offers ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Offer
	for rows.Next() {
		var offer models.Offer
		if err := rows.Scan(&offer.ID, &offer.Name, &offer.Price, &offer.Description, &offer.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateOffer applies the non-nil fields to the offer row.
func (s *Storage) UpdateOffer(ctx context.Context, id int64, name *string, price *float64, description *string) error {
	const op = "storage.UpdateOffer"

	query := `UPDATE offers
			  SET name = COALESCE($2, name),
			      price = COALESCE($3, price),
			      description = COALESCE($4, description)
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id, name, price, description)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// DeleteOffer removes the offer row.
func (s *Storage) DeleteOffer(ctx context.Context, id int64) error {
	const op = "storage.DeleteOffer"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}
