package storage

import (
	"context"
	"fmt"

	"github.com/saabal/saabal-api/internal/models"
)

// CreateAdvertisement inserts an advertisement and returns it complete.
func (s *Storage) CreateAdvertisement(ctx context.Context, ad models.Advertisement) (*models.Advertisement, error) {
	const op = "storage.CreateAdvertisement"

	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO advertisements (title, description, image_url, active)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		ad.Title, ad.Description, ad.ImageURL, ad.Active).Scan(&ad.ID, &ad.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &ad, nil
}

func (s *Storage) listAdvertisements(ctx context.Context, op, query string) ([]*models.Advertisement, error) {
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Advertisement
	for rows.Next() {
		var ad models.Advertisement
		if err := rows.Scan(&ad.ID, &ad.Title, &ad.Description, &ad.ImageURL, &ad.Active, &ad.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &ad)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListAdvertisements returns all advertisements, newest first.
func (s *Storage) ListAdvertisements(ctx context.Context) ([]*models.Advertisement, error) {
	return s.listAdvertisements(ctx, "storage.ListAdvertisements",
		`SELECT id, title, description, image_url, active, created_at
		 FROM advertisements ORDER BY created_at DESC`)
}

// ListActiveAdvertisements returns only the publicly visible ones.
func (s *Storage) ListActiveAdvertisements(ctx context.Context) ([]*models.Advertisement, error) {
	return s.listAdvertisements(ctx, "storage.ListActiveAdvertisements",
		`SELECT id, title, description, image_url, active, created_at
		 FROM advertisements WHERE active = TRUE ORDER BY created_at DESC`)
}

// DeleteAdvertisement removes the advertisement and returns its image
// URL for object-store cleanup.
func (s *Storage) DeleteAdvertisement(ctx context.Context, id int64) (string, error) {
	const op = "storage.DeleteAdvertisement"

	var imageURL string
	err := s.DB.QueryRowContext(ctx,
		`DELETE FROM advertisements WHERE id = $1 RETURNING image_url`, id).Scan(&imageURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, translateError(err))
	}
	return imageURL, nil
}
