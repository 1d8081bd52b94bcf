package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/saabal/saabal-api/internal/models"
)

// CreateSubscription inserts a subscription row and returns its id.
// History is additive: prior rows for the same user are left untouched.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) (int64, error) {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (user_id, offer_id, price, start_date, end_date)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		sub.UserID, sub.OfferID, sub.Price, sub.Start, sub.End).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ListSubscriptionsByUser returns every subscription row of a user,
// past and present; "current" resolution happens in the service.
func (s *Storage) ListSubscriptionsByUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_id, offer_id, price, start_date, end_date, created_at
			  FROM subscriptions
			  WHERE user_id = $1
			  ORDER BY end_date DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.UserID, &item.OfferID, &item.Price,
			&item.Start, &item.End, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListSubscriptions returns all subscriptions joined with the owning
// user and offer name, newest start first.
func (s *Storage) ListSubscriptions(ctx context.Context) ([]models.SubscriptionInfo, error) {
	const op = "storage.ListSubscriptions"

	query := `SELECT s.id, s.user_id, s.offer_id, s.price, s.start_date, s.end_date, s.created_at,
			         u.email, o.name
			  FROM subscriptions s
			  JOIN users u ON u.id = s.user_id
			  LEFT JOIN offers o ON o.id = s.offer_id
			  ORDER BY s.start_date DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.SubscriptionInfo
	for rows.Next() {
		var item models.SubscriptionInfo
		if err := rows.Scan(&item.ID, &item.UserID, &item.OfferID, &item.Price,
			&item.Start, &item.End, &item.CreatedAt, &item.UserEmail, &item.OfferName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateSubscriptionByID applies the non-nil fields of upd to the row.
func (s *Storage) UpdateSubscriptionByID(ctx context.Context, id int64, upd models.SubscriptionUpdate) error {
	const op = "storage.UpdateSubscriptionByID"

	query := `UPDATE subscriptions
			  SET offer_id = COALESCE($2, offer_id),
			      price = COALESCE($3, price),
			      start_date = COALESCE($4, start_date),
			      end_date = COALESCE($5, end_date)
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id, upd.OfferID, upd.Price, upd.Start, upd.End)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// DeleteSubscriptionByID removes one subscription row.
func (s *Storage) DeleteSubscriptionByID(ctx context.Context, id int64) error {
	const op = "storage.DeleteSubscriptionByID"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// ListSubscriptionStarts returns (start, price) pairs of subscriptions
// started at or after since, for the monthly revenue statistics.
func (s *Storage) ListSubscriptionStarts(ctx context.Context, since time.Time) ([]models.Subscription, error) {
	const op = "storage.ListSubscriptionStarts"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, user_id, offer_id, price, start_date, end_date, created_at
		 FROM subscriptions WHERE start_date >= $1`, since)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.UserID, &item.OfferID, &item.Price,
			&item.Start, &item.End, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// MostPopularOffer returns the offer referenced by the most
// subscription rows, or ErrNotFound when there are no subscriptions.
func (s *Storage) MostPopularOffer(ctx context.Context) (*models.OfferCount, error) {
	const op = "storage.MostPopularOffer"

	query := `SELECT s.offer_id, COALESCE(o.name, 'aucune'), COUNT(*) AS cnt
			  FROM subscriptions s
			  LEFT JOIN offers o ON o.id = s.offer_id
			  GROUP BY s.offer_id, o.name
			  ORDER BY cnt DESC
			  LIMIT 1`
	var item models.OfferCount
	err := s.DB.QueryRowContext(ctx, query).Scan(&item.OfferID, &item.Name, &item.Count)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &item, nil
}
