package storage

import (
	"context"
	"fmt"

	"github.com/saabal/saabal-api/internal/models"
)

// UpsertLecture saves the last viewed page for a (user, newsletter)
// pair; the unique composite key keeps exactly one row per pair.
func (s *Storage) UpsertLecture(ctx context.Context, userID, newsletterID int64, page int) (*models.Lecture, error) {
	const op = "storage.UpsertLecture"

	query := `INSERT INTO lectures (user_id, newsletter_id, page)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (user_id, newsletter_id)
			  DO UPDATE SET page = EXCLUDED.page, updated_at = now()
			  RETURNING id, user_id, newsletter_id, page, updated_at`
	var lecture models.Lecture
	err := s.DB.QueryRowContext(ctx, query, userID, newsletterID, page).
		Scan(&lecture.ID, &lecture.UserID, &lecture.NewsletterID, &lecture.Page, &lecture.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &lecture, nil
}

// GetLecture returns the reading progress for a (user, newsletter) pair
// or ErrNotFound.
func (s *Storage) GetLecture(ctx context.Context, userID, newsletterID int64) (*models.Lecture, error) {
	const op = "storage.GetLecture"

	var lecture models.Lecture
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, user_id, newsletter_id, page, updated_at
		 FROM lectures WHERE user_id = $1 AND newsletter_id = $2`, userID, newsletterID).
		Scan(&lecture.ID, &lecture.UserID, &lecture.NewsletterID, &lecture.Page, &lecture.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &lecture, nil
}

// ListLecturesInProgress returns the user's reading progress rows past
// page one, most recently read first, joined with newsletter summaries.
func (s *Storage) ListLecturesInProgress(ctx context.Context, userID int64) ([]models.LectureInfo, error) {
	const op = "storage.ListLecturesInProgress"

	query := `SELECT l.page, l.newsletter_id, n.title, n.url, n.highlight, n.published_at, e.name, c.name
			  FROM lectures l
			  JOIN newsletters n ON n.id = l.newsletter_id
			  JOIN editors e ON e.id = n.editor_id
			  JOIN categories c ON c.id = n.category_id
			  WHERE l.user_id = $1 AND l.page > 1
			  ORDER BY l.updated_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []models.LectureInfo
	for rows.Next() {
		var item models.LectureInfo
		if err := rows.Scan(&item.Page, &item.NewsletterID, &item.Title, &item.URL,
			&item.Highlight, &item.PublishedAt, &item.EditorName, &item.CategoryName); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
