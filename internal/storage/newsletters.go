package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/saabal/saabal-api/internal/models"
)

const newsletterSelect = `SELECT n.id, n.title, n.highlight, n.content, n.filename, n.mime, n.size, n.url,
		n.editor_id, n.category_id, n.published_at, n.created_at, e.name, c.name
	FROM newsletters n
	JOIN editors e ON e.id = n.editor_id
	JOIN categories c ON c.id = n.category_id`

func scanNewsletter(row interface{ Scan(...any) error }) (*models.Newsletter, error) {
	var n models.Newsletter
	if err := row.Scan(&n.ID, &n.Title, &n.Highlight, &n.Content, &n.Filename, &n.Mime,
		&n.Size, &n.URL, &n.EditorID, &n.CategoryID, &n.PublishedAt, &n.CreatedAt,
		&n.EditorName, &n.CategoryName); err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Storage) queryNewsletters(ctx context.Context, op, query string, args ...any) ([]*models.Newsletter, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Newsletter
	for rows.Next() {
		n, err := scanNewsletter(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CreateNewsletter inserts a newsletter row and returns its id.
func (s *Storage) CreateNewsletter(ctx context.Context, n models.Newsletter) (int64, error) {
	const op = "storage.CreateNewsletter"

	query := `INSERT INTO newsletters (title, highlight, content, filename, mime, size, url,
			      editor_id, category_id, published_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		n.Title, n.Highlight, n.Content, n.Filename, n.Mime, n.Size, n.URL,
		n.EditorID, n.CategoryID, n.PublishedAt).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetNewsletterByID returns the newsletter or ErrNotFound.
func (s *Storage) GetNewsletterByID(ctx context.Context, id int64) (*models.Newsletter, error) {
	const op = "storage.GetNewsletterByID"

	n, err := scanNewsletter(s.DB.QueryRowContext(ctx, newsletterSelect+` WHERE n.id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return n, nil
}

// UpdateNewsletter applies the non-nil fields of upd to the row.
func (s *Storage) UpdateNewsletter(ctx context.Context, id int64, upd models.NewsletterUpdate) error {
	const op = "storage.UpdateNewsletter"

	query := `UPDATE newsletters
			  SET title = COALESCE($2, title),
			      highlight = COALESCE($3, highlight),
			      content = COALESCE($4, content),
			      filename = COALESCE($5, filename),
			      mime = COALESCE($6, mime),
			      size = COALESCE($7, size),
			      url = COALESCE($8, url),
			      editor_id = COALESCE($9, editor_id),
			      category_id = COALESCE($10, category_id),
			      published_at = COALESCE($11, published_at)
			  WHERE id = $1`
	result, err := s.DB.ExecContext(ctx, query, id,
		upd.Title, upd.Highlight, upd.Content, upd.Filename, upd.Mime, upd.Size,
		upd.URL, upd.EditorID, upd.CategoryID, upd.PublishedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// DeleteNewsletter removes the newsletter row.
func (s *Storage) DeleteNewsletter(ctx context.Context, id int64) error {
	const op = "storage.DeleteNewsletter"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM newsletters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// ListNewsletters returns newsletters newest first; a non-nil editorID
// narrows the listing to that publisher.
func (s *Storage) ListNewsletters(ctx context.Context, editorID *int64) ([]*models.Newsletter, error) {
	const op = "storage.ListNewsletters"

	if editorID != nil {
		return s.queryNewsletters(ctx, op,
			newsletterSelect+` WHERE n.editor_id = $1 ORDER BY n.created_at DESC`, *editorID)
	}
	return s.queryNewsletters(ctx, op, newsletterSelect+` ORDER BY n.created_at DESC`)
}

// ListNewslettersByWindow returns newsletters created inside [start, end].
func (s *Storage) ListNewslettersByWindow(ctx context.Context, start, end time.Time) ([]*models.Newsletter, error) {
	const op = "storage.ListNewslettersByWindow"

	return s.queryNewsletters(ctx, op,
		newsletterSelect+` WHERE n.created_at >= $1 AND n.created_at <= $2 ORDER BY n.created_at DESC`,
		start, end)
}

// ListNewslettersByCategory returns newsletters of one category, with an
// optional title search.
func (s *Storage) ListNewslettersByCategory(ctx context.Context, categoryID int64, q string) ([]*models.Newsletter, error) {
	const op = "storage.ListNewslettersByCategory"

	if q != "" {
		return s.queryNewsletters(ctx, op,
			newsletterSelect+` WHERE n.category_id = $1 AND n.title ILIKE '%' || $2 || '%' ORDER BY n.created_at DESC`,
			categoryID, q)
	}
	return s.queryNewsletters(ctx, op,
		newsletterSelect+` WHERE n.category_id = $1 ORDER BY n.created_at DESC`, categoryID)
}
