package storage

import (
	"context"
	"fmt"

	"github.com/saabal/saabal-api/internal/models"
)

// CreateCategory inserts a category; a duplicate name yields ErrDuplicate.
func (s *Storage) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	const op = "storage.CreateCategory"

	var category models.Category
	category.Name = name
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO categories (name) VALUES ($1) RETURNING id, created_at`, name).
		Scan(&category.ID, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &category, nil
}

// GetCategoryByID returns the category or ErrNotFound.
func (s *Storage) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	const op = "storage.GetCategoryByID"

	var category models.Category
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM categories WHERE id = $1`, id).
		Scan(&category.ID, &category.Name, &category.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &category, nil
}

// ListCategories returns all categories ordered by name.
func (s *Storage) ListCategories(ctx context.Context) ([]*models.Category, error) {
	const op = "storage.ListCategories"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountNewslettersByCategory counts newsletters referencing a category.
func (s *Storage) CountNewslettersByCategory(ctx context.Context, categoryID int64) (int, error) {
	const op = "storage.CountNewslettersByCategory"

	var count int
	err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM newsletters WHERE category_id = $1`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// DeleteCategory removes the category row. Referential blocking happens
// in the service via CountNewslettersByCategory.
func (s *Storage) DeleteCategory(ctx context.Context, id int64) error {
	const op = "storage.DeleteCategory"

	result, err := s.DB.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}
