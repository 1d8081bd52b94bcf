package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/saabal/saabal-api/internal/models"
)

// CreateEditorWithAdmin creates the editor, its optional logo document
// and the associated ADMIN user in one transaction. The admin's
// EditorID is filled in from the freshly created editor row.
func (s *Storage) CreateEditorWithAdmin(ctx context.Context, name string, logo *models.Document, admin models.User) (*models.Editor, int64, error) {
	const op = "storage.CreateEditorWithAdmin"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var editor models.Editor
	editor.Name = name
	err = tx.QueryRowContext(ctx,
		`INSERT INTO editors (name) VALUES ($1) RETURNING id, created_at`,
		name).Scan(&editor.ID, &editor.CreatedAt)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, translateError(err))
	}

	if logo != nil {
		logo.EditorID = &editor.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO documents (kind, filename, mime, size, url, editor_id)
			 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`,
			logo.Kind, logo.Filename, logo.Mime, logo.Size, logo.URL, editor.ID).
			Scan(&logo.ID, &logo.CreatedAt)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		editor.Documents = append(editor.Documents, *logo)
	}

	var adminID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash, firstname, lastname, role, activated, editor_id)
		 VALUES ($1, $2, $3, $4, $5, TRUE, $6) RETURNING id`,
		admin.Email, admin.PasswordHash, admin.Firstname, admin.Lastname,
		string(models.RoleAdmin), editor.ID).Scan(&adminID)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, translateError(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return &editor, adminID, nil
}

// GetEditorByID returns the editor or ErrNotFound.
func (s *Storage) GetEditorByID(ctx context.Context, id int64) (*models.Editor, error) {
	const op = "storage.GetEditorByID"

	var editor models.Editor
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM editors WHERE id = $1`, id).
		Scan(&editor.ID, &editor.Name, &editor.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, translateError(err))
	}
	return &editor, nil
}

// UpdateEditorName renames the editor.
func (s *Storage) UpdateEditorName(ctx context.Context, id int64, name string) error {
	const op = "storage.UpdateEditorName"

	result, err := s.DB.ExecContext(ctx, `UPDATE editors SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return affectedOrNotFound(op, result)
}

// ListEditors returns all editors with their documents, newest first.
func (s *Storage) ListEditors(ctx context.Context) ([]*models.Editor, error) {
	const op = "storage.ListEditors"

	return s.listEditors(ctx, op,
		`SELECT id, name, created_at FROM editors ORDER BY created_at DESC`)
}

// ListEditorsByWindow returns editors created inside [start, end], with
// their documents, shaped like ListEditors.
func (s *Storage) ListEditorsByWindow(ctx context.Context, start, end time.Time) ([]*models.Editor, error) {
	const op = "storage.ListEditorsByWindow"

	return s.listEditors(ctx, op,
		`SELECT id, name, created_at FROM editors
		 WHERE created_at >= $1 AND created_at <= $2
		 ORDER BY created_at DESC`, start, end)
}

func (s *Storage) listEditors(ctx context.Context, op, query string, args ...any) ([]*models.Editor, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var result []*models.Editor
	byID := make(map[int64]*models.Editor)
	for rows.Next() {
		var editor models.Editor
		if err := rows.Scan(&editor.ID, &editor.Name, &editor.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &editor)
		byID[editor.ID] = &editor
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	docRows, err := s.DB.QueryContext(ctx,
		`SELECT id, kind, filename, mime, size, url, editor_id, created_at
		 FROM documents WHERE editor_id IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer docRows.Close()

	for docRows.Next() {
		var doc models.Document
		if err := docRows.Scan(&doc.ID, &doc.Kind, &doc.Filename, &doc.Mime,
			&doc.Size, &doc.URL, &doc.EditorID, &doc.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if editor, ok := byID[*doc.EditorID]; ok {
			editor.Documents = append(editor.Documents, doc)
		}
	}
	if err := docRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DeleteEditorCascade removes the editor, its newsletters, its logo
// documents and its ADMIN users in one transaction. Reading progress on
// the removed newsletters cascades at the schema level. Returns the
// URLs of the removed logo and PDF blobs so the caller can clean up the
// object store afterwards.
func (s *Storage) DeleteEditorCascade(ctx context.Context, id int64) ([]string, error) {
	const op = "storage.DeleteEditorCascade"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	urlRows, err := tx.QueryContext(ctx,
		`SELECT url FROM documents WHERE editor_id = $1
		 UNION ALL
		 SELECT url FROM newsletters WHERE editor_id = $1 AND url IS NOT NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var blobURLs []string
	for urlRows.Next() {
		var url string
		if err := urlRows.Scan(&url); err != nil {
			urlRows.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		blobURLs = append(blobURLs, url)
	}
	if err := urlRows.Err(); err != nil {
		urlRows.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	urlRows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM newsletters WHERE editor_id = $1`, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM users WHERE editor_id = $1 AND role = $2`, id, string(models.RoleAdmin)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE editor_id = $1`, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM editors WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := affectedOrNotFound(op, result); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return blobURLs, nil
}
