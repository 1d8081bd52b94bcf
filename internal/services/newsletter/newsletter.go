// Package newsletter manages published issues and enforces publisher
// ownership scoping on every write.
package newsletter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/blobstore"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// Repository is the persistence contract of the newsletter service.
type Repository interface {
	CreateNewsletter(ctx context.Context, n models.Newsletter) (int64, error)
	GetNewsletterByID(ctx context.Context, id int64) (*models.Newsletter, error)
	UpdateNewsletter(ctx context.Context, id int64, upd models.NewsletterUpdate) error
	DeleteNewsletter(ctx context.Context, id int64) error
	ListNewsletters(ctx context.Context, editorID *int64) ([]*models.Newsletter, error)
	ListNewslettersByWindow(ctx context.Context, start, end time.Time) ([]*models.Newsletter, error)
	ListNewslettersByCategory(ctx context.Context, categoryID int64, q string) ([]*models.Newsletter, error)
	GetEditorByID(ctx context.Context, id int64) (*models.Editor, error)
	GetCategoryByID(ctx context.Context, id int64) (*models.Category, error)
	CountNewslettersByCategory(ctx context.Context, categoryID int64) (int, error)
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// Service manages newsletters, their categories and the ownership rules
// between administrators and publishers.
type Service struct {
	repo  Repository
	blobs blobstore.Store
}

// New creates a newsletter Service.
func New(repo Repository, blobs blobstore.Store) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// PDFUpload describes an incoming newsletter file already validated at
// the handler boundary.
type PDFUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// scopeWrite checks that the caller may write resources of the given
// publisher. SUPER_ADMIN is unrestricted; an ADMIN must be bound to a
// publisher and may only touch that publisher's resources.
func scopeWrite(caller models.Identity, editorID int64) error {
	if caller.Role == models.RoleSuperAdmin {
		return nil
	}
	if caller.EditorID == nil {
		return apperr.New(apperr.Forbidden, "no publisher associated with this administrator")
	}
	if *caller.EditorID != editorID {
		return apperr.New(apperr.Forbidden, "may only modify own publisher's resources")
	}
	return nil
}

// CreateInput is the validated payload of a newsletter creation.
type CreateInput struct {
	Title       string
	Highlight   *string
	Content     *string
	EditorID    int64
	CategoryID  int64
	PublishedAt time.Time
	PDF         *PDFUpload
}

// Create publishes a newsletter on behalf of caller. The target editor
// and category must exist, and an ADMIN caller must own the editor.
func (s *Service) Create(ctx context.Context, caller models.Identity, in CreateInput) (*models.Newsletter, error) {
	const op = "newsletter.Create"

	if err := scopeWrite(caller, in.EditorID); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetEditorByID(ctx, in.EditorID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidRequest, "editor not found")
		}
		return nil, err
	}
	if _, err := s.repo.GetCategoryByID(ctx, in.CategoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidRequest, "category not found")
		}
		return nil, err
	}

	n := models.Newsletter{
		Title:       in.Title,
		Highlight:   in.Highlight,
		Content:     in.Content,
		EditorID:    in.EditorID,
		CategoryID:  in.CategoryID,
		PublishedAt: in.PublishedAt,
	}
	if in.PDF != nil {
		key := fmt.Sprintf("journaux/%s-%s", uuid.NewString(), in.PDF.Filename)
		url, err := s.blobs.Upload(ctx, key, in.PDF.Reader, in.PDF.Size, in.PDF.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		n.Filename = &in.PDF.Filename
		n.Mime = &in.PDF.ContentType
		n.Size = &in.PDF.Size
		n.URL = &url
	}

	id, err := s.repo.CreateNewsletter(ctx, n)
	if err != nil {
		return nil, err
	}
	return s.repo.GetNewsletterByID(ctx, id)
}

// UpdateInput is the validated payload of a newsletter update; nil
// fields are left untouched.
type UpdateInput struct {
	Title       *string
	Highlight   *string
	Content     *string
	CategoryID  *int64
	PublishedAt *time.Time
	PDF         *PDFUpload
}

// Update modifies a newsletter owned by the caller's publisher.
func (s *Service) Update(ctx context.Context, caller models.Identity, id int64, in UpdateInput) (*models.Newsletter, error) {
	const op = "newsletter.Update"

	existing, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := scopeWrite(caller, existing.EditorID); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *in.CategoryID); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, apperr.New(apperr.InvalidRequest, "category not found")
			}
			return nil, err
		}
	}

	upd := models.NewsletterUpdate{
		Title:       in.Title,
		Highlight:   in.Highlight,
		Content:     in.Content,
		CategoryID:  in.CategoryID,
		PublishedAt: in.PublishedAt,
	}
	if in.PDF != nil {
		key := fmt.Sprintf("journaux/%s-%s", uuid.NewString(), in.PDF.Filename)
		url, err := s.blobs.Upload(ctx, key, in.PDF.Reader, in.PDF.Size, in.PDF.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.Filename = &in.PDF.Filename
		upd.Mime = &in.PDF.ContentType
		upd.Size = &in.PDF.Size
		upd.URL = &url
	}

	if err := s.repo.UpdateNewsletter(ctx, id, upd); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "newsletter not found")
		}
		return nil, err
	}
	if in.PDF != nil && existing.URL != nil {
		// old blob is orphaned otherwise; failure is non-fatal
		_ = s.blobs.DeleteByURL(ctx, *existing.URL)
	}
	return s.repo.GetNewsletterByID(ctx, id)
}

// Delete removes a newsletter owned by the caller's publisher and its
// stored file.
func (s *Service) Delete(ctx context.Context, caller models.Identity, id int64) error {
	existing, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := scopeWrite(caller, existing.EditorID); err != nil {
		return err
	}
	if err := s.repo.DeleteNewsletter(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "newsletter not found")
		}
		return err
	}
	if existing.URL != nil {
		_ = s.blobs.DeleteByURL(ctx, *existing.URL)
	}
	return nil
}

func (s *Service) get(ctx context.Context, id int64) (*models.Newsletter, error) {
	n, err := s.repo.GetNewsletterByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "newsletter not found")
		}
		return nil, err
	}
	return n, nil
}

// Get returns one newsletter.
func (s *Service) Get(ctx context.Context, id int64) (*models.Newsletter, error) {
	return s.get(ctx, id)
}

// ListFor returns newsletters visible to caller: everything for a
// SUPER_ADMIN or an anonymous reader, the own publisher's issues for an
// ADMIN.
func (s *Service) ListFor(ctx context.Context, caller models.Identity) ([]*models.Newsletter, error) {
	if caller.Role == models.RoleAdmin {
		if caller.EditorID == nil {
			return nil, apperr.New(apperr.Forbidden, "no publisher associated with this administrator")
		}
		return s.repo.ListNewsletters(ctx, caller.EditorID)
	}
	return s.repo.ListNewsletters(ctx, nil)
}

// ListAll returns every newsletter, for public consumption.
func (s *Service) ListAll(ctx context.Context) ([]*models.Newsletter, error) {
	return s.repo.ListNewsletters(ctx, nil)
}

// ListByWindow returns newsletters created inside [start, end].
func (s *Service) ListByWindow(ctx context.Context, start, end time.Time) ([]*models.Newsletter, error) {
	if !end.After(start) {
		return nil, apperr.New(apperr.InvalidRequest, "end date must be after start date")
	}
	return s.repo.ListNewslettersByWindow(ctx, start, end)
}

// ListByCategory returns newsletters of one category with an optional
// title search.
func (s *Service) ListByCategory(ctx context.Context, categoryID int64, q string) ([]*models.Newsletter, error) {
	if _, err := s.repo.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "category not found")
		}
		return nil, err
	}
	return s.repo.ListNewslettersByCategory(ctx, categoryID, q)
}

// CreateCategory adds a category; names are unique.
func (s *Service) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	category, err := s.repo.CreateCategory(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "category name already exists")
		}
		return nil, err
	}
	return category, nil
}

// ListCategories returns every category.
func (s *Service) ListCategories(ctx context.Context) ([]*models.Category, error) {
	return s.repo.ListCategories(ctx)
}

// DeleteCategory removes a category; it is blocked while any newsletter
// still references it.
func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	count, err := s.repo.CountNewslettersByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperr.New(apperr.InvalidRequest, "category is still referenced by newsletters")
	}
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "category not found")
		}
		return err
	}
	return nil
}
