// Package editor manages publishers: creation with a generated ADMIN
// account, listings and cascading deletion.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/blobstore"
	"github.com/saabal/saabal-api/internal/lib/password"
	"github.com/saabal/saabal-api/internal/lib/rabbitmq"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// Repository is the persistence contract of the editor service.
type Repository interface {
	CreateEditorWithAdmin(ctx context.Context, name string, logo *models.Document, admin models.User) (*models.Editor, int64, error)
	GetEditorByID(ctx context.Context, id int64) (*models.Editor, error)
	UpdateEditorName(ctx context.Context, id int64, name string) error
	ListEditors(ctx context.Context) ([]*models.Editor, error)
	ListEditorsByWindow(ctx context.Context, start, end time.Time) ([]*models.Editor, error)
	DeleteEditorCascade(ctx context.Context, id int64) ([]string, error)
}

// MailPublisher hands credential messages to the mail queue.
type MailPublisher interface {
	Publish(queue string, message any) error
}

// Service manages publishers and their generated admin accounts.
type Service struct {
	log   *slog.Logger
	repo  Repository
	blobs blobstore.Store
	mail  MailPublisher
}

// New creates an editor Service. mail may be nil when no broker is
// configured; credential messages are then skipped.
func New(log *slog.Logger, repo Repository, blobs blobstore.Store, mail MailPublisher) *Service {
	return &Service{log: log, repo: repo, blobs: blobs, mail: mail}
}

// LogoUpload describes an incoming logo file already validated at the
// handler boundary.
type LogoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// CreateResult is the outcome of creating a publisher: the editor, its
// admin account id and the generated plaintext password (shown once).
type CreateResult struct {
	Editor        *models.Editor
	AdminID       int64
	AdminEmail    string
	AdminPassword string
}

// Create makes a publisher, its optional logo and an ADMIN account with
// a generated password, all in one transaction. The credentials are
// additionally published to the mail queue, best-effort.
func (s *Service) Create(ctx context.Context, name, adminEmail string, firstname, lastname *string, logo *LogoUpload) (*CreateResult, error) {
	const op = "editor.Create"

	var logoDoc *models.Document
	if logo != nil {
		key := fmt.Sprintf("logos/%s-%s", uuid.NewString(), logo.Filename)
		url, err := s.blobs.Upload(ctx, key, logo.Reader, logo.Size, logo.ContentType)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logoDoc = &models.Document{
			Kind:     models.DocumentKindEditorLogo,
			Filename: logo.Filename,
			Mime:     logo.ContentType,
			Size:     logo.Size,
			URL:      url,
		}
	}

	plain, err := password.Generate(12)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	hashed, err := password.GetHash(plain)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	admin := models.User{
		Email:        adminEmail,
		PasswordHash: hashed,
		Firstname:    firstname,
		Lastname:     lastname,
	}
	editor, adminID, err := s.repo.CreateEditorWithAdmin(ctx, name, logoDoc, admin)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "admin email already in use")
		}
		return nil, err
	}

	if s.mail != nil {
		msg := rabbitmq.CredentialsMessage{
			EditorName: editor.Name,
			AdminEmail: adminEmail,
			Password:   plain,
		}
		if err := s.mail.Publish(rabbitmq.MailQueue, msg); err != nil {
			s.log.Error("failed to publish credentials message", sl.Err(err),
				slog.Int64("editor_id", editor.ID))
		}
	}

	return &CreateResult{
		Editor:        editor,
		AdminID:       adminID,
		AdminEmail:    adminEmail,
		AdminPassword: plain,
	}, nil
}

// Get returns one publisher.
func (s *Service) Get(ctx context.Context, id int64) (*models.Editor, error) {
	editor, err := s.repo.GetEditorByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "editor not found")
		}
		return nil, err
	}
	return editor, nil
}

// Rename updates the publisher name.
func (s *Service) Rename(ctx context.Context, id int64, name string) (*models.Editor, error) {
	if err := s.repo.UpdateEditorName(ctx, id, name); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "editor not found")
		}
		return nil, err
	}
	return s.repo.GetEditorByID(ctx, id)
}

// List returns all publishers with their documents.
func (s *Service) List(ctx context.Context) ([]*models.Editor, error) {
	return s.repo.ListEditors(ctx)
}

// ListByWindow returns publishers created inside [start, end].
func (s *Service) ListByWindow(ctx context.Context, start, end time.Time) ([]*models.Editor, error) {
	if !end.After(start) {
		return nil, apperr.New(apperr.InvalidRequest, "end date must be after start date")
	}
	return s.repo.ListEditorsByWindow(ctx, start, end)
}

// Delete removes the publisher, its newsletters, its admin accounts and
// its documents, then cleans up the stored blobs best-effort.
func (s *Service) Delete(ctx context.Context, id int64) error {
	blobURLs, err := s.repo.DeleteEditorCascade(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "editor not found")
		}
		return err
	}
	for _, url := range blobURLs {
		if err := s.blobs.DeleteByURL(ctx, url); err != nil {
			s.log.Error("failed to delete blob", sl.Err(err), slog.String("url", url))
		}
	}
	return nil
}
