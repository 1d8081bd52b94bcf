// Package advertisement manages dashboard banners. The public active
// listing is served through a short-lived Redis cache.
package advertisement

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
	"github.com/saabal/saabal-api/internal/cache"
	"github.com/saabal/saabal-api/internal/lib/sl"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

const (
	activeCacheKey = "publicites:active"
	activeCacheTTL = 60 * time.Second
)

// Repository is the persistence contract of the advertisement service.
type Repository interface {
	CreateAdvertisement(ctx context.Context, ad models.Advertisement) (*models.Advertisement, error)
	ListAdvertisements(ctx context.Context) ([]*models.Advertisement, error)
	ListActiveAdvertisements(ctx context.Context) ([]*models.Advertisement, error)
	DeleteAdvertisement(ctx context.Context, id int64) (string, error)
}

// Service manages advertisements.
type Service struct {
	log   *slog.Logger
	repo  Repository
	blobs blobstore.Store
	cache *cache.Cache
}

// New creates an advertisement Service. cache may be nil; listings then
// always hit the database.
func New(log *slog.Logger, repo Repository, blobs blobstore.Store, c *cache.Cache) *Service {
	return &Service{log: log, repo: repo, blobs: blobs, cache: c}
}

// ImageUpload describes an incoming banner image already validated at
// the handler boundary.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Create uploads the banner image and inserts the advertisement.
func (s *Service) Create(ctx context.Context, title string, description *string, active bool, image ImageUpload) (*models.Advertisement, error) {
	const op = "advertisement.Create"

	key := fmt.Sprintf("publicites/%s-%s", uuid.NewString(), image.Filename)
	url, err := s.blobs.Upload(ctx, key, image.Reader, image.Size, image.ContentType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ad, err := s.repo.CreateAdvertisement(ctx, models.Advertisement{
		Title:       title,
		Description: description,
		ImageURL:    url,
		Active:      active,
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return ad, nil
}

// List returns every advertisement, for the dashboard.
func (s *Service) List(ctx context.Context) ([]*models.Advertisement, error) {
	return s.repo.ListAdvertisements(ctx)
}

// ListActive returns the publicly visible advertisements, cached for a
// short window.
func (s *Service) ListActive(ctx context.Context) ([]*models.Advertisement, error) {
	if s.cache != nil {
		var cached []*models.Advertisement
		hit, err := s.cache.Get(ctx, activeCacheKey, &cached)
		if err != nil {
			s.log.Warn("advertisement cache read failed", sl.Err(err))
		} else if hit {
			return cached, nil
		}
	}

	ads, err := s.repo.ListActiveAdvertisements(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, activeCacheKey, ads, activeCacheTTL); err != nil {
			s.log.Warn("advertisement cache write failed", sl.Err(err))
		}
	}
	return ads, nil
}

// Delete removes the advertisement and its stored image.
func (s *Service) Delete(ctx context.Context, id int64) error {
	imageURL, err := s.repo.DeleteAdvertisement(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "advertisement not found")
		}
		return err
	}
	s.invalidate(ctx)
	if err := s.blobs.DeleteByURL(ctx, imageURL); err != nil {
		s.log.Error("failed to delete advertisement image", sl.Err(err), slog.String("url", imageURL))
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, activeCacheKey); err != nil {
		s.log.Warn("advertisement cache invalidation failed", sl.Err(err))
	}
}
