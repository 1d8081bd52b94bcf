// Package lecture tracks per-user reading progress in newsletters.
package lecture

import (
	"context"
	"errors"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// Repository is the persistence contract of the lecture service.
type Repository interface {
	UpsertLecture(ctx context.Context, userID, newsletterID int64, page int) (*models.Lecture, error)
	GetLecture(ctx context.Context, userID, newsletterID int64) (*models.Lecture, error)
	ListLecturesInProgress(ctx context.Context, userID int64) ([]models.LectureInfo, error)
	GetNewsletterByID(ctx context.Context, id int64) (*models.Newsletter, error)
}

// Service records and reports reading progress.
type Service struct {
	repo Repository
}

// New creates a lecture Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Save records the last viewed page of a newsletter for the user. The
// newsletter must exist and the page starts at one.
func (s *Service) Save(ctx context.Context, userID, newsletterID int64, page int) (*models.Lecture, error) {
	if page < 1 {
		return nil, apperr.New(apperr.InvalidRequest, "page must be at least 1")
	}
	if _, err := s.repo.GetNewsletterByID(ctx, newsletterID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.InvalidRequest, "newsletter not found")
		}
		return nil, err
	}
	return s.repo.UpsertLecture(ctx, userID, newsletterID, page)
}

// Get returns the user's progress in one newsletter; a never-opened
// newsletter reports page one.
func (s *Service) Get(ctx context.Context, userID, newsletterID int64) (*models.Lecture, error) {
	lecture, err := s.repo.GetLecture(ctx, userID, newsletterID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &models.Lecture{UserID: userID, NewsletterID: newsletterID, Page: 1}, nil
		}
		return nil, err
	}
	return lecture, nil
}

// InProgress returns the user's newsletters read past the first page,
// most recently read first.
func (s *Service) InProgress(ctx context.Context, userID int64) ([]models.LectureInfo, error) {
	return s.repo.ListLecturesInProgress(ctx, userID)
}
