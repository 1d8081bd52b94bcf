// Package user implements administrative account management and the
// registration statistics.
package user

import (
	"context"
	"errors"
	"time"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/lib/month"
	"github.com/saabal/saabal-api/internal/lib/password"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// Repository is the persistence contract of the user service.
type Repository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) error
	UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error
	UpdateUserActivated(ctx context.Context, id int64, activated bool) error
	DeleteUser(ctx context.Context, id int64) error
	ListUserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error)
}

// Service manages accounts on behalf of administrators.
type Service struct {
	repo Repository
}

// New creates a user Service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns all accounts, newest first.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repo.ListUsers(ctx)
}

// Get returns one account by id.
func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.NotFound, "user not found")
		}
		return nil, err
	}
	return user, nil
}

// Create makes an account with an explicit role. An ADMIN account must
// name the publisher it administers.
func (s *Service) Create(ctx context.Context, email, rawPassword, role string, firstname, lastname, phone *string, editorID *int64) (*models.User, error) {
	parsedRole, err := models.ParseRole(role)
	if err != nil {
		return nil, apperr.New(apperr.InvalidRequest, "unknown role")
	}
	if parsedRole == models.RoleAdmin && editorID == nil {
		return nil, apperr.New(apperr.InvalidRequest, "an administrator account requires a publisher id")
	}
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hashed,
		Firstname:    firstname,
		Lastname:     lastname,
		Phone:        phone,
		Role:         parsedRole,
		Activated:    true,
		EditorID:     editorID,
	}
	id, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "email already in use")
		}
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// Update applies a partial profile/role update to the account.
func (s *Service) Update(ctx context.Context, id int64, upd models.UserUpdate) (*models.User, error) {
	if err := s.repo.UpdateUser(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil, apperr.New(apperr.NotFound, "user not found")
		case errors.Is(err, storage.ErrDuplicate):
			return nil, apperr.New(apperr.Conflict, "email already in use")
		}
		return nil, err
	}
	return s.repo.GetUserByID(ctx, id)
}

// UpdatePassword replaces the account password.
func (s *Service) UpdatePassword(ctx context.Context, id int64, rawPassword string) error {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUserPassword(ctx, id, hashed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	return nil
}

// UpdateStatus toggles the activation flag of an account. A CLIENT may
// only deactivate their own account; elevated roles are unrestricted.
func (s *Service) UpdateStatus(ctx context.Context, caller models.Identity, targetID int64, activated bool) error {
	if caller.Role == models.RoleClient {
		if targetID != caller.UserID {
			return apperr.New(apperr.Forbidden, "clients may only update their own status")
		}
		if activated {
			return apperr.New(apperr.Forbidden, "clients may only deactivate their account")
		}
	}
	if err := s.repo.UpdateUserActivated(ctx, targetID, activated); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	return nil
}

// Delete removes an account; its subscriptions and reading progress
// cascade.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	return nil
}

// RegistrationsByMonth counts new accounts per trailing calendar month,
// oldest first.
func (s *Service) RegistrationsByMonth(ctx context.Context, now time.Time) ([]models.MonthCount, error) {
	windows := month.Windows(now, 12)
	times, err := s.repo.ListUserCreationTimes(ctx, windows[0].Start)
	if err != nil {
		return nil, err
	}

	result := make([]models.MonthCount, len(windows))
	for i, w := range windows {
		result[i] = models.MonthCount{Month: w.Label}
		for _, t := range times {
			if w.Contains(t) {
				result[i].Count++
			}
		}
	}
	return result, nil
}
