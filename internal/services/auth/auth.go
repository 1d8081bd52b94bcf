// Package auth contains registration, login and token refresh logic.
package auth

import (
	"context"
	"errors"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/lib/jwt"
	"github.com/saabal/saabal-api/internal/lib/password"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

// UserRepository is the persistence contract of the auth service.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UpdateUserActivated(ctx context.Context, id int64, activated bool) error
}

// AuthService handles registration, login, refresh and self-deactivation.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New creates an AuthService.
func New(users UserRepository, jwtMaker jwt.Maker) *AuthService {
	return &AuthService{users: users, jwtMaker: jwtMaker}
}

// LoginResult is the successful login payload.
type LoginResult struct {
	User         *models.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
}

// Register creates an activated CLIENT account. A duplicate email fails
// with Conflict.
func (s *AuthService) Register(ctx context.Context, email, rawPassword string, firstname, lastname, phone *string) (*models.User, error) {
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
		Role:         models.RoleClient,
		Activated:    true,
	}
	id, err := s.users.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, apperr.New(apperr.Conflict, "email already in use")
		}
		return nil, err
	}
	return s.users.GetUserByID(ctx, id)
}

// Login verifies the credentials and issues an access and a refresh
// token. A deactivated account cannot log in.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*LoginResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
		}
		return nil, err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return nil, apperr.New(apperr.Unauthenticated, "invalid credentials")
	}
	if !user.Activated {
		return nil, apperr.New(apperr.Forbidden, "account is deactivated")
	}

	accessToken, err := s.jwtMaker.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwtMaker.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh exchanges a valid refresh token for a new short-lived access
// token.
func (s *AuthService) Refresh(_ context.Context, refreshToken string) (string, error) {
	accessToken, err := s.jwtMaker.Refresh(refreshToken)
	if err != nil {
		return "", apperr.Wrap(apperr.Unauthenticated, "invalid refresh token", err)
	}
	return accessToken, nil
}

// Deactivate flags the caller's own account as deactivated.
func (s *AuthService) Deactivate(ctx context.Context, userID int64) error {
	if err := s.users.UpdateUserActivated(ctx, userID, false); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apperr.New(apperr.NotFound, "user not found")
		}
		return err
	}
	return nil
}
