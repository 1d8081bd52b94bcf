package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/models"
	authservice "github.com/saabal/saabal-api/internal/services/auth"
)

type mockService struct{ mock.Mock }

func (m *mockService) Register(ctx context.Context, email, rawPassword string, firstname, lastname, phone *string) (*models.User, error) {
	args := m.Called(ctx, email, rawPassword, firstname, lastname, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockService) Login(ctx context.Context, email, rawPassword string) (*authservice.LoginResult, error) {
	args := m.Called(ctx, email, rawPassword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*authservice.LoginResult), args.Error(1)
}

func (m *mockService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *mockService) Deactivate(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func newHandler(service *mockService) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRegister(t *testing.T) {
	service := new(mockService)
	service.On("Register", mock.Anything, "user@example.com", "password123",
		(*string)(nil), (*string)(nil), (*string)(nil)).
		Return(&models.User{ID: 5, Email: "user@example.com", Role: models.RoleClient}, nil)

	rec := postJSON(t, newHandler(service).Register, "/auth/register", RegisterRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	resp := envelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "account created", resp.Message)
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name string
		body RegisterRequest
	}{
		{"missing email", RegisterRequest{Password: "password123"}},
		{"invalid email", RegisterRequest{Email: "not-an-email", Password: "password123"}},
		{"short password", RegisterRequest{Email: "user@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := new(mockService)
			rec := postJSON(t, newHandler(service).Register, "/auth/register", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, envelope(t, rec).Success)
			service.AssertNotCalled(t, "Register",
				mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRegisterEmptyBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/register", nil)
	newHandler(new(mockService)).Register(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty request body", envelope(t, rec).Message)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := new(mockService)
	service.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperr.New(apperr.Conflict, "email already in use"))

	rec := postJSON(t, newHandler(service).Register, "/auth/register", RegisterRequest{
		Email:    "dup@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	resp := envelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "email already in use", resp.Message)
}

func TestLogin(t *testing.T) {
	service := new(mockService)
	service.On("Login", mock.Anything, "user@example.com", "password123").
		Return(&authservice.LoginResult{
			User:         &models.User{ID: 5, Email: "user@example.com"},
			AccessToken:  "access",
			RefreshToken: "refresh",
		}, nil)

	rec := postJSON(t, newHandler(service).Login, "/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := envelope(t, rec)
	assert.True(t, resp.Success)

	payload, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "access", payload["access_token"])
	assert.Equal(t, "refresh", payload["refresh_token"])
}

func TestLoginBadCredentials(t *testing.T) {
	service := new(mockService)
	service.On("Login", mock.Anything, "user@example.com", "wrong-password").
		Return(nil, apperr.New(apperr.Unauthenticated, "invalid credentials"))

	rec := postJSON(t, newHandler(service).Login, "/auth/login", LoginRequest{
		Email:    "user@example.com",
		Password: "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", envelope(t, rec).Message)
}

func TestRefresh(t *testing.T) {
	service := new(mockService)
	service.On("Refresh", mock.Anything, "refresh-token").Return("new-access", nil)

	rec := postJSON(t, newHandler(service).Refresh, "/auth/refresh", RefreshRequest{
		RefreshToken: "refresh-token",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	payload, ok := envelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "new-access", payload["access_token"])
}

func TestDeactivate(t *testing.T) {
	service := new(mockService)
	service.On("Deactivate", mock.Anything, int64(5)).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/me/deactivate", nil)
	ctx := middlewarectx.WithIdentity(req.Context(), models.Identity{UserID: 5, Role: models.RoleClient})
	rec := httptest.NewRecorder()
	newHandler(service).Deactivate(rec, req.WithContext(ctx))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope(t, rec).Success)
	service.AssertExpectations(t)
}

func TestDeactivateWithoutIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	newHandler(new(mockService)).Deactivate(rec, httptest.NewRequest(http.MethodPost, "/auth/me/deactivate", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
