package middlewarectx

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/lib/jwt"
	"github.com/saabal/saabal-api/internal/models"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func newMaker() jwt.Maker {
	return jwt.New("access-secret", "refresh-secret", time.Hour, 24*time.Hour, time.Minute)
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler(captured *models.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := Identity(r.Context()); ok && captured != nil {
			*captured = identity
		}
		w.WriteHeader(http.StatusOK)
	})
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthMissingHeader(t *testing.T) {
	handler := Auth(discardLog(), newMaker(), new(mockUsers))(okHandler(nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := envelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "missing authorization header", resp.Message)
}

func TestAuthMalformedHeader(t *testing.T) {
	handler := Auth(discardLog(), newMaker(), new(mockUsers))(okHandler(nil))

	for _, header := range []string{"Token abc", "Bearer", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	handler := Auth(discardLog(), newMaker(), new(mockUsers))(okHandler(nil))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid or expired token", envelope(t, rec).Message)
}

func TestAuthAttachesIdentity(t *testing.T) {
	maker := newMaker()
	users := new(mockUsers)
	editorID := int64(7)
	users.On("GetUserByID", mock.Anything, int64(42)).Return(&models.User{
		ID:        42,
		Email:     "admin@example.com",
		Role:      models.RoleAdmin,
		EditorID:  &editorID,
		Activated: true,
	}, nil)

	var captured models.Identity
	handler := Auth(discardLog(), maker, users)(okHandler(&captured))

	token, err := maker.GenerateAccessToken(42, "admin@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), captured.UserID)
	assert.Equal(t, models.RoleAdmin, captured.Role)
	require.NotNil(t, captured.EditorID)
	assert.Equal(t, editorID, *captured.EditorID)
}

func TestAuthDeactivatedAccount(t *testing.T) {
	maker := newMaker()
	users := new(mockUsers)
	users.On("GetUserByID", mock.Anything, int64(42)).Return(&models.User{
		ID:        42,
		Role:      models.RoleClient,
		Activated: false,
	}, nil)

	handler := Auth(discardLog(), maker, users)(okHandler(nil))

	token, err := maker.GenerateAccessToken(42, "user@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "account is deactivated", envelope(t, rec).Message)
}

func TestRequireRoles(t *testing.T) {
	handler := RequireRoles(models.RoleSuperAdmin)(okHandler(nil))

	t.Run("allowed role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := WithIdentity(req.Context(), models.Identity{UserID: 1, Role: models.RoleSuperAdmin})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("insufficient role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		ctx := WithIdentity(req.Context(), models.Identity{UserID: 1, Role: models.RoleClient})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req.WithContext(ctx))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "insufficient role", envelope(t, rec).Message)
	})

	t.Run("no identity", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimit(t *testing.T) {
	handler := RateLimit(rate.Limit(1), 2)(okHandler(nil))

	codes := make([]int, 0, 3)
	for range 3 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, http.StatusOK, codes[0])
	assert.Equal(t, http.StatusOK, codes[1])
	assert.Equal(t, http.StatusTooManyRequests, codes[2])
}
