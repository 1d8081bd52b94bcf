package subscriptions

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/http/middlewarectx"
	"github.com/saabal/saabal-api/internal/http/response"
	"github.com/saabal/saabal-api/internal/models"
)

type mockService struct{ mock.Mock }

func (m *mockService) Create(ctx context.Context, userID, offerID int64, price *float64, start, end time.Time) (*models.Subscription, error) {
	args := m.Called(ctx, userID, offerID, price, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *mockService) CurrentForUser(ctx context.Context, userID int64) (*models.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *mockService) HistoryForUser(ctx context.Context, userID int64) ([]models.Subscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]models.Subscription), args.Error(1)
}

func (m *mockService) List(ctx context.Context) ([]models.SubscriptionInfo, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.SubscriptionInfo), args.Error(1)
}

func (m *mockService) UpdateCurrent(ctx context.Context, userID int64, upd models.SubscriptionUpdate) error {
	return m.Called(ctx, userID, upd).Error(0)
}

func (m *mockService) DeleteCurrent(ctx context.Context, userID int64) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockService) RevenueByMonth(ctx context.Context, now time.Time) ([]models.MonthAmount, error) {
	args := m.Called(ctx, now)
	return args.Get(0).([]models.MonthAmount), args.Error(1)
}

func (m *mockService) MostPopularOffer(ctx context.Context) (*models.OfferCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OfferCount), args.Error(1)
}

func newHandler(service *mockService) *Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), service)
}

func envelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func withIdentity(req *http.Request, userID int64) *http.Request {
	ctx := middlewarectx.WithIdentity(req.Context(), models.Identity{UserID: userID, Role: models.RoleClient})
	return req.WithContext(ctx)
}

func TestMe(t *testing.T) {
	service := new(mockService)
	now := time.Now()
	service.On("CurrentForUser", mock.Anything, int64(5)).
		Return(&models.Subscription{ID: 9, UserID: 5, Start: now, End: now.AddDate(0, 1, 0)}, nil)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/abonnements/me", nil), 5)
	rec := httptest.NewRecorder()
	newHandler(service).Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := envelope(t, rec)
	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
}

func TestMeNoCurrentSubscription(t *testing.T) {
	service := new(mockService)
	service.On("CurrentForUser", mock.Anything, int64(5)).Return(nil, nil)

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/abonnements/me", nil), 5)
	rec := httptest.NewRecorder()
	newHandler(service).Me(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := envelope(t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, []any{}, resp.Data)
	assert.Equal(t, "no current subscription", resp.Message)
}

func TestCreate(t *testing.T) {
	service := new(mockService)
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	service.On("Create", mock.Anything, int64(5), int64(2), (*float64)(nil), start, end).
		Return(&models.Subscription{ID: 9, UserID: 5, Price: 5000, Start: start, End: end}, nil)

	body, err := json.Marshal(CreateRequest{UserID: 5, OfferID: 2, Start: start, End: end})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/abonnements", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newHandler(service).Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, envelope(t, rec).Success)
	service.AssertExpectations(t)
}

func TestCreateWithPrice(t *testing.T) {
	service := new(mockService)
	start := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	service.On("Create", mock.Anything, int64(5), int64(2), mock.MatchedBy(func(p *float64) bool {
		return p != nil && *p == 3000
	}), start, end).
		Return(&models.Subscription{ID: 9, UserID: 5, Price: 3000, Start: start, End: end}, nil)

	price := float64(3000)
	body, err := json.Marshal(CreateRequest{UserID: 5, OfferID: 2, Price: &price, Start: start, End: end})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/abonnements", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newHandler(service).Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	service.AssertExpectations(t)
}

func TestCreateValidation(t *testing.T) {
	service := new(mockService)

	body, err := json.Marshal(map[string]any{"user_id": 5})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/abonnements", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	newHandler(service).Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "Create",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func routeWithUserID(method, pattern string, h http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	return r
}

func TestUpdate(t *testing.T) {
	service := new(mockService)
	end := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	service.On("UpdateCurrent", mock.Anything, int64(5), mock.MatchedBy(func(upd models.SubscriptionUpdate) bool {
		return upd.End != nil && upd.End.Equal(end) && upd.Price == nil
	})).Return(nil)

	router := routeWithUserID(http.MethodPut, "/abonnements/user/{userID}", newHandler(service).Update)

	body, err := json.Marshal(UpdateRequest{End: &end})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPut, "/abonnements/user/5", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestUpdateWithoutCurrent(t *testing.T) {
	service := new(mockService)
	service.On("UpdateCurrent", mock.Anything, int64(5), mock.Anything).
		Return(apperr.New(apperr.NotFound, "no current subscription for this user"))

	router := routeWithUserID(http.MethodPut, "/abonnements/user/{userID}", newHandler(service).Update)

	req := httptest.NewRequest(http.MethodPut, "/abonnements/user/5", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "no current subscription for this user", envelope(t, rec).Message)
}

func TestUpdateInvalidUserID(t *testing.T) {
	service := new(mockService)
	router := routeWithUserID(http.MethodPut, "/abonnements/user/{userID}", newHandler(service).Update)

	req := httptest.NewRequest(http.MethodPut, "/abonnements/user/abc", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	service.AssertNotCalled(t, "UpdateCurrent", mock.Anything, mock.Anything, mock.Anything)
}

func TestDelete(t *testing.T) {
	service := new(mockService)
	service.On("DeleteCurrent", mock.Anything, int64(5)).Return(nil)

	router := routeWithUserID(http.MethodDelete, "/abonnements/user/{userID}", newHandler(service).Delete)

	req := httptest.NewRequest(http.MethodDelete, "/abonnements/user/5", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertExpectations(t)
}

func TestPopularOffer(t *testing.T) {
	service := new(mockService)
	service.On("MostPopularOffer", mock.Anything).
		Return(&models.OfferCount{Name: "Premium", Count: 12}, nil)

	rec := httptest.NewRecorder()
	newHandler(service).PopularOffer(rec, httptest.NewRequest(http.MethodGet, "/abonnements/stats/most-popular-offre", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	payload, ok := envelope(t, rec).Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Premium", payload["nom"])
}
