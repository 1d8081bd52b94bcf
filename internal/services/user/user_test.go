package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) CreateUser(ctx context.Context, user models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockRepo) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockRepo) UpdateUser(ctx context.Context, id int64, upd models.UserUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *mockRepo) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockRepo) UpdateUserActivated(ctx context.Context, id int64, activated bool) error {
	return m.Called(ctx, id, activated).Error(0)
}

func (m *mockRepo) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) ListUserCreationTimes(ctx context.Context, since time.Time) ([]time.Time, error) {
	args := m.Called(ctx, since)
	return args.Get(0).([]time.Time), args.Error(1)
}

func client(id int64) models.Identity {
	return models.Identity{UserID: id, Role: models.RoleClient}
}

func TestUpdateStatusRules(t *testing.T) {
	tests := []struct {
		name      string
		caller    models.Identity
		targetID  int64
		activated bool
		wantKind  apperr.Kind
		allowed   bool
	}{
		{
			name:      "client deactivates self",
			caller:    client(1),
			targetID:  1,
			activated: false,
			allowed:   true,
		},
		{
			name:      "client targets another account",
			caller:    client(1),
			targetID:  2,
			activated: false,
			wantKind:  apperr.Forbidden,
		},
		{
			name:      "client reactivates self",
			caller:    client(1),
			targetID:  1,
			activated: true,
			wantKind:  apperr.Forbidden,
		},
		{
			name:      "admin reactivates anyone",
			caller:    models.Identity{UserID: 9, Role: models.RoleAdmin},
			targetID:  2,
			activated: true,
			allowed:   true,
		},
		{
			name:      "super admin deactivates anyone",
			caller:    models.Identity{UserID: 9, Role: models.RoleSuperAdmin},
			targetID:  2,
			activated: false,
			allowed:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			svc := New(repo)
			if tt.allowed {
				repo.On("UpdateUserActivated", mock.Anything, tt.targetID, tt.activated).Return(nil)
			}

			err := svc.UpdateStatus(context.Background(), tt.caller, tt.targetID, tt.activated)
			if tt.allowed {
				require.NoError(t, err)
				repo.AssertExpectations(t)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			repo.AssertNotCalled(t, "UpdateUserActivated", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestCreateAdminRequiresEditor(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo)

	_, err := svc.Create(context.Background(), "admin@example.com", "password123", "ADMIN", nil, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
	repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateNormalizesRole(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo)

	repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleSuperAdmin && u.Activated
	})).Return(int64(5), nil)
	repo.On("GetUserByID", mock.Anything, int64(5)).
		Return(&models.User{ID: 5, Role: models.RoleSuperAdmin}, nil)

	user, err := svc.Create(context.Background(), "root@example.com", "password123", "super-admin", nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperAdmin, user.Role)
}

func TestCreateUnknownRole(t *testing.T) {
	svc := New(new(mockRepo))

	_, err := svc.Create(context.Background(), "x@example.com", "password123", "owner", nil, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
}

func TestCreateDuplicateEmail(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo)

	repo.On("CreateUser", mock.Anything, mock.Anything).Return(int64(0), storage.ErrDuplicate)

	_, err := svc.Create(context.Background(), "dup@example.com", "password123", "CLIENT", nil, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestRegistrationsByMonth(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo)

	now := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	repo.On("ListUserCreationTimes", mock.Anything, mock.Anything).Return([]time.Time{
		time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2025, time.January, 20, 0, 0, 0, 0, time.UTC),
	}, nil)

	stats, err := svc.RegistrationsByMonth(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, stats, 12)
	assert.Equal(t, 2, stats[11].Count)
	assert.Equal(t, 1, stats[9].Count)
	assert.Equal(t, 0, stats[10].Count)
}
