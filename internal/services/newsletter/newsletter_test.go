package newsletter

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

func (m *mockRepo) CreateNewsletter(ctx context.Context, n models.Newsletter) (int64, error) {
	args := m.Called(ctx, n)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) GetNewsletterByID(ctx context.Context, id int64) (*models.Newsletter, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Newsletter), args.Error(1)
}

func (m *mockRepo) UpdateNewsletter(ctx context.Context, id int64, upd models.NewsletterUpdate) error {
	return m.Called(ctx, id, upd).Error(0)
}

func (m *mockRepo) DeleteNewsletter(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRepo) ListNewsletters(ctx context.Context, editorID *int64) ([]*models.Newsletter, error) {
	args := m.Called(ctx, editorID)
	return args.Get(0).([]*models.Newsletter), args.Error(1)
}

func (m *mockRepo) ListNewslettersByWindow(ctx context.Context, start, end time.Time) ([]*models.Newsletter, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]*models.Newsletter), args.Error(1)
}

func (m *mockRepo) ListNewslettersByCategory(ctx context.Context, categoryID int64, q string) ([]*models.Newsletter, error) {
	args := m.Called(ctx, categoryID, q)
	return args.Get(0).([]*models.Newsletter), args.Error(1)
}

func (m *mockRepo) GetEditorByID(ctx context.Context, id int64) (*models.Editor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Editor), args.Error(1)
}

func (m *mockRepo) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockRepo) CountNewslettersByCategory(ctx context.Context, categoryID int64) (int, error) {
	args := m.Called(ctx, categoryID)
	return args.Int(0), args.Error(1)
}

func (m *mockRepo) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *mockRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *mockRepo) DeleteCategory(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func editorID(id int64) *int64 { return &id }

func superAdmin() models.Identity {
	return models.Identity{UserID: 1, Role: models.RoleSuperAdmin}
}

func admin(editor *int64) models.Identity {
	return models.Identity{UserID: 2, Role: models.RoleAdmin, EditorID: editor}
}

func validInput(editor int64) CreateInput {
	return CreateInput{
		Title:       "Edition du lundi",
		EditorID:    editor,
		CategoryID:  4,
		PublishedAt: time.Now(),
	}
}

func expectCreate(repo *mockRepo, editor int64) {
	repo.On("GetEditorByID", mock.Anything, editor).Return(&models.Editor{ID: editor}, nil)
	repo.On("GetCategoryByID", mock.Anything, int64(4)).Return(&models.Category{ID: 4}, nil)
	repo.On("CreateNewsletter", mock.Anything, mock.Anything).Return(int64(10), nil)
	repo.On("GetNewsletterByID", mock.Anything, int64(10)).
		Return(&models.Newsletter{ID: 10, EditorID: editor}, nil)
}

func TestCreateScoping(t *testing.T) {
	tests := []struct {
		name     string
		caller   models.Identity
		editor   int64
		wantKind apperr.Kind
		allowed  bool
	}{
		{name: "super admin any editor", caller: superAdmin(), editor: 7, allowed: true},
		{name: "admin own editor", caller: admin(editorID(7)), editor: 7, allowed: true},
		{name: "admin foreign editor", caller: admin(editorID(7)), editor: 8, wantKind: apperr.Forbidden},
		{name: "admin without editor", caller: admin(nil), editor: 7, wantKind: apperr.Forbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockRepo)
			svc := New(repo, nil)
			if tt.allowed {
				expectCreate(repo, tt.editor)
			}

			_, err := svc.Create(context.Background(), tt.caller, validInput(tt.editor))
			if tt.allowed {
				require.NoError(t, err)
				repo.AssertExpectations(t)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			repo.AssertNotCalled(t, "CreateNewsletter", mock.Anything, mock.Anything)
		})
	}
}

func TestCreateUnknownReferences(t *testing.T) {
	t.Run("editor missing", func(t *testing.T) {
		repo := new(mockRepo)
		svc := New(repo, nil)
		repo.On("GetEditorByID", mock.Anything, int64(7)).Return(nil, storage.ErrNotFound)

		_, err := svc.Create(context.Background(), superAdmin(), validInput(7))
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
	})

	t.Run("category missing", func(t *testing.T) {
		repo := new(mockRepo)
		svc := New(repo, nil)
		repo.On("GetEditorByID", mock.Anything, int64(7)).Return(&models.Editor{ID: 7}, nil)
		repo.On("GetCategoryByID", mock.Anything, int64(4)).Return(nil, storage.ErrNotFound)

		_, err := svc.Create(context.Background(), superAdmin(), validInput(7))
		require.Error(t, err)
		assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
	})
}

func TestDeleteScoping(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo, nil)

	repo.On("GetNewsletterByID", mock.Anything, int64(10)).
		Return(&models.Newsletter{ID: 10, EditorID: 8}, nil)

	err := svc.Delete(context.Background(), admin(editorID(7)), 10)
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
	repo.AssertNotCalled(t, "DeleteNewsletter", mock.Anything, mock.Anything)
}

func TestListForScopesAdmins(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo, nil)

	own := editorID(7)
	repo.On("ListNewsletters", mock.Anything, own).Return([]*models.Newsletter{{ID: 1, EditorID: 7}}, nil)

	rows, err := svc.ListFor(context.Background(), admin(own))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	repo.AssertExpectations(t)
}

func TestListForAdminWithoutEditor(t *testing.T) {
	svc := New(new(mockRepo), nil)

	_, err := svc.ListFor(context.Background(), admin(nil))
	require.Error(t, err)
	assert.Equal(t, apperr.Forbidden, apperr.KindOf(err))
}

func TestDeleteCategoryBlockedWhileReferenced(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo, nil)

	repo.On("CountNewslettersByCategory", mock.Anything, int64(4)).Return(3, nil)

	err := svc.DeleteCategory(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, apperr.InvalidRequest, apperr.KindOf(err))
	repo.AssertNotCalled(t, "DeleteCategory", mock.Anything, mock.Anything)
}

func TestDeleteCategoryUnreferenced(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo, nil)

	repo.On("CountNewslettersByCategory", mock.Anything, int64(4)).Return(0, nil)
	repo.On("DeleteCategory", mock.Anything, int64(4)).Return(nil)

	require.NoError(t, svc.DeleteCategory(context.Background(), 4))
	repo.AssertExpectations(t)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	repo := new(mockRepo)
	svc := New(repo, nil)

	repo.On("CreateCategory", mock.Anything, "Sport").Return(nil, storage.ErrDuplicate)

	_, err := svc.CreateCategory(context.Background(), "Sport")
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}
