package editor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saabal/saabal-api/internal/apperr"
	"github.com/saabal/saabal-api/internal/lib/password"
	"github.com/saabal/saabal-api/internal/lib/rabbitmq"
	"github.com/saabal/saabal-api/internal/models"
	"github.com/saabal/saabal-api/internal/storage"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) CreateEditorWithAdmin(ctx context.Context, name string, logo *models.Document, admin models.User) (*models.Editor, int64, error) {
	args := m.Called(ctx, name, logo, admin)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).(*models.Editor), args.Get(1).(int64), args.Error(2)
}

func (m *mockRepo) GetEditorByID(ctx context.Context, id int64) (*models.Editor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Editor), args.Error(1)
}

func (m *mockRepo) UpdateEditorName(ctx context.Context, id int64, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *mockRepo) ListEditors(ctx context.Context) ([]*models.Editor, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Editor), args.Error(1)
}

func (m *mockRepo) ListEditorsByWindow(ctx context.Context, start, end time.Time) ([]*models.Editor, error) {
	args := m.Called(ctx, start, end)
	return args.Get(0).([]*models.Editor), args.Error(1)
}

func (m *mockRepo) DeleteEditorCascade(ctx context.Context, id int64) ([]string, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockBlobs struct{ mock.Mock }

func (m *mockBlobs) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *mockBlobs) DeleteByURL(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

type mockMail struct{ mock.Mock }

func (m *mockMail) Publish(queue string, message any) error {
	return m.Called(queue, message).Error(0)
}

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateGeneratesAdminCredentials(t *testing.T) {
	repo := new(mockRepo)
	blobs := new(mockBlobs)
	mail := new(mockMail)
	svc := New(discardLog(), repo, blobs, mail)

	var capturedHash string
	repo.On("CreateEditorWithAdmin", mock.Anything, "Le Soleil", (*models.Document)(nil),
		mock.MatchedBy(func(admin models.User) bool {
			capturedHash = admin.PasswordHash
			return admin.Email == "admin@soleil.sn" && admin.PasswordHash != ""
		})).Return(&models.Editor{ID: 3, Name: "Le Soleil"}, int64(12), nil)
	mail.On("Publish", rabbitmq.MailQueue, mock.MatchedBy(func(msg rabbitmq.CredentialsMessage) bool {
		return msg.AdminEmail == "admin@soleil.sn" && msg.Password != ""
	})).Return(nil)

	result, err := svc.Create(context.Background(), "Le Soleil", "admin@soleil.sn", nil, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(12), result.AdminID)
	assert.Len(t, result.AdminPassword, 12)
	// The stored hash must verify against the plaintext handed back once.
	require.NoError(t, password.CompareHash(capturedHash, result.AdminPassword))
	mail.AssertExpectations(t)
}

func TestCreateUploadsLogo(t *testing.T) {
	repo := new(mockRepo)
	blobs := new(mockBlobs)
	svc := New(discardLog(), repo, blobs, nil)

	blobs.On("Upload", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "logos/") && strings.HasSuffix(key, "-logo.png")
	}), mock.Anything, int64(2048), "image/png").
		Return("https://blobs.example.com/logos/x-logo.png", nil)
	repo.On("CreateEditorWithAdmin", mock.Anything, "Le Soleil",
		mock.MatchedBy(func(doc *models.Document) bool {
			return doc != nil &&
				doc.Kind == models.DocumentKindEditorLogo &&
				doc.URL == "https://blobs.example.com/logos/x-logo.png"
		}), mock.Anything).
		Return(&models.Editor{ID: 3, Name: "Le Soleil"}, int64(12), nil)

	_, err := svc.Create(context.Background(), "Le Soleil", "admin@soleil.sn", nil, nil, &LogoUpload{
		Filename:    "logo.png",
		ContentType: "image/png",
		Size:        2048,
		Reader:      strings.NewReader("png bytes"),
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

// A broken mail broker must not fail publisher creation.
func TestCreateSurvivesMailFailure(t *testing.T) {
	repo := new(mockRepo)
	mail := new(mockMail)
	svc := New(discardLog(), repo, new(mockBlobs), mail)

	repo.On("CreateEditorWithAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&models.Editor{ID: 3}, int64(12), nil)
	mail.On("Publish", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	result, err := svc.Create(context.Background(), "Le Soleil", "admin@soleil.sn", nil, nil, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, result.AdminPassword)
}

func TestCreateDuplicateAdminEmail(t *testing.T) {
	repo := new(mockRepo)
	svc := New(discardLog(), repo, new(mockBlobs), nil)

	repo.On("CreateEditorWithAdmin", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, int64(0), storage.ErrDuplicate)

	_, err := svc.Create(context.Background(), "Le Soleil", "taken@soleil.sn", nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
}

func TestDeleteCleansUpBlobs(t *testing.T) {
	repo := new(mockRepo)
	blobs := new(mockBlobs)
	svc := New(discardLog(), repo, blobs, nil)

	urls := []string{
		"https://blobs.example.com/logos/a.png",
		"https://blobs.example.com/journaux/b.pdf",
	}
	repo.On("DeleteEditorCascade", mock.Anything, int64(3)).Return(urls, nil)
	for _, url := range urls {
		blobs.On("DeleteByURL", mock.Anything, url).Return(nil)
	}

	require.NoError(t, svc.Delete(context.Background(), 3))
	blobs.AssertExpectations(t)
}

func TestDeleteUnknownEditor(t *testing.T) {
	repo := new(mockRepo)
	svc := New(discardLog(), repo, new(mockBlobs), nil)

	repo.On("DeleteEditorCascade", mock.Anything, int64(99)).Return(nil, storage.ErrNotFound)

	err := svc.Delete(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}
