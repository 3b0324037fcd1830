package service

import (
	"context"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"userhub/internal/cache"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// MockAvatarStore is a mock implementation of storage.AvatarStore.
type MockAvatarStore struct {
	mock.Mock
}

func (m *MockAvatarStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockAvatarStore) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockAvatarStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// A nil cache client behaves like a permanent cache miss, which keeps these
// tests on the repository path.
func noCache() *cache.Client { return nil }

func str(s string) *string { return &s }

func TestUserService_Get(t *testing.T) {
	id := uuid.New()
	user := &model.User{ID: id, Username: "adam", Email: "adam@example.com", Role: model.RoleUser}

	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		data, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "adam", data.Username)
		assert.Empty(t, data.Avatar)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.Get(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("avatar inlined as base64", func(t *testing.T) {
		withAvatar := &model.User{ID: id, Username: "adam", Role: model.RoleUser, AvatarKey: "avatars/" + id.String()}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(withAvatar, nil)
		mockAvatars := new(MockAvatarStore)
		mockAvatars.On("Get", mock.Anything, withAvatar.AvatarKey).Return([]byte{0x89, 0x50, 0x4e, 0x47}, nil)

		svc := NewUserService(mockRepo, mockAvatars, noCache(), testLogger())
		data, err := svc.Get(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47}), data.Avatar)
	})
}

func TestUserService_Patch(t *testing.T) {
	id := uuid.New()

	t.Run("field update", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", Email: "adam@example.com", Role: model.RoleUser}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Name == "Adam" && u.Surname == "Smith"
		})).Return(nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		data, err := svc.Patch(context.Background(), id, UserPatch{Name: str("Adam"), Surname: str("Smith")}, nil)
		require.NoError(t, err)
		assert.Equal(t, "Adam", data.Name)
		mockRepo.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", Email: "adam@example.com", Role: model.RoleUser}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("FindByEmail", mock.Anything, "taken@example.com").Return(&model.User{Email: "taken@example.com"}, nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.Patch(context.Background(), id, UserPatch{Email: str("taken@example.com")}, nil)
		assert.ErrorIs(t, err, apperrors.ErrEmailTaken)
	})

	t.Run("duplicate username", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", Email: "adam@example.com", Role: model.RoleUser}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("FindByUsername", mock.Anything, "beth").Return(&model.User{Username: "beth"}, nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.Patch(context.Background(), id, UserPatch{Username: str("beth")}, nil)
		assert.ErrorIs(t, err, apperrors.ErrUsernameTaken)
	})

	t.Run("avatar upload sets key", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", Role: model.RoleUser}
		key := "avatars/" + id.String()
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.AvatarKey == key
		})).Return(nil)
		mockAvatars := new(MockAvatarStore)
		mockAvatars.On("Upload", mock.Anything, key, mock.Anything, "image/png").Return(nil)
		mockAvatars.On("Get", mock.Anything, key).Return([]byte("img"), nil)

		svc := NewUserService(mockRepo, mockAvatars, noCache(), testLogger())
		upload := &AvatarUpload{Content: strings.NewReader("img"), ContentType: "image/png"}
		data, err := svc.Patch(context.Background(), id, UserPatch{}, upload)
		require.NoError(t, err)
		assert.Equal(t, key, data.AvatarKey)
		mockAvatars.AssertExpectations(t)
	})

	t.Run("constraint violation on save", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", Email: "adam@example.com", Role: model.RoleUser}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("Update", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.Patch(context.Background(), id, UserPatch{Name: str("Adam")}, nil)
		assert.ErrorIs(t, err, apperrors.ErrDuplicateUser)
	})
}

func TestUserService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("with avatar cleanup", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", AvatarKey: "avatars/" + id.String()}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("Delete", mock.Anything, id).Return(nil)
		mockAvatars := new(MockAvatarStore)
		mockAvatars.On("Delete", mock.Anything, user.AvatarKey).Return(nil)

		svc := NewUserService(mockRepo, mockAvatars, noCache(), testLogger())
		require.NoError(t, svc.Delete(context.Background(), id))
		mockAvatars.AssertExpectations(t)
	})

	t.Run("avatar cleanup failure does not block deletion", func(t *testing.T) {
		user := &model.User{ID: id, Username: "adam", AvatarKey: "avatars/" + id.String()}
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(user, nil)
		mockRepo.On("Delete", mock.Anything, id).Return(nil)
		mockAvatars := new(MockAvatarStore)
		mockAvatars.On("Delete", mock.Anything, user.AvatarKey).Return(apperrors.ErrUpstream)

		svc := NewUserService(mockRepo, mockAvatars, noCache(), testLogger())
		assert.NoError(t, svc.Delete(context.Background(), id))
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		assert.ErrorIs(t, svc.Delete(context.Background(), id), apperrors.ErrUserNotFound)
	})
}

func TestUserService_List(t *testing.T) {
	groupID := uint(7)
	admin := &model.User{ID: uuid.New(), Username: "admin", Role: model.RoleAdmin}
	moderator := &model.User{ID: uuid.New(), Username: "mod", Role: model.RoleModerator, GroupID: &groupID}

	t.Run("invalid sort field", func(t *testing.T) {
		svc := NewUserService(new(MockUserRepository), new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.List(context.Background(), admin, ListQuery{Page: 1, Limit: 10, SortBy: "password_hash"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidSortField)
	})

	t.Run("admin sees all groups", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("List", mock.Anything, mock.MatchedBy(func(p repository.ListParams) bool {
			return p.GroupID == nil
		})).Return([]model.User{}, nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.List(context.Background(), admin, ListQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("moderator scoped to own group", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("List", mock.Anything, mock.MatchedBy(func(p repository.ListParams) bool {
			return p.GroupID != nil && *p.GroupID == groupID
		})).Return([]model.User{}, nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		_, err := svc.List(context.Background(), moderator, ListQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("sort and filter pass through", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("List", mock.Anything, repository.ListParams{
			Page: 2, Limit: 5, FilterByName: "ad", SortBy: "username", OrderBy: "desc",
		}).Return([]model.User{{ID: uuid.New(), Username: "adam"}}, nil)

		svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
		out, err := svc.List(context.Background(), admin, ListQuery{
			Page: 2, Limit: 5, FilterByName: "ad", SortBy: "username", OrderBy: "desc",
		})
		require.NoError(t, err)
		assert.Len(t, out, 1)
	})
}

func TestUserService_GetByIDs(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New()}
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByIDs", mock.Anything, ids).Return([]model.User{
		{ID: ids[0], Username: "adam"},
		{ID: ids[1], Username: "beth"},
	}, nil)

	svc := NewUserService(mockRepo, new(MockAvatarStore), noCache(), testLogger())
	out, err := svc.GetByIDs(context.Background(), ids)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "adam", out[0].Username)
	assert.Equal(t, "beth", out[1].Username)
}
