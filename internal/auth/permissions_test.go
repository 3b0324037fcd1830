package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
)

// MockUserLookup is a mock implementation of UserLookup.
type MockUserLookup struct {
	mock.Mock
}

func (m *MockUserLookup) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func userWithRole(role string, groupID *uint) *model.User {
	return &model.User{ID: uuid.New(), Username: "actor", Role: role, GroupID: groupID}
}

func TestAdminOnly(t *testing.T) {
	tests := []struct {
		name    string
		role    string
		allowed bool
	}{
		{name: "admin passes", role: model.RoleAdmin, allowed: true},
		{name: "moderator denied", role: model.RoleModerator, allowed: false},
		{name: "user denied", role: model.RoleUser, allowed: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AdminOnly(context.Background(), userWithRole(tt.role, nil), uuid.New())
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInsufficientPrivilege)
			}
		})
	}
}

func TestModeratorOnly(t *testing.T) {
	err := ModeratorOnly(context.Background(), userWithRole(model.RoleModerator, nil), uuid.New())
	assert.NoError(t, err)

	err = ModeratorOnly(context.Background(), userWithRole(model.RoleAdmin, nil), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPrivilege)
}

func TestModeratorSameGroup(t *testing.T) {
	groupA := uint(1)
	groupB := uint(2)
	resourceID := uuid.New()

	tests := []struct {
		name      string
		actor     *model.User
		setupMock func(*MockUserLookup)
		allowed   bool
	}{
		{
			name:  "same group allowed",
			actor: userWithRole(model.RoleModerator, &groupA),
			setupMock: func(m *MockUserLookup) {
				m.On("FindByID", mock.Anything, resourceID).Return(&model.User{ID: resourceID, GroupID: &groupA}, nil)
			},
			allowed: true,
		},
		{
			name:  "different group denied",
			actor: userWithRole(model.RoleModerator, &groupA),
			setupMock: func(m *MockUserLookup) {
				m.On("FindByID", mock.Anything, resourceID).Return(&model.User{ID: resourceID, GroupID: &groupB}, nil)
			},
			allowed: false,
		},
		{
			name:  "owner without group denied",
			actor: userWithRole(model.RoleModerator, &groupA),
			setupMock: func(m *MockUserLookup) {
				m.On("FindByID", mock.Anything, resourceID).Return(&model.User{ID: resourceID}, nil)
			},
			allowed: false,
		},
		{
			name:      "moderator without group denied without lookup",
			actor:     userWithRole(model.RoleModerator, nil),
			setupMock: func(m *MockUserLookup) {},
			allowed:   false,
		},
		{
			name:      "non-moderator denied without lookup",
			actor:     userWithRole(model.RoleAdmin, &groupA),
			setupMock: func(m *MockUserLookup) {},
			allowed:   false,
		},
		{
			name:  "unknown owner denied",
			actor: userWithRole(model.RoleModerator, &groupA),
			setupMock: func(m *MockUserLookup) {
				m.On("FindByID", mock.Anything, resourceID).Return(nil, gorm.ErrRecordNotFound)
			},
			allowed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := new(MockUserLookup)
			tt.setupMock(lookup)

			err := ModeratorSameGroup(lookup)(context.Background(), tt.actor, resourceID)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrInsufficientPrivilege)
			}
			lookup.AssertExpectations(t)
		})
	}
}

func TestAnyOf(t *testing.T) {
	allow := func(ctx context.Context, actor *model.User, id uuid.UUID) error { return nil }
	deny := func(ctx context.Context, actor *model.User, id uuid.UUID) error {
		return errors.New("denied")
	}

	actor := userWithRole(model.RoleUser, nil)

	t.Run("first success wins", func(t *testing.T) {
		assert.NoError(t, AnyOf(allow, deny)(context.Background(), actor, uuid.New()))
	})

	t.Run("later success wins", func(t *testing.T) {
		assert.NoError(t, AnyOf(deny, deny, allow)(context.Background(), actor, uuid.New()))
	})

	t.Run("short circuits after success", func(t *testing.T) {
		called := false
		spy := func(ctx context.Context, actor *model.User, id uuid.UUID) error {
			called = true
			return nil
		}
		assert.NoError(t, AnyOf(allow, spy)(context.Background(), actor, uuid.New()))
		assert.False(t, called)
	})

	t.Run("all denials collapse to one error", func(t *testing.T) {
		err := AnyOf(deny, deny)(context.Background(), actor, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrInsufficientPrivilege)
	})

	t.Run("no predicates denies", func(t *testing.T) {
		err := AnyOf()(context.Background(), actor, uuid.New())
		assert.ErrorIs(t, err, apperrors.ErrInsufficientPrivilege)
	})
}
