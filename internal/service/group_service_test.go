package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
)

// MockGroupRepository is a mock implementation of GroupRepository.
type MockGroupRepository struct {
	mock.Mock
}

func (m *MockGroupRepository) Create(ctx context.Context, group *model.Group) error {
	args := m.Called(ctx, group)
	return args.Error(0)
}

func (m *MockGroupRepository) FindByID(ctx context.Context, id uint) (*model.Group, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockGroupRepository) List(ctx context.Context) ([]model.Group, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Group), args.Error(1)
}

func (m *MockGroupRepository) UpdateName(ctx context.Context, id uint, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockGroupRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockGroupRepository) CountUsers(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func TestGroupService_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		mockRepo := new(MockGroupRepository)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Group{ID: 1, Name: "engineering"}, nil)

		svc := NewGroupService(mockRepo, testLogger())
		group, err := svc.Get(context.Background(), 1)
		require.NoError(t, err)
		assert.Equal(t, "engineering", group.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockGroupRepository)
		mockRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		svc := NewGroupService(mockRepo, testLogger())
		_, err := svc.Get(context.Background(), 99)
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})
}

func TestGroupService_Rename(t *testing.T) {
	t.Run("renamed", func(t *testing.T) {
		mockRepo := new(MockGroupRepository)
		mockRepo.On("UpdateName", mock.Anything, uint(1), "platform").Return(nil)
		mockRepo.On("FindByID", mock.Anything, uint(1)).Return(&model.Group{ID: 1, Name: "platform"}, nil)

		svc := NewGroupService(mockRepo, testLogger())
		group, err := svc.Rename(context.Background(), 1, "platform")
		require.NoError(t, err)
		assert.Equal(t, "platform", group.Name)
	})

	t.Run("not found", func(t *testing.T) {
		mockRepo := new(MockGroupRepository)
		mockRepo.On("UpdateName", mock.Anything, uint(99), "platform").Return(gorm.ErrRecordNotFound)

		svc := NewGroupService(mockRepo, testLogger())
		_, err := svc.Rename(context.Background(), 99, "platform")
		assert.ErrorIs(t, err, apperrors.ErrGroupNotFound)
	})
}

func TestGroupService_Delete(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockGroupRepository)
		expectedError error
	}{
		{
			name: "empty group deleted",
			setupMock: func(m *MockGroupRepository) {
				m.On("CountUsers", mock.Anything, uint(1)).Return(int64(0), nil)
				m.On("Delete", mock.Anything, uint(1)).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "non-empty group rejected",
			setupMock: func(m *MockGroupRepository) {
				m.On("CountUsers", mock.Anything, uint(1)).Return(int64(3), nil)
			},
			expectedError: apperrors.ErrGroupNotEmpty,
		},
		{
			name: "unknown group",
			setupMock: func(m *MockGroupRepository) {
				m.On("CountUsers", mock.Anything, uint(1)).Return(int64(0), nil)
				m.On("Delete", mock.Anything, uint(1)).Return(gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrGroupNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockGroupRepository)
			tt.setupMock(mockRepo)

			svc := NewGroupService(mockRepo, testLogger())
			err := svc.Delete(context.Background(), 1)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
