package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

// GroupService exposes admin-only group management.
type GroupService interface {
	Create(ctx context.Context, name string) (*model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	Get(ctx context.Context, id uint) (*model.Group, error)
	Rename(ctx context.Context, id uint, name string) (*model.Group, error)
	Delete(ctx context.Context, id uint) error
}

type groupService struct {
	groups repository.GroupRepository
	log    *slog.Logger
}

// NewGroupService builds a GroupService.
func NewGroupService(groups repository.GroupRepository, log *slog.Logger) GroupService {
	return &groupService{groups: groups, log: log}
}

func (s *groupService) Create(ctx context.Context, name string) (*model.Group, error) {
	group := &model.Group{Name: name}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.log.Info("group created", "group", name)
	return group, nil
}

func (s *groupService) List(ctx context.Context) ([]model.Group, error) {
	groups, err := s.groups.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) Get(ctx context.Context, id uint) (*model.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("find group: %w", err)
	}
	return group, nil
}

func (s *groupService) Rename(ctx context.Context, id uint, name string) (*model.Group, error) {
	if err := s.groups.UpdateName(ctx, id, name); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, fmt.Errorf("rename group: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes an empty group. Deleting a group that still has members is
// rejected rather than cascaded, so no user silently loses their scope.
func (s *groupService) Delete(ctx context.Context, id uint) error {
	count, err := s.groups.CountUsers(ctx, id)
	if err != nil {
		return fmt.Errorf("count group members: %w", err)
	}
	if count > 0 {
		return apperrors.ErrGroupNotEmpty
	}
	if err := s.groups.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrGroupNotFound
		}
		return fmt.Errorf("delete group: %w", err)
	}
	s.log.Info("group deleted", "group_id", id)
	return nil
}
