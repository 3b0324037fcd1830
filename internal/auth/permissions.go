package auth

import (
	"context"

	"github.com/google/uuid"

	apperrors "userhub/internal/errors"
	"userhub/internal/model"
)

// Permission decides whether actor may act on the user identified by
// resourceUserID. Predicates are evaluated after identity resolution and
// have no side effects on denial.
type Permission func(ctx context.Context, actor *model.User, resourceUserID uuid.UUID) error

// UserLookup is the narrow read interface ModeratorSameGroup needs to fetch
// the resource-owning user.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

// AdminOnly passes iff the actor has the ADMIN role.
func AdminOnly(ctx context.Context, actor *model.User, _ uuid.UUID) error {
	if actor.Role == model.RoleAdmin {
		return nil
	}
	return apperrors.ErrInsufficientPrivilege
}

// ModeratorOnly passes iff the actor has the MODERATOR role.
func ModeratorOnly(ctx context.Context, actor *model.User, _ uuid.UUID) error {
	if actor.Role == model.RoleModerator {
		return nil
	}
	return apperrors.ErrInsufficientPrivilege
}

// ModeratorSameGroup passes iff the actor is a MODERATOR with a group and the
// resource-owning user belongs to the same group.
func ModeratorSameGroup(users UserLookup) Permission {
	return func(ctx context.Context, actor *model.User, resourceUserID uuid.UUID) error {
		if actor.Role != model.RoleModerator || actor.GroupID == nil {
			return apperrors.ErrInsufficientPrivilege
		}
		owner, err := users.FindByID(ctx, resourceUserID)
		if err != nil {
			return apperrors.ErrInsufficientPrivilege
		}
		if owner.GroupID == nil || *owner.GroupID != *actor.GroupID {
			return apperrors.ErrInsufficientPrivilege
		}
		return nil
	}
}

// AnyOf evaluates perms in order and allows on the first success. If all
// fail it denies with a single aggregate error; individual reasons are
// discarded.
func AnyOf(perms ...Permission) Permission {
	return func(ctx context.Context, actor *model.User, resourceUserID uuid.UUID) error {
		for _, perm := range perms {
			if err := perm(ctx, actor, resourceUserID); err == nil {
				return nil
			}
		}
		return apperrors.ErrInsufficientPrivilege
	}
}
