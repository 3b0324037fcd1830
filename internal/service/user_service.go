package service

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"userhub/internal/cache"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/storage"
)

const (
	avatarKeyPrefix = "avatars/"
	userCacheTTL    = 5 * time.Minute
)

// sortableColumns whitelists user columns accepted as sort_by values.
var sortableColumns = map[string]struct{}{
	"id":           {},
	"name":         {},
	"surname":      {},
	"username":     {},
	"email":        {},
	"phone_number": {},
	"role":         {},
	"group_id":     {},
	"is_blocked":   {},
	"created_at":   {},
	"updated_at":   {},
}

// UserPatch carries optional field updates; nil means "leave unchanged".
// Role, GroupID and IsBlocked are only honored on the privileged patch path.
type UserPatch struct {
	Name        *string `json:"name"`
	Surname     *string `json:"surname"`
	Username    *string `json:"username"`
	Email       *string `json:"email" validate:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Role        *string `json:"role" validate:"omitempty,oneof=USER ADMIN MODERATOR"`
	GroupID     *uint   `json:"group_id"`
	IsBlocked   *bool   `json:"is_blocked"`
}

// AvatarUpload is an optional avatar image accompanying a patch.
type AvatarUpload struct {
	Content     io.Reader
	ContentType string
}

// ListQuery narrows and orders the user listing.
type ListQuery struct {
	Page         int
	Limit        int
	FilterByName string
	SortBy       string
	OrderBy      string
}

// UserData is the outward representation of a user. Avatar carries the
// base64-encoded image when one is stored.
type UserData struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Surname     string    `json:"surname"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	PhoneNumber *string   `json:"phone_number"`
	Role        string    `json:"role"`
	GroupID     *uint     `json:"group_id"`
	IsBlocked   bool      `json:"is_blocked"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedAt  time.Time `json:"modified_at"`
	AvatarKey   string    `json:"avatar_key,omitempty"`
	Avatar      string    `json:"avatar,omitempty"`
}

// UserService exposes user CRUD on top of the repository, with avatar
// storage delegated to the object-store collaborator.
type UserService interface {
	Get(ctx context.Context, id uuid.UUID) (*UserData, error)
	Patch(ctx context.Context, id uuid.UUID, patch UserPatch, avatar *AvatarUpload) (*UserData, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, actor *model.User, q ListQuery) ([]UserData, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]UserData, error)
}

type userService struct {
	users   repository.UserRepository
	avatars storage.AvatarStore
	cache   *cache.Client
	log     *slog.Logger
}

// NewUserService builds a UserService.
func NewUserService(users repository.UserRepository, avatars storage.AvatarStore, cache *cache.Client, log *slog.Logger) UserService {
	return &userService{users: users, avatars: avatars, cache: cache, log: log}
}

func (s *userService) cacheKey(id uuid.UUID) string {
	return "user:" + id.String()
}

func (s *userService) Get(ctx context.Context, id uuid.UUID) (*UserData, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached UserData
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	data, err := s.withAvatar(ctx, user)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(data); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return data, nil
}

func (s *userService) Patch(ctx context.Context, id uuid.UUID, patch UserPatch, avatar *AvatarUpload) (*UserData, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.checkDuplicates(ctx, patch, user); err != nil {
		return nil, err
	}
	applyPatch(user, patch)

	if avatar != nil {
		key := avatarKeyPrefix + user.ID.String()
		if err := s.avatars.Upload(ctx, key, avatar.Content, avatar.ContentType); err != nil {
			return nil, err
		}
		user.AvatarKey = key
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	s.log.Info("user patched", "user_id", id)
	return s.withAvatar(ctx, user)
}

func (s *userService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	if user.AvatarKey != "" {
		// Best effort: a failed avatar cleanup must not block account deletion.
		if err := s.avatars.Delete(ctx, user.AvatarKey); err != nil {
			s.log.Warn("avatar cleanup failed", "user_id", id, "key", user.AvatarKey)
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	s.log.Info("user deleted", "user_id", id)
	return nil
}

func (s *userService) List(ctx context.Context, actor *model.User, q ListQuery) ([]UserData, error) {
	if q.SortBy != "" {
		if _, ok := sortableColumns[q.SortBy]; !ok {
			return nil, apperrors.ErrInvalidSortField
		}
	}

	params := repository.ListParams{
		Page:         q.Page,
		Limit:        q.Limit,
		FilterByName: q.FilterByName,
		SortBy:       q.SortBy,
		OrderBy:      q.OrderBy,
	}
	// Moderators only ever see their own group.
	if actor.Role == model.RoleModerator {
		params.GroupID = actor.GroupID
	}

	users, err := s.users.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return s.toDataList(ctx, users)
}

func (s *userService) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]UserData, error) {
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return s.toDataList(ctx, users)
}

func (s *userService) toDataList(ctx context.Context, users []model.User) ([]UserData, error) {
	out := make([]UserData, 0, len(users))
	for i := range users {
		data, err := s.withAvatar(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *data)
	}
	return out, nil
}

func (s *userService) withAvatar(ctx context.Context, user *model.User) (*UserData, error) {
	data := &UserData{
		ID:          user.ID,
		Name:        user.Name,
		Surname:     user.Surname,
		Username:    user.Username,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		GroupID:     user.GroupID,
		IsBlocked:   user.IsBlocked,
		CreatedAt:   user.CreatedAt,
		ModifiedAt:  user.UpdatedAt,
		AvatarKey:   user.AvatarKey,
	}
	if user.AvatarKey != "" {
		raw, err := s.avatars.Get(ctx, user.AvatarKey)
		if err != nil {
			return nil, err
		}
		data.Avatar = base64.StdEncoding.EncodeToString(raw)
	}
	return data, nil
}

func (s *userService) checkDuplicates(ctx context.Context, patch UserPatch, user *model.User) error {
	if patch.Email != nil && *patch.Email != user.Email {
		if _, err := s.users.FindByEmail(ctx, *patch.Email); err == nil {
			return apperrors.ErrEmailTaken
		}
	}
	if patch.Username != nil && *patch.Username != user.Username {
		if _, err := s.users.FindByUsername(ctx, *patch.Username); err == nil {
			return apperrors.ErrUsernameTaken
		}
	}
	if patch.PhoneNumber != nil && (user.PhoneNumber == nil || *patch.PhoneNumber != *user.PhoneNumber) {
		if _, err := s.users.FindByPhone(ctx, *patch.PhoneNumber); err == nil {
			return apperrors.ErrPhoneTaken
		}
	}
	return nil
}

func applyPatch(user *model.User, patch UserPatch) {
	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Surname != nil {
		user.Surname = *patch.Surname
	}
	if patch.Username != nil {
		user.Username = *patch.Username
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.PhoneNumber != nil {
		user.PhoneNumber = patch.PhoneNumber
	}
	if patch.Role != nil {
		user.Role = *patch.Role
	}
	if patch.GroupID != nil {
		user.GroupID = patch.GroupID
	}
	if patch.IsBlocked != nil {
		user.IsBlocked = *patch.IsBlocked
	}
}
