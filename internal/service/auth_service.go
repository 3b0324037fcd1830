package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userhub/internal/auth"
	"userhub/internal/email"
	apperrors "userhub/internal/errors"
	"userhub/internal/model"
	"userhub/internal/repository"
)

const bcryptCost = 10

const resetEmailSubject = "Reset password email"

// TokenPair is an access/refresh token pair issued on signup, login and
// refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService orchestrates signup, login, token rotation and password reset
// over the user store, token service, blacklist and mail collaborators.
type AuthService interface {
	Signup(ctx context.Context, username, email, password string) (*TokenPair, error)
	Login(ctx context.Context, username, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	RequestPasswordReset(ctx context.Context, email string) (resetLink string, err error)
	ResetPassword(ctx context.Context, resetToken, newPassword string) error
	// Authenticate resolves a presented token to its user: blacklist check,
	// signature/expiry validation, then user load. Every failure collapses to
	// an unauthorized outcome.
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type authService struct {
	users     repository.UserRepository
	tokens    *auth.JWTService
	blacklist auth.BlacklistStore
	mail      email.Sender
	baseURL   string
	log       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.JWTService,
	blacklist auth.BlacklistStore,
	mail email.Sender,
	baseURL string,
	log *slog.Logger,
) AuthService {
	return &authService{
		users:     users,
		tokens:    tokens,
		blacklist: blacklist,
		mail:      mail,
		baseURL:   baseURL,
		log:       log,
	}
}

// Signup registers a new user and returns a fresh token pair.
func (s *authService) Signup(ctx context.Context, username, emailAddr, password string) (*TokenPair, error) {
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		s.log.Debug("signup rejected: username taken", "username", username)
		return nil, apperrors.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if _, err := s.users.FindByEmail(ctx, emailAddr); err == nil {
		s.log.Debug("signup rejected: email taken", "email", emailAddr)
		return nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        emailAddr,
		PasswordHash: string(hashed),
		Role:         model.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique constraint is the authoritative conflict signal; the
		// lookups above only close the common path early.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateUser
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user signed up", "username", username)
	return s.issuePair(user)
}

// Login verifies credentials and returns a fresh token pair. Unknown
// usernames and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		s.log.Debug("login failed: unknown username", "username", username)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Debug("login failed: password mismatch", "username", username)
		return nil, apperrors.ErrInvalidCredentials
	}

	s.log.Info("user logged in", "username", username)
	return s.issuePair(user)
}

// Refresh rotates a refresh token: the presented token is blacklisted for
// the full refresh window and a brand-new pair is issued.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	user, err := s.Authenticate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if err := s.blacklist.Revoke(ctx, refreshToken, s.tokens.RefreshTokenTTL()); err != nil {
		// Without the revocation the old token would stay usable, so no new
		// pair may be issued.
		s.log.Error("blacklist refresh token", "err", err)
		return nil, apperrors.ErrUpstream
	}

	s.log.Info("tokens refreshed", "username", user.Username)
	return s.issuePair(user)
}

// Logout revokes the presented refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	user, err := s.Authenticate(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.blacklist.Revoke(ctx, refreshToken, s.tokens.RefreshTokenTTL()); err != nil {
		s.log.Error("blacklist refresh token", "err", err)
		return apperrors.ErrUpstream
	}
	s.log.Info("user logged out", "username", user.Username)
	return nil
}

// RequestPasswordReset mails a reset link to a known email address and
// returns the link. Exposing the link in the response is deliberate: the
// test flow does not need an inbox.
func (s *authService) RequestPasswordReset(ctx context.Context, emailAddr string) (string, error) {
	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("password reset rejected: unknown email", "email", emailAddr)
			return "", apperrors.ErrUserNotFound
		}
		return "", fmt.Errorf("find user by email: %w", err)
	}

	token, err := s.tokens.GenerateResetToken(user.Email)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	link := fmt.Sprintf("%s/reset-password?reset_password_token=%s", s.baseURL, token)

	if err := s.mail.Send(ctx, user.Email, resetEmailSubject, link); err != nil {
		return "", err
	}

	s.log.Info("password reset email sent", "email", emailAddr)
	return link, nil
}

// ResetPassword consumes a reset token and stores a new password hash. The
// token is blacklisted before the hash is written, so it is single-use.
func (s *authService) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	revoked, err := s.blacklist.IsRevoked(ctx, resetToken)
	if err != nil {
		s.log.Error("blacklist lookup", "err", err)
		return apperrors.ErrUpstream
	}
	if revoked {
		return apperrors.ErrInvalidToken
	}

	claims, err := s.tokens.ValidateResetToken(resetToken)
	if err != nil {
		s.log.Debug("password reset failed: bad token", "err", err)
		return apperrors.ErrInvalidToken
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return apperrors.ErrInvalidToken
	}

	if err := s.blacklist.Revoke(ctx, resetToken, s.tokens.ResetTokenTTL()); err != nil {
		s.log.Error("blacklist reset token", "err", err)
		return apperrors.ErrUpstream
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.log.Info("password reset", "username", user.Username)
	return nil
}

// Authenticate resolves token to its user.
func (s *authService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		s.log.Error("blacklist lookup", "err", err)
		return nil, apperrors.ErrUpstream
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.users.FindByUsername(ctx, claims.Username)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	return user, nil
}

func (s *authService) issuePair(user *model.User) (*TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
