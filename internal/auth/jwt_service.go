package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"userhub/internal/model"
)

const resetTokenType = "reset"

var (
	// ErrInvalidToken is returned for tokens with a bad signature or format.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for tokens past their expiry.
	ErrExpiredToken = errors.New("token has expired")
	// ErrMalformedClaims is returned when a token verifies but is missing
	// required claims, or carries the wrong token type.
	ErrMalformedClaims = errors.New("malformed token claims")
)

// Claims is the signed payload of access and refresh tokens. The two
// variants share a shape and differ only in lifetime.
type Claims struct {
	Username  string `json:"username"`
	UserID    string `json:"user_id"`
	Role      string `json:"role"`
	IsBlocked bool   `json:"is_blocked"`
	jwt.RegisteredClaims
}

// ResetClaims is the signed payload of password-reset tokens. The subject is
// the email, not the username, so the decode path is distinct.
type ResetClaims struct {
	Email string `json:"email"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

// JWTService issues and validates signed tokens. It is stateless apart from
// the signing secret and configured lifetimes; revocation (the blacklist) is
// layered above it by the callers.
type JWTService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
}

// NewJWTService creates a JWT service with the given secret and lifetimes.
func NewJWTService(secret string, accessTTL, refreshTTL, resetTTL time.Duration) *JWTService {
	return &JWTService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		resetTTL:   resetTTL,
	}
}

// RefreshTokenTTL returns the configured refresh-token lifetime. Callers use
// it as the blacklist window when revoking refresh tokens.
func (s *JWTService) RefreshTokenTTL() time.Duration { return s.refreshTTL }

// ResetTokenTTL returns the configured reset-token lifetime.
func (s *JWTService) ResetTokenTTL() time.Duration { return s.resetTTL }

// GenerateAccessToken generates a short-lived access token for the user.
func (s *JWTService) GenerateAccessToken(user *model.User) (string, error) {
	return s.generate(user, s.accessTTL)
}

// GenerateRefreshToken generates a long-lived refresh token for the user.
func (s *JWTService) GenerateRefreshToken(user *model.User) (string, error) {
	return s.generate(user, s.refreshTTL)
}

func (s *JWTService) generate(user *model.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username:  user.Username,
		UserID:    user.ID.String(),
		Role:      user.Role,
		IsBlocked: user.IsBlocked,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti keeps tokens issued within the same second distinct,
			// which rotation depends on: a reissued token must never equal
			// the one just blacklisted.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// GenerateResetToken generates a minutes-lived single-purpose token carrying
// the email as subject.
func (s *JWTService) GenerateResetToken(email string) (string, error) {
	now := time.Now()
	claims := &ResetClaims{
		Email: email,
		Type:  resetTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates an access or refresh token and returns its claims.
// It does not consult the blacklist; that requires external state and is the
// caller's responsibility.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Username == "" || claims.UserID == "" || claims.Role == "" {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

// ValidateResetToken validates a password-reset token and returns its claims.
func (s *JWTService) ValidateResetToken(tokenString string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Email == "" || claims.Type != resetTokenType {
		return nil, ErrMalformedClaims
	}
	return claims, nil
}

func (s *JWTService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrExpiredToken
		}
		return ErrInvalidToken
	}
	if !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
