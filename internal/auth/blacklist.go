package auth

import (
	"context"
	"time"

	"userhub/internal/cache"
)

const blacklistKeyPrefix = "blacklist:token:"

// BlacklistStore is an expiring deny-list of token strings that are valid by
// signature but revoked (used refresh/reset tokens, logout).
type BlacklistStore interface {
	Revoke(ctx context.Context, token string, window time.Duration) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Blacklist stores revoked tokens in Redis. The entry TTL equals the
// blacklist window, so cleanup is automatic: once the entry lapses the token
// itself has expired and needs no deny-list.
type Blacklist struct {
	cache *cache.Client
}

var _ BlacklistStore = (*Blacklist)(nil)

// NewBlacklist creates a Redis-backed blacklist.
func NewBlacklist(cache *cache.Client) *Blacklist {
	return &Blacklist{cache: cache}
}

// Revoke marks token unusable for the given window.
func (b *Blacklist) Revoke(ctx context.Context, token string, window time.Duration) error {
	return b.cache.SetStrict(ctx, blacklistKeyPrefix+token, []byte("1"), window)
}

// IsRevoked reports whether token has been revoked. Store errors propagate:
// an unreachable blacklist must not silently accept revoked tokens.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, blacklistKeyPrefix+token)
}
