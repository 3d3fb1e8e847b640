package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Access tokens are revoked by their jti until they would have expired anyway.
// Redis is used when configured; otherwise revocations live in process memory.
var (
	blacklistMu     sync.RWMutex
	blacklistClient *redis.Client
	localRevoked    = map[string]time.Time{}
)

const blacklistPrefix = "blacklist:access:"

// SetBlacklistClient configures the Redis client used for blacklist operations.
// Passing nil switches back to the in-process store.
func SetBlacklistClient(c *redis.Client) {
	blacklistMu.Lock()
	defer blacklistMu.Unlock()
	blacklistClient = c
}

func currentBlacklistClient() *redis.Client {
	blacklistMu.RLock()
	defer blacklistMu.RUnlock()
	return blacklistClient
}

// BlacklistAccessToken revokes the token id for ttl.
func BlacklistAccessToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if c := currentBlacklistClient(); c != nil {
		return c.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
	}
	blacklistMu.Lock()
	defer blacklistMu.Unlock()
	now := time.Now()
	for k, exp := range localRevoked {
		if now.After(exp) {
			delete(localRevoked, k)
		}
	}
	localRevoked[jti] = now.Add(ttl)
	return nil
}

// IsAccessTokenBlacklisted reports whether the token id has been revoked.
func IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	if c := currentBlacklistClient(); c != nil {
		exists, err := c.Exists(ctx, blacklistPrefix+jti).Result()
		if err != nil {
			return false, err
		}
		return exists > 0, nil
	}
	blacklistMu.RLock()
	defer blacklistMu.RUnlock()
	exp, ok := localRevoked[jti]
	return ok && time.Now().Before(exp), nil
}
