package redis

import (
	"context"
	"errors"

	"github.com/jayai/growth-hub/internal/application/engine"
	"github.com/jayai/growth-hub/pkg/circuitbreaker"
)

// ProfileCache implements engine.ProfileCache on top of the generic Cache.
// All calls go through a circuit breaker: when Redis is down the breaker
// opens and reads fall back to the repository without waiting on timeouts.
type ProfileCache struct {
	cache   *Cache
	breaker *circuitbreaker.Breaker
}

// NewProfileCache creates a new ProfileCache.
func NewProfileCache(cache *Cache, breaker *circuitbreaker.Breaker) *ProfileCache {
	return &ProfileCache{
		cache:   cache,
		breaker: breaker,
	}
}

// Get retrieves a cached profile snapshot.
// Returns ErrCacheMiss when the profile is not cached, and the breaker's
// ErrOpen when Redis is considered down.
func (p *ProfileCache) Get(ctx context.Context, userID string) (*engine.Profile, error) {
	var profile engine.Profile
	var miss bool
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		err := p.cache.Get(ctx, ProfileKey(userID), &profile)
		if errors.Is(err, ErrCacheMiss) {
			// A miss is a healthy response, not a Redis failure.
			miss = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if miss {
		return nil, ErrCacheMiss
	}
	return &profile, nil
}

// Set stores a profile snapshot.
func (p *ProfileCache) Set(ctx context.Context, profile *engine.Profile) error {
	if profile == nil {
		return nil
	}
	return p.breaker.Do(ctx, func(ctx context.Context) error {
		return p.cache.Set(ctx, ProfileKey(profile.UserID), profile, TTLProfileCache)
	})
}

// Invalidate drops the cached snapshot for a user. Called after every
// mutation that changes what the profile would show.
func (p *ProfileCache) Invalidate(ctx context.Context, userID string) error {
	return p.breaker.Do(ctx, func(ctx context.Context) error {
		return p.cache.Delete(ctx, ProfileKey(userID))
	})
}
