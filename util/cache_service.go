// api/util/cache_service.go

package util

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/sift/api/db"
	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/provider"
)

// CacheService is the typed facade over the Redis store shared by the
// evaluators: permission snapshots, role lookups, location history and the
// active-user set for proactive refresh.
type CacheService struct{}

func NewCacheService() *CacheService {
	return &CacheService{}
}

func (c *CacheService) GetEffectivePermissions(ctx context.Context, userID string) (*model.EffectivePermissions, error) {
	return db.GetCachedEffectivePermissions(ctx, userID)
}

func (c *CacheService) SetEffectivePermissions(ctx context.Context, userID string, perms *model.EffectivePermissions, ttl time.Duration) error {
	return db.CacheEffectivePermissions(ctx, userID, perms, ttl)
}

func (c *CacheService) DeleteEffectivePermissions(ctx context.Context, userID string) error {
	return db.DeleteCachedEffectivePermissions(ctx, userID)
}

func (c *CacheService) GetUserRole(ctx context.Context, userID string) (string, error) {
	return db.GetCachedUserRole(ctx, userID)
}

func (c *CacheService) SetUserRole(ctx context.Context, userID, role string) error {
	return db.CacheUserRole(ctx, userID, role)
}

func (c *CacheService) RecentLocations(ctx context.Context, userID string, n int) ([]model.GeoLocation, error) {
	return db.RecentLocationHistory(ctx, userID, n)
}

func (c *CacheService) AppendLocation(ctx context.Context, userID string, location model.GeoLocation) error {
	return db.AppendLocationHistory(ctx, userID, location)
}

func (c *CacheService) MarkUserActive(ctx context.Context, userID string) error {
	return db.MarkUserActive(ctx, userID)
}

func (c *CacheService) ActiveUsers(ctx context.Context) ([]string, error) {
	return db.ActiveUsers(ctx)
}

// CachingRoleResolver decorates a directory role lookup with the Redis cache.
// A cache failure falls through to the directory; it never fails the lookup.
type CachingRoleResolver struct {
	Resolver provider.RoleResolver
	Cache    *CacheService
}

func NewCachingRoleResolver(resolver provider.RoleResolver, cache *CacheService) *CachingRoleResolver {
	return &CachingRoleResolver{Resolver: resolver, Cache: cache}
}

func (r *CachingRoleResolver) ResolveRole(ctx context.Context, userID string) (string, error) {
	cached, err := r.Cache.GetUserRole(ctx, userID)
	if err != nil {
		logger.Warn("Role cache read failed, falling back to directory", zap.Error(err), zap.String("userID", userID))
	} else if cached != "" {
		return cached, nil
	}

	role, err := r.Resolver.ResolveRole(ctx, userID)
	if err != nil {
		return "", err
	}
	if role != "" {
		if err := r.Cache.SetUserRole(ctx, userID, role); err != nil {
			logger.Warn("Role cache write failed", zap.Error(err), zap.String("userID", userID))
		}
	}
	return role, nil
}
