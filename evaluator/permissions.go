// api/evaluator/permissions.go
package evaluator

import (
	"context"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/provider"
	"github.com/dev-mohitbeniwal/sift/api/util"
)

const directoryFetchTimeout = 10 * time.Second

// PermissionsCache is the slice of the cache service the aggregator needs.
type PermissionsCache interface {
	GetEffectivePermissions(ctx context.Context, userID string) (*model.EffectivePermissions, error)
	SetEffectivePermissions(ctx context.Context, userID string, perms *model.EffectivePermissions, ttl time.Duration) error
	DeleteEffectivePermissions(ctx context.Context, userID string) error
}

// PermissionAggregator merges project-based, hierarchical and temporary
// permissions into one per-user snapshot, memoized in the cache for the
// policy's refresh interval. Recomputation is single-flight per user:
// concurrent cold-cache callers share one directory round trip.
type PermissionAggregator struct {
	policy     model.DynamicPermissionPolicy
	membership provider.MembershipProvider
	hierarchy  provider.HierarchyProvider
	grants     provider.GrantProvider
	cache      PermissionsCache
	group      singleflight.Group
}

func NewPermissionAggregator(
	policy model.DynamicPermissionPolicy,
	membership provider.MembershipProvider,
	hierarchy provider.HierarchyProvider,
	grants provider.GrantProvider,
	cache PermissionsCache,
	eventBus *util.EventBus,
) *PermissionAggregator {
	aggregator := &PermissionAggregator{
		policy:     policy,
		membership: membership,
		hierarchy:  hierarchy,
		grants:     grants,
		cache:      cache,
	}

	if eventBus != nil {
		eventBus.Subscribe(util.EventPermissionsInvalidate, func(ctx context.Context, event util.Event) error {
			userID, ok := event.Payload.(string)
			if !ok {
				return nil
			}
			return aggregator.Invalidate(ctx, userID)
		})
	}

	return aggregator
}

// GetEffectivePermissions is cache-first. Temporary grants are re-filtered at
// read time, so a grant that expired mid-TTL disappears immediately even
// though the surrounding entry is still fresh.
func (a *PermissionAggregator) GetEffectivePermissions(ctx context.Context, userID string) (model.EffectivePermissions, error) {
	if !a.policy.Enabled {
		return model.EffectivePermissions{LastUpdated: time.Now().UTC()}, nil
	}

	cached, err := a.cache.GetEffectivePermissions(ctx, userID)
	if err != nil {
		// Cache trouble forces a synchronous recompute, never a failure.
		logger.Warn("Permissions cache read failed, recomputing",
			zap.Error(err), zap.String("userID", userID))
	}
	if cached != nil {
		cached.TemporaryGrants = cached.ActiveGrants(time.Now())
		return *cached, nil
	}

	result, err, shared := a.group.Do(userID, func() (interface{}, error) {
		return a.aggregate(ctx, userID), nil
	})
	if err != nil {
		// The aggregate closure never errors; fail closed regardless.
		logger.Error("Permission aggregation failed", zap.Error(err), zap.String("userID", userID))
		return model.EffectivePermissions{LastUpdated: time.Now().UTC()}, nil
	}
	if shared {
		logger.Debug("Shared in-flight permission aggregation", zap.String("userID", userID))
	}

	return result.(model.EffectivePermissions), nil
}

// Invalidate drops the cached snapshot so the next request recomputes.
func (a *PermissionAggregator) Invalidate(ctx context.Context, userID string) error {
	logger.Info("Invalidating cached permissions", zap.String("userID", userID))
	return a.cache.DeleteEffectivePermissions(ctx, userID)
}

// Refresh recomputes and re-caches one user's snapshot regardless of TTL.
func (a *PermissionAggregator) Refresh(ctx context.Context, userID string) {
	a.group.Do(userID, func() (interface{}, error) {
		return a.aggregate(ctx, userID), nil
	})
}

// StartRefresher schedules proactive recomputation of recently-active users at
// half the refresh interval, so hot-path requests rarely hit a cold cache.
// This is an optimization; correctness rests on the TTL alone.
func (a *PermissionAggregator) StartRefresher(c *cron.Cron, activeUsers func(ctx context.Context) ([]string, error)) error {
	if !a.policy.Enabled {
		return nil
	}
	interval := time.Duration(a.policy.RefreshIntervalSeconds) * time.Second / 2
	if interval < time.Second {
		interval = time.Second
	}

	_, err := c.AddFunc("@every "+interval.String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), directoryFetchTimeout*2)
		defer cancel()

		users, err := activeUsers(ctx)
		if err != nil {
			logger.Warn("Could not list active users for refresh", zap.Error(err))
			return
		}
		for _, userID := range users {
			a.Refresh(ctx, userID)
		}
		if len(users) > 0 {
			logger.Debug("Proactively refreshed permissions", zap.Int("users", len(users)))
		}
	})
	return err
}

// aggregate assembles a fresh snapshot. Each source degrades independently to
// an empty contribution; the worst case is an empty, maximally-restrictive
// permission set, never an error surfaced to the pipeline.
func (a *PermissionAggregator) aggregate(ctx context.Context, userID string) model.EffectivePermissions {
	perms := model.EffectivePermissions{LastUpdated: time.Now().UTC()}

	if a.policy.ProjectBasedAccess.Enabled {
		fetchCtx, cancel := context.WithTimeout(ctx, directoryFetchTimeout)
		membership, err := a.membership.FetchProjectMembership(fetchCtx, userID)
		cancel()
		if err != nil {
			logger.Warn("Project membership fetch failed, contributing empty set",
				zap.Error(err), zap.String("userID", userID))
		} else {
			for _, project := range membership.Projects {
				if _, configured := a.policy.ProjectBasedAccess.ProjectPermissions[project]; configured {
					perms.Projects = append(perms.Projects, project)
				}
			}
			perms.Organizations = membership.Organizations
		}
	}

	if a.policy.OrganizationalHierarchy.Enabled {
		fetchCtx, cancel := context.WithTimeout(ctx, directoryFetchTimeout)
		hierarchy, err := a.hierarchy.FetchUserHierarchy(fetchCtx, userID)
		cancel()
		if err != nil {
			logger.Warn("Hierarchy fetch failed, contributing empty set",
				zap.Error(err), zap.String("userID", userID))
		} else {
			if hierarchy.Department != "" {
				perms.Departments = append(perms.Departments, hierarchy.Department)
				if a.policy.OrganizationalHierarchy.InheritedPermissions {
					perms.Departments = append(perms.Departments,
						a.expandDepartments(hierarchy.Department)...)
				}
			}
			if hierarchy.ClassificationLevel != "" {
				if a.policy.OrganizationalHierarchy.InheritedPermissions {
					perms.DataClassifications = model.ExpandClassification(hierarchy.ClassificationLevel)
				} else {
					perms.DataClassifications = []string{hierarchy.ClassificationLevel}
				}
			}
		}
	}

	if a.policy.TemporaryAccess.Enabled {
		fetchCtx, cancel := context.WithTimeout(ctx, directoryFetchTimeout)
		grants, err := a.grants.FetchTemporaryGrants(fetchCtx, userID)
		cancel()
		if err != nil {
			logger.Warn("Temporary grant fetch failed, contributing empty set",
				zap.Error(err), zap.String("userID", userID))
		} else {
			now := time.Now()
			for _, grant := range grants {
				if grant.ExpiresAt.After(now) {
					perms.TemporaryGrants = append(perms.TemporaryGrants, grant)
				}
			}
		}
	}

	perms.Projects = dedupe(perms.Projects)
	perms.Organizations = dedupe(perms.Organizations)
	perms.Departments = dedupe(perms.Departments)
	perms.DataClassifications = dedupe(perms.DataClassifications)

	ttl := time.Duration(a.policy.RefreshIntervalSeconds) * time.Second
	if err := a.cache.SetEffectivePermissions(ctx, userID, &perms, ttl); err != nil {
		logger.Warn("Permissions cache write failed",
			zap.Error(err), zap.String("userID", userID))
	}

	return perms
}

// expandDepartments walks the configured parent map transitively from the
// given department.
func (a *PermissionAggregator) expandDepartments(department string) []string {
	var expanded []string
	seen := map[string]bool{department: true}
	queue := []string{department}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, parent := range a.policy.OrganizationalHierarchy.Hierarchy[current] {
			if !seen[parent] {
				seen[parent] = true
				expanded = append(expanded, parent)
				queue = append(queue, parent)
			}
		}
	}
	return expanded
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return values
	}
	seen := make(map[string]bool, len(values))
	out := values[:0]
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
