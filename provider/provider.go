// api/provider/provider.go
package provider

import (
	"context"

	"github.com/dev-mohitbeniwal/sift/api/model"
)

// The evaluators consume these capabilities as interfaces; concrete
// implementations live in this package (geo, vpn) and in the dao package
// (directory-backed lookups).

type RoleResolver interface {
	ResolveRole(ctx context.Context, userID string) (string, error)
}

type GeoLocator interface {
	ResolveGeoLocation(ctx context.Context, ipAddress string) (model.GeoLocation, error)
}

type VPNDetector interface {
	DetectVPN(ctx context.Context, ipAddress string) (bool, error)
}

// Membership is a user's project and organization membership snapshot.
type Membership struct {
	Projects      []string `json:"projects"`
	Organizations []string `json:"organizations"`
}

type MembershipProvider interface {
	FetchProjectMembership(ctx context.Context, userID string) (Membership, error)
}

// Hierarchy is a user's position in the organizational structure.
type Hierarchy struct {
	Department          string `json:"department"`
	ClassificationLevel string `json:"classification_level"`
}

type HierarchyProvider interface {
	FetchUserHierarchy(ctx context.Context, userID string) (Hierarchy, error)
}

type GrantProvider interface {
	FetchTemporaryGrants(ctx context.Context, userID string) ([]model.TemporaryGrant, error)
}
