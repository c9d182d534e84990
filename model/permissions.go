// api/model/permissions.go
package model

import "time"

// EffectivePermissions is the merged view of everything a user may touch,
// assembled from project membership, organizational hierarchy and temporary
// grants. Instances are immutable snapshots shared across concurrent requests
// for the same user until their cache TTL expires.
type EffectivePermissions struct {
	Projects            []string         `json:"projects"`
	Organizations       []string         `json:"organizations"`
	Departments         []string         `json:"departments"`
	DataClassifications []string         `json:"data_classifications"`
	TemporaryGrants     []TemporaryGrant `json:"temporary_grants"`
	LastUpdated         time.Time        `json:"last_updated"`
}

type TemporaryGrant struct {
	ResourceID  string    `json:"resource_id"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
	GrantedBy   string    `json:"granted_by"`
	Reason      string    `json:"reason"`
}

// ActiveGrants returns the grants still valid at the given instant. Expired
// grants are dropped at read time as well as at aggregation time, so a grant
// never outlives its expiry inside a still-fresh cache entry.
func (p EffectivePermissions) ActiveGrants(now time.Time) []TemporaryGrant {
	var active []TemporaryGrant
	for _, g := range p.TemporaryGrants {
		if g.ExpiresAt.After(now) {
			active = append(active, g)
		}
	}
	return active
}

// Classification levels ordered from most to least restrictive. A clearance at
// one level implicitly grants every level below it.
var classificationOrder = []string{"restricted", "confidential", "internal", "public"}

// ExpandClassification returns the given level plus every weaker level in the
// fixed ordering. Unknown levels expand to themselves only.
func ExpandClassification(level string) []string {
	for i, l := range classificationOrder {
		if l == level {
			out := make([]string, len(classificationOrder)-i)
			copy(out, classificationOrder[i:])
			return out
		}
	}
	return []string{level}
}
