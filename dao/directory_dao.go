// api/dao/directory_dao.go
package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/provider"
)

// Node labels and relationship types in the directory graph.
const (
	LabelUser         = "USER"
	LabelRole         = "ROLE"
	LabelProject      = "PROJECT"
	LabelOrganization = "ORGANIZATION"
	LabelDepartment   = "DEPARTMENT"
	LabelResource     = "RESOURCE"

	RelHasRole       = "HAS_ROLE"
	RelMemberOf      = "MEMBER_OF"
	RelBelongsTo     = "BELONGS_TO"
	RelPartOf        = "PART_OF"
	RelGrantedAccess = "GRANTED_ACCESS"
)

// DirectoryDAO reads identity data from the Neo4j directory graph: roles,
// project membership, organizational placement and temporary grants. It backs
// the provider capabilities the evaluators consume.
type DirectoryDAO struct {
	Driver neo4j.Driver
}

var (
	_ provider.RoleResolver       = (*DirectoryDAO)(nil)
	_ provider.MembershipProvider = (*DirectoryDAO)(nil)
	_ provider.HierarchyProvider  = (*DirectoryDAO)(nil)
	_ provider.GrantProvider      = (*DirectoryDAO)(nil)
)

func NewDirectoryDAO(driver neo4j.Driver) *DirectoryDAO {
	return &DirectoryDAO{Driver: driver}
}

// ResolveRole returns the user's primary role name. Missing users and users
// without a role resolve to the empty string; callers decide the fallback.
func (dao *DirectoryDAO) ResolveRole(ctx context.Context, userID string) (string, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
			MATCH (u:` + LabelUser + ` {id: $userID})-[:` + RelHasRole + `]->(r:` + LabelRole + `)
			RETURN r.name AS role
			LIMIT 1
		`
		res, err := tx.Run(query, map[string]interface{}{"userID": userID})
		if err != nil {
			return nil, err
		}
		if res.Next() {
			role, _ := res.Record().Get("role")
			return role, nil
		}
		return "", res.Err()
	})
	if err != nil {
		logger.Error("Failed to resolve role", zap.Error(err), zap.String("userID", userID))
		return "", fmt.Errorf("failed to resolve role for %s: %w", userID, err)
	}

	role, _ := result.(string)
	return role, nil
}

// FetchProjectMembership returns the projects the user is a member of and the
// organizations they belong to.
func (dao *DirectoryDAO) FetchProjectMembership(ctx context.Context, userID string) (provider.Membership, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
			MATCH (u:` + LabelUser + ` {id: $userID})
			OPTIONAL MATCH (u)-[:` + RelMemberOf + `]->(p:` + LabelProject + `)
			OPTIONAL MATCH (u)-[:` + RelBelongsTo + `]->(o:` + LabelOrganization + `)
			RETURN collect(DISTINCT p.id) AS projects, collect(DISTINCT o.id) AS organizations
		`
		res, err := tx.Run(query, map[string]interface{}{"userID": userID})
		if err != nil {
			return nil, err
		}
		if res.Next() {
			record := res.Record()
			projects, _ := record.Get("projects")
			organizations, _ := record.Get("organizations")
			return provider.Membership{
				Projects:      toStringSlice(projects),
				Organizations: toStringSlice(organizations),
			}, nil
		}
		return provider.Membership{}, res.Err()
	})
	if err != nil {
		logger.Error("Failed to fetch project membership", zap.Error(err), zap.String("userID", userID))
		return provider.Membership{}, fmt.Errorf("failed to fetch membership for %s: %w", userID, err)
	}

	membership, _ := result.(provider.Membership)
	return membership, nil
}

// FetchUserHierarchy returns the user's department and data-classification
// clearance level.
func (dao *DirectoryDAO) FetchUserHierarchy(ctx context.Context, userID string) (provider.Hierarchy, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
			MATCH (u:` + LabelUser + ` {id: $userID})
			OPTIONAL MATCH (u)-[:` + RelPartOf + `]->(d:` + LabelDepartment + `)
			RETURN d.name AS department, u.classificationLevel AS classificationLevel
		`
		res, err := tx.Run(query, map[string]interface{}{"userID": userID})
		if err != nil {
			return nil, err
		}
		if res.Next() {
			record := res.Record()
			department, _ := record.Get("department")
			classification, _ := record.Get("classificationLevel")
			return provider.Hierarchy{
				Department:          toString(department),
				ClassificationLevel: toString(classification),
			}, nil
		}
		return provider.Hierarchy{}, res.Err()
	})
	if err != nil {
		logger.Error("Failed to fetch user hierarchy", zap.Error(err), zap.String("userID", userID))
		return provider.Hierarchy{}, fmt.Errorf("failed to fetch hierarchy for %s: %w", userID, err)
	}

	hierarchy, _ := result.(provider.Hierarchy)
	return hierarchy, nil
}

// FetchTemporaryGrants returns only grants whose expiry is still in the
// future; expired grants never leave the directory layer.
func (dao *DirectoryDAO) FetchTemporaryGrants(ctx context.Context, userID string) ([]model.TemporaryGrant, error) {
	session := dao.Driver.NewSession(neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close()

	result, err := session.ReadTransaction(func(tx neo4j.Transaction) (interface{}, error) {
		query := `
			MATCH (u:` + LabelUser + ` {id: $userID})-[g:` + RelGrantedAccess + `]->(res:` + LabelResource + `)
			WHERE g.expiresAt > $now
			RETURN res.id AS resourceID, g.permissions AS permissions,
			       g.expiresAt AS expiresAt, g.grantedBy AS grantedBy, g.reason AS reason
		`
		res, err := tx.Run(query, map[string]interface{}{
			"userID": userID,
			"now":    time.Now().UTC().Format(time.RFC3339),
		})
		if err != nil {
			return nil, err
		}

		var grants []model.TemporaryGrant
		for res.Next() {
			record := res.Record()
			resourceID, _ := record.Get("resourceID")
			permissions, _ := record.Get("permissions")
			expiresAt, _ := record.Get("expiresAt")
			grantedBy, _ := record.Get("grantedBy")
			reason, _ := record.Get("reason")

			expiry, err := time.Parse(time.RFC3339, toString(expiresAt))
			if err != nil {
				logger.Warn("Skipping grant with malformed expiry",
					zap.String("userID", userID),
					zap.String("resourceID", toString(resourceID)))
				continue
			}

			grants = append(grants, model.TemporaryGrant{
				ResourceID:  toString(resourceID),
				Permissions: toStringSlice(permissions),
				ExpiresAt:   expiry,
				GrantedBy:   toString(grantedBy),
				Reason:      toString(reason),
			})
		}
		return grants, res.Err()
	})
	if err != nil {
		logger.Error("Failed to fetch temporary grants", zap.Error(err), zap.String("userID", userID))
		return nil, fmt.Errorf("failed to fetch grants for %s: %w", userID, err)
	}

	grants, _ := result.([]model.TemporaryGrant)
	return grants, nil
}

func toString(value interface{}) string {
	s, _ := value.(string)
	return s
}

func toStringSlice(value interface{}) []string {
	items, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
