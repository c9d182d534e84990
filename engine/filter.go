// api/engine/filter.go
package engine

import "github.com/dev-mohitbeniwal/sift/api/model"

// BuildFilterPredicate assembles the security filter ANDed into every search.
// The base clause restricts hits to documents whose allowed-subject list names
// the user (or is public/open to all); project, organization and
// classification clauses are added only when the user actually holds
// something in that dimension — an empty permission set therefore produces
// the most restrictive filter, not the least.
func BuildFilterPredicate(userID string, perms model.EffectivePermissions) map[string]interface{} {
	clauses := []interface{}{
		map[string]interface{}{
			"terms": map[string]interface{}{
				"allowed_users": []string{userID, "public", "all"},
			},
		},
	}

	if len(perms.Projects) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{
				"projects": perms.Projects,
			},
		})
	}
	if len(perms.Organizations) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{
				"allowed_organizations": perms.Organizations,
			},
		})
	}
	if len(perms.DataClassifications) > 0 {
		clauses = append(clauses, map[string]interface{}{
			"terms": map[string]interface{}{
				"data_classification": perms.DataClassifications,
			},
		})
	}

	return map[string]interface{}{
		"bool": map[string]interface{}{
			"filter": clauses,
		},
	}
}
