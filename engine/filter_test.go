// api/engine/filter_test.go
package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/sift/api/engine"
	"github.com/dev-mohitbeniwal/sift/api/model"
)

func filterClauses(t *testing.T, filter map[string]interface{}) []interface{} {
	t.Helper()
	boolQuery, ok := filter["bool"].(map[string]interface{})
	require.True(t, ok, "filter must be a bool query")
	clauses, ok := boolQuery["filter"].([]interface{})
	require.True(t, ok, "bool query must carry a filter list")
	return clauses
}

func termsClause(clause interface{}) map[string]interface{} {
	terms, _ := clause.(map[string]interface{})["terms"].(map[string]interface{})
	return terms
}

func TestBuildFilterPredicate_EmptyPermissionsIsMostRestrictive(t *testing.T) {
	filter := engine.BuildFilterPredicate("alice", model.EffectivePermissions{})

	clauses := filterClauses(t, filter)
	require.Len(t, clauses, 1)

	terms := termsClause(clauses[0])
	assert.Equal(t, []string{"alice", "public", "all"}, terms["allowed_users"])
}

func TestBuildFilterPredicate_AddsOneClausePerHeldDimension(t *testing.T) {
	perms := model.EffectivePermissions{
		Projects:            []string{"proj-a", "proj-b"},
		Organizations:       []string{"acme"},
		DataClassifications: []string{"internal", "public"},
	}

	filter := engine.BuildFilterPredicate("alice", perms)
	clauses := filterClauses(t, filter)
	require.Len(t, clauses, 4)

	assert.Equal(t, []string{"alice", "public", "all"}, termsClause(clauses[0])["allowed_users"])
	assert.Equal(t, []string{"proj-a", "proj-b"}, termsClause(clauses[1])["projects"])
	assert.Equal(t, []string{"acme"}, termsClause(clauses[2])["allowed_organizations"])
	assert.Equal(t, []string{"internal", "public"}, termsClause(clauses[3])["data_classification"])
}

func TestBuildFilterPredicate_SkipsEmptyDimensions(t *testing.T) {
	perms := model.EffectivePermissions{
		Projects: []string{"proj-a"},
	}

	filter := engine.BuildFilterPredicate("bob", perms)
	clauses := filterClauses(t, filter)
	require.Len(t, clauses, 2)
	assert.Equal(t, []string{"proj-a"}, termsClause(clauses[1])["projects"])
}
