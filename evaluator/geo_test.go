// api/evaluator/geo_test.go
package evaluator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dev-mohitbeniwal/sift/api/evaluator"
	"github.com/dev-mohitbeniwal/sift/api/model"
	apimock "github.com/dev-mohitbeniwal/sift/api/test/mock"
)

func geoPolicy() model.GeoRestrictionPolicy {
	return model.GeoRestrictionPolicy{
		Enabled:          true,
		ExemptUsers:      []string{"field-agent"},
		AllowedCountries: []string{"JP", "US"},
	}
}

func newGeoEvaluator(t *testing.T, policy model.GeoRestrictionPolicy, geo *apimock.MockGeoLocator, vpn *apimock.MockVPNDetector, history *apimock.MockHistoryReader) *evaluator.GeoEvaluator {
	t.Helper()
	eval, err := evaluator.NewGeoEvaluator(policy, geo, vpn, history)
	require.NoError(t, err)
	return eval
}

func TestGeoEvaluator_DisabledPolicyAllows(t *testing.T) {
	geo := new(apimock.MockGeoLocator)
	eval := newGeoEvaluator(t, model.GeoRestrictionPolicy{Enabled: false}, geo, nil, nil)

	decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

	assert.True(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeGeoDisabled, decision.AccessType)
	geo.AssertNotCalled(t, "ResolveGeoLocation")
}

func TestGeoEvaluator_ExemptUserSkipsLookup(t *testing.T) {
	geo := new(apimock.MockGeoLocator)
	eval := newGeoEvaluator(t, geoPolicy(), geo, nil, nil)

	decision := eval.Evaluate(context.Background(), "field-agent", "203.0.113.5")

	assert.True(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeExemptUser, decision.AccessType)
	geo.AssertNotCalled(t, "ResolveGeoLocation")
}

func TestGeoEvaluator_LookupFailureDenies(t *testing.T) {
	geo := new(apimock.MockGeoLocator)
	geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
		Return(model.GeoLocation{}, errors.New("upstream timeout"))
	eval := newGeoEvaluator(t, geoPolicy(), geo, nil, nil)

	decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

	// An IP we cannot place is denied, never waved through.
	assert.False(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeGeoLookupFailed, decision.AccessType)
}

func TestGeoEvaluator_VPNDetection(t *testing.T) {
	policy := geoPolicy()
	policy.VPNDetection = model.VPNDetection{
		Enabled:         true,
		AllowedVPNUsers: []string{"vpn-ok"},
	}

	t.Run("detected VPN denies", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		vpn := new(apimock.MockVPNDetector)
		vpn.On("DetectVPN", mock.Anything, "203.0.113.5").Return(true, nil)
		eval := newGeoEvaluator(t, policy, geo, vpn, nil)

		decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeVPNDetected, decision.AccessType)
	})

	t.Run("allow-listed VPN user passes", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		vpn := new(apimock.MockVPNDetector)
		vpn.On("DetectVPN", mock.Anything, "203.0.113.5").Return(true, nil)
		eval := newGeoEvaluator(t, policy, geo, vpn, nil)

		decision := eval.Evaluate(context.Background(), "vpn-ok", "203.0.113.5")

		assert.True(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeGeoAllowed, decision.AccessType)
	})

	t.Run("detection failure is treated as detected", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		vpn := new(apimock.MockVPNDetector)
		vpn.On("DetectVPN", mock.Anything, "203.0.113.5").Return(false, errors.New("intel feed down"))
		eval := newGeoEvaluator(t, policy, geo, vpn, nil)

		decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeVPNDetected, decision.AccessType)
	})
}

func TestGeoEvaluator_CountryRestriction(t *testing.T) {
	geo := new(apimock.MockGeoLocator)
	geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
		Return(model.GeoLocation{CountryCode: "CN"}, nil)
	eval := newGeoEvaluator(t, geoPolicy(), geo, nil, nil)

	decision := eval.Evaluate(context.Background(), "carol", "203.0.113.5")

	assert.False(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeCountryRestricted, decision.AccessType)
	assert.Equal(t, "CN", decision.Details["country"])
}

func TestGeoEvaluator_IPRangeRestriction(t *testing.T) {
	policy := geoPolicy()
	policy.AllowedIPRanges = []string{"10.0.0.0/8", "192.168.1.0/24"}

	newEval := func(t *testing.T, ip string) model.AccessDecision {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, ip).
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		eval := newGeoEvaluator(t, policy, geo, nil, nil)
		return eval.Evaluate(context.Background(), "alice", ip)
	}

	t.Run("address inside an allowed range passes", func(t *testing.T) {
		decision := newEval(t, "10.1.2.3")
		assert.True(t, decision.Allowed)
	})

	t.Run("address outside all ranges is denied", func(t *testing.T) {
		decision := newEval(t, "11.0.0.1")
		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeIPRangeRestricted, decision.AccessType)
	})

	t.Run("containment is per-prefix, not textual", func(t *testing.T) {
		// "100.0.0.1" starts with the characters "10." but is nowhere near
		// 10.0.0.0/8.
		decision := newEval(t, "100.0.0.1")
		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeIPRangeRestricted, decision.AccessType)
	})

	t.Run("a /24 does not admit its neighbors", func(t *testing.T) {
		decision := newEval(t, "192.168.2.1")
		assert.False(t, decision.Allowed)
	})

	t.Run("malformed request IP matches nothing", func(t *testing.T) {
		decision := newEval(t, "not-an-ip")
		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeIPRangeRestricted, decision.AccessType)
	})
}

func TestGeoEvaluator_InvalidConfiguredRangeRejected(t *testing.T) {
	policy := geoPolicy()
	policy.AllowedIPRanges = []string{"10.0.0.0/33"}

	_, err := evaluator.NewGeoEvaluator(policy, new(apimock.MockGeoLocator), nil, nil)
	assert.Error(t, err)
}

func TestGeoEvaluator_RiskScoring(t *testing.T) {
	policy := geoPolicy()
	policy.RiskBasedAuth = model.RiskBasedAuth{
		Enabled:               true,
		RequireAdditionalAuth: true,
		HighRiskCountries:     []string{"KP"},
	}

	jpHistory := []model.GeoLocation{
		{CountryCode: "JP"}, {CountryCode: "JP"}, {CountryCode: "JP"},
	}

	t.Run("high-risk country denies", func(t *testing.T) {
		riskPolicy := policy
		riskPolicy.AllowedCountries = []string{"JP", "US", "KP"}
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "KP"}, nil)
		eval := newGeoEvaluator(t, riskPolicy, geo, nil, new(apimock.MockHistoryReader))

		decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeHighRiskLocation, decision.AccessType)
		assert.Equal(t, model.RiskLevelHigh, decision.Details["risk_level"])
		assert.Equal(t, true, decision.Details["require_additional_auth"])
	})

	t.Run("familiar country scores low", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		history := new(apimock.MockHistoryReader)
		history.On("RecentLocations", mock.Anything, "alice", 10).Return(jpHistory, nil)
		eval := newGeoEvaluator(t, policy, geo, nil, history)

		decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

		assert.True(t, decision.Allowed)
		assert.Equal(t, model.RiskLevelLow, decision.Details["risk_level"])
	})

	t.Run("unfamiliar country scores medium and still allows", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "US"}, nil)
		history := new(apimock.MockHistoryReader)
		history.On("RecentLocations", mock.Anything, "alice", 10).Return(jpHistory, nil)
		eval := newGeoEvaluator(t, policy, geo, nil, history)

		decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

		assert.True(t, decision.Allowed)
		assert.Equal(t, model.RiskLevelMedium, decision.Details["risk_level"])
	})

	t.Run("thin history scores medium", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		history := new(apimock.MockHistoryReader)
		history.On("RecentLocations", mock.Anything, "newbie", 10).
			Return([]model.GeoLocation{{CountryCode: "JP"}}, nil)
		eval := newGeoEvaluator(t, policy, geo, nil, history)

		decision := eval.Evaluate(context.Background(), "newbie", "203.0.113.5")

		assert.True(t, decision.Allowed)
		assert.Equal(t, model.RiskLevelMedium, decision.Details["risk_level"])
	})

	t.Run("history read failure scores medium", func(t *testing.T) {
		geo := new(apimock.MockGeoLocator)
		geo.On("ResolveGeoLocation", mock.Anything, "203.0.113.5").
			Return(model.GeoLocation{CountryCode: "JP"}, nil)
		history := new(apimock.MockHistoryReader)
		history.On("RecentLocations", mock.Anything, "alice", 10).
			Return(nil, errors.New("redis down"))
		eval := newGeoEvaluator(t, policy, geo, nil, history)

		decision := eval.Evaluate(context.Background(), "alice", "203.0.113.5")

		assert.True(t, decision.Allowed)
		assert.Equal(t, model.RiskLevelMedium, decision.Details["risk_level"])
	})
}
