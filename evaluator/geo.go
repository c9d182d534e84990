// api/evaluator/geo.go
package evaluator

import (
	"context"
	"fmt"
	"net/netip"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/provider"
)

const (
	geoLookupTimeout = 5 * time.Second

	// riskHistoryWindow is how many recent locations feed risk scoring; fewer
	// than riskHistoryMinimum entries means we know too little about the user
	// to call a new location normal.
	riskHistoryWindow  = 10
	riskHistoryMinimum = 3
)

// HistoryReader supplies a user's recent resolved locations, most recent
// first. The evaluator only reads; the orchestrator appends after an allowed
// request.
type HistoryReader interface {
	RecentLocations(ctx context.Context, userID string, n int) ([]model.GeoLocation, error)
}

// GeoEvaluator decides whether a request's origin is acceptable: geolocation,
// VPN heuristics, country allow-list, CIDR allow-ranges and history-based risk
// scoring, in that order. Any ambiguity denies: an IP we cannot place does not
// search the index.
type GeoEvaluator struct {
	policy        model.GeoRestrictionPolicy
	geo           provider.GeoLocator
	vpn           provider.VPNDetector
	history       HistoryReader
	allowedRanges []netip.Prefix
}

func NewGeoEvaluator(policy model.GeoRestrictionPolicy, geo provider.GeoLocator, vpn provider.VPNDetector, history HistoryReader) (*GeoEvaluator, error) {
	ranges := make([]netip.Prefix, 0, len(policy.AllowedIPRanges))
	for _, cidr := range policy.AllowedIPRanges {
		prefix, err := netip.ParsePrefix(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid allowed IP range %q: %w", cidr, err)
		}
		ranges = append(ranges, prefix)
	}
	return &GeoEvaluator{
		policy:        policy,
		geo:           geo,
		vpn:           vpn,
		history:       history,
		allowedRanges: ranges,
	}, nil
}

func (e *GeoEvaluator) Evaluate(ctx context.Context, userID, ipAddress string) model.AccessDecision {
	if !e.policy.Enabled {
		return model.AccessDecision{
			Allowed:    true,
			Reason:     "geographic restrictions are disabled",
			AccessType: model.AccessTypeGeoDisabled,
		}
	}

	details := map[string]interface{}{"ip": ipAddress}

	if containsString(e.policy.ExemptUsers, userID) {
		return model.AccessDecision{
			Allowed:    true,
			Reason:     "user is exempt from geographic restrictions",
			AccessType: model.AccessTypeExemptUser,
			Details:    details,
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, geoLookupTimeout)
	defer cancel()
	location, err := e.geo.ResolveGeoLocation(lookupCtx, ipAddress)
	if err != nil {
		logger.Warn("Geolocation lookup failed, denying access",
			zap.Error(err), zap.String("userID", userID), zap.String("ip", ipAddress))
		details["lookup_error"] = "geolocation unavailable"
		return model.AccessDecision{
			Allowed:    false,
			Reason:     "could not resolve request location",
			AccessType: model.AccessTypeGeoLookupFailed,
			Details:    details,
		}
	}
	details["country"] = location.CountryCode
	details["region"] = location.Region
	details["city"] = location.City

	if e.policy.VPNDetection.Enabled {
		detected, err := e.vpn.DetectVPN(ctx, ipAddress)
		if err != nil {
			logger.Warn("VPN detection failed, treating IP as VPN",
				zap.Error(err), zap.String("ip", ipAddress))
			detected = true
		}
		if detected && !containsString(e.policy.VPNDetection.AllowedVPNUsers, userID) {
			return model.AccessDecision{
				Allowed:    false,
				Reason:     "VPN or proxy detected",
				AccessType: model.AccessTypeVPNDetected,
				Details:    details,
			}
		}
	}

	if len(e.policy.AllowedCountries) > 0 && !containsString(e.policy.AllowedCountries, location.CountryCode) {
		details["allowed_countries"] = e.policy.AllowedCountries
		return model.AccessDecision{
			Allowed:    false,
			Reason:     "access from this country is not permitted",
			AccessType: model.AccessTypeCountryRestricted,
			Details:    details,
		}
	}

	if len(e.allowedRanges) > 0 && !e.ipInAllowedRanges(ipAddress) {
		details["allowed_ip_ranges"] = e.policy.AllowedIPRanges
		return model.AccessDecision{
			Allowed:    false,
			Reason:     "IP address is outside the allowed ranges",
			AccessType: model.AccessTypeIPRangeRestricted,
			Details:    details,
		}
	}

	if e.policy.RiskBasedAuth.Enabled {
		risk := e.assessRisk(ctx, userID, location)
		details["risk_level"] = risk
		if risk == model.RiskLevelHigh {
			details["require_additional_auth"] = e.policy.RiskBasedAuth.RequireAdditionalAuth
			return model.AccessDecision{
				Allowed:    false,
				Reason:     "access from a high-risk location",
				AccessType: model.AccessTypeHighRiskLocation,
				Details:    details,
			}
		}
	}

	return model.AccessDecision{
		Allowed:    true,
		Reason:     "location checks passed",
		AccessType: model.AccessTypeGeoAllowed,
		Details:    details,
	}
}

// ipInAllowedRanges performs exact prefix containment; a malformed request IP
// matches nothing.
func (e *GeoEvaluator) ipInAllowedRanges(ipAddress string) bool {
	addr, err := netip.ParseAddr(ipAddress)
	if err != nil {
		return false
	}
	for _, prefix := range e.allowedRanges {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

// assessRisk scores the current country against the user's recent history:
// high for configured high-risk countries, medium for a country we have not
// seen before (or too little history to judge), low otherwise. A history read
// failure scores medium, not low.
func (e *GeoEvaluator) assessRisk(ctx context.Context, userID string, location model.GeoLocation) string {
	if containsString(e.policy.RiskBasedAuth.HighRiskCountries, location.CountryCode) {
		return model.RiskLevelHigh
	}

	locations, err := e.history.RecentLocations(ctx, userID, riskHistoryWindow)
	if err != nil {
		logger.Warn("Location history read failed, scoring medium risk",
			zap.Error(err), zap.String("userID", userID))
		return model.RiskLevelMedium
	}
	if len(locations) < riskHistoryMinimum {
		return model.RiskLevelMedium
	}

	for _, past := range locations {
		if past.CountryCode == location.CountryCode {
			return model.RiskLevelLow
		}
	}
	return model.RiskLevelMedium
}
