// api/model/request.go
package model

// AccessRequest carries everything the filter engine needs to know about one
// incoming search call. It is built once by the controller and never mutated.
type AccessRequest struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	Query     string `json:"query"`
}

// AccessDecision is the outcome of a single evaluator stage. Evaluators return
// decisions as values; an error return is reserved for genuinely unexpected
// conditions, never for an ordinary deny.
type AccessDecision struct {
	Allowed    bool                   `json:"allowed"`
	Reason     string                 `json:"reason,omitempty"`
	AccessType string                 `json:"access_type"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Access types produced by the time evaluator.
const (
	AccessTypeTimeDisabled         = "disabled"
	AccessTypeEmergency            = "emergency"
	AccessTypeAfterHoursRole       = "after_hours_role"
	AccessTypeHoliday              = "holiday"
	AccessTypeNonBusinessDay       = "non_business_day"
	AccessTypeOutsideBusinessHours = "outside_business_hours"
	AccessTypeBusinessHours        = "business_hours"
)

// Access types produced by the geo evaluator.
const (
	AccessTypeGeoDisabled       = "disabled"
	AccessTypeExemptUser        = "exempt_user"
	AccessTypeGeoLookupFailed   = "geo_lookup_failed"
	AccessTypeVPNDetected       = "vpn_detected"
	AccessTypeCountryRestricted = "country_restricted"
	AccessTypeIPRangeRestricted = "ip_range_restricted"
	AccessTypeHighRiskLocation  = "high_risk_location"
	AccessTypeGeoAllowed        = "geo_allowed"
)

// Risk levels assigned by the geo evaluator's location-history scoring.
const (
	RiskLevelLow    = "low"
	RiskLevelMedium = "medium"
	RiskLevelHigh   = "high"
)
