// api/model/policy.go
package model

import "time"

// TimeRestrictionPolicy limits when users may query the index. Loaded once at
// startup from configuration and read-only during evaluation.
type TimeRestrictionPolicy struct {
	Enabled              bool          `json:"enabled" mapstructure:"enabled"`
	BusinessHours        BusinessHours `json:"business_hours" mapstructure:"businessHours"`
	Holidays             Holidays      `json:"holidays" mapstructure:"holidays"`
	EmergencyAccessUsers []string      `json:"emergency_access_users" mapstructure:"emergencyAccessUsers"`
	AfterHoursRoles      []string      `json:"after_hours_roles" mapstructure:"afterHoursRoles"`
}

type BusinessHours struct {
	StartHour    int            `json:"start_hour" mapstructure:"startHour"`
	EndHour      int            `json:"end_hour" mapstructure:"endHour"`
	BusinessDays []time.Weekday `json:"business_days" mapstructure:"businessDays"`
}

type Holidays struct {
	// Dates are calendar days in "2006-01-02" form.
	Dates       []string `json:"dates" mapstructure:"dates"`
	AllowAccess bool     `json:"allow_access" mapstructure:"allowAccess"`
}

// GeoRestrictionPolicy limits where queries may come from.
type GeoRestrictionPolicy struct {
	Enabled          bool          `json:"enabled" mapstructure:"enabled"`
	ExemptUsers      []string      `json:"exempt_users" mapstructure:"exemptUsers"`
	AllowedCountries []string      `json:"allowed_countries" mapstructure:"allowedCountries"`
	AllowedIPRanges  []string      `json:"allowed_ip_ranges" mapstructure:"allowedIpRanges"`
	VPNDetection     VPNDetection  `json:"vpn_detection" mapstructure:"vpnDetection"`
	RiskBasedAuth    RiskBasedAuth `json:"risk_based_auth" mapstructure:"riskBasedAuth"`
}

type VPNDetection struct {
	Enabled         bool     `json:"enabled" mapstructure:"enabled"`
	AllowedVPNUsers []string `json:"allowed_vpn_users" mapstructure:"allowedVpnUsers"`
}

type RiskBasedAuth struct {
	Enabled               bool     `json:"enabled" mapstructure:"enabled"`
	RequireAdditionalAuth bool     `json:"require_additional_auth" mapstructure:"requireAdditionalAuth"`
	HighRiskCountries     []string `json:"high_risk_countries" mapstructure:"highRiskCountries"`
}

// DynamicPermissionPolicy controls how per-user effective permissions are
// assembled from the directory.
type DynamicPermissionPolicy struct {
	Enabled                 bool                    `json:"enabled" mapstructure:"enabled"`
	ProjectBasedAccess      ProjectBasedAccess      `json:"project_based_access" mapstructure:"projectBasedAccess"`
	OrganizationalHierarchy OrganizationalHierarchy `json:"organizational_hierarchy" mapstructure:"organizationalHierarchy"`
	TemporaryAccess         TemporaryAccess         `json:"temporary_access" mapstructure:"temporaryAccess"`
	RefreshIntervalSeconds  int                     `json:"refresh_interval_seconds" mapstructure:"refreshIntervalSeconds"`
}

type ProjectBasedAccess struct {
	Enabled            bool                `json:"enabled" mapstructure:"enabled"`
	ProjectPermissions map[string][]string `json:"project_permissions" mapstructure:"projectPermissions"`
}

type OrganizationalHierarchy struct {
	Enabled              bool                `json:"enabled" mapstructure:"enabled"`
	InheritedPermissions bool                `json:"inherited_permissions" mapstructure:"inheritedPermissions"`
	Hierarchy            map[string][]string `json:"hierarchy" mapstructure:"hierarchy"`
}

type TemporaryAccess struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
}

// HolidayDateFormat is the layout for TimeRestrictionPolicy holiday dates.
const HolidayDateFormat = "2006-01-02"
