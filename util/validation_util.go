// api/util/validation_util.go

package util

import (
	"fmt"
	"net/netip"
	"time"

	sift_errors "github.com/dev-mohitbeniwal/sift/api/errors"
	"github.com/dev-mohitbeniwal/sift/api/model"
)

type ValidationUtil struct{}

func NewValidationUtil() *ValidationUtil {
	return &ValidationUtil{}
}

// ValidateTimePolicy checks the time restriction policy once at load time so
// evaluation never has to deal with out-of-range hours or weekdays.
func (v *ValidationUtil) ValidateTimePolicy(policy model.TimeRestrictionPolicy) error {
	if !policy.Enabled {
		return nil
	}
	if policy.BusinessHours.StartHour < 0 || policy.BusinessHours.StartHour > 23 {
		return invalidPolicy("business hours start hour out of range: %d", policy.BusinessHours.StartHour)
	}
	if policy.BusinessHours.EndHour < 1 || policy.BusinessHours.EndHour > 24 {
		return invalidPolicy("business hours end hour out of range: %d", policy.BusinessHours.EndHour)
	}
	if policy.BusinessHours.StartHour >= policy.BusinessHours.EndHour {
		return invalidPolicy("business hours start %d must precede end %d",
			policy.BusinessHours.StartHour, policy.BusinessHours.EndHour)
	}
	for _, day := range policy.BusinessHours.BusinessDays {
		if day < 0 || day > 6 {
			return invalidPolicy("invalid business day: %d", day)
		}
	}
	for _, date := range policy.Holidays.Dates {
		if _, err := time.Parse(model.HolidayDateFormat, date); err != nil {
			return invalidPolicy("invalid holiday date %q: %v", date, err)
		}
	}
	return nil
}

// ValidateGeoPolicy parses every configured CIDR so malformed ranges are
// rejected at startup instead of silently never matching.
func (v *ValidationUtil) ValidateGeoPolicy(policy model.GeoRestrictionPolicy) error {
	if !policy.Enabled {
		return nil
	}
	for _, cidr := range policy.AllowedIPRanges {
		if _, err := netip.ParsePrefix(cidr); err != nil {
			return invalidPolicy("invalid allowed IP range %q: %v", cidr, err)
		}
	}
	for _, country := range policy.AllowedCountries {
		if len(country) != 2 {
			return invalidPolicy("invalid country code %q: expected ISO 3166-1 alpha-2", country)
		}
	}
	return nil
}

func (v *ValidationUtil) ValidatePermissionPolicy(policy model.DynamicPermissionPolicy) error {
	if !policy.Enabled {
		return nil
	}
	if policy.RefreshIntervalSeconds <= 0 {
		return invalidPolicy("refresh interval must be positive, got %d", policy.RefreshIntervalSeconds)
	}
	return nil
}

func invalidPolicy(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sift_errors.ErrInvalidPolicyConfig, fmt.Sprintf(format, args...))
}
