// api/evaluator/time.go
package evaluator

import (
	"context"
	"time"

	"go.uber.org/zap"

	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/provider"
)

// GuestRole is the lowest-privilege role, used whenever the directory cannot
// tell us who a user is. A failed role lookup must never abort the pipeline.
const GuestRole = "guest"

// TimeEvaluator decides whether a user may query at the current wall-clock
// time. It is stateless apart from the role lookup; the policy snapshot is
// fixed at construction.
type TimeEvaluator struct {
	policy model.TimeRestrictionPolicy
	roles  provider.RoleResolver
	now    func() time.Time
}

func NewTimeEvaluator(policy model.TimeRestrictionPolicy, roles provider.RoleResolver) *TimeEvaluator {
	return &TimeEvaluator{
		policy: policy,
		roles:  roles,
		now:    time.Now,
	}
}

// WithClock replaces the evaluator's clock. Used by tests to pin the wall
// clock.
func (e *TimeEvaluator) WithClock(now func() time.Time) *TimeEvaluator {
	e.now = now
	return e
}

// Evaluate applies the time policy in priority order; the first matching rule
// wins. Every branch records the inputs it used so denials are explainable.
func (e *TimeEvaluator) Evaluate(ctx context.Context, userID string) model.AccessDecision {
	if !e.policy.Enabled {
		return model.AccessDecision{
			Allowed:    true,
			Reason:     "time-based restrictions are disabled",
			AccessType: model.AccessTypeTimeDisabled,
		}
	}

	now := e.now()
	details := map[string]interface{}{
		"current_time": now.Format(time.RFC3339),
		"current_hour": now.Hour(),
		"current_day":  now.Weekday().String(),
		"start_hour":   e.policy.BusinessHours.StartHour,
		"end_hour":     e.policy.BusinessHours.EndHour,
	}

	if containsString(e.policy.EmergencyAccessUsers, userID) {
		return model.AccessDecision{
			Allowed:    true,
			Reason:     "user has emergency access",
			AccessType: model.AccessTypeEmergency,
			Details:    details,
		}
	}

	role := e.resolveRole(ctx, userID)
	details["role"] = role
	if containsString(e.policy.AfterHoursRoles, role) {
		return model.AccessDecision{
			Allowed:    true,
			Reason:     "role is exempt from business-hours restrictions",
			AccessType: model.AccessTypeAfterHoursRole,
			Details:    details,
		}
	}

	today := now.Format(model.HolidayDateFormat)
	if containsString(e.policy.Holidays.Dates, today) {
		details["holiday"] = today
		return model.AccessDecision{
			Allowed:    e.policy.Holidays.AllowAccess,
			Reason:     "holiday access policy applied",
			AccessType: model.AccessTypeHoliday,
			Details:    details,
		}
	}

	if !containsWeekday(e.policy.BusinessHours.BusinessDays, now.Weekday()) {
		return model.AccessDecision{
			Allowed:    false,
			Reason:     "access is not permitted on non-business days",
			AccessType: model.AccessTypeNonBusinessDay,
			Details:    details,
		}
	}

	hour := now.Hour()
	if hour < e.policy.BusinessHours.StartHour || hour >= e.policy.BusinessHours.EndHour {
		return model.AccessDecision{
			Allowed:    false,
			Reason:     "access is only permitted during business hours",
			AccessType: model.AccessTypeOutsideBusinessHours,
			Details:    details,
		}
	}

	return model.AccessDecision{
		Allowed:    true,
		Reason:     "within business hours",
		AccessType: model.AccessTypeBusinessHours,
		Details:    details,
	}
}

func (e *TimeEvaluator) resolveRole(ctx context.Context, userID string) string {
	role, err := e.roles.ResolveRole(ctx, userID)
	if err != nil || role == "" {
		if err != nil {
			logger.Warn("Role lookup failed, defaulting to guest",
				zap.Error(err), zap.String("userID", userID))
		}
		return GuestRole
	}
	return role
}

func containsString(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func containsWeekday(days []time.Weekday, day time.Weekday) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}
