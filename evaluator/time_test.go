// api/evaluator/time_test.go
package evaluator_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dev-mohitbeniwal/sift/api/evaluator"
	"github.com/dev-mohitbeniwal/sift/api/model"
	apimock "github.com/dev-mohitbeniwal/sift/api/test/mock"
)

func businessHoursPolicy() model.TimeRestrictionPolicy {
	return model.TimeRestrictionPolicy{
		Enabled: true,
		BusinessHours: model.BusinessHours{
			StartHour: 9,
			EndHour:   18,
			BusinessDays: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
		},
		Holidays: model.Holidays{
			Dates:       []string{"2026-01-01"},
			AllowAccess: false,
		},
		EmergencyAccessUsers: []string{"root-admin"},
		AfterHoursRoles:      []string{"admin"},
	}
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// 2026-08-26 is a Wednesday.
var (
	wednesdayMorning = time.Date(2026, 8, 26, 10, 30, 0, 0, time.UTC)
	wednesdayNight   = time.Date(2026, 8, 26, 23, 0, 0, 0, time.UTC)
	saturdayNoon     = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	newYearsDay      = time.Date(2026, 1, 1, 11, 0, 0, 0, time.UTC)
)

func TestTimeEvaluator_DisabledPolicyAllows(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	eval := evaluator.NewTimeEvaluator(model.TimeRestrictionPolicy{Enabled: false}, roles)

	decision := eval.Evaluate(context.Background(), "alice")

	assert.True(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeTimeDisabled, decision.AccessType)
	roles.AssertNotCalled(t, "ResolveRole")
}

func TestTimeEvaluator_EmergencyUserAlwaysAllowed(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
		WithClock(clockAt(wednesdayNight))

	decision := eval.Evaluate(context.Background(), "root-admin")

	assert.True(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeEmergency, decision.AccessType)
	roles.AssertNotCalled(t, "ResolveRole")
}

func TestTimeEvaluator_AfterHoursRoleAllowed(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	roles.On("ResolveRole", mock.Anything, "alice").Return("admin", nil)
	eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
		WithClock(clockAt(wednesdayNight))

	decision := eval.Evaluate(context.Background(), "alice")

	assert.True(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeAfterHoursRole, decision.AccessType)
	assert.Equal(t, "admin", decision.Details["role"])
}

func TestTimeEvaluator_HolidayPolicy(t *testing.T) {
	t.Run("holiday denies when holiday access is off", func(t *testing.T) {
		roles := new(apimock.MockRoleResolver)
		roles.On("ResolveRole", mock.Anything, "bob").Return("analyst", nil)
		eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
			WithClock(clockAt(newYearsDay))

		decision := eval.Evaluate(context.Background(), "bob")

		assert.False(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeHoliday, decision.AccessType)
		assert.Equal(t, "2026-01-01", decision.Details["holiday"])
	})

	t.Run("holiday allows when holiday access is on", func(t *testing.T) {
		policy := businessHoursPolicy()
		policy.Holidays.AllowAccess = true
		roles := new(apimock.MockRoleResolver)
		roles.On("ResolveRole", mock.Anything, "bob").Return("analyst", nil)
		eval := evaluator.NewTimeEvaluator(policy, roles).
			WithClock(clockAt(newYearsDay))

		decision := eval.Evaluate(context.Background(), "bob")

		assert.True(t, decision.Allowed)
		assert.Equal(t, model.AccessTypeHoliday, decision.AccessType)
	})
}

func TestTimeEvaluator_NonBusinessDayDenied(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	roles.On("ResolveRole", mock.Anything, "bob").Return("analyst", nil)
	eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
		WithClock(clockAt(saturdayNoon))

	decision := eval.Evaluate(context.Background(), "bob")

	assert.False(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeNonBusinessDay, decision.AccessType)
}

func TestTimeEvaluator_OutsideBusinessHoursDenied(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	roles.On("ResolveRole", mock.Anything, "bob").Return("analyst", nil)
	eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
		WithClock(clockAt(wednesdayNight))

	decision := eval.Evaluate(context.Background(), "bob")

	assert.False(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeOutsideBusinessHours, decision.AccessType)
	assert.Equal(t, 23, decision.Details["current_hour"])
}

func TestTimeEvaluator_EndHourIsExclusive(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	roles.On("ResolveRole", mock.Anything, "bob").Return("analyst", nil)
	eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
		WithClock(clockAt(time.Date(2026, 8, 26, 18, 0, 0, 0, time.UTC)))

	decision := eval.Evaluate(context.Background(), "bob")

	assert.False(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeOutsideBusinessHours, decision.AccessType)
}

func TestTimeEvaluator_WithinBusinessHoursAllowed(t *testing.T) {
	roles := new(apimock.MockRoleResolver)
	roles.On("ResolveRole", mock.Anything, "alice").Return("analyst", nil)
	eval := evaluator.NewTimeEvaluator(businessHoursPolicy(), roles).
		WithClock(clockAt(wednesdayMorning))

	decision := eval.Evaluate(context.Background(), "alice")

	assert.True(t, decision.Allowed)
	assert.Equal(t, model.AccessTypeBusinessHours, decision.AccessType)
}

func TestTimeEvaluator_RoleLookupFailureFallsBackToGuest(t *testing.T) {
	policy := businessHoursPolicy()
	policy.AfterHoursRoles = []string{evaluator.GuestRole}

	roles := new(apimock.MockRoleResolver)
	roles.On("ResolveRole", mock.Anything, "mystery").Return("", errors.New("directory unreachable"))
	eval := evaluator.NewTimeEvaluator(policy, roles).
		WithClock(clockAt(wednesdayNight))

	decision := eval.Evaluate(context.Background(), "mystery")

	// Guest is in the after-hours roles here, so the fallback is observable
	// through an allow; the point is that a directory failure never aborts
	// evaluation.
	assert.True(t, decision.Allowed)
	assert.Equal(t, evaluator.GuestRole, decision.Details["role"])
}
