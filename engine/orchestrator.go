// api/engine/orchestrator.go
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dev-mohitbeniwal/sift/api/audit"
	"github.com/dev-mohitbeniwal/sift/api/evaluator"
	logger "github.com/dev-mohitbeniwal/sift/api/logging"
	"github.com/dev-mohitbeniwal/sift/api/model"
	"github.com/dev-mohitbeniwal/sift/api/search"
	"github.com/dev-mohitbeniwal/sift/api/util"
)

// RequestState tracks a request's progress through the pipeline. States only
// ever advance; DENIED is reachable from any checked state and ERROR from
// anywhere.
type RequestState string

const (
	StateReceived            RequestState = "RECEIVED"
	StateTimeChecked         RequestState = "TIME_CHECKED"
	StateGeoChecked          RequestState = "GEO_CHECKED"
	StatePermissionsResolved RequestState = "PERMISSIONS_RESOLVED"
	StateSearchExecuted      RequestState = "FILTERED_SEARCH_EXECUTED"
	StateDone                RequestState = "DONE"
	StateDenied              RequestState = "DENIED"
	StateError               RequestState = "ERROR"
)

const (
	RestrictionTypeTime = "time"
	RestrictionTypeGeo  = "geo"
)

// IOrchestrator is the engine's single entry point.
type IOrchestrator interface {
	EvaluateAndSearch(ctx context.Context, request model.AccessRequest) model.SearchResponse
}

// HistoryRecorder is the slice of the cache service the orchestrator writes
// through after an allowed request.
type HistoryRecorder interface {
	AppendLocation(ctx context.Context, userID string, location model.GeoLocation) error
	MarkUserActive(ctx context.Context, userID string) error
}

// Orchestrator runs the evaluation pipeline: time check, geo check, permission
// resolution, filter construction, the search call itself, and an audit record
// for every terminal transition.
type Orchestrator struct {
	timeEval        *evaluator.TimeEvaluator
	geoEval         *evaluator.GeoEvaluator
	aggregator      *evaluator.PermissionAggregator
	executor        search.Executor
	auditService    audit.Service
	history         HistoryRecorder
	eventBus        *util.EventBus
	notificationSvc *util.NotificationService
}

var _ IOrchestrator = (*Orchestrator)(nil)

func NewOrchestrator(
	timeEval *evaluator.TimeEvaluator,
	geoEval *evaluator.GeoEvaluator,
	aggregator *evaluator.PermissionAggregator,
	executor search.Executor,
	auditService audit.Service,
	history HistoryRecorder,
	eventBus *util.EventBus,
	notificationSvc *util.NotificationService,
) *Orchestrator {
	return &Orchestrator{
		timeEval:        timeEval,
		geoEval:         geoEval,
		aggregator:      aggregator,
		executor:        executor,
		auditService:    auditService,
		history:         history,
		eventBus:        eventBus,
		notificationSvc: notificationSvc,
	}
}

// EvaluateAndSearch never returns an error: every outcome is a response value.
// Unexpected panics from any stage collapse to a generic failure with no
// internal detail leaked to the caller.
func (o *Orchestrator) EvaluateAndSearch(ctx context.Context, request model.AccessRequest) (response model.SearchResponse) {
	state := StateReceived

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected failure in filter pipeline",
				zap.Any("panic", r),
				zap.String("state", string(state)),
				zap.String("userID", request.UserID),
				zap.String("sessionID", request.SessionID))
			o.tryAudit(ctx, o.entryFor(request, audit.ActionFilteredSearch, audit.ResultError, fmt.Sprintf("panic in state %s", state)))
			response = model.SearchResponse{Allowed: false, Error: "internal error"}
		}
	}()

	timeDecision := o.timeEval.Evaluate(ctx, request.UserID)
	state = StateTimeChecked
	if !timeDecision.Allowed {
		return o.deny(ctx, request, RestrictionTypeTime, audit.ActionTimeCheck, timeDecision,
			&model.AccessInfo{Time: timeDecision})
	}

	geoDecision := o.geoEval.Evaluate(ctx, request.UserID, request.IPAddress)
	state = StateGeoChecked
	if !geoDecision.Allowed {
		o.notifyIfSuspicious(ctx, request, geoDecision)
		return o.deny(ctx, request, RestrictionTypeGeo, audit.ActionGeoCheck, geoDecision,
			&model.AccessInfo{Time: timeDecision, Geo: geoDecision})
	}

	// The aggregator never denies; a user with nothing resolvable gets an
	// empty permission set and with it the most restrictive filter.
	permissions, err := o.aggregator.GetEffectivePermissions(ctx, request.UserID)
	if err != nil {
		logger.Warn("Permission aggregation degraded to empty set",
			zap.Error(err), zap.String("userID", request.UserID))
		permissions = model.EffectivePermissions{}
	}
	state = StatePermissionsResolved

	filter := BuildFilterPredicate(request.UserID, permissions)

	results, err := o.executor.ExecuteFilteredSearch(ctx, request.Query, filter)
	if err != nil {
		state = StateError
		logger.Error("Filtered search failed",
			zap.Error(err),
			zap.String("userID", request.UserID),
			zap.String("sessionID", request.SessionID))
		o.tryAudit(ctx, o.entryFor(request, audit.ActionFilteredSearch, audit.ResultError, "search execution failed"))
		return model.SearchResponse{Allowed: false, Error: "internal error"}
	}
	state = StateSearchExecuted

	entry := o.entryFor(request, audit.ActionFilteredSearch, audit.ResultAllow, "")
	entry.FilteredCount = results.Total
	o.tryAudit(ctx, entry)

	o.recordAllowedAccess(ctx, request, geoDecision)
	state = StateDone

	return model.SearchResponse{
		Allowed:       true,
		Results:       results,
		AppliedFilter: filter,
		AccessInfo: &model.AccessInfo{
			Time:        timeDecision,
			Geo:         geoDecision,
			Permissions: permissions,
		},
	}
}

func (o *Orchestrator) deny(ctx context.Context, request model.AccessRequest, restrictionType, action string, decision model.AccessDecision, accessInfo *model.AccessInfo) model.SearchResponse {
	entry := o.entryFor(request, action, audit.ResultDeny, "")
	entry.Resource = decision.AccessType
	o.tryAudit(ctx, entry)

	if o.eventBus != nil {
		o.eventBus.Publish(ctx, util.EventAccessDenied, request.UserID)
	}

	logger.Info("Access denied",
		zap.String("userID", request.UserID),
		zap.String("restrictionType", restrictionType),
		zap.String("accessType", decision.AccessType),
		zap.String("reason", decision.Reason))

	return model.SearchResponse{
		Allowed:         false,
		RestrictionType: restrictionType,
		Reason:          decision.Reason,
		AccessInfo:      accessInfo,
	}
}

// recordAllowedAccess appends the resolved location to the user's history and
// marks them active for the background permission refresher. Both are
// best-effort side effects of an already-made decision.
func (o *Orchestrator) recordAllowedAccess(ctx context.Context, request model.AccessRequest, geoDecision model.AccessDecision) {
	if country, ok := geoDecision.Details["country"].(string); ok && country != "" {
		location := model.GeoLocation{CountryCode: country}
		if region, ok := geoDecision.Details["region"].(string); ok {
			location.Region = region
		}
		if city, ok := geoDecision.Details["city"].(string); ok {
			location.City = city
		}
		if err := o.history.AppendLocation(ctx, request.UserID, location); err != nil {
			logger.Warn("Failed to append location history",
				zap.Error(err), zap.String("userID", request.UserID))
		}
	}

	if err := o.history.MarkUserActive(ctx, request.UserID); err != nil {
		logger.Warn("Failed to mark user active",
			zap.Error(err), zap.String("userID", request.UserID))
	}

	if o.eventBus != nil {
		o.eventBus.Publish(ctx, util.EventAccessGranted, request.UserID)
	}
}

func (o *Orchestrator) notifyIfSuspicious(ctx context.Context, request model.AccessRequest, decision model.AccessDecision) {
	if o.notificationSvc == nil {
		return
	}
	switch decision.AccessType {
	case model.AccessTypeVPNDetected, model.AccessTypeHighRiskLocation:
		if err := o.notificationSvc.NotifySecurityEvent(ctx, request.UserID, decision.AccessType, request.IPAddress); err != nil {
			logger.Warn("Security notification failed", zap.Error(err))
		}
	}
}

func (o *Orchestrator) entryFor(request model.AccessRequest, action, result, errMsg string) audit.LogEntry {
	entry := audit.NewLogEntry(
		request.UserID,
		request.SessionID,
		request.IPAddress,
		request.UserAgent,
		action,
		request.Query,
		result,
	)
	entry.Error = errMsg
	return entry
}

// tryAudit is deliberately best-effort: losing an audit write is logged and
// swallowed, never allowed to fail the primary request.
func (o *Orchestrator) tryAudit(ctx context.Context, entry audit.LogEntry) {
	if err := o.auditService.Log(ctx, entry); err != nil {
		logger.Error("Audit write failed",
			zap.Error(err),
			zap.String("userID", entry.UserID),
			zap.String("action", entry.Action))
	}
}
