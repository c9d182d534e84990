// api/audit/model.go
package audit

import "time"

// RetentionPeriod is how long audit entries remain queryable. The storage
// layer's lifecycle policy enforces it via the expires_at field; application
// code never deletes entries.
const RetentionPeriod = 90 * 24 * time.Hour

const (
	ResultAllow = "allow"
	ResultDeny  = "deny"
	ResultError = "error"
)

const (
	ActionTimeCheck      = "time_check"
	ActionGeoCheck       = "geo_check"
	ActionFilteredSearch = "filtered_search"
)

type LogEntry struct {
	UserID        string    `json:"user_id"`
	SessionID     string    `json:"session_id"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	Action        string    `json:"action"`
	Resource      string    `json:"resource"`
	Result        string    `json:"result"`
	FilteredCount int       `json:"filtered_count,omitempty"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// NewLogEntry stamps an entry with its creation time and retention horizon.
func NewLogEntry(userID, sessionID, ipAddress, userAgent, action, resource, result string) LogEntry {
	now := time.Now().UTC()
	return LogEntry{
		UserID:    userID,
		SessionID: sessionID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Action:    action,
		Resource:  resource,
		Result:    result,
		Timestamp: now,
		ExpiresAt: now.Add(RetentionPeriod),
	}
}
