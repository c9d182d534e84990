// api/audit/model_test.go
package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewLogEntry_StampsRetentionHorizon(t *testing.T) {
	before := time.Now().UTC()
	entry := NewLogEntry("alice", "session-1", "203.0.113.5", "agent", ActionFilteredSearch, "query", ResultAllow)
	after := time.Now().UTC()

	assert.False(t, entry.Timestamp.Before(before))
	assert.False(t, entry.Timestamp.After(after))
	assert.Equal(t, entry.Timestamp.Add(RetentionPeriod), entry.ExpiresAt)
	assert.Equal(t, 90*24*time.Hour, RetentionPeriod)
}
