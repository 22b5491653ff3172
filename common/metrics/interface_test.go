package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	NoOpRecorder
	dbQueries    int
	healthChecks []string
}

func (c *countingRecorder) RecordDBQuery(startTime time.Time, operation, table string, success bool) {
	c.dbQueries++
}

func (c *countingRecorder) RecordHealthCheck(healthStatus string) {
	c.healthChecks = append(c.healthChecks, healthStatus)
}

func TestMultiRecorderFansOut(t *testing.T) {
	first, second := &countingRecorder{}, &countingRecorder{}
	multi := &MultiRecorder{Recorders: []MetricsRecorder{first, second}}

	multi.RecordDBQuery(time.Now(), "select", "tools", true)
	multi.RecordHealthCheck("healthy")
	multi.RecordError("store_error", "controller")

	for _, r := range []*countingRecorder{first, second} {
		require.Equal(t, 1, r.dbQueries)
		require.Equal(t, []string{"healthy"}, r.healthChecks)
	}
}

func TestGlobalRecorderDefaultsToNoOp(t *testing.T) {
	require.IsType(t, &NoOpRecorder{}, GlobalRecorder)
}
