package model

import (
	"context"

	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
)

// SaveHealthCheck persists a validated report and returns the history row.
func SaveHealthCheck(ctx context.Context, store Store, update *HealthUpdate) (*HealthCheck, error) {
	if update == nil {
		return nil, &ValidationError{Field: "health_status", Kind: ValidationMissing, Message: "Health status is required"}
	}
	check, err := store.SaveHealthCheck(ctx, update)
	if err != nil {
		return nil, newStoreError("save health check", err)
	}
	metrics.GlobalRecorder.RecordHealthCheck(update.HealthStatus)
	return check, nil
}

// GetHealthChecks returns the history of a tool, most recent first.
func GetHealthChecks(ctx context.Context, store Store, toolID int) ([]*HealthCheck, error) {
	checks, err := store.ListHealthChecks(ctx, toolID)
	if err != nil {
		return nil, newStoreError("list health checks", err)
	}
	if checks == nil {
		checks = []*HealthCheck{}
	}
	return checks, nil
}
