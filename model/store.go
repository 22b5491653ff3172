package model

import (
	"context"
)

// Store persists tools and their health history.
// Implementations return ErrNotFound for missing rows and *StoreError for backend failures.
type Store interface {
	InsertTool(ctx context.Context, fields *ToolFields) (*Tool, error)
	GetTool(ctx context.Context, id int) (*Tool, error)
	ListTools(ctx context.Context) ([]*Tool, error)
	// UpdateTool writes every user attribute of tool, keyed by tool.Id.
	UpdateTool(ctx context.Context, tool *Tool) error
	DeleteTool(ctx context.Context, id int) error

	// SaveHealthCheck appends the history row and, when the report carries
	// an API URL, updates the parent tool.
	SaveHealthCheck(ctx context.Context, update *HealthUpdate) (*HealthCheck, error)
	// ListHealthChecks returns the history of a tool, most recent first.
	ListHealthChecks(ctx context.Context, toolID int) ([]*HealthCheck, error)

	// Driver names the backend, e.g. "sql" or "supabase".
	Driver() string
	// Dialect names the database behind the backend: postgres, mysql or sqlite.
	Dialect() string
	Close() error
}
