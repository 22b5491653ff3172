package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/Laisky/errors/v2"
)

// HealthUpdate is a validated health report for one tool.
type HealthUpdate struct {
	ToolID       int
	HealthStatus string
	// APIURL replaces the tool's API URL when non-empty.
	APIURL string
}

// NewHealthUpdate validates the report. toolID is the raw path identifier.
func NewHealthUpdate(toolID, healthStatus, apiURL string) (*HealthUpdate, error) {
	if err := ValidateHealthUpdate(toolID, healthStatus, apiURL); err != nil {
		return nil, err
	}
	id, _ := parseID(toolID)
	return &HealthUpdate{
		ToolID:       id,
		HealthStatus: healthStatus,
		APIURL:       apiURL,
	}, nil
}

// UpdatesTool reports whether the report also rewrites the parent tool.
func (u *HealthUpdate) UpdatesTool() bool {
	return u != nil && u.APIURL != ""
}

// ToHealthCheck returns the history row the report appends.
func (u *HealthUpdate) ToHealthCheck() *HealthCheck {
	return &HealthCheck{
		ToolID:       u.ToolID,
		HealthStatus: u.HealthStatus,
		Extra:        HealthCheckExtra{APIURL: u.APIURL},
	}
}

// HealthCheck is one append-only history row.
type HealthCheck struct {
	Id           int              `json:"id" gorm:"primaryKey"`
	ToolID       int              `json:"tool_id" gorm:"column:tool_id;index;not null"`
	HealthStatus string           `json:"health_status" gorm:"type:varchar(64);not null"`
	Extra        HealthCheckExtra `json:"extra" gorm:"type:text"`
	CreatedAt    time.Time        `json:"created_at,omitzero" gorm:"index"`
}

// TableName pins the table shared with the hosted store.
func (HealthCheck) TableName() string {
	return "tools_health_checks"
}

// HealthCheckExtra holds the free-form details of a report.
type HealthCheckExtra struct {
	APIURL string `json:"api_url,omitempty"`
}

// Value stores the extra block as JSON.
func (e HealthCheckExtra) Value() (driver.Value, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "marshal health check extra")
	}
	return string(payload), nil
}

// Scan populates the extra block from a database value.
func (e *HealthCheckExtra) Scan(value any) error {
	if e == nil {
		return errors.New("health check extra scan: nil receiver")
	}
	*e = HealthCheckExtra{}
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.Errorf("health check extra scan: unsupported type %T", value)
	}

	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, e); err != nil {
		return errors.Wrap(err, "unmarshal health check extra")
	}
	return nil
}
