package model

import (
	"context"
	"fmt"
	"time"

	"github.com/Laisky/errors/v2"
	"gorm.io/gorm"

	"github.com/fyodorov-ai/tsiolkovsky/common/config"
	"github.com/fyodorov-ai/tsiolkovsky/common/metrics"
)

// GormStore keeps tools in a SQL database reached through gorm.
type GormStore struct {
	db      *gorm.DB
	dialect string
}

// NewGormStore wraps an opened database handle.
func NewGormStore(db *gorm.DB, dialect string) *GormStore {
	return &GormStore{db: db, dialect: dialect}
}

// Driver implements Store.
func (s *GormStore) Driver() string {
	return config.StoreDriverSQL
}

// Dialect implements Store.
func (s *GormStore) Dialect() string {
	return s.dialect
}

// InsertTool implements Store.
func (s *GormStore) InsertTool(ctx context.Context, fields *ToolFields) (*Tool, error) {
	start := time.Now()
	tool := &Tool{ToolFields: *fields}
	err := s.db.WithContext(ctx).Create(tool).Error
	metrics.GlobalRecorder.RecordDBQuery(start, "insert", tool.TableName(), err == nil)
	if err != nil {
		return nil, &StoreError{Op: "insert tool", Err: err}
	}
	return tool, nil
}

// GetTool implements Store.
func (s *GormStore) GetTool(ctx context.Context, id int) (*Tool, error) {
	start := time.Now()
	tool := &Tool{}
	err := s.db.WithContext(ctx).First(tool, "id = ?", id).Error
	notFound := errors.Is(err, gorm.ErrRecordNotFound)
	metrics.GlobalRecorder.RecordDBQuery(start, "select", tool.TableName(), err == nil || notFound)
	switch {
	case notFound:
		return nil, ErrNotFound
	case err != nil:
		return nil, &StoreError{Op: "get tool", Err: err}
	}
	return tool, nil
}

// ListTools implements Store.
func (s *GormStore) ListTools(ctx context.Context) ([]*Tool, error) {
	start := time.Now()
	var tools []*Tool
	err := s.db.WithContext(ctx).Order("id asc").Find(&tools).Error
	metrics.GlobalRecorder.RecordDBQuery(start, "select", Tool{}.TableName(), err == nil)
	if err != nil {
		return nil, &StoreError{Op: "list tools", Err: err}
	}
	return tools, nil
}

// UpdateTool implements Store. Zero matched rows is not an error.
func (s *GormStore) UpdateTool(ctx context.Context, tool *Tool) error {
	start := time.Now()
	now := time.Now().UTC()
	err := s.db.WithContext(ctx).Model(&Tool{}).Where("id = ?", tool.Id).Updates(map[string]any{
		"name_for_human":        tool.NameForHuman,
		"name_for_ai":           tool.NameForAI,
		"description_for_human": tool.DescriptionForHuman,
		"description_for_ai":    tool.DescriptionForAI,
		"api_type":              tool.APIType,
		"api_url":               tool.APIURL,
		"logo_url":              tool.LogoURL,
		"contact_email":         tool.ContactEmail,
		"legal_info_url":        tool.LegalInfoURL,
		"updated_at":            now,
	}).Error
	metrics.GlobalRecorder.RecordDBQuery(start, "update", tool.TableName(), err == nil)
	if err != nil {
		return &StoreError{Op: "update tool", Err: err}
	}
	tool.UpdatedAt = now
	return nil
}

// DeleteTool implements Store.
func (s *GormStore) DeleteTool(ctx context.Context, id int) error {
	start := time.Now()
	err := s.db.WithContext(ctx).Delete(&Tool{}, id).Error
	metrics.GlobalRecorder.RecordDBQuery(start, "delete", Tool{}.TableName(), err == nil)
	if err != nil {
		return &StoreError{Op: "delete tool", Err: err}
	}
	return nil
}

// SaveHealthCheck implements Store. The tool update and the history insert
// share one transaction. History for an unknown tool is refused the way the
// hosted schema's tool_id foreign key refuses it.
func (s *GormStore) SaveHealthCheck(ctx context.Context, update *HealthUpdate) (*HealthCheck, error) {
	start := time.Now()
	check := update.ToHealthCheck()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tools int64
		if err := tx.Model(&Tool{}).Where("id = ?", update.ToolID).Count(&tools).Error; err != nil {
			return errors.Wrap(err, "check tool exists")
		}
		if tools == 0 {
			return missingToolError(update.ToolID)
		}

		if update.UpdatesTool() {
			if err := tx.Model(&Tool{}).Where("id = ?", update.ToolID).Updates(map[string]any{
				"api_url":       update.APIURL,
				"health_status": update.HealthStatus,
				"updated_at":    time.Now().UTC(),
			}).Error; err != nil {
				return errors.Wrap(err, "update tool from health check")
			}
		}
		if err := tx.Create(check).Error; err != nil {
			return errors.Wrap(err, "insert health check")
		}
		return nil
	})
	metrics.GlobalRecorder.RecordDBQuery(start, "insert", check.TableName(), err == nil)
	if err != nil {
		var storeErr *StoreError
		if errors.As(err, &storeErr) {
			return nil, storeErr
		}
		return nil, &StoreError{Op: "save health check", Err: err}
	}
	return check, nil
}

func missingToolError(toolID int) *StoreError {
	return &StoreError{
		Op:      "save health check",
		Code:    CodeForeignKeyViolation,
		Details: fmt.Sprintf(`Key (tool_id)=(%d) is not present in table "%s".`, toolID, Tool{}.TableName()),
		Err: errors.Errorf(`insert or update on table "%s" violates foreign key constraint "%s_tool_id_fkey"`,
			HealthCheck{}.TableName(), HealthCheck{}.TableName()),
	}
}

// ListHealthChecks implements Store.
func (s *GormStore) ListHealthChecks(ctx context.Context, toolID int) ([]*HealthCheck, error) {
	start := time.Now()
	var checks []*HealthCheck
	err := s.db.WithContext(ctx).
		Where("tool_id = ?", toolID).
		Order("created_at desc").
		Order("id desc").
		Find(&checks).Error
	metrics.GlobalRecorder.RecordDBQuery(start, "select", HealthCheck{}.TableName(), err == nil)
	if err != nil {
		return nil, &StoreError{Op: "list health checks", Err: err}
	}
	return checks, nil
}

// Close releases the connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql database handle")
	}
	return sqlDB.Close()
}
