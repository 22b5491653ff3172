package model

import (
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/jinzhu/copier"
)

// ToolFields are the user-supplied attributes of a tool.
type ToolFields struct {
	NameForHuman        string `json:"name_for_human" yaml:"name_for_human" gorm:"type:varchar(255);not null"`
	NameForAI           string `json:"name_for_ai" yaml:"name_for_ai" gorm:"column:name_for_ai;type:varchar(255);not null"`
	DescriptionForHuman string `json:"description_for_human" yaml:"description_for_human" gorm:"type:text;not null"`
	DescriptionForAI    string `json:"description_for_ai" yaml:"description_for_ai" gorm:"column:description_for_ai;type:text;not null"`
	APIType             string `json:"api_type" yaml:"api_type" gorm:"column:api_type;type:varchar(64);not null"`
	APIURL              string `json:"api_url" yaml:"api_url" gorm:"column:api_url;type:text;not null"`
	LogoURL             string `json:"logo_url" yaml:"logo_url" gorm:"column:logo_url;type:text;not null"`
	ContactEmail        string `json:"contact_email" yaml:"contact_email" gorm:"type:varchar(255);not null"`
	LegalInfoURL        string `json:"legal_info_url" yaml:"legal_info_url" gorm:"column:legal_info_url;type:text;not null"`
}

// Tool is the stored form of a tool.
type Tool struct {
	Id         int `json:"id" yaml:"id" gorm:"primaryKey"`
	ToolFields `yaml:",inline"`
	// HealthStatus is the status of the latest health report that carried an API URL.
	HealthStatus string    `json:"health_status,omitempty" yaml:"health_status,omitempty" gorm:"type:varchar(64);default:''"`
	CreatedAt    time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// TableName pins the table shared with the hosted store.
func (Tool) TableName() string {
	return "tools"
}

// ToolPatch carries a partial update. Nil fields keep their current value.
type ToolPatch struct {
	NameForHuman        *string `json:"name_for_human" yaml:"name_for_human"`
	NameForAI           *string `json:"name_for_ai" yaml:"name_for_ai"`
	DescriptionForHuman *string `json:"description_for_human" yaml:"description_for_human"`
	DescriptionForAI    *string `json:"description_for_ai" yaml:"description_for_ai"`
	APIType             *string `json:"api_type" yaml:"api_type"`
	APIURL              *string `json:"api_url" yaml:"api_url"`
	LogoURL             *string `json:"logo_url" yaml:"logo_url"`
	ContactEmail        *string `json:"contact_email" yaml:"contact_email"`
	LegalInfoURL        *string `json:"legal_info_url" yaml:"legal_info_url"`
}

// NewTool validates fields and returns an unsaved tool.
func NewTool(fields ToolFields) (*Tool, error) {
	if err := ValidateToolFields(&fields); err != nil {
		return nil, err
	}
	return &Tool{ToolFields: fields}, nil
}

// Apply merges the non-nil patch fields over the tool and re-validates.
// The tool is left untouched when the merged result is invalid.
func (t *Tool) Apply(patch *ToolPatch) error {
	if t == nil {
		return errors.New("tool is nil")
	}
	if patch == nil {
		return ValidateToolFields(&t.ToolFields)
	}

	merged := t.ToolFields
	// nil pointers are skipped, explicit empty strings are copied and then fail validation
	if err := copier.CopyWithOption(&merged, patch, copier.Option{IgnoreEmpty: true}); err != nil {
		return errors.Wrap(err, "merge tool patch")
	}
	if err := ValidateToolFields(&merged); err != nil {
		return err
	}
	t.ToolFields = merged
	return nil
}
