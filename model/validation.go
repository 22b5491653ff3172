package model

import (
	"strconv"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// toolFieldRule binds a tool attribute to its human label.
type toolFieldRule struct {
	field string
	label string
	value func(*ToolFields) string
	url   bool
}

// toolFieldRules is evaluated in order, the first failure wins.
var toolFieldRules = []toolFieldRule{
	{field: "name_for_human", label: "Name for human", value: func(f *ToolFields) string { return f.NameForHuman }},
	{field: "name_for_ai", label: "Name for AI", value: func(f *ToolFields) string { return f.NameForAI }},
	{field: "description_for_human", label: "Description for human", value: func(f *ToolFields) string { return f.DescriptionForHuman }},
	{field: "description_for_ai", label: "Description for AI", value: func(f *ToolFields) string { return f.DescriptionForAI }},
	{field: "api_type", label: "API type", value: func(f *ToolFields) string { return f.APIType }},
	{field: "api_url", label: "API URL", value: func(f *ToolFields) string { return f.APIURL }, url: true},
	{field: "logo_url", label: "Logo URL", value: func(f *ToolFields) string { return f.LogoURL }, url: true},
	{field: "contact_email", label: "Contact email", value: func(f *ToolFields) string { return f.ContactEmail }},
	{field: "legal_info_url", label: "Legal info URL", value: func(f *ToolFields) string { return f.LegalInfoURL }, url: true},
}

// ValidateToolFields checks presence of every attribute, then URL syntax.
// All presence checks run before any syntax check.
func ValidateToolFields(fields *ToolFields) error {
	if fields == nil {
		return &ValidationError{Field: "tool", Kind: ValidationMissing, Message: "Tool is required"}
	}
	v := getValidator()

	for _, rule := range toolFieldRules {
		if err := v.Var(rule.value(fields), "required"); err != nil {
			return &ValidationError{Field: rule.field, Kind: ValidationMissing, Message: rule.label + " is required"}
		}
	}

	for _, rule := range toolFieldRules {
		if !rule.url {
			continue
		}
		if err := v.Var(rule.value(fields), "http_url"); err != nil {
			return &ValidationError{Field: rule.field, Kind: ValidationInvalid, Message: rule.label + " is not a valid URL"}
		}
	}

	return nil
}

// ValidateHealthUpdate checks a health report before it is persisted.
func ValidateHealthUpdate(toolID, healthStatus, apiURL string) error {
	v := getValidator()

	if err := v.Var(toolID, "required"); err != nil {
		return &ValidationError{Field: "tool_id", Kind: ValidationMissing, Message: "Tool ID is required"}
	}
	if err := v.Var(healthStatus, "required"); err != nil {
		return &ValidationError{Field: "health_status", Kind: ValidationMissing, Message: "Health status is required"}
	}
	if _, err := parseID(toolID); err != nil {
		return &ValidationError{Field: "tool_id", Kind: ValidationInvalid, Message: "Tool ID is not valid"}
	}
	if apiURL != "" {
		if err := v.Var(apiURL, "http_url"); err != nil {
			return &ValidationError{Field: "api_url", Kind: ValidationInvalid, Message: "New API URL is not valid"}
		}
	}
	return nil
}

// parseID converts a path identifier into a positive store id.
func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
