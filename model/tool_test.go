package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewToolRejectsInvalidFields(t *testing.T) {
	fields := sampleToolFields()
	fields.NameForHuman = ""

	tool, err := NewTool(fields)
	require.Nil(t, tool)
	require.EqualError(t, err, "Name for human is required")
}

func TestToolApply_PartialPatchKeepsOtherFields(t *testing.T) {
	tool, err := NewTool(sampleToolFields())
	require.NoError(t, err)
	tool.Id = 3

	err = tool.Apply(&ToolPatch{
		NameForHuman: strPtr("Weather Pro"),
		APIURL:       strPtr("https://pro.weather.example/openapi.json"),
	})
	require.NoError(t, err)

	require.Equal(t, 3, tool.Id)
	require.Equal(t, "Weather Pro", tool.NameForHuman)
	require.Equal(t, "https://pro.weather.example/openapi.json", tool.APIURL)
	require.Equal(t, "weather", tool.NameForAI)
	require.Equal(t, "ops@weather.example", tool.ContactEmail)
}

func TestToolApply_ExplicitEmptyFails(t *testing.T) {
	tool, err := NewTool(sampleToolFields())
	require.NoError(t, err)

	err = tool.Apply(&ToolPatch{ContactEmail: strPtr("")})
	require.EqualError(t, err, "Contact email is required")
	// the tool is unchanged when the merge is rejected
	require.Equal(t, "ops@weather.example", tool.ContactEmail)
}

func TestToolApply_InvalidURLRejected(t *testing.T) {
	tool, err := NewTool(sampleToolFields())
	require.NoError(t, err)

	err = tool.Apply(&ToolPatch{LegalInfoURL: strPtr("legal")})
	require.Error(t, err)
	require.True(t, IsValidationError(err))
	require.Equal(t, "https://weather.example/legal", tool.LegalInfoURL)
}

func TestToolPatchFromJSONDistinguishesAbsentAndEmpty(t *testing.T) {
	var patch ToolPatch
	require.NoError(t, json.Unmarshal([]byte(`{"api_type":"graphql","logo_url":""}`), &patch))

	require.NotNil(t, patch.APIType)
	require.Equal(t, "graphql", *patch.APIType)
	require.NotNil(t, patch.LogoURL)
	require.Empty(t, *patch.LogoURL)
	require.Nil(t, patch.NameForHuman)
}

func TestToolJSONShape(t *testing.T) {
	tool := &Tool{Id: 9, ToolFields: sampleToolFields()}

	payload, err := json.Marshal(tool)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	require.EqualValues(t, 9, decoded["id"])
	require.Equal(t, "Weather", decoded["name_for_human"])
	require.Equal(t, "https://weather.example/openapi.json", decoded["api_url"])
	require.NotContains(t, decoded, "ToolFields")
	require.NotContains(t, decoded, "created_at")
	require.NotContains(t, decoded, "health_status")
}

func TestToolFieldsFromYAML(t *testing.T) {
	doc := `
name_for_human: Weather
name_for_ai: weather
description_for_human: Forecasts for humans
description_for_ai: Returns the forecast for a city
api_type: openapi
api_url: https://weather.example/openapi.json
logo_url: https://weather.example/logo.png
contact_email: ops@weather.example
legal_info_url: https://weather.example/legal
`
	var fields ToolFields
	require.NoError(t, yaml.Unmarshal([]byte(doc), &fields))
	require.Equal(t, sampleToolFields(), fields)
}

func TestToolToPlugin(t *testing.T) {
	tool := &Tool{Id: 1, ToolFields: sampleToolFields()}

	manifest := tool.ToPlugin()
	require.Equal(t, PluginSchemaVersion, manifest.SchemaVersion)
	require.Equal(t, "weather", manifest.NameForModel)
	require.Equal(t, "Returns the forecast for a city", manifest.DescriptionForModel)
	require.Equal(t, PluginAuthNone, manifest.Auth.Type)
	require.Equal(t, "openapi", manifest.API.Type)
	require.Equal(t, "https://weather.example/openapi.json", manifest.API.URL)
	require.False(t, manifest.API.HasUserAuthentication)
	require.Equal(t, "https://weather.example/legal", manifest.LegalInfoURL)

	var nilTool *Tool
	require.Nil(t, nilTool.ToPlugin())
}
