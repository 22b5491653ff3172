package model

const (
	// PluginSchemaVersion is the manifest schema emitted for every tool.
	PluginSchemaVersion = "v1"
	// PluginAuthNone is the only auth type a manifest advertises.
	PluginAuthNone = "none"
)

// PluginManifest describes a tool to AI clients in the ai-plugin format.
type PluginManifest struct {
	SchemaVersion       string     `json:"schema_version" yaml:"schema_version"`
	NameForHuman        string     `json:"name_for_human" yaml:"name_for_human"`
	NameForModel        string     `json:"name_for_model" yaml:"name_for_model"`
	DescriptionForHuman string     `json:"description_for_human" yaml:"description_for_human"`
	DescriptionForModel string     `json:"description_for_model" yaml:"description_for_model"`
	Auth                PluginAuth `json:"auth" yaml:"auth"`
	API                 PluginAPI  `json:"api" yaml:"api"`
	LogoURL             string     `json:"logo_url" yaml:"logo_url"`
	ContactEmail        string     `json:"contact_email" yaml:"contact_email"`
	LegalInfoURL        string     `json:"legal_info_url" yaml:"legal_info_url"`
}

// PluginAuth is the manifest auth block.
type PluginAuth struct {
	Type string `json:"type" yaml:"type"`
}

// PluginAPI points clients at the tool's API description. Tools are
// registered without per-user auth, so HasUserAuthentication is always false.
type PluginAPI struct {
	Type                  string `json:"type" yaml:"type"`
	URL                   string `json:"url" yaml:"url"`
	HasUserAuthentication bool   `json:"has_user_authentication" yaml:"has_user_authentication"`
}

// ToPlugin renders the tool as a plugin manifest.
func (t *Tool) ToPlugin() *PluginManifest {
	if t == nil {
		return nil
	}
	return &PluginManifest{
		SchemaVersion:       PluginSchemaVersion,
		NameForHuman:        t.NameForHuman,
		NameForModel:        t.NameForAI,
		DescriptionForHuman: t.DescriptionForHuman,
		DescriptionForModel: t.DescriptionForAI,
		Auth:                PluginAuth{Type: PluginAuthNone},
		API:                 PluginAPI{Type: t.APIType, URL: t.APIURL, HasUserAuthentication: false},
		LogoURL:             t.LogoURL,
		ContactEmail:        t.ContactEmail,
		LegalInfoURL:        t.LegalInfoURL,
	}
}
