package models

// ProviderConfig holds credentials and connection settings for a generative
// provider backend.
type ProviderConfig struct {
	APIKey    string `yaml:"api_key" json:"api_key,omitzero"`
	BaseURL   string `yaml:"base_url" json:"base_url,omitzero"`
	TimeoutMs int    `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
}
