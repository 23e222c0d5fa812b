package models

// SpeedPreference expresses the latency/quality trade-off extracted from a
// use case.
type SpeedPreference string

const (
	SpeedFast     SpeedPreference = "fast"
	SpeedBalanced SpeedPreference = "balanced"
	SpeedPowerful SpeedPreference = "powerful"
	SpeedAny      SpeedPreference = "any"
)

// Valid reports whether the preference is one of the known values.
func (s SpeedPreference) Valid() bool {
	switch s {
	case SpeedFast, SpeedBalanced, SpeedPowerful, SpeedAny:
		return true
	}
	return false
}

// ExtractedConstraints is the structured requirement set derived from one
// use-case string. Created fresh per recommendation request and never mutated
// afterwards.
type ExtractedConstraints struct {
	InputModalities    []string        `json:"input_modalities,omitzero"`
	OutputModalities   []string        `json:"output_modalities,omitzero"`
	MinContextLength   int             `json:"min_context_length,omitzero"`
	MaxPricePerMillion string          `json:"max_price_per_million,omitzero"`
	PreferredProviders []string        `json:"preferred_providers,omitzero"`
	ExcludedProviders  []string        `json:"excluded_providers,omitzero"`
	CapabilityKeywords []string        `json:"capability_keywords,omitzero"`
	ExcludeKeywords    []string        `json:"exclude_keywords,omitzero"`
	SpeedPreference    SpeedPreference `json:"speed_preference,omitzero"`
}

// DefaultConstraints returns the conservative fallback used when generative
// extraction fails: text in/out, no context or price requirements, and the
// standard embedding/base-model exclusions.
func DefaultConstraints() ExtractedConstraints {
	return ExtractedConstraints{
		InputModalities:  []string{"text"},
		OutputModalities: []string{"text"},
		ExcludeKeywords:  []string{"embedding", "base"},
		SpeedPreference:  SpeedAny,
	}
}

// Empty reports whether the constraint set places no requirement at all.
func (c *ExtractedConstraints) Empty() bool {
	return len(c.InputModalities) == 0 &&
		len(c.OutputModalities) == 0 &&
		c.MinContextLength == 0 &&
		c.MaxPricePerMillion == "" &&
		len(c.PreferredProviders) == 0 &&
		len(c.ExcludedProviders) == 0 &&
		len(c.CapabilityKeywords) == 0 &&
		len(c.ExcludeKeywords) == 0
}
