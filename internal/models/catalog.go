package models

import (
	"strings"
	"time"
)

const defaultModality = "text->text"

// Pricing holds per-unit costs as decimal strings, exactly as the upstream
// catalog reports them. Values are kept as strings to avoid floating-point
// precision loss; use ParsePrice for comparisons.
type Pricing struct {
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
	Request    string `json:"request,omitzero"`
	Image      string `json:"image,omitzero"`
}

// Architecture describes a model's supported modalities and tokenizer.
// Modality is the combined form "text+image->text"; the input/output lists
// are the parsed components.
type Architecture struct {
	Modality         string   `json:"modality"`
	InputModalities  []string `json:"input_modalities,omitzero"`
	OutputModalities []string `json:"output_modalities,omitzero"`
	Tokenizer        string   `json:"tokenizer,omitzero"`
}

// Model is one normalized catalog entry.
type Model struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Description   string       `json:"description,omitzero"`
	ContextLength int          `json:"context_length"`
	Pricing       Pricing      `json:"pricing"`
	Architecture  Architecture `json:"architecture"`
	Provider      string       `json:"provider,omitzero"`
}

// ProviderPrefix returns the provider segment of the model ID
// ("openai/gpt-4o" -> "openai"). Falls back to the explicit provider field.
func (m *Model) ProviderPrefix() string {
	if idx := strings.Index(m.ID, "/"); idx > 0 {
		return m.ID[:idx]
	}
	return m.Provider
}

// SearchText returns the lowercased haystack used for keyword matching.
func (m *Model) SearchText() string {
	return strings.ToLower(m.ID + " " + m.Name + " " + m.Description)
}

// ParseModality splits a combined modality string into input and output
// modality lists. A string without exactly one "->" separator parses as
// text-in/text-out.
func ParseModality(modality string) (inputs, outputs []string) {
	parts := strings.Split(modality, "->")
	if len(parts) != 2 {
		return []string{"text"}, []string{"text"}
	}
	inputs = splitModalities(parts[0])
	outputs = splitModalities(parts[1])
	return inputs, outputs
}

func splitModalities(s string) []string {
	raw := strings.Split(s, "+")
	out := make([]string, 0, len(raw))
	for _, m := range raw {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			out = append(out, m)
		}
	}
	if len(out) == 0 {
		return []string{"text"}
	}
	return out
}

// JoinModality builds the combined modality string from input and output
// lists, defaulting both sides to text.
func JoinModality(inputs, outputs []string) string {
	if len(inputs) == 0 {
		inputs = []string{"text"}
	}
	if len(outputs) == 0 {
		outputs = []string{"text"}
	}
	return strings.Join(inputs, "+") + "->" + strings.Join(outputs, "+")
}

// Normalize fills defaults for fields the upstream catalog may omit and keeps
// the modality string and the parsed lists consistent with each other.
func (m *Model) Normalize() {
	if m.Name == "" {
		m.Name = m.ID
	}
	if m.Pricing.Prompt == "" {
		m.Pricing.Prompt = "0"
	}
	if m.Pricing.Completion == "" {
		m.Pricing.Completion = "0"
	}
	if m.Pricing.Request == "" {
		m.Pricing.Request = "0"
	}
	if m.Pricing.Image == "" {
		m.Pricing.Image = "0"
	}

	switch {
	case m.Architecture.Modality == "" && len(m.Architecture.InputModalities) == 0 && len(m.Architecture.OutputModalities) == 0:
		m.Architecture.Modality = defaultModality
	case m.Architecture.Modality == "":
		m.Architecture.Modality = JoinModality(m.Architecture.InputModalities, m.Architecture.OutputModalities)
	}

	if len(m.Architecture.InputModalities) == 0 || len(m.Architecture.OutputModalities) == 0 {
		inputs, outputs := ParseModality(m.Architecture.Modality)
		if len(m.Architecture.InputModalities) == 0 {
			m.Architecture.InputModalities = inputs
		}
		if len(m.Architecture.OutputModalities) == 0 {
			m.Architecture.OutputModalities = outputs
		}
	}

	if m.Provider == "" {
		m.Provider = m.ProviderPrefix()
	}
}

// CachedCatalog is the catalog list plus its fetch timestamp. It is replaced
// wholesale on refresh and never partially mutated.
type CachedCatalog struct {
	Models    []Model   `json:"models"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Fresh reports whether the catalog is still within the given TTL.
func (c *CachedCatalog) Fresh(ttl time.Duration) bool {
	if c == nil || len(c.Models) == 0 {
		return false
	}
	return time.Since(c.FetchedAt) <= ttl
}
