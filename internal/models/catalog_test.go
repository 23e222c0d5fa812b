package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModality(t *testing.T) {
	tests := []struct {
		name     string
		modality string
		inputs   []string
		outputs  []string
	}{
		{
			name:     "text only",
			modality: "text->text",
			inputs:   []string{"text"},
			outputs:  []string{"text"},
		},
		{
			name:     "multimodal input",
			modality: "text+image->text",
			inputs:   []string{"text", "image"},
			outputs:  []string{"text"},
		},
		{
			name:     "missing separator defaults to text",
			modality: "multimodal",
			inputs:   []string{"text"},
			outputs:  []string{"text"},
		},
		{
			name:     "empty string defaults to text",
			modality: "",
			inputs:   []string{"text"},
			outputs:  []string{"text"},
		},
		{
			name:     "double separator defaults to text",
			modality: "text->image->text",
			inputs:   []string{"text"},
			outputs:  []string{"text"},
		},
		{
			name:     "mixed case is folded",
			modality: "Text+IMAGE->Text",
			inputs:   []string{"text", "image"},
			outputs:  []string{"text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, outputs := ParseModality(tt.modality)
			assert.Equal(t, tt.inputs, inputs)
			assert.Equal(t, tt.outputs, outputs)
		})
	}
}

func TestJoinModality(t *testing.T) {
	assert.Equal(t, "text+image->text", JoinModality([]string{"text", "image"}, []string{"text"}))
	assert.Equal(t, "text->text", JoinModality(nil, nil))
}

func TestModelNormalize(t *testing.T) {
	t.Run("fills pricing and modality defaults", func(t *testing.T) {
		m := Model{ID: "openai/gpt-4o"}
		m.Normalize()

		assert.Equal(t, "openai/gpt-4o", m.Name)
		assert.Equal(t, "0", m.Pricing.Prompt)
		assert.Equal(t, "0", m.Pricing.Completion)
		assert.Equal(t, "text->text", m.Architecture.Modality)
		assert.Equal(t, []string{"text"}, m.Architecture.InputModalities)
		assert.Equal(t, []string{"text"}, m.Architecture.OutputModalities)
		assert.Equal(t, "openai", m.Provider)
	})

	t.Run("synthesizes modality string from lists", func(t *testing.T) {
		m := Model{
			ID: "google/gemini-pro",
			Architecture: Architecture{
				InputModalities:  []string{"text", "image"},
				OutputModalities: []string{"text"},
			},
		}
		m.Normalize()

		assert.Equal(t, "text+image->text", m.Architecture.Modality)
	})

	t.Run("parses lists from modality string", func(t *testing.T) {
		m := Model{
			ID:           "test/multi",
			Architecture: Architecture{Modality: "text+audio->text"},
		}
		m.Normalize()

		assert.Equal(t, []string{"text", "audio"}, m.Architecture.InputModalities)
		assert.Equal(t, []string{"text"}, m.Architecture.OutputModalities)
	})
}

func TestProviderPrefix(t *testing.T) {
	m := Model{ID: "anthropic/claude-sonnet-4"}
	assert.Equal(t, "anthropic", m.ProviderPrefix())

	bare := Model{ID: "standalone", Provider: "acme"}
	assert.Equal(t, "acme", bare.ProviderPrefix())
}
