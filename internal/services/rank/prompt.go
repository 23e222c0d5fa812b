package rank

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/valyala/bytebufferpool"
)

const maxDescriptionChars = 300

const rankSystemPrompt = `You are a model recommendation engine. Given a use case and a candidate list, select the best matches.

Respond with ONLY a JSON object of this exact shape:
{"recommendations": [{"model_id": "<id from the candidate list>", "reason": "<one sentence>"}]}

Rules:
- Select exactly the requested number of models, fewer only if the candidate list is smaller.
- model_id must be copied verbatim from the candidate list. Never invent an id.
- reason is one sentence explaining why the model fits this specific use case.
- Order recommendations from best fit to worst.`

// candidate is the compact projection embedded in the ranking prompt. The
// full Model record is too verbose to include fifty times over.
type candidate struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description,omitzero"`
	ContextLength    int      `json:"context_length"`
	PromptPrice      string   `json:"prompt_price"`
	CompletionPrice  string   `json:"completion_price"`
	ImagePrice       string   `json:"image_price,omitzero"`
	InputModalities  []string `json:"input_modalities"`
	OutputModalities []string `json:"output_modalities"`
	Provider         string   `json:"provider"`
}

func projectCandidate(m *models.Model) candidate {
	description := m.Description
	if len(description) > maxDescriptionChars {
		description = description[:maxDescriptionChars]
	}

	return candidate{
		ID:               m.ID,
		Name:             m.Name,
		Description:      description,
		ContextLength:    m.ContextLength,
		PromptPrice:      m.Pricing.Prompt,
		CompletionPrice:  m.Pricing.Completion,
		ImagePrice:       m.Pricing.Image,
		InputModalities:  m.Architecture.InputModalities,
		OutputModalities: m.Architecture.OutputModalities,
		Provider:         m.ProviderPrefix(),
	}
}

// renderUserPrompt assembles the ranking prompt. Candidate lists run to
// tens of kilobytes, so the assembly buffer comes from a pool.
func renderUserPrompt(useCase string, candidates []models.Model, count int) (string, error) {
	projections := make([]candidate, len(candidates))
	for i := range candidates {
		projections[i] = projectCandidate(&candidates[i])
	}

	encoded, err := json.Marshal(projections)
	if err != nil {
		return "", fmt.Errorf("failed to encode candidates: %w", err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	buf.WriteString("Use case: ")
	buf.WriteString(useCase)
	buf.WriteString("\n\nSelect the ")
	buf.WriteString(strconv.Itoa(count))
	buf.WriteString(" best models for this use case.\n\nCandidates:\n")
	buf.Write(encoded)

	return buf.String(), nil
}
