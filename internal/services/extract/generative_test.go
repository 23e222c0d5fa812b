package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/stretchr/testify/assert"
)

type mockClient struct {
	response string
	err      error
}

func (m *mockClient) CompleteJSON(_ context.Context, _, _, _ string) (string, error) {
	return m.response, m.err
}

func newGenerative(client *mockClient) *GenerativeExtractor {
	return NewGenerativeExtractor(client, models.StageConfig{Model: "test-model"})
}

func TestGenerativeExtractParsesConstraints(t *testing.T) {
	client := &mockClient{
		response: `{"input_modalities":["text","image"],"output_modalities":["text"],"max_price_per_million":"2","speed_preference":"fast","exclude_keywords":["embedding","base"]}`,
	}

	constraints := newGenerative(client).Extract(context.Background(), "analyze photos", "test")

	assert.Equal(t, []string{"text", "image"}, constraints.InputModalities)
	assert.Equal(t, "2", constraints.MaxPricePerMillion)
	assert.Equal(t, models.SpeedFast, constraints.SpeedPreference)
}

func TestGenerativeExtractStripsMarkdownFences(t *testing.T) {
	client := &mockClient{
		response: "```json\n{\"input_modalities\":[\"text\"],\"min_context_length\":32000}\n```",
	}

	constraints := newGenerative(client).Extract(context.Background(), "summarize articles", "test")

	assert.Equal(t, 32000, constraints.MinContextLength)
}

func TestGenerativeExtractFallsBackSilently(t *testing.T) {
	tests := []struct {
		name   string
		client *mockClient
	}{
		{
			name:   "upstream failure",
			client: &mockClient{err: models.NewUpstreamError("gemini", "timeout", errors.New("deadline exceeded"))},
		},
		{
			name:   "no JSON in response",
			client: &mockClient{response: "I cannot help with that."},
		},
		{
			name:   "malformed constraint shape",
			client: &mockClient{response: `{"input_modalities": "text"}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := newGenerative(tt.client).Extract(context.Background(), "anything", "test")
			assert.Equal(t, models.DefaultConstraints(), constraints)
		})
	}
}

func TestGenerativeExtractSanitizesOutput(t *testing.T) {
	client := &mockClient{
		response: `{"speed_preference":"ludicrous","min_context_length":-5}`,
	}

	constraints := newGenerative(client).Extract(context.Background(), "anything", "test")

	assert.Equal(t, models.SpeedAny, constraints.SpeedPreference)
	assert.Zero(t, constraints.MinContextLength)
	assert.Equal(t, []string{"text"}, constraints.InputModalities)
	assert.Equal(t, []string{"text"}, constraints.OutputModalities)
}
