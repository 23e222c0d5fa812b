package rank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockClient struct {
	response   string
	err        error
	lastUser   string
	lastSystem string
}

func (m *mockClient) CompleteJSON(_ context.Context, _, system, user string) (string, error) {
	m.lastSystem = system
	m.lastUser = user
	return m.response, m.err
}

func makeCandidates(ids ...string) []models.Model {
	candidates := make([]models.Model, 0, len(ids))
	for _, id := range ids {
		m := models.Model{ID: id, Architecture: models.Architecture{Modality: "text->text"}}
		m.Normalize()
		candidates = append(candidates, m)
	}
	return candidates
}

func newTestRanker(client *mockClient, maxCandidates int) *Ranker {
	return NewRanker(client, models.RankerConfig{
		Stage:         models.StageConfig{Model: "test-model"},
		MaxCandidates: maxCandidates,
	}, nil)
}

func TestRankReturnsRecommendations(t *testing.T) {
	client := &mockClient{
		response: `{"recommendations":[{"model_id":"openai/gpt-4o","reason":"strong general model"},{"model_id":"anthropic/claude-sonnet-4","reason":"good at analysis"}]}`,
	}
	ranker := newTestRanker(client, 50)
	candidates := makeCandidates("openai/gpt-4o", "anthropic/claude-sonnet-4", "acme/other")

	recs, ranked, err := ranker.Rank(context.Background(), "analysis assistant", candidates, 2, "test")

	require.NoError(t, err)
	assert.Equal(t, 3, ranked)
	require.Len(t, recs, 2)
	assert.Equal(t, "openai/gpt-4o", recs[0].ModelID)
	assert.Equal(t, "strong general model", recs[0].Reason)
}

func TestRankEveryIDFromCandidateSet(t *testing.T) {
	client := &mockClient{
		response: `{"recommendations":[{"model_id":"made-up/model","reason":"x"},{"model_id":"openai/gpt-4o","reason":"real"}]}`,
	}
	ranker := newTestRanker(client, 50)
	candidates := makeCandidates("openai/gpt-4o")

	recs, _, err := ranker.Rank(context.Background(), "chatbot", candidates, 2, "test")

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "openai/gpt-4o", recs[0].ModelID)
}

func TestRankFailuresSurface(t *testing.T) {
	tests := []struct {
		name   string
		client *mockClient
	}{
		{
			name:   "upstream error",
			client: &mockClient{err: models.NewUpstreamError("gemini", "boom", errors.New("network down"))},
		},
		{
			name:   "no JSON at all",
			client: &mockClient{response: "sorry, I can't rank these"},
		},
		{
			name:   "empty recommendations",
			client: &mockClient{response: `{"recommendations":[]}`},
		},
		{
			name:   "only unknown ids",
			client: &mockClient{response: `{"recommendations":[{"model_id":"ghost/model","reason":"x"}]}`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranker := newTestRanker(tt.client, 50)
			_, _, err := ranker.Rank(context.Background(), "chatbot", makeCandidates("openai/gpt-4o"), 1, "test")
			require.Error(t, err)

			var appErr *models.AppError
			require.ErrorAs(t, err, &appErr)
		})
	}
}

func TestRankTruncatesByProviderPriority(t *testing.T) {
	client := &mockClient{
		response: `{"recommendations":[{"model_id":"openai/gpt-4o","reason":"x"}]}`,
	}
	ranker := newTestRanker(client, 2)
	candidates := makeCandidates("obscure/model-a", "openai/gpt-4o", "anthropic/claude-sonnet-4")

	recs, ranked, err := ranker.Rank(context.Background(), "chatbot", candidates, 1, "test")

	require.NoError(t, err)
	assert.Equal(t, 2, ranked)
	require.Len(t, recs, 1)

	// The prompt should contain the two well-known providers, not the
	// obscure one that was truncated away.
	assert.Contains(t, client.lastUser, "openai/gpt-4o")
	assert.Contains(t, client.lastUser, "anthropic/claude-sonnet-4")
	assert.NotContains(t, client.lastUser, "obscure/model-a")
}

func TestRankCapsAtRequestedCount(t *testing.T) {
	recsJSON := make([]models.Recommendation, 0, 5)
	ids := []string{"a/m1", "a/m2", "a/m3", "a/m4", "a/m5"}
	for _, id := range ids {
		recsJSON = append(recsJSON, models.Recommendation{ModelID: id, Reason: "x"})
	}
	payload, err := json.Marshal(map[string]any{"recommendations": recsJSON})
	require.NoError(t, err)

	ranker := newTestRanker(&mockClient{response: string(payload)}, 50)
	recs, _, err := ranker.Rank(context.Background(), "chatbot", makeCandidates(ids...), 3, "test")

	require.NoError(t, err)
	assert.Len(t, recs, 3)
}

func TestRankDeduplicatesIDs(t *testing.T) {
	client := &mockClient{
		response: `{"recommendations":[{"model_id":"openai/gpt-4o","reason":"x"},{"model_id":"openai/gpt-4o","reason":"again"}]}`,
	}
	ranker := newTestRanker(client, 50)

	recs, _, err := ranker.Rank(context.Background(), "chatbot", makeCandidates("openai/gpt-4o", "acme/b"), 2, "test")

	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestRankEmptyCandidates(t *testing.T) {
	ranker := newTestRanker(&mockClient{}, 50)
	_, _, err := ranker.Rank(context.Background(), "chatbot", nil, 1, "test")
	require.Error(t, err)
}

func TestSortByProviderPriority(t *testing.T) {
	candidates := makeCandidates("zzz/last", "mistralai/mid", "openai/first", "unknown/also-last")
	sortByProviderPriority(candidates)

	assert.Equal(t, "openai/first", candidates[0].ID)
	assert.Equal(t, "mistralai/mid", candidates[1].ID)
	// Unknown providers keep their relative order at the tail.
	assert.Equal(t, "zzz/last", candidates[2].ID)
	assert.Equal(t, "unknown/also-last", candidates[3].ID)
}

func TestProjectCandidateTruncatesDescription(t *testing.T) {
	m := models.Model{ID: "acme/verbose"}
	for range 40 {
		m.Description += "0123456789"
	}
	m.Normalize()

	projected := projectCandidate(&m)
	assert.Len(t, projected.Description, maxDescriptionChars)
}

func TestRenderUserPromptIncludesCountAndUseCase(t *testing.T) {
	candidates := makeCandidates("openai/gpt-4o")
	prompt, err := renderUserPrompt("legal document review", candidates, 4)

	require.NoError(t, err)
	assert.Contains(t, prompt, "legal document review")
	assert.Contains(t, prompt, fmt.Sprintf("Select the %d best models", 4))
	assert.Contains(t, prompt, `"id":"openai/gpt-4o"`)
}
