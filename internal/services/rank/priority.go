package rank

import (
	"sort"
	"strings"

	"github.com/modelscout/modelscout/internal/models"
)

// providerPriority orders candidates before truncation so that trimming an
// oversized candidate list drops the least-known providers first instead of
// an arbitrary slice.
var providerPriority = []string{
	"openai",
	"anthropic",
	"google",
	"meta-llama",
	"mistralai",
	"deepseek",
	"qwen",
	"x-ai",
	"cohere",
	"amazon",
	"microsoft",
	"nvidia",
	"perplexity",
}

func providerRank(m *models.Model) int {
	prefix := strings.ToLower(m.ProviderPrefix())
	for i, provider := range providerPriority {
		if prefix == provider {
			return i
		}
	}
	return len(providerPriority)
}

// sortByProviderPriority is a stable sort: candidates from the same
// provider keep their catalog order.
func sortByProviderPriority(candidates []models.Model) {
	sort.SliceStable(candidates, func(i, j int) bool {
		return providerRank(&candidates[i]) < providerRank(&candidates[j])
	})
}
