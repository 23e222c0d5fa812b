package filter

import (
	"strings"

	"github.com/modelscout/modelscout/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// Relaxation levels. The ladder drops soft requirements (price, context,
// keyword affinity) first and hard capability requirements (modality,
// exclusions) last, so the ranking stage is never starved of candidates.
const (
	LevelStrict   = 0
	LevelSoft     = 1
	LevelMinimal  = 2
	LevelFallback = 3
)

// DefaultMinCandidates is the threshold a relaxation level must meet before
// the ladder stops.
const DefaultMinCandidates = 10

var perMillion = decimal.NewFromInt(1_000_000)

// Apply runs the progressive-relaxation filter: levels 0-2 in order,
// stopping at the first level with at least minCandidates survivors, then
// the text-modality fallback. The returned relax level is always the
// smallest level that met the threshold, or LevelFallback.
func Apply(catalog []models.Model, constraints models.ExtractedConstraints, minCandidates int) models.FilterResult {
	if minCandidates <= 0 {
		minCandidates = DefaultMinCandidates
	}

	for level := LevelStrict; level < LevelFallback; level++ {
		candidates := filterAtLevel(catalog, constraints, level)
		if len(candidates) >= minCandidates {
			return models.FilterResult{
				Candidates:     candidates,
				RelaxLevel:     level,
				AfterFiltering: len(candidates),
			}
		}
		fiberlog.Debugf("[filter] level %d kept %d/%d models, below threshold %d",
			level, len(candidates), len(catalog), minCandidates)
	}

	candidates := textCapable(catalog)
	if len(candidates) == 0 {
		// Nothing in the catalog even mentions text. Hand the ranker the
		// whole catalog rather than an empty candidate list.
		candidates = append([]models.Model(nil), catalog...)
	}

	return models.FilterResult{
		Candidates:     candidates,
		RelaxLevel:     LevelFallback,
		AfterFiltering: len(candidates),
	}
}

func filterAtLevel(catalog []models.Model, constraints models.ExtractedConstraints, level int) []models.Model {
	candidates := make([]models.Model, 0, len(catalog))
	for i := range catalog {
		if passes(&catalog[i], constraints, level) {
			candidates = append(candidates, catalog[i])
		}
	}
	return candidates
}

func passes(m *models.Model, c models.ExtractedConstraints, level int) bool {
	// Exclusion checks apply at every level below the fallback.
	if matchesProvider(m, c.ExcludedProviders) {
		return false
	}
	if containsAnyKeyword(m.SearchText(), c.ExcludeKeywords) {
		return false
	}

	switch level {
	case LevelStrict:
		return coversModalities(m.Architecture.InputModalities, c.InputModalities, false) &&
			coversModalities(m.Architecture.OutputModalities, c.OutputModalities, false) &&
			meetsContext(m, c.MinContextLength) &&
			meetsPrice(m, c.MaxPricePerMillion) &&
			matchesPreferredProvider(m, c.PreferredProviders) &&
			hasCapabilityKeyword(m, c.CapabilityKeywords)
	case LevelSoft:
		return coversModalities(m.Architecture.InputModalities, c.InputModalities, false) &&
			coversModalities(m.Architecture.OutputModalities, c.OutputModalities, false)
	default:
		// Minimal: only non-text modality requirements still bind, so a
		// plain text request no longer constrains modality at all.
		return coversModalities(m.Architecture.InputModalities, c.InputModalities, true) &&
			coversModalities(m.Architecture.OutputModalities, c.OutputModalities, true)
	}
}

// coversModalities reports whether every required modality appears in the
// model's supported list. With nonTextOnly set, "text" requirements are
// treated as vacuous.
func coversModalities(supported, required []string, nonTextOnly bool) bool {
	for _, req := range required {
		req = strings.ToLower(req)
		if nonTextOnly && req == "text" {
			continue
		}
		found := false
		for _, have := range supported {
			if strings.EqualFold(have, req) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func meetsContext(m *models.Model, minContext int) bool {
	if minContext <= 0 {
		return true
	}
	return m.ContextLength >= minContext
}

// meetsPrice compares the per-token prompt price scaled to dollars per
// million tokens against the cap, exactly, with no intermediate rounding.
func meetsPrice(m *models.Model, maxPerMillion string) bool {
	if maxPerMillion == "" {
		return true
	}
	priceCap, err := decimal.NewFromString(maxPerMillion)
	if err != nil {
		return true
	}
	promptPrice, err := decimal.NewFromString(m.Pricing.Prompt)
	if err != nil {
		return true
	}
	return promptPrice.Mul(perMillion).LessThanOrEqual(priceCap)
}

func matchesPreferredProvider(m *models.Model, preferred []string) bool {
	if len(preferred) == 0 {
		return true
	}
	return matchesProvider(m, preferred)
}

// matchesProvider is a case-insensitive prefix match on the model ID.
func matchesProvider(m *models.Model, providers []string) bool {
	id := strings.ToLower(m.ID)
	for _, provider := range providers {
		provider = strings.ToLower(strings.TrimSpace(provider))
		if provider != "" && strings.HasPrefix(id, provider) {
			return true
		}
	}
	return false
}

func hasCapabilityKeyword(m *models.Model, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	return containsAnyKeyword(m.SearchText(), keywords)
}

func containsAnyKeyword(haystack string, keywords []string) bool {
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(haystack, keyword) {
			return true
		}
	}
	return false
}

func textCapable(catalog []models.Model) []models.Model {
	candidates := make([]models.Model, 0, len(catalog))
	for i := range catalog {
		if strings.Contains(strings.ToLower(catalog[i].Architecture.Modality), "text") {
			candidates = append(candidates, catalog[i])
		}
	}
	return candidates
}
