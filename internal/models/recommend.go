package models

// DefaultRecommendationCount is the short-list size used when the request
// does not specify one.
const DefaultRecommendationCount = 5

// RecommendRequest is the body of POST /recommend.
type RecommendRequest struct {
	UseCase string `json:"useCase"`
	Count   int    `json:"count,omitzero"`
}

// Recommendation pairs a model identifier with the ranking model's
// justification. Immutable once produced; optionally enriched with the full
// catalog record before display.
type Recommendation struct {
	ModelID string `json:"model_id"`
	Reason  string `json:"reason"`
	Model   *Model `json:"model,omitempty"`
}

// FilterResult is the candidate list plus the relaxation metadata the filter
// reports. RelaxLevel is the smallest level (0-3) whose candidate count met
// the minimum, or 3 when even the fallback was needed.
type FilterResult struct {
	Candidates     []Model `json:"-"`
	RelaxLevel     int     `json:"relaxLevel"`
	AfterFiltering int     `json:"afterFiltering"`
}

// StageTiming holds per-stage pipeline latencies in milliseconds.
type StageTiming struct {
	ExtractMs int64 `json:"stage1_ms"`
	FilterMs  int64 `json:"stage2_ms"`
	RankMs    int64 `json:"stage3_ms"`
	TotalMs   int64 `json:"total_ms"`
}

// RecommendMetadata echoes how the pipeline arrived at its answer.
type RecommendMetadata struct {
	TotalModels      int                  `json:"totalModels"`
	Constraints      ExtractedConstraints `json:"constraints"`
	AfterFiltering   int                  `json:"afterFiltering"`
	RelaxLevel       int                  `json:"relaxLevel"`
	CandidatesRanked int                  `json:"candidatesRanked"`
	Timing           StageTiming          `json:"timing"`
	CacheTier        string               `json:"cache_tier,omitzero"`
}

// RecommendResponse is the body of a successful POST /recommend.
type RecommendResponse struct {
	Recommendations []Recommendation  `json:"recommendations"`
	Metadata        RecommendMetadata `json:"metadata"`
}

// ModelsResponse mirrors the upstream catalog list shape for GET /models.
type ModelsResponse struct {
	Data []Model `json:"data"`
}
