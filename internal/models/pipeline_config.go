package models

// ExtractorStrategy selects how constraints are derived from a use case.
type ExtractorStrategy string

const (
	ExtractorHeuristic  ExtractorStrategy = "heuristic"
	ExtractorGenerative ExtractorStrategy = "generative"
)

// StageConfig binds one pipeline stage to a generative backend. The
// extraction and ranking stages deliberately use two distinct models (cheap
// vs. higher quality), so each stage carries its own provider/model pair.
type StageConfig struct {
	Provider  string `yaml:"provider" json:"provider,omitzero"`
	Model     string `yaml:"model" json:"model,omitzero"`
	TimeoutMs int    `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
}

// ExtractorConfig configures the constraint extraction stage.
type ExtractorConfig struct {
	Strategy ExtractorStrategy `yaml:"strategy" json:"strategy,omitzero"`
	Stage    StageConfig       `yaml:"stage" json:"stage,omitzero"`
}

// RankerConfig configures the candidate ranking stage.
type RankerConfig struct {
	Stage StageConfig `yaml:"stage" json:"stage,omitzero"`
	// MaxCandidates bounds the list embedded in the ranking prompt. Default 50.
	MaxCandidates int `yaml:"max_candidates" json:"max_candidates,omitzero"`
	// MinCandidates is the relaxation ladder's minimum count. Default 10.
	MinCandidates int `yaml:"min_candidates" json:"min_candidates,omitzero"`
	// CircuitBreaker optionally guards the ranking backend (requires redis).
	CircuitBreaker *CircuitBreakerConfig `yaml:"circuit_breaker,omitempty" json:"circuit_breaker,omitzero"`
}

// CircuitBreakerConfig tunes the optional ranking circuit breaker.
type CircuitBreakerConfig struct {
	RedisURL         string `yaml:"redis_url" json:"redis_url,omitzero"`
	FailureThreshold int    `yaml:"failure_threshold" json:"failure_threshold,omitzero"`
	SuccessThreshold int    `yaml:"success_threshold" json:"success_threshold,omitzero"`
	TimeoutMs        int    `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
	ResetAfterMs     int    `yaml:"reset_after_ms" json:"reset_after_ms,omitzero"`
}

// AdminConfig guards the admin routes. Disabled when the secret is empty.
type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret" json:"-"`
}
