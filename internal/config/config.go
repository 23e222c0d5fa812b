package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/modelscout/modelscout/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultCatalogBaseURL   = "https://openrouter.ai/api/v1"
	defaultCatalogTTLHours  = 6
	defaultSnapshotTTLHours = 72
	defaultCatalogTimeoutMs = 15000
	defaultStageTimeoutMs   = 20000
	defaultMaxCandidates    = 50
	defaultMinCandidates    = 10
)

// Config represents the complete application configuration
type Config struct {
	Server         models.ServerConfig              `yaml:"server"`
	Catalog        models.CatalogConfig             `yaml:"catalog"`
	Extractor      models.ExtractorConfig           `yaml:"extractor"`
	Ranker         models.RankerConfig              `yaml:"ranker"`
	Providers      map[string]models.ProviderConfig `yaml:"providers"`
	RecommendCache *models.RecommendCacheConfig     `yaml:"recommend_cache,omitempty"`
	Admin          *models.AdminConfig              `yaml:"admin,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Normalize provider map keys to lowercase for case-insensitive lookups
	if config.Providers != nil {
		normalized := make(map[string]models.ProviderConfig, len(config.Providers))
		for key, value := range config.Providers {
			normalized[strings.ToLower(key)] = value
		}
		config.Providers = normalized
	}

	config.applyDefaults()

	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// applyDefaults fills in unset values after parsing.
func (c *Config) applyDefaults() {
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = defaultCatalogBaseURL
	}
	if c.Catalog.TTLHours <= 0 {
		c.Catalog.TTLHours = defaultCatalogTTLHours
	}
	if c.Catalog.TimeoutMs <= 0 {
		c.Catalog.TimeoutMs = defaultCatalogTimeoutMs
	}
	if c.Catalog.Snapshot != nil && c.Catalog.Snapshot.TTLHours <= 0 {
		c.Catalog.Snapshot.TTLHours = defaultSnapshotTTLHours
	}

	if c.Extractor.Strategy == "" {
		c.Extractor.Strategy = models.ExtractorGenerative
	}
	if c.Extractor.Stage.TimeoutMs <= 0 {
		c.Extractor.Stage.TimeoutMs = defaultStageTimeoutMs
	}
	if c.Ranker.Stage.TimeoutMs <= 0 {
		c.Ranker.Stage.TimeoutMs = defaultStageTimeoutMs
	}
	if c.Ranker.MaxCandidates <= 0 {
		c.Ranker.MaxCandidates = defaultMaxCandidates
	}
	if c.Ranker.MinCandidates <= 0 {
		c.Ranker.MinCandidates = defaultMinCandidates
	}

	// The Gemini credential is accepted under two environment names; fill it
	// from either when the YAML left it empty.
	gemini := c.Providers["gemini"]
	if gemini.APIKey == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			gemini.APIKey = key
		} else if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
			gemini.APIKey = key
		}
		if c.Providers == nil {
			c.Providers = make(map[string]models.ProviderConfig)
		}
		c.Providers["gemini"] = gemini
	}
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	// Pattern matches ${VAR_NAME} or ${VAR_NAME:-default_value}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// GetProviderConfig returns the configuration for a specific generative provider
func (c *Config) GetProviderConfig(provider string) (models.ProviderConfig, bool) {
	cfg, exists := c.Providers[strings.ToLower(provider)]
	return cfg, exists
}

// CatalogTTL returns the catalog cache TTL as a duration.
func (c *Config) CatalogTTL() time.Duration {
	return time.Duration(c.Catalog.TTLHours) * time.Hour
}

// GetNormalizedLogLevel returns the log level in lowercase for consistent comparison
func (c *Config) GetNormalizedLogLevel() string {
	return strings.ToLower(c.Server.LogLevel)
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Validate checks if all required configuration values are set
func (c *Config) Validate() error {
	var missing []string

	if c.Server.Port == "" {
		missing = append(missing, "server.port")
	}
	if c.Server.AllowedOrigins == "" {
		missing = append(missing, "server.allowed_origins")
	}
	if c.Extractor.Strategy == models.ExtractorGenerative && c.Extractor.Stage.Provider == "" {
		missing = append(missing, "extractor.stage.provider")
	}
	if c.Ranker.Stage.Provider == "" {
		missing = append(missing, "ranker.stage.provider")
	}
	if c.Ranker.Stage.Model == "" {
		missing = append(missing, "ranker.stage.model")
	}
	if provider := c.Ranker.Stage.Provider; provider != "" {
		if cfg, ok := c.GetProviderConfig(provider); !ok || cfg.APIKey == "" {
			missing = append(missing, "providers."+strings.ToLower(provider)+".api_key")
		}
	}

	if len(missing) > 0 {
		return &ValidationError{MissingFields: missing}
	}

	return nil
}

// ValidationError represents configuration validation errors
type ValidationError struct {
	MissingFields []string
}

func (e *ValidationError) Error() string {
	return "missing required configuration fields: " + strings.Join(e.MissingFields, ", ")
}
