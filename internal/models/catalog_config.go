package models

// CatalogConfig configures the upstream model catalog and its cache.
type CatalogConfig struct {
	// BaseURL of the catalog API (the /models endpoint is appended).
	BaseURL string `yaml:"base_url" json:"base_url,omitzero"`
	// TTLHours is how long a fetched catalog stays fresh. Default 6.
	TTLHours int `yaml:"ttl_hours" json:"ttl_hours,omitzero"`
	// TimeoutMs bounds a single upstream fetch. Default 15000.
	TimeoutMs int `yaml:"timeout_ms" json:"timeout_ms,omitzero"`
	// Snapshot optionally persists the catalog across restarts.
	Snapshot *SnapshotConfig `yaml:"snapshot,omitempty" json:"snapshot,omitzero"`
}

// SnapshotConfig configures the optional on-disk catalog snapshot store.
// Snapshots are a warm-start optimization, not a durability guarantee.
type SnapshotConfig struct {
	Driver DatabaseDriver `yaml:"driver" json:"driver"`
	DSN    string         `yaml:"dsn,omitempty" json:"dsn,omitzero"`
	// FilePath is the database file location for the sqlite driver.
	FilePath string `yaml:"file_path,omitempty" json:"file_path,omitzero"`
	// TTLHours is the maximum snapshot age accepted at startup. Default 72.
	TTLHours int `yaml:"ttl_hours,omitempty" json:"ttl_hours,omitzero"`
}

// DatabaseDriver names a supported snapshot backend.
type DatabaseDriver string

const (
	DriverSQLite     DatabaseDriver = "sqlite"
	DriverPostgreSQL DatabaseDriver = "postgresql"
)
