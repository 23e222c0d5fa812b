package database

import (
	"fmt"

	"github.com/modelscout/modelscout/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newPostgreSQL(config models.SnapshotConfig) (*DB, error) {
	if config.DSN == "" {
		return nil, fmt.Errorf("dsn is required for PostgreSQL")
	}

	gormDB, err := gorm.Open(postgres.Open(config.DSN), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db := &DB{
		DB:         gormDB,
		driverName: "postgres",
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return db, nil
}
