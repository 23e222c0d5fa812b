package database

import (
	"fmt"

	"github.com/modelscout/modelscout/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps a gorm handle together with the driver it was opened with.
type DB struct {
	*gorm.DB
	driverName string
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping() error {
	if db.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) DriverName() string {
	return db.driverName
}

// New opens a connection for the configured snapshot driver.
func New(config models.SnapshotConfig) (*DB, error) {
	switch config.Driver {
	case models.DriverSQLite:
		return newSQLite(config)
	case models.DriverPostgreSQL:
		return newPostgreSQL(config)
	default:
		return nil, fmt.Errorf("unsupported snapshot driver: %s", config.Driver)
	}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
}
