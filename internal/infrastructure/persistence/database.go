package persistence

import (
	"fmt"
	"time"

	"github.com/circlesoft/crm/internal/infrastructure/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the GORM connection backing the key-value store
type Database struct {
	DB     *gorm.DB
	Driver string
}

// NewSQLiteDatabase opens (or creates) a sqlite database file and migrates
// the key-value table. Use ":memory:" for an ephemeral database.
func NewSQLiteDatabase(path string, gl gormlogger.Interface) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(gl))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// sqlite serializes writers; one connection avoids SQLITE_BUSY
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &Database{DB: db, Driver: "sqlite"}
	if err := d.AutoMigrate(); err != nil {
		return nil, err
	}
	return d, nil
}

// NewPostgresDatabase connects to postgres. The schema is managed by the
// migrate command, not by AutoMigrate.
func NewPostgresDatabase(cfg *config.DatabaseConfig, gl gormlogger.Interface) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(gl))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &Database{DB: db, Driver: "postgres"}, nil
}

func gormConfig(gl gormlogger.Interface) *gorm.Config {
	if gl == nil {
		gl = gormlogger.Default.LogMode(gormlogger.Silent)
	}
	return &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	}
}

// AutoMigrate creates the key-value table when missing
func (d *Database) AutoMigrate() error {
	if err := d.DB.AutoMigrate(&KVEntry{}); err != nil {
		return fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Ping()
}
