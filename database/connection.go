// database/connection.go
package database

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/go-sql-driver/mysql" // MariaDB/MySQL driver
	_ "modernc.org/sqlite"             // embedded default

	"github.com/gewnthar/tollwatch/config"
)

var (
	DB     *sql.DB
	driver string
)

// InitDB opens the ledger database and ensures its schema exists.
func InitDB(cfg config.DatabaseConfig) error {
	var (
		dsn string
		err error
	)
	switch cfg.Driver {
	case "mysql":
		dsn = cfg.MySQLDSN()
	case "sqlite":
		dsn = cfg.DSN
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
			}
		}
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	DB, err = sql.Open(cfg.Driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}
	driver = cfg.Driver

	// Configure connection pool settings
	if driver == "sqlite" {
		DB.SetMaxOpenConns(1)
	} else {
		DB.SetMaxOpenConns(5)
		DB.SetMaxIdleConns(5)
		DB.SetConnMaxLifetime(5 * time.Minute)
	}

	// Ping the database to verify connection
	if err = DB.Ping(); err != nil {
		CloseDB()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if err = ensureSchema(); err != nil {
		CloseDB()
		return err
	}

	slog.Info("Database: connected to run ledger", "driver", driver)
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		DB.Close()
		DB = nil
		slog.Info("Database: connection closed")
	}
}

func ensureSchema() error {
	stmts := sqliteSchema
	if driver == "mysql" {
		stmts = mysqlSchema
	}
	for _, stmt := range stmts {
		if _, err := DB.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply ledger schema: %w", err)
		}
	}
	return nil
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS snapshot_runs (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		kind       TEXT NOT NULL,
		path       TEXT NOT NULL,
		row_count  INTEGER NOT NULL,
		taken_at   TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_runs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		kind          TEXT NOT NULL,
		previous_path TEXT,
		current_path  TEXT,
		verdict       TEXT NOT NULL,
		reason        TEXT,
		changed_cells INTEGER NOT NULL,
		artifact_path TEXT,
		compared_at   TIMESTAMP NOT NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS snapshot_runs (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		kind       VARCHAR(32) NOT NULL,
		path       VARCHAR(512) NOT NULL,
		row_count  INT NOT NULL,
		taken_at   DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS comparison_runs (
		id            BIGINT AUTO_INCREMENT PRIMARY KEY,
		kind          VARCHAR(32) NOT NULL,
		previous_path VARCHAR(512),
		current_path  VARCHAR(512),
		verdict       VARCHAR(32) NOT NULL,
		reason        TEXT,
		changed_cells INT NOT NULL,
		artifact_path VARCHAR(512),
		compared_at   DATETIME NOT NULL
	)`,
}
