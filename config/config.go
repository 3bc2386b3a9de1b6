// config/config.go
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type SourcesConfig struct {
	MarkersKML       string `yaml:"markers_kml"`
	CategoryDDL      string `yaml:"category_ddl"`
	RateTableURLTmpl string `yaml:"rate_table_url_template"` // fmt template: plaza id (%s), category index (%d)
}

type ScraperSelectorsConfig struct {
	CategorySelect string `yaml:"category_select"`
	RateTable      string `yaml:"rate_table"`
}

type HTTPConfig struct {
	TimeoutStr string        `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	Timeout    time.Duration `yaml:"-"` // Parsed duration
}

type StorageConfig struct {
	DataDirectory string `yaml:"data_directory"`
	DiffDirectory string `yaml:"diff_directory"`
}

type LoggingConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// DatabaseConfig configures the optional run ledger. Driver is "sqlite" or "mysql".
// For sqlite, DSN is a file path; for mysql it is built from the discrete fields
// unless DSN is set explicitly.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Config struct {
	Sources          SourcesConfig          `yaml:"sources"`
	ScraperSelectors ScraperSelectorsConfig `yaml:"scraper_selectors"`
	HTTP             HTTPConfig             `yaml:"http"`
	Storage          StorageConfig          `yaml:"storage"`
	Logging          LoggingConfig          `yaml:"logging"`
	Database         DatabaseConfig         `yaml:"database"`
}

var AppConfig Config

// candidate locations searched when no explicit path is given
var potentialPaths = []string{
	"config.yaml",
	"config/config.yaml",
}

// Default returns the configuration used when no config file is present.
func Default() Config {
	return Config{
		Sources: SourcesConfig{
			MarkersKML:       "https://onemotoring.lta.gov.sg/mapapp/kml/erp-kml/erp-kml-0.kml",
			CategoryDDL:      "https://datamall.lta.gov.sg/mapapp/pages/ddls/1_ddl.html",
			RateTableURLTmpl: "https://datamall.lta.gov.sg/mapapp/pages/tables/%s_table_%d.html",
		},
		ScraperSelectors: ScraperSelectorsConfig{
			CategorySelect: "select.selectstyle",
			RateTable:      "table.styler",
		},
		HTTP: HTTPConfig{
			TimeoutStr: "30s",
			UserAgent:  "tollwatch/1.0",
		},
		Storage: StorageConfig{
			DataDirectory: "data",
			DiffDirectory: ".",
		},
		Logging: LoggingConfig{
			File:  "data_extraction.log",
			Level: "info",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Port:   "3306",
		},
	}
}

// LoadConfig reads configuration from file and environment variables.
// An empty path searches the standard locations; if nothing is found the
// built-in defaults are used, since the command takes no parameters.
func LoadConfig(configPath string) (*Config, error) {
	cfg := Default()

	// .env is optional; a missing file is the common case.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if configPath == "" {
		for _, p := range potentialPaths {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	if configPath != "" {
		slog.Info("Config: loading configuration", "path", configPath)
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.finalize(); err != nil {
		return nil, err
	}

	AppConfig = cfg
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	setString("TOLLWATCH_DATA_DIR", &cfg.Storage.DataDirectory)
	setString("TOLLWATCH_DIFF_DIR", &cfg.Storage.DiffDirectory)
	setString("TOLLWATCH_LOG_FILE", &cfg.Logging.File)
	setString("TOLLWATCH_LOG_LEVEL", &cfg.Logging.Level)
	setString("TOLLWATCH_DB_DRIVER", &cfg.Database.Driver)
	setString("TOLLWATCH_DB_DSN", &cfg.Database.DSN)
	setString("DB_HOST", &cfg.Database.Host)
	setString("DB_PORT", &cfg.Database.Port)
	setString("DB_USER", &cfg.Database.User)
	setString("DB_PASSWORD", &cfg.Database.Password)
	setString("DB_NAME", &cfg.Database.DBName)

	if v, ok := os.LookupEnv("TOLLWATCH_DB_ENABLED"); ok {
		cfg.Database.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
}

func (c *Config) finalize() error {
	// Parse durations
	if c.HTTP.TimeoutStr != "" {
		d, err := time.ParseDuration(c.HTTP.TimeoutStr)
		if err != nil {
			return fmt.Errorf("failed to parse http timeout: %w", err)
		}
		c.HTTP.Timeout = d
	} else {
		c.HTTP.Timeout = 30 * time.Second // Default
	}

	if c.Storage.DataDirectory == "" {
		return fmt.Errorf("storage.data_directory must not be empty")
	}
	if c.Storage.DiffDirectory == "" {
		c.Storage.DiffDirectory = "."
	}
	if !strings.Contains(c.Sources.RateTableURLTmpl, "%s") || !strings.Contains(c.Sources.RateTableURLTmpl, "%d") {
		return fmt.Errorf("sources.rate_table_url_template must contain %%s and %%d verbs: %q", c.Sources.RateTableURLTmpl)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.DSN == "" {
			c.Database.DSN = filepath.Join(c.Storage.DataDirectory, "ledger.db")
		}
	case "mysql":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	return nil
}

// MySQLDSN builds a go-sql-driver DSN from the discrete fields.
// DSN: username:password@protocol(address)/dbname?param=value
func (d DatabaseConfig) MySQLDSN() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}
