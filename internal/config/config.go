package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yigit/spmb/internal/pkg/validation"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string `yaml:"port" env:"SERVER_PORT"`
		Mode        string `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		BaseURL     string `yaml:"base_url" env:"SERVER_BASE_URL"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret       string `yaml:"secret" env:"JWT_SECRET"`
		Issuer       string `yaml:"issuer" env:"JWT_ISSUER"`
		RequiredRole string `yaml:"required_role" env:"JWT_REQUIRED_ROLE"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled   bool   `yaml:"enabled" env:"METRICS_ENABLED"`
		Namespace string `yaml:"namespace" env:"METRICS_NAMESPACE"`
	} `yaml:"metrics"`

	Admission struct {
		Institution       string `yaml:"institution" env:"SPMB_INSTITUTION"`
		AcademicYear      string `yaml:"academic_year" env:"SPMB_ACADEMIC_YEAR"`
		GradeLevel        string `yaml:"grade_level" env:"SPMB_GRADE_LEVEL"`
		GradeMarker       string `yaml:"grade_marker" env:"SPMB_GRADE_MARKER"`
		DefaultClassCount int    `yaml:"default_class_count" env:"SPMB_DEFAULT_CLASS_COUNT"`
		DraftTTL          string `yaml:"draft_ttl" env:"SPMB_DRAFT_TTL"`
		HistoryDepth      int    `yaml:"history_depth" env:"SPMB_HISTORY_DEPTH"`
		SeedCSV           string `yaml:"seed_csv" env:"SPMB_SEED_CSV"`
	} `yaml:"admission"`
}

// LoadConfig loads configuration from a YAML file, a .env file and the environment,
// in that order of increasing precedence. Missing files are skipped.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// godotenv never overrides variables that are already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	if _, err := applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "storage/exports"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "spmb"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 10
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.Issuer = "spmb"
	config.JWT.RequiredRole = "admin"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.Metrics.Enabled = true
	config.Metrics.Namespace = "spmb"

	config.Admission.Institution = "SMP Negeri"
	config.Admission.AcademicYear = defaultAcademicYear(time.Now())
	config.Admission.GradeLevel = "7"
	config.Admission.GradeMarker = "07"
	config.Admission.DefaultClassCount = 6
	config.Admission.DraftTTL = "24h"
	config.Admission.HistoryDepth = 50
}

// defaultAcademicYear returns the pair for the intake running at now; the
// Indonesian school year starts in July.
func defaultAcademicYear(now time.Time) string {
	start := now.Year()
	if now.Month() < time.July {
		start--
	}
	return fmt.Sprintf("%d/%d", start, start+1)
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	if _, err := time.ParseDuration(config.Admission.DraftTTL); err != nil {
		return fmt.Errorf("invalid draft ttl: %w", err)
	}

	if !validation.IsAcademicYear(config.Admission.AcademicYear) {
		return fmt.Errorf("academic year must look like 2025/2026, got %q", config.Admission.AcademicYear)
	}

	if !validation.IsGradeMarker(config.Admission.GradeMarker) {
		return fmt.Errorf("grade marker must be two digits, got %q", config.Admission.GradeMarker)
	}

	if strings.TrimSpace(config.Admission.GradeLevel) == "" {
		return fmt.Errorf("grade level is required")
	}

	if config.Admission.DefaultClassCount < 1 || config.Admission.DefaultClassCount > 26 {
		return fmt.Errorf("default class count must be between 1 and 26")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
