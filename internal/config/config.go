// Package config loads blog service configuration.
//
// Values are resolved in order: built-in defaults, an optional YAML file,
// a .env file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/R3E-Network/blog_service/pkg/logger"
)

// Driver names accepted in DatabaseConfig.Driver.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Host            string        `yaml:"host" env:"BLOG_HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"BLOG_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"BLOG_WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"BLOG_IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BLOG_SHUTDOWN_TIMEOUT"`
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the store and sizes its pool.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"BLOG_DB_DRIVER"`
	DSN             string        `yaml:"dsn" env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"BLOG_DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"BLOG_DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"BLOG_DB_CONN_MAX_LIFETIME"`
	AcquireTimeout  time.Duration `yaml:"acquire_timeout" env:"BLOG_DB_ACQUIRE_TIMEOUT"`
	ApplySchema     bool          `yaml:"apply_schema" env:"BLOG_DB_APPLY_SCHEMA"`
}

// LoggingConfig mirrors logger.LoggingConfig with environment bindings.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"BLOG_LOG_LEVEL"`
	Format     string `yaml:"format" env:"BLOG_LOG_FORMAT"`
	Output     string `yaml:"output" env:"BLOG_LOG_OUTPUT"`
	FilePrefix string `yaml:"file_prefix" env:"BLOG_LOG_FILE_PREFIX"`
}

// Logger converts to the logger package's configuration.
func (l LoggingConfig) Logger() logger.LoggingConfig {
	return logger.LoggingConfig{Level: l.Level, Format: l.Format, Output: l.Output, FilePrefix: l.FilePrefix}
}

// HTTPConfig holds middleware settings.
type HTTPConfig struct {
	// CORSOrigins is a comma-separated allow list; empty disables CORS.
	CORSOrigins string `yaml:"cors_origins" env:"BLOG_CORS_ORIGINS"`
	// RateLimit is requests per second per client; zero disables limiting.
	RateLimit float64 `yaml:"rate_limit" env:"BLOG_RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"BLOG_RATE_BURST"`
}

// Origins splits CORSOrigins.
func (h HTTPConfig) Origins() []string {
	var out []string
	for _, origin := range strings.Split(h.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

// Default returns the built-in configuration: SQLite in ./blog.db on :8080.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			DSN:             "blog.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			AcquireTimeout:  5 * time.Second,
			ApplySchema:     true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// LoadOptions locates optional configuration sources.
type LoadOptions struct {
	// ConfigFile is a YAML file. Empty falls back to $BLOG_CONFIG; if that is
	// empty too no file is read.
	ConfigFile string
	// EnvFile is loaded into the environment when it exists. Defaults to
	// ".env". Variables already set are not overridden.
	EnvFile string
}

// Load resolves the configuration and validates it.
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	cfg := Default()

	path := opts.ConfigFile
	if path == "" {
		path = os.Getenv("BLOG_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := decodeEnv(cfg); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeEnv applies environment overrides. Values that fail to parse are
// errors. Having no variables set is not.
func decodeEnv(cfg *Config) error {
	err := envdecode.StrictDecode(cfg)
	if errors.Is(err, envdecode.ErrInvalidTarget) || errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil
	}
	return err
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
		if strings.TrimSpace(c.Database.DSN) == "" {
			problems = append(problems, "database.dsn is required")
		}
		if c.Database.MaxOpenConns <= 0 {
			problems = append(problems, "database.max_open_conns must be positive")
		}
	case DriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unsupported database.driver %q", c.Database.Driver))
	}

	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid logging.level %q", c.Logging.Level))
	}
	if c.HTTP.RateLimit < 0 {
		problems = append(problems, "http.rate_limit must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
