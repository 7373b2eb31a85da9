package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COURSES_"

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DBConfig selects the storage backend. Path is used by sqlite, DSN by
// postgres and mongo, Database by mongo only.
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"

	ModeHTTP  = "http"
	ModeStdio = "stdio"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		DB: DBConfig{
			Driver:   DriverSQLite,
			Path:     "courses.db",
			Database: "courses",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Transport: TransportConfig{
			Mode: ModeHTTP,
		},
	}
}

// Load reads configuration from an optional YAML file, a .env file in the
// working directory, and COURSES_* environment variables, in that order of
// increasing precedence. An empty path falls back to COURSES_CONFIG_PATH.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(envPrefix + "CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("db.path is required for the %s driver", c.DB.Driver)
		}
	case DriverPostgres, DriverMongo:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required for the %s driver", c.DB.Driver)
		}
	default:
		return fmt.Errorf("unknown db driver %q", c.DB.Driver)
	}
	switch c.Transport.Mode {
	case ModeHTTP, ModeStdio:
	default:
		return fmt.Errorf("unknown transport mode %q", c.Transport.Mode)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if host := getenv("SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := getenv("SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_PORT: %w", envPrefix, err)
		}
		cfg.Server.Port = port
	}
	if origins := getenv("SERVER_CORS_ORIGINS"); origins != "" {
		cfg.Server.CORSOrigins = splitList(origins)
	}
	if timeout := getenv("SERVER_READ_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_READ_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Server.ReadTimeout = d
	}
	if timeout := getenv("SERVER_SHUTDOWN_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid %sSERVER_SHUTDOWN_TIMEOUT: %w", envPrefix, err)
		}
		cfg.Server.ShutdownTimeout = d
	}
	if driver := getenv("DB_DRIVER"); driver != "" {
		cfg.DB.Driver = driver
	}
	if dbPath := getenv("DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dsn := getenv("DB_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	if database := getenv("DB_DATABASE"); database != "" {
		cfg.DB.Database = database
	}
	if level := getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if format := getenv("LOG_FORMAT"); format != "" {
		cfg.Log.Format = format
	}
	if logPath := getenv("LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}
	if mode := getenv("TRANSPORT_MODE"); mode != "" {
		cfg.Transport.Mode = mode
	}
	return nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(envPrefix + key))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
