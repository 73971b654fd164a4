package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/subosito/gotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderSDK  = "sdk"
	ProviderHTTP = "http"

	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Config struct {
	Server struct {
		Port        int      `yaml:"port"`
		CORSOrigins []string `yaml:"corsOrigins"`
		RateLimit   struct {
			Capacity   int `yaml:"capacity"`
			RefillRate int `yaml:"refillRate"`
		} `yaml:"rateLimit"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	Pipeline struct {
		Iterations int `yaml:"iterations"`
	} `yaml:"pipeline"`

	Identifier struct {
		URL     string        `yaml:"url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"identifier"`

	Analysis struct {
		Provider string        `yaml:"provider"` // sdk | http
		Model    string        `yaml:"model"`
		Endpoint string        `yaml:"endpoint"` // http provider: full URL; sdk provider: base URL
		Timeout  time.Duration `yaml:"timeout"`
		// TokenEnv names the env var holding the bearer token for the http provider
		TokenEnv string `yaml:"tokenEnv"`

		// credentials never come from the file
		APIKey string `yaml:"-"`
		Token  string `yaml:"-"`
	} `yaml:"analysis"`

	Database struct {
		Driver   string `yaml:"driver"` // sqlite | mysql | postgres
		Path     string `yaml:"path"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
		Password string `yaml:"-"`
	} `yaml:"database"`

	Notify struct {
		Recipient string `yaml:"recipient"`
	} `yaml:"notify"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
		AccessKey  string `yaml:"-"`
		SecretKey  string `yaml:"-"`
	} `yaml:"minio"`
}

// Load reads .env (best effort), then the YAML file at path if it exists,
// then environment overrides, and finally fills defaults.
func Load(path string) (*Config, error) {
	_ = gotenv.Load(".env")

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// defaults + env only
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v, ok := envInt("PORT"); ok {
		c.Server.Port = v
	}
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Analysis.Provider, "ANALYSIS_PROVIDER")
	setString(&c.Analysis.Model, "ANALYSIS_MODEL")
	setString(&c.Analysis.Endpoint, "ANALYSIS_ENDPOINT")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.Path, "DATABASE_PATH")
	setString(&c.Notify.Recipient, "NOTIFY_RECIPIENT")

	c.Analysis.APIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	c.Database.Password = os.Getenv("DATABASE_PASSWORD")
	c.Minio.AccessKey = os.Getenv("MINIO_ACCESS_KEY")
	c.Minio.SecretKey = os.Getenv("MINIO_SECRET_KEY")
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Server.RateLimit.Capacity > 0 && c.Server.RateLimit.RefillRate <= 0 {
		c.Server.RateLimit.RefillRate = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Pipeline.Iterations <= 0 {
		c.Pipeline.Iterations = 3
	}
	if c.Identifier.URL == "" {
		c.Identifier.URL = "https://httpbin.org/uuid"
	}
	if c.Identifier.Timeout <= 0 {
		c.Identifier.Timeout = 5 * time.Second
	}
	if c.Analysis.Provider == "" {
		c.Analysis.Provider = ProviderSDK
	}
	if c.Analysis.Model == "" {
		c.Analysis.Model = "gpt-4o-mini"
	}
	if c.Analysis.Timeout <= 0 {
		c.Analysis.Timeout = 10 * time.Second
	}
	if c.Analysis.TokenEnv == "" {
		c.Analysis.TokenEnv = "AIPROXY_TOKEN"
	}
	c.Analysis.Token = strings.TrimSpace(os.Getenv(c.Analysis.TokenEnv))
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Path == "" {
		c.Database.Path = "pipeline.db"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "pipeline-reports"
	}
}

func (c *Config) validate() error {
	switch c.Analysis.Provider {
	case ProviderSDK, ProviderHTTP:
	default:
		return fmt.Errorf("analysis.provider must be %q or %q, got %q", ProviderSDK, ProviderHTTP, c.Analysis.Provider)
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("database.driver must be sqlite, mysql or postgres, got %q", c.Database.Driver)
	}
	return nil
}

// ArchiveEnabled reports whether run reports should be uploaded to MinIO
func (c *Config) ArchiveEnabled() bool {
	return strings.TrimSpace(c.Minio.Endpoint) != ""
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// Helper untuk build DSN Postgres
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// DSN returns the connection string for the configured network driver
func (c *Config) DSN() string {
	switch c.Database.Driver {
	case DriverMySQL:
		return c.MySQLDSN()
	case DriverPostgres:
		return c.PostgresDSN()
	default:
		return ""
	}
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func envInt(key string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
