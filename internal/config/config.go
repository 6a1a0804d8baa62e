// Package config provides layered configuration loading: compiled defaults,
// then YAML files, then environment variables, highest priority last.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Environment is the deployment environment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Config is the root configuration for the API server.
type Config struct {
	Environment Environment `yaml:"environment"`

	Server   Server   `yaml:"server"`
	Database Database `yaml:"database"`
	Auth     Auth     `yaml:"auth"`
	Compat   Compat   `yaml:"compat"`
	CORS     CORS     `yaml:"cors"`
	Logging  Logging  `yaml:"logging"`
	Tracing  Tracing  `yaml:"tracing"`
	Features Features `yaml:"features"`

	// LoadedFrom records the sources that contributed, for startup logs.
	LoadedFrom []string `yaml:"-"`
}

// Server holds HTTP server settings.
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxRequestBytes int64         `yaml:"maxRequestBytes"`
}

// Database holds DynamoDB settings. Provider "memory" runs the server
// against the in-memory store for local development.
type Database struct {
	Provider  string `yaml:"provider"` // "dynamodb" or "memory"
	TableName string `yaml:"tableName"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"` // non-empty for dynamodb-local
}

// Auth holds token issuing settings.
type Auth struct {
	JWTSecret   string        `yaml:"jwtSecret"`
	TokenExpiry time.Duration `yaml:"tokenExpiry"`
	Issuer      string        `yaml:"issuer"`
}

// Compat tunes the compatibility engine.
type Compat struct {
	// PSUHeadroomMargin is the safety factor applied to the summed
	// component load before comparing against PSU wattage.
	PSUHeadroomMargin float64 `yaml:"psuHeadroomMargin"`
}

// CORS holds cross-origin settings for the browser frontend.
type CORS struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
	MaxAge         int      `yaml:"maxAge"`
}

// Logging holds zap settings.
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or console
}

// Tracing holds OTLP exporter settings.
type Tracing struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"serviceName"`
	SampleRate  float64 `yaml:"sampleRate"`
}

// Features toggles optional subsystems.
type Features struct {
	EnableMetrics     bool `yaml:"enableMetrics"`
	EnableSocial      bool `yaml:"enableSocial"`
	EnableHotReload   bool `yaml:"enableHotReload"`
	EnableStockAlerts bool `yaml:"enableStockAlerts"`
}

// Address returns the host:port the server binds to.
func (s Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the config targets production.
func (c *Config) IsProduction() bool { return c.Environment == Production }

// IsDevelopment reports whether the config targets development.
func (c *Config) IsDevelopment() bool { return c.Environment == Development }

// Validate checks the assembled configuration before the server starts.
func (c *Config) Validate() error {
	var problems []string

	switch c.Environment {
	case Development, Staging, Production:
	default:
		problems = append(problems, fmt.Sprintf("unknown environment %q", c.Environment))
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout <= 0 {
		problems = append(problems, "server.shutdownTimeout must be positive")
	}

	switch c.Database.Provider {
	case "dynamodb":
		if c.Database.TableName == "" {
			problems = append(problems, "database.tableName is required for dynamodb")
		}
		if c.Database.Region == "" {
			problems = append(problems, "database.region is required for dynamodb")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("unknown database.provider %q", c.Database.Provider))
	}

	if c.Auth.JWTSecret == "" {
		problems = append(problems, "auth.jwtSecret is required")
	} else if c.IsProduction() && len(c.Auth.JWTSecret) < 32 {
		problems = append(problems, "auth.jwtSecret must be at least 32 bytes in production")
	}
	if c.Auth.TokenExpiry <= 0 {
		problems = append(problems, "auth.tokenExpiry must be positive")
	}

	if c.Compat.PSUHeadroomMargin < 0 || c.Compat.PSUHeadroomMargin > 1 {
		problems = append(problems, "compat.psuHeadroomMargin must be within [0, 1]")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		problems = append(problems, "tracing.endpoint is required when tracing is enabled")
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		problems = append(problems, "tracing.sampleRate must be within [0, 1]")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("unknown logging.level %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// getEnvironment resolves the deployment environment from APP_ENV.
func getEnvironment() Environment {
	switch strings.ToLower(os.Getenv("APP_ENV")) {
	case "production", "prod":
		return Production
	case "staging", "stage":
		return Staging
	default:
		return Development
	}
}
