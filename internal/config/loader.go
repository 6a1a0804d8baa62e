package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader assembles configuration from layered sources. Priority, lowest to
// highest: defaults, base.yaml, <environment>.yaml, local.yaml (development
// only), environment variables.
type Loader struct {
	basePath    string
	environment Environment
	sources     []string
}

// NewLoader creates a loader rooted at basePath (default "config").
func NewLoader(basePath string, env Environment) *Loader {
	if basePath == "" {
		basePath = "config"
	}
	return &Loader{basePath: basePath, environment: env}
}

// Load assembles and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := l.defaults()
	l.sources = append(l.sources, "defaults")

	if err := l.loadFile("base", cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load base config: %w", err)
	}

	envFile := strings.ToLower(string(l.environment))
	if err := l.loadFile(envFile, cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s config: %w", envFile, err)
	}

	if l.environment == Development {
		if err := l.loadFile("local", cfg); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: failed to load local config: %v\n", err)
		}
	}

	l.applyEnv(cfg)
	l.sources = append(l.sources, "environment")
	cfg.LoadedFrom = l.sources

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(name string, cfg *Config) error {
	path := filepath.Join(l.basePath, name+".yaml")
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	l.sources = append(l.sources, path)
	return nil
}

// applyEnv overlays environment variables, the highest-priority source.
func (l *Loader) applyEnv(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("DB_PROVIDER"); v != "" {
		cfg.Database.Provider = v
	}
	if v := os.Getenv("TABLE_NAME"); v != "" {
		cfg.Database.TableName = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		cfg.Database.Region = v
	}
	if v := os.Getenv("DYNAMODB_ENDPOINT"); v != "" {
		cfg.Database.Endpoint = v
	}

	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("TOKEN_EXPIRY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenExpiry = d
		}
	}

	if v := os.Getenv("PSU_HEADROOM_MARGIN"); v != "" {
		if margin, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Compat.PSUHeadroomMargin = margin
		}
	}

	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORS.AllowedOrigins = strings.Split(v, ",")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	if v := os.Getenv("OTLP_ENDPOINT"); v != "" {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Endpoint = v
	}

	if v := os.Getenv("ENABLE_METRICS"); v != "" {
		cfg.Features.EnableMetrics = parseBool(v)
	}
	if v := os.Getenv("ENABLE_SOCIAL"); v != "" {
		cfg.Features.EnableSocial = parseBool(v)
	}
	if v := os.Getenv("ENABLE_STOCK_ALERTS"); v != "" {
		cfg.Features.EnableStockAlerts = parseBool(v)
	}
}

// defaults returns the compiled-in baseline. The server can start from this
// alone in development.
func (l *Loader) defaults() *Config {
	return &Config{
		Environment: l.environment,
		Server: Server{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestBytes: 1 << 20,
		},
		Database: Database{
			Provider:  "memory",
			TableName: "pcforge-" + strings.ToLower(string(l.environment)),
			Region:    "us-east-1",
		},
		Auth: Auth{
			JWTSecret:   devSecret(l.environment),
			TokenExpiry: 24 * time.Hour,
			Issuer:      "pcforge",
		},
		Compat: Compat{
			PSUHeadroomMargin: 0.20,
		},
		CORS: CORS{
			AllowedOrigins: []string{"http://localhost:3000"},
			MaxAge:         300,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
		Tracing: Tracing{
			ServiceName: "pcforge-api",
			SampleRate:  0.1,
		},
		Features: Features{
			EnableMetrics:     true,
			EnableSocial:      true,
			EnableStockAlerts: true,
			EnableHotReload:   l.environment == Development,
		},
	}
}

// devSecret returns a throwaway signing key outside production. Production
// must supply JWT_SECRET; Validate rejects the empty default.
func devSecret(env Environment) string {
	if env == Production {
		return ""
	}
	return "dev-only-insecure-signing-key-000000"
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

// Load reads configuration for the current APP_ENV from the default config
// directory, overridable with CONFIG_DIR.
func Load() (*Config, error) {
	return NewLoader(os.Getenv("CONFIG_DIR"), getEnvironment()).Load()
}
