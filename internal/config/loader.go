package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "synod.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// LoadWithCLI returns a Config using the full hierarchy:
// defaults < YAML < ENV < CLI flags. It returns the resolved YAML path so
// the caller can log which file was consulted.
func LoadWithCLI(flags CLIFlags) (*Config, string, error) {
	yamlPath := DefaultConfigFile
	if flags.ConfigPath != nil {
		yamlPath = *flags.ConfigPath
	}

	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, yamlPath, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)
	applyCLI(&cfg, flags)

	if err := validate(&cfg); err != nil {
		return nil, yamlPath, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, yamlPath, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "SYNOD_PORT")
	setString(&cfg.Server.CORSOrigin, "SYNOD_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "SYNOD_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "SYNOD_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "SYNOD_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "SYNOD_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "SYNOD_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.NATS.ScoresBucket, "SYNOD_SCORES_BUCKET")
	setString(&cfg.Provider.Name, "SYNOD_PROVIDER")
	setString(&cfg.Provider.BaseURL, "SYNOD_PROVIDER_BASE_URL")
	setString(&cfg.Provider.APIKey, "OPENROUTER_API_KEY")
	setString(&cfg.Provider.Referer, "SYNOD_PROVIDER_REFERER")
	setString(&cfg.Provider.AppTitle, "SYNOD_PROVIDER_APP_TITLE")
	setDuration(&cfg.Provider.Timeout, "SYNOD_PROVIDER_TIMEOUT")
	setInt(&cfg.Provider.MaxConcurrent, "SYNOD_PROVIDER_MAX_CONCURRENT")
	setString(&cfg.Council.Chairman.ID, "SYNOD_CHAIRMAN_ID")
	setString(&cfg.Council.Chairman.Name, "SYNOD_CHAIRMAN_NAME")
	setString(&cfg.Council.TitleModel, "SYNOD_TITLE_MODEL")
	setBool(&cfg.Council.CountSelfVotes, "SYNOD_COUNT_SELF_VOTES")
	setInt(&cfg.Council.ContextTurns, "SYNOD_CONTEXT_TURNS")
	setDuration(&cfg.Council.TurnTimeout, "SYNOD_TURN_TIMEOUT")
	setInt64(&cfg.Cache.L1MaxSizeMB, "SYNOD_CACHE_L1_SIZE_MB")
	setString(&cfg.Cache.L2Bucket, "SYNOD_CACHE_L2_BUCKET")
	setDuration(&cfg.Cache.L2TTL, "SYNOD_CACHE_L2_TTL")
	setString(&cfg.Logging.Level, "SYNOD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "SYNOD_LOG_SERVICE")
	setBool(&cfg.Logging.Async, "SYNOD_LOG_ASYNC")
	setInt(&cfg.Breaker.MaxFailures, "SYNOD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "SYNOD_BREAKER_TIMEOUT")
	setBool(&cfg.MCP.Enabled, "SYNOD_MCP_ENABLED")
	setString(&cfg.MCP.Addr, "SYNOD_MCP_ADDR")
	setString(&cfg.MCP.APIKey, "SYNOD_MCP_API_KEY")
	setBool(&cfg.Telemetry.Enabled, "SYNOD_TELEMETRY_ENABLED")
	setString(&cfg.Telemetry.Endpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Provider.Name == "" {
		return errors.New("provider.name is required")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if err := cfg.Council.Agents.Validate(); err != nil {
		return fmt.Errorf("council.agents: %w", err)
	}
	if cfg.Council.Chairman.ID == "" {
		return errors.New("council.chairman.id is required")
	}
	if cfg.Council.Chairman.Name == "" {
		return errors.New("council.chairman.name is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
