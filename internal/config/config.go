package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Fetch    FetchConfig    `yaml:"fetch" envconfig:"FETCH"`
	Analysis AnalysisConfig `yaml:"analysis" envconfig:"ANALYSIS"`
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"100"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// FetchConfig contains market data client configuration
type FetchConfig struct {
	BaseURL     string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://query1.finance.yahoo.com"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s"`
	RateLimit   float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT" default:"4"`
	Concurrency int           `yaml:"concurrency" envconfig:"CONCURRENCY" default:"4"`
	UserAgent   string        `yaml:"user_agent" envconfig:"USER_AGENT" default:"Mozilla/5.0"`
}

// AnalysisConfig contains defaults for the analytics pipeline
type AnalysisConfig struct {
	VolatilityWindow  int     `yaml:"volatility_window" envconfig:"VOLATILITY_WINDOW" default:"30"`
	RiskFreeRate      float64 `yaml:"risk_free_rate" envconfig:"RISK_FREE_RATE" default:"0.02"`
	PeriodsPerYear    int     `yaml:"periods_per_year" envconfig:"PERIODS_PER_YEAR" default:"252"`
	CorrelationMethod string  `yaml:"correlation_method" envconfig:"CORRELATION_METHOD" default:"pearson"`
	FillPolicy        string  `yaml:"fill_policy" envconfig:"FILL_POLICY" default:"forward_backward"`
	ReturnKind        string  `yaml:"return_kind" envconfig:"RETURN_KIND" default:"simple"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	RawDir       string `yaml:"raw_dir" envconfig:"RAW_DIR" default:"data/raw"`
	ProcessedDir string `yaml:"processed_dir" envconfig:"PROCESSED_DIR" default:"data/processed"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// Load loads configuration from environment variables and, if present,
// a YAML config file. Environment takes precedence over the file.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("MP", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := configFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func configFilePath() string {
	if path := os.Getenv("MP_CONFIG_FILE"); path != "" {
		return path
	}
	return "config.yaml"
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs layers the file config over the env config. Precedence
// is env > file > default: envconfig has already stamped defaults onto
// every field, so a file value applies unless its env var is explicitly
// set.
func mergeConfigs(fileCfg, envCfg Config) Config {
	mergeInt(&envCfg.Server.Port, fileCfg.Server.Port, "MP_SERVER_PORT")
	mergeDuration(&envCfg.Server.ReadTimeout, fileCfg.Server.ReadTimeout, "MP_SERVER_READ_TIMEOUT")
	mergeDuration(&envCfg.Server.WriteTimeout, fileCfg.Server.WriteTimeout, "MP_SERVER_WRITE_TIMEOUT")
	mergeDuration(&envCfg.Server.IdleTimeout, fileCfg.Server.IdleTimeout, "MP_SERVER_IDLE_TIMEOUT")
	mergeDuration(&envCfg.Server.ShutdownTimeout, fileCfg.Server.ShutdownTimeout, "MP_SERVER_SHUTDOWN_TIMEOUT")
	mergeStrings(&envCfg.Server.AllowedOrigins, fileCfg.Server.AllowedOrigins, "MP_SERVER_ALLOWED_ORIGINS")
	mergeFloat(&envCfg.Server.RateLimitRPS, fileCfg.Server.RateLimitRPS, "MP_SERVER_RATE_LIMIT_RPS")
	mergeInt(&envCfg.Server.RateLimitBurst, fileCfg.Server.RateLimitBurst, "MP_SERVER_RATE_LIMIT_BURST")

	mergeString(&envCfg.Logging.Level, fileCfg.Logging.Level, "MP_LOGGING_LEVEL")
	mergeString(&envCfg.Logging.Format, fileCfg.Logging.Format, "MP_LOGGING_FORMAT")
	mergeString(&envCfg.Logging.Output, fileCfg.Logging.Output, "MP_LOGGING_OUTPUT")
	mergeString(&envCfg.Logging.FilePath, fileCfg.Logging.FilePath, "MP_LOGGING_FILE_PATH")

	mergeString(&envCfg.Fetch.BaseURL, fileCfg.Fetch.BaseURL, "MP_FETCH_BASE_URL")
	mergeDuration(&envCfg.Fetch.Timeout, fileCfg.Fetch.Timeout, "MP_FETCH_TIMEOUT")
	mergeFloat(&envCfg.Fetch.RateLimit, fileCfg.Fetch.RateLimit, "MP_FETCH_RATE_LIMIT")
	mergeInt(&envCfg.Fetch.Concurrency, fileCfg.Fetch.Concurrency, "MP_FETCH_CONCURRENCY")
	mergeString(&envCfg.Fetch.UserAgent, fileCfg.Fetch.UserAgent, "MP_FETCH_USER_AGENT")

	mergeInt(&envCfg.Analysis.VolatilityWindow, fileCfg.Analysis.VolatilityWindow, "MP_ANALYSIS_VOLATILITY_WINDOW")
	mergeFloat(&envCfg.Analysis.RiskFreeRate, fileCfg.Analysis.RiskFreeRate, "MP_ANALYSIS_RISK_FREE_RATE")
	mergeInt(&envCfg.Analysis.PeriodsPerYear, fileCfg.Analysis.PeriodsPerYear, "MP_ANALYSIS_PERIODS_PER_YEAR")
	mergeString(&envCfg.Analysis.CorrelationMethod, fileCfg.Analysis.CorrelationMethod, "MP_ANALYSIS_CORRELATION_METHOD")
	mergeString(&envCfg.Analysis.FillPolicy, fileCfg.Analysis.FillPolicy, "MP_ANALYSIS_FILL_POLICY")
	mergeString(&envCfg.Analysis.ReturnKind, fileCfg.Analysis.ReturnKind, "MP_ANALYSIS_RETURN_KIND")

	mergeString(&envCfg.Paths.DataDir, fileCfg.Paths.DataDir, "MP_PATHS_DATA_DIR")
	mergeString(&envCfg.Paths.RawDir, fileCfg.Paths.RawDir, "MP_PATHS_RAW_DIR")
	mergeString(&envCfg.Paths.ProcessedDir, fileCfg.Paths.ProcessedDir, "MP_PATHS_PROCESSED_DIR")
	mergeString(&envCfg.Paths.LogsDir, fileCfg.Paths.LogsDir, "MP_PATHS_LOGS_DIR")

	return envCfg
}

// envSet reports whether the variable was explicitly provided, so an
// empty env value still counts as an override.
func envSet(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func mergeString(target *string, fileVal, envKey string) {
	if !envSet(envKey) && fileVal != "" {
		*target = fileVal
	}
}

func mergeInt(target *int, fileVal int, envKey string) {
	if !envSet(envKey) && fileVal != 0 {
		*target = fileVal
	}
}

func mergeFloat(target *float64, fileVal float64, envKey string) {
	if !envSet(envKey) && fileVal != 0 {
		*target = fileVal
	}
}

func mergeDuration(target *time.Duration, fileVal time.Duration, envKey string) {
	if !envSet(envKey) && fileVal != 0 {
		*target = fileVal
	}
}

func mergeStrings(target *[]string, fileVal []string, envKey string) {
	if !envSet(envKey) && len(fileVal) > 0 {
		*target = fileVal
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Analysis.VolatilityWindow < 1 {
		return fmt.Errorf("volatility window must be at least 1, got %d", c.Analysis.VolatilityWindow)
	}
	if c.Analysis.PeriodsPerYear < 1 {
		return fmt.Errorf("periods per year must be at least 1, got %d", c.Analysis.PeriodsPerYear)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	}
	return nil
}
