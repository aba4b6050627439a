package configloader

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"rebalancer/internal/domain/entity"
)

// ServerConfig holds server-specific configurations.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"read_timeout_seconds"`
	WriteTimeout int    `yaml:"write_timeout_seconds"`
	IdleTimeout  int    `yaml:"idle_timeout_seconds"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// IndexerConfig holds token indexer API settings.
type IndexerConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
}

// OracleConfig holds price oracle settings.
type OracleConfig struct {
	BaseURL              string  `yaml:"baseURL"`
	QuoteAsset           string  `yaml:"quoteAsset"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
	CacheTTLSeconds      int     `yaml:"cacheTTLSeconds"`
	RequestsPerSecond    float64 `yaml:"requestsPerSecond"`
}

// ParserConfig holds allocation parser settings.
type ParserConfig struct {
	// Mode selects the allocation parser: "text" (default) or "llm".
	Mode         string `yaml:"mode"`
	OpenAIAPIKey string `yaml:"openaiApiKey"`
	Model        string `yaml:"model"`
}

// MonitorConfig holds periodic strategy monitor settings.
type MonitorConfig struct {
	Enabled         bool `yaml:"enabled"`
	IntervalSeconds int  `yaml:"interval_seconds"`
}

// PerformanceConfig holds performance-related configurations.
type PerformanceConfig struct {
	MaxConcurrentRoutines  int `yaml:"max_concurrent_routines"`
	RPCCallTimeoutSeconds  int `yaml:"rpc_call_timeout_seconds"`
	StoreCapacity          int `yaml:"store_capacity"`
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// SwaggerConfig toggles the Swagger UI surface.
type SwaggerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Spec    string `yaml:"spec"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig             `yaml:"server"`
	Logging     LoggingConfig            `yaml:"logging"`
	Indexer     IndexerConfig            `yaml:"indexer"`
	Oracle      OracleConfig             `yaml:"oracle"`
	Parser      ParserConfig             `yaml:"parser"`
	Monitor     MonitorConfig            `yaml:"monitor"`
	Performance PerformanceConfig        `yaml:"performance"`
	Swagger     SwaggerConfig            `yaml:"swagger"`
	Chains      []entity.ChainDefinition `yaml:"chains"`
}

// Load reads the YAML configuration file from the given path and unmarshals
// it, filling in defaults for unset values. Secrets left empty in the file
// fall back to environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
	}
	logrus.WithField("path", path).Debug("Configuration file parsed")

	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Indexer.RequestTimeoutMillis <= 0 {
		cfg.Indexer.RequestTimeoutMillis = 15000
	}
	if cfg.Indexer.APIKey == "" {
		cfg.Indexer.APIKey = os.Getenv("INDEXER_API_KEY")
	}

	if cfg.Oracle.RequestTimeoutMillis <= 0 {
		cfg.Oracle.RequestTimeoutMillis = 10000
	}
	if cfg.Oracle.CacheTTLSeconds <= 0 {
		cfg.Oracle.CacheTTLSeconds = 60
	}

	if cfg.Parser.Mode == "" {
		cfg.Parser.Mode = "text"
	}
	if cfg.Parser.OpenAIAPIKey == "" {
		cfg.Parser.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}

	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 3600
	}

	if cfg.Performance.MaxConcurrentRoutines <= 0 {
		cfg.Performance.MaxConcurrentRoutines = 5
	}
	if cfg.Performance.RPCCallTimeoutSeconds <= 0 {
		cfg.Performance.RPCCallTimeoutSeconds = 10
	}
	if cfg.Performance.ShutdownTimeoutSeconds <= 0 {
		cfg.Performance.ShutdownTimeoutSeconds = 5
	}

	logrus.WithFields(logrus.Fields{
		"port":         cfg.Server.Port,
		"logLevel":     cfg.Logging.Level,
		"parserMode":   cfg.Parser.Mode,
		"monitor":      cfg.Monitor.Enabled,
		"chainConfigs": len(cfg.Chains),
	}).Info("Configuration loaded with defaults applied")

	return &cfg, nil
}
