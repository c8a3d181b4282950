package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Dart    DartConfig    `yaml:"dart" envconfig:"DART"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"5m"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" default:"5"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/dartwatch.log"`
}

// DartConfig contains the DART open API client configuration.
type DartConfig struct {
	APIKey         string        `yaml:"api_key" envconfig:"API_KEY"`
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://opendart.fss.or.kr/api"`
	ViewerBaseURL  string        `yaml:"viewer_base_url" envconfig:"VIEWER_BASE_URL" default:"https://dart.fss.or.kr/dsaf001/main.do"`
	ListTimeout    time.Duration `yaml:"list_timeout" envconfig:"LIST_TIMEOUT" default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
	PageSize       int           `yaml:"page_size" envconfig:"PAGE_SIZE" default:"100"`

	// DetailDelay paces successive per-company detail calls. It is a
	// politeness policy toward the upstream API, not a correctness
	// requirement; zero disables pacing entirely.
	DetailDelay time.Duration `yaml:"detail_delay" envconfig:"DETAIL_DELAY" default:"50ms"`

	// The decision endpoints date rows by their own internal schedule,
	// which lags the announcement date. Queries widen the requested
	// window backwards by these amounts and re-filter afterwards.
	CapitalLookbackMonths      int `yaml:"capital_lookback_months" envconfig:"CAPITAL_LOOKBACK_MONTHS" default:"8"`
	RegistrationLookbackMonths int `yaml:"registration_lookback_months" envconfig:"REGISTRATION_LOOKBACK_MONTHS" default:"6"`
}

// ExportConfig contains workbook export configuration.
type ExportConfig struct {
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"results"`
	// Timezone stamps output filenames in the target market's local time.
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE" default:"Asia/Seoul"`
}

// Load loads configuration from environment variables and, when
// present, a config.yaml in the working directory. Environment values
// win over file values.
func Load() (*Config, error) {
	return LoadFrom("config.yaml")
}

// LoadFrom behaves like Load with an explicit config file path.
func LoadFrom(configFile string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configFile); err == nil {
		fileCfg, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *fileCfg
	}

	if err := envconfig.Process("DARTWATCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
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

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Dart.PageSize <= 0 {
		return fmt.Errorf("invalid page size: %d", c.Dart.PageSize)
	}
	if c.Dart.DetailDelay < 0 {
		return fmt.Errorf("detail delay must not be negative")
	}
	if c.Dart.CapitalLookbackMonths < 0 || c.Dart.RegistrationLookbackMonths < 0 {
		return fmt.Errorf("lookback months must not be negative")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}
