package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the crawler
type Config struct {
	// Upstream endpoint settings
	Crawler CrawlerConfig `yaml:"crawler" json:"crawler"`

	// HTTP transport settings
	Transport TransportConfig `yaml:"transport" json:"transport"`

	// Transport level retry, off unless enabled
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// OTLP export of traces and metrics, off without an endpoint
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// CrawlerConfig holds the upstream address and request identity
type CrawlerConfig struct {
	BaseURL      string            `yaml:"base_url" json:"base_url" envconfig:"IGCRAWLER_BASE_URL"`
	DefaultQuery map[string]string `yaml:"default_query" json:"default_query" envconfig:"IGCRAWLER_DEFAULT_QUERY"`
	UserAgent    string            `yaml:"user_agent" json:"user_agent" envconfig:"IGCRAWLER_USER_AGENT"`
}

// TransportConfig holds HTTP client configuration
type TransportConfig struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout" envconfig:"IGCRAWLER_TIMEOUT"`
	RequestsPerMinute int           `yaml:"requests_per_minute" json:"requests_per_minute" envconfig:"IGCRAWLER_REQUESTS_PER_MINUTE"`
	// Burst, when positive, lets up to Burst requests through at once and
	// refills at RequestsPerMinute instead of enforcing a strict window
	Burst int `yaml:"burst" json:"burst" envconfig:"IGCRAWLER_BURST"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Enabled     bool          `yaml:"enabled" json:"enabled" envconfig:"IGCRAWLER_RETRY_ENABLED"`
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts" envconfig:"IGCRAWLER_RETRY_MAX_ATTEMPTS"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay" envconfig:"IGCRAWLER_RETRY_BASE_DELAY"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay" envconfig:"IGCRAWLER_RETRY_MAX_DELAY"`
}

// OutputConfig holds result rendering configuration
type OutputConfig struct {
	// Format is one of auto, table, json or yaml
	Format string `yaml:"format" json:"format" envconfig:"IGCRAWLER_OUTPUT_FORMAT"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" envconfig:"IGCRAWLER_LOG_LEVEL"`
	File  string `yaml:"file" json:"file" envconfig:"IGCRAWLER_LOG_FILE"`
}

// TelemetryConfig holds the OTLP exporter settings
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint" json:"endpoint" envconfig:"IGCRAWLER_OTLP_ENDPOINT"`
	// Protocol is http or grpc
	Protocol string            `yaml:"protocol" json:"protocol" envconfig:"IGCRAWLER_OTLP_PROTOCOL"`
	Headers  map[string]string `yaml:"headers" json:"headers" envconfig:"IGCRAWLER_OTLP_HEADERS"`
	Insecure bool              `yaml:"insecure" json:"insecure" envconfig:"IGCRAWLER_OTLP_INSECURE"`
}

// Enabled reports whether an exporter endpoint is configured
func (t TelemetryConfig) Enabled() bool {
	return t.Endpoint != ""
}

// logLevels are the names accepted for Logging.Level.
var logLevels = []string{"debug", "info", "warn", "warning", "error", "disabled"}

// OTLP protocols
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// Output formats
const (
	FormatAuto  = "auto"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DefaultConfig targets the public web endpoint at one request per second.
func DefaultConfig() *Config {
	return &Config{
		Crawler: CrawlerConfig{
			BaseURL:      "https://www.instagram.com",
			DefaultQuery: map[string]string{"__a": "1"},
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Transport: TransportConfig{
			Timeout:           30 * time.Second,
			RequestsPerMinute: 60,
		},
		Retry: RetryConfig{
			Enabled:     false,
			MaxAttempts: 3,
			BaseDelay:   1 * time.Second,
			MaxDelay:    30 * time.Second,
		},
		Output: OutputConfig{
			Format: FormatAuto,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			Protocol: ProtocolHTTP,
		},
	}
}

// LoadFromEnv loads configuration from IGCRAWLER_* environment variables.
// Unset variables leave the current values untouched.
func (c *Config) LoadFromEnv() error {
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process environment: %w", err)
	}
	return nil
}

// searchPaths lists the config files tried, in order, when no path is given.
func searchPaths(home string) []string {
	paths := []string{".igcrawler.yaml", ".igcrawler.yml"}
	if home != "" {
		dir := filepath.Join(home, ".config", "igcrawler")
		paths = append(paths,
			filepath.Join(dir, "config.yaml"),
			filepath.Join(dir, "config.yml"),
			filepath.Join(home, ".igcrawler.yaml"),
		)
	}
	return paths
}

// LoadFromFile overlays the YAML document at path. An empty path means the
// first existing entry of the search list; finding none is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		for _, candidate := range searchPaths(os.Getenv("HOME")) {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return nil
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Crawler.BaseURL == "" {
		errs = append(errs, errors.New("base URL is required"))
	} else if u, err := url.Parse(c.Crawler.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("base URL %q is not an absolute URL", c.Crawler.BaseURL))
	}
	if c.Crawler.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}

	if c.Transport.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Transport.RequestsPerMinute < 0 {
		errs = append(errs, errors.New("requests per minute cannot be negative"))
	}
	if c.Transport.Burst < 0 {
		errs = append(errs, errors.New("burst cannot be negative"))
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts <= 0 {
			errs = append(errs, errors.New("retry max attempts must be positive"))
		}
		if c.Retry.BaseDelay <= 0 {
			errs = append(errs, errors.New("retry base delay must be positive"))
		}
		if c.Retry.MaxDelay < c.Retry.BaseDelay {
			errs = append(errs, errors.New("retry max delay must not be below base delay"))
		}
	}

	switch strings.ToLower(c.Output.Format) {
	case FormatAuto, FormatTable, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("invalid output format %q", c.Output.Format))
	}

	if !slices.Contains(logLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}

	if c.Telemetry.Enabled() {
		switch c.Telemetry.Protocol {
		case ProtocolHTTP, ProtocolGRPC:
		default:
			errs = append(errs, fmt.Errorf("invalid telemetry protocol %q", c.Telemetry.Protocol))
		}
	}

	return errors.Join(errs...)
}

// Save writes c as YAML to path, creating parent directories. The file is
// private to the user since it may carry exporter headers.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only flags the user actually set should be passed in.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Crawler.BaseURL = baseURL
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Transport.Timeout = timeout
	}
	if rpm, ok := flags["rate"].(int); ok && rpm >= 0 {
		c.Transport.RequestsPerMinute = rpm
	}
	if retry, ok := flags["retry"].(bool); ok {
		c.Retry.Enabled = retry
	}
	if format, ok := flags["format"].(string); ok && format != "" {
		c.Output.Format = format
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if endpoint, ok := flags["otlp-endpoint"].(string); ok && endpoint != "" {
		c.Telemetry.Endpoint = endpoint
	}
}

// Load layers every configuration source over the defaults. Later layers
// win: config file, then .env files, then the process environment, then
// flags. .env files never override variables already set in the process.
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	if home := os.Getenv("HOME"); home != "" {
		_ = godotenv.Load(filepath.Join(home, ".igcrawler.env"))
	}

	cfg := DefaultConfig()
	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
