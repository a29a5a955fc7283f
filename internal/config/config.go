package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rshade/econreport/internal/engine/cache"
)

// Documented defaults.
const (
	DefaultConfigFile   = "econreport.yaml"
	DefaultDotEnvFile   = ".env"
	DefaultFREDBaseURL  = "https://api.stlouisfed.org/fred"
	DefaultFREDTimeout  = 30 * time.Second
	DefaultWindowDays   = 730
	DefaultConcurrency  = 4
	DefaultCacheTTL     = "24h"
	DefaultSMTPHost     = "smtp.gmail.com"
	DefaultSMTPPort     = 587
	DefaultSubject      = "📊 Weekly Economic Report"
	DefaultReportTitle  = "Weekly Economic Report"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "auto"
	maxConcurrency      = 32
	maxWindowDays       = 36500
	listSeparator       = ","
	envConfigPath       = "ECONREPORT_CONFIG"
	envFREDAPIKey       = "FRED_API_KEY"
	envEmail            = "EMAIL"
	envEmailPassword    = "EMAIL_PASSWORD"
	envCacheDir         = "ECONREPORT_CACHE_DIR"
	envCacheTTL         = "ECONREPORT_CACHE_TTL"
	envCacheEnabled     = "ECONREPORT_CACHE_ENABLED"
	envLogLevel         = "ECONREPORT_LOG_LEVEL"
	envLogFormat        = "ECONREPORT_LOG_FORMAT"
	envSMTPHost         = "ECONREPORT_SMTP_HOST"
	envSMTPPort         = "ECONREPORT_SMTP_PORT"
	envMailTo           = "ECONREPORT_MAIL_TO"
	envFREDBaseURL      = "ECONREPORT_FRED_BASE_URL"
	envFREDConcurrency  = "ECONREPORT_FRED_CONCURRENCY"
	envReportWindowDays = "ECONREPORT_WINDOW_DAYS"
	envSMTPSubject      = "ECONREPORT_MAIL_SUBJECT"
	envLogFile          = "ECONREPORT_LOG_FILE"
)

// Validation errors.
var (
	ErrMissingAPIKey      = errors.New("FRED API key is not set (FRED_API_KEY)")
	ErrMissingCredentials = errors.New("email credentials are not set (EMAIL, EMAIL_PASSWORD)")
)

// Config is the full econreport configuration.
type Config struct {
	FRED    FREDConfig    `yaml:"fred"`
	Cache   CacheConfig   `yaml:"cache"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
}

// FREDConfig configures the upstream data provider.
type FREDConfig struct {
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	WindowDays  int           `yaml:"window_days"`
	Concurrency int           `yaml:"concurrency"`
}

// CacheConfig configures the on-disk cache.
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Directory string `yaml:"directory"`

	// TTL is integer hours ("24") or a Go duration ("36h").
	TTL string `yaml:"ttl"`
}

// SMTPConfig configures mail delivery.
type SMTPConfig struct {
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Subject  string   `yaml:"subject"`
}

// ReportConfig configures the rendered report.
type ReportConfig struct {
	Title string `yaml:"title"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		FRED: FREDConfig{
			BaseURL:     DefaultFREDBaseURL,
			Timeout:     DefaultFREDTimeout,
			WindowDays:  DefaultWindowDays,
			Concurrency: DefaultConcurrency,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Directory: cache.DefaultDirectory,
			TTL:       DefaultCacheTTL,
		},
		SMTP: SMTPConfig{
			Host:    DefaultSMTPHost,
			Port:    DefaultSMTPPort,
			Subject: DefaultSubject,
		},
		Report: ReportConfig{Title: DefaultReportTitle},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment. An explicit path that does not exist is an error; the default
// file is optional.
func Load(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := New()

	explicit := path != ""
	if !explicit {
		if envPath, ok := lookupEnv(envConfigPath); ok && envPath != "" {
			path = envPath
			explicit = true
		} else {
			path = DefaultConfigFile
		}
	}

	if err := cfg.mergeFile(path, explicit); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment
// without overriding variables that are already set. A missing file is fine.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("checking %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	str(envFREDAPIKey, &c.FRED.APIKey)
	str(envFREDBaseURL, &c.FRED.BaseURL)
	str(envCacheDir, &c.Cache.Directory)
	str(envCacheTTL, &c.Cache.TTL)
	str(envLogLevel, &c.Logging.Level)
	str(envLogFormat, &c.Logging.Format)
	str(envLogFile, &c.Logging.File)
	str(envSMTPHost, &c.SMTP.Host)
	str(envSMTPSubject, &c.SMTP.Subject)
	str(envEmail, &c.SMTP.Username)
	str(envEmailPassword, &c.SMTP.Password)

	if v, ok := lookupEnv(envCacheEnabled); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", envCacheEnabled, v, err)
		}
		c.Cache.Enabled = enabled
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{envSMTPPort, &c.SMTP.Port},
		{envFREDConcurrency, &c.FRED.Concurrency},
		{envReportWindowDays, &c.FRED.WindowDays},
	}
	for _, it := range ints {
		v, ok := lookupEnv(it.name)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", it.name, v, err)
		}
		*it.dst = n
	}

	if v, ok := lookupEnv(envMailTo); ok && v != "" {
		c.SMTP.To = splitList(v)
	}
	return nil
}

// Validate checks values every command depends on.
func (c *Config) Validate() error {
	if c.Cache.Directory == "" {
		return errors.New("cache.directory cannot be empty")
	}
	if _, err := c.CacheFreshness(); err != nil {
		return fmt.Errorf("cache.ttl: %w", err)
	}
	if c.FRED.BaseURL == "" {
		return errors.New("fred.base_url cannot be empty")
	}
	if c.FRED.Timeout <= 0 {
		return fmt.Errorf("fred.timeout must be positive, got %s", c.FRED.Timeout)
	}
	if c.FRED.WindowDays < 1 || c.FRED.WindowDays > maxWindowDays {
		return fmt.Errorf("fred.window_days must be between 1 and %d, got %d", maxWindowDays, c.FRED.WindowDays)
	}
	if c.FRED.Concurrency < 1 || c.FRED.Concurrency > maxConcurrency {
		return fmt.Errorf("fred.concurrency must be between 1 and %d, got %d", maxConcurrency, c.FRED.Concurrency)
	}
	return nil
}

// ValidateFetch checks what is needed to call FRED.
func (c *Config) ValidateFetch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.FRED.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// ValidateSend checks what is needed to fetch and deliver the report.
func (c *Config) ValidateSend() error {
	if err := c.ValidateFetch(); err != nil {
		return err
	}
	if c.SMTP.Username == "" || c.SMTP.Password == "" {
		return ErrMissingCredentials
	}
	if c.SMTP.Host == "" || c.SMTP.Port <= 0 {
		return fmt.Errorf("smtp host and port are required, got %q:%d", c.SMTP.Host, c.SMTP.Port)
	}
	return nil
}

// CacheFreshness parses Cache.TTL.
func (c *Config) CacheFreshness() (time.Duration, error) {
	return cache.ParseFreshness(c.Cache.TTL)
}

// Sender returns the From address, defaulting to the SMTP username.
func (c *Config) Sender() string {
	if c.SMTP.From != "" {
		return c.SMTP.From
	}
	return c.SMTP.Username
}

// Recipients returns the To addresses, defaulting to the sender.
func (c *Config) Recipients() []string {
	if len(c.SMTP.To) > 0 {
		return c.SMTP.To
	}
	if sender := c.Sender(); sender != "" {
		return []string{sender}
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, listSeparator) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
