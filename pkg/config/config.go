package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	// EnvConfigPath overrides the config file location.
	EnvConfigPath = "LIFECHECK_CONFIG_PATH"

	defaultConfigPath     = "./config.yaml"
	defaultListenAddress  = ":8080"
	defaultThresholdDays  = 2.0
	defaultMaxConcurrency = 8
	defaultPerUserTimeout = 10 * time.Second
)

type Server struct {
	ListenAddress  string   `yaml:"listenAddress"`
	TLSCertFile    string   `yaml:"tlsCertFile"`
	TLSKeyFile     string   `yaml:"tlsKeyFile"`
	TrustedProxies []string `yaml:"trustedProxies"`
}

// Store selects and configures the backend adapter.
type Store struct {
	// Driver is one of "postgres", "supabase" or "memory".
	Driver string `yaml:"driver"`
	// DSN is the Postgres connection string (postgres driver).
	DSN string `yaml:"dsn"`
	// BaseURL is the Supabase project URL (supabase driver).
	BaseURL string `yaml:"baseURL"`
	// ServiceKey is the Supabase service-role key (supabase driver). The
	// scan job must read every user's rows, which anon keys cannot.
	ServiceKey string `yaml:"serviceKey"`
	// RequestTimeout bounds each store call, e.g. "10s".
	RequestTimeout string `yaml:"requestTimeout"`
}

type Mail struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	User               string `yaml:"user"`
	Password           string `yaml:"password"`
	SenderAddress      string `yaml:"senderAddress"`
	SenderName         string `yaml:"senderName"`
	InsecureSkipVerify bool   `yaml:"insecureSkipVerify"`
	// RetryCount is the number of SMTP-level retries per send. Zero keeps a
	// single attempt; failed notifications wait for the next scheduled scan.
	RetryCount     int `yaml:"retryCount"`
	RetryBackoffMs int `yaml:"retryBackoffMs"`
}

type Escalation struct {
	// ThresholdDays is the silence threshold in fractional days.
	ThresholdDays float64 `yaml:"thresholdDays"`
	// Timezone is the IANA name of the canonical calendar time zone.
	// Defaults to UTC.
	Timezone string `yaml:"timezone"`
	// MaxConcurrency bounds the per-user fan-out during a scan.
	MaxConcurrency int `yaml:"maxConcurrency"`
	// PerUserTimeout bounds each per-user store fetch, e.g. "10s".
	PerUserTimeout string `yaml:"perUserTimeout"`
	// RenotifyAfterDays suppresses repeat notifications for a still-silent
	// user until the interval has passed since the last one. Zero notifies
	// on every scan.
	RenotifyAfterDays float64 `yaml:"renotifyAfterDays"`
}

type Config struct {
	Server     Server     `yaml:"server"`
	Store      Store      `yaml:"store"`
	Mail       Mail       `yaml:"mail"`
	Escalation Escalation `yaml:"escalation"`
	// BrandingName is the product name used in outgoing mail.
	BrandingName string `yaml:"brandingName"`
}

// Load reads the configuration from a file path. If configPath is empty it
// defaults to "./config.yaml"; the LIFECHECK_CONFIG_PATH environment
// variable takes precedence over the default.
func Load(configPath ...string) (Config, error) {
	var path string
	if len(configPath) > 0 && configPath[0] != "" {
		path = configPath[0]
	} else if env := os.Getenv(EnvConfigPath); env != "" {
		path = env
	} else {
		path = defaultConfigPath
	}

	var config Config
	content, err := os.ReadFile(path)
	if err != nil {
		return config, fmt.Errorf("trying to open lifecheck config file %s: %v", path, err)
	}
	if err := yaml.Unmarshal(content, &config); err != nil {
		return config, fmt.Errorf("error unmarshaling YAML %s: %v", path, err)
	}
	return config, nil
}

// Defaults fills unset fields with working values.
func (c *Config) Defaults() {
	if c.Server.ListenAddress == "" {
		c.Server.ListenAddress = defaultListenAddress
	}
	if c.Store.Driver == "" {
		c.Store.Driver = "postgres"
	}
	if c.Escalation.ThresholdDays <= 0 {
		c.Escalation.ThresholdDays = defaultThresholdDays
	}
	if c.Escalation.MaxConcurrency <= 0 {
		c.Escalation.MaxConcurrency = defaultMaxConcurrency
	}
	if c.BrandingName == "" {
		c.BrandingName = "DiedOrNot"
	}
}

// Location resolves the canonical calendar time zone.
func (c Config) Location() (*time.Location, error) {
	if c.Escalation.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Escalation.Timezone)
}

// PerUserTimeout parses the per-user timeout with its default.
func (c Config) PerUserTimeout() time.Duration {
	return parseDuration(c.Escalation.PerUserTimeout, defaultPerUserTimeout)
}

// StoreRequestTimeout parses the store request timeout with its default.
func (c Config) StoreRequestTimeout() time.Duration {
	return parseDuration(c.Store.RequestTimeout, defaultPerUserTimeout)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
