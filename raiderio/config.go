package raiderio

import (
	"net/http"
	"time"

	"github.com/tnicklin/keystonescan/transport"
)

const defaultMaxRetries = 3

// Config holds RaiderIO client configuration.
type Config struct {
	BaseURL    string        `yaml:"base_url"`
	UserAgent  string        `yaml:"user_agent"`
	Region     string        `yaml:"region"`
	MaxRetries *int          `yaml:"max_retries"`
	Timeout    time.Duration `yaml:"timeout"`
	HTTPClient *http.Client  `yaml:"-"`
}

// Defaults applies default values to the config.
func (c *Config) Defaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://raider.io"
	}
	if c.UserAgent == "" {
		c.UserAgent = "keystonescan/1.0"
	}
	if c.Region == "" {
		c.Region = "us"
	}
	if c.MaxRetries == nil {
		retries := defaultMaxRetries
		c.MaxRetries = &retries
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
}

// Retry returns the retry policy for throttled requests.
func (c Config) Retry() transport.Retry {
	retries := defaultMaxRetries
	if c.MaxRetries != nil {
		retries = *c.MaxRetries
	}
	return transport.Retry{MaxRetries: retries, BaseDelay: 2 * time.Second}
}
