package blizzard

import (
	"time"

	"github.com/tnicklin/keystonescan/transport"
)

const defaultMaxRetries = 3

// Config holds Blizzard API client configuration.
type Config struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Region       string        `yaml:"region"`
	Locale       string        `yaml:"locale"`
	Season       int           `yaml:"season"`
	APIURL       string        `yaml:"api_url"`
	TokenURL     string        `yaml:"token_url"`
	MaxRetries   *int          `yaml:"max_retries"`
	Timeout      time.Duration `yaml:"timeout"`
}

// Defaults applies default values to the config.
func (c *Config) Defaults() {
	if c.Region == "" {
		c.Region = "us"
	}
	if c.Locale == "" {
		c.Locale = "en_US"
	}
	if c.MaxRetries == nil {
		retries := defaultMaxRetries
		c.MaxRetries = &retries
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
}

// Retry returns the retry policy for throttled requests.
func (c Config) Retry() transport.Retry {
	retries := defaultMaxRetries
	if c.MaxRetries != nil {
		retries = *c.MaxRetries
	}
	return transport.Retry{MaxRetries: retries, BaseDelay: time.Second}
}
