package clock

import "time"

// Config holds clock configuration.
type Config struct {
	// NTPServer enables a one-shot NTP correction when set.
	NTPServer string        `yaml:"ntp_server"`
	Timeout   time.Duration `yaml:"timeout"`
}

// New returns an NTP corrected clock when cfg names a server and the system
// clock otherwise.
func New(cfg Config, log Logger) Clock {
	if cfg.NTPServer == "" {
		return System()
	}
	return NewNTP(NTPParams{Server: cfg.NTPServer, Timeout: cfg.Timeout, Logger: log})
}
