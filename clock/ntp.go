package clock

import (
	"time"

	"github.com/beevik/ntp"
)

// Logger is a minimal logging interface satisfied by logger.Logger.
type Logger interface {
	InfoW(msg string, keysAndValues ...any)
	WarnW(msg string, keysAndValues ...any)
}

// QueryFunc performs an NTP query. ntp.QueryWithOptions satisfies it.
type QueryFunc func(server string, opts ntp.QueryOptions) (*ntp.Response, error)

const (
	defaultServer  = "pool.ntp.org"
	defaultTimeout = 5 * time.Second
)

// NTPParams configures NewNTP.
type NTPParams struct {
	Server  string
	Timeout time.Duration
	Logger  Logger
	Query   QueryFunc
}

// NTPClock is a wall clock corrected by the offset measured once at
// construction. A scan is short enough that drift during the run is ignored.
type NTPClock struct {
	offset time.Duration
}

// NewNTP queries the NTP server once. When the query fails the clock falls
// back to the system time.
func NewNTP(p NTPParams) *NTPClock {
	server := p.Server
	if server == "" {
		server = defaultServer
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	query := p.Query
	if query == nil {
		query = ntp.QueryWithOptions
	}

	resp, err := query(server, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		if p.Logger != nil {
			p.Logger.WarnW("ntp sync failed, using system clock", "server", server, "error", err)
		}
		return &NTPClock{}
	}
	if p.Logger != nil {
		p.Logger.InfoW("ntp sync", "server", server, "offset", resp.ClockOffset)
	}
	return &NTPClock{offset: resp.ClockOffset}
}

// Now returns the current time adjusted by the NTP offset.
func (c *NTPClock) Now() time.Time {
	return time.Now().Add(c.offset)
}

// Offset returns the measured NTP offset.
func (c *NTPClock) Offset() time.Duration {
	return c.offset
}
