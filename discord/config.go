package discord

// Config holds Discord-specific configuration.
type Config struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// Enabled reports whether a scan summary should be posted.
func (c Config) Enabled() bool {
	return c.Token != "" && c.ChannelID != ""
}
