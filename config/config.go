package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tnicklin/keystonescan/blizzard"
	"github.com/tnicklin/keystonescan/clock"
	"github.com/tnicklin/keystonescan/discord"
	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/logger"
	"github.com/tnicklin/keystonescan/models"
	"github.com/tnicklin/keystonescan/raiderio"
	"github.com/tnicklin/keystonescan/roster"
	"github.com/tnicklin/keystonescan/scan"
	"github.com/tnicklin/keystonescan/store"
	"go.uber.org/config"
)

const (
	// FileName is the config file looked up in the input directory.
	FileName = "keystonescan.yaml"
	// AccessFile is the legacy credentials file in the input directory.
	AccessFile = "access.json"
	// DatabaseFile is the default store file in the input directory.
	DatabaseFile = "keystonescan.db"
)

// Environment variables that override secrets from YAML.
const (
	EnvBlizzardClientID     = "BLIZZARD_CLIENT_ID"
	EnvBlizzardClientSecret = "BLIZZARD_CLIENT_SECRET"
	EnvDiscordToken         = "DISCORD_TOKEN"
	EnvDiscordChannelID     = "DISCORD_CHANNEL_ID"
)

// AppConfig holds all application configuration.
type AppConfig struct {
	Logger   logger.Config      `yaml:"logger"`
	Blizzard blizzard.Config    `yaml:"blizzard"`
	RaiderIO raiderio.Config    `yaml:"raiderio"`
	Store    store.Config       `yaml:"store"`
	Scan     scan.Config        `yaml:"scan"`
	Discord  discord.Config     `yaml:"discord"`
	Clock    clock.Config       `yaml:"clock"`
	Players  []models.Character `yaml:"players"`
}

// Load reads configuration from the specified YAML files.
// Files are merged in order, with later files overriding earlier ones.
// Missing files are silently ignored.
func Load(files ...string) (*AppConfig, error) {
	opts := make([]config.YAMLOption, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			opts = append(opts, config.File(f))
		}
	}

	if len(opts) == 0 {
		return nil, os.ErrNotExist
	}

	provider, err := config.NewYAML(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", keystone.ErrConfig, err)
	}

	var cfg AppConfig
	if err := provider.Get(config.Root).Populate(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", keystone.ErrConfig, err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration with sensible defaults.
func LoadWithDefaults(files ...string) (*AppConfig, error) {
	cfg, err := Load(files...)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills unset values. Paths default relative to the scan's
// input directory, so directory overrides must be applied first.
func (c *AppConfig) ApplyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = logger.Defaults().Level
	}
	if c.Logger.Encoding == "" {
		c.Logger.Encoding = logger.Defaults().Encoding
	}
	if len(c.Logger.OutputPaths) == 0 {
		c.Logger.OutputPaths = logger.Defaults().OutputPaths
	}
	c.Scan.Defaults()
	c.Blizzard.Defaults()
	if c.RaiderIO.Region == "" {
		c.RaiderIO.Region = c.Blizzard.Region
	}
	c.RaiderIO.Defaults()
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.Scan.InputDir, DatabaseFile)
	}
}

// LoadSecrets loads .env files, then lets the environment override secrets.
// Blizzard credentials still missing are read from the legacy access.json in
// the input directory.
func (c *AppConfig) LoadSecrets(envFiles ...string) error {
	var existing []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return fmt.Errorf("%w: load env: %v", keystone.ErrConfig, err)
		}
	}

	override(&c.Blizzard.ClientID, EnvBlizzardClientID)
	override(&c.Blizzard.ClientSecret, EnvBlizzardClientSecret)
	override(&c.Discord.Token, EnvDiscordToken)
	override(&c.Discord.ChannelID, EnvDiscordChannelID)

	if c.Blizzard.ClientID != "" && c.Blizzard.ClientSecret != "" {
		return nil
	}
	access, err := LoadAccessFile(filepath.Join(c.Scan.InputDir, AccessFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.Blizzard.ClientID == "" {
		c.Blizzard.ClientID = access.ClientID
	}
	if c.Blizzard.ClientSecret == "" {
		c.Blizzard.ClientSecret = access.ClientSecret
	}
	return nil
}

func override(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

// Access is the legacy access.json credential file.
type Access struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func LoadAccessFile(path string) (Access, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Access{}, err
	}
	var access Access
	if err := json.Unmarshal(data, &access); err != nil {
		return Access{}, fmt.Errorf("%w: %s: %v", keystone.ErrConfig, path, err)
	}
	return access, nil
}

// Validate checks everything a scan needs before any network activity.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.Blizzard.ClientID == "" || c.Blizzard.ClientSecret == "" {
		errs = append(errs, errors.New("blizzard client_id and client_secret are required"))
	}
	if _, err := models.ParseRegion(c.Blizzard.Region); err != nil {
		errs = append(errs, err)
	}
	if _, err := models.ParseLocale(c.Blizzard.Locale); err != nil {
		errs = append(errs, err)
	}
	if err := c.Scan.Validate(); err != nil {
		errs = append(errs, err)
	}
	if (c.Discord.Token == "") != (c.Discord.ChannelID == "") {
		errs = append(errs, errors.New("discord token and channel_id must be set together"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", keystone.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Roster returns the configured players, or the toons.json roster from the
// input directory when none are configured.
func (c *AppConfig) Roster() ([]models.Character, error) {
	region := models.Region(strings.ToLower(c.Blizzard.Region))
	if len(c.Players) > 0 {
		return roster.Normalize(c.Players, region)
	}
	return roster.LoadFile(filepath.Join(c.Scan.InputDir, roster.FileName), region)
}
