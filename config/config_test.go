package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/models"
	"github.com/tnicklin/keystonescan/scan"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "valid config",
			content: `
logger:
  level: debug
  output_paths:
    - stdout
blizzard:
  region: eu
  locale: en_GB
  timeout: 10s
scan:
  max_concurrent: 4
  run_source: blizzard
  exclude_dungeons: [1, 2]
discord:
  token: "test-token"
  channel_id: "123456"
players:
  - player: bob
    realm: Illidan
    name: Arthas
`,
		},
		{
			name:    "empty config",
			content: "",
		},
		{
			name:    "malformed yaml",
			content: "scan: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeFile(t, configPath, tt.content)

			cfg, err := Load(configPath)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if !errors.Is(err, keystone.ErrConfig) {
					t.Errorf("expected ErrConfig, got %v", err)
				}
				return
			}
			if cfg == nil {
				t.Error("Load() returned nil config without error")
			}
		})
	}
}

func TestLoadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
blizzard:
  region: eu
  timeout: 10s
scan:
  max_concurrent: 4
  exclude_dungeons: [1, 2]
players:
  - player: bob
    realm: Illidan
    name: Arthas
`)
	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults() error = %v", err)
	}
	if cfg.Blizzard.Timeout != 10*time.Second {
		t.Errorf("Blizzard.Timeout = %v", cfg.Blizzard.Timeout)
	}
	if cfg.RaiderIO.Region != "eu" {
		t.Errorf("RaiderIO.Region should follow blizzard region, got %q", cfg.RaiderIO.Region)
	}
	if diff := cmp.Diff([]int{1, 2}, cfg.Scan.ExcludeDungeons); diff != "" {
		t.Errorf("exclusions mismatch (-want +got):\n%s", diff)
	}
	want := []models.Character{{Player: "bob", Realm: "Illidan", Name: "Arthas"}}
	if diff := cmp.Diff(want, cfg.Players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMaxRetries(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantBlizzard int
		wantRaiderIO int
	}{
		{
			name:         "unset uses default",
			content:      "scan:\n  max_concurrent: 1\n",
			wantBlizzard: 3,
			wantRaiderIO: 3,
		},
		{
			name:         "zero disables retries",
			content:      "blizzard:\n  max_retries: 0\nraiderio:\n  max_retries: 0\n",
			wantBlizzard: 0,
			wantRaiderIO: 0,
		},
		{
			name:         "explicit value kept",
			content:      "blizzard:\n  max_retries: 5\nraiderio:\n  max_retries: 1\n",
			wantBlizzard: 5,
			wantRaiderIO: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.content)

			cfg, err := LoadWithDefaults(path)
			if err != nil {
				t.Fatalf("LoadWithDefaults() error = %v", err)
			}
			if got := cfg.Blizzard.Retry().MaxRetries; got != tt.wantBlizzard {
				t.Errorf("Blizzard retries = %d, want %d", got, tt.wantBlizzard)
			}
			if got := cfg.RaiderIO.Retry().MaxRetries; got != tt.wantRaiderIO {
				t.Errorf("RaiderIO retries = %d, want %d", got, tt.wantRaiderIO)
			}
		})
	}
}

func TestLoadMergesFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	local := filepath.Join(dir, "local.yaml")
	writeFile(t, base, "logger:\n  level: info\nscan:\n  max_concurrent: 2\n")
	writeFile(t, local, "logger:\n  level: debug\n")

	cfg, err := Load(base, local, filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logger.Level != "debug" || cfg.Scan.MaxConcurrent != 2 {
		t.Fatalf("unexpected merge result: level=%q max_concurrent=%d", cfg.Logger.Level, cfg.Scan.MaxConcurrent)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() should return os.ErrNotExist for missing file, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &AppConfig{Scan: scan.Config{InputDir: "data"}}
	cfg.ApplyDefaults()

	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q", cfg.Logger.Level)
	}
	if cfg.RaiderIO.BaseURL != "https://raider.io" {
		t.Errorf("RaiderIO.BaseURL = %q", cfg.RaiderIO.BaseURL)
	}
	if cfg.Blizzard.Region != "us" || cfg.Blizzard.Locale != "en_US" {
		t.Errorf("blizzard region/locale = %q/%q", cfg.Blizzard.Region, cfg.Blizzard.Locale)
	}
	if cfg.Store.Path != filepath.Join("data", DatabaseFile) {
		t.Errorf("Store.Path = %q", cfg.Store.Path)
	}
	if cfg.Scan.MaxConcurrent != 1 || cfg.Scan.RunSource != scan.RunSourceRaiderIO {
		t.Errorf("scan defaults = %+v", cfg.Scan)
	}
	if diff := cmp.Diff(keystone.DefaultExclusions, cfg.Scan.ExcludeDungeons); diff != "" {
		t.Errorf("exclusions mismatch (-want +got):\n%s", diff)
	}
}

// unsetenv clears key for the test and restores its previous value afterwards.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatal(err)
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Run("env file and environment", func(t *testing.T) {
		dir := t.TempDir()
		envPath := filepath.Join(dir, ".env")
		writeFile(t, envPath, "BLIZZARD_CLIENT_ID=from-dotenv\nBLIZZARD_CLIENT_SECRET=dotenv-secret\n")
		unsetenv(t, EnvBlizzardClientID)
		unsetenv(t, EnvBlizzardClientSecret)
		t.Setenv(EnvDiscordToken, "discord-token")
		t.Setenv(EnvDiscordChannelID, "")

		cfg := &AppConfig{Scan: scan.Config{InputDir: dir}}
		cfg.Blizzard.ClientID = "from-yaml"
		cfg.Discord.ChannelID = "42"
		if err := cfg.LoadSecrets(envPath); err != nil {
			t.Fatalf("LoadSecrets() error = %v", err)
		}
		if cfg.Blizzard.ClientID != "from-dotenv" || cfg.Blizzard.ClientSecret != "dotenv-secret" {
			t.Errorf("credentials = %q/%q, want values from .env", cfg.Blizzard.ClientID, cfg.Blizzard.ClientSecret)
		}
		if cfg.Discord.Token != "discord-token" {
			t.Errorf("Discord.Token = %q", cfg.Discord.Token)
		}
		if cfg.Discord.ChannelID != "42" {
			t.Errorf("empty environment value should not clear yaml, got %q", cfg.Discord.ChannelID)
		}
	})

	t.Run("legacy access file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, AccessFile), `{"client_id": "legacy-id", "client_secret": "legacy-secret"}`)
		t.Setenv(EnvBlizzardClientID, "")
		t.Setenv(EnvBlizzardClientSecret, "")

		cfg := &AppConfig{Scan: scan.Config{InputDir: dir}}
		if err := cfg.LoadSecrets(filepath.Join(dir, ".env")); err != nil {
			t.Fatalf("LoadSecrets() error = %v", err)
		}
		if cfg.Blizzard.ClientID != "legacy-id" || cfg.Blizzard.ClientSecret != "legacy-secret" {
			t.Errorf("credentials = %q/%q", cfg.Blizzard.ClientID, cfg.Blizzard.ClientSecret)
		}
	})

	t.Run("malformed access file", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, AccessFile), `{`)
		t.Setenv(EnvBlizzardClientID, "")
		t.Setenv(EnvBlizzardClientSecret, "")

		cfg := &AppConfig{Scan: scan.Config{InputDir: dir}}
		if err := cfg.LoadSecrets(); !errors.Is(err, keystone.ErrConfig) {
			t.Fatalf("expected ErrConfig, got %v", err)
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *AppConfig {
		cfg := &AppConfig{}
		cfg.ApplyDefaults()
		cfg.Blizzard.ClientID = "id"
		cfg.Blizzard.ClientSecret = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "missing secret", mutate: func(c *AppConfig) { c.Blizzard.ClientSecret = "" }, wantErr: true},
		{name: "bad region", mutate: func(c *AppConfig) { c.Blizzard.Region = "mars" }, wantErr: true},
		{name: "bad locale", mutate: func(c *AppConfig) { c.Blizzard.Locale = "xx_YY" }, wantErr: true},
		{name: "bad run source", mutate: func(c *AppConfig) { c.Scan.RunSource = "wcl" }, wantErr: true},
		{name: "discord half configured", mutate: func(c *AppConfig) { c.Discord.Token = "t" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, keystone.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestRoster(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "toons.json"), `{"eve": {"Draenor": ["Jaina"]}}`)

	cfg := &AppConfig{Scan: scan.Config{InputDir: dir}}
	cfg.ApplyDefaults()
	cfg.Blizzard.Region = "eu"

	chars, err := cfg.Roster()
	if err != nil {
		t.Fatalf("Roster() error = %v", err)
	}
	if len(chars) != 1 || chars[0].Region != "eu" || chars[0].Name != "Jaina" {
		t.Fatalf("unexpected roster from toons.json: %+v", chars)
	}

	cfg.Players = []models.Character{{Player: "bob", Realm: "Illidan", Name: "Arthas"}}
	chars, err = cfg.Roster()
	if err != nil {
		t.Fatalf("Roster() error = %v", err)
	}
	if len(chars) != 1 || chars[0].Name != "Arthas" {
		t.Fatalf("configured players should win over toons.json: %+v", chars)
	}
}
