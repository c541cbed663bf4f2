package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tnicklin/keystonescan/blizzard"
	"github.com/tnicklin/keystonescan/clock"
	"github.com/tnicklin/keystonescan/config"
	"github.com/tnicklin/keystonescan/discord"
	"github.com/tnicklin/keystonescan/logger"
	"github.com/tnicklin/keystonescan/models"
	rioClient "github.com/tnicklin/keystonescan/raiderio/client"
	"github.com/tnicklin/keystonescan/scan"
	"github.com/tnicklin/keystonescan/store"
)

type flags struct {
	input   string
	output  string
	configs []string
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "keystonescan:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:   "keystonescan",
		Short: "Scan mythic keystone progress for a roster and write JSON views",
		Long: `Fetches mythic keystone runs for every character in the roster,
reconciles best and alternate runs per dungeon and writes dungeons.json,
players.json, characters.json, weekly.json and scanned.json.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := build(f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), p)
		},
	}
	cmd.PersistentFlags().StringVarP(&f.input, "input", "i", ".", "directory holding toons.json, access.json and .env")
	cmd.Flags().StringVarP(&f.output, "output", "o", ".", "directory the JSON views are written to")
	cmd.PersistentFlags().StringSliceVarP(&f.configs, "config", "c", nil, "YAML config files, merged in order (default <input>/keystonescan.yaml)")
	cmd.AddCommand(newHistoryCmd(&f))
	return cmd
}

func newHistoryCmd(f *flags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent scans from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := readConfig(*f)
			if err != nil {
				return err
			}
			st := store.NewSQLiteStore(store.Params{Path: cfg.Store.Path})
			return history(cmd.Context(), st, cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of scans to list")
	return cmd
}

// readConfig loads the YAML files and applies defaults without requiring
// credentials.
func readConfig(f flags) (*config.AppConfig, error) {
	files := f.configs
	if len(files) == 0 {
		files = []string{filepath.Join(f.input, config.FileName)}
	}
	cfg, err := config.Load(files...)
	switch {
	case errors.Is(err, os.ErrNotExist) && len(f.configs) == 0:
		cfg = &config.AppConfig{}
	case err != nil:
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.Scan.InputDir = f.input
	cfg.Scan.OutputDir = f.output
	cfg.ApplyDefaults()
	return cfg, nil
}

func loadConfig(f flags) (*config.AppConfig, error) {
	cfg, err := readConfig(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadSecrets(".env", filepath.Join(f.input, ".env")); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type runParams struct {
	Config  *config.AppConfig
	Logger  logger.Logger
	Store   *store.SQLiteStore
	Roster  []models.Character
	Scanner *scan.Scanner
}

func build(f flags) (runParams, error) {
	cfg, err := loadConfig(f)
	if err != nil {
		return runParams{}, err
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return runParams{}, fmt.Errorf("initialize logger: %w", err)
	}

	roster, err := cfg.Roster()
	if err != nil {
		return runParams{}, err
	}

	clk := clock.New(cfg.Clock, appLogger)
	st := store.NewSQLiteStore(store.Params{Path: cfg.Store.Path, Logger: appLogger})

	region, _ := models.ParseRegion(cfg.Blizzard.Region)
	locale, _ := models.ParseLocale(cfg.Blizzard.Locale)
	bliz := blizzard.New(blizzard.Params{
		ClientID:     cfg.Blizzard.ClientID,
		ClientSecret: cfg.Blizzard.ClientSecret,
		Region:       region,
		Locale:       locale,
		APIURL:       cfg.Blizzard.APIURL,
		TokenURL:     cfg.Blizzard.TokenURL,
		HTTPClient:   &http.Client{Timeout: cfg.Blizzard.Timeout},
		Cache:        st,
		Clock:        clk,
		Retry:        cfg.Blizzard.Retry(),
		Logger:       appLogger,
	})

	rio := rioClient.New(rioClient.Params{
		BaseURL:    cfg.RaiderIO.BaseURL,
		UserAgent:  cfg.RaiderIO.UserAgent,
		Region:     cfg.RaiderIO.Region,
		HTTPClient: cfg.RaiderIO.HTTPClient,
		Retry:      cfg.RaiderIO.Retry(),
	})

	var notifier discord.Notifier = discord.Nop{}
	if cfg.Discord.Enabled() {
		n, err := discord.New(discord.Params{Config: cfg.Discord, Logger: appLogger})
		if err != nil {
			return runParams{}, err
		}
		notifier = n
	}

	scanner := scan.New(scan.Params{
		Config:   cfg.Scan,
		Season:   cfg.Blizzard.Season,
		Blizzard: bliz,
		RaiderIO: rio,
		Recorder: st,
		Notifier: notifier,
		Clock:    clk,
		Logger:   appLogger,
	})

	return runParams{
		Config:  cfg,
		Logger:  appLogger,
		Store:   st,
		Roster:  roster,
		Scanner: scanner,
	}, nil
}

// run opens the store and performs one scan.
func run(ctx context.Context, p runParams) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer p.Logger.Sync()

	if err := p.Store.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := p.Store.Close(); err != nil {
			p.Logger.WarnW("close store", "error", err)
		}
	}()

	res, err := p.Scanner.Run(ctx, p.Roster)
	if err != nil {
		return err
	}
	p.Logger.InfoW("artifacts written",
		"scan_id", res.ScanID,
		"output_dir", p.Config.Scan.OutputDir,
		"dungeons", len(res.Catalog),
		"characters", len(res.Profiles),
		"skipped", len(res.Skipped),
	)
	return nil
}

// history prints the most recent scans, newest first.
func history(ctx context.Context, st *store.SQLiteStore, w io.Writer, limit int) error {
	if err := st.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	recs, err := st.ListScans(ctx, limit)
	if err != nil {
		return fmt.Errorf("list scans: %w", err)
	}
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no scans recorded")
		return err
	}
	for _, rec := range recs {
		line := fmt.Sprintf("%s  %s  %-9s  characters=%d skipped=%d elapsed=%s",
			rec.StartedAt.UTC().Format(time.RFC3339),
			rec.ID,
			rec.Status,
			rec.Characters,
			rec.Skipped,
			rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second),
		)
		if rec.Error != "" {
			line += "  error=" + rec.Error
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
