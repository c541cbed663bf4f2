// Package scan runs one pass over the roster and writes the JSON artifacts.
package scan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tnicklin/keystonescan/blizzard"
	"github.com/tnicklin/keystonescan/clock"
	"github.com/tnicklin/keystonescan/discord"
	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/logger"
	"github.com/tnicklin/keystonescan/models"
	"github.com/tnicklin/keystonescan/output"
	rioClient "github.com/tnicklin/keystonescan/raiderio/client"
	"github.com/tnicklin/keystonescan/store"
	"github.com/tnicklin/keystonescan/timeutil"
	"golang.org/x/sync/errgroup"
)

// Recorder stores the scan audit log.
type Recorder interface {
	RecordScan(ctx context.Context, rec store.ScanRecord) error
}

// Result describes a completed scan.
type Result struct {
	ScanID   string
	Catalog  []models.Dungeon
	Profiles []*keystone.Profile
	Skipped  []models.Character
}

type Scanner struct {
	cfg      Config
	season   int
	blizzard blizzard.API
	raiderIO rioClient.Client
	recorder Recorder
	notifier discord.Notifier
	clock    clock.Clock
	writer   output.Writer
	logger   logger.Logger
	newID    func() string
}

type Params struct {
	Config Config
	// Season is the keystone season for the blizzard run source. Zero asks
	// the API for the current season.
	Season   int
	Blizzard blizzard.API
	RaiderIO rioClient.Client
	Recorder Recorder
	Notifier discord.Notifier
	Clock    clock.Clock
	Logger   logger.Logger
}

func New(p Params) *Scanner {
	cfg := p.Config
	cfg.Defaults()

	notifier := p.Notifier
	if notifier == nil {
		notifier = discord.Nop{}
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.System()
	}
	log := p.Logger
	if log == nil {
		log = logger.NewNop()
	}

	return &Scanner{
		cfg:      cfg,
		season:   p.Season,
		blizzard: p.Blizzard,
		raiderIO: p.RaiderIO,
		recorder: p.Recorder,
		notifier: notifier,
		clock:    clk,
		writer:   output.Writer{Dir: cfg.OutputDir},
		logger:   log,
		newID:    uuid.NewString,
	}
}

// Run scans every character in roster order. A character the upstream APIs
// have no data for is skipped with a warning; any other error aborts the
// scan before the character views are written.
func (s *Scanner) Run(ctx context.Context, roster []models.Character) (*Result, error) {
	if err := s.cfg.Validate(); err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, fmt.Errorf("%w: roster is empty", keystone.ErrConfig)
	}

	res := &Result{ScanID: s.newID()}
	log := s.logger.With("scan_id", res.ScanID)
	started := s.clock.Now()
	log.InfoW("scan started", "characters", len(roster), "run_source", s.cfg.RunSource)

	err := s.run(ctx, log, roster, res)

	rec := store.ScanRecord{
		ID:         res.ScanID,
		StartedAt:  started,
		FinishedAt: s.clock.Now(),
		Characters: len(roster),
		Skipped:    len(res.Skipped),
		Status:     store.ScanSucceeded,
	}
	if err != nil {
		rec.Status = store.ScanFailed
		rec.Error = err.Error()
		log.ErrorW("scan failed", "error", err)
	}
	if s.recorder != nil {
		// The scan may have been aborted by ctx; the audit row is still written.
		if rerr := s.recorder.RecordScan(context.WithoutCancel(ctx), rec); rerr != nil {
			log.WarnW("record scan", "error", rerr)
		}
	}
	if err != nil {
		return nil, err
	}

	log.InfoW("scan finished",
		"characters", len(roster),
		"skipped", len(res.Skipped),
		"elapsed", rec.FinishedAt.Sub(started),
	)
	s.notify(ctx, log, res, rec.FinishedAt)
	return res, nil
}

// run does the work of one scan. log carries the scan_id field.
func (s *Scanner) run(ctx context.Context, log logger.Logger, roster []models.Character, res *Result) error {
	index, err := s.blizzard.DungeonIndex(ctx)
	if err != nil {
		return fmt.Errorf("dungeon index: %w", err)
	}
	res.Catalog = keystone.BuildCatalog(index, keystone.ExclusionSet(s.cfg.ExcludeDungeons))
	log.DebugW("catalog built", "dungeons", len(res.Catalog))

	details, err := s.fetchDetails(ctx, log, res.Catalog)
	if err != nil {
		return err
	}
	if err := s.writer.WriteJSON(output.DungeonsFile, keystone.DungeonView(res.Catalog, details)); err != nil {
		return err
	}

	season := s.season
	if s.cfg.RunSource == RunSourceBlizzard && season == 0 {
		if season, err = s.blizzard.CurrentSeason(ctx); err != nil {
			return fmt.Errorf("current season: %w", err)
		}
	}

	res.Profiles, res.Skipped, err = s.fetchCharacters(ctx, log, roster, season)
	if err != nil {
		return err
	}

	artifacts := []struct {
		name string
		v    any
	}{
		{output.PlayersFile, keystone.PlayerView(res.Profiles, res.Catalog)},
		{output.CharactersFile, keystone.CharacterView(res.Profiles, res.Catalog)},
		{output.WeeklyFile, keystone.WeeklyView(res.Profiles)},
	}
	for _, a := range artifacts {
		if err := s.writer.WriteJSON(a.name, a.v); err != nil {
			return err
		}
	}
	return s.writer.WriteScanned(s.clock.Now())
}

// fetchDetails loads upgrade timers and tile art for each catalog dungeon.
// A dungeon the API has nothing for keeps an empty upgrade list.
func (s *Scanner) fetchDetails(ctx context.Context, log logger.Logger, catalog []models.Dungeon) (map[int]models.DungeonDetail, error) {
	found := make([]*models.DungeonDetail, len(catalog))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, dungeon := range catalog {
		g.Go(func() error {
			detail, err := s.fetchDetail(gctx, dungeon)
			switch keystone.Classify(err) {
			case keystone.OutcomeOK:
				found[i] = &detail
			case keystone.OutcomeRecoverable:
				log.WarnW("dungeon detail unavailable", "dungeon", dungeon.Name, "error", err)
			default:
				return fmt.Errorf("dungeon %d (%s): %w", dungeon.ID, dungeon.Name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	details := make(map[int]models.DungeonDetail, len(catalog))
	for _, d := range found {
		if d != nil {
			details[d.ID] = *d
		}
	}
	return details, nil
}

func (s *Scanner) fetchDetail(ctx context.Context, dungeon models.Dungeon) (models.DungeonDetail, error) {
	detail, err := s.blizzard.Dungeon(ctx, dungeon.ID)
	if err != nil {
		return models.DungeonDetail{}, err
	}
	detail.ID = dungeon.ID
	if detail.JournalInstanceID == 0 {
		return detail, nil
	}
	tile, err := s.blizzard.JournalInstanceTile(ctx, detail.JournalInstanceID)
	if err != nil && keystone.Classify(err) != keystone.OutcomeRecoverable {
		return models.DungeonDetail{}, err
	}
	detail.Tile = tile
	return detail, nil
}

// fetchCharacters fetches every character with at most MaxConcurrent in
// flight. Each worker writes only its own slot, so profiles keep roster
// order regardless of completion order.
func (s *Scanner) fetchCharacters(ctx context.Context, log logger.Logger, roster []models.Character, season int) ([]*keystone.Profile, []models.Character, error) {
	profiles := make([]*keystone.Profile, len(roster))
	failures := make([]error, len(roster))
	now := s.clock.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrent)
	for i, character := range roster {
		profiles[i] = keystone.NewProfile(character)
		g.Go(func() error {
			err := s.fetchCharacter(gctx, log, profiles[i], season, now)
			switch keystone.Classify(err) {
			case keystone.OutcomeOK:
			case keystone.OutcomeRecoverable:
				failures[i] = err
			default:
				return fmt.Errorf("character %s: %w", character, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var skipped []models.Character
	for i, err := range failures {
		if err == nil {
			continue
		}
		c := roster[i]
		log.WarnW("character skipped",
			"player", c.Player,
			"realm", c.Realm,
			"character", c.Name,
			"error", err,
		)
		skipped = append(skipped, c)
	}
	return profiles, skipped, nil
}

// fetchCharacter populates p. On error p is left as it was.
func (s *Scanner) fetchCharacter(ctx context.Context, log logger.Logger, p *keystone.Profile, season int, now time.Time) error {
	character := p.Character
	result, err := s.raiderIO.FetchProfile(ctx, character)
	if err != nil {
		return err
	}

	best, alternate := result.BestRuns, result.AlternateRuns
	if s.cfg.RunSource == RunSourceBlizzard {
		runs, err := s.blizzard.KeystoneProfile(ctx, character, season)
		if err != nil {
			return err
		}
		best, alternate = keystone.SplitBestAlternate(runs)
	}

	if err := p.ReconcileRuns(best, alternate, result.Seasons); err != nil {
		return err
	}
	p.RankWeeklyKeys(s.weeklyLevels(character, result.WeeklyRuns, now))

	log.DebugW("character scanned",
		"player", character.Player,
		"realm", character.Realm,
		"character", character.Name,
		"dungeons", len(p.Keystone),
		"score", p.KeystoneScore,
	)
	return nil
}

func (s *Scanner) weeklyLevels(character models.Character, runs []models.WeeklyRun, now time.Time) []int {
	var cutoff time.Time
	if *s.cfg.WeeklyCutoff {
		cutoff = timeutil.WeeklyResetAt(now, models.Region(character.Region))
	}

	levels := make([]int, 0, len(runs))
	for _, run := range runs {
		if !cutoff.IsZero() && run.CompletedAt != "" && !timeutil.CompletedSince(run.CompletedAt, cutoff) {
			continue
		}
		levels = append(levels, run.Level)
	}
	return levels
}

func (s *Scanner) notify(ctx context.Context, log logger.Logger, res *Result, finished time.Time) {
	summary := discord.Summary{
		ScanID:     res.ScanID,
		Finished:   finished,
		Characters: len(res.Profiles),
		Weekly:     keystone.WeeklyView(res.Profiles),
	}
	for _, c := range res.Skipped {
		summary.Skipped = append(summary.Skipped, c.String())
	}
	if err := s.notifier.Notify(ctx, summary); err != nil && !errors.Is(err, context.Canceled) {
		log.WarnW("scan summary not posted", "error", err)
	}
}
