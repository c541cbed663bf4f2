package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/models"
	"github.com/tnicklin/keystonescan/transport"
)

var _ Client = (*DefaultClient)(nil)

const profileFields = "mythic_plus_best_runs:all," +
	"mythic_plus_alternate_runs:all," +
	"mythic_plus_weekly_highest_level_runs," +
	"mythic_plus_scores_by_season:current"

// DefaultClient is the RaiderIO API client.
type DefaultClient struct {
	baseURL   string
	userAgent string
	region    string
	http      *http.Client
	retry     transport.Retry
}

type Params struct {
	BaseURL    string
	UserAgent  string
	Region     string
	HTTPClient *http.Client
	Retry      transport.Retry
}

// New creates a new RaiderIO client from the given config.
func New(p Params) *DefaultClient {
	httpClient := p.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DefaultClient{
		baseURL:   p.BaseURL,
		userAgent: p.UserAgent,
		region:    p.Region,
		http:      httpClient,
		retry:     p.Retry,
	}
}

// FetchProfile requests best, alternate and weekly runs together with the
// current season score in a single profile call. A character RaiderIO does
// not know yields an error matching transport.ErrNoData, and an undecodable
// body a recoverable error, so one bad profile only skips that character.
func (c *DefaultClient) FetchProfile(ctx context.Context, character models.Character) (ProfileResult, error) {
	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return ProfileResult{}, err
	}
	endpoint.Path = "/api/v1/characters/profile"

	region := character.Region
	if region == "" {
		region = c.region
	}

	query := endpoint.Query()
	query.Set("region", strings.ToLower(region))
	query.Set("realm", character.RealmSlug())
	query.Set("name", character.Name)
	query.Set("fields", profileFields)
	endpoint.RawQuery = query.Encode()

	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}
		return req, nil
	}

	resp, err := transport.Do(ctx, c.http, "raiderio", build, c.retry)
	if err != nil {
		return ProfileResult{}, err
	}
	defer resp.Body.Close()

	var payload profileResponse
	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return ProfileResult{}, keystone.Recoverable("malformed profile payload",
			fmt.Errorf("raiderio: decode profile: %w", err))
	}

	return ProfileResult{
		BestRuns:      toRuns(payload.BestRuns),
		AlternateRuns: toRuns(payload.AlternateRuns),
		WeeklyRuns:    toWeeklyRuns(payload.WeeklyRuns),
		Seasons:       toSeasons(payload.Seasons),
	}, nil
}

func toRuns(in []profileRun) []models.Run {
	out := make([]models.Run, 0, len(in))
	for _, run := range in {
		var affix string
		if len(run.Affixes) > 0 {
			affix = run.Affixes[0].Name
		}
		out = append(out, models.Run{
			Dungeon:     run.Dungeon,
			Level:       run.MythicLevel,
			ClearTimeMS: run.ClearTimeMS,
			AffixName:   affix,
			Score:       run.Score,
		})
	}
	return out
}

func toWeeklyRuns(in []profileRun) []models.WeeklyRun {
	out := make([]models.WeeklyRun, 0, len(in))
	for _, run := range in {
		out = append(out, models.WeeklyRun{
			Dungeon:     run.Dungeon,
			Level:       run.MythicLevel,
			CompletedAt: run.CompletedAt,
		})
	}
	return out
}

func toSeasons(in []seasonScore) []models.SeasonScore {
	out := make([]models.SeasonScore, 0, len(in))
	for _, season := range in {
		out = append(out, models.SeasonScore{
			Season: season.Season,
			All:    season.Scores.All,
		})
	}
	return out
}

type profileResponse struct {
	BestRuns      []profileRun  `json:"mythic_plus_best_runs"`
	AlternateRuns []profileRun  `json:"mythic_plus_alternate_runs"`
	WeeklyRuns    []profileRun  `json:"mythic_plus_weekly_highest_level_runs"`
	Seasons       []seasonScore `json:"mythic_plus_scores_by_season"`
}

type profileRun struct {
	Dungeon     string  `json:"dungeon"`
	MythicLevel int     `json:"mythic_level"`
	ClearTimeMS int64   `json:"clear_time_ms"`
	CompletedAt string  `json:"completed_at"`
	Score       float64 `json:"score"`
	Affixes     []struct {
		Name string `json:"name"`
	} `json:"affixes"`
}

type seasonScore struct {
	Season string `json:"season"`
	Scores struct {
		All float64 `json:"all"`
	} `json:"scores"`
}
