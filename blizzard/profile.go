package blizzard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tnicklin/keystonescan/keystone"
	"github.com/tnicklin/keystonescan/models"
)

// KeystoneProfile returns a character's per-affix season best runs. Each run
// carries the in-time flag, so callers can drop depleted keys. The request
// goes to the character's own region when it has one.
func (c *DefaultClient) KeystoneProfile(ctx context.Context, character models.Character, season int) ([]models.Run, error) {
	var region models.Region
	if character.Region != "" {
		parsed, err := models.ParseRegion(character.Region)
		if err != nil {
			return nil, fmt.Errorf("%w: character %s: %v", keystone.ErrConfig, character.Name, err)
		}
		region = parsed
	}

	var payload struct {
		BestRuns []struct {
			Duration      int64 `json:"duration"`
			KeystoneLevel int   `json:"keystone_level"`
			Affixes       []struct {
				Name string `json:"name"`
			} `json:"keystone_affixes"`
			Dungeon struct {
				Name string `json:"name"`
			} `json:"dungeon"`
			Timed        bool `json:"is_completed_within_time"`
			MythicRating struct {
				Rating float64 `json:"rating"`
			} `json:"mythic_rating"`
		} `json:"best_runs"`
	}

	path := fmt.Sprintf("/profile/wow/character/%s/%s/mythic-keystone-profile/season/%d",
		url.PathEscape(character.RealmSlug()),
		url.PathEscape(strings.ToLower(character.Name)),
		season)
	if err := c.getIn(ctx, region, path, models.NamespaceProfile, &payload); err != nil {
		if errors.Is(err, errMalformed) {
			return nil, keystone.Recoverable("malformed keystone profile", err)
		}
		return nil, err
	}

	out := make([]models.Run, 0, len(payload.BestRuns))
	for _, run := range payload.BestRuns {
		var affix string
		if len(run.Affixes) > 0 {
			affix = run.Affixes[0].Name
		}
		timed := run.Timed
		out = append(out, models.Run{
			Dungeon:     run.Dungeon.Name,
			Level:       run.KeystoneLevel,
			ClearTimeMS: run.Duration,
			AffixName:   affix,
			Score:       run.MythicRating.Rating,
			Timed:       &timed,
		})
	}
	return out, nil
}
