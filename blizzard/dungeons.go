package blizzard

import (
	"context"
	"fmt"

	"github.com/tnicklin/keystonescan/models"
)

// DungeonIndex lists the mythic keystone dungeons of the current season.
func (c *DefaultClient) DungeonIndex(ctx context.Context) ([]models.Dungeon, error) {
	var payload struct {
		Dungeons []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"dungeons"`
	}
	if err := c.get(ctx, "/data/wow/mythic-keystone/dungeon/index", models.NamespaceDynamic, &payload); err != nil {
		return nil, err
	}

	out := make([]models.Dungeon, 0, len(payload.Dungeons))
	for _, dungeon := range payload.Dungeons {
		out = append(out, models.Dungeon{ID: dungeon.ID, Name: dungeon.Name})
	}
	return out, nil
}

// Dungeon returns upgrade thresholds and the journal instance id for one dungeon.
func (c *DefaultClient) Dungeon(ctx context.Context, id int) (models.DungeonDetail, error) {
	var payload struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Dungeon struct {
			ID int `json:"id"`
		} `json:"dungeon"`
		KeystoneUpgrades []struct {
			UpgradeLevel       int   `json:"upgrade_level"`
			QualifyingDuration int64 `json:"qualifying_duration"`
			DurationMS         int64 `json:"duration_ms"`
		} `json:"keystone_upgrades"`
	}
	path := fmt.Sprintf("/data/wow/mythic-keystone/dungeon/%d", id)
	if err := c.get(ctx, path, models.NamespaceDynamic, &payload); err != nil {
		return models.DungeonDetail{}, err
	}

	detail := models.DungeonDetail{
		ID:                payload.ID,
		Name:              payload.Name,
		JournalInstanceID: payload.Dungeon.ID,
	}
	for _, upgrade := range payload.KeystoneUpgrades {
		duration := upgrade.QualifyingDuration
		if duration == 0 {
			duration = upgrade.DurationMS
		}
		detail.UpgradeDurationsMS = append(detail.UpgradeDurationsMS, duration)
	}
	return detail, nil
}

// JournalInstanceTile returns the "tile" asset URL for a journal instance, or
// nil when the media has no tile.
func (c *DefaultClient) JournalInstanceTile(ctx context.Context, journalID int) (*string, error) {
	var payload struct {
		Assets []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"assets"`
	}
	path := fmt.Sprintf("/data/wow/media/journal-instance/%d", journalID)
	if err := c.get(ctx, path, models.NamespaceStatic, &payload); err != nil {
		return nil, err
	}

	for _, asset := range payload.Assets {
		if asset.Key == "tile" {
			value := asset.Value
			return &value, nil
		}
	}
	return nil, nil
}

// CurrentSeason returns the id of the active mythic keystone season.
func (c *DefaultClient) CurrentSeason(ctx context.Context) (int, error) {
	var payload struct {
		CurrentSeason struct {
			ID int `json:"id"`
		} `json:"current_season"`
	}
	if err := c.get(ctx, "/data/wow/mythic-keystone/season/index", models.NamespaceDynamic, &payload); err != nil {
		return 0, err
	}
	return payload.CurrentSeason.ID, nil
}
