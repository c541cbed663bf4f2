package keystone

import (
	"github.com/tnicklin/keystonescan/models"
)

// Profile is everything a scan learns about one roster character.
type Profile struct {
	Character           models.Character
	Keystone            map[string]models.DungeonProgress
	KeystoneScore       float64
	WeeklyCompletedKeys []int
}

// NewProfile returns an unpopulated profile: no keystone data, zero score and
// VaultSlots zeros for the weekly keys.
func NewProfile(character models.Character) *Profile {
	return &Profile{
		Character:           character,
		Keystone:            map[string]models.DungeonProgress{},
		WeeklyCompletedKeys: make([]int, VaultSlots),
	}
}

// ReconcileRuns replaces the profile's keystone data with the reconciliation
// of best and alternate runs, then sets the season score from the first
// season entry when one is present. On error the profile is left unchanged.
func (p *Profile) ReconcileRuns(best, alternate []models.Run, seasons []models.SeasonScore) error {
	keystone, err := Reconcile(best, alternate)
	if err != nil {
		return err
	}
	p.Keystone = keystone
	if len(seasons) > 0 {
		p.KeystoneScore = seasons[0].All
	}
	return nil
}

// RankWeeklyKeys replaces the weekly key list with the ranked levels.
func (p *Profile) RankWeeklyKeys(levels []int) {
	p.WeeklyCompletedKeys = RankWeeklyKeys(levels, VaultSlots)
}
