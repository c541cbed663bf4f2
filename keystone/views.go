package keystone

import (
	"fmt"
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tnicklin/keystonescan/models"
)

// PlayerEntry is one element of players.json and characters.json.
type PlayerEntry struct {
	Name     string                   `json:"name"`
	Dungeons []models.DungeonProgress `json:"dungeons"`
}

// WeeklyEntry is one element of weekly.json. Dungeons holds key levels; the
// field name is kept for compatibility with the page that reads the file.
type WeeklyEntry struct {
	Name     string `json:"name"`
	Dungeons []int  `json:"dungeons"`
}

// DungeonEntry is one element of dungeons.json.
type DungeonEntry struct {
	Name    string   `json:"name"`
	ID      int      `json:"id"`
	Upgrade []string `json:"upgrade"`
	Tile    *string  `json:"tile"`
}

// PlayerView folds every character into its player. For each catalog dungeon
// the entry with the highest level wins; on ties the first character seen
// keeps it. Players appear in order of their first character.
func PlayerView(profiles []*Profile, catalog []models.Dungeon) []PlayerEntry {
	var out []PlayerEntry
	index := make(map[string]int)

	for _, profile := range profiles {
		pos, ok := index[profile.Character.Player]
		if !ok {
			pos = len(out)
			index[profile.Character.Player] = pos
			out = append(out, PlayerEntry{
				Name:     profile.Character.Player,
				Dungeons: Template(catalog),
			})
		}

		dungeons := out[pos].Dungeons
		for i := range dungeons {
			progress, ok := profile.Keystone[dungeons[i].Name]
			if !ok {
				continue
			}
			if progress.Level > dungeons[i].Level {
				dungeons[i] = progress
			}
		}
	}
	return out
}

// CharacterView emits one entry per character with only its own progress.
func CharacterView(profiles []*Profile, catalog []models.Dungeon) []PlayerEntry {
	out := make([]PlayerEntry, 0, len(profiles))
	for _, profile := range profiles {
		dungeons := Template(catalog)
		for i := range dungeons {
			if progress, ok := profile.Keystone[dungeons[i].Name]; ok {
				dungeons[i] = progress
			}
		}
		out = append(out, PlayerEntry{
			Name:     Capitalize(profile.Character.Name),
			Dungeons: dungeons,
		})
	}
	return out
}

// WeeklyView emits each character's ranked weekly key levels.
func WeeklyView(profiles []*Profile) []WeeklyEntry {
	out := make([]WeeklyEntry, 0, len(profiles))
	for _, profile := range profiles {
		keys := make([]int, len(profile.WeeklyCompletedKeys))
		copy(keys, profile.WeeklyCompletedKeys)
		out = append(out, WeeklyEntry{
			Name:     Capitalize(profile.Character.Name),
			Dungeons: keys,
		})
	}
	return out
}

// DungeonView emits catalog dungeons with upgrade thresholds (longest first)
// and tile art. Dungeons without fetched details get an empty upgrade list.
func DungeonView(catalog []models.Dungeon, details map[int]models.DungeonDetail) []DungeonEntry {
	out := make([]DungeonEntry, 0, len(catalog))
	for _, dungeon := range catalog {
		entry := DungeonEntry{
			Name:    dungeon.Name,
			ID:      dungeon.ID,
			Upgrade: []string{},
		}
		if detail, ok := details[dungeon.ID]; ok {
			durations := make([]int64, len(detail.UpgradeDurationsMS))
			copy(durations, detail.UpgradeDurationsMS)
			sort.Slice(durations, func(i, j int) bool { return durations[i] > durations[j] })
			for _, ms := range durations {
				entry.Upgrade = append(entry.Upgrade, FormatDuration(ms))
			}
			entry.Tile = detail.Tile
		}
		out = append(out, entry)
	}
	return out
}

// FormatDuration renders milliseconds as H:MM:SS, truncating fractions.
func FormatDuration(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d:%02d", total/3600, (total/60)%60, total%60)
}

// Capitalize upper-cases the first letter of name and lower-cases the rest.
func Capitalize(name string) string {
	return cases.Title(language.Und).String(name)
}
