package models

import (
	"strings"
)

// Character identifies one roster entry: a game character owned by a player.
type Character struct {
	Player string `json:"player" yaml:"player"`
	Name   string `json:"name" yaml:"name"`
	Realm  string `json:"realm" yaml:"realm"`
	Region string `json:"region" yaml:"region"`
}

func (c Character) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Region)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Realm)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Name))
}

// RealmSlug converts a realm display name into the form both APIs expect in URLs.
func (c Character) RealmSlug() string {
	slug := strings.ToLower(strings.TrimSpace(c.Realm))
	slug = strings.ReplaceAll(slug, "'", "")
	slug = strings.ReplaceAll(slug, " ", "-")
	return slug
}

func (c Character) String() string {
	return c.Player + ":" + c.Realm + "/" + c.Name
}

// Dungeon is one entry of the season's mythic keystone dungeon index.
type Dungeon struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DungeonDetail is the extended metadata used by dungeons.json.
type DungeonDetail struct {
	ID                 int
	Name               string
	JournalInstanceID  int
	UpgradeDurationsMS []int64
	Tile               *string
}

// Run is a single best or alternate keystone run for one dungeon.
type Run struct {
	Dungeon     string
	Level       int
	ClearTimeMS int64
	AffixName   string
	Score       float64
	// Timed is nil when the source does not report in-time completion.
	Timed *bool
}

// WeeklyRun is a run completed during the current reset week.
type WeeklyRun struct {
	Dungeon     string
	Level       int
	CompletedAt string
}

// SeasonScore is one entry of a character's mythic plus score history.
type SeasonScore struct {
	Season string
	All    float64
}

// Rating holds per-affix scores and the weighted composite.
type Rating struct {
	Fortified  float64 `json:"fortified"`
	Tyrannical float64 `json:"tyrannical"`
	Total      int     `json:"total"`
}

// DungeonProgress is the normalized per-dungeon record written to every view.
type DungeonProgress struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	Duration int64  `json:"duration"`
	Rating   Rating `json:"rating"`
}
