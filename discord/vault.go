package discord

import "fmt"

// Discord ANSI escape codes for code blocks
const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiGray   = "\033[90m"
)

// VaultSlots are the weekly key counts that unlock a Great Vault reward,
// expressed as indexes into a character's ranked weekly levels.
var VaultSlots = []int{0, 3, 7}

var VaultRewards = VaultRewardTable{
	Season:      "Midnight Season 1",
	MaxKeyLevel: 18,

	Thresholds: []VaultThreshold{
		{18, 282, "Myth 4/6", "M4", true},
		{15, 279, "Myth 3/6", "M3", true},
		{12, 276, "Myth 2/6", "M2", true},
		{10, 272, "Myth 1/6", "M1", true},
		{7, 269, "Hero 4/6", "H4", false},
		{6, 266, "Hero 3/6", "H3", false},
		{4, 263, "Hero 2/6", "H2", false},
		{2, 259, "Hero 1/6", "H1", false},
	},
	DefaultItemLevel: 259,
	DefaultShortCode: "H1",
	DefaultTrack:     "Hero 1/6",
}

// VaultRewardTable maps a completed key level to its vault reward for a season.
type VaultRewardTable struct {
	Season           string
	MaxKeyLevel      int
	Thresholds       []VaultThreshold
	DefaultItemLevel int
	DefaultShortCode string
	DefaultTrack     string
}

// VaultThreshold represents a single reward tier. Thresholds are ordered
// from the highest MinKeyLevel down.
type VaultThreshold struct {
	MinKeyLevel int
	ItemLevel   int
	Track       string
	ShortCode   string
	IsMythTrack bool
}

// Threshold returns the reward tier for keyLevel.
func (v VaultRewardTable) Threshold(keyLevel int) VaultThreshold {
	for _, t := range v.Thresholds {
		if keyLevel >= t.MinKeyLevel {
			return t
		}
	}
	return VaultThreshold{
		ItemLevel: v.DefaultItemLevel,
		Track:     v.DefaultTrack,
		ShortCode: v.DefaultShortCode,
	}
}

// Slot renders the reward for the vault slot at index of a ranked weekly key
// list. A zero level means the slot is not unlocked.
func (v VaultRewardTable) Slot(weekly []int, index int, color bool) string {
	if index >= len(weekly) || weekly[index] <= 0 {
		if color {
			return ansiGray + emptySlot + ansiReset
		}
		return emptySlot
	}
	t := v.Threshold(weekly[index])
	slot := fmt.Sprintf("[%d %s]", t.ItemLevel, t.ShortCode)
	if !color {
		return slot
	}
	if t.IsMythTrack {
		return ansiGreen + slot + ansiReset
	}
	return ansiYellow + slot + ansiReset
}

const emptySlot = "[      ]"
