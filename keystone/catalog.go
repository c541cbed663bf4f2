package keystone

import (
	"sort"

	"github.com/tnicklin/keystonescan/models"
)

// DefaultExclusions lists challenge mode ids that still appear in the dungeon
// index but are outside the current rotation.
var DefaultExclusions = []int{
	197, // Eye of Azshara
	198, // Darkheart Thicket
	199, // Black Rook Hold
	200, // Halls of Valor
	206, // Neltharion's Lair
	207, // Vault of the Wardens
	208, // Maw of Souls
	209, // The Arcway
	210, // Court of Stars
	227, // Return to Karazhan: Lower
	233, // Cathedral of Eternal Night
	234, // Return to Karazhan: Upper
	239, // Seat of the Triumvirate
}

// ExclusionSet turns a list of dungeon ids into a lookup set.
func ExclusionSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// BuildCatalog filters the season dungeon index and orders it by id. The
// result is the canonical key space and ordering for every view.
func BuildCatalog(index []models.Dungeon, exclude map[int]struct{}) []models.Dungeon {
	catalog := make([]models.Dungeon, 0, len(index))
	for _, dungeon := range index {
		if _, skip := exclude[dungeon.ID]; skip {
			continue
		}
		catalog = append(catalog, dungeon)
	}
	sort.SliceStable(catalog, func(i, j int) bool {
		return catalog[i].ID < catalog[j].ID
	})
	return catalog
}

// Template returns a zeroed progress record per catalog dungeon, in catalog
// order. Each call allocates a fresh slice.
func Template(catalog []models.Dungeon) []models.DungeonProgress {
	out := make([]models.DungeonProgress, len(catalog))
	for i, dungeon := range catalog {
		out[i] = models.DungeonProgress{Name: dungeon.Name}
	}
	return out
}
