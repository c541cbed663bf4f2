package keystone

import "sort"

// VaultSlots is the number of weekly key levels reported per character.
const VaultSlots = 8

// RankWeeklyKeys sorts levels descending, keeps the top k and right-pads with
// zeros so the result always has exactly k entries. The input is not modified.
func RankWeeklyKeys(levels []int, k int) []int {
	if k < 0 {
		k = 0
	}
	sorted := make([]int, len(levels))
	copy(sorted, levels)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	out := make([]int, k)
	copy(out, sorted)
	return out
}
