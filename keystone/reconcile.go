package keystone

import (
	"fmt"

	"github.com/tnicklin/keystonescan/models"
)

// RunEntry is a dungeon's progress together with the affix its level and
// duration came from.
type RunEntry struct {
	Progress models.DungeonProgress
	Affix    models.Affix
}

// FromBestRun builds the initial entry for a dungeon from its best run. The
// other affix slot starts at zero.
func FromBestRun(run models.Run) (RunEntry, error) {
	affix, err := models.ParseAffix(run.AffixName)
	if err != nil {
		return RunEntry{}, fmt.Errorf("%w: %w: best run for %q: %v", ErrInconsistent, ErrUnknownAffix, run.Dungeon, err)
	}
	progress := models.DungeonProgress{
		Name:     run.Dungeon,
		Level:    run.Level,
		Duration: run.ClearTimeMS,
		Rating:   setAffixScore(models.Rating{}, affix, run.Score),
	}
	return RunEntry{Progress: progress, Affix: affix}, nil
}

// PatchAlternate returns a copy of e with the alternate run's affix score
// filled in. Level and duration are never touched.
func (e RunEntry) PatchAlternate(run models.Run) (RunEntry, error) {
	affix, err := models.ParseAffix(run.AffixName)
	if err != nil {
		return RunEntry{}, fmt.Errorf("%w: %w: alternate run for %q: %v", ErrInconsistent, ErrUnknownAffix, run.Dungeon, err)
	}
	if affix != e.Affix.Other() {
		return RunEntry{}, fmt.Errorf("%w: alternate run for %q repeats the best run affix %s",
			ErrInconsistent, run.Dungeon, affix)
	}
	e.Progress.Rating = setAffixScore(e.Progress.Rating, affix, run.Score)
	return e, nil
}

// Reconcile merges best and alternate runs into one progress record per
// dungeon name and computes each composite total. Runs reported as not timed
// are ignored. An alternate run whose dungeon has no best run is an error.
func Reconcile(best, alternate []models.Run) (map[string]models.DungeonProgress, error) {
	entries := make(map[string]RunEntry, len(best))
	untimedBest := make(map[string]struct{})

	for _, run := range best {
		if !countsTowardProgress(run) {
			untimedBest[run.Dungeon] = struct{}{}
			continue
		}
		entry, err := FromBestRun(run)
		if err != nil {
			return nil, err
		}
		entries[run.Dungeon] = entry
	}

	for _, run := range alternate {
		if !countsTowardProgress(run) {
			continue
		}
		entry, ok := entries[run.Dungeon]
		if !ok {
			if _, dropped := untimedBest[run.Dungeon]; dropped {
				promoted, err := FromBestRun(run)
				if err != nil {
					return nil, err
				}
				entries[run.Dungeon] = promoted
				continue
			}
			return nil, fmt.Errorf("%w: alternate run for %q has no best run", ErrInconsistent, run.Dungeon)
		}
		patched, err := entry.PatchAlternate(run)
		if err != nil {
			return nil, err
		}
		entries[run.Dungeon] = patched
	}

	out := make(map[string]models.DungeonProgress, len(entries))
	for name, entry := range entries {
		progress := entry.Progress
		progress.Rating = WithTotal(progress.Rating)
		out[name] = progress
	}
	return out, nil
}

func countsTowardProgress(run models.Run) bool {
	return run.Timed == nil || *run.Timed
}

// SplitBestAlternate turns a flat list of per-affix season bests, as the
// game profile API reports them, into best and alternate lists: per dungeon
// the highest scoring run is the best and the next one the alternate.
// Untimed runs are dropped first. Output follows first appearance order.
func SplitBestAlternate(runs []models.Run) (best, alternate []models.Run) {
	var order []string
	byDungeon := make(map[string][]models.Run)
	for _, run := range runs {
		if !countsTowardProgress(run) {
			continue
		}
		if _, seen := byDungeon[run.Dungeon]; !seen {
			order = append(order, run.Dungeon)
		}
		byDungeon[run.Dungeon] = append(byDungeon[run.Dungeon], run)
	}

	for _, name := range order {
		candidates := byDungeon[name]
		top := 0
		for i := 1; i < len(candidates); i++ {
			if candidates[i].Score > candidates[top].Score {
				top = i
			}
		}
		best = append(best, candidates[top])

		second := -1
		for i, run := range candidates {
			if i == top || sameAffix(run, candidates[top]) {
				continue
			}
			if second < 0 || run.Score > candidates[second].Score {
				second = i
			}
		}
		if second >= 0 {
			alternate = append(alternate, candidates[second])
		}
	}
	return best, alternate
}

func sameAffix(a, b models.Run) bool {
	affixA, errA := models.ParseAffix(a.AffixName)
	affixB, errB := models.ParseAffix(b.AffixName)
	if errA != nil || errB != nil {
		return false
	}
	return affixA == affixB
}
