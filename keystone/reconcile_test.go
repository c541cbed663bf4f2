package keystone

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/tnicklin/keystonescan/models"
)

func testCharacter(player, name string) models.Character {
	return models.Character{Player: player, Name: name, Realm: "illidan", Region: "us"}
}

func boolPtr(v bool) *bool { return &v }

func TestCompositeTotal(t *testing.T) {
	tests := []struct {
		name       string
		fortified  float64
		tyrannical float64
		want       int
	}{
		{name: "fortified higher", fortified: 100, tyrannical: 50, want: 175},
		{name: "tyrannical higher", fortified: 50, tyrannical: 100, want: 175},
		{name: "only one affix", fortified: 0, tyrannical: 120.4, want: 181},
		{name: "both zero", want: 0},
		{name: "half rounds to even", fortified: 1.5, tyrannical: 0.5, want: 2},
		{name: "fractional scores", fortified: 143.7, tyrannical: 139.2, want: 285},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompositeTotal(tt.fortified, tt.tyrannical); got != tt.want {
				t.Errorf("CompositeTotal(%v, %v) = %d, want %d", tt.fortified, tt.tyrannical, got, tt.want)
			}
		})
	}
}

func TestReconcileKeepsBestLevel(t *testing.T) {
	best := []models.Run{
		{Dungeon: "Dungeon A", Level: 10, ClearTimeMS: 1500000, AffixName: "Fortified", Score: 100},
	}
	alternate := []models.Run{
		{Dungeon: "Dungeon A", Level: 14, ClearTimeMS: 1700000, AffixName: "Tyrannical", Score: 50},
	}

	got, err := Reconcile(best, alternate)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}

	want := map[string]models.DungeonProgress{
		"Dungeon A": {
			Name:     "Dungeon A",
			Level:    10,
			Duration: 1500000,
			Rating:   models.Rating{Fortified: 100, Tyrannical: 50, Total: 175},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Reconcile() mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcileBestOnly(t *testing.T) {
	best := []models.Run{
		{Dungeon: "Dungeon A", Level: 12, ClearTimeMS: 1, AffixName: "tyrannical", Score: 80},
		{Dungeon: "Dungeon B", Level: 9, ClearTimeMS: 2, AffixName: "FORTIFIED", Score: 40},
	}
	got, err := Reconcile(best, nil)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got["Dungeon A"].Rating != (models.Rating{Tyrannical: 80, Total: 120}) {
		t.Errorf("Dungeon A rating = %+v", got["Dungeon A"].Rating)
	}
	if got["Dungeon B"].Rating != (models.Rating{Fortified: 40, Total: 60}) {
		t.Errorf("Dungeon B rating = %+v", got["Dungeon B"].Rating)
	}
}

func TestReconcileErrors(t *testing.T) {
	tests := []struct {
		name        string
		best        []models.Run
		alternate   []models.Run
		wantUnknown bool
	}{
		{
			name: "alternate without best",
			best: []models.Run{{Dungeon: "A", Level: 10, AffixName: "Fortified", Score: 10}},
			alternate: []models.Run{
				{Dungeon: "B", Level: 8, AffixName: "Tyrannical", Score: 5},
			},
		},
		{
			name:        "unknown best affix",
			best:        []models.Run{{Dungeon: "A", Level: 10, AffixName: "Xal'atath's Bargain: Ascendant", Score: 10}},
			wantUnknown: true,
		},
		{
			name: "unknown alternate affix",
			best: []models.Run{{Dungeon: "A", Level: 10, AffixName: "Fortified", Score: 10}},
			alternate: []models.Run{
				{Dungeon: "A", Level: 8, AffixName: "Bolstering", Score: 5},
			},
			wantUnknown: true,
		},
		{
			name: "alternate repeats best affix",
			best: []models.Run{{Dungeon: "A", Level: 10, AffixName: "Fortified", Score: 10}},
			alternate: []models.Run{
				{Dungeon: "A", Level: 8, AffixName: "fortified", Score: 5},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Reconcile(tt.best, tt.alternate)
			if !errors.Is(err, ErrInconsistent) {
				t.Fatalf("expected ErrInconsistent, got %v", err)
			}
			if got := errors.Is(err, ErrUnknownAffix); got != tt.wantUnknown {
				t.Fatalf("errors.Is(err, ErrUnknownAffix) = %v, want %v (err: %v)", got, tt.wantUnknown, err)
			}
			if Classify(err) != OutcomeFatal {
				t.Fatalf("inconsistency must be fatal")
			}
		})
	}
}

func TestReconcileSkipsUntimedRuns(t *testing.T) {
	best := []models.Run{
		{Dungeon: "A", Level: 15, ClearTimeMS: 9, AffixName: "Fortified", Score: 90, Timed: boolPtr(false)},
		{Dungeon: "B", Level: 11, ClearTimeMS: 7, AffixName: "Fortified", Score: 70, Timed: boolPtr(true)},
	}
	alternate := []models.Run{
		{Dungeon: "A", Level: 13, ClearTimeMS: 8, AffixName: "Tyrannical", Score: 85, Timed: boolPtr(true)},
	}

	got, err := Reconcile(best, alternate)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	a := got["A"]
	if a.Level != 13 || a.Duration != 8 || a.Rating.Fortified != 0 || a.Rating.Tyrannical != 85 {
		t.Fatalf("expected timed alternate to stand in for untimed best, got %+v", a)
	}
	if got["B"].Level != 11 {
		t.Fatalf("expected timed run kept, got %+v", got["B"])
	}
}

func TestPatchAlternateReturnsCopy(t *testing.T) {
	entry, err := FromBestRun(models.Run{Dungeon: "A", Level: 10, ClearTimeMS: 5, AffixName: "Fortified", Score: 100})
	if err != nil {
		t.Fatalf("FromBestRun() error = %v", err)
	}
	patched, err := entry.PatchAlternate(models.Run{Dungeon: "A", Level: 20, ClearTimeMS: 1, AffixName: "Tyrannical", Score: 60})
	if err != nil {
		t.Fatalf("PatchAlternate() error = %v", err)
	}
	if entry.Progress.Rating.Tyrannical != 0 {
		t.Fatalf("original entry mutated: %+v", entry)
	}
	if patched.Progress.Level != 10 || patched.Progress.Duration != 5 || patched.Progress.Rating.Tyrannical != 60 {
		t.Fatalf("unexpected patched entry: %+v", patched)
	}
}

func TestProfileReconcileRuns(t *testing.T) {
	p := NewProfile(testCharacter("Bob", "Arthas"))
	best := []models.Run{{Dungeon: "A", Level: 10, AffixName: "Fortified", Score: 100}}
	seasons := []models.SeasonScore{{Season: "current", All: 2450.5}, {Season: "previous", All: 3000}}

	if err := p.ReconcileRuns(best, nil, seasons); err != nil {
		t.Fatalf("ReconcileRuns() error = %v", err)
	}
	if p.KeystoneScore != 2450.5 {
		t.Errorf("KeystoneScore = %v, want 2450.5", p.KeystoneScore)
	}

	if err := p.ReconcileRuns(nil, nil, nil); err != nil {
		t.Fatalf("ReconcileRuns() error = %v", err)
	}
	if len(p.Keystone) != 0 {
		t.Errorf("second call must fully replace keystone data, got %v", p.Keystone)
	}
	if p.KeystoneScore != 2450.5 {
		t.Errorf("missing season payload must leave score alone, got %v", p.KeystoneScore)
	}

	before := p.Keystone
	bad := []models.Run{{Dungeon: "A", Level: 10, AffixName: "Bursting", Score: 1}}
	if err := p.ReconcileRuns(bad, nil, nil); err == nil {
		t.Fatal("expected error")
	}
	if !cmp.Equal(before, p.Keystone) {
		t.Errorf("failed reconcile must leave profile unchanged")
	}
}

func TestSplitBestAlternate(t *testing.T) {
	runs := []models.Run{
		{Dungeon: "A", Level: 10, AffixName: "Tyrannical", Score: 90, Timed: boolPtr(true)},
		{Dungeon: "A", Level: 12, AffixName: "Fortified", Score: 110, Timed: boolPtr(true)},
		{Dungeon: "B", Level: 15, AffixName: "Fortified", Score: 150, Timed: boolPtr(false)},
		{Dungeon: "B", Level: 9, AffixName: "Tyrannical", Score: 60, Timed: boolPtr(true)},
	}

	best, alternate := SplitBestAlternate(runs)
	wantBest := []models.Run{runs[1], runs[3]}
	wantAlternate := []models.Run{runs[0]}
	if diff := cmp.Diff(wantBest, best); diff != "" {
		t.Errorf("best mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantAlternate, alternate); diff != "" {
		t.Errorf("alternate mismatch (-want +got):\n%s", diff)
	}

	got, err := Reconcile(best, alternate)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if got["A"].Level != 12 || got["A"].Rating.Total != 210 {
		t.Errorf("unexpected A: %+v", got["A"])
	}
}
