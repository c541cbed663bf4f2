// Package output writes the static JSON artifacts produced by a scan.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	DungeonsFile   = "dungeons.json"
	PlayersFile    = "players.json"
	CharactersFile = "characters.json"
	WeeklyFile     = "weekly.json"
	ScannedFile    = "scanned.json"
)

// Scanned marks the time of the last completed scan.
type Scanned struct {
	Timestamp int64 `json:"timestamp"`
}

// Writer writes artifacts into Dir.
type Writer struct {
	Dir string
}

// WriteJSON encodes v with two-space indentation and replaces name
// atomically, so readers never see a partial file.
func (w Writer) WriteJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(w.Dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return os.Rename(tmp.Name(), filepath.Join(w.Dir, name))
}

// WriteScanned records now as the last scan time.
func (w Writer) WriteScanned(now time.Time) error {
	return w.WriteJSON(ScannedFile, Scanned{Timestamp: now.Unix()})
}
