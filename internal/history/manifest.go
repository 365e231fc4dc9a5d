package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const manifestFile = "manifest.json"

// Manifest summarizes the archive directory.
type Manifest struct {
	Version     int          `json:"version"`
	GeneratedAt time.Time    `json:"generatedAt"`
	Retention   Retention    `json:"retention"`
	Matches     MatchesIndex `json:"matches"`
}

// Retention records the rolling window applied on each write.
type Retention struct {
	Days int `json:"days"`
}

// MatchesIndex lists the archived days and their match counts.
type MatchesIndex struct {
	Dates     []DateCount `json:"dates"`
	Total     int         `json:"total"`
	LastWrite time.Time   `json:"lastWrite"`
}

// DateCount is the number of matches finished on one day.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

func defaultManifest(retentionDays int) Manifest {
	return Manifest{
		Version:   1,
		Retention: Retention{Days: retentionDays},
		Matches:   MatchesIndex{Dates: []DateCount{}},
	}
}

// ReadManifest loads the manifest of an archive rooted at basePath.
func ReadManifest(basePath string) (Manifest, error) {
	f, err := os.Open(filepath.Join(basePath, manifestFile))
	if err != nil {
		return Manifest{}, err
	}
	defer f.Close()
	var m Manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}

func writeManifest(basePath string, m Manifest, now time.Time) error {
	m.GeneratedAt = now.UTC()
	return writeJSONAtomic(filepath.Join(basePath, manifestFile), m)
}

func writeJSONAtomic(target string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
