package backup

import "time"

// manifestVersion is bumped when the archive layout changes.
const manifestVersion = 1

// Manifest describes the contents of a backup archive. It is stored as
// manifest.json at the archive root.
type Manifest struct {
	Version       int            `json:"version"`
	ServerVersion string         `json:"server_version"`
	CreatedAt     time.Time      `json:"created_at"`
	Counts        map[string]int `json:"counts"`
}

// Info summarizes one archive on disk.
type Info struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Result reports what a completed backup wrote.
type Result struct {
	Path     string         `json:"path"`
	Size     int64          `json:"size"`
	Counts   map[string]int `json:"counts"`
	Duration time.Duration  `json:"-"`
}

// RestoreResult reports what a restore applied.
type RestoreResult struct {
	Counts  map[string]int `json:"counts"`
	Skipped int            `json:"skipped"`
}
