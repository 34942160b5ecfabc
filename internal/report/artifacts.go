package report

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"testdeck/internal/config"
	"testdeck/pkg/logging"
)

// Artifact describes one report file in the report directory.
type Artifact struct {
	Name    string    `json:"name"`
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

var artifactExtensions = map[string]bool{
	".json": true,
	".html": true,
	".xml":  true,
}

// ListArtifacts returns report artifacts in dir, newest first. A missing
// directory is an empty listing, not an error.
func ListArtifacts(dir string) ([]Artifact, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Artifact{}, nil
		}
		return nil, &config.IOError{Op: "list", Path: dir, Err: err}
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() || !artifactExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Path:    filepath.Join(dir, entry.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].ModTime.After(artifacts[j].ModTime) })
	return artifacts, nil
}

// Clean removes artifacts older than the given number of days and returns how
// many were removed. Callers are responsible for confirming with the user
// first; Clean itself never prompts.
func Clean(dir string, days int) (int, error) {
	artifacts, err := ListArtifacts(dir)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0
	for _, artifact := range artifacts {
		if artifact.ModTime.After(cutoff) {
			continue
		}
		if err := os.Remove(artifact.Path); err != nil {
			return removed, &config.IOError{Op: "delete", Path: artifact.Path, Err: err}
		}
		removed++
	}

	logging.Info("Report", "Cleaned %d artifacts older than %d days from %s", removed, days, dir)
	return removed, nil
}
