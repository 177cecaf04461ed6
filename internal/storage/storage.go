package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"coach-planner/internal/planner"
)

// versionLayout names archive files. It is fixed width, so it sorts lexically in time order.
const versionLayout = "2006-01-02T15-04-05.000000000Z"

// maxVersionSuffix bounds the attempts at a free name when two plans share a timestamp.
const maxVersionSuffix = 999

// PlanArchive keeps generated week plans as versioned JSON files, one directory per client.
type PlanArchive struct {
	basePath string
}

// NewPlanArchive creates a new PlanArchive and ensures the base directory exists.
func NewPlanArchive(basePath string) (*PlanArchive, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory %s: %w", basePath, err)
	}
	return &PlanArchive{basePath: basePath}, nil
}

// Version returns the archive version string for a generation time.
func Version(generatedAt time.Time) string {
	return generatedAt.UTC().Format(versionLayout)
}

func (a *PlanArchive) clientDir(clientID string) string {
	return filepath.Join(a.basePath, sanitize(clientID))
}

// getVersionedPath returns the full path for a given client and version.
func (a *PlanArchive) getVersionedPath(clientID, version string) string {
	return filepath.Join(a.clientDir(clientID), version+".json")
}

// Save writes the plan and returns the version it was stored under.
func (a *PlanArchive) Save(plan *planner.WeekPlan) (string, error) {
	if err := os.MkdirAll(a.clientDir(plan.ClientID), 0755); err != nil {
		return "", fmt.Errorf("failed to create client archive: %w", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal week plan: %w", err)
	}

	base := Version(plan.GeneratedAt)
	for n := 0; n <= maxVersionSuffix; n++ {
		version := base
		if n > 0 {
			version = fmt.Sprintf("%s-%03d", base, n)
		}
		err := writeNew(a.getVersionedPath(plan.ClientID, version), data)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to write week plan file: %w", err)
		}
		return version, nil
	}
	return "", fmt.Errorf("no free archive version for client %s at %s", plan.ClientID, base)
}

// writeNew creates path and fails with fs.ErrExist instead of overwriting.
func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// Load retrieves a week plan from a specific version file.
func (a *PlanArchive) Load(clientID, version string) (*planner.WeekPlan, error) {
	data, err := os.ReadFile(a.getVersionedPath(clientID, version))
	if err != nil {
		return nil, fmt.Errorf("failed to read week plan file: %w", err)
	}

	var plan planner.WeekPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to unmarshal week plan: %w", err)
	}
	return &plan, nil
}

// Exists checks if a specific version of a client's plan is archived.
func (a *PlanArchive) Exists(clientID, version string) bool {
	_, err := os.Stat(a.getVersionedPath(clientID, version))
	return err == nil
}

// Versions lists a client's archived versions, newest first.
func (a *PlanArchive) Versions(clientID string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(a.clientDir(clientID), "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to glob archive files: %w", err)
	}

	versions := make([]string, 0, len(matches))
	for _, m := range matches {
		versions = append(versions, strings.TrimSuffix(filepath.Base(m), ".json"))
	}
	slices.Sort(versions)
	slices.Reverse(versions)
	return versions, nil
}

// Prune removes all but the newest keep versions of a client's plans and returns how many went.
func (a *PlanArchive) Prune(clientID string, keep int) (int, error) {
	versions, err := a.Versions(clientID)
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(versions) <= keep {
		return 0, nil
	}

	removed := 0
	for _, v := range versions[keep:] {
		path := a.getVersionedPath(clientID, v)
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to remove stale file %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}

// sanitize maps a client ID to a single directory name. The escaping is reversible, so
// distinct IDs never share a directory.
func sanitize(id string) string {
	name := url.PathEscape(id)
	switch name {
	case "":
		// PathEscape never emits a lone "%".
		return "%"
	case ".", "..":
		return strings.ReplaceAll(name, ".", "%2E")
	}
	return name
}
