package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jhytabest/plashboard/internal/models"
)

// RunStore persists run artifacts, append-only, named by start timestamp.
type RunStore struct {
	paths Paths
}

// NewRunStore creates a run store rooted at dataDir.
func NewRunStore(dataDir string) *RunStore {
	return &RunStore{paths: Paths{DataDir: dataDir}}
}

// Write records one run artifact. Called exactly once per run.
func (s *RunStore) Write(artifact *models.RunArtifact) error {
	path := s.paths.RunFile(artifact.TemplateID, artifact.StartedAt)
	if err := WriteJSON(path, artifact); err != nil {
		return fmt.Errorf("failed to store run artifact for %s: %w", artifact.TemplateID, err)
	}
	return nil
}

// Latest returns up to n artifacts for a template, most recent first.
// Artifact file names sort chronologically, so descending name order is
// descending start time.
func (s *RunStore) Latest(templateID string, n int) ([]*models.RunArtifact, error) {
	entries, err := os.ReadDir(s.paths.RunsDir(templateID))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.RunArtifact{}, nil
		}
		return nil, fmt.Errorf("failed to list runs for %s: %w", templateID, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	if n > 0 && len(names) > n {
		names = names[:n]
	}

	artifacts := make([]*models.RunArtifact, 0, len(names))
	for _, name := range names {
		artifact := &models.RunArtifact{}
		path := filepath.Join(s.paths.RunsDir(templateID), name)
		if err := ReadJSON(path, artifact); err != nil {
			return nil, fmt.Errorf("failed to load run artifact %s: %w", name, err)
		}
		artifacts = append(artifacts, artifact)
	}
	return artifacts, nil
}
