package store

import (
	"fmt"
	"os"

	"github.com/jhytabest/plashboard/internal/models"
)

// StateStore persists the single runtime state document.
type StateStore struct {
	paths Paths
}

// NewStateStore creates a state store rooted at dataDir.
func NewStateStore(dataDir string) *StateStore {
	return &StateStore{paths: Paths{DataDir: dataDir}}
}

// Load reads the state document, returning an empty state when the file
// does not exist yet. Missing keys are normalized in.
func (s *StateStore) Load() (*models.State, error) {
	state := models.NewState()
	if err := ReadJSON(s.paths.StateFile(), state); err != nil {
		if os.IsNotExist(err) {
			return models.NewState(), nil
		}
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	state.Normalize()
	return state, nil
}

// Save writes the state document atomically.
func (s *StateStore) Save(state *models.State) error {
	state.Normalize()
	if err := WriteJSON(s.paths.StateFile(), state); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
