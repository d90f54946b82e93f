package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhytabest/plashboard/internal/models"
)

func TestStateStoreLoadMissing(t *testing.T) {
	s := NewStateStore(t.TempDir())

	state, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, models.StateVersion, state.Version)
	require.Empty(t, state.ActiveTemplateID)
	require.NotNil(t, state.TemplateRuns)
}

func TestStateStoreSaveLoad(t *testing.T) {
	s := NewStateStore(t.TempDir())

	state := models.NewState()
	state.ActiveTemplateID = "ops"
	state.RunStateFor("ops").LastStatus = models.RunStatusSuccess
	state.RunStateFor("ops").LastSuccessAt = "2026-08-05T10:00:00Z"

	require.NoError(t, s.Save(state))

	got, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "ops", got.ActiveTemplateID)
	require.Equal(t, models.RunStatusSuccess, got.TemplateRuns["ops"].LastStatus)
}

func TestStateStoreNormalizesPartialFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"active_template_id": "ops"}`), 0o644))

	s := NewStateStore(dir)
	state, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "ops", state.ActiveTemplateID)
	require.Equal(t, models.StateVersion, state.Version)
	require.NotNil(t, state.TemplateRuns)
}
