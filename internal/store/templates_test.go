package store

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhytabest/plashboard/internal/models"
)

func testTemplate(id string) *models.Template {
	return &models.Template{
		ID:      id,
		Name:    "Template " + id,
		Enabled: true,
		Schedule: models.Schedule{
			Mode:         models.ScheduleModeInterval,
			EveryMinutes: 15,
			Timezone:     "UTC",
		},
		BaseDashboard: map[string]any{"title": "X", "summary": ""},
		Fields: []models.FieldSpec{
			{ID: "summary", Pointer: "/summary", Type: models.FieldTypeString, Prompt: "Summarize."},
		},
	}
}

func TestTemplateStoreListSorted(t *testing.T) {
	s := NewTemplateStore(t.TempDir())

	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, s.Upsert(testTemplate(id)))
	}

	templates, err := s.List()
	require.NoError(t, err)
	require.Len(t, templates, 3)
	require.Equal(t, "alpha", templates[0].ID)
	require.Equal(t, "mid", templates[1].ID)
	require.Equal(t, "zeta", templates[2].ID)
}

func TestTemplateStoreListEmptyDir(t *testing.T) {
	s := NewTemplateStore(t.TempDir())
	templates, err := s.List()
	require.NoError(t, err)
	require.Empty(t, templates)
}

func TestTemplateStoreGetMissing(t *testing.T) {
	s := NewTemplateStore(t.TempDir())
	tpl, err := s.Get("nope")
	require.NoError(t, err)
	require.Nil(t, tpl)
}

func TestTemplateStoreUpsertGet(t *testing.T) {
	s := NewTemplateStore(t.TempDir())
	require.NoError(t, s.Upsert(testTemplate("ops")))

	got, err := s.Get("ops")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "Template ops", got.Name)
	require.Len(t, got.Fields, 1)
}

func TestTemplateStoreRemove(t *testing.T) {
	s := NewTemplateStore(t.TempDir())
	require.NoError(t, s.Upsert(testTemplate("ops")))
	require.NoError(t, s.Remove("ops"))

	got, err := s.Get("ops")
	require.NoError(t, err)
	require.Nil(t, got)

	// Removing a missing template succeeds.
	require.NoError(t, s.Remove("ops"))
}
