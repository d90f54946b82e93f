package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validTemplate() *Template {
	return &Template{
		ID:      "ops",
		Name:    "Ops",
		Enabled: true,
		Schedule: Schedule{
			Mode:         ScheduleModeInterval,
			EveryMinutes: 15,
			Timezone:     "UTC",
		},
		BaseDashboard: map[string]any{"title": "X"},
		Fields: []FieldSpec{
			{ID: "summary", Pointer: "/summary", Type: FieldTypeString, Prompt: "p"},
		},
	}
}

func TestTemplateValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Template)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Template) {}},
		{name: "uppercase id", mutate: func(tpl *Template) { tpl.ID = "Ops" }, wantErr: true},
		{name: "leading dash id", mutate: func(tpl *Template) { tpl.ID = "-ops" }, wantErr: true},
		{name: "empty name", mutate: func(tpl *Template) { tpl.Name = "  " }, wantErr: true},
		{name: "bad schedule mode", mutate: func(tpl *Template) { tpl.Schedule.Mode = "cron" }, wantErr: true},
		{name: "zero interval", mutate: func(tpl *Template) { tpl.Schedule.EveryMinutes = 0 }, wantErr: true},
		{name: "missing timezone", mutate: func(tpl *Template) { tpl.Schedule.Timezone = "" }, wantErr: true},
		{name: "nil base", mutate: func(tpl *Template) { tpl.BaseDashboard = nil }, wantErr: true},
		{name: "bad field id", mutate: func(tpl *Template) { tpl.Fields[0].ID = "Bad Id" }, wantErr: true},
		{name: "relative pointer", mutate: func(tpl *Template) { tpl.Fields[0].Pointer = "summary" }, wantErr: true},
		{name: "bad field type", mutate: func(tpl *Template) { tpl.Fields[0].Type = "object" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.mutate(tpl)
			err := tpl.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFieldSpecIsRequired(t *testing.T) {
	f := FieldSpec{}
	require.True(t, f.IsRequired(), "required defaults to true")

	no := false
	f.Required = &no
	require.False(t, f.IsRequired())
}

func TestTemplateClone(t *testing.T) {
	tpl := validTemplate()
	clone, err := tpl.Clone()
	require.NoError(t, err)

	clone.BaseDashboard["title"] = "mutated"
	clone.Fields[0].ID = "renamed"

	require.Equal(t, "X", tpl.BaseDashboard["title"])
	require.Equal(t, "summary", tpl.Fields[0].ID)
}
