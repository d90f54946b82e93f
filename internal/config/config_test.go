package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "/var/lib/openclaw/plash-data", cfg.DataDir)
	assert.Equal(t, 30, cfg.SchedulerTickSeconds)
	assert.Equal(t, 1, cfg.MaxParallelRuns)
	assert.Equal(t, 1, cfg.DefaultRetryCount)
	assert.Equal(t, 20, cfg.RetryBackoffSeconds)
	assert.Equal(t, 90, cfg.SessionTimeoutSeconds)
	assert.True(t, cfg.AutoSeedTemplate)
	assert.Equal(t, ProviderOpenclaw, cfg.FillProvider)
	assert.Equal(t, "main", cfg.OpenclawFillAgentID)
	assert.Equal(t, 40, cfg.LayoutOverflowTolerancePx)
	assert.Equal(t, 1920, cfg.DisplayProfile.WidthPx)
	assert.Equal(t, 1080, cfg.DisplayProfile.HeightPx)

	require.NoError(t, cfg.Validate())
}

func TestNormalizeRaisesMinimums(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SchedulerTickSeconds = 1
	cfg.MaxParallelRuns = 0
	cfg.RetryBackoffSeconds = 0
	cfg.SessionTimeoutSeconds = 2
	cfg.DefaultRetryCount = -3

	cfg.Normalize()

	assert.Equal(t, 5, cfg.SchedulerTickSeconds)
	assert.Equal(t, 1, cfg.MaxParallelRuns)
	assert.Equal(t, 1, cfg.RetryBackoffSeconds)
	assert.Equal(t, 10, cfg.SessionTimeoutSeconds)
	assert.Equal(t, 0, cfg.DefaultRetryCount)
}

func TestValidateProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FillProvider = "carrier-pigeon"
	require.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.FillProvider = ProviderCommand
	require.Error(t, cfg.Validate(), "command provider without fill_command must fail")

	cfg.FillCommand = "my-filler"
	require.NoError(t, cfg.Validate())
}

func TestDerivedPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/plash"

	assert.Equal(t, "/tmp/plash/dashboard.json", cfg.OutputPath())
	assert.Equal(t, "/tmp/plash/skills/plash-dashboard/scripts/dashboard_write.py", cfg.WriterScriptPath())

	cfg.DashboardOutputPath = "/srv/www/dashboard.json"
	cfg.WriterScript = "/opt/writer.py"
	assert.Equal(t, "/srv/www/dashboard.json", cfg.OutputPath())
	assert.Equal(t, "/opt/writer.py", cfg.WriterScriptPath())
}

func TestLoaderReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	content := `
data_dir: ` + dir + `
scheduler_tick_seconds: 10
max_parallel_runs: 3
fill_provider: mock
display_profile:
  width_px: 2560
  height_px: 1440
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	loader := NewLoader()
	loader.SetConfigFile(configPath)
	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 10, cfg.SchedulerTickSeconds)
	assert.Equal(t, 3, cfg.MaxParallelRuns)
	assert.Equal(t, ProviderMock, cfg.FillProvider)
	assert.Equal(t, 2560, cfg.DisplayProfile.WidthPx)
	assert.Equal(t, 1440, cfg.DisplayProfile.HeightPx)
}

func TestLoaderMissingExplicitFileFails(t *testing.T) {
	loader := NewLoader()
	loader.SetConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := loader.Load()
	require.Error(t, err)
}

func TestLoaderEnsureDirectories(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "data")
	require.NoError(t, cfg.EnsureDirectories())

	for _, sub := range []string{"templates", "runs", "rendered"} {
		info, err := os.Stat(filepath.Join(cfg.DataDir, sub))
		require.NoError(t, err)
		require.True(t, info.IsDir())
	}
}
