// Package config handles plashboard configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhytabest/plashboard/internal/models"
)

// Fill provider names.
const (
	ProviderMock     = "mock"
	ProviderCommand  = "command"
	ProviderOpenclaw = "openclaw"
)

// Config is the root configuration structure for plashboard.
type Config struct {
	// DataDir is the root for state, templates, runs, and rendered
	// snapshots.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// DashboardOutputPath is the live artifact path. Empty means
	// <data_dir>/dashboard.json.
	DashboardOutputPath string `yaml:"dashboard_output_path" mapstructure:"dashboard_output_path"`

	// SchedulerTickSeconds is the tick period. Minimum 5.
	SchedulerTickSeconds int `yaml:"scheduler_tick_seconds" mapstructure:"scheduler_tick_seconds"`

	// MaxParallelRuns bounds concurrent template runs. Minimum 1.
	MaxParallelRuns int `yaml:"max_parallel_runs" mapstructure:"max_parallel_runs"`

	// DefaultRetryCount is the retry count for templates without an
	// override.
	DefaultRetryCount int `yaml:"default_retry_count" mapstructure:"default_retry_count"`

	// RetryBackoffSeconds is the sleep between retry attempts. Minimum 1.
	RetryBackoffSeconds int `yaml:"retry_backoff_seconds" mapstructure:"retry_backoff_seconds"`

	// SessionTimeoutSeconds bounds fill and writer subprocesses. Minimum 10.
	SessionTimeoutSeconds int `yaml:"session_timeout_seconds" mapstructure:"session_timeout_seconds"`

	// AutoSeedTemplate seeds a starter template from an existing live
	// dashboard when the template store is empty.
	AutoSeedTemplate bool `yaml:"auto_seed_template" mapstructure:"auto_seed_template"`

	// FillProvider selects the fill runner: mock, command, or openclaw.
	FillProvider string `yaml:"fill_provider" mapstructure:"fill_provider"`

	// FillCommand is the shell string for the command provider.
	FillCommand string `yaml:"fill_command" mapstructure:"fill_command"`

	// AllowFillCommand gates the command provider.
	AllowFillCommand bool `yaml:"allow_fill_command" mapstructure:"allow_fill_command"`

	// OpenclawFillAgentID is the agent name for the openclaw provider.
	OpenclawFillAgentID string `yaml:"openclaw_fill_agent_id" mapstructure:"openclaw_fill_agent_id"`

	// OpenclawBin is the agent binary invoked by the openclaw provider.
	OpenclawBin string `yaml:"openclaw_bin" mapstructure:"openclaw_bin"`

	// PythonBin runs the external writer script.
	PythonBin string `yaml:"python_bin" mapstructure:"python_bin"`

	// WriterScript is the external writer path. Empty means
	// <data_dir>/skills/plash-dashboard/scripts/dashboard_write.py.
	WriterScript string `yaml:"writer_script" mapstructure:"writer_script"`

	// DisplayProfile is the default display geometry; runtime state may
	// override it.
	DisplayProfile models.DisplayProfile `yaml:"display_profile" mapstructure:"display_profile"`

	// LayoutOverflowTolerancePx is passed to the writer.
	LayoutOverflowTolerancePx int `yaml:"layout_overflow_tolerance_px" mapstructure:"layout_overflow_tolerance_px"`

	// Logging settings.
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DataDir:               "/var/lib/openclaw/plash-data",
		SchedulerTickSeconds:  30,
		MaxParallelRuns:       1,
		DefaultRetryCount:     1,
		RetryBackoffSeconds:   20,
		SessionTimeoutSeconds: 90,
		AutoSeedTemplate:      true,
		FillProvider:          ProviderOpenclaw,
		OpenclawFillAgentID:   "main",
		OpenclawBin:           "openclaw",
		PythonBin:             "python3",
		DisplayProfile: models.DisplayProfile{
			WidthPx:              1920,
			HeightPx:             1080,
			SafeTopPx:            96,
			SafeBottomPx:         106,
			SafeSidePx:           28,
			LayoutSafetyMarginPx: 24,
		},
		LayoutOverflowTolerancePx: 40,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Normalize raises values to their documented minimums.
func (c *Config) Normalize() {
	if c.SchedulerTickSeconds < 5 {
		c.SchedulerTickSeconds = 5
	}
	if c.MaxParallelRuns < 1 {
		c.MaxParallelRuns = 1
	}
	if c.DefaultRetryCount < 0 {
		c.DefaultRetryCount = 0
	}
	if c.RetryBackoffSeconds < 1 {
		c.RetryBackoffSeconds = 1
	}
	if c.SessionTimeoutSeconds < 10 {
		c.SessionTimeoutSeconds = 10
	}
	if c.LayoutOverflowTolerancePx < 0 {
		c.LayoutOverflowTolerancePx = 0
	}
	c.DisplayProfile.Clamp()
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir is required")
	}

	switch c.FillProvider {
	case ProviderMock, ProviderCommand, ProviderOpenclaw:
	default:
		return fmt.Errorf("fill_provider must be one of %s, %s, %s", ProviderMock, ProviderCommand, ProviderOpenclaw)
	}
	if c.FillProvider == ProviderCommand && strings.TrimSpace(c.FillCommand) == "" {
		return fmt.Errorf("fill_command is required for the command provider")
	}
	if c.FillProvider == ProviderOpenclaw && strings.TrimSpace(c.OpenclawFillAgentID) == "" {
		return fmt.Errorf("openclaw_fill_agent_id is required for the openclaw provider")
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of console, json")
	}

	return nil
}

// OutputPath returns the live dashboard artifact path.
func (c *Config) OutputPath() string {
	if c.DashboardOutputPath != "" {
		return c.DashboardOutputPath
	}
	return filepath.Join(c.DataDir, "dashboard.json")
}

// WriterScriptPath returns the external writer script path.
func (c *Config) WriterScriptPath() string {
	if c.WriterScript != "" {
		return c.WriterScript
	}
	return filepath.Join(c.DataDir, "skills", "plash-dashboard", "scripts", "dashboard_write.py")
}

// EnsureDirectories creates the data directory tree.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Join(c.DataDir, "templates"),
		filepath.Join(c.DataDir, "runs"),
		filepath.Join(c.DataDir, "rendered"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
