package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader handles configuration loading with Viper.
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{v: viper.New()}
}

// SetConfigFile sets an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// Load loads configuration with precedence: defaults < config file < env.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	l.setupViper()

	if err := l.loadConfigFile(); err != nil {
		// Config file is optional, only error if explicitly specified.
		if l.configFile != "" {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	expandPaths(cfg)
	cfg.Normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (l *Loader) setupViper() {
	v := l.v

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("PLASHBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal only sees keys viper already knows, so every config key is
	// bound explicitly for env overrides to apply without a config file.
	for _, key := range []string{
		"data_dir", "dashboard_output_path", "scheduler_tick_seconds", "max_parallel_runs",
		"default_retry_count", "retry_backoff_seconds", "session_timeout_seconds",
		"auto_seed_template", "fill_provider", "fill_command", "allow_fill_command",
		"openclaw_fill_agent_id", "openclaw_bin", "python_bin", "writer_script",
		"display_profile.width_px", "display_profile.height_px", "display_profile.safe_top_px",
		"display_profile.safe_bottom_px", "display_profile.safe_side_px",
		"display_profile.layout_safety_margin_px", "layout_overflow_tolerance_px",
		"logging.level", "logging.format", "logging.file",
	} {
		_ = v.BindEnv(key)
	}
}

func (l *Loader) loadConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		return l.v.ReadInConfig()
	}

	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "plashboard"))
	}
	l.v.AddConfigPath("/etc/plashboard")

	return l.v.ReadInConfig()
}

// expandTilde expands ~ to the user's home directory.
func expandTilde(path string) string {
	if path == "" {
		return path
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

func expandPaths(cfg *Config) {
	cfg.DataDir = expandTilde(cfg.DataDir)
	cfg.DashboardOutputPath = expandTilde(cfg.DashboardOutputPath)
	cfg.WriterScript = expandTilde(cfg.WriterScript)
	cfg.Logging.File = expandTilde(cfg.Logging.File)
}
