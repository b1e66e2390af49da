// Package config provides the ProjectConfig loader for .telbench.yaml
// project files, the user-level Settings store, and the EvalConfig
// options for preflight runs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. New() references these and no
// other code should duplicate them.
const (
	DefaultLogsDir  = "logs"
	DefaultFindKDir = "logs/find_k"

	DefaultRecordsFile = "records.json"

	DefaultEpochs      = 5
	DefaultSampleLimit = 1
	DefaultEvalTimeout = 600 // seconds
	DefaultWorkers     = 2

	DefaultHubSplit = "test"

	DefaultServerPort = 3000
)

// DefaultEvalCommand launches the evaluation harness. Tasks and flags are
// appended by EvalConfig.Argv.
var DefaultEvalCommand = []string{"uv", "run", "inspect", "eval"}

// DefaultEvalTasks are the task scripts for the four benchmarks, relative
// to the runner working directory.
var DefaultEvalTasks = []string{
	"telelogs/telelogs.py",
	"telemath/telemath.py",
	"teleqna/teleqna.py",
	"three_gpp/three_gpp.py",
}

// PathsConfig holds directory and file paths for benchmark artifacts.
type PathsConfig struct {
	Logs    string `yaml:"logs,omitempty"`
	FindK   string `yaml:"find_k,omitempty"`
	Records string `yaml:"records,omitempty"`
}

// RunnerConfig holds settings for launching the evaluation harness.
type RunnerConfig struct {
	Command []string `yaml:"command,omitempty"`
	Tasks   []string `yaml:"tasks,omitempty"`
	Dir     string   `yaml:"dir,omitempty"`
	Epochs  int      `yaml:"epochs,omitempty"`
	Timeout int      `yaml:"timeout,omitempty"`
	Workers int      `yaml:"workers,omitempty"`
}

// HubConfig holds data service settings. An empty base URL means the
// public hub.
type HubConfig struct {
	BaseURL string `yaml:"base_url,omitempty"`
	Split   string `yaml:"split,omitempty"`
}

// ServerConfig holds leaderboard viewer settings.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .telbench.yaml.
type ProjectConfig struct {
	Paths  PathsConfig  `yaml:"paths,omitempty"`
	Runner RunnerConfig `yaml:"runner,omitempty"`
	Hub    HubConfig    `yaml:"hub,omitempty"`
	Server ServerConfig `yaml:"server,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Paths: PathsConfig{
			Logs:    DefaultLogsDir,
			FindK:   DefaultFindKDir,
			Records: DefaultRecordsFile,
		},
		Runner: RunnerConfig{
			Command: append([]string(nil), DefaultEvalCommand...),
			Tasks:   append([]string(nil), DefaultEvalTasks...),
			Dir:     "",
			Epochs:  DefaultEpochs,
			Timeout: DefaultEvalTimeout,
			Workers: DefaultWorkers,
		},
		Hub: HubConfig{
			BaseURL: "",
			Split:   DefaultHubSplit,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
	}
}

// Load finds .telbench.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults.
// If no config file is found, returns defaults with a nil error.
// Real I/O errors (e.g. permission denied) are returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found → return defaults
		}
		return nil, fmt.Errorf("loading .telbench.yaml: %w", err)
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .telbench.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .telbench.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors (e.g. permission denied) instead of silently swallowing
// them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".telbench.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Paths
	if src.Paths.Logs != "" {
		dst.Paths.Logs = src.Paths.Logs
	}
	if src.Paths.FindK != "" {
		dst.Paths.FindK = src.Paths.FindK
	}
	if src.Paths.Records != "" {
		dst.Paths.Records = src.Paths.Records
	}

	// Runner
	if len(src.Runner.Command) > 0 {
		dst.Runner.Command = src.Runner.Command
	}
	if len(src.Runner.Tasks) > 0 {
		dst.Runner.Tasks = src.Runner.Tasks
	}
	if src.Runner.Dir != "" {
		dst.Runner.Dir = src.Runner.Dir
	}
	if src.Runner.Epochs != 0 {
		dst.Runner.Epochs = src.Runner.Epochs
	}
	if src.Runner.Timeout != 0 {
		dst.Runner.Timeout = src.Runner.Timeout
	}
	if src.Runner.Workers != 0 {
		dst.Runner.Workers = src.Runner.Workers
	}

	// Hub
	if src.Hub.BaseURL != "" {
		dst.Hub.BaseURL = src.Hub.BaseURL
	}
	if src.Hub.Split != "" {
		dst.Hub.Split = src.Hub.Split
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
}
