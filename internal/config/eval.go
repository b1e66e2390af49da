package config

import (
	"strconv"
	"time"
)

// EvalConfig carries the settings for a single preflight evaluation run.
// Construct with NewEvalConfig and the With* functional options.
type EvalConfig struct {
	model       string
	command     []string
	tasks       []string
	epochs      int
	sampleLimit int
	logDir      string
	workingDir  string
	timeout     time.Duration
	env         []string
}

// EvalOption mutates an EvalConfig during construction.
type EvalOption func(*EvalConfig)

// NewEvalConfig returns an EvalConfig for model with defaults applied,
// then each option in order (later options win). A nil option panics.
func NewEvalConfig(model string, opts ...EvalOption) *EvalConfig {
	cfg := &EvalConfig{
		model:       model,
		command:     append([]string(nil), DefaultEvalCommand...),
		tasks:       append([]string(nil), DefaultEvalTasks...),
		epochs:      DefaultEpochs,
		sampleLimit: DefaultSampleLimit,
		logDir:      DefaultFindKDir,
		timeout:     DefaultEvalTimeout * time.Second,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Model is the model identifier passed to the harness.
func (c *EvalConfig) Model() string { return c.model }

// Command is the harness launch command.
func (c *EvalConfig) Command() []string { return c.command }

// Tasks are the task script paths, relative to WorkingDir.
func (c *EvalConfig) Tasks() []string { return c.tasks }

// Epochs is the repeat count per task.
func (c *EvalConfig) Epochs() int { return c.epochs }

// SampleLimit caps the samples evaluated per task.
func (c *EvalConfig) SampleLimit() int { return c.sampleLimit }

// LogDir is where the harness writes trajectory logs.
func (c *EvalConfig) LogDir() string { return c.logDir }

// TrajectoryDir is the directory consistency records are read back from.
// It is the same directory the harness logs to.
func (c *EvalConfig) TrajectoryDir() string { return c.logDir }

// WorkingDir is the directory the harness is launched from.
func (c *EvalConfig) WorkingDir() string { return c.workingDir }

// Timeout bounds the harness run.
func (c *EvalConfig) Timeout() time.Duration { return c.timeout }

// Env holds extra environment entries for the harness (API keys).
func (c *EvalConfig) Env() []string { return c.env }

// Argv assembles the full harness command line.
func (c *EvalConfig) Argv() []string {
	argv := make([]string, 0, len(c.command)+len(c.tasks)+10)
	argv = append(argv, c.command...)
	argv = append(argv, c.tasks...)
	argv = append(argv,
		"--model", c.model,
		"--limit", strconv.Itoa(c.sampleLimit),
		"--epochs", strconv.Itoa(c.epochs),
		"--log-dir", c.logDir,
		"--log-format", "json",
	)
	return argv
}

// WithCommand overrides the harness launch command.
func WithCommand(command []string) EvalOption {
	return func(c *EvalConfig) { c.command = command }
}

// WithTasks overrides the task script paths.
func WithTasks(tasks []string) EvalOption {
	return func(c *EvalConfig) { c.tasks = tasks }
}

// WithEpochs sets the repeat count per task.
func WithEpochs(epochs int) EvalOption {
	return func(c *EvalConfig) { c.epochs = epochs }
}

// WithSampleLimit caps the samples evaluated per task.
func WithSampleLimit(limit int) EvalOption {
	return func(c *EvalConfig) { c.sampleLimit = limit }
}

// WithLogDir sets the harness log directory.
func WithLogDir(dir string) EvalOption {
	return func(c *EvalConfig) { c.logDir = dir }
}

// WithTrajectoryDir is an alias for WithLogDir; logs are written to and
// read back from the same directory.
func WithTrajectoryDir(dir string) EvalOption {
	return WithLogDir(dir)
}

// WithWorkingDir sets the directory the harness is launched from.
func WithWorkingDir(dir string) EvalOption {
	return func(c *EvalConfig) { c.workingDir = dir }
}

// WithTimeout bounds the harness run.
func WithTimeout(timeout time.Duration) EvalOption {
	return func(c *EvalConfig) { c.timeout = timeout }
}

// WithEnv sets extra environment entries for the harness.
func WithEnv(env []string) EvalOption {
	return func(c *EvalConfig) { c.env = env }
}
