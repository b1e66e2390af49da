package execution

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecLauncher_CapturesStdout(t *testing.T) {
	l := NewExecLauncher()
	res := l.Launch(context.Background(), Request{Argv: []string{"echo", "hello"}})

	require.True(t, res.Succeeded(), "echo should succeed: %+v", res)
	assert.Contains(t, res.Stdout, "hello")
	assert.Equal(t, 0, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.NoError(t, res.LaunchErr)
}

func TestExecLauncher_NonzeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	l := NewExecLauncher()
	res := l.Launch(context.Background(), Request{
		Argv: []string{"sh", "-c", "echo boom >&2; exit 3"},
	})

	assert.False(t, res.Succeeded())
	assert.Equal(t, 3, res.ExitCode)
	assert.False(t, res.TimedOut)
	assert.NoError(t, res.LaunchErr)
	assert.Equal(t, "boom", res.LastStderrLine())
}

func TestExecLauncher_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	l := NewExecLauncher()
	res := l.Launch(context.Background(), Request{
		Argv:    []string{"sh", "-c", "sleep 5"},
		Timeout: 100 * time.Millisecond,
	})

	assert.True(t, res.TimedOut)
	assert.False(t, res.Succeeded())
	assert.NoError(t, res.LaunchErr, "a killed process still launched")
}

func TestExecLauncher_LaunchFailure(t *testing.T) {
	l := NewExecLauncher()
	res := l.Launch(context.Background(), Request{Argv: []string{"/nonexistent/evaluator"}})

	assert.Error(t, res.LaunchErr)
	assert.False(t, res.Succeeded())
	assert.Equal(t, -1, res.ExitCode)
}

func TestExecLauncher_EmptyCommand(t *testing.T) {
	l := NewExecLauncher()
	res := l.Launch(context.Background(), Request{})

	assert.Error(t, res.LaunchErr)
	assert.False(t, res.Succeeded())
}

func TestExecLauncher_AppendsEnv(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}
	l := NewExecLauncher()
	res := l.Launch(context.Background(), Request{
		Argv: []string{"sh", "-c", "echo $TELBENCH_PROBE"},
		Env:  []string{"TELBENCH_PROBE=42"},
	})

	require.True(t, res.Succeeded())
	assert.Contains(t, res.Stdout, "42")
}

func TestResult_LastStderrLine(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   string
	}{
		{"multi line", "warning: slow\nerror: no api key\n", "error: no api key"},
		{"trailing blanks", "fatal\n\n\n", "fatal"},
		{"empty", "", ""},
		{"whitespace only", "  \n\t\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Result{Stderr: tt.stderr}
			assert.Equal(t, tt.want, res.LastStderrLine())
		})
	}
}

func TestResult_CombinedOutput(t *testing.T) {
	res := Result{Stdout: "out", Stderr: "err"}
	assert.Equal(t, "out\nerr", res.CombinedOutput())

	assert.Equal(t, "err", Result{Stderr: "err"}.CombinedOutput())
	assert.Equal(t, "out", Result{Stdout: "out"}.CombinedOutput())
}

func TestMockLauncher_ReplaysAndRecords(t *testing.T) {
	m := NewMockLauncher(
		Result{Stdout: "first"},
		Result{ExitCode: 1},
	)

	r1 := m.Launch(context.Background(), Request{Argv: []string{"a"}})
	r2 := m.Launch(context.Background(), Request{Argv: []string{"b"}})
	r3 := m.Launch(context.Background(), Request{Argv: []string{"c"}})

	assert.Equal(t, "first", r1.Stdout)
	assert.Equal(t, 1, r2.ExitCode)
	assert.Equal(t, 1, r3.ExitCode, "last result repeats")
	require.Len(t, m.Requests(), 3)
	assert.Equal(t, []string{"a"}, m.Requests()[0].Argv)
}
