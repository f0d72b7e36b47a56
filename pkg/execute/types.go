// pkg/execute/types.go

package execute

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Options describes a single external command invocation.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // appended to the current environment

	// RunAs runs the command as another user through sudo -u.
	RunAs string

	Timeout time.Duration
	Retries int
	Delay   time.Duration
	DryRun  bool

	Logger *zap.Logger
}

// Result holds everything a finished process produced.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Runner executes commands. Tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, opts Options) (*Result, error)
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, opts Options) (*Result, error)

func (f RunnerFunc) Run(ctx context.Context, opts Options) (*Result, error) {
	return f(ctx, opts)
}

var (
	// DefaultLogger is used when Options.Logger is nil.
	DefaultLogger *zap.Logger
	// DefaultDryRun turns every invocation into a logged no-op.
	DefaultDryRun bool
)
