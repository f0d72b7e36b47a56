package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
)

// FakeRunner is a scripted execute.Runner. Results are keyed by the full
// command line ("launchctl list com.example"); unscripted commands exit 127.
type FakeRunner struct {
	mu      sync.Mutex
	results map[string][]execute.Result
	calls   []execute.Options
}

// NewFakeRunner returns an empty FakeRunner.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{results: map[string][]execute.Result{}}
}

// On queues result for commandLine. Multiple results for the same line are
// returned in order; the last one repeats.
func (f *FakeRunner) On(commandLine string, result execute.Result) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[commandLine] = append(f.results[commandLine], result)
	return f
}

// OnStdout is On with a successful result printing stdout.
func (f *FakeRunner) OnStdout(commandLine, stdout string) *FakeRunner {
	return f.On(commandLine, execute.Result{Stdout: stdout})
}

// Run implements execute.Runner.
func (f *FakeRunner) Run(_ context.Context, opts execute.Options) (*execute.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, opts)
	line := CommandLine(opts)
	queued, ok := f.results[line]
	if !ok || len(queued) == 0 {
		return &execute.Result{Stderr: "unexpected command: " + line, ExitCode: 127}, nil
	}
	res := queued[0]
	if len(queued) > 1 {
		f.results[line] = queued[1:]
	}
	return &res, nil
}

// Calls returns the command lines run so far.
func (f *FakeRunner) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		lines = append(lines, CommandLine(c))
	}
	return lines
}

// LastOptions returns the options of the most recent call.
func (f *FakeRunner) LastOptions() execute.Options {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return execute.Options{}
	}
	return f.calls[len(f.calls)-1]
}

// CommandLine joins a command and its arguments with single spaces.
func CommandLine(opts execute.Options) string {
	return strings.TrimSpace(opts.Command + " " + strings.Join(opts.Args, " "))
}
