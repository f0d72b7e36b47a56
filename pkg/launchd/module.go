package launchd

import (
	"context"
	"fmt"
	"sort"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/svc_err"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Call carries the arguments of a named module function invocation.
type Call struct {
	Args         []string
	ReturnStdout bool
	RunAs        string
	Sig          string
	Domain       string
}

type function struct {
	minArgs, maxArgs int // maxArgs < 0 means unbounded
	usage            string
	run              func(ctx context.Context, m *Manager, c Call) (interface{}, error)
}

var functions = map[string]function{
	"service.show": {1, 1, "service.show <name>", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.Show(ctx, c.Args[0])
	}},
	"service.launchctl": {1, -1, "service.launchctl <sub_cmd> [args...] [--return-stdout]", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		out, err := m.Launchctl(ctx, c.Args[0], c.Args[1:], c.RunAs)
		if err != nil {
			return nil, err
		}
		if c.ReturnStdout {
			return out, nil
		}
		return true, nil
	}},
	"service.list": {0, 1, "service.list [name]", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.List(ctx, argOr(c.Args, 0), c.RunAs)
	}},
	"service.enable": {1, 1, "service.enable <name>", boolAction((*Manager).Enable)},
	"service.disable": {1, 1, "service.disable <name>", boolAction((*Manager).Disable)},
	"service.start": {1, 1, "service.start <name>", boolAction((*Manager).Start)},
	"service.stop": {1, 1, "service.stop <name>", boolAction((*Manager).Stop)},
	"service.restart": {1, 1, "service.restart <name>", boolAction((*Manager).Restart)},
	"service.status": {1, 1, "service.status <name|glob> [--sig pattern]", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		if c.Sig == "" && IsGlob(c.Args[0]) {
			return m.StatusAll(ctx, c.Args[0], c.RunAs)
		}
		return m.Status(ctx, c.Args[0], c.Sig, c.RunAs)
	}},
	"service.available": {1, 1, "service.available <name>", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.Available(ctx, c.Args[0]), nil
	}},
	"service.missing": {1, 1, "service.missing <name>", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.Missing(ctx, c.Args[0]), nil
	}},
	"service.enabled": {1, 1, "service.enabled <name> [--domain d]", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.Enabled(ctx, c.Args[0], c.RunAs, c.Domain)
	}},
	"service.disabled": {1, 1, "service.disabled <name> [--domain d]", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.Disabled(ctx, c.Args[0], c.RunAs, c.Domain)
	}},
	"service.get_all": {0, 0, "service.get_all", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.GetAll(ctx, c.RunAs)
	}},
	"service.get_enabled": {0, 0, "service.get_enabled", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.GetEnabled(ctx, c.RunAs)
	}},
	"service.loaded": {1, 1, "service.loaded <name>", func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		return m.Loaded(ctx, c.Args[0], c.RunAs)
	}},
}

func boolAction(op func(*Manager, context.Context, string, string) error) func(context.Context, *Manager, Call) (interface{}, error) {
	return func(ctx context.Context, m *Manager, c Call) (interface{}, error) {
		if err := op(m, ctx, c.Args[0], c.RunAs); err != nil {
			return nil, err
		}
		return true, nil
	}
}

func argOr(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// Functions lists the names accepted by Dispatch, sorted.
func Functions() []string {
	names := make([]string, 0, len(functions))
	for name := range functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch invokes the module function registered under name.
func (m *Manager) Dispatch(ctx context.Context, name string, c Call) (interface{}, error) {
	fn, ok := functions[name]
	if !ok {
		return nil, svc_err.NewValidationError(
			fmt.Sprintf("'%s' is not available.", name),
			"run 'macsvc call --list' to see the available functions")
	}
	if len(c.Args) < fn.minArgs || (fn.maxArgs >= 0 && len(c.Args) > fn.maxArgs) {
		return nil, svc_err.NewValidationError(
			fmt.Sprintf("%s: wrong number of arguments (%d)", name, len(c.Args)),
			"usage: "+fn.usage)
	}

	otelzap.Ctx(ctx).Debug("Dispatching module function",
		zap.String("function", name),
		zap.Strings("args", c.Args))
	return fn.run(ctx, m, c)
}
