package launchd

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/CodeMonkeyCybersecurity/macsvc/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	version "github.com/hashicorp/go-version"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// SystemDomain is the launchd domain for daemons.
const SystemDomain = "system"

// Options configures a Manager. Zero values select the defaults.
type Options struct {
	SearchPaths   []string
	LaunchctlPath string
	ConsoleDevice string
	Timeout       time.Duration
	// Runner executes launchctl, sw_vers and pgrep. Nil runs the real
	// binaries.
	Runner execute.Runner
}

// Manager implements the service operations on top of launchctl and the
// descriptor catalog.
type Manager struct {
	catalog       *Catalog
	ctl           *Launchctl
	runner        execute.Runner
	consoleDevice string

	consoleUser func(device string) (*ConsoleUser, error)
	pathExists  func(string) bool

	versionOnce sync.Once
	osVersion   *version.Version
}

// NewManager builds a Manager from opts.
func NewManager(opts Options) *Manager {
	runner := opts.Runner
	if runner == nil {
		runner = execute.DefaultRunner
	}
	device := opts.ConsoleDevice
	if device == "" {
		device = "/dev/console"
	}
	return &Manager{
		catalog: NewCatalog(opts.SearchPaths),
		ctl: &Launchctl{
			Path:    opts.LaunchctlPath,
			Runner:  opts.Runner,
			Timeout: opts.Timeout,
		},
		runner:        runner,
		consoleDevice: device,
		consoleUser:   LookupConsoleUser,
		pathExists:    fileExists,
	}
}

// Catalog exposes the descriptor catalog backing the manager.
func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

// Show returns the descriptor registered under name.
func (m *Manager) Show(ctx context.Context, name string) (*Service, error) {
	return m.catalog.Lookup(ctx, name)
}

// Launchctl runs an arbitrary launchctl sub-command and returns its stdout.
func (m *Manager) Launchctl(ctx context.Context, sub string, args []string, runAs string) (string, error) {
	return m.ctl.Run(ctx, sub, args, CallOptions{RunAs: runAs})
}

// List returns `launchctl list` output. With a name it returns the job
// dictionary for that service; agents are queried as the console user.
func (m *Manager) List(ctx context.Context, name, runAs string) (string, error) {
	if name == "" {
		return m.ctl.Run(ctx, "list", nil, CallOptions{RunAs: runAs})
	}

	svc, err := m.catalog.Lookup(ctx, name)
	if err != nil {
		return "", err
	}
	if runAs, err = m.agentRunAs(svc, runAs); err != nil {
		return "", err
	}
	return m.ctl.Run(ctx, "list", []string{svc.Label()}, CallOptions{RunAs: runAs})
}

// Enable marks the service enabled in its domain.
func (m *Manager) Enable(ctx context.Context, name, runAs string) error {
	return m.toggle(ctx, "enable", name, runAs)
}

// Disable marks the service disabled in its domain.
func (m *Manager) Disable(ctx context.Context, name, runAs string) error {
	return m.toggle(ctx, "disable", name, runAs)
}

func (m *Manager) toggle(ctx context.Context, sub, name, runAs string) error {
	logger := otelzap.Ctx(ctx)

	svc, err := m.catalog.Lookup(ctx, name)
	if err != nil {
		return err
	}
	domain, err := m.domainTarget(svc)
	if err != nil {
		return err
	}
	target := domain + "/" + svc.Label()

	logger.Info("Changing service enablement",
		zap.String("action", sub),
		zap.String("target", target))
	_, err = m.ctl.Run(ctx, sub, []string{target}, CallOptions{RunAs: runAs})
	return err
}

// Start loads the service into its domain.
func (m *Manager) Start(ctx context.Context, name, runAs string) error {
	return m.loadUnload(ctx, "bootstrap", "load", name, runAs)
}

// Stop removes the service from its domain.
func (m *Manager) Stop(ctx context.Context, name, runAs string) error {
	return m.loadUnload(ctx, "bootout", "unload", name, runAs)
}

func (m *Manager) loadUnload(ctx context.Context, sub, legacy, name, runAs string) error {
	logger := otelzap.Ctx(ctx)

	svc, err := m.catalog.Lookup(ctx, name)
	if err != nil {
		return err
	}

	if usesLegacyLoad(m.productVersion(ctx)) {
		logger.Info("Using legacy launchctl interface",
			zap.String("action", legacy),
			zap.String("path", svc.FilePath))
		_, err = m.ctl.Run(ctx, legacy, []string{"-w", svc.FilePath}, CallOptions{RunAs: runAs})
		return err
	}

	domain, err := m.domainTarget(svc)
	if err != nil {
		return err
	}
	logger.Info("Changing service state",
		zap.String("action", sub),
		zap.String("domain", domain),
		zap.String("path", svc.FilePath))
	_, err = m.ctl.Run(ctx, sub, []string{domain, svc.FilePath}, CallOptions{RunAs: runAs})
	return err
}

// Restart stops the service when it is loaded and starts it again.
func (m *Manager) Restart(ctx context.Context, name, runAs string) error {
	if _, err := m.catalog.Lookup(ctx, name); err != nil {
		return err
	}
	loaded, err := m.Loaded(ctx, name, runAs)
	if err != nil {
		return err
	}
	if loaded {
		if err := m.Stop(ctx, name, runAs); err != nil {
			return err
		}
	}
	return m.Start(ctx, name, runAs)
}

// Status returns the newline separated PIDs of the service. A job that is
// enabled but idle reports "loaded"; an unknown service reports "". With
// sig, the PIDs of processes whose command line matches sig are returned
// instead.
func (m *Manager) Status(ctx context.Context, name, sig, runAs string) (string, error) {
	if sig != "" {
		return m.pgrep(ctx, sig)
	}

	svc, err := m.catalog.Lookup(ctx, name)
	if err != nil {
		if cerr.Is(err, ErrServiceNotFound) {
			return "", nil
		}
		return "", err
	}
	if runAs, err = m.agentRunAs(svc, runAs); err != nil {
		return "", err
	}

	out, err := m.ctl.Run(ctx, "list", nil, CallOptions{RunAs: runAs})
	if err != nil {
		return "", err
	}

	var pids []string
	for _, e := range parseList(out) {
		if strings.EqualFold(e.Label, svc.Label()) && e.Running() {
			pids = append(pids, strconv.Itoa(e.PID))
		}
	}
	if len(pids) > 0 {
		return strings.Join(pids, "\n"), nil
	}

	if !alwaysRunning(svc.Descriptor.KeepAlive, m.pathExists) {
		enabled, err := m.Enabled(ctx, svc.Label(), runAs, "")
		if err != nil {
			return "", err
		}
		if enabled {
			return "loaded", nil
		}
	}
	return "", nil
}

// StatusAll evaluates Status for every known service matching the glob.
func (m *Manager) StatusAll(ctx context.Context, pattern, runAs string) (map[string]string, error) {
	all, err := m.GetAll(ctx, runAs)
	if err != nil {
		return nil, err
	}
	results := map[string]string{}
	for _, name := range all {
		ok, err := filepath.Match(pattern, name)
		if err != nil {
			return nil, cerr.Wrapf(err, "invalid pattern %q", pattern)
		}
		if !ok {
			continue
		}
		st, err := m.Status(ctx, name, "", runAs)
		if err != nil {
			return nil, err
		}
		results[name] = st
	}
	return results, nil
}

// IsGlob reports whether name should be treated as a status pattern.
func IsGlob(name string) bool {
	return strings.ContainsAny(name, "*?[")
}

// Available reports whether a descriptor exists for name.
func (m *Manager) Available(ctx context.Context, name string) bool {
	_, err := m.catalog.Lookup(ctx, name)
	return err == nil
}

// Missing is the inverse of Available.
func (m *Manager) Missing(ctx context.Context, name string) bool {
	return !m.Available(ctx, name)
}

// Enabled reports whether launchd does not mark the service disabled.
func (m *Manager) Enabled(ctx context.Context, name, runAs, domain string) (bool, error) {
	disabled, err := m.Disabled(ctx, name, runAs, domain)
	if err != nil {
		return false, err
	}
	return !disabled, nil
}

// Disabled reports whether `launchctl print-disabled` lists the service as
// disabled. An empty domain selects the service's own domain, or system for
// unknown names.
func (m *Manager) Disabled(ctx context.Context, name, runAs, domain string) (bool, error) {
	label := name
	if svc, err := m.catalog.Lookup(ctx, name); err == nil {
		label = svc.Label()
		if domain == "" {
			if domain, err = m.domainTarget(svc); err != nil {
				return false, err
			}
		}
	}
	if domain == "" {
		domain = SystemDomain
	}

	out, err := m.ctl.Run(ctx, "print-disabled", []string{domain}, CallOptions{RunAs: runAs})
	if err != nil {
		return false, err
	}
	return parseDisabled(out)[label], nil
}

// GetEnabled returns the sorted labels of every loaded job.
func (m *Manager) GetEnabled(ctx context.Context, runAs string) ([]string, error) {
	out, err := m.ctl.Run(ctx, "list", nil, CallOptions{RunAs: runAs})
	if err != nil {
		return nil, err
	}
	return uniqueLabels(parseList(out)), nil
}

// GetAll returns the sorted union of loaded jobs and catalog entries.
func (m *Manager) GetAll(ctx context.Context, runAs string) ([]string, error) {
	enabled, err := m.GetEnabled(ctx, runAs)
	if err != nil {
		return nil, err
	}
	entries := make([]ListEntry, 0, len(enabled))
	for _, label := range enabled {
		entries = append(entries, ListEntry{Label: label})
	}
	for _, key := range m.catalog.Labels(ctx) {
		entries = append(entries, ListEntry{Label: key})
	}
	return uniqueLabels(entries), nil
}

// Loaded reports whether launchd knows the job. Unknown services and
// launchctl failures report false.
func (m *Manager) Loaded(ctx context.Context, name, runAs string) (bool, error) {
	_, err := m.List(ctx, name, runAs)
	if err == nil {
		return true, nil
	}
	var lerr *LaunchctlError
	if cerr.Is(err, ErrServiceNotFound) || cerr.As(err, &lerr) {
		return false, nil
	}
	return false, err
}

// domainTarget returns system for daemons and gui/<uid> of the console user
// for agents.
func (m *Manager) domainTarget(svc *Service) (string, error) {
	if !IsLaunchAgent(svc.FilePath) {
		return SystemDomain, nil
	}
	cu, err := m.consoleUser(m.consoleDevice)
	if err != nil {
		return "", cerr.Wrap(err, "resolving console user for launch agent")
	}
	return "gui/" + cu.UID, nil
}

// agentRunAs fills in the console user for third-party agents when the
// caller did not choose a user.
func (m *Manager) agentRunAs(svc *Service, runAs string) (string, error) {
	if runAs != "" || !isThirdPartyAgent(svc.FilePath) {
		return runAs, nil
	}
	cu, err := m.consoleUser(m.consoleDevice)
	if err != nil {
		return "", cerr.Wrap(err, "resolving console user for launch agent")
	}
	return cu.Name, nil
}

func (m *Manager) productVersion(ctx context.Context) *version.Version {
	m.versionOnce.Do(func() {
		v, err := productVersion(ctx, m.runner)
		if err != nil {
			otelzap.Ctx(ctx).Debug("Could not determine macOS version, assuming bootstrap support",
				zap.Error(err))
			return
		}
		m.osVersion = v
	})
	return m.osVersion
}

func (m *Manager) pgrep(ctx context.Context, sig string) (string, error) {
	res, err := m.runner.Run(ctx, execute.Options{
		Command: "pgrep",
		Args:    []string{"-f", sig},
		Timeout: m.ctl.Timeout,
	})
	if err != nil {
		return "", cerr.Wrap(err, "pgrep")
	}
	// pgrep exits 1 when nothing matches.
	if res.ExitCode == 1 {
		return "", nil
	}
	if res.ExitCode != 0 {
		return "", cerr.Newf("pgrep exited with status %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return strings.TrimSpace(res.Stdout), nil
}
