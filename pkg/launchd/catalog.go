package launchd

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Service is one discovered descriptor.
type Service struct {
	FileName   string                 `json:"file_name" yaml:"file_name"`
	FilePath   string                 `json:"file_path" yaml:"file_path"`
	Plist      map[string]interface{} `json:"plist" yaml:"plist"`
	Descriptor *Descriptor            `json:"-" yaml:"-"`
}

// Label returns the job label from the descriptor.
func (s *Service) Label() string {
	return s.Descriptor.Label
}

// Catalog discovers descriptors in the search directories and caches them
// keyed by lower-cased label.
type Catalog struct {
	paths []string

	mu       sync.RWMutex
	services map[string]*Service
	// refreshed is set once the cache has been rebuilt after the first
	// scan; misses on a refreshed cache do not rescan.
	refreshed bool
}

// NewCatalog creates a catalog over paths; an empty list selects
// DefaultSearchPaths.
func NewCatalog(paths []string) *Catalog {
	if len(paths) == 0 {
		paths = DefaultSearchPaths()
	}
	return &Catalog{paths: paths}
}

// Paths returns the directories the catalog scans.
func (c *Catalog) Paths() []string {
	return append([]string(nil), c.paths...)
}

// Services returns the cached catalog, scanning on first use.
func (c *Catalog) Services(ctx context.Context) map[string]*Service {
	c.mu.RLock()
	services := c.services
	c.mu.RUnlock()
	if services != nil {
		return services
	}
	return c.load(ctx, false)
}

// Refresh rescans every search directory. Unreadable files are logged and skipped.
func (c *Catalog) Refresh(ctx context.Context) map[string]*Service {
	return c.load(ctx, true)
}

func (c *Catalog) load(ctx context.Context, refresh bool) map[string]*Service {
	logger := otelzap.Ctx(ctx)

	services, err := scan(c.paths)
	if err != nil {
		logger.Warn("Some launchd descriptors could not be read",
			zap.Strings("search_paths", c.paths),
			zap.Error(err))
	}
	logger.Debug("Launchd catalog refreshed", zap.Int("services", len(services)))

	c.mu.Lock()
	c.services = services
	c.refreshed = c.refreshed || refresh
	c.mu.Unlock()
	return services
}

// Invalidate drops the cache; the next lookup rescans.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.services = nil
	c.refreshed = true
	c.mu.Unlock()
}

// Lookup resolves name against labels (case-insensitive) and then descriptor
// file names without extension. A miss on the warm first scan triggers a
// single rescan so descriptors written since are found; later misses are
// answered from the cache.
func (c *Catalog) Lookup(ctx context.Context, name string) (*Service, error) {
	c.mu.RLock()
	rescan := c.services != nil && !c.refreshed
	c.mu.RUnlock()

	if svc := find(c.Services(ctx), name); svc != nil {
		return svc, nil
	}
	if rescan {
		if svc := find(c.Refresh(ctx), name); svc != nil {
			return svc, nil
		}
	}
	return nil, newNotFound(name)
}

// Labels returns every catalog key, sorted.
func (c *Catalog) Labels(ctx context.Context) []string {
	services := c.Services(ctx)
	labels := make([]string, 0, len(services))
	for k := range services {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return labels
}

// Watch invalidates the cache whenever a search directory changes and then
// calls onChange, if set, with the changed path. It blocks until ctx is done.
func (c *Catalog) Watch(ctx context.Context, onChange func(path string)) error {
	logger := otelzap.Ctx(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	watched := 0
	for _, dir := range c.paths {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.IsDir() {
				if addErr := w.Add(path); addErr != nil {
					logger.Debug("Cannot watch directory", zap.String("path", path), zap.Error(addErr))
				} else {
					watched++
				}
			}
			return nil
		})
		if err != nil {
			logger.Debug("Cannot walk directory", zap.String("path", dir), zap.Error(err))
		}
	}
	logger.Debug("Watching launchd directories", zap.Int("directories", watched))

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("Launchd directory changed",
					zap.String("path", ev.Name),
					zap.String("op", ev.Op.String()))
				c.Invalidate()
				if ev.Op&fsnotify.Create != 0 {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						_ = w.Add(ev.Name)
					}
				}
				if onChange != nil {
					onChange(ev.Name)
				}
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Launchd watcher error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}

func find(services map[string]*Service, name string) *Service {
	if svc, ok := services[strings.ToLower(name)]; ok {
		return svc
	}

	keys := make([]string, 0, len(services))
	for k := range services {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		svc := services[k]
		base := strings.TrimSuffix(svc.FileName, filepath.Ext(svc.FileName))
		if strings.EqualFold(base, name) {
			return svc
		}
	}
	return nil
}

func scan(paths []string) (map[string]*Service, error) {
	services := map[string]*Service{}
	var result *multierror.Error

	for _, dir := range paths {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir && os.IsNotExist(err) {
					return fs.SkipDir
				}
				result = multierror.Append(result, err)
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() || !hasPlistExt(d.Name()) {
				return nil
			}

			desc, raw, err := ReadDescriptor(path)
			if err != nil {
				result = multierror.Append(result, err)
				return nil
			}
			if desc.Label == "" {
				return nil
			}

			key := strings.ToLower(desc.Label)
			if _, dup := services[key]; dup {
				return nil
			}
			services[key] = &Service{
				FileName:   d.Name(),
				FilePath:   path,
				Plist:      raw,
				Descriptor: desc,
			}
			return nil
		})
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	return services, result.ErrorOrNil()
}
