// Package fs gives the views scoped access to the local filesystem and
// reports changes under watched directories on the event bus.
package fs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"zettel/internal/eventbus"
	"zettel/internal/logger"
)

const PluginName = "fs"

var ErrOutsideScope = errors.New("path outside allowed scope")

type Entry struct {
	Name  string
	Path  string
	IsDir bool
}

type Plugin struct {
	bus    *eventbus.Bus
	logger logger.Logger

	mu       sync.RWMutex
	scopes   []string
	watchers []*Watcher
}

func New(bus *eventbus.Bus, log logger.Logger) *Plugin {
	return &Plugin{bus: bus, logger: log}
}

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Init(context.Context) error { return nil }

func (p *Plugin) Close() error {
	p.mu.Lock()
	watchers := p.watchers
	p.watchers = nil
	p.mu.Unlock()

	var firstErr error
	for _, w := range watchers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Allow adds root to the set of accessible directories. With no scopes every
// path is accessible.
func (p *Plugin) Allow(root string) error {
	abs, err := filepath.Abs(root)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", root)
	}
	if abs, err = realPath(abs); err != nil {
		return errors.Wrapf(err, "resolve %s", root)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.scopes {
		if s == abs {
			return nil
		}
	}
	p.scopes = append(p.scopes, abs)
	return nil
}

func (p *Plugin) resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", path)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.scopes) == 0 {
		return abs, nil
	}

	target, err := realPath(abs)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", path)
	}
	for _, s := range p.scopes {
		if within(s, target) {
			return abs, nil
		}
	}
	return "", errors.Wrap(ErrOutsideScope, path)
}

// realPath resolves symlinks in abs. Trailing components that do not exist
// yet are kept as they are.
func realPath(abs string) (string, error) {
	rest := ""
	cur := abs
	for {
		resolved, err := filepath.EvalSymlinks(cur)
		if err == nil {
			return filepath.Join(resolved, rest), nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}

func within(scope, path string) bool {
	if path == scope {
		return true
	}
	prefix := scope
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}

// ReadDir lists dir sorted by name.
func (p *Plugin) ReadDir(dir string) ([]Entry, error) {
	abs, err := p.resolve(dir)
	if err != nil {
		return nil, err
	}
	items, err := os.ReadDir(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "read dir %s", dir)
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, Entry{
			Name:  item.Name(),
			Path:  filepath.Join(abs, item.Name()),
			IsDir: item.IsDir(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (p *Plugin) ReadFile(path string) ([]byte, error) {
	abs, err := p.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	return data, errors.Wrapf(err, "read file %s", path)
}

func (p *Plugin) WriteFile(path string, data []byte) error {
	abs, err := p.resolve(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.WriteFile(abs, data, 0o644), "write file %s", path)
}

func (p *Plugin) Exists(path string) (bool, error) {
	abs, err := p.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, errors.Wrapf(err, "stat %s", path)
	}
}

func (p *Plugin) Mkdir(path string) error {
	abs, err := p.resolve(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.MkdirAll(abs, 0o755), "mkdir %s", path)
}

func (p *Plugin) Remove(path string) error {
	abs, err := p.resolve(path)
	if err != nil {
		return err
	}
	return errors.Wrapf(os.RemoveAll(abs), "remove %s", path)
}

// Watch starts watching root and its subdirectories. Changes are published
// as eventbus.VaultChanged events until ctx is done or the plugin is closed.
func (p *Plugin) Watch(ctx context.Context, root string) (*Watcher, error) {
	abs, err := p.resolve(root)
	if err != nil {
		return nil, err
	}
	w, err := newWatcher(ctx, abs, p.bus, p.logger)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.watchers = append(p.watchers, w)
	p.mu.Unlock()
	return w, nil
}
