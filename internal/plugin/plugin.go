// Package plugin holds the contract shared by the host subsystems registered at startup.
package plugin

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"zettel/internal/logger"
)

var (
	ErrDuplicatePlugin = errors.New("plugin already registered")
	ErrPluginNotFound  = errors.New("plugin not found")
)

type Plugin interface {
	Name() string
	Init(ctx context.Context) error
	Close() error
}

// Registry keeps plugins in registration order.
type Registry struct {
	mu      sync.RWMutex
	order   []Plugin
	byName  map[string]Plugin
	logger  logger.Logger
	started bool
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		byName: make(map[string]Plugin),
		logger: log,
	}
}

func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, ok := r.byName[name]; ok {
		return errors.Wrap(ErrDuplicatePlugin, name)
	}
	r.order = append(r.order, p)
	r.byName[name] = p
	return nil
}

// Init initializes every plugin in order. On failure the plugins already
// initialized are closed again.
func (r *Registry) Init(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.order {
		if err := p.Init(ctx); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = r.order[j].Close()
			}
			return errors.Wrapf(err, "init plugin %s", p.Name())
		}
		r.logger.Debug("Plugins", "plugin initialized", map[string]interface{}{
			"plugin": p.Name(),
		})
	}
	r.started = true
	return nil
}

func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byName[name]
	if !ok {
		return nil, errors.Wrap(ErrPluginNotFound, name)
	}
	return p, nil
}

// Lookup returns the plugin registered under name as a T.
func Lookup[T Plugin](r *Registry, name string) (T, error) {
	var zero T
	p, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := p.(T)
	if !ok {
		return zero, errors.Errorf("plugin %s has type %T", name, p)
	}
	return typed, nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	for i, p := range r.order {
		names[i] = p.Name()
	}
	return names
}

// Shutdown closes plugins in reverse order and satisfies shutdown.Shutdownable.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return
	}
	r.started = false

	for i := len(r.order) - 1; i >= 0; i-- {
		p := r.order[i]
		if err := p.Close(); err != nil {
			r.logger.Error("Plugins", err, map[string]interface{}{"plugin": p.Name()})
		}
	}
}
