// Package windows constructs host windows from the declared window list.
package windows

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"github.com/pkg/errors"

	"zettel/internal/config"
	"zettel/internal/eventbus"
	"zettel/internal/logger"
)

var (
	ErrWindowNotFound    = errors.New("window configuration not found")
	ErrViewNotRegistered = errors.New("view not registered")
)

// BuildError reports that a declared window could not be constructed.
type BuildError struct {
	Label string
	View  string
	Err   error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build window %q (view %q): %v", e.Label, e.View, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ViewBuilder produces the content of a window. The window is not yet shown.
type ViewBuilder func(w fyne.Window) (fyne.CanvasObject, error)

// Host creates windows; fyne.App satisfies it.
type Host interface {
	NewWindow(title string) fyne.Window
}

type Manager struct {
	host    Host
	configs []config.WindowConfig
	bus     *eventbus.Bus
	logger  logger.Logger

	mu      sync.Mutex
	views   map[string]ViewBuilder
	open    map[fyne.Window]string
	created int
}

func NewManager(host Host, configs []config.WindowConfig, bus *eventbus.Bus, log logger.Logger) *Manager {
	return &Manager{
		host:    host,
		configs: append([]config.WindowConfig(nil), configs...),
		bus:     bus,
		logger:  log,
		views:   make(map[string]ViewBuilder),
		open:    make(map[fyne.Window]string),
	}
}

func (m *Manager) RegisterView(name string, builder ViewBuilder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.views[name]; ok {
		return errors.Errorf("view %q already registered", name)
	}
	m.views[name] = builder
	return nil
}

// Config returns the descriptor at index.
func (m *Manager) Config(index int) (config.WindowConfig, error) {
	if index < 0 || index >= len(m.configs) {
		return config.WindowConfig{}, errors.Wrapf(ErrWindowNotFound, "index %d of %d", index, len(m.configs))
	}
	return m.configs[index], nil
}

func (m *Manager) IndexOf(label string) (int, error) {
	for i, c := range m.configs {
		if c.Label == label {
			return i, nil
		}
	}
	return -1, errors.Wrapf(ErrWindowNotFound, "label %q", label)
}

// Create builds and shows a new window from the descriptor at index. Every
// call creates a new window. It returns ErrWindowNotFound when no descriptor
// exists at index and *BuildError when the window cannot be constructed.
func (m *Manager) Create(index int) (fyne.Window, error) {
	cfg, err := m.Config(index)
	if err != nil {
		m.logger.Warning("Windows", "window configuration missing", map[string]interface{}{
			"index":    index,
			"declared": len(m.configs),
		})
		return nil, err
	}
	return m.build(cfg)
}

func (m *Manager) CreateByLabel(label string) (fyne.Window, error) {
	index, err := m.IndexOf(label)
	if err != nil {
		return nil, err
	}
	return m.Create(index)
}

func (m *Manager) build(cfg config.WindowConfig) (fyne.Window, error) {
	m.mu.Lock()
	builder, ok := m.views[cfg.View]
	m.mu.Unlock()
	if !ok {
		return nil, &BuildError{Label: cfg.Label, View: cfg.View, Err: ErrViewNotRegistered}
	}

	w := m.host.NewWindow(cfg.Title)
	content, err := m.runBuilder(builder, w)
	if err != nil {
		w.Close()
		m.logger.Error("Windows", err, map[string]interface{}{"label": cfg.Label})
		return nil, &BuildError{Label: cfg.Label, View: cfg.View, Err: err}
	}

	w.SetContent(content)
	applyConfig(w, cfg)
	m.track(w, cfg.Label)

	if cfg.Visible {
		w.Show()
	}

	m.logger.Info("Windows", "window created", map[string]interface{}{
		"label": cfg.Label,
		"view":  cfg.View,
		"open":  m.Open(),
	})
	return w, nil
}

func (m *Manager) runBuilder(builder ViewBuilder, w fyne.Window) (content fyne.CanvasObject, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = errors.Errorf("view panicked: %v", r)
		}
	}()

	content, err = builder(w)
	if err == nil && content == nil {
		err = errors.New("view returned no content")
	}
	return content, err
}

func applyConfig(w fyne.Window, cfg config.WindowConfig) {
	if cfg.Width > 0 && cfg.Height > 0 {
		w.Resize(fyne.NewSize(cfg.Width, cfg.Height))
	}
	w.SetFixedSize(cfg.FixedSize)
	w.SetPadded(cfg.Padded)
	if cfg.Master {
		w.SetMaster()
	}
	if cfg.Center {
		w.CenterOnScreen()
	}
}

func (m *Manager) track(w fyne.Window, label string) {
	m.mu.Lock()
	m.open[w] = label
	m.created++
	m.mu.Unlock()

	w.SetOnClosed(func() {
		m.mu.Lock()
		delete(m.open, w)
		m.mu.Unlock()
		m.publish(eventbus.WindowClosed, label, w)
	})
	m.publish(eventbus.WindowCreated, label, w)
}

func (m *Manager) publish(eventType, label string, w fyne.Window) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(eventbus.Event{
		Type: eventType,
		Data: map[string]interface{}{"label": label, "window": w},
	})
}

// Open is the number of windows created by the manager that are still open.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.open)
}

// Created is the number of windows created since startup.
func (m *Manager) Created() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.created
}

// OpenWithLabel returns the open windows created from the descriptor label.
func (m *Manager) OpenWithLabel(label string) []fyne.Window {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []fyne.Window
	for w, l := range m.open {
		if l == label {
			out = append(out, w)
		}
	}
	return out
}
