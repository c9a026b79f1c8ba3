// Package store persists small JSON documents keyed by name, one file per store.
package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"zettel/internal/logger"
)

const PluginName = "store"

var ErrInvalidName = errors.New("invalid store name")

type Options struct {
	// AutoSave writes the file after every mutation.
	AutoSave bool
}

type Plugin struct {
	dir    string
	logger logger.Logger

	mu     sync.Mutex
	stores map[string]*Store
}

func New(dir string, log logger.Logger) *Plugin {
	return &Plugin{
		dir:    dir,
		logger: log,
		stores: make(map[string]*Store),
	}
}

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Init(context.Context) error {
	if err := os.MkdirAll(p.dir, 0o755); err != nil {
		return errors.Wrapf(err, "create store dir %s", p.dir)
	}
	return nil
}

// Close saves every store with unsaved changes.
func (p *Plugin) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for name, s := range p.stores {
		if !s.Dirty() {
			continue
		}
		if err := s.Save(); err != nil {
			p.logger.Error("Store", err, map[string]interface{}{"store": name})
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (p *Plugin) Dir() string { return p.dir }

// Load returns the store backed by name inside the data directory. The same
// *Store is returned for repeated loads of one name.
func (p *Plugin) Load(name string, opts Options) (*Store, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, errors.Wrap(ErrInvalidName, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.stores[name]; ok {
		return s, nil
	}

	s := &Store{
		path:     filepath.Join(p.dir, name),
		autoSave: opts.AutoSave,
		entries:  make(map[string]json.RawMessage),
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	p.stores[name] = s

	p.logger.Debug("Store", "store loaded", map[string]interface{}{
		"store":   name,
		"entries": len(s.entries),
	})
	return s, nil
}

type Store struct {
	path     string
	autoSave bool

	mu      sync.RWMutex
	entries map[string]json.RawMessage
	dirty   bool
}

func (s *Store) Path() string { return s.path }

// Get decodes the value under key into out and reports whether the key exists.
func (s *Store) Get(key string, out interface{}) (bool, error) {
	s.mu.RLock()
	raw, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return true, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func (s *Store) Set(key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}

	s.mu.Lock()
	s.entries[key] = raw
	s.dirty = true
	s.mu.Unlock()

	if s.autoSave {
		return s.Save()
	}
	return nil
}

func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

func (s *Store) Delete(key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.entries[key]
	if ok {
		delete(s.entries, key)
		s.dirty = true
	}
	s.mu.Unlock()

	if ok && s.autoSave {
		return true, s.Save()
	}
	return ok, nil
}

func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entries returns a copy of the raw JSON values.
func (s *Store) Entries() map[string]json.RawMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]json.RawMessage, len(s.entries))
	for k, v := range s.entries {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Save writes the store atomically through a temp file in the same directory.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode store")
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "replace %s", s.path)
	}

	s.dirty = false
	return nil
}

// Reload discards unsaved changes and reads the file again. A missing file is an empty store.
func (s *Store) Reload() error {
	data, err := os.ReadFile(s.path)
	entries := make(map[string]json.RawMessage)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return errors.Wrapf(err, "read %s", s.path)
	case len(data) > 0:
		if err := json.Unmarshal(data, &entries); err != nil {
			return errors.Wrapf(err, "decode %s", s.path)
		}
		if entries == nil {
			entries = make(map[string]json.RawMessage)
		}
	}

	s.mu.Lock()
	s.entries = entries
	s.dirty = false
	s.mu.Unlock()
	return nil
}
