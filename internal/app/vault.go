package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"zettel/internal/logger"
	"zettel/internal/plugin/fs"
	"zettel/internal/plugin/store"
)

const (
	DirectoriesStoreFile = "directories.json"
	CurrentVaultKey      = "currentVault"
)

var ErrNoVault = errors.New("no vault directory selected")

// Vault tracks the selected vault directory and keeps one watcher on it.
type Vault struct {
	store  *store.Store
	fs     *fs.Plugin
	ctx    context.Context
	logger logger.Logger

	mu      sync.Mutex
	watcher *fs.Watcher
}

func newVault(ctx context.Context, stores *store.Plugin, files *fs.Plugin, log logger.Logger) (*Vault, error) {
	s, err := stores.Load(DirectoriesStoreFile, store.Options{})
	if err != nil {
		return nil, err
	}
	v := &Vault{store: s, fs: files, ctx: ctx, logger: log}

	if current, err := v.Current(); err == nil {
		if err := files.Allow(current); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Current returns the selected vault, or ErrNoVault.
func (v *Vault) Current() (string, error) {
	var path string
	ok, err := v.store.Get(CurrentVaultKey, &path)
	if err != nil {
		return "", err
	}
	if !ok || path == "" {
		return "", ErrNoVault
	}
	return path, nil
}

// Set selects dir as the vault, persists it and moves the watcher when one is running.
func (v *Vault) Set(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.Wrapf(err, "resolve %s", dir)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Wrapf(err, "vault %s", dir)
	}
	if !info.IsDir() {
		return "", errors.Errorf("vault %s is not a directory", dir)
	}

	if err := v.fs.Allow(abs); err != nil {
		return "", err
	}
	if err := v.store.Set(CurrentVaultKey, abs); err != nil {
		return "", err
	}
	if err := v.store.Save(); err != nil {
		return "", errors.Wrap(err, "save vault selection")
	}

	v.logger.Info("Vault", "vault selected", map[string]interface{}{"path": abs})

	v.mu.Lock()
	watching := v.watcher != nil
	v.mu.Unlock()
	if watching {
		return abs, v.Watch()
	}
	return abs, nil
}

// Watch starts watching the current vault. It is a no-op when the current
// vault is already watched.
func (v *Vault) Watch() error {
	current, err := v.Current()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.watcher != nil {
		if v.watcher.Root() == current {
			return nil
		}
		_ = v.watcher.Close()
		v.watcher = nil
	}

	w, err := v.fs.Watch(v.ctx, current)
	if err != nil {
		return err
	}
	v.watcher = w
	return nil
}

func (v *Vault) Shutdown() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.watcher != nil {
		_ = v.watcher.Close()
		v.watcher = nil
	}
}
