// Package app assembles the host: plugins, commands, declared windows and views.
package app

import (
	"path/filepath"
	"runtime"
	"time"

	"fyne.io/fyne/v2"
	"github.com/pkg/errors"

	"zettel/internal/command"
	"zettel/internal/config"
	"zettel/internal/eventbus"
	"zettel/internal/logger"
	"zettel/internal/plugin"
	"zettel/internal/plugin/dialog"
	"zettel/internal/plugin/fs"
	"zettel/internal/plugin/opener"
	"zettel/internal/plugin/store"
	"zettel/internal/profile"
	"zettel/internal/shutdown"
	"zettel/internal/tasks"
	"zettel/internal/views"
	"zettel/internal/windows"
)

const (
	StartupWindowIndex = 0
	MainWindowIndex    = 1
	eventBufferSize    = 64
)

// Context is created once at startup and handed to every command handler.
type Context struct {
	Config   config.Config
	Fyne     fyne.App
	Logger   logger.Logger
	Bus      *eventbus.Bus
	Plugins  *plugin.Registry
	Commands *command.Registry
	Windows  *windows.Manager
	Shutdown *shutdown.Manager
	Vault    *Vault
	Profile  *profile.Service
	Tasks    *tasks.Store

	Store  *store.Plugin
	Dialog *dialog.Plugin
	FS     *fs.Plugin
	Opener *opener.Plugin
}

// New registers the plugins, commands and views on fyneApp. Nothing is shown
// until Run is called.
func New(fyneApp fyne.App, cfg config.Config, log logger.Logger) (c *Context, err error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = fyneApp.Storage().RootURI().Path()
	}

	declared, err := config.LoadWindows(cfg.WindowsFile)
	if err != nil {
		return nil, errors.Wrap(err, "load window configuration")
	}

	log.Info("Application", "starting application", map[string]interface{}{
		"version":    config.AppVersion,
		"data_dir":   dataDir,
		"windows":    len(declared),
		"go_version": runtime.Version(),
	})

	bus := eventbus.NewBus(eventBufferSize, log)
	sd := shutdown.NewManager(log)
	sd.Register("eventbus", bus)
	defer func() {
		if err != nil {
			sd.Shutdown()
		}
	}()

	c = &Context{
		Config:   cfg,
		Fyne:     fyneApp,
		Logger:   log,
		Bus:      bus,
		Plugins:  plugin.NewRegistry(log),
		Commands: command.NewRegistry(log),
		Shutdown: sd,
		Store:    store.New(dataDir, log),
		Dialog:   dialog.New(log),
		FS:       fs.New(bus, log),
		Opener:   opener.New(fyneApp, log),
	}

	for _, p := range []plugin.Plugin{c.Store, c.Dialog, c.FS, c.Opener} {
		if err := c.Plugins.Register(p); err != nil {
			return nil, err
		}
	}
	if err := c.Plugins.Init(sd.Context()); err != nil {
		return nil, err
	}
	sd.Register("plugins", c.Plugins)

	if c.Tasks, err = tasks.Open(filepath.Join(dataDir, tasks.DatabaseFile)); err != nil {
		return nil, err
	}
	sd.Register("tasks", c.Tasks)

	if c.Vault, err = newVault(sd.Context(), c.Store, c.FS, log); err != nil {
		return nil, err
	}
	sd.Register("vault", c.Vault)

	if err := c.initProfile(time.Now()); err != nil {
		return nil, err
	}

	c.Windows = windows.NewManager(fyneApp, declared, bus, log)
	if err := views.Register(c.Windows, c.viewDeps()); err != nil {
		return nil, err
	}
	if err := c.registerCommands(); err != nil {
		return nil, err
	}

	log.Info("Application", "initialization complete", map[string]interface{}{
		"plugins":  c.Plugins.Names(),
		"commands": c.Commands.Names(),
	})
	return c, nil
}

func (c *Context) initProfile(now time.Time) error {
	svc, err := profile.NewService(c.Store, c.Logger)
	if err != nil {
		return err
	}
	if err := svc.Init(); err != nil {
		return err
	}
	if _, err := svc.RecordLogin(now); err != nil {
		return err
	}
	if _, err := svc.Evaluate(now); err != nil {
		return err
	}
	c.Profile = svc
	return nil
}

func (c *Context) viewDeps() views.Deps {
	return views.Deps{
		Commands: c.Commands,
		Dialog:   c.Dialog,
		FS:       c.FS,
		Bus:      c.Bus,
		Vault:    c.Vault,
		Profile:  c.Profile,
		Tasks:    c.Tasks,
		Logger:   c.Logger,
	}
}

// Run shows the startup window and blocks in the host event loop until the
// application quits, then shuts every component down.
func (c *Context) Run() error {
	if _, err := c.Windows.Create(StartupWindowIndex); err != nil {
		c.Close()
		return errors.Wrap(err, "show startup window")
	}

	c.Shutdown.Listen(func() {
		fyne.Do(c.Fyne.Quit)
	})

	c.Logger.Info("Application", "GUI displayed", nil)
	c.Fyne.Run()

	c.Close()
	return nil
}

func (c *Context) Close() {
	c.Shutdown.Shutdown()
}
