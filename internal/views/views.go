// Package views builds the content of the declared windows.
package views

import (
	"context"

	"zettel/internal/command"
	"zettel/internal/eventbus"
	"zettel/internal/logger"
	"zettel/internal/plugin/dialog"
	"zettel/internal/plugin/fs"
	"zettel/internal/profile"
	"zettel/internal/tasks"
	"zettel/internal/windows"
)

const (
	DirView  = "dirview"
	MainView = "main"
)

// Commands the views invoke.
const (
	CmdCreateMainView = "create_main_view"
	CmdCloseDirView   = "close_dir_view"
	CmdSelectVault    = "select_vault"
	CmdOpenURL        = "open_url"
	CmdOpenHelp       = "open_help"
)

// Argument keys.
const (
	ArgWindow = "window"
	ArgPath   = "path"
	ArgURL    = "url"
)

type Invoker interface {
	Invoke(ctx context.Context, name string, args command.Args) (interface{}, error)
}

type VaultState interface {
	Current() (string, error)
	Watch() error
}

type Deps struct {
	Commands Invoker
	Dialog   *dialog.Plugin
	FS       *fs.Plugin
	Bus      *eventbus.Bus
	Vault    VaultState
	Profile  *profile.Service
	Tasks    *tasks.Store
	Logger   logger.Logger
}

// Register installs the builders for every view the window list can name.
func Register(m *windows.Manager, deps Deps) error {
	if err := m.RegisterView(DirView, newDirViewBuilder(deps)); err != nil {
		return err
	}
	return m.RegisterView(MainView, newMainViewBuilder(deps))
}
