package app

import (
	"context"

	"fyne.io/fyne/v2"
	"github.com/pkg/errors"

	"zettel/internal/command"
	"zettel/internal/plugin"
	"zettel/internal/plugin/opener"
	"zettel/internal/views"
)

func (c *Context) registerCommands() error {
	handlers := map[string]command.Handler{
		views.CmdCreateMainView: c.createMainView,
		views.CmdCloseDirView:   c.closeDirView,
		views.CmdSelectVault:    c.selectVault,
		views.CmdOpenURL:        c.openURL,
		views.CmdOpenHelp:       c.openHelp,
	}
	for name, h := range handlers {
		if err := c.Commands.Register(name, h); err != nil {
			return err
		}
	}
	return nil
}

// createMainView opens a new window from the second declared window. Each call
// opens another window.
func (c *Context) createMainView(context.Context, command.Args) (interface{}, error) {
	_, err := c.Windows.Create(MainWindowIndex)
	return nil, err
}

// closeDirView opens the main view and closes the calling window once it is up.
func (c *Context) closeDirView(ctx context.Context, args command.Args) (interface{}, error) {
	if _, err := c.Commands.Invoke(ctx, views.CmdCreateMainView, nil); err != nil {
		return nil, err
	}
	if w, ok := args[views.ArgWindow].(fyne.Window); ok && w != nil {
		w.Close()
	}
	return nil, nil
}

func (c *Context) selectVault(_ context.Context, args command.Args) (interface{}, error) {
	path := args.String(views.ArgPath)
	if path == "" {
		return nil, errors.New("path argument is required")
	}
	return c.Vault.Set(path)
}

func (c *Context) openURL(_ context.Context, args command.Args) (interface{}, error) {
	return nil, c.open(args.String(views.ArgURL))
}

func (c *Context) openHelp(context.Context, command.Args) (interface{}, error) {
	return nil, c.open(c.Config.HelpURL)
}

func (c *Context) open(raw string) error {
	op, err := plugin.Lookup[*opener.Plugin](c.Plugins, opener.PluginName)
	if err != nil {
		return err
	}
	return op.OpenURL(raw)
}
