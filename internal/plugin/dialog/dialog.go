// Package dialog exposes the host's native dialogs with plain-path callbacks.
package dialog

import (
	"context"
	"strings"

	"fyne.io/fyne/v2"
	fynedialog "fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"zettel/internal/logger"
)

const PluginName = "dialog"

type Plugin struct {
	logger logger.Logger
}

func New(log logger.Logger) *Plugin {
	return &Plugin{logger: log}
}

func (p *Plugin) Name() string { return PluginName }

func (p *Plugin) Init(context.Context) error { return nil }

func (p *Plugin) Close() error { return nil }

// PickFolder shows a folder chooser. onPicked receives "" when the user cancels.
func (p *Plugin) PickFolder(parent fyne.Window, start string, onPicked func(path string, err error)) {
	d := fynedialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil || uri == nil {
			onPicked("", err)
			return
		}
		p.logger.Debug("Dialog", "folder picked", map[string]interface{}{"path": uri.Path()})
		onPicked(uri.Path(), nil)
	}, parent)
	p.setLocation(d, start)
	d.Show()
}

// OpenFile shows a file chooser limited to the given extensions (".md").
func (p *Plugin) OpenFile(parent fyne.Window, start string, extensions []string, onPicked func(path string, err error)) {
	d := fynedialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			onPicked("", err)
			return
		}
		path := reader.URI().Path()
		reader.Close()
		onPicked(path, nil)
	}, parent)
	if len(extensions) > 0 {
		d.SetFilter(storage.NewExtensionFileFilter(normalizeExtensions(extensions)))
	}
	p.setLocation(d, start)
	d.Show()
}

// SaveFile shows a save dialog proposing name.
func (p *Plugin) SaveFile(parent fyne.Window, start, name string, onPicked func(path string, err error)) {
	d := fynedialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			onPicked("", err)
			return
		}
		path := writer.URI().Path()
		writer.Close()
		onPicked(path, nil)
	}, parent)
	d.SetFileName(name)
	p.setLocation(d, start)
	d.Show()
}

func (p *Plugin) Confirm(parent fyne.Window, title, message string, onAnswer func(bool)) {
	fynedialog.ShowConfirm(title, message, onAnswer, parent)
}

func (p *Plugin) Info(parent fyne.Window, title, message string) {
	fynedialog.ShowInformation(title, message, parent)
}

func (p *Plugin) ShowError(parent fyne.Window, err error) {
	if err == nil {
		return
	}
	p.logger.Warning("Dialog", "error shown to user", map[string]interface{}{"error": err.Error()})
	fynedialog.ShowError(err, parent)
}

type locatable interface {
	SetLocation(fyne.ListableURI)
}

func (p *Plugin) setLocation(d locatable, start string) {
	if start == "" {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(start))
	if err != nil {
		p.logger.Debug("Dialog", "start location unavailable", map[string]interface{}{
			"path":  start,
			"error": err.Error(),
		})
		return
	}
	d.SetLocation(lister)
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	return out
}
