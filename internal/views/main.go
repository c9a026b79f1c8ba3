package views

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/pkg/errors"

	"zettel/internal/eventbus"
	"zettel/internal/vault"
	"zettel/internal/views/components"
	"zettel/internal/windows"
)

const emptyPreview = "*Select a note to preview it.*"

// mainView shows the vault tree, tasks and profile of one main window.
type mainView struct {
	deps   Deps
	window fyne.Window

	toolbar *components.Toolbar
	status  *components.StatusBar
	tree    *noteTree
	preview *widget.RichText
	tasks   *tasksPanel
	profile *profilePanel

	vaultPath string
	current   *vault.Node
	handlerID string
}

func newMainViewBuilder(deps Deps) windows.ViewBuilder {
	return func(w fyne.Window) (fyne.CanvasObject, error) {
		_, content, err := newMainView(deps, w)
		return content, err
	}
}

// newMainView builds the view for w and subscribes it to vault changes until w closes.
func newMainView(deps Deps, w fyne.Window) (*mainView, fyne.CanvasObject, error) {
	v := &mainView{
		deps:      deps,
		window:    w,
		handlerID: fmt.Sprintf("mainview-%p", w),
	}
	content, err := v.build()
	if err != nil {
		return nil, nil, err
	}
	v.subscribe()
	return v, content, nil
}

func (v *mainView) build() (fyne.CanvasObject, error) {
	v.toolbar = components.NewToolbar()
	v.status = components.NewStatusBar()
	v.preview = widget.NewRichTextFromMarkdown(emptyPreview)
	v.preview.Wrapping = fyne.TextWrapWord
	v.tree = newNoteTree(v.openNote)

	var err error
	if v.tasks, err = newTasksPanel(v.deps, v.window); err != nil {
		return nil, errors.Wrap(err, "load tasks")
	}
	if v.profile, err = newProfilePanel(v.deps, v.window); err != nil {
		return nil, errors.Wrap(err, "load profile")
	}

	v.toolbar.SetNewNoteHandler(v.newNote)
	v.toolbar.SetOpenHandler(v.pickNote)
	v.toolbar.SetSaveAsHandler(v.saveNoteAs)
	v.toolbar.SetRefreshHandler(v.reload)
	v.toolbar.SetNewWindowHandler(func() { v.invoke(CmdCreateMainView) })
	v.toolbar.SetHelpHandler(func() { v.invoke(CmdOpenHelp) })

	v.reload()
	if v.vaultPath != "" {
		if err := v.deps.Vault.Watch(); err != nil {
			v.deps.Logger.Warning("MainView", "vault watcher unavailable", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	notes := container.NewHSplit(v.tree.widget, container.NewVScroll(v.preview))
	notes.SetOffset(0.3)

	tabs := container.NewAppTabs(
		container.NewTabItem("Notes", notes),
		container.NewTabItem("Tasks", v.tasks.container),
		container.NewTabItem("Profile", v.profile.container),
	)

	return container.NewBorder(v.toolbar.GetContainer(), v.status.GetContainer(), nil, nil, tabs), nil
}

func (v *mainView) subscribe() {
	changed := eventbus.HandlerFunc{Name: v.handlerID, Fn: func(eventbus.Event) {
		fyne.Do(v.reload)
	}}
	var closed eventbus.HandlerFunc
	closed = eventbus.HandlerFunc{Name: v.handlerID, Fn: func(e eventbus.Event) {
		if w, ok := e.Data["window"].(fyne.Window); !ok || w != v.window {
			return
		}
		v.deps.Bus.Unsubscribe(eventbus.VaultChanged, changed)
		v.deps.Bus.Unsubscribe(eventbus.WindowClosed, closed)
	}}

	v.deps.Bus.Subscribe(eventbus.VaultChanged, changed)
	v.deps.Bus.Subscribe(eventbus.WindowClosed, closed)
}

// reload rebuilds the tree from the current vault.
func (v *mainView) reload() {
	path, err := v.deps.Vault.Current()
	if err != nil {
		v.vaultPath = ""
		v.current = nil
		v.toolbar.SetNoteOpen(false)
		v.tree.SetNodes(nil)
		v.toolbar.SetVaultAvailable(false)
		v.status.SetVault("")
		v.status.SetNotes(0)
		v.status.SetStatus("No vault directory found")
		return
	}

	nodes, err := vault.Build(v.deps.FS, path)
	if err != nil {
		v.deps.Logger.Error("MainView", err, map[string]interface{}{"vault": path})
		v.status.SetStatus("Vault unreadable")
		v.toolbar.SetVaultAvailable(false)
		return
	}

	v.vaultPath = path
	v.tree.SetNodes(nodes)
	v.toolbar.SetVaultAvailable(true)
	v.status.SetVault(path)
	v.status.SetNotes(vault.CountNotes(nodes))
	v.status.SetStatus("Ready")
}

func (v *mainView) openNote(n *vault.Node) {
	if vault.Kind(n) != vault.KindNote {
		v.preview.ParseMarkdown(fmt.Sprintf("*No preview for %s*", n.Name))
		return
	}
	data, err := v.deps.FS.ReadFile(n.Path)
	if err != nil {
		v.deps.Dialog.ShowError(v.window, err)
		return
	}
	v.current = n
	v.toolbar.SetNoteOpen(true)
	v.preview.ParseMarkdown(string(data))
	v.status.SetStatus(n.Name)
}

func (v *mainView) pickNote() {
	if v.vaultPath == "" {
		return
	}
	v.deps.Dialog.OpenFile(v.window, v.vaultPath, []string{".md"}, func(path string, err error) {
		if err != nil {
			v.deps.Dialog.ShowError(v.window, err)
			return
		}
		if path != "" {
			v.openPath(path)
		}
	})
}

// openPath previews the note at path, using its tree node when the vault has one.
func (v *mainView) openPath(path string) {
	n := vault.Find(v.tree.Roots(), path)
	if n == nil {
		n = &vault.Node{Name: filepath.Base(path), Path: path}
	}
	v.openNote(n)
}

func (v *mainView) saveNoteAs() {
	if v.current == nil {
		return
	}
	v.deps.Dialog.SaveFile(v.window, filepath.Dir(v.current.Path), v.current.Name, func(path string, err error) {
		if err != nil {
			v.deps.Dialog.ShowError(v.window, err)
			return
		}
		if path != "" {
			v.copyNote(path)
		}
	})
}

func (v *mainView) copyNote(dest string) {
	data, err := v.deps.FS.ReadFile(v.current.Path)
	if err != nil {
		v.deps.Dialog.ShowError(v.window, err)
		return
	}
	if err := v.deps.FS.WriteFile(dest, data); err != nil {
		v.deps.Dialog.ShowError(v.window, err)
		return
	}
	v.reload()
	v.deps.Dialog.Info(v.window, "Note saved", "Saved "+filepath.Base(dest))
}

func (v *mainView) newNote() {
	if v.vaultPath == "" {
		return
	}
	path, err := v.nextNotePath()
	if err != nil {
		v.deps.Dialog.ShowError(v.window, err)
		return
	}
	title := strings.TrimSuffix(filepath.Base(path), ".md")
	if err := v.deps.FS.WriteFile(path, []byte("# "+title+"\n")); err != nil {
		v.deps.Dialog.ShowError(v.window, err)
		return
	}

	if _, err := v.deps.Profile.IncrementNotes(); err != nil {
		v.deps.Logger.Error("MainView", err, nil)
	}
	if _, err := v.deps.Profile.Evaluate(time.Now()); err != nil {
		v.deps.Logger.Error("MainView", err, nil)
	}
	v.profile.Refresh()
	v.reload()
	v.status.SetStatus("Created " + filepath.Base(path))
}

func (v *mainView) nextNotePath() (string, error) {
	for i := 1; i < 1000; i++ {
		name := "Untitled.md"
		if i > 1 {
			name = fmt.Sprintf("Untitled %d.md", i)
		}
		path := filepath.Join(v.vaultPath, name)
		exists, err := v.deps.FS.Exists(path)
		if err != nil {
			return "", err
		}
		if !exists {
			return path, nil
		}
	}
	return "", errors.New("too many untitled notes")
}

func (v *mainView) invoke(name string) {
	if _, err := v.deps.Commands.Invoke(context.Background(), name, nil); err != nil {
		v.deps.Dialog.ShowError(v.window, err)
	}
}
