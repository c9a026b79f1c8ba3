package views

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zettel/internal/command"
	"zettel/internal/config"
	"zettel/internal/eventbus"
	"zettel/internal/logger"
	"zettel/internal/plugin/dialog"
	"zettel/internal/plugin/fs"
	"zettel/internal/plugin/store"
	"zettel/internal/profile"
	"zettel/internal/tasks"
	"zettel/internal/vault"
	"zettel/internal/windows"
)

type call struct {
	name string
	args command.Args
}

type recordingInvoker struct {
	calls []call
	err   error
}

func (r *recordingInvoker) Invoke(_ context.Context, name string, args command.Args) (interface{}, error) {
	r.calls = append(r.calls, call{name: name, args: args})
	return nil, r.err
}

type fixedVault struct {
	path    string
	watched int
}

func (v *fixedVault) Current() (string, error) {
	if v.path == "" {
		return "", errors.New("no vault directory selected")
	}
	return v.path, nil
}

func (v *fixedVault) Watch() error {
	v.watched++
	return nil
}

func newDeps(t *testing.T, v *fixedVault, inv *recordingInvoker) Deps {
	t.Helper()
	test.NewTempApp(t)

	bus := eventbus.NewBus(16, logger.Nop())
	t.Cleanup(bus.Shutdown)

	stores := store.New(t.TempDir(), logger.Nop())
	require.NoError(t, stores.Init(context.Background()))
	svc, err := profile.NewService(stores, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, svc.Init())

	db, err := tasks.Open(filepath.Join(t.TempDir(), tasks.DatabaseFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return Deps{
		Commands: inv,
		Dialog:   dialog.New(logger.Nop()),
		FS:       fs.New(bus, logger.Nop()),
		Bus:      bus,
		Vault:    v,
		Profile:  svc,
		Tasks:    db,
		Logger:   logger.Nop(),
	}
}

func TestDirViewWithoutVault(t *testing.T) {
	inv := &recordingInvoker{}
	deps := newDeps(t, &fixedVault{}, inv)
	w := test.NewWindow(nil)
	defer w.Close()

	v := &dirView{deps: deps, window: w}
	w.SetContent(v.build())

	assert.Equal(t, "No vault directory found", v.vaultLabel.Text)
	assert.True(t, v.openButton.Disabled())
}

func TestDirViewOpenInvokesCloseDirView(t *testing.T) {
	inv := &recordingInvoker{}
	vault := &fixedVault{path: t.TempDir()}
	deps := newDeps(t, vault, inv)
	w := test.NewWindow(nil)
	defer w.Close()

	v := &dirView{deps: deps, window: w}
	w.SetContent(v.build())
	require.False(t, v.openButton.Disabled())
	assert.Equal(t, vault.path, v.vaultLabel.Text)

	test.Tap(v.openButton)

	require.Len(t, inv.calls, 1)
	assert.Equal(t, CmdCloseDirView, inv.calls[0].name)
	assert.Equal(t, w, inv.calls[0].args[ArgWindow])
}

func TestDirViewSelectVault(t *testing.T) {
	inv := &recordingInvoker{}
	deps := newDeps(t, &fixedVault{}, inv)
	w := test.NewWindow(nil)
	defer w.Close()

	v := &dirView{deps: deps, window: w}
	w.SetContent(v.build())
	v.selectVault("/notes")

	require.Len(t, inv.calls, 1)
	assert.Equal(t, CmdSelectVault, inv.calls[0].name)
	assert.Equal(t, "/notes", inv.calls[0].args.String(ArgPath))
}

func writeVault(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# "+f), 0o644))
	}
	return root
}

func TestMainViewLoadsVault(t *testing.T) {
	root := writeVault(t, "a.md", "ideas/b.md", "ideas/c.png")
	vault := &fixedVault{path: root}
	deps := newDeps(t, vault, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	v := &mainView{deps: deps, window: w, handlerID: "test"}
	content, err := v.build()
	require.NoError(t, err)
	w.SetContent(content)

	assert.Equal(t, "Notes: 2", v.status.Notes())
	assert.Equal(t, 1, vault.watched)
	assert.Equal(t, []string{filepath.Join(root, "ideas"), filepath.Join(root, "a.md")}, v.tree.childUIDs(""))
	assert.True(t, v.tree.isBranch(filepath.Join(root, "ideas")))
	assert.False(t, v.toolbar.NewNoteButton().Disabled())
}

func TestMainViewWithoutVault(t *testing.T) {
	deps := newDeps(t, &fixedVault{}, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	v := &mainView{deps: deps, window: w, handlerID: "test"}
	_, err := v.build()
	require.NoError(t, err)

	assert.Equal(t, "No vault directory found", v.status.Status())
	assert.True(t, v.toolbar.NewNoteButton().Disabled())
	assert.Empty(t, v.tree.childUIDs(""))
}

func TestMainViewNewNote(t *testing.T) {
	root := writeVault(t)
	deps := newDeps(t, &fixedVault{path: root}, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	v := &mainView{deps: deps, window: w, handlerID: "test"}
	_, err := v.build()
	require.NoError(t, err)

	test.Tap(v.toolbar.NewNoteButton())
	test.Tap(v.toolbar.NewNoteButton())

	_, err = os.Stat(filepath.Join(root, "Untitled.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "Untitled 2.md"))
	assert.NoError(t, err)
	assert.Equal(t, "Notes: 2", v.status.Notes())

	stats, err := deps.Profile.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.NumberOfNotes)

	list, err := deps.Profile.Achievements()
	require.NoError(t, err)
	assert.True(t, list[0].Completed)
}

func TestMainViewNewWindowInvokesCommand(t *testing.T) {
	inv := &recordingInvoker{}
	deps := newDeps(t, &fixedVault{}, inv)
	w := test.NewWindow(nil)
	defer w.Close()

	v := &mainView{deps: deps, window: w, handlerID: "test"}
	_, err := v.build()
	require.NoError(t, err)

	v.invoke(CmdCreateMainView)
	v.invoke(CmdOpenHelp)

	require.Len(t, inv.calls, 2)
	assert.Equal(t, CmdCreateMainView, inv.calls[0].name)
	assert.Equal(t, CmdOpenHelp, inv.calls[1].name)
}

func TestTasksPanelAddsListsAndTasks(t *testing.T) {
	deps := newDeps(t, &fixedVault{}, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	p, err := newTasksPanel(deps, w)
	require.NoError(t, err)

	p.listEntry.SetText("Inbox")
	p.addList()
	assert.Equal(t, []string{"Inbox"}, p.listSelect.Options)
	assert.Equal(t, "Inbox", p.listSelect.Selected)

	p.taskEntry.SetText("link notes")
	p.addTask()
	assert.Len(t, p.taskBox.Objects, 1)
	assert.Empty(t, p.taskEntry.Text)
}

func TestRegisterInstallsBothViews(t *testing.T) {
	deps := newDeps(t, &fixedVault{}, &recordingInvoker{})
	declared, err := config.PackagedWindows()
	require.NoError(t, err)

	m := windows.NewManager(fyne.CurrentApp(), declared, deps.Bus, logger.Nop())
	require.NoError(t, Register(m, deps))

	_, err = m.Create(0)
	require.NoError(t, err)
	_, err = m.Create(1)
	require.NoError(t, err)
	assert.Equal(t, 2, m.Open())

	assert.Error(t, Register(m, deps))
}

func TestMainViewFollowsVaultChangesUntilClosed(t *testing.T) {
	root := writeVault(t, "a.md")
	deps := newDeps(t, &fixedVault{path: root}, &recordingInvoker{})
	declared, err := config.PackagedWindows()
	require.NoError(t, err)

	m := windows.NewManager(fyne.CurrentApp(), declared, deps.Bus, logger.Nop())
	var v *mainView
	require.NoError(t, m.RegisterView(MainView, func(w fyne.Window) (fyne.CanvasObject, error) {
		built, content, err := newMainView(deps, w)
		v = built
		return content, err
	}))

	w, err := m.Create(1)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "Notes: 1", v.status.Notes())

	require.NoError(t, os.WriteFile(filepath.Join(root, "b.md"), []byte("# b"), 0o644))
	deps.Bus.Publish(eventbus.Event{Type: eventbus.VaultChanged})
	assert.Eventually(t, func() bool { return v.status.Notes() == "Notes: 2" }, time.Second, 10*time.Millisecond)

	w.Close()
	require.NoError(t, os.WriteFile(filepath.Join(root, "c.md"), []byte("# c"), 0o644))
	deps.Bus.Publish(eventbus.Event{Type: eventbus.VaultChanged})

	flushed := make(chan struct{})
	deps.Bus.Subscribe("test.flush", eventbus.HandlerFunc{Name: "flush", Fn: func(eventbus.Event) { close(flushed) }})
	deps.Bus.Publish(eventbus.Event{Type: "test.flush"})
	select {
	case <-flushed:
	case <-time.After(time.Second):
		t.Fatal("event bus did not drain")
	}
	assert.Never(t, func() bool { return v.status.Notes() != "Notes: 2" }, 100*time.Millisecond, 10*time.Millisecond)

	test.Tap(v.toolbar.RefreshButton())
	assert.Equal(t, "Notes: 3", v.status.Notes())
}

func TestMainViewOpenPathUsesTreeNode(t *testing.T) {
	root := writeVault(t, "ideas/b.md")
	deps := newDeps(t, &fixedVault{path: root}, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	v := &mainView{deps: deps, window: w, handlerID: "test"}
	content, err := v.build()
	require.NoError(t, err)
	w.SetContent(content)
	require.True(t, v.toolbar.SaveAsButton().Disabled())
	require.False(t, v.toolbar.OpenButton().Disabled())

	path := filepath.Join(root, "ideas", "b.md")
	v.openPath(path)

	require.NotNil(t, v.current)
	assert.Same(t, vaultNode(t, v, path), v.current)
	assert.Equal(t, "b.md", v.status.Status())
	assert.False(t, v.toolbar.SaveAsButton().Disabled())
}

func vaultNode(t *testing.T, v *mainView, path string) *vault.Node {
	t.Helper()
	for _, n := range v.tree.Roots() {
		for _, c := range n.Children {
			if c.Path == path {
				return c
			}
		}
	}
	t.Fatalf("no node for %s", path)
	return nil
}

func TestMainViewCopyNote(t *testing.T) {
	root := writeVault(t, "a.md")
	deps := newDeps(t, &fixedVault{path: root}, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	v := &mainView{deps: deps, window: w, handlerID: "test"}
	content, err := v.build()
	require.NoError(t, err)
	w.SetContent(content)

	v.openPath(filepath.Join(root, "a.md"))
	v.copyNote(filepath.Join(root, "copy.md"))

	data, err := os.ReadFile(filepath.Join(root, "copy.md"))
	require.NoError(t, err)
	assert.Equal(t, "# a.md", string(data))
	assert.Equal(t, "Notes: 2", v.status.Notes())
	assert.NotNil(t, w.Canvas().Overlays().Top())
}

func TestTasksPanelRenamesAndDeletesLists(t *testing.T) {
	deps := newDeps(t, &fixedVault{}, &recordingInvoker{})
	w := test.NewWindow(nil)
	defer w.Close()

	p, err := newTasksPanel(deps, w)
	require.NoError(t, err)
	w.SetContent(p.container)

	p.listEntry.SetText("Inbox")
	p.addList()
	p.taskEntry.SetText("link notes")
	p.addTask()

	p.listEntry.SetText("Reading")
	p.renameList()
	assert.Equal(t, []string{"Reading"}, p.listSelect.Options)
	assert.Equal(t, "Reading", p.listSelect.Selected)

	p.deleteList()
	assert.NotNil(t, w.Canvas().Overlays().Top())
	assert.Equal(t, []string{"Reading"}, p.listSelect.Options)

	p.removeList()
	assert.Empty(t, p.listSelect.Options)
	assert.Empty(t, p.current)
	assert.Empty(t, p.taskBox.Objects)

	lists, err := deps.Tasks.Lists(context.Background())
	require.NoError(t, err)
	assert.Empty(t, lists)
}
