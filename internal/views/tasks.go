package views

import (
	"context"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"zettel/internal/tasks"
)

type tasksPanel struct {
	deps   Deps
	window fyne.Window

	container *fyne.Container
	lists     []tasks.List
	current   string

	listSelect *widget.Select
	listEntry  *widget.Entry
	taskEntry  *widget.Entry
	taskBox    *fyne.Container
}

func newTasksPanel(deps Deps, w fyne.Window) (*tasksPanel, error) {
	p := &tasksPanel{deps: deps, window: w}

	p.listSelect = widget.NewSelect(nil, func(string) {
		if i := p.listSelect.SelectedIndex(); i >= 0 && i < len(p.lists) {
			p.current = p.lists[i].ID
			p.loadTasks()
		}
	})
	p.listSelect.PlaceHolder = "Choose a task list"

	p.listEntry = widget.NewEntry()
	p.listEntry.SetPlaceHolder("New list")
	p.listEntry.OnSubmitted = func(string) { p.addList() }

	p.taskEntry = widget.NewEntry()
	p.taskEntry.SetPlaceHolder("New task")
	p.taskEntry.OnSubmitted = func(string) { p.addTask() }

	p.taskBox = container.NewVBox()

	header := container.NewVBox(
		container.NewBorder(nil, nil, nil,
			container.NewHBox(
				widget.NewButtonWithIcon("", theme.ContentAddIcon(), p.addList),
				widget.NewButtonWithIcon("", theme.DocumentCreateIcon(), p.renameList),
			), p.listEntry),
		container.NewBorder(nil, nil, nil,
			widget.NewButtonWithIcon("", theme.DeleteIcon(), p.deleteList), p.listSelect),
		container.NewBorder(nil, nil, nil,
			widget.NewButtonWithIcon("", theme.ContentAddIcon(), p.addTask), p.taskEntry),
	)
	p.container = container.NewBorder(header, nil, nil, nil, container.NewVScroll(p.taskBox))

	if err := p.loadLists(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *tasksPanel) loadLists() error {
	lists, err := p.deps.Tasks.Lists(context.Background())
	if err != nil {
		return err
	}
	p.lists = lists

	names := make([]string, len(lists))
	selected := -1
	for i, l := range lists {
		names[i] = l.Name
		if l.ID == p.current {
			selected = i
		}
	}
	p.listSelect.Options = names
	p.listSelect.Refresh()
	if selected >= 0 {
		p.listSelect.SetSelectedIndex(selected)
	}
	return nil
}

func (p *tasksPanel) loadTasks() {
	p.taskBox.RemoveAll()
	if p.current == "" {
		return
	}

	items, err := p.deps.Tasks.Tasks(context.Background(), p.current)
	if err != nil {
		p.deps.Dialog.ShowError(p.window, err)
		return
	}
	for _, t := range items {
		id := t.ID
		check := widget.NewCheck(t.Name, nil)
		check.SetChecked(t.Done)
		check.OnChanged = func(done bool) {
			if err := p.deps.Tasks.SetDone(context.Background(), id, done); err != nil {
				p.deps.Dialog.ShowError(p.window, err)
			}
		}
		p.taskBox.Add(check)
	}
}

func (p *tasksPanel) addList() {
	list, err := p.deps.Tasks.CreateList(context.Background(), p.listEntry.Text)
	if err != nil {
		p.deps.Dialog.ShowError(p.window, err)
		return
	}
	p.listEntry.SetText("")
	p.current = list.ID
	if err := p.loadLists(); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
	}
	p.loadTasks()
}

// renameList gives the selected list the name typed in the list entry.
func (p *tasksPanel) renameList() {
	if p.current == "" {
		return
	}
	if err := p.deps.Tasks.RenameList(context.Background(), p.current, p.listEntry.Text); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
		return
	}
	p.listEntry.SetText("")
	if err := p.loadLists(); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
	}
}

func (p *tasksPanel) deleteList() {
	if p.current == "" {
		return
	}
	name := p.listSelect.Selected
	p.deps.Dialog.Confirm(p.window, "Delete list", fmt.Sprintf("Delete %q and its tasks?", name), func(ok bool) {
		if ok {
			p.removeList()
		}
	})
}

func (p *tasksPanel) removeList() {
	if err := p.deps.Tasks.DeleteList(context.Background(), p.current); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
		return
	}
	p.current = ""
	p.listSelect.ClearSelected()
	if err := p.loadLists(); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
	}
	p.loadTasks()
}

func (p *tasksPanel) addTask() {
	if p.current == "" {
		return
	}
	if _, err := p.deps.Tasks.CreateTask(context.Background(), p.current, p.taskEntry.Text); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
		return
	}
	p.taskEntry.SetText("")
	p.loadTasks()
}
