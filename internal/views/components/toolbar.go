package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Toolbar holds the main view actions.
type Toolbar struct {
	container     *fyne.Container
	refreshButton *widget.Button
	newNoteButton *widget.Button
	openButton    *widget.Button
	saveAsButton  *widget.Button
	newViewButton *widget.Button
	helpButton    *widget.Button
}

func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents() {
	t.newNoteButton = widget.NewButtonWithIcon("New Note", theme.DocumentCreateIcon(), nil)
	t.newNoteButton.Importance = widget.HighImportance

	t.openButton = widget.NewButtonWithIcon("Open Note", theme.FolderOpenIcon(), nil)
	t.saveAsButton = widget.NewButtonWithIcon("Save As", theme.DocumentSaveIcon(), nil)
	t.saveAsButton.Disable()

	t.refreshButton = widget.NewButtonWithIcon("Refresh", theme.ViewRefreshIcon(), nil)
	t.newViewButton = widget.NewButtonWithIcon("New Window", theme.ContentAddIcon(), nil)
	t.helpButton = widget.NewButtonWithIcon("", theme.HelpIcon(), nil)
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewBorder(nil, nil,
		container.NewHBox(t.newNoteButton, t.openButton, t.saveAsButton, widget.NewSeparator(), t.refreshButton),
		container.NewHBox(t.newViewButton, t.helpButton),
	)
}

func (t *Toolbar) SetNewNoteHandler(handler func())   { t.newNoteButton.OnTapped = handler }
func (t *Toolbar) SetOpenHandler(handler func())      { t.openButton.OnTapped = handler }
func (t *Toolbar) SetSaveAsHandler(handler func())    { t.saveAsButton.OnTapped = handler }
func (t *Toolbar) SetRefreshHandler(handler func())   { t.refreshButton.OnTapped = handler }
func (t *Toolbar) SetNewWindowHandler(handler func()) { t.newViewButton.OnTapped = handler }
func (t *Toolbar) SetHelpHandler(handler func())      { t.helpButton.OnTapped = handler }

// SetVaultAvailable enables the actions that need an open vault.
func (t *Toolbar) SetVaultAvailable(available bool) {
	if available {
		t.newNoteButton.Enable()
		t.openButton.Enable()
		t.refreshButton.Enable()
		return
	}
	t.newNoteButton.Disable()
	t.openButton.Disable()
	t.refreshButton.Disable()
}

// SetNoteOpen enables the actions that need a note in the preview.
func (t *Toolbar) SetNoteOpen(open bool) {
	if open {
		t.saveAsButton.Enable()
		return
	}
	t.saveAsButton.Disable()
}

func (t *Toolbar) NewNoteButton() *widget.Button { return t.newNoteButton }
func (t *Toolbar) OpenButton() *widget.Button    { return t.openButton }
func (t *Toolbar) SaveAsButton() *widget.Button  { return t.saveAsButton }
func (t *Toolbar) RefreshButton() *widget.Button { return t.refreshButton }

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
