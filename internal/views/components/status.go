package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar shows the last action, the open vault and the note count.
// Setters must run on the UI goroutine.
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	vaultLabel  *widget.Label
	notesLabel  *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.vaultLabel = widget.NewLabel("No vault")
	sb.vaultLabel.Truncation = fyne.TextTruncateEllipsis
	sb.notesLabel = widget.NewLabel("Notes: --")
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(nil, nil,
		container.NewHBox(sb.statusLabel, widget.NewSeparator()),
		container.NewHBox(widget.NewSeparator(), sb.notesLabel),
		sb.vaultLabel,
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) Status() string {
	return sb.statusLabel.Text
}

func (sb *StatusBar) SetVault(path string) {
	if path == "" {
		sb.vaultLabel.SetText("No vault")
		return
	}
	sb.vaultLabel.SetText(path)
}

func (sb *StatusBar) SetNotes(count int) {
	sb.notesLabel.SetText(fmt.Sprintf("Notes: %d", count))
}

func (sb *StatusBar) Notes() string {
	return sb.notesLabel.Text
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
