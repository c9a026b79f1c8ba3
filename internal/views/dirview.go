package views

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"zettel/internal/command"
	"zettel/internal/windows"
)

// dirView lets the user pick the vault before the main view opens.
type dirView struct {
	deps   Deps
	window fyne.Window

	vaultLabel *widget.Label
	openButton *widget.Button
}

func newDirViewBuilder(deps Deps) windows.ViewBuilder {
	return func(w fyne.Window) (fyne.CanvasObject, error) {
		v := &dirView{deps: deps, window: w}
		return v.build(), nil
	}
}

func (v *dirView) build() fyne.CanvasObject {
	v.vaultLabel = widget.NewLabel("")
	v.vaultLabel.Wrapping = fyne.TextWrapBreak

	chooseButton := widget.NewButtonWithIcon("Choose Vault", theme.FolderOpenIcon(), v.chooseVault)
	v.openButton = widget.NewButtonWithIcon("Open", theme.NavigateNextIcon(), v.open)
	v.openButton.Importance = widget.HighImportance

	v.refresh()

	title := widget.NewLabelWithStyle("Welcome to Zettel", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	return container.NewBorder(
		title,
		container.NewHBox(chooseButton, widget.NewSeparator(), v.openButton),
		nil, nil,
		container.NewVBox(widget.NewLabel("Vault directory:"), v.vaultLabel),
	)
}

func (v *dirView) refresh() {
	current, err := v.deps.Vault.Current()
	if err != nil {
		v.vaultLabel.SetText("No vault directory found")
		v.openButton.Disable()
		return
	}
	v.vaultLabel.SetText(current)
	v.openButton.Enable()
}

func (v *dirView) chooseVault() {
	start, _ := v.deps.Vault.Current()
	v.deps.Dialog.PickFolder(v.window, start, func(path string, err error) {
		if err != nil {
			v.deps.Dialog.ShowError(v.window, err)
			return
		}
		if path == "" {
			return
		}
		v.selectVault(path)
	})
}

func (v *dirView) selectVault(path string) {
	_, err := v.deps.Commands.Invoke(context.Background(), CmdSelectVault, command.Args{ArgPath: path})
	if err != nil {
		v.deps.Dialog.ShowError(v.window, err)
	}
	v.refresh()
}

func (v *dirView) open() {
	_, err := v.deps.Commands.Invoke(context.Background(), CmdCloseDirView, command.Args{ArgWindow: v.window})
	if err != nil {
		v.deps.Dialog.ShowError(v.window, err)
	}
}
