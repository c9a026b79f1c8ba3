package views

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

type profilePanel struct {
	deps   Deps
	window fyne.Window

	container    *fyne.Container
	nameEntry    *widget.Entry
	notesLabel   *widget.Label
	daysLabel    *widget.Label
	achievements *fyne.Container
}

func newProfilePanel(deps Deps, w fyne.Window) (*profilePanel, error) {
	p := &profilePanel{
		deps:         deps,
		window:       w,
		nameEntry:    widget.NewEntry(),
		notesLabel:   widget.NewLabel(""),
		daysLabel:    widget.NewLabel(""),
		achievements: container.NewVBox(),
	}
	p.nameEntry.OnSubmitted = func(string) { p.saveName() }

	card := widget.NewCard("Profile", "", container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel("Username"),
			widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), p.saveName), p.nameEntry),
		p.notesLabel,
		p.daysLabel,
	))
	p.container = container.NewBorder(card, nil, nil, nil,
		container.NewVScroll(widget.NewCard("Achievements", "", p.achievements)))

	if err := p.load(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *profilePanel) load() error {
	stats, err := p.deps.Profile.Stats()
	if err != nil {
		return err
	}
	list, err := p.deps.Profile.Achievements()
	if err != nil {
		return err
	}

	p.nameEntry.SetText(stats.Username)
	p.notesLabel.SetText(fmt.Sprintf("Notes created: %d", stats.NumberOfNotes))
	p.daysLabel.SetText(fmt.Sprintf("Days logged: %d", stats.DaysLogged))

	p.achievements.RemoveAll()
	for _, a := range list {
		icon := theme.RadioButtonIcon()
		detail := a.Description
		if a.Completed {
			icon = theme.ConfirmIcon()
			detail = fmt.Sprintf("%s (earned %s)", a.Description, a.Earned)
		}
		p.achievements.Add(container.NewHBox(
			widget.NewIcon(icon),
			widget.NewLabelWithStyle(a.Name, fyne.TextAlignLeading, fyne.TextStyle{Bold: a.Completed}),
			widget.NewLabel(detail),
		))
	}
	return nil
}

func (p *profilePanel) Refresh() {
	if err := p.load(); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
	}
}

func (p *profilePanel) saveName() {
	if _, err := p.deps.Profile.SetUsername(p.nameEntry.Text); err != nil {
		p.deps.Dialog.ShowError(p.window, err)
		return
	}
	p.Refresh()
}
