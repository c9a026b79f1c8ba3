package views

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"zettel/internal/vault"
)

// noteTree binds vault nodes to a widget.Tree keyed by path.
type noteTree struct {
	widget *widget.Tree
	roots  []*vault.Node
	index  map[string]*vault.Node
}

func newNoteTree(onOpen func(*vault.Node)) *noteTree {
	t := &noteTree{index: make(map[string]*vault.Node)}
	t.widget = widget.NewTree(t.childUIDs, t.isBranch, t.create, t.update)
	t.widget.OnSelected = func(uid widget.TreeNodeID) {
		if n := t.index[uid]; n != nil && !n.IsDir {
			onOpen(n)
		}
	}
	t.widget.OnBranchOpened = func(uid widget.TreeNodeID) { t.setOpen(uid, true) }
	t.widget.OnBranchClosed = func(uid widget.TreeNodeID) { t.setOpen(uid, false) }
	return t
}

func (t *noteTree) setOpen(uid widget.TreeNodeID, open bool) {
	n := t.index[uid]
	if n == nil || n.Open == open {
		return
	}
	vault.Toggle(n)
	t.widget.RefreshItem(uid)
}

func (t *noteTree) childUIDs(uid widget.TreeNodeID) []widget.TreeNodeID {
	nodes := t.roots
	if uid != "" {
		n := t.index[uid]
		if n == nil {
			return nil
		}
		nodes = n.Children
	}

	ids := make([]widget.TreeNodeID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.Path
	}
	return ids
}

func (t *noteTree) isBranch(uid widget.TreeNodeID) bool {
	if uid == "" {
		return true
	}
	n := t.index[uid]
	return n != nil && n.IsDir
}

func (t *noteTree) create(bool) fyne.CanvasObject {
	return container.NewHBox(widget.NewIcon(nil), widget.NewLabel(""))
}

func (t *noteTree) update(uid widget.TreeNodeID, _ bool, obj fyne.CanvasObject) {
	n := t.index[uid]
	if n == nil {
		return
	}
	row := obj.(*fyne.Container)
	row.Objects[0].(*widget.Icon).SetResource(vault.Icon(n))
	row.Objects[1].(*widget.Label).SetText(n.Name)
}

// SetNodes replaces the tree, keeping directories open that were open before.
func (t *noteTree) SetNodes(nodes []*vault.Node) {
	old := t.index
	t.roots = nodes
	t.index = make(map[string]*vault.Node)
	t.indexNodes(nodes, old)
	t.widget.Refresh()
}

func (t *noteTree) indexNodes(nodes []*vault.Node, old map[string]*vault.Node) {
	for _, n := range nodes {
		if prev, ok := old[n.Path]; ok && prev.IsDir && n.IsDir {
			n.Open = prev.Open
		}
		t.index[n.Path] = n
		t.indexNodes(n.Children, old)
	}
}

func (t *noteTree) Roots() []*vault.Node {
	return t.roots
}
