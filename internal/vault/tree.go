// Package vault builds the note tree shown by the main view.
package vault

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"zettel/internal/plugin/fs"
)

// Lister is the part of the fs plugin the tree needs.
type Lister interface {
	ReadDir(dir string) ([]fs.Entry, error)
}

var skipped = map[string]bool{".obsidian": true}

type Node struct {
	Name     string
	Path     string
	IsDir    bool
	Open     bool
	Children []*Node
}

// Build lists root recursively. Directories that cannot be read appear with
// no children; only a failure to read root itself is returned.
func Build(l Lister, root string) ([]*Node, error) {
	entries, err := l.ReadDir(root)
	if err != nil {
		return nil, err
	}
	return build(l, entries, newSorter()), nil
}

func build(l Lister, entries []fs.Entry, s *sorter) []*Node {
	nodes := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if skipped[e.Name] {
			continue
		}
		node := &Node{Name: e.Name, Path: e.Path, IsDir: e.IsDir}
		if e.IsDir {
			node.Children = []*Node{}
			if sub, err := l.ReadDir(e.Path); err == nil {
				node.Children = build(l, sub, s)
			}
		}
		nodes = append(nodes, node)
	}
	s.sort(nodes)
	return nodes
}

// sorter orders directories first, then names by locale collation.
type sorter struct {
	col *collate.Collator
}

func newSorter() *sorter {
	return &sorter{col: collate.New(language.Und, collate.IgnoreCase, collate.Numeric)}
}

func (s *sorter) sort(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return s.col.CompareString(a.Name, b.Name) < 0
	})
}

func Toggle(n *Node) {
	n.Open = !n.Open
}

// Find returns the node with path, or nil.
func Find(nodes []*Node, path string) *Node {
	for _, n := range nodes {
		if n.Path == path {
			return n
		}
		if found := Find(n.Children, path); found != nil {
			return found
		}
	}
	return nil
}

// CountNotes counts markdown files in the tree.
func CountNotes(nodes []*Node) int {
	count := 0
	for _, n := range nodes {
		if n.IsDir {
			count += CountNotes(n.Children)
			continue
		}
		if Kind(n) == KindNote {
			count++
		}
	}
	return count
}

type FileKind int

const (
	KindFile FileKind = iota
	KindDir
	KindOpenDir
	KindNote
	KindDocument
	KindImage
)

func Kind(n *Node) FileKind {
	if n.IsDir {
		if n.Open {
			return KindOpenDir
		}
		return KindDir
	}
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(n.Name), ".")) {
	case "md":
		return KindNote
	case "pdf":
		return KindDocument
	case "jpg", "jpeg", "png", "gif":
		return KindImage
	default:
		return KindFile
	}
}
