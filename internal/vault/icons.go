package vault

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

func Icon(n *Node) fyne.Resource {
	switch Kind(n) {
	case KindOpenDir:
		return theme.FolderOpenIcon()
	case KindDir:
		return theme.FolderIcon()
	case KindNote:
		return theme.DocumentIcon()
	case KindDocument:
		return theme.FileTextIcon()
	case KindImage:
		return theme.FileImageIcon()
	default:
		return theme.FileIcon()
	}
}
