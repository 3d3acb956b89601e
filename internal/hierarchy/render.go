package hierarchy

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
)

var (
	rootStyle   = lipgloss.NewStyle().Bold(true)
	folderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	enumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).MarginRight(1)
)

// Render draws the hierarchy below root as a tree. Folders are suffixed with
// a slash so empty folders remain distinguishable from files.
func Render(root Node) (string, error) {
	t := tree.Root(root.Name() + "/").
		RootStyle(rootStyle).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(enumStyle)

	if err := addChildren(t, root); err != nil {
		return "", err
	}
	return t.String(), nil
}

func addChildren(t *tree.Tree, n Node) error {
	children, err := n.Children()
	if err != nil {
		return err
	}
	for _, c := range children {
		if c.IsFile() {
			t.Child(c.Name())
			continue
		}
		sub := tree.Root(folderStyle.Render(c.Name() + "/"))
		if err := addChildren(sub, c); err != nil {
			return err
		}
		t.Child(sub)
	}
	return nil
}
