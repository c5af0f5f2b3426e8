package tree

import (
	"strconv"
	"strings"
)

// String renders the tree one node per line, indented by depth, as
// "type: label (id)".
func (t *Tree) String() string {
	var b strings.Builder

	for id := range t.PreOrder() {
		b.WriteString(strings.Repeat("  ", t.depth[id]))
		b.WriteString(t.PrettyString(id))
		b.WriteString(" (")
		b.WriteString(strconv.Itoa(int(id)))
		b.WriteString(")\n")
	}

	return b.String()
}
