package domain

import (
	"treedelta.dev/pkg/treedelta/internal/adapter"
	"treedelta.dev/pkg/treedelta/internal/domain/actions"
	"treedelta.dev/pkg/treedelta/internal/domain/matching"
	"treedelta.dev/pkg/treedelta/internal/domain/tree"
	m "treedelta.dev/pkg/treedelta/internal/model"
)

// NodeRecords lists t in pre-order.
func NodeRecords(t *tree.Tree) []m.NodeRecord {
	records := make([]m.NodeRecord, 0, t.Len())

	for id := range t.PreOrder() {
		r := m.NodeRecord{
			ID:    int(id),
			Type:  t.Type(id),
			Label: t.Label(id),
			Depth: t.Depth(id),
		}

		if pos := t.Position(id); pos != nil {
			r.Line, r.Column = pos.StartLine, pos.StartCol
		}

		records = append(records, r)
	}

	return records
}

// NewTreeView renders t for the parse command.
func NewTreeView(t *tree.Tree) m.TreeView {
	return m.TreeView{
		Nodes:    NodeRecords(t),
		Document: adapter.Document(t),
		Indented: adapter.FormatIndented(t),
	}
}

// MappingRecords lists the pairs of mapping in source pre-order.
func MappingRecords(mapping *matching.Mapping) []m.MappingRecord {
	records := make([]m.MappingRecord, 0, mapping.Len())
	for p := range mapping.All() {
		records = append(records, m.MappingRecord{Src: int(p.Src), Dst: int(p.Dst)})
	}

	return records
}

func nodeRef(n actions.NodeInfo) m.NodeRef {
	return m.NodeRef{ID: int(n.ID), Type: n.Type, Label: n.Label}
}

// ActionRecords converts a script, keeping each action's rendered text.
func ActionRecords(script *actions.Script) []m.ActionRecord {
	records := make([]m.ActionRecord, 0, script.Len())

	for _, a := range script.Actions {
		r := m.ActionRecord{
			Kind: a.Kind.String(),
			Node: nodeRef(a.Node),
			Dst:  int(a.Dst),
			Text: a.String(),
		}

		switch a.Kind {
		case actions.Insert, actions.Move:
			parent := nodeRef(a.Parent)
			r.Parent = &parent
			r.Position = a.Position
		case actions.Update:
			r.NewLabel = a.Label
		}

		records = append(records, r)
	}

	return records
}

// Stats counts a script's actions per kind.
func Stats(src, dst *tree.Tree, script *actions.Script) m.Stats {
	counts := script.Counts()

	return m.Stats{
		SourceNodes:      src.Len(),
		DestinationNodes: dst.Len(),
		Mapped:           script.Mapped,
		Inserts:          counts[actions.Insert],
		Deletes:          counts[actions.Delete],
		Moves:            counts[actions.Move],
		Updates:          counts[actions.Update],
	}
}

// NewReport assembles the report of one diff.
func NewReport(name string, src, dst *tree.Tree, mapping *matching.Mapping, script *actions.Script) m.Report {
	status := m.StatusUnchanged
	if script.Len() > 0 {
		status = m.StatusModified
	}

	return m.Report{
		Name:            name,
		Status:          status,
		SourceTree:      NodeRecords(src),
		DestinationTree: NodeRecords(dst),
		Mapping:         MappingRecords(mapping),
		Actions:         ActionRecords(script),
		Stats:           Stats(src, dst, script),
	}
}
