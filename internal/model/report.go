package model

// Status classifies a report of a directory diff.
type Status string

const (
	// StatusModified marks a pair whose edit script is not empty.
	StatusModified Status = "modified"
	// StatusUnchanged marks a pair whose edit script is empty.
	StatusUnchanged Status = "unchanged"
	// StatusAdded marks a file present in the destination only.
	StatusAdded Status = "added"
	// StatusRemoved marks a file present in the source only.
	StatusRemoved Status = "removed"
	// StatusFailed marks a pair that could not be parsed.
	StatusFailed Status = "failed"
)

// NodeRecord is one node of a serialized tree, listed in pre-order.
type NodeRecord struct {
	ID     int    `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty"`
	Depth  int    `json:"depth" yaml:"depth"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column int    `json:"column,omitempty" yaml:"column,omitempty"`
}

// TreeDocument is one node of a nested tree description, the YAML and JSON
// shape of tree files.
type TreeDocument struct {
	Type     string         `json:"type" yaml:"type"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Children []TreeDocument `json:"children,omitempty" yaml:"children,omitempty"`
}

// TreeView is a parsed tree in each shape it can be printed in.
type TreeView struct {
	Nodes    []NodeRecord
	Document TreeDocument
	// Indented is the tree in the indented .tree line format.
	Indented string
}

// NodeRef names a node inside an action. ID -1 is the top of the tree.
type NodeRef struct {
	ID    int    `json:"id" yaml:"id"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// ActionRecord is one edit of a script.
type ActionRecord struct {
	Kind     string   `json:"kind" yaml:"kind"`
	Node     NodeRef  `json:"node" yaml:"node"`
	Parent   *NodeRef `json:"parent,omitempty" yaml:"parent,omitempty"`
	Position int      `json:"position,omitempty" yaml:"position,omitempty"`
	NewLabel string   `json:"new_label,omitempty" yaml:"new_label,omitempty"`
	Dst      int      `json:"dst" yaml:"dst"`
	Text     string   `json:"text" yaml:"text"`
}

// MappingRecord is one matched pair of node IDs.
type MappingRecord struct {
	Src int `json:"src" yaml:"src"`
	Dst int `json:"dst" yaml:"dst"`
}

// Stats summarizes a report.
type Stats struct {
	SourceNodes      int `json:"source_nodes" yaml:"source_nodes"`
	DestinationNodes int `json:"destination_nodes" yaml:"destination_nodes"`
	Mapped           int `json:"mapped" yaml:"mapped"`
	Inserts          int `json:"inserts" yaml:"inserts"`
	Deletes          int `json:"deletes" yaml:"deletes"`
	Moves            int `json:"moves" yaml:"moves"`
	Updates          int `json:"updates" yaml:"updates"`
	// Filtered counts actions hidden by a filter expression.
	Filtered int `json:"filtered,omitempty" yaml:"filtered,omitempty"`
}

// Actions returns the number of actions the stats account for.
func (s Stats) Actions() int {
	return s.Inserts + s.Deletes + s.Moves + s.Updates
}

// Report is the result of diffing one pair of inputs.
type Report struct {
	Name            string          `json:"name,omitempty" yaml:"name,omitempty"`
	Status          Status          `json:"status" yaml:"status"`
	Source          *File           `json:"source,omitempty" yaml:"source,omitempty"`
	Destination     *File           `json:"destination,omitempty" yaml:"destination,omitempty"`
	SourceTree      []NodeRecord    `json:"source_tree,omitempty" yaml:"source_tree,omitempty"`
	DestinationTree []NodeRecord    `json:"destination_tree,omitempty" yaml:"destination_tree,omitempty"`
	Mapping         []MappingRecord `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	Actions         []ActionRecord  `json:"actions,omitempty" yaml:"actions,omitempty"`
	Stats           Stats           `json:"stats" yaml:"stats"`
	SourceDiff      string          `json:"source_diff,omitempty" yaml:"source_diff,omitempty"`
	Error           string          `json:"error,omitempty" yaml:"error,omitempty"`
}
