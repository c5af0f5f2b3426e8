package actions

import (
	"errors"
	"fmt"

	"treedelta.dev/pkg/treedelta/internal/domain/tree"
)

// ErrInvalidAction is returned by Apply when an action cannot be replayed.
var ErrInvalidAction = errors.New("invalid action")

// Apply replays actions, in order, on a copy of src and returns the result.
// src itself is not modified.
func Apply(src *tree.Tree, actions []Action) (*tree.Tree, error) {
	w := newWorking(src)

	for i, a := range actions {
		if err := w.apply(a); err != nil {
			return nil, fmt.Errorf("%w: #%d %s: %v", ErrInvalidAction, i, a, err)
		}
	}

	if len(w.top) != 1 {
		return nil, fmt.Errorf("%w: script leaves %d roots", ErrInvalidAction, len(w.top))
	}

	return w.build()
}

func (w *working) apply(a Action) error {
	id := a.Node.ID

	switch a.Kind {
	case Insert:
		if int(id) != w.len() {
			return fmt.Errorf("inserted node %d is not the next free id %d", id, w.len())
		}

		if err := w.checkParent(a.Parent.ID); err != nil {
			return err
		}

		if a.Position < 0 || a.Position > len(*w.kids(a.Parent.ID)) {
			return fmt.Errorf("position %d out of range", a.Position)
		}

		w.attach(w.add(a.Node.Type, a.Node.Label, nil), a.Parent.ID, a.Position)
	case Delete:
		if !w.contains(id) {
			return fmt.Errorf("node %d is not in the tree", id)
		}

		if len(w.children[id]) > 0 {
			return fmt.Errorf("node %d still has %d children", id, len(w.children[id]))
		}

		w.remove(id)
	case Move:
		if !w.contains(id) {
			return fmt.Errorf("node %d is not in the tree", id)
		}

		if err := w.checkParent(a.Parent.ID); err != nil {
			return err
		}

		if a.Parent.ID != tree.NoNode && w.within(a.Parent.ID, id) {
			return fmt.Errorf("node %d cannot move below itself", id)
		}

		w.detach(id)

		if a.Position < 0 || a.Position > len(*w.kids(a.Parent.ID)) {
			return fmt.Errorf("position %d out of range", a.Position)
		}

		w.attach(id, a.Parent.ID, a.Position)
	case Update:
		if !w.contains(id) {
			return fmt.Errorf("node %d is not in the tree", id)
		}

		w.label[id] = a.Label
	default:
		return fmt.Errorf("unknown kind %s", a.Kind)
	}

	return nil
}

func (w *working) checkParent(p tree.NodeID) error {
	if p != tree.NoNode && !w.contains(p) {
		return fmt.Errorf("parent %d is not in the tree", p)
	}

	return nil
}
