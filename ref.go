package jsonedit

import (
	"strconv"

	"github.com/kevinwang15/jsonedit/internal/jpath"
)

// Ref is a live reference to one slot of a document: the root slot, an
// object entry or an array element. Reads and writes go through the
// containing node at the time of the call, so they observe and affect the
// document the Ref was resolved from.
//
// A Ref to an array element addresses a position; inserting or removing
// elements before it shifts what it sees.
type Ref struct {
	root   **Node
	parent *Node
	key    string
	index  int
}

// Node returns the node currently stored in the slot, or nil if the slot no
// longer exists.
func (r Ref) Node() *Node {
	switch {
	case r.parent == nil:
		if r.root == nil {
			return nil
		}
		return *r.root
	case r.parent.kind == ObjectKind:
		return r.parent.Get(r.key)
	default:
		return r.parent.Index(r.index)
	}
}

// Set overwrites the slot with v. It reports false if the slot no longer
// exists.
func (r Ref) Set(v *Node) bool {
	if v == nil {
		v = Null()
	}
	switch {
	case r.parent == nil:
		if r.root == nil {
			return false
		}
		*r.root = v
		return true
	case r.parent.kind == ObjectKind:
		i, ok := r.parent.index[r.key]
		if !ok {
			return false
		}
		r.parent.vals[i] = v
		return true
	default:
		if r.index < 0 || r.index >= len(r.parent.vals) {
			return false
		}
		r.parent.vals[r.index] = v
		return true
	}
}

// Parent returns the container holding the slot, or nil for the root.
func (r Ref) Parent() *Node {
	return r.parent
}

// Key returns the object key of the slot, or "" for the root and array
// elements.
func (r Ref) Key() string {
	if r.parent != nil && r.parent.kind == ObjectKind {
		return r.key
	}
	return ""
}

// Index returns the array position of the slot, or -1.
func (r Ref) Index() int {
	if r.parent != nil && r.parent.kind == ArrayKind {
		return r.index
	}
	return -1
}

func (r Ref) child(key string) Ref {
	return Ref{root: r.root, parent: r.Node(), key: key, index: -1}
}

func (r Ref) elem(i int) Ref {
	return Ref{root: r.root, parent: r.Node(), index: i}
}

// segment renders the step from the parent to this slot.
func (r Ref) segment() string {
	switch {
	case r.parent == nil:
		return ""
	case r.parent.kind == ObjectKind:
		return jpath.Segment{Kind: jpath.Field, Names: []string{r.key}}.String()
	default:
		return "[" + strconv.Itoa(r.index) + "]"
	}
}
