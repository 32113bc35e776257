package jsonedit

import (
	"fmt"
	"log/slog"
)

// Predicate selects array elements.
type Predicate func(item *Node) bool

// Mapper computes the replacement for an array element. The result may be
// any value accepted by FromValue, or a CopySpec. Returning an error aborts
// the transform.
type Mapper func(item *Node) any

// ItemTransformer computes the replacement for the element at index. It
// also receives a detached snapshot of the whole array taken before the
// transform started, so neighbor lookups see original values no matter
// which positions were already rewritten.
type ItemTransformer func(item *Node, index int, snapshot *Node) any

// ArrayView edits one array of a document. It is obtained from
// Editor.Array and every operation returns the Editor for chaining.
type ArrayView struct {
	editor *Editor
	path   string
	node   *Node
	err    error
}

// Node returns the viewed array, or nil if the path did not resolve.
func (v *ArrayView) Node() *Node {
	return v.node
}

// Len returns the current length of the array.
func (v *ArrayView) Len() int {
	return v.node.Len()
}

func (v *ArrayView) ready(op string) bool {
	if v.editor.err != nil {
		return false
	}
	if v.err != nil {
		v.editor.fail(op, v.path, v.err)
		return false
	}
	return true
}

// Add appends items in argument order. All items are resolved against the
// document before any of them is appended.
func (v *ArrayView) Add(items ...any) *Editor {
	if !v.ready("add") {
		return v.editor
	}
	nodes := make([]*Node, len(items))
	for i, it := range items {
		n, err := v.editor.resolve(it)
		if err != nil {
			return v.editor.fail("add", v.path, fmt.Errorf("item %d: %w", i, err))
		}
		nodes[i] = n
	}
	v.node.vals = append(v.node.vals, nodes...)
	return v.editor.applied("add", v.path, slog.Int("count", len(nodes)))
}

// Insert puts item at index, shifting later elements right. index may
// equal the length of the array, which appends.
func (v *ArrayView) Insert(index int, item any) *Editor {
	if !v.ready("insert") {
		return v.editor
	}
	if index < 0 || index > len(v.node.vals) {
		return v.editor.fail("insert", v.path, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, index, len(v.node.vals)))
	}
	n, err := v.editor.resolve(item)
	if err != nil {
		return v.editor.fail("insert", v.path, err)
	}
	v.node.insertAt(index, n)
	return v.editor.applied("insert", v.path, slog.Int("index", index))
}

// Remove removes the elements in the inclusive range [start, end].
//
// Removal is by value: the values found in the range are collected first
// and then every element equal to one of them is removed, including equal
// elements outside the range. Given ["x","y","x","z"], Remove(0, 0)
// leaves ["y","z"]. A range with start > end removes nothing.
func (v *ArrayView) Remove(start, end int) *Editor {
	if !v.ready("remove") {
		return v.editor
	}
	if start > end {
		return v.editor.applied("remove", v.path, slog.Int("removed", 0))
	}
	if start < 0 || end >= len(v.node.vals) {
		return v.editor.fail("remove", v.path, fmt.Errorf("%w: [%d, %d] (len %d)", ErrIndexOutOfBounds, start, end, len(v.node.vals)))
	}
	targets := append([]*Node(nil), v.node.vals[start:end+1]...)
	before := len(v.node.vals)
	v.node.vals = filterNodes(v.node.vals, func(n *Node) bool {
		for _, t := range targets {
			if n.Equal(t) {
				return false
			}
		}
		return true
	})
	return v.editor.applied("remove", v.path, slog.Int("removed", before-len(v.node.vals)))
}

// RemoveAt removes the single element at index, by position.
func (v *ArrayView) RemoveAt(index int) *Editor {
	if !v.ready("remove") {
		return v.editor
	}
	if index < 0 || index >= len(v.node.vals) {
		return v.editor.fail("remove", v.path, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, index, len(v.node.vals)))
	}
	v.node.removeAt(index)
	return v.editor.applied("remove", v.path, slog.Int("index", index))
}

// RemoveIf removes every element for which pred returns true.
func (v *ArrayView) RemoveIf(pred Predicate) *Editor {
	if !v.ready("remove") {
		return v.editor
	}
	before := len(v.node.vals)
	keep := make([]bool, before)
	for i, n := range v.node.vals {
		keep[i] = !pred(n)
	}
	out := v.node.vals[:0]
	for i, n := range v.node.vals {
		if keep[i] {
			out = append(out, n)
		}
	}
	clear(v.node.vals[len(out):])
	v.node.vals = out
	return v.editor.applied("remove", v.path, slog.Int("removed", before-len(out)))
}

// Transform replaces each element with fn(element), in index order.
func (v *ArrayView) Transform(fn Mapper) *Editor {
	if !v.ready("transform") {
		return v.editor
	}
	return v.rewrite("transform", func(item *Node, _ int) any {
		return fn(item)
	})
}

// TransformIndexed replaces each element with fn(element, index, snapshot)
// in index order, where snapshot is a detached copy of the array taken
// before the first call.
func (v *ArrayView) TransformIndexed(fn ItemTransformer) *Editor {
	if !v.ready("transform") {
		return v.editor
	}
	snapshot := v.node.Clone()
	return v.rewrite("transform", func(item *Node, i int) any {
		return fn(item, i, snapshot)
	})
}

// rewrite overwrites each slot with the result of fn right after fn
// returns. If a result cannot be converted every slot written so far is
// restored.
func (v *ArrayView) rewrite(op string, fn func(item *Node, i int) any) *Editor {
	arr := v.node
	old := append([]*Node(nil), arr.vals...)
	for i := 0; i < len(arr.vals); i++ {
		item := arr.vals[i]
		out := fn(item, i)
		var n *Node
		if same, ok := out.(*Node); ok && same == item {
			n = item
		} else {
			var err error
			if fnErr, ok := out.(error); ok {
				err = fnErr
			} else {
				n, err = v.editor.resolve(out)
			}
			if err != nil {
				arr.vals = append(arr.vals[:0], old...)
				return v.editor.fail(op, v.path, fmt.Errorf("index %d: %w", i, err))
			}
		}
		arr.vals[i] = n
	}
	return v.editor.applied(op, v.path, slog.Int("count", len(arr.vals)))
}

func filterNodes(ns []*Node, keep func(*Node) bool) []*Node {
	out := ns[:0]
	for _, n := range ns {
		if keep(n) {
			out = append(out, n)
		}
	}
	clear(ns[len(out):])
	return out
}
