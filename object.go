package jsonedit

import "fmt"

// ObjectView edits one object of a document. It is obtained from
// Editor.Object and every operation returns the Editor for chaining.
type ObjectView struct {
	editor *Editor
	path   string
	node   *Node
	err    error
}

// Node returns the viewed object, or nil if the path did not resolve.
func (v *ObjectView) Node() *Node {
	return v.node
}

func (v *ObjectView) ready(op string) bool {
	if v.editor.err != nil {
		return false
	}
	if v.err != nil {
		v.editor.fail(op, v.path, v.err)
		return false
	}
	return true
}

// Add writes value under key, creating the entry at the end of the object
// or replacing an existing one in place.
func (v *ObjectView) Add(key string, value any) *Editor {
	if !v.ready("add") {
		return v.editor
	}
	n, err := v.editor.resolve(value)
	if err != nil {
		return v.editor.fail("add", v.path, fmt.Errorf("key %q: %w", key, err))
	}
	v.node.put(key, n)
	return v.editor.applied("add", v.path, keyAttr(key))
}

// AddAll adds each attribute in order, as Add does. Values are resolved
// before any entry is written.
func (v *ObjectView) AddAll(attrs ...Attribute) *Editor {
	if !v.ready("add") {
		return v.editor
	}
	nodes := make([]*Node, len(attrs))
	for i, a := range attrs {
		n, err := v.editor.resolve(a.Value)
		if err != nil {
			return v.editor.fail("add", v.path, fmt.Errorf("key %q: %w", a.Key, err))
		}
		nodes[i] = n
	}
	for i, a := range attrs {
		v.node.put(a.Key, nodes[i])
	}
	return v.editor.applied("add", v.path)
}

// Set replaces the value of an existing key. It fails with
// ErrNoSuchAttribute when the key is absent.
func (v *ObjectView) Set(key string, value any) *Editor {
	if !v.ready("set") {
		return v.editor
	}
	if !v.node.Has(key) {
		return v.editor.fail("set", v.path, fmt.Errorf("%w: %q", ErrNoSuchAttribute, key))
	}
	n, err := v.editor.resolve(value)
	if err != nil {
		return v.editor.fail("set", v.path, fmt.Errorf("key %q: %w", key, err))
	}
	v.node.put(key, n)
	return v.editor.applied("set", v.path, keyAttr(key))
}

// Remove deletes an existing key. It fails with ErrNoSuchAttribute when the
// key is absent.
func (v *ObjectView) Remove(key string) *Editor {
	if !v.ready("remove") {
		return v.editor
	}
	if !v.node.deleteKey(key) {
		return v.editor.fail("remove", v.path, fmt.Errorf("%w: %q", ErrNoSuchAttribute, key))
	}
	return v.editor.applied("remove", v.path, keyAttr(key))
}
