package jsonedit

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/kevinwang15/jsonedit/internal/jpath"
)

// match is a Ref together with the concrete path that reached it.
type match struct {
	ref  Ref
	path string
}

// evaluate resolves path against the document held in *root and returns a
// live reference for every matching slot, in document order. Recursive
// descent can reach a slot more than once; duplicates are dropped.
func evaluate(root **Node, path jpath.Path) ([]match, error) {
	cur := []match{{ref: Ref{root: root, index: -1}, path: "$"}}
	for i := 0; i < len(path); i++ {
		seg := path[i]
		if seg.Kind == jpath.Descend {
			// ".." applies the following segment to the current nodes and
			// all their descendants
			var all []match
			for _, m := range cur {
				all = descendants(all, m)
			}
			cur = all
			continue
		}
		var next []match
		for _, m := range cur {
			var err error
			next, err = step(next, m, seg)
			if err != nil {
				return nil, err
			}
		}
		cur = dedupe(next)
	}
	return cur, nil
}

func descendants(dst []match, m match) []match {
	dst = append(dst, m)
	n := m.ref.Node()
	switch n.Kind() {
	case ObjectKind:
		for _, k := range n.keys {
			c := m.ref.child(k)
			dst = descendants(dst, match{ref: c, path: m.path + c.segment()})
		}
	case ArrayKind:
		for i := range n.vals {
			c := m.ref.elem(i)
			dst = descendants(dst, match{ref: c, path: m.path + c.segment()})
		}
	}
	return dst
}

func step(dst []match, m match, seg jpath.Segment) ([]match, error) {
	n := m.ref.Node()
	add := func(c Ref) {
		dst = append(dst, match{ref: c, path: m.path + c.segment()})
	}
	switch seg.Kind {
	case jpath.Field:
		if n.Kind() != ObjectKind {
			return dst, nil
		}
		for _, name := range seg.Names {
			if n.Has(name) {
				add(m.ref.child(name))
			}
		}
	case jpath.Index:
		if n.Kind() != ArrayKind {
			return dst, nil
		}
		for _, i := range seg.Indexes {
			if i < 0 {
				i += len(n.vals)
			}
			if i >= 0 && i < len(n.vals) {
				add(m.ref.elem(i))
			}
		}
	case jpath.Wildcard:
		switch n.Kind() {
		case ObjectKind:
			for _, k := range n.keys {
				add(m.ref.child(k))
			}
		case ArrayKind:
			for i := range n.vals {
				add(m.ref.elem(i))
			}
		}
	case jpath.Filter:
		var children []Ref
		switch n.Kind() {
		case ObjectKind:
			for _, k := range n.keys {
				children = append(children, m.ref.child(k))
			}
		case ArrayKind:
			for i := range n.vals {
				children = append(children, m.ref.elem(i))
			}
		}
		for _, c := range children {
			ok, err := runFilter(seg, c.Node())
			if err != nil {
				return nil, err
			}
			if ok {
				add(c)
			}
		}
	}
	return dst, nil
}

func runFilter(seg jpath.Segment, n *Node) (bool, error) {
	res, err := expr.Run(seg.Program, map[string]any{jpath.CurrentVar: n.Interface()})
	if err != nil {
		// a member missing on one element just fails the filter for it
		return false, nil
	}
	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("%w: filter %q returned %T", ErrFilterResult, seg.Expr, res)
	}
	return b, nil
}

func dedupe(ms []match) []match {
	if len(ms) < 2 {
		return ms
	}
	seen := make(map[string]bool, len(ms))
	out := ms[:0]
	for _, m := range ms {
		if seen[m.path] {
			continue
		}
		seen[m.path] = true
		out = append(out, m)
	}
	return out
}

func parsePath(op, path string) (jpath.Path, error) {
	p, err := jpath.Parse(path)
	if err != nil {
		return nil, newEditError(op, path, err)
	}
	return p, nil
}

// resolveAll returns every slot matching path; zero matches is not an error.
func resolveAll(root **Node, op, path string) ([]match, error) {
	p, err := parsePath(op, path)
	if err != nil {
		return nil, err
	}
	ms, err := evaluate(root, p)
	if err != nil {
		return nil, newEditError(op, path, err)
	}
	return ms, nil
}

// resolveValue resolves path to exactly one slot of any kind.
func resolveValue(root **Node, op, path string) (Ref, error) {
	ms, err := resolveAll(root, op, path)
	if err != nil {
		return Ref{}, err
	}
	switch len(ms) {
	case 0:
		return Ref{}, newEditError(op, path, ErrNoMatch)
	case 1:
		return ms[0].ref, nil
	}
	return Ref{}, newEditError(op, path, fmt.Errorf("%w (%d matches)", ErrAmbiguousMatch, len(ms)))
}

// resolveObject resolves path to exactly one object node.
func resolveObject(root **Node, op, path string) (*Node, error) {
	r, err := resolveValue(root, op, path)
	if err != nil {
		return nil, err
	}
	n := r.Node()
	if n.Kind() != ObjectKind {
		return nil, newEditError(op, path, fmt.Errorf("%w: found %s", ErrNotAnObject, n.Kind()))
	}
	return n, nil
}

// resolveArray resolves path to exactly one array node.
func resolveArray(root **Node, op, path string) (*Node, error) {
	r, err := resolveValue(root, op, path)
	if err != nil {
		return nil, err
	}
	n := r.Node()
	if n.Kind() != ArrayKind {
		return nil, newEditError(op, path, fmt.Errorf("%w: found %s", ErrNotAnArray, n.Kind()))
	}
	return n, nil
}
