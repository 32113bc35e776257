package jsonedit

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyPatchBytes decodes an RFC 6902 JSON Patch and applies it with
// ApplyPatch.
func (e *Editor) ApplyPatchBytes(patchJSON []byte) *Editor {
	if e.err != nil {
		return e
	}
	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return e.fail("patch", "", fmt.Errorf("%w: invalid JSON Patch: %v", ErrUnsupportedValue, err))
	}
	return e.ApplyPatch(patch)
}

// ApplyPatch applies the operations of an RFC 6902 JSON Patch in order,
// editing the document in place like the views do. Each operation is
// atomic; the patch stops at the first failing operation, and the
// operations before it stay applied.
func (e *Editor) ApplyPatch(patch jsonpatch.Patch) *Editor {
	if e.err != nil {
		return e
	}
	for i, op := range patch {
		path, _ := op.Path()
		if err := e.applyOp(op); err != nil {
			return e.fail("patch", path, fmt.Errorf("operation %d (%s): %w", i, op.Kind(), err))
		}
		e.applied("patch", path, slog.String("kind", op.Kind()))
	}
	return e
}

func (e *Editor) applyOp(op jsonpatch.Operation) error {
	path, err := op.Path()
	if err != nil {
		return err
	}
	to, err := parsePointer(path)
	if err != nil {
		return err
	}
	switch op.Kind() {
	case "add":
		v, err := opValue(op)
		if err != nil {
			return err
		}
		return e.pointerAdd(to, v)
	case "remove":
		_, err := e.pointerRemove(to)
		return err
	case "replace":
		v, err := opValue(op)
		if err != nil {
			return err
		}
		return e.pointerReplace(to, v)
	case "move":
		from, err := opFrom(op)
		if err != nil {
			return err
		}
		if isPrefix(from, to) && len(from) < len(to) {
			return fmt.Errorf("%w: cannot move %q into its own child %q", ErrUnsupportedValue, joinPointer(from), path)
		}
		n, err := e.pointerGet(from)
		if err != nil {
			return err
		}
		undo, err := e.pointerRemove(from)
		if err != nil {
			return err
		}
		if err := e.pointerAdd(to, n); err != nil {
			undo()
			return err
		}
		return nil
	case "copy":
		from, err := opFrom(op)
		if err != nil {
			return err
		}
		n, err := e.pointerGet(from)
		if err != nil {
			return err
		}
		return e.pointerAdd(to, n.Clone())
	case "test":
		v, err := opValue(op)
		if err != nil {
			return err
		}
		n, err := e.pointerGet(to)
		if err != nil {
			return err
		}
		if !n.Equal(v) {
			return fmt.Errorf("%w: %s is %s, not %s", ErrTestFailed, path, n, v)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown operation %q", ErrUnsupportedValue, op.Kind())
}

func opValue(op jsonpatch.Operation) (*Node, error) {
	raw, ok := op["value"]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%w: operation %q has no value", ErrUnsupportedValue, op.Kind())
	}
	return parseJSON(*raw)
}

func opFrom(op jsonpatch.Operation) ([]string, error) {
	from, err := op.From()
	if err != nil {
		return nil, err
	}
	return parsePointer(from)
}

// parsePointer splits an RFC 6901 JSON Pointer into unescaped tokens.
func parsePointer(p string) ([]string, error) {
	if p == "" {
		return nil, nil
	}
	if !strings.HasPrefix(p, "/") {
		return nil, fmt.Errorf("%w: JSON Pointer must start with '/': %q", ErrInvalidPath, p)
	}
	parts := strings.Split(p[1:], "/")
	for i, s := range parts {
		parts[i] = strings.ReplaceAll(strings.ReplaceAll(s, "~1", "/"), "~0", "~")
	}
	return parts, nil
}

func joinPointer(tokens []string) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteByte('/')
		sb.WriteString(strings.ReplaceAll(strings.ReplaceAll(t, "~", "~0"), "/", "~1"))
	}
	return sb.String()
}

func isPrefix(prefix, tokens []string) bool {
	if len(prefix) > len(tokens) {
		return false
	}
	for i := range prefix {
		if prefix[i] != tokens[i] {
			return false
		}
	}
	return true
}

// arrayIndex parses an array reference token: digits without leading
// zeros.
func arrayIndex(tok string) (int, error) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPath, tok)
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return 0, fmt.Errorf("%w: bad array index %q", ErrInvalidPath, tok)
		}
	}
	return strconv.Atoi(tok)
}

// pointerGet returns the live node addressed by tokens.
func (e *Editor) pointerGet(tokens []string) (*Node, error) {
	cur := e.root
	for i, tok := range tokens {
		switch cur.Kind() {
		case ObjectKind:
			next := cur.Get(tok)
			if next == nil {
				return nil, fmt.Errorf("%w: %s", ErrNoMatch, joinPointer(tokens[:i+1]))
			}
			cur = next
		case ArrayKind:
			idx, err := arrayIndex(tok)
			if err != nil {
				return nil, err
			}
			if idx >= len(cur.vals) {
				return nil, fmt.Errorf("%w: %s (len %d)", ErrIndexOutOfBounds, joinPointer(tokens[:i+1]), len(cur.vals))
			}
			cur = cur.vals[idx]
		default:
			return nil, fmt.Errorf("%w: %s is a %s", ErrNoMatch, joinPointer(tokens[:i+1]), cur.Kind())
		}
	}
	return cur, nil
}

func (e *Editor) pointerParent(tokens []string) (*Node, string, error) {
	parent, err := e.pointerGet(tokens[:len(tokens)-1])
	if err != nil {
		return nil, "", err
	}
	last := tokens[len(tokens)-1]
	switch parent.Kind() {
	case ObjectKind, ArrayKind:
		return parent, last, nil
	}
	return nil, "", fmt.Errorf("%w: parent of %s is a %s", ErrNoMatch, joinPointer(tokens), parent.Kind())
}

func (e *Editor) pointerAdd(tokens []string, v *Node) error {
	if len(tokens) == 0 {
		e.root = v
		return nil
	}
	parent, last, err := e.pointerParent(tokens)
	if err != nil {
		return err
	}
	if parent.kind == ObjectKind {
		parent.put(last, v)
		return nil
	}
	if last == "-" {
		parent.vals = append(parent.vals, v)
		return nil
	}
	idx, err := arrayIndex(last)
	if err != nil {
		return err
	}
	if idx > len(parent.vals) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, idx, len(parent.vals))
	}
	parent.insertAt(idx, v)
	return nil
}

// pointerRemove removes the addressed node and returns a function that
// puts it back.
func (e *Editor) pointerRemove(tokens []string) (func(), error) {
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: cannot remove the document root", ErrUnsupportedValue)
	}
	parent, last, err := e.pointerParent(tokens)
	if err != nil {
		return nil, err
	}
	if parent.kind == ObjectKind {
		pos, ok := parent.index[last]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoSuchAttribute, last)
		}
		old := parent.vals[pos]
		parent.deleteKey(last)
		return func() { putAt(parent, pos, last, old) }, nil
	}
	idx, err := arrayIndex(last)
	if err != nil {
		return nil, err
	}
	if idx >= len(parent.vals) {
		return nil, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, idx, len(parent.vals))
	}
	old := parent.vals[idx]
	parent.removeAt(idx)
	return func() { parent.insertAt(idx, old) }, nil
}

func (e *Editor) pointerReplace(tokens []string, v *Node) error {
	if len(tokens) == 0 {
		e.root = v
		return nil
	}
	parent, last, err := e.pointerParent(tokens)
	if err != nil {
		return err
	}
	if parent.kind == ObjectKind {
		if !parent.Has(last) {
			return fmt.Errorf("%w: %q", ErrNoSuchAttribute, last)
		}
		parent.put(last, v)
		return nil
	}
	idx, err := arrayIndex(last)
	if err != nil {
		return err
	}
	if idx >= len(parent.vals) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfBounds, idx, len(parent.vals))
	}
	parent.vals[idx] = v
	return nil
}

// putAt inserts key at position pos of obj.
func putAt(obj *Node, pos int, key string, v *Node) {
	obj.put(key, v)
	last := len(obj.keys) - 1
	if pos >= last {
		return
	}
	copy(obj.keys[pos+1:], obj.keys[pos:last])
	copy(obj.vals[pos+1:], obj.vals[pos:last])
	obj.keys[pos] = key
	obj.vals[pos] = v
	for j := pos; j < len(obj.keys); j++ {
		obj.index[obj.keys[j]] = j
	}
}

// MergePatch returns the RFC 7396 merge patch that turns the document as
// it was opened into the document as it is now.
func (e *Editor) MergePatch() ([]byte, error) {
	cur, err := e.JSON()
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch(e.orig, cur)
	if err != nil {
		return nil, fmt.Errorf("jsonedit: failed to create merge patch: %w", err)
	}
	return patch, nil
}

// Changed reports whether the document differs in value from the one the
// Editor was opened with.
func (e *Editor) Changed() bool {
	cur, err := e.root.MarshalJSON()
	if err != nil {
		return true
	}
	return !jsonpatch.Equal(e.orig, cur)
}
