package jsonedit

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// Editor owns a document tree and applies path-addressed edits to it.
//
// Edits chain: every view operation returns the Editor. The first failing
// operation is recorded and reported by Err; operations chained after it
// are skipped. A failed operation leaves the tree as it was before the
// call. An Editor is not safe for concurrent use.
type Editor struct {
	root   *Node
	orig   []byte
	layout layout
	logger *slog.Logger
	err    error
}

type Option func(*Editor)

// WithLogger sets the logger edits are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIndent sets the number of spaces per level used by Serialize, JSON
// indentation and YAML.
func WithIndent(n int) Option {
	return func(e *Editor) {
		if n > 0 {
			e.layout.indent = n
			e.layout.tabs = false
			e.layout.pretty = true
		}
	}
}

// WithIndentSequence controls whether YAML sequences under a mapping key
// are indented one level.
func WithIndentSequence(v bool) Option {
	return func(e *Editor) {
		e.layout.indentSeq = v
	}
}

// WithFormat sets the format Serialize renders, overriding the format the
// input was written in.
func WithFormat(f Format) Option {
	return func(e *Editor) {
		e.layout.format = f
	}
}

// New returns an Editor that takes ownership of root. Callers must not
// keep modifying root behind the Editor's back.
func New(root *Node, opts ...Option) *Editor {
	if root == nil {
		root = Null()
	}
	e := &Editor{
		root:   root,
		layout: layout{format: FormatJSON, indent: 2, indentSeq: true},
		logger: slog.Default().With("component", "jsonedit"),
	}
	orig, err := root.MarshalJSON()
	if err != nil {
		e.err = newEditError("open", "$", err)
	}
	e.orig = orig
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Edit parses data as JSON or YAML and returns an Editor for it.
// Serialize follows the format and indentation of data.
func Edit(data []byte, opts ...Option) (*Editor, error) {
	root, format, err := parse(data)
	if err != nil {
		return nil, err
	}
	e := New(root)
	e.layout = detectLayout(data, format)
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Err returns the error of the first failed operation, if any.
func (e *Editor) Err() error {
	return e.err
}

// Root returns the root node of the document.
func (e *Editor) Root() *Node {
	return e.root
}

func (e *Editor) fail(op, path string, err error) *Editor {
	err = newEditError(op, path, err)
	if e.err == nil {
		e.err = err
	}
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "edit failed",
		slog.String("op", op),
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
	return e
}

func (e *Editor) applied(op, path string, attrs ...slog.Attr) *Editor {
	if !e.logger.Enabled(context.Background(), slog.LevelDebug) {
		return e
	}
	attrs = append([]slog.Attr{slog.String("op", op), slog.String("path", path)}, attrs...)
	e.logger.LogAttrs(context.Background(), slog.LevelDebug, "edit applied", attrs...)
	return e
}

// Object returns a view of the single object matching path.
func (e *Editor) Object(path string) *ObjectView {
	v := &ObjectView{editor: e, path: path}
	if e.err != nil {
		return v
	}
	obj, err := resolveObject(&e.root, "object", path)
	if err != nil {
		v.err = err
		return v
	}
	v.node = obj
	return v
}

// Array returns a view of the single array matching path.
func (e *Editor) Array(path string) *ArrayView {
	v := &ArrayView{editor: e, path: path}
	if e.err != nil {
		return v
	}
	arr, err := resolveArray(&e.root, "array", path)
	if err != nil {
		v.err = err
		return v
	}
	v.node = arr
	return v
}

// Find returns the single node matching path. The node is live: it is part
// of the document, not a copy.
func (e *Editor) Find(path string) (*Node, error) {
	r, err := resolveValue(&e.root, "find", path)
	if err != nil {
		return nil, err
	}
	return r.Node(), nil
}

// FindAll returns every node matching path, possibly none.
func (e *Editor) FindAll(path string) ([]*Node, error) {
	ms, err := resolveAll(&e.root, "find", path)
	if err != nil {
		return nil, err
	}
	res := make([]*Node, len(ms))
	for i, m := range ms {
		res[i] = m.ref.Node()
	}
	return res, nil
}

// Refs returns live references to every slot matching path.
func (e *Editor) Refs(path string) ([]Ref, error) {
	ms, err := resolveAll(&e.root, "find", path)
	if err != nil {
		return nil, err
	}
	res := make([]Ref, len(ms))
	for i, m := range ms {
		res[i] = m.ref
	}
	return res, nil
}

// resolve turns an edit argument into the node to write. CopySpec values
// are looked up in the document as it is now.
func (e *Editor) resolve(v any) (*Node, error) {
	return fromValue(v, e.Find)
}

// JSON renders the document as compact JSON.
func (e *Editor) JSON() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.root.MarshalJSON()
}

// JSONIndent renders the document as indented JSON.
func (e *Editor) JSONIndent(prefix, indent string) ([]byte, error) {
	b, err := e.JSON()
	if err != nil {
		return nil, err
	}
	return indentJSON(b, prefix, indent)
}

// YAML renders the document as YAML.
func (e *Editor) YAML() ([]byte, error) {
	if e.err != nil {
		return nil, e.err
	}
	out, err := marshalYAML(e.root, e.layout.indent, e.layout.indentSeq)
	if err != nil {
		return nil, fmt.Errorf("jsonedit: failed to encode YAML: %w", err)
	}
	return out, nil
}

// Serialize renders the document in the format and indentation it was read
// in (JSON unless configured otherwise for documents built with New).
func (e *Editor) Serialize() ([]byte, error) {
	if e.layout.format == FormatYAML {
		return e.YAML()
	}
	if !e.layout.pretty {
		return e.JSON()
	}
	indent := strings.Repeat(" ", e.layout.indent)
	if e.layout.tabs {
		indent = "\t"
	}
	return e.JSONIndent("", indent)
}

// String renders the document as compact JSON, or the error that stopped
// the edit chain.
func (e *Editor) String() string {
	b, err := e.JSON()
	if err != nil {
		return err.Error()
	}
	return string(b)
}

func keyAttr(key string) slog.Attr {
	return slog.String("key", key)
}
