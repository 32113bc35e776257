package jsonedit

import (
	"fmt"
	"math"
	"strconv"
)

type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ObjectKind
	ArrayKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case BoolKind:
		return "bool"
	case NumberKind:
		return "number"
	case StringKind:
		return "string"
	case ObjectKind:
		return "object"
	case ArrayKind:
		return "array"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Node is one value of a document tree.
//
// Objects keep their keys in insertion order: keys[i] names vals[i], and
// index maps a key back to its position. Arrays use vals only. Numbers keep
// the literal text they were parsed from.
type Node struct {
	kind Kind
	b    bool
	num  string
	str  string

	keys  []string
	vals  []*Node
	index map[string]int
}

func Null() *Node {
	return &Node{kind: NullKind}
}

func FromBool(v bool) *Node {
	return &Node{kind: BoolKind, b: v}
}

func FromInt(v int64) *Node {
	return &Node{kind: NumberKind, num: strconv.FormatInt(v, 10)}
}

func FromUint(v uint64) *Node {
	return &Node{kind: NumberKind, num: strconv.FormatUint(v, 10)}
}

// FromFloat returns a number node. NaN and infinities have no document
// representation and become null.
func FromFloat(v float64) *Node {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null()
	}
	return &Node{kind: NumberKind, num: strconv.FormatFloat(v, 'g', -1, 64)}
}

// FromNumber returns a number node holding the literal text, which must be
// a valid JSON number.
func FromNumber(text string) (*Node, error) {
	if !isJSONNumber(text) {
		return nil, fmt.Errorf("%w: invalid number %q", ErrUnsupportedValue, text)
	}
	return &Node{kind: NumberKind, num: text}, nil
}

func FromString(v string) *Node {
	return &Node{kind: StringKind, str: v}
}

// FromSlice returns an array node that takes ownership of items.
func FromSlice(items []*Node) *Node {
	res := &Node{kind: ArrayKind, vals: make([]*Node, len(items))}
	for i, it := range items {
		if it == nil {
			it = Null()
		}
		res.vals[i] = it
	}
	return res
}

type KeyVal struct {
	Key string
	Val *Node
}

// FromKeyVals returns an object node with the given entries in order. A
// repeated key overwrites the earlier value in its original position.
func FromKeyVals(kvs ...KeyVal) *Node {
	res := newObject(len(kvs))
	for _, kv := range kvs {
		v := kv.Val
		if v == nil {
			v = Null()
		}
		res.put(kv.Key, v)
	}
	return res
}

func newObject(capacity int) *Node {
	return &Node{
		kind:  ObjectKind,
		keys:  make([]string, 0, capacity),
		vals:  make([]*Node, 0, capacity),
		index: make(map[string]int, capacity),
	}
}

func newArray(capacity int) *Node {
	return &Node{kind: ArrayKind, vals: make([]*Node, 0, capacity)}
}

func (n *Node) Kind() Kind {
	if n == nil {
		return NullKind
	}
	return n.kind
}

func (n *Node) IsNull() bool   { return n.Kind() == NullKind }
func (n *Node) IsObject() bool { return n.Kind() == ObjectKind }
func (n *Node) IsArray() bool  { return n.Kind() == ArrayKind }

// Bool returns the value of a bool node, false otherwise.
func (n *Node) Bool() bool {
	return n.Kind() == BoolKind && n.b
}

// Text returns the value of a string node, the literal of a number node, and
// "" otherwise.
func (n *Node) Text() string {
	switch n.Kind() {
	case StringKind:
		return n.str
	case NumberKind:
		return n.num
	}
	return ""
}

// Number returns the literal text of a number node.
func (n *Node) Number() string {
	if n.Kind() != NumberKind {
		return ""
	}
	return n.num
}

func (n *Node) Int64() (int64, error) {
	if n.Kind() != NumberKind {
		return 0, fmt.Errorf("jsonedit: %s is not a number", n.Kind())
	}
	if i, err := strconv.ParseInt(n.num, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(n.num, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
		return 0, fmt.Errorf("jsonedit: %s is not an integer", n.num)
	}
	return int64(f), nil
}

func (n *Node) Float64() (float64, error) {
	if n.Kind() != NumberKind {
		return 0, fmt.Errorf("jsonedit: %s is not a number", n.Kind())
	}
	return strconv.ParseFloat(n.num, 64)
}

// Len returns the number of entries of an object or elements of an array.
func (n *Node) Len() int {
	switch n.Kind() {
	case ObjectKind, ArrayKind:
		return len(n.vals)
	}
	return 0
}

// Keys returns the keys of an object in insertion order.
func (n *Node) Keys() []string {
	if n.Kind() != ObjectKind {
		return nil
	}
	return append([]string(nil), n.keys...)
}

func (n *Node) Has(key string) bool {
	_, ok := n.lookup(key)
	return ok
}

// Get returns the value stored under key, or nil.
func (n *Node) Get(key string) *Node {
	i, ok := n.lookup(key)
	if !ok {
		return nil
	}
	return n.vals[i]
}

// Index returns the i'th element of an array, or nil.
func (n *Node) Index(i int) *Node {
	if n.Kind() != ArrayKind || i < 0 || i >= len(n.vals) {
		return nil
	}
	return n.vals[i]
}

// Values returns the elements of an array or the values of an object.
// The slice is a copy; the nodes are not.
func (n *Node) Values() []*Node {
	switch n.Kind() {
	case ObjectKind, ArrayKind:
		return append([]*Node(nil), n.vals...)
	}
	return nil
}

func (n *Node) lookup(key string) (int, bool) {
	if n.Kind() != ObjectKind {
		return 0, false
	}
	i, ok := n.index[key]
	return i, ok
}

// put stores v under key, keeping the position of an existing key.
func (n *Node) put(key string, v *Node) {
	if i, ok := n.index[key]; ok {
		n.vals[i] = v
		return
	}
	if n.index == nil {
		n.index = map[string]int{}
	}
	n.index[key] = len(n.keys)
	n.keys = append(n.keys, key)
	n.vals = append(n.vals, v)
}

func (n *Node) deleteKey(key string) bool {
	i, ok := n.index[key]
	if !ok {
		return false
	}
	n.keys = append(n.keys[:i], n.keys[i+1:]...)
	n.vals = append(n.vals[:i], n.vals[i+1:]...)
	delete(n.index, key)
	for j := i; j < len(n.keys); j++ {
		n.index[n.keys[j]] = j
	}
	return true
}

func (n *Node) insertAt(i int, v *Node) {
	n.vals = append(n.vals, nil)
	copy(n.vals[i+1:], n.vals[i:])
	n.vals[i] = v
}

func (n *Node) removeAt(i int) {
	n.vals = append(n.vals[:i], n.vals[i+1:]...)
}

// Clone returns a deep copy that shares no storage with n.
func (n *Node) Clone() *Node {
	if n == nil {
		return Null()
	}
	res := &Node{kind: n.kind, b: n.b, num: n.num, str: n.str}
	switch n.kind {
	case ObjectKind:
		res.keys = append(make([]string, 0, len(n.keys)), n.keys...)
		res.vals = make([]*Node, len(n.vals))
		res.index = make(map[string]int, len(n.keys))
		for i, v := range n.vals {
			res.vals[i] = v.Clone()
			res.index[n.keys[i]] = i
		}
	case ArrayKind:
		res.vals = make([]*Node, len(n.vals))
		for i, v := range n.vals {
			res.vals[i] = v.Clone()
		}
	}
	return res
}

// Interface returns n as plain Go values: map[string]any, []any, int64 or
// float64, string, bool and nil.
func (n *Node) Interface() any {
	switch n.Kind() {
	case BoolKind:
		return n.b
	case NumberKind:
		if i, err := strconv.ParseInt(n.num, 10, 64); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(n.num, 64)
		return f
	case StringKind:
		return n.str
	case ObjectKind:
		m := make(map[string]any, len(n.keys))
		for i, k := range n.keys {
			m[k] = n.vals[i].Interface()
		}
		return m
	case ArrayKind:
		s := make([]any, len(n.vals))
		for i, v := range n.vals {
			s[i] = v.Interface()
		}
		return s
	}
	return nil
}

// Walk calls f for n and, while f returns true, for every descendant in
// document order.
func (n *Node) Walk(f func(n *Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, v := range n.vals {
		v.Walk(f)
	}
}
