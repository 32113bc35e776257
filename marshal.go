package jsonedit

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	gyaml "github.com/goccy/go-yaml"
)

// MarshalJSON renders n as compact JSON, objects in insertion order.
func (n *Node) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := n.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Node) writeJSON(buf *bytes.Buffer) error {
	switch n.Kind() {
	case NullKind:
		buf.WriteString("null")
	case BoolKind:
		buf.WriteString(strconv.FormatBool(n.b))
	case NumberKind:
		buf.WriteString(n.num)
	case StringKind:
		return writeJSONString(buf, n.str)
	case ObjectKind:
		buf.WriteByte('{')
		for i, k := range n.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, k); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := n.vals[i].writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case ArrayKind:
		buf.WriteByte('[')
		for i, v := range n.vals {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := v.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// UnmarshalJSON replaces n with the parsed document.
func (n *Node) UnmarshalJSON(data []byte) error {
	res, err := parseJSON(data)
	if err != nil {
		return err
	}
	*n = *res
	return nil
}

func indentJSON(compact []byte, prefix, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, prefix, indent); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// ordered converts n into the values goccy/go-yaml encodes in order:
// gyaml.MapSlice for objects and []any for arrays.
func (n *Node) ordered() any {
	switch n.Kind() {
	case BoolKind:
		return n.b
	case NumberKind:
		if i, err := strconv.ParseInt(n.num, 10, 64); err == nil {
			return i
		}
		if u, err := strconv.ParseUint(n.num, 10, 64); err == nil {
			return u
		}
		f, _ := strconv.ParseFloat(n.num, 64)
		return f
	case StringKind:
		return n.str
	case ObjectKind:
		ms := make(gyaml.MapSlice, len(n.keys))
		for i, k := range n.keys {
			ms[i] = gyaml.MapItem{Key: k, Value: n.vals[i].ordered()}
		}
		return ms
	case ArrayKind:
		s := make([]any, len(n.vals))
		for i, v := range n.vals {
			s[i] = v.ordered()
		}
		return s
	}
	return nil
}

func marshalYAML(n *Node, indent int, indentSeq bool) ([]byte, error) {
	if indent <= 0 {
		indent = 2
	}
	var buf bytes.Buffer
	enc := gyaml.NewEncoder(&buf, gyaml.Indent(indent), gyaml.IndentSequence(indentSeq))
	if err := enc.Encode(n.ordered()); err != nil {
		return nil, err
	}
	_ = enc.Close()
	return buf.Bytes(), nil
}

// String renders n as compact JSON.
func (n *Node) String() string {
	b, err := n.MarshalJSON()
	if err != nil {
		return "<" + strings.TrimSpace(err.Error()) + ">"
	}
	return string(b)
}
