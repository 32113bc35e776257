package jsonedit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Parse reads a JSON or YAML document into a new tree. Object key order is
// kept as written. Empty input yields an empty object.
func Parse(data []byte) (*Node, error) {
	n, _, err := parse(data)
	return n, err
}

// parse is Parse that also reports which syntax the document was read as.
func parse(data []byte) (*Node, Format, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return newObject(0), FormatYAML, nil
	}
	var jsonErr error
	if looksLikeJSON(data) {
		n, err := parseJSON(data)
		if err == nil {
			return n, FormatJSON, nil
		}
		if errors.Is(err, errTrailingData) {
			return nil, FormatJSON, fmt.Errorf("jsonedit: failed to parse JSON: %w", err)
		}
		// flow-style YAML such as "{a: 1}" also starts with a brace
		jsonErr = err
	}
	n, err := parseYAML(data)
	if err != nil {
		if jsonErr != nil {
			return nil, FormatJSON, fmt.Errorf("jsonedit: failed to parse JSON: %w", jsonErr)
		}
		return nil, FormatYAML, fmt.Errorf("jsonedit: failed to parse YAML: %w", err)
	}
	return n, FormatYAML, nil
}

var errTrailingData = errors.New("unexpected data after top-level value")

// parseYAML reads exactly one YAML document.
func parseYAML(data []byte) (*Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return newObject(0), nil
		}
		return nil, err
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: more than one YAML document", errTrailingData)
		}
		return nil, err
	}
	return FromYAMLNode(&doc)
}

func looksLikeJSON(data []byte) bool {
	t := bytes.TrimLeft(data, " \t\r\n\ufeff")
	return len(t) > 0 && (t[0] == '{' || t[0] == '[')
}

func parseJSON(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	n, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			return nil, errTrailingData
		}
		return nil, fmt.Errorf("%w: %v", errTrailingData, err)
	}
	return n, nil
}

func decodeJSONValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newObject(4)
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := kt.(string)
				if !ok {
					return nil, fmt.Errorf("object key %v is not a string", kt)
				}
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.put(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return obj, nil
		case '[':
			arr := newArray(4)
			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr.vals = append(arr.vals, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return arr, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	case string:
		return FromString(t), nil
	case bool:
		return FromBool(t), nil
	case json.Number:
		return &Node{kind: NumberKind, num: t.String()}, nil
	case nil:
		return Null(), nil
	}
	return nil, fmt.Errorf("unexpected token %v", tok)
}

// FromYAMLNode converts a yaml.v3 node tree. Aliases are expanded into
// independent copies and merge keys ("<<") are applied. An alias that
// refers to one of its own ancestors, or a document whose aliases expand
// out of proportion to its size, is rejected with ErrUnsupportedValue.
func FromYAMLNode(n *yaml.Node) (*Node, error) {
	c := &yamlConverter{open: map[*yaml.Node]bool{}}
	return c.convert(n)
}

// yamlConverter tracks the containers being converted, so that recursive
// aliases are caught, and counts nodes produced under aliases.
type yamlConverter struct {
	open       map[*yaml.Node]bool
	aliasDepth int
	nodes      int
	aliased    int
}

const (
	aliasRatioLow  = 400000
	aliasRatioHigh = 4000000
)

// allowedAliasRatio follows the yaml.v3 decoder: small documents may be
// almost entirely aliases, large ones much less so.
func allowedAliasRatio(nodes int) float64 {
	switch {
	case nodes <= aliasRatioLow:
		return 0.99
	case nodes >= aliasRatioHigh:
		return 0.10
	}
	return 0.99 - 0.89*(float64(nodes-aliasRatioLow)/float64(aliasRatioHigh-aliasRatioLow))
}

func (c *yamlConverter) count(n *yaml.Node) error {
	c.nodes++
	if c.aliasDepth > 0 {
		c.aliased++
	}
	if c.aliased > 100 && c.nodes > 1000 && float64(c.aliased)/float64(c.nodes) > allowedAliasRatio(c.nodes) {
		return fmt.Errorf("jsonedit: line %d: %w: excessive aliasing", n.Line, ErrUnsupportedValue)
	}
	return nil
}

func (c *yamlConverter) convert(n *yaml.Node) (*Node, error) {
	if n == nil {
		return Null(), nil
	}
	if err := c.count(n); err != nil {
		return nil, err
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return newObject(0), nil
		}
		return c.convert(n.Content[0])
	case yaml.AliasNode:
		if c.open[n.Alias] {
			return nil, fmt.Errorf("jsonedit: line %d: %w: alias *%s refers to its own ancestor", n.Line, ErrUnsupportedValue, n.Value)
		}
		c.aliasDepth++
		defer func() { c.aliasDepth-- }()
		return c.convert(n.Alias)
	case yaml.SequenceNode, yaml.MappingNode:
		c.open[n] = true
		defer delete(c.open, n)
	}
	switch n.Kind {
	case yaml.SequenceNode:
		arr := newArray(len(n.Content))
		for _, item := range n.Content {
			v, err := c.convert(item)
			if err != nil {
				return nil, err
			}
			arr.vals = append(arr.vals, v)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := newObject(len(n.Content) / 2)
		var merges []*Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if k.Kind == yaml.AliasNode {
				k = k.Alias
			}
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("jsonedit: line %d: %w: non-scalar mapping key", k.Line, ErrUnsupportedValue)
			}
			val, err := c.convert(v)
			if err != nil {
				return nil, err
			}
			if k.ShortTag() == "!!merge" {
				merges = append(merges, val)
				continue
			}
			obj.put(k.Value, val)
		}
		for _, m := range merges {
			if err := applyMerge(obj, m); err != nil {
				return nil, fmt.Errorf("jsonedit: line %d: %w", n.Line, err)
			}
		}
		return obj, nil
	case yaml.ScalarNode:
		return scalarFromYAML(n)
	}
	return nil, fmt.Errorf("jsonedit: line %d: %w: yaml node kind %d", n.Line, ErrUnsupportedValue, n.Kind)
}

// applyMerge adds the entries of a merged mapping (or of each mapping in a
// merged sequence) that obj does not define itself.
func applyMerge(obj, m *Node) error {
	var sources []*Node
	switch m.Kind() {
	case ObjectKind:
		sources = []*Node{m}
	case ArrayKind:
		sources = m.vals
	default:
		return fmt.Errorf("%w: merge of %s", ErrUnsupportedValue, m.Kind())
	}
	for _, src := range sources {
		if src.Kind() != ObjectKind {
			return fmt.Errorf("%w: merge of %s", ErrUnsupportedValue, src.Kind())
		}
		for i, k := range src.keys {
			if !obj.Has(k) {
				obj.put(k, src.vals[i])
			}
		}
	}
	return nil
}

func scalarFromYAML(n *yaml.Node) (*Node, error) {
	switch n.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("jsonedit: line %d: %w", n.Line, err)
		}
		return FromBool(b), nil
	case "!!int":
		if isJSONNumber(n.Value) {
			return &Node{kind: NumberKind, num: n.Value}, nil
		}
		var i int64
		if err := n.Decode(&i); err == nil {
			return FromInt(i), nil
		}
		var u uint64
		if err := n.Decode(&u); err != nil {
			return nil, fmt.Errorf("jsonedit: line %d: %w", n.Line, err)
		}
		return FromUint(u), nil
	case "!!float":
		if isJSONNumber(n.Value) {
			return &Node{kind: NumberKind, num: n.Value}, nil
		}
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("jsonedit: line %d: %w", n.Line, err)
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("jsonedit: line %d: %w: non-finite number %s", n.Line, ErrUnsupportedValue, n.Value)
		}
		return FromFloat(f), nil
	}
	return FromString(n.Value), nil
}

func isJSONNumber(s string) bool {
	if s == "" {
		return false
	}
	if c := s[0]; c != '-' && (c < '0' || c > '9') {
		return false
	}
	if c := s[len(s)-1]; c < '0' || c > '9' {
		return false
	}
	return json.Valid([]byte(s))
}

// YAMLNode converts n into a yaml.v3 node tree.
func (n *Node) YAMLNode() *yaml.Node {
	switch n.Kind() {
	case BoolKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(n.b)}
	case NumberKind:
		tag := "!!float"
		if _, err := strconv.ParseInt(n.num, 10, 64); err == nil {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: n.num}
	case StringKind:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.str}
	case ObjectKind:
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for i, k := range n.keys {
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				n.vals[i].YAMLNode())
		}
		return m
	case ArrayKind:
		s := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, v := range n.vals {
			s.Content = append(s.Content, v.YAMLNode())
		}
		return s
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
}

// layout records how a source document was written so that serialization
// can follow it.
type layout struct {
	format    Format
	indent    int
	tabs      bool
	indentSeq bool
	pretty    bool
}

func detectLayout(data []byte, format Format) layout {
	l := layout{format: FormatYAML, indent: 2, indentSeq: true}
	if format == FormatJSON {
		l.format = FormatJSON
		l.pretty = bytes.ContainsRune(bytes.TrimSpace(data), '\n')
		l.indent, l.tabs = detectIndent(data)
		return l
	}
	if len(bytes.TrimSpace(data)) > 0 {
		l.indent, l.indentSeq = detectIndentAndSequence(data)
	}
	return l
}

// detectIndentAndSequence returns the base indent, and whether sequences that are values
// of mapping keys are indented one level (true) or "indentless" (false).
func detectIndentAndSequence(b []byte) (int, bool) {
	indent, _ := detectIndent(b)
	lines := bytes.Split(b, []byte("\n"))
	votes := 0 // >0 prefer indented seq, <0 prefer indentless

	for i := 0; i < len(lines); i++ {
		ln := lines[i]
		if isBlankOrComment(ln) {
			continue
		}
		if endsWithMappingKey(ln) {
			keyIndent := leadingSpaces(ln)
			// look ahead to the first non-blank, non-comment line
			for j := i + 1; j < len(lines); j++ {
				nxt := lines[j]
				if isBlankOrComment(nxt) {
					continue
				}
				lsp := leadingSpaces(nxt)
				trimmed := bytes.TrimLeft(nxt, " ")
				if len(trimmed) > 0 && trimmed[0] == '-' {
					if lsp == keyIndent+indent {
						votes++
					} else if lsp == keyIndent {
						votes--
					}
				}
				break
			}
		}
	}
	return indent, votes >= 0
}

func isBlankOrComment(ln []byte) bool {
	t := bytes.TrimSpace(ln)
	return len(t) == 0 || t[0] == '#'
}

// endsWithMappingKey returns true if the line is a block mapping key of the form "key:" possibly
// followed by spaces and/or a comment.
func endsWithMappingKey(ln []byte) bool {
	idx := bytes.IndexByte(ln, ':')
	if idx < 0 {
		return false
	}
	rest := bytes.TrimSpace(ln[idx+1:])
	return len(rest) == 0 || rest[0] == '#'
}

// detectIndent returns the base indent of b as the GCD of all non-zero
// leading-space counts, and whether lines are indented with tabs instead.
func detectIndent(b []byte) (int, bool) {
	var indents []int
	tabbed, spaced := 0, 0
	for _, ln := range bytes.Split(b, []byte("\n")) {
		if isBlankOrComment(ln) {
			continue
		}
		if len(ln) > 0 && ln[0] == '\t' {
			tabbed++
			continue
		}
		if n := leadingSpaces(ln); n > 0 {
			spaced++
			indents = append(indents, n)
		}
	}
	if tabbed > spaced {
		return 1, true
	}
	if len(indents) == 0 {
		return 2, false
	}

	result := indents[0]
	for i := 1; i < len(indents); i++ {
		result = gcd(result, indents[i])
		if result == 1 {
			break
		}
	}
	if result > 0 && result <= 8 {
		return result, false
	}
	return 2, false
}

func gcd(a, b int) int {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func leadingSpaces(line []byte) int {
	i := 0
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}
