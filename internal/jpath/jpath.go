// Package jpath parses the path expressions used to address nodes of a
// document tree.
//
// Supported syntax:
//   - "$" root anchor (optional)
//   - ".name" and "['name']" / ["name"] object member
//   - "[2]" array element, "[-1]" counting from the end
//   - "[0,2]" and "['a','b']" unions
//   - ".*" and "[*]" wildcards
//   - "..name", "..*", "..[0]" recursive descent
//   - "[?(@.age > 30)]" filters, evaluated with expr-lang
package jpath

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

var ErrSyntax = errors.New("path syntax error")

type Kind int

const (
	Field Kind = iota
	Index
	Wildcard
	Descend
	Filter
)

func (k Kind) String() string {
	switch k {
	case Field:
		return "field"
	case Index:
		return "index"
	case Wildcard:
		return "wildcard"
	case Descend:
		return "descend"
	case Filter:
		return "filter"
	}
	return "unknown"
}

// Segment is one navigation step. Field segments carry one or more names,
// Index segments one or more indexes.
type Segment struct {
	Kind    Kind
	Names   []string
	Indexes []int

	// Filter source as written, and its compiled program.
	Expr    string
	Program *vm.Program
}

// Path is a parsed path expression. The empty path addresses the root.
type Path []Segment

// Definite reports whether the path can match at most one node.
func (p Path) Definite() bool {
	for _, s := range p {
		switch s.Kind {
		case Wildcard, Descend, Filter:
			return false
		case Field:
			if len(s.Names) != 1 {
				return false
			}
		case Index:
			if len(s.Indexes) != 1 {
				return false
			}
		}
	}
	return true
}

func (p Path) String() string {
	var sb strings.Builder
	sb.WriteByte('$')
	for i, s := range p {
		if i > 0 && p[i-1].Kind == Descend {
			switch {
			case s.Kind == Wildcard:
				sb.WriteByte('*')
				continue
			case s.Kind == Field && len(s.Names) == 1 && isPlainName(s.Names[0]):
				sb.WriteString(s.Names[0])
				continue
			}
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

func (s Segment) String() string {
	switch s.Kind {
	case Field:
		if len(s.Names) == 1 && isPlainName(s.Names[0]) {
			return "." + s.Names[0]
		}
		quoted := make([]string, len(s.Names))
		for i, n := range s.Names {
			quoted[i] = quote(n)
		}
		return "[" + strings.Join(quoted, ",") + "]"
	case Index:
		parts := make([]string, len(s.Indexes))
		for i, n := range s.Indexes {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, ",") + "]"
	case Wildcard:
		return "[*]"
	case Descend:
		return ".."
	case Filter:
		return "[?(" + s.Expr + ")]"
	}
	return ""
}

// Parse parses a path expression.
//
// Examples:
//   - "$.one.two" → two Field segments
//   - "$.items[0]" → Field then Index
//   - "one['key with spaces']" → two Field segments
//   - "$..attribute" → Descend then Field
//   - "" or "$" → root (empty Path)
func Parse(expression string) (Path, error) {
	p := &parser{src: expression}
	return p.parse()
}

// MustParse is like Parse but panics on error.
func MustParse(expression string) Path {
	p, err := Parse(expression)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	src string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at offset %d in %q", ErrSyntax, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *parser) parse() (Path, error) {
	var path Path
	p.skipSpace()
	if p.peek() == '$' {
		p.pos++
	}
	first := true
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '.':
			if strings.HasPrefix(p.src[p.pos:], "..") {
				p.pos += 2
				path = append(path, Segment{Kind: Descend})
				if p.peek() == '[' {
					continue
				}
				seg, err := p.dotted()
				if err != nil {
					return nil, err
				}
				path = append(path, seg)
				continue
			}
			p.pos++
			seg, err := p.dotted()
			if err != nil {
				return nil, err
			}
			path = append(path, seg)
		case c == '[':
			seg, err := p.bracket()
			if err != nil {
				return nil, err
			}
			path = append(path, seg)
		case first && (isNameByte(c) || c == '*'):
			// relative path without the root anchor, e.g. "one.two"
			seg, err := p.dotted()
			if err != nil {
				return nil, err
			}
			path = append(path, seg)
		default:
			return nil, p.errorf("unexpected %q", c)
		}
		first = false
	}
	return path, nil
}

func (p *parser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

// dotted reads the member name following a '.'.
func (p *parser) dotted() (Segment, error) {
	if p.peek() == '*' {
		p.pos++
		return Segment{Kind: Wildcard}, nil
	}
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return Segment{}, p.errorf("expected member name")
	}
	return Segment{Kind: Field, Names: []string{p.src[start:p.pos]}}, nil
}

func (p *parser) bracket() (Segment, error) {
	p.pos++ // '['
	p.skipSpace()
	switch c := p.peek(); {
	case c == '*':
		p.pos++
		if err := p.closeBracket(); err != nil {
			return Segment{}, err
		}
		return Segment{Kind: Wildcard}, nil
	case c == '?':
		return p.filter()
	case c == '\'' || c == '"':
		var names []string
		for {
			p.skipSpace()
			name, err := p.quoted()
			if err != nil {
				return Segment{}, err
			}
			names = append(names, name)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.closeBracket(); err != nil {
			return Segment{}, err
		}
		return Segment{Kind: Field, Names: names}, nil
	case c == '-' || (c >= '0' && c <= '9'):
		var idxs []int
		for {
			p.skipSpace()
			start := p.pos
			if p.peek() == '-' {
				p.pos++
			}
			for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
				p.pos++
			}
			n, err := strconv.Atoi(p.src[start:p.pos])
			if err != nil {
				return Segment{}, p.errorf("bad index %q", p.src[start:p.pos])
			}
			idxs = append(idxs, n)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.closeBracket(); err != nil {
			return Segment{}, err
		}
		return Segment{Kind: Index, Indexes: idxs}, nil
	default:
		return Segment{}, p.errorf("unexpected %q in brackets", c)
	}
}

func (p *parser) closeBracket() error {
	p.skipSpace()
	if p.peek() != ']' {
		return p.errorf("expected ']'")
	}
	p.pos++
	return nil
}

func (p *parser) quoted() (string, error) {
	q := p.peek()
	if q != '\'' && q != '"' {
		return "", p.errorf("expected quoted name")
	}
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == '\\' && p.pos+1 < len(p.src):
			sb.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case c == q:
			p.pos++
			return sb.String(), nil
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return "", p.errorf("unterminated quoted name")
}

// filter reads "?(" expr ")]". Parentheses inside the expression nest and
// quoted strings may contain anything.
func (p *parser) filter() (Segment, error) {
	p.pos++ // '?'
	if p.peek() != '(' {
		return Segment{}, p.errorf("expected '(' after '?'")
	}
	p.pos++
	start := p.pos
	depth := 1
	var inQuote byte
	for ; p.pos < len(p.src); p.pos++ {
		c := p.src[p.pos]
		if inQuote != 0 {
			if c == '\\' {
				p.pos++
			} else if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			inQuote = c
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth == 0 {
			break
		}
	}
	if depth != 0 {
		return Segment{}, p.errorf("unterminated filter")
	}
	src := strings.TrimSpace(p.src[start:p.pos])
	p.pos++ // ')'
	if err := p.closeBracket(); err != nil {
		return Segment{}, err
	}
	prog, err := compileFilter(src)
	if err != nil {
		return Segment{}, p.errorf("filter %q: %v", src, err)
	}
	return Segment{Kind: Filter, Expr: src, Program: prog}, nil
}

// CurrentVar is the expr-lang variable bound to the element under test.
const CurrentVar = "it"

func compileFilter(src string) (*vm.Program, error) {
	return expr.Compile(RewriteCurrent(src))
}

// RewriteCurrent replaces the JSONPath current-node marker '@' with
// CurrentVar outside of string literals.
func RewriteCurrent(src string) string {
	var sb strings.Builder
	var inQuote byte
	for i := 0; i < len(src); i++ {
		c := src[i]
		if inQuote != 0 {
			sb.WriteByte(c)
			if c == '\\' && i+1 < len(src) {
				i++
				sb.WriteByte(src[i])
			} else if c == inQuote {
				inQuote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			inQuote = c
			sb.WriteByte(c)
		case '@':
			sb.WriteString(CurrentVar)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func isNameByte(c byte) bool {
	return c == '_' || c == '-' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c >= 0x80
}

func isPlainName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isNameByte(s[i]) {
			return false
		}
	}
	return true
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(s) + "'"
}
