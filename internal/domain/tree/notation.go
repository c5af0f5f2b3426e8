package tree

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseNotation builds a tree from the compact notation
//
//	node  = word [ ":" word ] [ "(" node { "," node } ")" ]
//	word  = identifier | quoted string
//
// for example `block(call:print(arg:"x"), return)`. Node IDs follow pre-order.
func ParseNotation(s string) (*Tree, error) {
	p := &notationParser{src: s}
	b := NewBuilder()

	p.skipSpace()

	if err := p.node(b, NoNode); err != nil {
		return nil, err
	}

	p.skipSpace()

	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}

	return b.Build()
}

// Notation renders the tree in the form accepted by ParseNotation.
func (t *Tree) Notation() string {
	var b strings.Builder

	t.notation(&b, t.root)

	return b.String()
}

func (t *Tree) notation(b *strings.Builder, id NodeID) {
	n := &t.nodes[id]
	b.WriteString(notationWord(n.typ))

	if n.label != "" {
		b.WriteByte(':')
		b.WriteString(notationWord(n.label))
	}

	if len(n.children) == 0 {
		return
	}

	b.WriteByte('(')

	for i, c := range n.children {
		if i > 0 {
			b.WriteString(", ")
		}

		t.notation(b, c)
	}

	b.WriteByte(')')
}

func notationWord(w string) string {
	if w == "" {
		return `""`
	}

	for _, r := range w {
		if !isWordRune(r) {
			return strconv.Quote(w)
		}
	}

	return w
}

func isWordRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-')
}

type notationParser struct {
	src string
	pos int
}

func (p *notationParser) errorf(format string, args ...any) error {
	return malformed(p.pos, "notation: "+format, args...)
}

func (p *notationParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *notationParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}

	return p.src[p.pos]
}

func (p *notationParser) node(b *Builder, parent NodeID) error {
	typ, err := p.word()
	if err != nil {
		return err
	}

	var label string

	p.skipSpace()

	if p.peek() == ':' {
		p.pos++
		p.skipSpace()

		if label, err = p.word(); err != nil {
			return err
		}

		p.skipSpace()
	}

	id := b.Add(parent, typ, label, nil)

	if p.peek() != '(' {
		return nil
	}

	p.pos++

	for {
		p.skipSpace()

		if err := p.node(b, id); err != nil {
			return err
		}

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return nil
		default:
			return p.errorf("expected ',' or ')'")
		}
	}
}

func (p *notationParser) word() (string, error) {
	if p.peek() == '"' {
		end := p.pos + 1
		for end < len(p.src) && p.src[end] != '"' {
			if p.src[end] == '\\' {
				end++
			}
			end++
		}

		if end >= len(p.src) {
			return "", p.errorf("unterminated string")
		}

		w, err := strconv.Unquote(p.src[p.pos : end+1])
		if err != nil {
			return "", p.errorf("bad string: %v", err)
		}

		p.pos = end + 1

		return w, nil
	}

	start := p.pos
	for p.pos < len(p.src) && isWordRune(rune(p.src[p.pos])) {
		p.pos++
	}

	if start == p.pos {
		return "", p.errorf("expected a word")
	}

	return p.src[start:p.pos], nil
}

// MustParseNotation is ParseNotation that panics on error. Intended for tests
// and fixed literals.
func MustParseNotation(s string) *Tree {
	t, err := ParseNotation(s)
	if err != nil {
		panic(fmt.Sprintf("tree: %v", err))
	}

	return t
}
