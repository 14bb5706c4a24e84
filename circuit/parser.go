package circuit

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/arloliu/impfit/errs"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokPlus
	tokComma
	tokLParen
	tokRParen
)

var tokenKindNames = map[tokenKind]string{
	tokEOF:    "end of expression",
	tokIdent:  "identifier",
	tokPlus:   "'+'",
	tokComma:  "','",
	tokLParen: "'('",
	tokRParen: "')'",
}

func (k tokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}

	return "unknown token"
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(expr string) ([]token, error) {
	tokens := make([]token, 0, len(expr)/2+1)
	runes := []rune(expr)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+':
			tokens = append(tokens, token{kind: tokPlus, text: "+", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case unicode.IsLetter(r):
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at %d", errs.ErrInvalidCircuit, r, i)
		}
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})

	return tokens, nil
}

// parser is a recursive-descent parser for
//
//	expr := term ('+' term)*
//	term := ident | 'parallel' '(' expr ',' expr ')'
type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}

	return t
}

func (p *parser) expect(kind tokenKind) (token, error) {
	t := p.next()
	if t.kind != kind {
		return t, fmt.Errorf("%w: expected %s at %d, found %s", errs.ErrInvalidCircuit, kind, t.pos, describe(t))
	}

	return t, nil
}

func describe(t token) string {
	if t.kind == tokIdent {
		return fmt.Sprintf("%q", t.text)
	}

	return t.kind.String()
}

func (p *parser) parseExpr() (node, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []node{first}
	for p.peek().kind == tokPlus {
		p.next()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	if len(terms) == 1 {
		return first, nil
	}

	return series(terms), nil
}

func (p *parser) parseTerm() (node, error) {
	t, err := p.expect(tokIdent)
	if err != nil {
		return nil, err
	}
	if t.text != "parallel" {
		return newLeaf(t.text)
	}

	if _, err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	left, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokComma); err != nil {
		return nil, err
	}
	right, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}

	return &parallel{left: left, right: right}, nil
}

// newLeaf resolves an element reference such as "R" or "R_f1".
func newLeaf(ident string) (*leaf, error) {
	name, suffix, hasSuffix := strings.Cut(ident, "_")
	elem, ok := elements[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownElement, name)
	}
	if hasSuffix && (suffix == "" || strings.Contains(suffix, "_")) {
		return nil, fmt.Errorf("%w: element %q needs exactly one non-empty suffix", errs.ErrInvalidCircuit, ident)
	}

	names := make([]string, len(elem.Params))
	for i, param := range elem.Params {
		if suffix != "" {
			names[i] = suffix + "_" + param
		} else {
			names[i] = param
		}
	}

	return &leaf{elem: elem, names: names}, nil
}

func parse(expr string) (node, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("%w: empty expression", errs.ErrInvalidCircuit)
	}
	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %s at %d", errs.ErrInvalidCircuit, describe(t), t.pos)
	}

	return root, nil
}
