package parser

import (
	"fmt"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Source string
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("parsing type %q at offset %d: %s", e.Source, e.Offset, e.Msg)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokPunct
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '_' || c < 0x80 && unicode.IsLetter(rune(c)) || c >= '0' && c <= '9':
			start := i
			for i < len(src) && (src[i] == '_' || src[i] < 0x80 && (unicode.IsLetter(rune(src[i])) || unicode.IsDigit(rune(src[i])))) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		case c == '"':
			end := strings.IndexByte(src[i+1:], '"')
			if end < 0 {
				return nil, &SyntaxError{Source: src, Offset: i, Msg: "unterminated string"}
			}
			toks = append(toks, token{kind: tokString, text: src[i+1 : i+1+end], pos: i})
			i += end + 2
		case strings.HasPrefix(src[i:], "::"), strings.HasPrefix(src[i:], "->"):
			toks = append(toks, token{kind: tokPunct, text: src[i : i+2], pos: i})
			i += 2
		case strings.IndexByte("*&()[];,:<>!", c) >= 0:
			toks = append(toks, token{kind: tokPunct, text: string(c), pos: i})
			i++
		default:
			return nil, &SyntaxError{Source: src, Offset: i, Msg: fmt.Sprintf("unexpected character %q", c)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(src)})
	return toks, nil
}

type typeParser struct {
	src  string
	toks []token
	pos  int
}

// ParseType parses a single source type expression such as
// `*const *mut u8` or `extern fn(a: libc::c_int) -> f64`.
func ParseType(src string) (Expr, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &typeParser{src: src, toks: toks}
	e, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, p.errorf(t, "unexpected %q after type", t.text)
	}

	return e, nil
}

func (p *typeParser) peek() token { return p.toks[p.pos] }

func (p *typeParser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *typeParser) is(text string) bool {
	t := p.peek()
	return (t.kind == tokPunct || t.kind == tokIdent) && t.text == text
}

func (p *typeParser) accept(text string) bool {
	if p.is(text) {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) expect(text string) error {
	if t := p.peek(); !p.accept(text) {
		return p.errorf(t, "expected %q, found %q", text, t.text)
	}
	return nil
}

func (p *typeParser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Offset: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) parseType() (Expr, error) {
	t := p.peek()

	switch {
	case p.accept("*"):
		var mutable bool
		switch {
		case p.accept("mut"):
			mutable = true
		case p.accept("const"):
		default:
			return nil, p.errorf(p.peek(), "expected `const` or `mut` after `*`")
		}
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Ptr{Mutable: mutable, Elem: elem}, nil

	case p.accept("&"):
		mutable := p.accept("mut")
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Ref{Mutable: mutable, Elem: elem}, nil

	case p.accept("!"):
		return &Never{}, nil

	case p.accept("("):
		return p.parseParenthesized()

	case p.accept("["):
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		if p.accept(";") {
			n := p.next()
			if n.kind != tokIdent {
				return nil, p.errorf(n, "expected array length")
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			return &Array{Elem: elem, Len: n.text}, nil
		}
		if err := p.expect("]"); err != nil {
			return nil, err
		}
		return &Slice{Elem: elem}, nil

	case p.is("unsafe"), p.is("extern"), p.is("fn"):
		return p.parseFn()

	case t.kind == tokIdent, t.text == "::":
		return p.parsePath()
	}

	return nil, p.errorf(t, "unexpected %q", t.text)
}

func (p *typeParser) parseParenthesized() (Expr, error) {
	if p.accept(")") {
		return &Unit{}, nil
	}

	var elems []Expr
	trailing := false
	for {
		e, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
		trailing = p.accept(",")
		if !trailing || p.is(")") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	if len(elems) == 1 && !trailing {
		return elems[0], nil
	}
	return &Tuple{Elems: elems}, nil
}

func (p *typeParser) parseFn() (Expr, error) {
	fn := &Fn{}

	p.accept("unsafe")
	if p.accept("extern") {
		fn.Extern = true
		if t := p.peek(); t.kind == tokString {
			p.next()
			if t.text != "C" {
				fn.Extern = false
			}
		}
	}
	if err := p.expect("fn"); err != nil {
		return nil, err
	}
	if err := p.expect("("); err != nil {
		return nil, err
	}

	for !p.is(")") {
		var param Param
		if t := p.peek(); t.kind == tokIdent && p.toks[p.pos+1].text == ":" {
			p.pos += 2
			param.Name = t.text
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		param.Type = ty
		fn.Params = append(fn.Params, param)
		if !p.accept(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}

	if p.accept("->") {
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Ret = ret
	}

	return fn, nil
}

func (p *typeParser) parsePath() (Expr, error) {
	path := &Path{}

	// A leading `::` only anchors the path at the crate root.
	p.accept("::")
	for {
		t := p.next()
		if t.kind != tokIdent {
			return nil, p.errorf(t, "expected identifier in path, found %q", t.text)
		}
		path.Segments = append(path.Segments, t.text)
		if !p.accept("::") {
			break
		}
	}

	if p.accept("<") {
		for !p.is(">") {
			g, err := p.parseType()
			if err != nil {
				return nil, err
			}
			path.Generics = append(path.Generics, g)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
	}

	return path, nil
}
