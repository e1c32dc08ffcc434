package groovy

import (
	"fmt"
	"strings"
)

// Parser turns Gradle build-script text into statement trees. It recognizes
// only the minimal statement shapes the engine needs; every other statement
// is captured verbatim as Raw, so parsing never loses source text.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser { return &Parser{} }

// ParseFile parses a whole build script.
func (p *Parser) ParseFile(filePath, source string) (*SourceFile, error) {
	ps := &parseState{src: source}
	stmts, eof := ps.statements(0)
	return NewSourceFile(filePath, stmts, eof), nil
}

// ParseFragment parses an isolated source fragment into its statement list.
// It fails on empty input; it is meant for internally synthesized text, where
// a failure signals an invariant violation in the caller.
func (p *Parser) ParseFragment(source string) ([]Statement, error) {
	ps := &parseState{src: source}
	stmts, _ := ps.statements(0)
	if len(stmts) == 0 {
		return nil, fmt.Errorf("fragment %q contains no statements", source)
	}
	return stmts, nil
}

type parseState struct {
	src string
	pos int
}

// statements parses until EOF or an unconsumed terminator byte (0 for EOF
// only). It returns the parsed statements and the trailing whitespace.
func (p *parseState) statements(terminator byte) ([]Statement, string) {
	var stmts []Statement
	for {
		prefix := p.whitespace()
		if p.pos >= len(p.src) {
			return stmts, prefix
		}
		if terminator != 0 && p.src[p.pos] == terminator {
			return stmts, prefix
		}
		stmts = append(stmts, p.statement(prefix))
	}
}

func (p *parseState) statement(prefix string) Statement {
	start := p.pos
	if p.keyword("return") {
		ws := p.sameLineSpaces()
		afterWs := p.pos
		if name, ok := p.ident(); ok {
			if inv, invOK := p.invocation(ws, name); invOK && p.atStatementEnd() {
				return NewReturn(prefix, inv)
			}
			p.pos = afterWs
		}
		if expr, ok := p.expression(ws); ok && p.atStatementEnd() {
			return NewReturn(prefix, expr)
		}
		p.pos = start
	}
	if name, ok := p.ident(); ok {
		if inv, ok := p.invocation(prefix, name); ok && p.atStatementEnd() {
			return inv
		}
		p.pos = start
	}
	return p.raw(prefix)
}

// invocation parses the part of a call after its name: arguments in parens,
// a trailing closure, or command-style arguments, then any same-line chain
// segments (`id 'x' version 'y'`).
func (p *parseState) invocation(prefix, name string) (*MethodInvocation, bool) {
	inv, ok := p.invocationArgs(prefix, name)
	if !ok {
		return nil, false
	}
	for {
		save := p.pos
		ws := p.sameLineSpaces()
		chainName, ok := p.ident()
		if !ok {
			p.pos = save
			break
		}
		seg, ok := p.invocationArgs("", chainName)
		if !ok {
			p.pos = save
			break
		}
		inv = NewChainedInvocation(inv, ws, chainName, seg.Parens(), seg.Args()...)
	}
	return inv, true
}

func (p *parseState) invocationArgs(prefix, name string) (*MethodInvocation, bool) {
	save := p.pos
	ws := p.sameLineSpaces()
	if p.pos >= len(p.src) {
		p.pos = save
		return nil, false
	}
	switch c := p.src[p.pos]; {
	case c == '(':
		p.pos++
		args, ok := p.argList()
		if !ok {
			p.pos = save
			return nil, false
		}
		if ws != "" {
			// `foo ()` is outside the recognized shapes; fall back to Raw.
			p.pos = save
			return nil, false
		}
		inv := NewMethodInvocation(prefix, name, true, args...)
		if closure, ok := p.trailingClosure(); ok {
			inv = inv.WithArgs(append(inv.Args(), closure))
		}
		return inv, true
	case c == '{':
		closure, ok := p.closure(ws)
		if !ok {
			p.pos = save
			return nil, false
		}
		return NewMethodInvocation(prefix, name, false, closure), true
	default:
		expr, ok := p.expression(ws)
		if !ok {
			p.pos = save
			return nil, false
		}
		return NewMethodInvocation(prefix, name, false, expr), true
	}
}

// trailingClosure parses an optional `{ ... }` after a parenthesized call.
func (p *parseState) trailingClosure() (Expression, bool) {
	save := p.pos
	ws := p.sameLineSpaces()
	if p.pos < len(p.src) && p.src[p.pos] == '{' {
		if closure, ok := p.closure(ws); ok {
			return closure, true
		}
	}
	p.pos = save
	return nil, false
}

// argList parses comma-separated expressions up to the closing paren.
func (p *parseState) argList() ([]Expression, bool) {
	var args []Expression
	for {
		ws := p.sameLineSpaces()
		if p.pos >= len(p.src) {
			return nil, false
		}
		if p.src[p.pos] == ')' {
			if len(args) == 0 && ws != "" {
				// `foo( )` would not round-trip; keep it Raw.
				return nil, false
			}
			p.pos++
			return args, true
		}
		if len(args) > 0 {
			if p.src[p.pos] != ',' {
				return nil, false
			}
			p.pos++
			ws = p.sameLineSpaces()
		}
		expr, ok := p.expression(ws)
		if !ok {
			return nil, false
		}
		args = append(args, expr)
	}
}

func (p *parseState) expression(prefix string) (Expression, bool) {
	if p.pos >= len(p.src) {
		return nil, false
	}
	switch c := p.src[p.pos]; {
	case c == '\'' || c == '"':
		source, ok := p.stringLiteral()
		if !ok {
			return nil, false
		}
		return NewLiteral(prefix, source), true
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}
		return NewLiteral(prefix, p.src[start:p.pos]), true
	case c == '{':
		closure, ok := p.closure(prefix)
		if !ok {
			return nil, false
		}
		// A closure in plain expression position keeps its prefix itself.
		return closure, true
	case isIdentStart(c):
		name, _ := p.ident()
		return NewIdent(prefix, name), true
	default:
		return nil, false
	}
}

func (p *parseState) closure(prefix string) (*Closure, bool) {
	if p.pos >= len(p.src) || p.src[p.pos] != '{' {
		return nil, false
	}
	p.pos++
	stmts, end := p.statements('}')
	if p.pos >= len(p.src) || p.src[p.pos] != '}' {
		return nil, false
	}
	p.pos++
	return NewClosure(prefix, NewBlock(stmts, end)), true
}

func (p *parseState) stringLiteral() (string, bool) {
	quote := p.src[p.pos]
	start := p.pos
	p.pos++
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '\\':
			p.pos += 2
		case quote:
			p.pos++
			return p.src[start:p.pos], true
		case '\n':
			return "", false
		default:
			p.pos++
		}
	}
	return "", false
}

// raw consumes one statement verbatim: to the end of the line, except that
// brackets and string literals opened on the line keep it going until they
// close. It stops before an unmatched closing brace so block parsing can
// terminate.
func (p *parseState) raw(prefix string) Statement {
	start := p.pos
	depth := 0
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; c {
		case '(', '{', '[':
			depth++
			p.pos++
		case ')', ']':
			if depth > 0 {
				depth--
			}
			p.pos++
		case '}':
			if depth == 0 {
				return NewRaw(prefix, p.src[start:p.pos])
			}
			depth--
			p.pos++
		case '\'', '"':
			if _, ok := p.stringLiteral(); !ok {
				p.pos++
			}
		case '\n':
			if depth == 0 {
				return NewRaw(prefix, p.src[start:p.pos])
			}
			p.pos++
		default:
			p.pos++
		}
	}
	return NewRaw(prefix, p.src[start:p.pos])
}

// whitespace consumes spaces, newlines, and comments.
func (p *parseState) whitespace() string {
	start := p.pos
	for p.pos < len(p.src) {
		switch c := p.src[p.pos]; {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			p.pos++
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/':
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
		case c == '/' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '*':
			p.pos += 2
			for p.pos < len(p.src) {
				if p.src[p.pos] == '*' && p.pos+1 < len(p.src) && p.src[p.pos+1] == '/' {
					p.pos += 2
					break
				}
				p.pos++
			}
		default:
			return p.src[start:p.pos]
		}
	}
	return p.src[start:p.pos]
}

// sameLineSpaces consumes spaces and tabs only, never newlines; invocation
// chains do not continue across lines.
func (p *parseState) sameLineSpaces() string {
	start := p.pos
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *parseState) ident() (string, bool) {
	if p.pos >= len(p.src) || !isIdentStart(p.src[p.pos]) {
		return "", false
	}
	start := p.pos
	for p.pos < len(p.src) && isIdentPart(p.src[p.pos]) {
		p.pos++
	}
	return p.src[start:p.pos], true
}

func (p *parseState) keyword(kw string) bool {
	if !strings.HasPrefix(p.src[p.pos:], kw) {
		return false
	}
	rest := p.pos + len(kw)
	if rest < len(p.src) && isIdentPart(p.src[rest]) {
		return false
	}
	p.pos += len(kw)
	return true
}

// atStatementEnd reports (without consuming) whether the current position is
// a clean statement boundary: end of line, end of input, a semicolon, a
// comment, or the closing brace of the enclosing block.
func (p *parseState) atStatementEnd() bool {
	i := p.pos
	for i < len(p.src) && (p.src[i] == ' ' || p.src[i] == '\t') {
		i++
	}
	if i >= len(p.src) {
		return true
	}
	switch p.src[i] {
	case '\n', '\r', ';', '}':
		return true
	case '/':
		return i+1 < len(p.src) && (p.src[i+1] == '/' || p.src[i+1] == '*')
	}
	return false
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
