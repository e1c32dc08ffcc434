// Package groovy models the minimal Gradle build-script statement shapes the
// rewriting engine recognizes: method invocations (with or without
// parentheses), invocation chains, string and number literals, closures, and
// explicit returns. Anything outside that subset is kept as a verbatim Raw
// statement so arbitrary scripts round-trip byte-for-byte through Print.
//
// Trees are persistent. Nodes are never mutated after construction: every
// With* method returns a copy and unchanged subtrees are shared by pointer,
// which is what lets the engine detect change by comparing identities.
package groovy

import (
	"path"
	"strings"

	"github.com/ajturnerora/rewrite/domain"
)

// FileType is the capability key for Gradle build-script trees.
const FileType = "Gradle"

// Statement is a top-level or block-level element of a build script.
type Statement interface {
	Prefix() string
	WithPrefix(prefix string) Statement
	printTo(sb *strings.Builder)
}

// Expression is a value-position element: literal, identifier, closure, or
// a method invocation used as a receiver or argument.
type Expression interface {
	Prefix() string
	withPrefix(prefix string) Expression
	printTo(sb *strings.Builder)
}

// SourceFile is the root of a parsed build script and implements
// domain.SourceFile.
type SourceFile struct {
	path    string
	stmts   []Statement
	eof     string // whitespace after the last statement
	markers []domain.Marker
}

var _ domain.SourceFile = (*SourceFile)(nil)

// NewSourceFile creates a source file root.
func NewSourceFile(filePath string, stmts []Statement, eof string) *SourceFile {
	return &SourceFile{path: filePath, stmts: stmts, eof: eof}
}

func (f *SourceFile) FileType() string   { return FileType }
func (f *SourceFile) SourcePath() string { return f.path }

// IsSettings reports whether this file is a Gradle settings script.
func (f *SourceFile) IsSettings() bool {
	return path.Base(f.path) == "settings.gradle"
}

func (f *SourceFile) Statements() []Statement { return f.stmts }

func (f *SourceFile) Markers() []domain.Marker { return f.markers }

// WithStatements returns a copy of the file with the given statement list.
func (f *SourceFile) WithStatements(stmts []Statement) *SourceFile {
	c := *f
	c.stmts = stmts
	return &c
}

// WithMarker returns a copy of the file carrying the given marker. Adding a
// marker that is already present returns the receiver unchanged, so repeated
// annotation converges instead of growing the tree forever.
func (f *SourceFile) WithMarker(m domain.Marker) domain.SourceFile {
	for _, existing := range f.markers {
		if existing == m {
			return f
		}
	}
	c := *f
	c.markers = append(append([]domain.Marker{}, f.markers...), m)
	return &c
}

func (f *SourceFile) Print() string {
	var sb strings.Builder
	for _, s := range f.stmts {
		s.printTo(&sb)
	}
	sb.WriteString(f.eof)
	return sb.String()
}

// MethodInvocation is a call such as `plugins { ... }`, `id('x')`, or the
// head of a chain like `id 'x' version 'y'` (where the `version` call has the
// `id` call as its target). For a chained call the leading whitespace lives
// on the head of the chain, and Prefix/WithPrefix operate on the whole chain.
type MethodInvocation struct {
	prefix     string
	target     Expression // receiver of a chained call, nil for a direct call
	namePrefix string     // whitespace between target and name
	name       string
	parens     bool
	args       []Expression
}

// NewMethodInvocation creates a direct (untargeted) invocation.
func NewMethodInvocation(prefix, name string, parens bool, args ...Expression) *MethodInvocation {
	return &MethodInvocation{prefix: prefix, name: name, parens: parens, args: args}
}

// NewChainedInvocation creates an invocation whose receiver is another
// expression, e.g. the `version 'y'` part of `id 'x' version 'y'`.
func NewChainedInvocation(target Expression, namePrefix, name string, parens bool, args ...Expression) *MethodInvocation {
	return &MethodInvocation{target: target, namePrefix: namePrefix, name: name, parens: parens, args: args}
}

func (m *MethodInvocation) Name() string       { return m.name }
func (m *MethodInvocation) Target() Expression { return m.target }
func (m *MethodInvocation) Args() []Expression { return m.args }
func (m *MethodInvocation) Parens() bool       { return m.parens }

func (m *MethodInvocation) Prefix() string {
	if m.target != nil {
		return m.target.Prefix()
	}
	return m.prefix
}

func (m *MethodInvocation) WithPrefix(prefix string) Statement {
	return m.withInvocationPrefix(prefix)
}

func (m *MethodInvocation) withPrefix(prefix string) Expression {
	return m.withInvocationPrefix(prefix)
}

func (m *MethodInvocation) withInvocationPrefix(prefix string) *MethodInvocation {
	c := *m
	if c.target != nil {
		c.target = c.target.withPrefix(prefix)
	} else {
		c.prefix = prefix
	}
	return &c
}

// WithArgs returns a copy of the invocation with the given argument list.
func (m *MethodInvocation) WithArgs(args []Expression) *MethodInvocation {
	c := *m
	c.args = args
	return &c
}

func (m *MethodInvocation) printTo(sb *strings.Builder) {
	sb.WriteString(m.prefix)
	if m.target != nil {
		m.target.printTo(sb)
		sb.WriteString(m.namePrefix)
	}
	sb.WriteString(m.name)
	if m.parens {
		sb.WriteByte('(')
	}
	for i, a := range m.args {
		if i > 0 {
			sb.WriteByte(',')
		}
		a.printTo(sb)
	}
	if m.parens {
		sb.WriteByte(')')
	}
}

// Literal is a string or number literal. Source keeps the verbatim text,
// quotes included, so the original quote style survives any rewrite.
type Literal struct {
	prefix string
	source string
}

// NewLiteral creates a literal from its verbatim source text.
func NewLiteral(prefix, source string) *Literal {
	return &Literal{prefix: prefix, source: source}
}

func (l *Literal) Prefix() string { return l.prefix }
func (l *Literal) Source() string { return l.source }

// IsString reports whether the literal is a quoted string.
func (l *Literal) IsString() bool {
	return len(l.source) > 0 && (l.source[0] == '\'' || l.source[0] == '"')
}

// Value returns the literal value with string quotes stripped.
func (l *Literal) Value() string {
	if l.IsString() && len(l.source) >= 2 {
		return l.source[1 : len(l.source)-1]
	}
	return l.source
}

func (l *Literal) withPrefix(prefix string) Expression {
	c := *l
	c.prefix = prefix
	return &c
}

func (l *Literal) printTo(sb *strings.Builder) {
	sb.WriteString(l.prefix)
	sb.WriteString(l.source)
}

// Ident is a bare identifier in value position, e.g. `false` in
// `id 'x' apply false`.
type Ident struct {
	prefix string
	name   string
}

// NewIdent creates an identifier expression.
func NewIdent(prefix, name string) *Ident { return &Ident{prefix: prefix, name: name} }

func (i *Ident) Prefix() string { return i.prefix }
func (i *Ident) Name() string   { return i.name }

func (i *Ident) withPrefix(prefix string) Expression {
	c := *i
	c.prefix = prefix
	return &c
}

func (i *Ident) printTo(sb *strings.Builder) {
	sb.WriteString(i.prefix)
	sb.WriteString(i.name)
}

// Closure is a brace-delimited block in argument position, e.g. the body of
// `plugins { ... }`.
type Closure struct {
	prefix string
	body   *Block
}

// NewClosure creates a closure with the given body.
func NewClosure(prefix string, body *Block) *Closure {
	return &Closure{prefix: prefix, body: body}
}

func (c *Closure) Prefix() string { return c.prefix }
func (c *Closure) Body() *Block   { return c.body }

// WithBody returns a copy of the closure with the given body.
func (c *Closure) WithBody(body *Block) *Closure {
	cp := *c
	cp.body = body
	return &cp
}

func (c *Closure) withPrefix(prefix string) Expression {
	cp := *c
	cp.prefix = prefix
	return &cp
}

func (c *Closure) printTo(sb *strings.Builder) {
	sb.WriteString(c.prefix)
	sb.WriteByte('{')
	for _, s := range c.body.stmts {
		s.printTo(sb)
	}
	sb.WriteString(c.body.end)
	sb.WriteByte('}')
}

// Block is the statement list of a closure body.
type Block struct {
	stmts []Statement
	end   string // whitespace before the closing brace
}

// NewBlock creates a block.
func NewBlock(stmts []Statement, end string) *Block {
	return &Block{stmts: stmts, end: end}
}

func (b *Block) Statements() []Statement { return b.stmts }
func (b *Block) End() string             { return b.end }

// WithStatements returns a copy of the block with the given statement list.
func (b *Block) WithStatements(stmts []Statement) *Block {
	c := *b
	c.stmts = stmts
	return &c
}

// Reformat returns a copy of the block with every statement on its own line
// at the given indent and the closing brace on a fresh line.
func (b *Block) Reformat(indent string) *Block {
	stmts := make([]Statement, len(b.stmts))
	for i, s := range b.stmts {
		stmts[i] = s.WithPrefix("\n" + indent)
	}
	return &Block{stmts: stmts, end: "\n"}
}

// Return is an explicit `return <expr>` statement, seen as the trailing
// statement of some closure bodies.
type Return struct {
	prefix string
	expr   Expression
}

// NewReturn creates a return statement.
func NewReturn(prefix string, expr Expression) *Return {
	return &Return{prefix: prefix, expr: expr}
}

func (r *Return) Prefix() string         { return r.prefix }
func (r *Return) Expression() Expression { return r.expr }

func (r *Return) WithPrefix(prefix string) Statement {
	c := *r
	c.prefix = prefix
	return &c
}

func (r *Return) printTo(sb *strings.Builder) {
	sb.WriteString(r.prefix)
	sb.WriteString("return")
	r.expr.printTo(sb)
}

// ExpressionStatement adapts an expression into statement position. It is
// produced when a trailing `return expr` is converted into a bare trailing
// expression before appending to a closure body.
type ExpressionStatement struct {
	prefix string
	expr   Expression
}

// NewExpressionStatement wraps an expression as a statement. The expression's
// own leading whitespace is replaced by the statement prefix.
func NewExpressionStatement(prefix string, expr Expression) *ExpressionStatement {
	return &ExpressionStatement{prefix: prefix, expr: expr.withPrefix("")}
}

func (e *ExpressionStatement) Prefix() string         { return e.prefix }
func (e *ExpressionStatement) Expression() Expression { return e.expr }

func (e *ExpressionStatement) WithPrefix(prefix string) Statement {
	c := *e
	c.prefix = prefix
	return &c
}

func (e *ExpressionStatement) printTo(sb *strings.Builder) {
	sb.WriteString(e.prefix)
	e.expr.printTo(sb)
}

// Raw is a verbatim statement outside the recognized subset (assignments,
// named-argument calls, property chains, ...). Text holds everything after
// the leading whitespace, exactly as written.
type Raw struct {
	prefix string
	text   string
}

// NewRaw creates a verbatim statement.
func NewRaw(prefix, text string) *Raw { return &Raw{prefix: prefix, text: text} }

func (r *Raw) Prefix() string { return r.prefix }
func (r *Raw) Text() string   { return r.text }

func (r *Raw) WithPrefix(prefix string) Statement {
	c := *r
	c.prefix = prefix
	return &c
}

func (r *Raw) printTo(sb *strings.Builder) {
	sb.WriteString(r.prefix)
	sb.WriteString(r.text)
}
