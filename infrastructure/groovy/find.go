package groovy

import "github.com/ajturnerora/rewrite/domain"

// WalkInvocations visits every method invocation in the statement list,
// including chain targets and closure bodies, in source order.
func WalkInvocations(stmts []Statement, fn func(*MethodInvocation)) {
	for _, s := range stmts {
		switch st := s.(type) {
		case *MethodInvocation:
			walkInvocationExpr(st, fn)
		case *Return:
			walkExpr(st.expr, fn)
		case *ExpressionStatement:
			walkExpr(st.expr, fn)
		}
	}
}

func walkInvocationExpr(m *MethodInvocation, fn func(*MethodInvocation)) {
	if m.target != nil {
		walkExpr(m.target, fn)
	}
	fn(m)
	for _, a := range m.args {
		walkExpr(a, fn)
	}
}

func walkExpr(e Expression, fn func(*MethodInvocation)) {
	switch ex := e.(type) {
	case *MethodInvocation:
		walkInvocationExpr(ex, fn)
	case *Closure:
		WalkInvocations(ex.body.stmts, fn)
	}
}

// isPluginID reports whether the invocation is a plugin-declaration id call
// of the idiomatic form `id '<literal>'` / `id('<literal>')`.
func isPluginID(m *MethodInvocation) (*Literal, bool) {
	if m.name != "id" || m.target != nil || len(m.args) != 1 {
		return nil, false
	}
	lit, ok := m.args[0].(*Literal)
	if !ok || !lit.IsString() {
		return nil, false
	}
	return lit, true
}

// FindPlugin reports whether the file declares the given plugin id anywhere,
// with or without a version.
func FindPlugin(f *SourceFile, pluginID string) bool {
	for _, decl := range FindPluginDeclarations(f) {
		if decl.ID == pluginID {
			return true
		}
	}
	return false
}

// FindPluginDeclarations collects every plugin declaration in the file, in
// source order. A declaration chained with `version '<v>'` carries that
// version; anything else is versionless.
func FindPluginDeclarations(f *SourceFile) []domain.PluginDeclaration {
	var decls []domain.PluginDeclaration
	WalkInvocations(f.stmts, func(m *MethodInvocation) {
		lit, ok := isPluginID(m)
		if !ok {
			return
		}
		decl := domain.PluginDeclaration{ID: lit.Value()}
		decls = append(decls, decl)
	})
	// Attach versions from enclosing `version` chain segments.
	i := 0
	WalkInvocations(f.stmts, func(m *MethodInvocation) {
		if _, ok := isPluginID(m); ok {
			i++
			return
		}
		if m.name != "version" || len(m.args) != 1 || i == 0 {
			return
		}
		target, ok := m.target.(*MethodInvocation)
		if !ok {
			return
		}
		if _, ok := isPluginID(target); !ok {
			return
		}
		if lit, ok := m.args[0].(*Literal); ok && lit.IsString() {
			decls[i-1].Version = lit.Value()
		}
	})
	return decls
}

// CountQuoteStyles counts single-quoted vs double-quoted string literals in
// `id(...)` plugin-declaration call sites across the whole file.
func CountQuoteStyles(f *SourceFile) (single, double int) {
	WalkInvocations(f.stmts, func(m *MethodInvocation) {
		lit, ok := isPluginID(m)
		if !ok {
			return
		}
		if lit.Source()[0] == '\'' {
			single++
		} else {
			double++
		}
	})
	return single, double
}

// IsInvocationNamed reports whether the statement is a direct invocation with
// the given name.
func IsInvocationNamed(s Statement, name string) (*MethodInvocation, bool) {
	m, ok := s.(*MethodInvocation)
	if !ok || m.target != nil || m.name != name {
		return nil, false
	}
	return m, true
}
