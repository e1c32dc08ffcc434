// Package rules contains the concrete rewriting rules and the registry the
// engine discovers them from.
package rules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/groovy"
	"github.com/ajturnerora/rewrite/infrastructure/semver"
)

const (
	addPluginName = "AddPlugin"

	// pluginsEntryPoint is the closure-based declaration call recognized in
	// both build scripts and settings scripts.
	pluginsEntryPoint = "plugins"

	// pluginManagementCall must precede plugin declarations in a settings
	// script, since declared plugins may depend on its repositories.
	pluginManagementCall = "pluginManagement"

	bodyIndent = "    "
)

// FragmentParser synthesizes a statement list from isolated source text.
// A failure on internally synthesized text is an invariant violation and is
// never swallowed.
type FragmentParser interface {
	ParseFragment(source string) ([]groovy.Statement, error)
}

// AddPlugin inserts a plugin declaration into a Gradle script. The rule is
// idempotent: its safety under repeated application derives entirely from the
// presence short-circuit, since the remaining steps perform network and
// formatting work that must not re-run once the plugin is declared.
type AddPlugin struct {
	pluginID       string
	version        string
	versionPattern string
	repositories   []domain.Repository
	fetcher        domain.MetadataFetcher
	parser         FragmentParser
}

var _ domain.Rule = (*AddPlugin)(nil)

// NewAddPlugin creates the rule. An empty version requests a versionless
// declaration and skips resolution entirely.
func NewAddPlugin(
	pluginID string,
	version string,
	versionPattern string,
	repositories []domain.Repository,
	fetcher domain.MetadataFetcher,
	parser FragmentParser,
) *AddPlugin {
	return &AddPlugin{
		pluginID:       pluginID,
		version:        version,
		versionPattern: versionPattern,
		repositories:   repositories,
		fetcher:        fetcher,
		parser:         parser,
	}
}

func (r *AddPlugin) Name() string     { return addPluginName }
func (r *AddPlugin) Idempotent() bool { return true }

func (r *AddPlugin) Tags() map[string]string {
	return map[string]string{"plugin.id": r.pluginID}
}

func (r *AddPlugin) AndThen() []domain.Rule { return nil }

func (r *AddPlugin) Apply(ctx context.Context, file domain.SourceFile) (domain.SourceFile, error) {
	cu, ok := file.(*groovy.SourceFile)
	if !ok {
		return file, nil
	}

	if groovy.FindPlugin(cu, r.pluginID) {
		return file, nil
	}

	version := ""
	if r.version != "" {
		resolved, found, err := semver.Resolve(
			ctx, r.pluginID, "0", r.version, r.versionPattern, r.repositories, r.fetcher,
		)
		var unavailable *domain.MetadataUnavailableError
		if errors.As(err, &unavailable) {
			return cu.WithMarker(domain.Warning{
				Text: fmt.Sprintf("unable to add plugin %s: %v", r.pluginID, unavailable),
			}), nil
		}
		if err != nil {
			return nil, err
		}
		if found {
			version = resolved
		}
	}

	delimiter := chooseDelimiter(cu)
	fragment := buildFragment(r.pluginID, version, delimiter)
	stmts, err := r.parser.ParseFragment(fragment)
	if err != nil {
		return nil, fmt.Errorf("synthesized fragment %q did not parse: %w", fragment, err)
	}

	if hasPluginsEntryPoint(cu) {
		return mergeIntoEntryPoints(cu, stmts)
	}
	return insertTopLevel(cu, stmts), nil
}

// chooseDelimiter harmonizes with the quote style of existing declarations:
// double quotes only when strictly more double-quoted id call sites exist,
// single quotes otherwise (including ties and files with no declarations).
func chooseDelimiter(cu *groovy.SourceFile) string {
	single, double := groovy.CountQuoteStyles(cu)
	if single < double {
		return `"`
	}
	return `'`
}

func buildFragment(pluginID, version, delimiter string) string {
	var sb strings.Builder
	sb.WriteString("plugins {\n")
	sb.WriteString(bodyIndent)
	sb.WriteString("id ")
	sb.WriteString(delimiter + pluginID + delimiter)
	if version != "" {
		sb.WriteString(" version ")
		sb.WriteString(delimiter + version + delimiter)
	}
	sb.WriteString("\n}")
	return sb.String()
}

// hasPluginsEntryPoint reports whether the script already declares plugins
// through a top-level closure-based entry point.
func hasPluginsEntryPoint(cu *groovy.SourceFile) bool {
	for _, stat := range cu.Statements() {
		m, ok := groovy.IsInvocationNamed(stat, pluginsEntryPoint)
		if !ok {
			continue
		}
		for _, arg := range m.Args() {
			if _, isClosure := arg.(*groovy.Closure); isClosure {
				return true
			}
		}
	}
	return false
}

// insertTopLevel splices the synthesized block in as new top-level
// statements: after a leading pluginManagement call in a settings script,
// before everything else otherwise, separated by a blank line either way.
func insertTopLevel(cu *groovy.SourceFile, inserted []groovy.Statement) *groovy.SourceFile {
	originals := cu.Statements()

	leadingWS := ""
	firstPrefix := ""
	if len(originals) > 0 {
		firstPrefix = originals[0].Prefix()
		leadingWS = leadingWhitespace(firstPrefix)
	}

	if cu.IsSettings() && len(originals) > 0 {
		if _, ok := groovy.IsInvocationNamed(originals[0], pluginManagementCall); ok {
			result := make([]groovy.Statement, 0, len(originals)+len(inserted))
			result = append(result, originals[0])
			result = append(result, withFirstPrefix(inserted, "\n\n"+leadingWS)...)
			result = append(result, withFirstPrefix(originals[1:], "\n\n"+firstPrefix)...)
			return cu.WithStatements(result)
		}
	}

	result := make([]groovy.Statement, 0, len(originals)+len(inserted))
	result = append(result, inserted...)
	result = append(result, withFirstPrefix(originals, "\n\n"+firstPrefix)...)
	return cu.WithStatements(result)
}

// mergeIntoEntryPoints appends the synthesized declaration as the last
// statement of every closure argument of every matching entry-point call,
// instead of adding a second top-level block. A trailing return-style final
// expression is converted to a bare expression first.
func mergeIntoEntryPoints(cu *groovy.SourceFile, inserted []groovy.Statement) (*groovy.SourceFile, error) {
	pluginDef, err := extractDeclaration(inserted)
	if err != nil {
		return nil, err
	}

	originals := cu.Statements()
	result := make([]groovy.Statement, len(originals))
	for i, stat := range originals {
		result[i] = stat
		m, ok := groovy.IsInvocationNamed(stat, pluginsEntryPoint)
		if !ok {
			continue
		}

		args := make([]groovy.Expression, len(m.Args()))
		for j, arg := range m.Args() {
			args[j] = arg
			closure, isClosure := arg.(*groovy.Closure)
			if !isClosure {
				continue
			}

			body := closure.Body()
			stmts := append([]groovy.Statement{}, body.Statements()...)
			if len(stmts) > 0 {
				if ret, isReturn := stmts[len(stmts)-1].(*groovy.Return); isReturn {
					stmts[len(stmts)-1] = bareExpression(ret)
				}
			}
			stmts = append(stmts, pluginDef)
			args[j] = closure.WithBody(body.WithStatements(stmts).Reformat(bodyIndent))
		}
		result[i] = m.WithArgs(args)
	}
	return cu.WithStatements(result), nil
}

// extractDeclaration pulls the single declaration statement out of the
// synthesized `plugins { ... }` fragment.
func extractDeclaration(inserted []groovy.Statement) (groovy.Statement, error) {
	if len(inserted) == 0 {
		return nil, errors.New("synthesized fragment has no statements")
	}
	m, ok := groovy.IsInvocationNamed(inserted[0], pluginsEntryPoint)
	if !ok {
		return nil, errors.New("synthesized fragment is not a plugins block")
	}
	for _, arg := range m.Args() {
		closure, isClosure := arg.(*groovy.Closure)
		if !isClosure {
			continue
		}
		stmts := closure.Body().Statements()
		if len(stmts) != 1 {
			return nil, fmt.Errorf("synthesized plugins block has %d statements, want 1", len(stmts))
		}
		if ret, isReturn := stmts[0].(*groovy.Return); isReturn {
			return bareExpression(ret), nil
		}
		return stmts[0], nil
	}
	return nil, errors.New("synthesized plugins block has no closure")
}

// bareExpression converts `return expr` into `expr`, keeping the return
// statement's leading whitespace.
func bareExpression(ret *groovy.Return) groovy.Statement {
	if m, ok := ret.Expression().(*groovy.MethodInvocation); ok {
		return m.WithPrefix(ret.Prefix())
	}
	return groovy.NewExpressionStatement(ret.Prefix(), ret.Expression())
}

// withFirstPrefix replaces the first statement's prefix, leaving the rest as
// they are.
func withFirstPrefix(stmts []groovy.Statement, prefix string) []groovy.Statement {
	if len(stmts) == 0 {
		return stmts
	}
	result := append([]groovy.Statement{}, stmts...)
	result[0] = result[0].WithPrefix(prefix)
	return result
}

func leadingWhitespace(s string) string {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return s[:i]
		}
	}
	return s
}
