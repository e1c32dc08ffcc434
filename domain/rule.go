package domain

import "context"

// Rule is a named tree-to-tree transform representing one rewriting concern.
type Rule interface {
	// Name identifies the rule in change reports and metrics. A rule with an
	// empty name still runs but never appears in a Change.
	Name() string

	// Idempotent reports whether the rule may safely run on every cycle.
	// A non-idempotent rule is trusted to converge in a single pass and is
	// skipped after cycle 0.
	Idempotent() bool

	// Tags returns key/value metadata attached to this rule's metrics.
	Tags() map[string]string

	// AndThen returns follow-up rules applied depth-first to this rule's own
	// output, forming a linear pipeline per top-level rule.
	AndThen() []Rule

	// Apply transforms the tree. It must return its input unchanged (same
	// identity) when it has nothing to do. An error aborts the whole run.
	Apply(ctx context.Context, file SourceFile) (SourceFile, error)
}

// Change is the result of one pipeline run over a single source file.
type Change struct {
	Original SourceFile
	Modified SourceFile

	// ChangedRuleNames holds the names of the top-level rules that changed the
	// tree in at least one cycle. Follow-up rules are never recorded here.
	ChangedRuleNames map[string]struct{}
}

// Changed reports whether any rule modified the tree.
func (c Change) Changed() bool { return len(c.ChangedRuleNames) > 0 }
