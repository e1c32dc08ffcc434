// Package application orchestrates rule discovery and the fixed-point
// rewriting pipeline over parsed source files.
package application

import (
	"context"
	"fmt"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/reporting"
)

// DefaultMaxCycles bounds the fixed-point loop when the configuration does
// not say otherwise.
const DefaultMaxCycles = 10

// Pipeline runs a rule set over a source file until no rule changes the tree
// anymore, or until the cycle bound is reached.
type Pipeline struct {
	reporter  domain.Reporter
	maxCycles int
}

// NewPipeline creates a pipeline. A maxCycles of zero selects the default
// bound; a nil reporter discards all observations.
func NewPipeline(reporter domain.Reporter, maxCycles int) *Pipeline {
	if reporter == nil {
		reporter = reporting.Noop{}
	}
	if maxCycles <= 0 {
		maxCycles = DefaultMaxCycles
	}
	return &Pipeline{
		reporter:  reporter,
		maxCycles: maxCycles,
	}
}

// Run applies the rules cycle by cycle until a full cycle leaves the tree
// untouched. Change is detected by identity: a rule that returns its input
// unchanged contributes nothing to the cycle. Rules declared non-idempotent
// run only in the first cycle. A rule error aborts the whole run.
func (p *Pipeline) Run(
	ctx context.Context,
	file domain.SourceFile,
	rules []domain.Rule,
) (domain.Change, error) {
	start := time.Now()
	changedNames := make(map[string]struct{})

	acc := file
	for cycle := 0; cycle < p.maxCycles; cycle++ {
		cycleChanged := false

		for _, rule := range rules {
			if cycle > 0 && !rule.Idempotent() {
				continue
			}

			before := acc
			after, err := p.applyDepthFirst(ctx, rule, acc)
			if err != nil {
				return domain.Change{}, err
			}
			acc = after

			if acc != before {
				cycleChanged = true
				if name := rule.Name(); name != "" {
					changedNames[name] = struct{}{}
				}
			}
		}

		if !cycleChanged {
			logger.Debugf("Pipeline converged after %d cycle(s) on %s", cycle+1, file.SourcePath())
			break
		}
	}

	for name := range changedNames {
		p.reporter.RuleChanged(ctx, name, file.FileType())
	}
	p.reporter.RunCompleted(ctx, file.FileType(), len(changedNames) > 0, time.Since(start))

	return domain.Change{
		Original:         file,
		Modified:         acc,
		ChangedRuleNames: changedNames,
	}, nil
}

// applyDepthFirst applies one top-level rule and its follow-up chain using an
// explicit stack: each rule's follow-ups run, in declaration order, on that
// rule's own output before any sibling runs.
func (p *Pipeline) applyDepthFirst(
	ctx context.Context,
	rule domain.Rule,
	file domain.SourceFile,
) (domain.SourceFile, error) {
	acc := file
	stack := []domain.Rule{rule}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ruleStart := time.Now()
		after, err := current.Apply(ctx, acc)
		p.reporter.RuleApplied(ctx, current.Name(), current.Tags(), file.FileType(), time.Since(ruleStart))
		if err != nil {
			return nil, fmt.Errorf("rule %q failed on %s: %w", current.Name(), file.SourcePath(), err)
		}
		acc = after

		followUps := current.AndThen()
		for i := len(followUps) - 1; i >= 0; i-- {
			stack = append(stack, followUps[i])
		}
	}

	return acc, nil
}
