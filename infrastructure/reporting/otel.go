// Package reporting delivers engine observations to OpenTelemetry metric
// instruments. The engine itself has no opinion on aggregation; it only emits
// per-application timings, per-run outcomes, and per-rule change counts.
package reporting

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ajturnerora/rewrite/domain"
)

const (
	metricRuleDuration = "rewrite.rule.duration.seconds"
	metricRunDuration  = "rewrite.run.duration.seconds"
	metricRuleChanges  = "rewrite.rule.changes"

	attrRule     = "rule"
	attrFileType = "file.type"
	attrOutcome  = "outcome"

	outcomeChanged   = "changed"
	outcomeUnchanged = "unchanged"
)

// durationBucketBoundaries covers sub-millisecond tree transforms up to
// runs dominated by remote metadata fetches.
var durationBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30}

// OTelReporter implements domain.Reporter on OpenTelemetry instruments.
// Instruments are safe for concurrent use, so one reporter may be shared
// across concurrent pipeline runs.
type OTelReporter struct {
	ruleDuration metric.Float64Histogram
	runDuration  metric.Float64Histogram
	ruleChanges  metric.Int64Counter
}

var _ domain.Reporter = (*OTelReporter)(nil)

// NewOTelReporter creates the engine's instruments from the given meter.
func NewOTelReporter(meter metric.Meter) (*OTelReporter, error) {
	ruleDuration, err := meter.Float64Histogram(
		metricRuleDuration,
		metric.WithDescription("Time to apply a single rule to a source tree"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		metricRunDuration,
		metric.WithDescription("Time to execute a full rewriting plan over all cycles"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, err
	}

	ruleChanges, err := meter.Int64Counter(
		metricRuleChanges,
		metric.WithDescription("Number of runs in which a rule changed the tree"),
		metric.WithUnit("{change}"),
	)
	if err != nil {
		return nil, err
	}

	return &OTelReporter{
		ruleDuration: ruleDuration,
		runDuration:  runDuration,
		ruleChanges:  ruleChanges,
	}, nil
}

func (r *OTelReporter) RuleApplied(
	ctx context.Context,
	ruleName string,
	tags map[string]string,
	fileType string,
	elapsed time.Duration,
) {
	attrs := make([]attribute.KeyValue, 0, len(tags)+2)
	attrs = append(attrs,
		attribute.String(attrRule, ruleName),
		attribute.String(attrFileType, fileType),
	)
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.ruleDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

func (r *OTelReporter) RunCompleted(
	ctx context.Context,
	fileType string,
	changed bool,
	elapsed time.Duration,
) {
	outcome := outcomeUnchanged
	if changed {
		outcome = outcomeChanged
	}
	r.runDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String(attrFileType, fileType),
		attribute.String(attrOutcome, outcome),
	))
}

func (r *OTelReporter) RuleChanged(ctx context.Context, ruleName, fileType string) {
	r.ruleChanges.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrRule, ruleName),
		attribute.String(attrFileType, fileType),
	))
}
