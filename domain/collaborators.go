package domain

import (
	"context"
	"time"
)

// MetadataFetcher retrieves the published version listing for a coordinate.
// Implementations try repositories in the given priority order and return the
// first successful answer. Timeout and retry policy belong to the
// implementation; the engine imposes none.
type MetadataFetcher interface {
	FetchMetadata(ctx context.Context, coordinate GroupArtifact, repositories []Repository) (RepositoryMetadata, error)
}

// Reporter receives engine observations. The engine has no opinion on
// aggregation; one Reporter instance is reused sequentially across all rule
// applications of a run and must be safe for concurrent use when independent
// runs share it.
type Reporter interface {
	// RuleApplied is called once per rule application, including follow-ups.
	RuleApplied(ctx context.Context, ruleName string, tags map[string]string, fileType string, elapsed time.Duration)

	// RunCompleted is called once per pipeline run.
	RunCompleted(ctx context.Context, fileType string, changed bool, elapsed time.Duration)

	// RuleChanged is called once per run for every rule name that changed the tree.
	RuleChanged(ctx context.Context, ruleName string, fileType string)
}
