// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations — no mock frameworks.
package testdoubles

import (
	"context"
	"sync"
	"time"

	"github.com/ajturnerora/rewrite/domain"
)

// ---------------------------------------------------------------------------
// StubMetadataFetcher
// ---------------------------------------------------------------------------

// StubMetadataFetcher implements domain.MetadataFetcher with canned answers.
// Inspect Requests to verify whether (and for what) metadata was fetched.
type StubMetadataFetcher struct {
	Metadata domain.RepositoryMetadata
	Err      error

	// spy: coordinates that were requested
	Requests []domain.GroupArtifact
}

var _ domain.MetadataFetcher = (*StubMetadataFetcher)(nil)

func (f *StubMetadataFetcher) FetchMetadata(
	_ context.Context,
	coordinate domain.GroupArtifact,
	_ []domain.Repository,
) (domain.RepositoryMetadata, error) {
	f.Requests = append(f.Requests, coordinate)
	if f.Err != nil {
		return domain.RepositoryMetadata{}, f.Err
	}
	return f.Metadata, nil
}

// ---------------------------------------------------------------------------
// SpyReporter
// ---------------------------------------------------------------------------

// RuleApplication is one recorded RuleApplied call.
type RuleApplication struct {
	RuleName string
	Tags     map[string]string
	FileType string
	Elapsed  time.Duration
}

// RunCompletion is one recorded RunCompleted call.
type RunCompletion struct {
	FileType string
	Changed  bool
	Elapsed  time.Duration
}

// RuleIncrement is one recorded RuleChanged call.
type RuleIncrement struct {
	RuleName string
	FileType string
}

// SpyReporter implements domain.Reporter and records every observation.
// It is safe for concurrent use, matching the reporter contract.
type SpyReporter struct {
	mu           sync.Mutex
	Applications []RuleApplication
	Completions  []RunCompletion
	Increments   []RuleIncrement
}

var _ domain.Reporter = (*SpyReporter)(nil)

func (r *SpyReporter) RuleApplied(
	_ context.Context,
	ruleName string,
	tags map[string]string,
	fileType string,
	elapsed time.Duration,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Applications = append(r.Applications, RuleApplication{
		RuleName: ruleName,
		Tags:     tags,
		FileType: fileType,
		Elapsed:  elapsed,
	})
}

func (r *SpyReporter) RunCompleted(
	_ context.Context,
	fileType string,
	changed bool,
	elapsed time.Duration,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Completions = append(r.Completions, RunCompletion{
		FileType: fileType,
		Changed:  changed,
		Elapsed:  elapsed,
	})
}

func (r *SpyReporter) RuleChanged(_ context.Context, ruleName, fileType string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Increments = append(r.Increments, RuleIncrement{
		RuleName: ruleName,
		FileType: fileType,
	})
}

// ---------------------------------------------------------------------------
// FakeSourceFile
// ---------------------------------------------------------------------------

// FakeSourceFile is a minimal domain.SourceFile whose distinct instances model
// distinct tree versions. Derive is the only transform: it returns a fresh
// instance, which identity-based change detection sees as a modification.
type FakeSourceFile struct {
	Type string
	Path string
}

var _ domain.SourceFile = (*FakeSourceFile)(nil)

func (f *FakeSourceFile) FileType() string         { return f.Type }
func (f *FakeSourceFile) SourcePath() string       { return f.Path }
func (f *FakeSourceFile) Markers() []domain.Marker { return nil }
func (f *FakeSourceFile) Print() string            { return "" }

// Derive returns a new version of the file.
func (f *FakeSourceFile) Derive() *FakeSourceFile {
	clone := *f
	return &clone
}

// ---------------------------------------------------------------------------
// SpyRule
// ---------------------------------------------------------------------------

// SpyRule implements domain.Rule as a configurable spy. ApplyFunc decides the
// transform; when nil, the rule returns its input unchanged.
type SpyRule struct {
	RuleName       string
	NonIdempotent  bool
	RuleTags       map[string]string
	FollowUps      []domain.Rule
	ApplyFunc      func(ctx context.Context, file domain.SourceFile) (domain.SourceFile, error)
	ApplicationLog *[]string // optional shared log to observe ordering across rules

	// spy: number of times Apply ran
	Applications int
}

var _ domain.Rule = (*SpyRule)(nil)

func (r *SpyRule) Name() string            { return r.RuleName }
func (r *SpyRule) Idempotent() bool        { return !r.NonIdempotent }
func (r *SpyRule) Tags() map[string]string { return r.RuleTags }
func (r *SpyRule) AndThen() []domain.Rule  { return r.FollowUps }

func (r *SpyRule) Apply(ctx context.Context, file domain.SourceFile) (domain.SourceFile, error) {
	r.Applications++
	if r.ApplicationLog != nil {
		*r.ApplicationLog = append(*r.ApplicationLog, r.RuleName)
	}
	if r.ApplyFunc == nil {
		return file, nil
	}
	return r.ApplyFunc(ctx, file)
}
