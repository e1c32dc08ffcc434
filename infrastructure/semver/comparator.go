// Package semver interprets plugin version-selection tokens and resolves
// upgrade targets against remote repository metadata.
package semver

import (
	"fmt"
	"regexp"
	"strings"

	mversion "github.com/Masterminds/semver/v3"
	xsemver "golang.org/x/mod/semver"
)

// Kind enumerates the comparator variants. The variant is selected once from
// the desired-version token; resolution then dispatches on it.
type Kind int

const (
	// Exact returns the requested literal verbatim, without metadata lookup.
	Exact Kind = iota
	// LatestRelease picks the newest non-prerelease version above current.
	LatestRelease
	// LatestPatch picks the newest version sharing current's major.minor.
	LatestPatch
	// Range picks the newest version above current satisfying a constraint.
	Range
)

const (
	tokenLatestRelease = "latest.release"
	tokenLatestPatch   = "latest.patch"
)

// exactVersionPattern matches fixed versions such as "2", "2.3", "2.3.4", or
// "2.3.4-rc.1". Anything else that is not a known token is treated as a range
// expression.
var exactVersionPattern = regexp.MustCompile(`^\d+(\.\d+){0,2}([.\-+][A-Za-z0-9.\-+]+)?$`)

// semanticVersionPattern matches full major.minor.patch versions, the only
// shape "latest.patch" can upgrade from.
var semanticVersionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Comparator is one strategy for interpreting a version-selection token.
type Comparator struct {
	kind       Kind
	exact      string
	pattern    string // optional suffix pattern candidates must carry
	constraint *mversion.Constraints
}

// Validate interprets a desired-version token, selecting exactly one variant.
// A blank token selects LatestRelease. An unparseable range expression is an
// error.
func Validate(token, versionPattern string) (*Comparator, error) {
	token = strings.TrimSpace(token)
	switch {
	case token == "" || token == tokenLatestRelease:
		return &Comparator{kind: LatestRelease, pattern: versionPattern}, nil
	case token == tokenLatestPatch:
		return &Comparator{kind: LatestPatch, pattern: versionPattern}, nil
	case !isWildcardRange(token) && exactVersionPattern.MatchString(token):
		return &Comparator{kind: Exact, exact: token}, nil
	default:
		constraint, err := mversion.NewConstraint(token)
		if err != nil {
			return nil, fmt.Errorf("invalid version selector %q: %w", token, err)
		}
		return &Comparator{kind: Range, pattern: versionPattern, constraint: constraint}, nil
	}
}

// Kind returns the selected variant.
func (c *Comparator) Kind() Kind { return c.kind }

// ExactVersion returns the literal for an Exact comparator.
func (c *Comparator) ExactVersion() string { return c.exact }

// Upgrade picks the newest version from available that this comparator
// accepts as an upgrade over current. Malformed or exotic candidate versions
// are skipped, never reported as errors.
func (c *Comparator) Upgrade(current string, available []string) (string, bool) {
	currentNorm := normalize(current)
	if !xsemver.IsValid(currentNorm) {
		currentNorm = "v0"
	}

	best := ""
	bestNorm := ""
	for _, candidate := range available {
		stripped, ok := c.stripPattern(candidate)
		if !ok {
			continue
		}
		candidateNorm := normalize(stripped)
		if !xsemver.IsValid(candidateNorm) {
			continue
		}
		if !c.accepts(current, stripped, candidateNorm) {
			continue
		}
		if xsemver.Compare(candidateNorm, currentNorm) <= 0 {
			continue
		}
		if best == "" || xsemver.Compare(candidateNorm, bestNorm) > 0 {
			best = candidate
			bestNorm = candidateNorm
		}
	}
	return best, best != ""
}

func (c *Comparator) accepts(current, candidate, candidateNorm string) bool {
	switch c.kind {
	case LatestRelease:
		return xsemver.Prerelease(candidateNorm) == ""
	case LatestPatch:
		return xsemver.MajorMinor(candidateNorm) == xsemver.MajorMinor(normalize(current))
	case Range:
		v, err := mversion.NewVersion(candidate)
		if err != nil {
			return false
		}
		return c.constraint.Check(v)
	default:
		return false
	}
}

// isWildcardRange reports whether the token's last dot-component is a
// wildcard, as in "1.2.x", "1.X", or "*". The exact-literal pattern would
// otherwise swallow "1.2.x" as a fixed version with suffix ".x"; wildcards
// always select a range constraint.
func isWildcardRange(token string) bool {
	parts := strings.Split(token, ".")
	switch parts[len(parts)-1] {
	case "x", "X", "*":
		return true
	}
	return false
}

// stripPattern enforces the optional version-pattern suffix: when set, only
// candidates carrying the suffix qualify, and the suffix is removed before
// semantic comparison.
func (c *Comparator) stripPattern(candidate string) (string, bool) {
	if c.pattern == "" {
		return candidate, true
	}
	if !strings.HasSuffix(candidate, c.pattern) {
		return "", false
	}
	return strings.TrimSuffix(candidate, c.pattern), true
}

// IsSemanticVersion reports whether v is a plain major.minor.patch version.
func IsSemanticVersion(v string) bool {
	return semanticVersionPattern.MatchString(v)
}

func normalize(v string) string {
	v = strings.TrimSpace(v)
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}
