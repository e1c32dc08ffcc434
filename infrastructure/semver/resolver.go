package semver

import (
	"context"
	"fmt"

	"github.com/ajturnerora/rewrite/domain"
)

// gradlePluginMarkerSuffix is the artifact-id suffix of the Gradle plugin
// marker convention: plugin "x" publishes metadata under "x:x.gradle.plugin".
const gradlePluginMarkerSuffix = ".gradle.plugin"

// Resolve determines the target version for a plugin from a desired-version
// token, the currently declared version, and remote metadata.
//
// An Exact token short-circuits to the literal with no metadata lookup.
// "latest.patch" yields nothing (without a lookup) unless current is a full
// major.minor.patch version. All other variants fetch metadata from the
// first repository that answers, in the caller-supplied order, and ask the
// comparator for an upgrade; a fetch failure surfaces as
// *domain.MetadataUnavailableError. Identical inputs against an identical
// metadata snapshot always produce the identical result.
func Resolve(
	ctx context.Context,
	pluginID string,
	currentVersion string,
	desiredVersion string,
	versionPattern string,
	repositories []domain.Repository,
	fetcher domain.MetadataFetcher,
) (string, bool, error) {
	comparator, err := Validate(desiredVersion, versionPattern)
	if err != nil {
		return "", false, fmt.Errorf("plugin %s: %w", pluginID, err)
	}

	switch comparator.Kind() {
	case Exact:
		return comparator.ExactVersion(), true, nil
	case LatestPatch:
		// A patch upgrade can only be derived from a semantic current version.
		if !IsSemanticVersion(currentVersion) {
			return "", false, nil
		}
	}

	coordinate := domain.GroupArtifact{
		Group:    pluginID,
		Artifact: pluginID + gradlePluginMarkerSuffix,
	}
	metadata, err := fetcher.FetchMetadata(ctx, coordinate, repositories)
	if err != nil {
		return "", false, err
	}

	version, ok := comparator.Upgrade(currentVersion, metadata.Versions)
	return version, ok, nil
}
