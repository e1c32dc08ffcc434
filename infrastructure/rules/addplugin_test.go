package rules_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/groovy"
	"github.com/ajturnerora/rewrite/infrastructure/rules"
	testdoubles "github.com/ajturnerora/rewrite/test"
)

const pluginID = "com.example.greeting"

var repos = []domain.Repository{{ID: "portal", URI: "https://plugins.example.com/m2"}}

func parse(t *testing.T, path, source string) *groovy.SourceFile {
	t.Helper()
	file, err := groovy.NewParser().ParseFile(path, source)
	require.NoError(t, err)
	return file
}

func newRule(version string, fetcher domain.MetadataFetcher) *rules.AddPlugin {
	return rules.NewAddPlugin(pluginID, version, "", repos, fetcher, groovy.NewParser())
}

func TestAddPluginInsertion(t *testing.T) {
	t.Parallel()

	t.Run("should insert a versionless block before all statements", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Equal(
			t,
			"plugins {\n    id 'com.example.greeting'\n}\n\nrepositories {\n    mavenCentral()\n}\n",
			result.Print(),
		)
	})

	t.Run("should insert a resolved version", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		fetcher := &testdoubles.StubMetadataFetcher{
			Metadata: domain.RepositoryMetadata{Versions: []string{"1.0.0", "1.1.0"}},
		}
		rule := newRule("latest.release", fetcher)

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.Print(), "id 'com.example.greeting' version '1.1.0'")
		assert.Len(t, fetcher.Requests, 1)
	})

	t.Run("should insert an exact version without a metadata fetch", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		fetcher := &testdoubles.StubMetadataFetcher{}
		rule := newRule("2.3.4", fetcher)

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.Print(), "id 'com.example.greeting' version '2.3.4'")
		assert.Empty(t, fetcher.Requests)
	})

	t.Run("should insert into an empty file", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Equal(t, "plugins {\n    id 'com.example.greeting'\n}", result.Print())
	})
}

func TestAddPluginShortCircuit(t *testing.T) {
	t.Parallel()

	t.Run("should return the tree unchanged when the plugin is already declared", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "plugins {\n    id 'com.example.greeting' version '0.9.0'\n}\n")
		fetcher := &testdoubles.StubMetadataFetcher{}
		rule := newRule("latest.release", fetcher)

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Same(t, file, result)
		assert.Empty(t, fetcher.Requests, "version resolution must not run for a declared plugin")
	})

	t.Run("should be idempotent", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		fetcher := &testdoubles.StubMetadataFetcher{
			Metadata: domain.RepositoryMetadata{Versions: []string{"1.0.0"}},
		}
		rule := newRule("latest.release", fetcher)

		// when
		once, err := rule.Apply(context.Background(), file)
		require.NoError(t, err)
		twice, err := rule.Apply(context.Background(), once)

		// then
		require.NoError(t, err)
		assert.Same(t, once, twice)
		assert.Len(t, fetcher.Requests, 1, "metadata must be fetched only on first application")
	})
}

func TestAddPluginQuoteHarmonization(t *testing.T) {
	t.Parallel()

	t.Run("should prefer single quotes when they are the majority", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle",
			"plugins {\n    id 'a'\n    id 'b'\n    id 'c'\n    id \"d\"\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.Print(), "id 'com.example.greeting'")
	})

	t.Run("should prefer double quotes when they are the strict majority", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle",
			"plugins {\n    id 'a'\n    id \"b\"\n    id \"c\"\n    id \"d\"\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.Print(), "id \"com.example.greeting\"")
	})

	t.Run("should prefer single quotes on a tie", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle",
			"plugins {\n    id 'a'\n    id \"b\"\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.Print(), "id 'com.example.greeting'")
	})

	t.Run("should prefer single quotes when no declarations exist", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Contains(t, result.Print(), "id 'com.example.greeting'")
	})
}

func TestAddPluginMetadataFailure(t *testing.T) {
	t.Parallel()

	t.Run("should warn instead of inserting when metadata is unavailable", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		fetcher := &testdoubles.StubMetadataFetcher{
			Err: &domain.MetadataUnavailableError{
				Coordinate: domain.GroupArtifact{Group: pluginID},
				Err:        errors.New("connection refused"),
			},
		}
		rule := newRule("latest.release", fetcher)

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.NotContains(t, result.Print(), "plugins {")
		require.Len(t, result.Markers(), 1)
		assert.Contains(t, result.Markers()[0].Message(), pluginID)
	})

	t.Run("should converge under repeated metadata failure", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "repositories {\n    mavenCentral()\n}\n")
		fetcher := &testdoubles.StubMetadataFetcher{
			Err: &domain.MetadataUnavailableError{
				Coordinate: domain.GroupArtifact{Group: pluginID},
				Err:        errors.New("connection refused"),
			},
		}
		rule := newRule("latest.release", fetcher)

		// when
		once, err := rule.Apply(context.Background(), file)
		require.NoError(t, err)
		twice, err := rule.Apply(context.Background(), once)

		// then
		require.NoError(t, err)
		assert.Same(t, once, twice, "an identical warning must not grow the tree")
	})
}

func TestAddPluginSettingsOrdering(t *testing.T) {
	t.Parallel()

	t.Run("should insert after a leading pluginManagement call", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "settings.gradle",
			"pluginManagement {\n    repositories {\n        gradlePluginPortal()\n    }\n}\nrootProject.name = 'app'\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Equal(
			t,
			"pluginManagement {\n    repositories {\n        gradlePluginPortal()\n    }\n}\n\n"+
				"plugins {\n    id 'com.example.greeting'\n}\n\nrootProject.name = 'app'\n",
			result.Print(),
		)
	})

	t.Run("should insert before all statements when pluginManagement is not first", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "settings.gradle", "rootProject.name = 'app'\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Equal(
			t,
			"plugins {\n    id 'com.example.greeting'\n}\n\nrootProject.name = 'app'\n",
			result.Print(),
		)
	})
}

func TestAddPluginClosureMerge(t *testing.T) {
	t.Parallel()

	t.Run("should append to an existing plugins block", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle",
			"plugins {\n    id 'java'\n}\n\ngroup = 'com.example'\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Equal(
			t,
			"plugins {\n    id 'java'\n    id 'com.example.greeting'\n}\n\ngroup = 'com.example'\n",
			result.Print(),
		)
	})

	t.Run("should not duplicate original body statements", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "plugins {\n    id 'java'\n    id 'groovy'\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		decls := groovy.FindPluginDeclarations(result.(*groovy.SourceFile))
		assert.Equal(t, []domain.PluginDeclaration{
			{ID: "java"},
			{ID: "groovy"},
			{ID: pluginID},
		}, decls)
	})

	t.Run("should convert a trailing return before appending", func(t *testing.T) {
		t.Parallel()

		// given
		file := parse(t, "build.gradle", "plugins {\n    return id 'java'\n}\n")
		rule := newRule("", &testdoubles.StubMetadataFetcher{})

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Equal(
			t,
			"plugins {\n    id 'java'\n    id 'com.example.greeting'\n}\n",
			result.Print(),
		)
	})

	t.Run("should skip trees of other variants", func(t *testing.T) {
		t.Parallel()

		// given
		rule := newRule("", &testdoubles.StubMetadataFetcher{})
		file := &testdoubles.FakeSourceFile{Type: "Maven", Path: "pom.xml"}

		// when
		result, err := rule.Apply(context.Background(), file)

		// then
		require.NoError(t, err)
		assert.Same(t, file, result)
	})
}
