package groovy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/groovy"
)

func parseFile(t *testing.T, source string) *groovy.SourceFile {
	t.Helper()
	file, err := groovy.NewParser().ParseFile("build.gradle", source)
	require.NoError(t, err)
	return file
}

func TestFindPlugin(t *testing.T) {
	t.Parallel()

	t.Run("should find a versionless declaration", func(t *testing.T) {
		t.Parallel()

		// given
		file := parseFile(t, "plugins {\n    id 'java'\n}\n")

		// when
		found := groovy.FindPlugin(file, "java")

		// then
		assert.True(t, found)
	})

	t.Run("should find a versioned declaration by id alone", func(t *testing.T) {
		t.Parallel()

		// given
		file := parseFile(t, "plugins {\n    id 'com.example.greeting' version '1.0.0'\n}\n")

		// when
		found := groovy.FindPlugin(file, "com.example.greeting")

		// then
		assert.True(t, found)
	})

	t.Run("should not find an undeclared plugin", func(t *testing.T) {
		t.Parallel()

		// given
		file := parseFile(t, "plugins {\n    id 'java'\n}\n")

		// when
		found := groovy.FindPlugin(file, "com.example.greeting")

		// then
		assert.False(t, found)
	})
}

func TestFindPluginDeclarations(t *testing.T) {
	t.Parallel()

	t.Run("should collect declarations with and without versions", func(t *testing.T) {
		t.Parallel()

		// given
		file := parseFile(t, "plugins {\n    id 'java'\n    id 'com.example.greeting' version '1.0.0'\n}\n")

		// when
		decls := groovy.FindPluginDeclarations(file)

		// then
		assert.Equal(t, []domain.PluginDeclaration{
			{ID: "java"},
			{ID: "com.example.greeting", Version: "1.0.0"},
		}, decls)
	})
}

func TestCountQuoteStyles(t *testing.T) {
	t.Parallel()

	t.Run("should count quote styles across all id call sites", func(t *testing.T) {
		t.Parallel()

		// given
		file := parseFile(t, "plugins {\n    id 'java'\n    id 'groovy'\n    id \"com.example.one\"\n}\n")

		// when
		single, double := groovy.CountQuoteStyles(file)

		// then
		assert.Equal(t, 2, single)
		assert.Equal(t, 1, double)
	})
}

func TestSourceFileMarkers(t *testing.T) {
	t.Parallel()

	t.Run("should not duplicate an identical marker", func(t *testing.T) {
		t.Parallel()

		// given
		file := parseFile(t, "plugins {\n    id 'java'\n}\n")
		warning := domain.Warning{Text: "metadata unavailable"}

		// when
		once := file.WithMarker(warning)
		twice := once.(*groovy.SourceFile).WithMarker(warning)

		// then
		assert.NotSame(t, file, once)
		assert.Same(t, once, twice)
		assert.Len(t, twice.Markers(), 1)
	})
}
