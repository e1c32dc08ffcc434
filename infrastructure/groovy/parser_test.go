package groovy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajturnerora/rewrite/infrastructure/groovy"
)

const buildScript = `// build script
plugins {
    id 'java'
    id "com.github.johnrengelman.shadow" version "6.1.0"
}

group = 'com.example'
version = '1.0-SNAPSHOT'

repositories {
    mavenCentral()
}

dependencies {
    implementation 'org.apache.commons:commons-lang3:3.12.0'
}
`

func TestParserRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "should round-trip a typical build script",
			source: buildScript,
		},
		{
			name:   "should round-trip assignments as raw statements",
			source: "rootProject.name = 'my-project'\n",
		},
		{
			name:   "should round-trip named-argument calls as raw statements",
			source: "apply plugin: 'java'\n",
		},
		{
			name: "should round-trip nested closures",
			source: "pluginManagement {\n    repositories {\n        gradlePluginPortal()\n    }\n}\n",
		},
		{
			name:   "should round-trip comments and blank lines",
			source: "\n/* header */\n\n// plugins below\nplugins {\n    id 'java'\n}\n\n",
		},
		{
			name:   "should round-trip a trailing return in a closure",
			source: "plugins {\n    return id 'java'\n}\n",
		},
		{
			name:   "should round-trip an empty file",
			source: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// given
			parser := groovy.NewParser()

			// when
			file, err := parser.ParseFile("build.gradle", tt.source)

			// then
			require.NoError(t, err)
			assert.Equal(t, tt.source, file.Print())
		})
	}
}

func TestParserStatementShapes(t *testing.T) {
	t.Parallel()

	t.Run("should parse a command-style invocation chain", func(t *testing.T) {
		t.Parallel()

		// given
		parser := groovy.NewParser()

		// when
		stmts, err := parser.ParseFragment("id 'com.example.greeting' version '1.0.0'")

		// then
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		version, ok := stmts[0].(*groovy.MethodInvocation)
		require.True(t, ok)
		assert.Equal(t, "version", version.Name())
		id, ok := version.Target().(*groovy.MethodInvocation)
		require.True(t, ok)
		assert.Equal(t, "id", id.Name())
		lit, ok := id.Args()[0].(*groovy.Literal)
		require.True(t, ok)
		assert.Equal(t, "com.example.greeting", lit.Value())
	})

	t.Run("should parse a parenthesized invocation", func(t *testing.T) {
		t.Parallel()

		// given
		parser := groovy.NewParser()

		// when
		stmts, err := parser.ParseFragment(`id("com.example.greeting")`)

		// then
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		id, ok := stmts[0].(*groovy.MethodInvocation)
		require.True(t, ok)
		assert.True(t, id.Parens())
		lit, ok := id.Args()[0].(*groovy.Literal)
		require.True(t, ok)
		assert.Equal(t, `"com.example.greeting"`, lit.Source())
	})

	t.Run("should parse a closure argument into a block", func(t *testing.T) {
		t.Parallel()

		// given
		parser := groovy.NewParser()

		// when
		stmts, err := parser.ParseFragment("plugins {\n    id 'java'\n}")

		// then
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		plugins, ok := stmts[0].(*groovy.MethodInvocation)
		require.True(t, ok)
		assert.Equal(t, "plugins", plugins.Name())
		closure, ok := plugins.Args()[0].(*groovy.Closure)
		require.True(t, ok)
		assert.Len(t, closure.Body().Statements(), 1)
	})

	t.Run("should keep unrecognized statements verbatim", func(t *testing.T) {
		t.Parallel()

		// given
		parser := groovy.NewParser()

		// when
		stmts, err := parser.ParseFragment("sourceCompatibility = JavaVersion.VERSION_11")

		// then
		require.NoError(t, err)
		require.Len(t, stmts, 1)
		raw, ok := stmts[0].(*groovy.Raw)
		require.True(t, ok)
		assert.Equal(t, "sourceCompatibility = JavaVersion.VERSION_11", raw.Text())
	})

	t.Run("should fail on an empty fragment", func(t *testing.T) {
		t.Parallel()

		// given
		parser := groovy.NewParser()

		// when
		_, err := parser.ParseFragment("   \n")

		// then
		require.Error(t, err)
	})
}
