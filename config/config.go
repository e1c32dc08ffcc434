package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ajturnerora/rewrite/domain"
)

// GradlePluginPortal is the repository consulted when none are configured.
const GradlePluginPortal = "https://plugins.gradle.org/m2"

// Config is the top-level configuration for rewrite.
type Config struct {
	MaxCycles    int                `yaml:"max_cycles"`   // 0 means the engine default
	Plugins      []PluginConfig     `yaml:"plugins"`      // Plugins to declare in build scripts
	Repositories []RepositoryConfig `yaml:"repositories"` // Metadata repositories, in priority order
}

// PluginConfig describes one plugin declaration to insert.
type PluginConfig struct {
	ID             string `yaml:"id"`
	Version        string `yaml:"version"`         // Exact, "latest.patch", a range, or empty for versionless
	VersionPattern string `yaml:"version_pattern"` // Optional suffix pattern, e.g. "-jre"
}

// RepositoryConfig describes a metadata repository.
type RepositoryConfig struct {
	ID  string `yaml:"id"`
	URL string `yaml:"url"` // Supports ${ENV_VAR} references
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment variables
// in repository URLs.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	for i := range cfg.Repositories {
		cfg.Repositories[i].URL = expandEnv(cfg.Repositories[i].URL)
	}

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".rewrite.yaml",
		".rewrite.yml",
		"rewrite.yaml",
		"rewrite.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// MavenRepositories maps the configured repositories into domain values,
// preserving priority order. With nothing configured, the Gradle plugin
// portal is the single default.
func (c *Config) MavenRepositories() []domain.Repository {
	if len(c.Repositories) == 0 {
		return []domain.Repository{{ID: "gradle-plugin-portal", URI: GradlePluginPortal}}
	}
	repos := make([]domain.Repository, 0, len(c.Repositories))
	for _, rc := range c.Repositories {
		repos = append(repos, domain.Repository{ID: rc.ID, URI: rc.URL})
	}
	return repos
}

// expandEnv expands environment variable references (${VAR}).
func expandEnv(raw string) string {
	if raw == "" {
		return raw
	}
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if cfg.MaxCycles < 0 {
		return errors.New("max_cycles must not be negative")
	}

	for i, p := range cfg.Plugins {
		if p.ID == "" {
			return fmt.Errorf("plugins[%d].id is required", i)
		}
	}

	for i, r := range cfg.Repositories {
		if r.URL == "" {
			return fmt.Errorf("repositories[%d].url is required", i)
		}
	}

	return nil
}
