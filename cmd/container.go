package cmd

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/dig"

	"github.com/ajturnerora/rewrite/application"
	"github.com/ajturnerora/rewrite/config"
	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/groovy"
	"github.com/ajturnerora/rewrite/infrastructure/maven"
	"github.com/ajturnerora/rewrite/infrastructure/reporting"
	"github.com/ajturnerora/rewrite/infrastructure/rules"
)

// engine bundles everything a rewriting run pulls out of the container.
type engine struct {
	dig.In

	Config   *config.Config
	Parser   *groovy.Parser
	Registry *rules.Registry
	Pipeline *application.Pipeline
}

// buildContainer assembles the DIG container bottom-up: configuration and
// leaf collaborators first, then the registry and the pipeline on top.
func buildContainer(cfgPath string) (*dig.Container, error) {
	container := dig.New()

	providers := []any{
		func() (*config.Config, error) { return config.Load(cfgPath) },
		groovy.NewParser,
		func() domain.MetadataFetcher { return maven.NewMetadataFetcher() },
		func() (domain.Reporter, error) { return reporting.NewOTelReporter(otel.Meter("rewrite")) },
		newRegistry,
		func(cfg *config.Config, reporter domain.Reporter) *application.Pipeline {
			return application.NewPipeline(reporter, cfg.MaxCycles)
		},
	}
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return nil, err
		}
	}

	return container, nil
}

// newRegistry registers one AddPlugin factory per configured plugin, in
// configuration order.
func newRegistry(
	cfg *config.Config,
	fetcher domain.MetadataFetcher,
	parser *groovy.Parser,
) *rules.Registry {
	registry := rules.NewRegistry()
	for _, plugin := range cfg.Plugins {
		registry.Register(groovy.FileType, rules.ScopeProject,
			func(c *config.Config) (domain.Rule, error) {
				return rules.NewAddPlugin(
					plugin.ID,
					plugin.Version,
					plugin.VersionPattern,
					c.MavenRepositories(),
					fetcher,
					parser,
				), nil
			})
	}
	return registry
}
