package application

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/ajturnerora/rewrite/config"
	"github.com/ajturnerora/rewrite/domain"
	"github.com/ajturnerora/rewrite/infrastructure/rules"
)

// Discover builds the rule set applicable to one source file: every factory
// registered under the file's tree type and the given scope, invoked in
// registration order. A factory that fails, panics, or returns nil is logged
// and skipped; one broken registration must not take down the run.
func Discover(
	registry *rules.Registry,
	cfg *config.Config,
	scope string,
	file domain.SourceFile,
) []domain.Rule {
	var discovered []domain.Rule
	for _, factory := range registry.Candidates(file.FileType(), scope) {
		rule, err := invokeFactory(factory, cfg)
		if err != nil {
			logger.Warnf("Skipping rule for %s: %v", file.SourcePath(), err)
			continue
		}
		if rule == nil {
			logger.Warnf("Skipping rule for %s: factory returned no rule", file.SourcePath())
			continue
		}
		discovered = append(discovered, rule)
	}
	return discovered
}

func invokeFactory(factory rules.Factory, cfg *config.Config) (rule domain.Rule, err error) {
	defer func() {
		if r := recover(); r != nil {
			rule = nil
			err = fmt.Errorf("factory panicked: %v", r)
		}
	}()
	return factory(cfg)
}
