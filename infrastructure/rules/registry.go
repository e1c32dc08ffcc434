package rules

import (
	"github.com/ajturnerora/rewrite/config"
	"github.com/ajturnerora/rewrite/domain"
)

// ScopeProject is the discovery scope for rules that operate on a single
// project's build scripts.
const ScopeProject = "project"

// Factory builds one configured rule from the engine configuration. The
// signature is the auto-configuration contract: exactly one parameter of the
// configuration type, enforced at compile time.
type Factory func(cfg *config.Config) (domain.Rule, error)

type registration struct {
	scope   string
	factory Factory
}

// Registry maps a tree-type capability key to rule factories. It replaces
// runtime classpath scanning with explicit registration while keeping the
// same discovery contract: filter by type and scope, invoke, collect,
// skip on failure.
type Registry struct {
	registrations map[string][]registration
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[string][]registration),
	}
}

// Register adds a factory under the given tree-type capability key and scope.
func (r *Registry) Register(fileType, scope string, factory Factory) {
	r.registrations[fileType] = append(r.registrations[fileType], registration{
		scope:   scope,
		factory: factory,
	})
}

// Candidates returns the factories registered for the given tree type and
// scope, in registration order.
func (r *Registry) Candidates(fileType, scope string) []Factory {
	var factories []Factory
	for _, reg := range r.registrations[fileType] {
		if reg.scope != scope {
			continue
		}
		factories = append(factories, reg.factory)
	}
	return factories
}
