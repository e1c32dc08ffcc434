package reporting

import (
	"context"
	"time"

	"github.com/ajturnerora/rewrite/domain"
)

// Noop discards every observation. It is the default reporter for library
// use without a metrics SDK.
type Noop struct{}

var _ domain.Reporter = Noop{}

func (Noop) RuleApplied(context.Context, string, map[string]string, string, time.Duration) {}

func (Noop) RunCompleted(context.Context, string, bool, time.Duration) {}

func (Noop) RuleChanged(context.Context, string, string) {}
