package pillar

import (
	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/pillar/api"
)

// sourceContext is the api.SourceContext handed to a source when it is invoked.
type sourceContext struct {
	options dgo.Map
	grains  api.Grains
	querier api.Querier
	logger  hclog.Logger
}

func newSourceContext(opts Options, options dgo.Map) api.SourceContext {
	return &sourceContext{
		options: options,
		grains:  opts.Grains,
		querier: opts.Querier,
		logger:  opts.Logger,
	}
}

func (c *sourceContext) Option(key string) dgo.Value {
	return c.options.Get(key)
}

func (c *sourceContext) StringOption(key string) string {
	if s, ok := c.options.Get(key).(dgo.String); ok {
		return s.GoString()
	}
	return ``
}

func (c *sourceContext) BoolOption(key string) bool {
	if b, ok := c.options.Get(key).(dgo.Boolean); ok {
		return b.GoBool()
	}
	return false
}

func (c *sourceContext) Grains() api.Grains {
	return c.grains
}

func (c *sourceContext) Querier() api.Querier {
	return c.querier
}

func (c *sourceContext) Logger() hclog.Logger {
	return c.logger
}
