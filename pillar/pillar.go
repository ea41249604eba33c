// Package pillar contains the functions to use when assembling pillar data as a
// library.
package pillar

import (
	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/util"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/pillar/api"
	"github.com/lyraproj/pillar/config"
	"github.com/lyraproj/pillar/grains"
	"github.com/lyraproj/pillar/merge"
	"github.com/lyraproj/pillar/provider"
	"github.com/lyraproj/pillar/query"
)

// Options hold the collaborators used when running pillar sources. Zero values are
// replaced by defaults: the hclog default logger, the process environment as
// grains, and a plain HTTP querier.
type Options struct {
	Logger  hclog.Logger
	Grains  api.Grains
	Querier api.Querier
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = hclog.Default().Named(`pillar`)
	}
	if o.Grains == nil {
		o.Grains = grains.Environment()
	}
	if o.Querier == nil {
		o.Querier = query.Default()
	}
	return o
}

// ExtPillar runs the http_yaml source once for the given minion and returns the
// pillar fragment to merge into that minion's configuration tree. The existing
// pillar is accepted for interface compatibility but not consulted. ExtPillar never
// fails outward. Every failure, including a misconfigured url option, is absorbed
// into a log entry and an empty map.
func ExtPillar(opts Options, minionID string, existing dgo.Map, url string, withGrains bool) dgo.Map {
	opts = opts.withDefaults()
	result := vf.Map()
	err := util.Catch(func() {
		sc := newSourceContext(opts, vf.Map(provider.URLOption, url, provider.WithGrainsOption, withGrains))
		result = provider.ExtPillar(sc, minionID, existing)
	})
	if err != nil {
		opts.Logger.Error(`pillar source failed`, `minion`, minionID, `error`, err.Error())
		return vf.Map()
	}
	return result
}

// Assemble runs every configured source in order and merges the results with the
// configured strategy, starting from the given existing pillar. A configuration
// entry that names an unregistered source logs a warning and is skipped. A source
// that panics logs an error and contributes nothing. Assemble always returns a
// well-formed map.
func Assemble(opts Options, cfg *config.Config, minionID string, existing dgo.Map) dgo.Map {
	opts = opts.withDefaults()
	st := merge.GetStrategy(cfg.Merge)
	merged := existing
	if merged == nil {
		merged = vf.Map()
	}
	for _, e := range cfg.ExtPillar {
		src, ok := api.LookupSource(e.Name)
		if !ok {
			opts.Logger.Warn(`no such pillar source`, `name`, e.Name)
			continue
		}
		result := vf.Map()
		prior := merged
		err := util.Catch(func() {
			result = src(newSourceContext(opts, e.Options), minionID, prior)
		})
		if err != nil {
			opts.Logger.Error(`pillar source failed`, `source`, e.Name, `minion`, minionID, `error`, err.Error())
			continue
		}
		if m, ok := st.Merge(merged, result).(dgo.Map); ok {
			merged = m
		}
	}
	return merged
}
