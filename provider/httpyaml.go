// Package provider contains the pillar sources that this module registers.
//
// The http_yaml source adds data to the pillar structure retrieved by an HTTP
// request. A typical configuration names an endpoint with the minion id as a
// placeholder:
//
//	ext_pillar:
//	  - http_yaml:
//	      url: http://example.com/api/%s
//
// Every occurrence of %s in the url is replaced by the url-quoted minion id. When
// the with_grains option is set, grain names wrapped in <> brackets are replaced by
// the url-quoted value of that grain:
//
//	ext_pillar:
//	  - http_yaml:
//	      url: http://example.com/api/<nodename>
//	      with_grains: true
//
// The http_json source behaves identically but expects the endpoint to serve JSON.
package provider

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/pillar/api"
	"github.com/lyraproj/pillar/util"
)

const (
	// URLOption is the source option that holds the URL template.
	URLOption = `url`

	// WithGrainsOption is the source option that enables grain substitution in the
	// URL template.
	WithGrainsOption = `with_grains`
)

func init() {
	api.RegisterSource(`http_yaml`, util.Available, ExtPillar)
	api.RegisterSource(`http_json`, util.Available, ExtPillarJSON)
}

// grainPattern matches the shortest possible <...> span so that the first '>'
// after each '<' closes that placeholder.
var grainPattern = regexp.MustCompile(`<(.*?)>`)

// ResolveURL produces a fully substituted URL from the given template. Every
// occurrence of %s is replaced by the url-quoted minion id regardless of the
// withGrains flag. When withGrains is true, <name> placeholders are then scanned
// left to right; each distinct name is looked up once in the given grains and every
// occurrence of that exact placeholder is replaced by the url-quoted, stringified
// value. A grain that is absent, or whose value counts as absent under api.Truthy,
// aborts resolution with an api.MissingGrainError.
func ResolveURL(template, minionID string, withGrains bool, g api.Grains) (string, error) {
	u := strings.Replace(template, `%s`, util.Quote(minionID), -1)
	if !withGrains {
		return u, nil
	}
	seen := map[string]bool{}
	for _, m := range grainPattern.FindAllStringSubmatch(u, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		gv := g.Get(name)
		if !api.Truthy(gv) {
			return ``, api.MissingGrain(name)
		}
		u = strings.Replace(u, `<`+name+`>`, util.Quote(gv.String()), -1)
	}
	return u, nil
}

// ExtPillar is the http_yaml source. It resolves the url option against the minion
// id and grains, fetches the result, and returns the decoded YAML hash. Every
// failure path logs a diagnostic and returns an empty map.
func ExtPillar(sc api.SourceContext, minionID string, pillar dgo.Map) dgo.Map {
	return extPillar(sc, minionID, pillar, `yaml`)
}

// ExtPillarJSON is the http_json source, the JSON counterpart of ExtPillar.
func ExtPillarJSON(sc api.SourceContext, minionID string, pillar dgo.Map) dgo.Map {
	return extPillar(sc, minionID, pillar, `json`)
}

func extPillar(sc api.SourceContext, minionID string, _ dgo.Map, format string) dgo.Map {
	uv := sc.Option(URLOption)
	if uv == nil {
		panic(api.MissingRequiredOption(URLOption))
	}
	log := sc.Logger()

	u, err := ResolveURL(uv.String(), minionID, sc.BoolOption(WithGrainsOption), sc.Grains())
	if err != nil {
		var mg *api.MissingGrainError
		if errors.As(err, &mg) {
			log.Error(`unable to get minion grain`, `minion`, minionID, `grain`, mg.Grain)
		} else {
			log.Error(`unable to resolve pillar url`, `minion`, minionID, `error`, err.Error())
		}
		return vf.Map()
	}

	data := sc.Querier().Query(u, format)
	if dict, ok := data.Get(`dict`).(dgo.Map); ok {
		return dict
	}

	log.Error(`error on minion http query`, `minion`, minionID, `url`, u)
	data.EachEntry(func(e dgo.MapEntry) {
		log.Error(`http query response`, e.Key().String(), e.Value().String())
	})
	return vf.Map()
}
