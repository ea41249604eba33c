// Package grains provides implementations of the api.Grains node attribute store.
package grains

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/lyraproj/pillar/api"
)

type mapGrains struct {
	data dgo.Map
}

// Map returns a Grains backed by the given map. A panic is raised if the argument
// cannot be coerced into a map.
func Map(mi interface{}) api.Grains {
	return &mapGrains{data: api.ToMap(`grains`, mi)}
}

func (g *mapGrains) Get(name string) dgo.Value {
	return g.data.Get(name)
}

type envGrains struct{}

// Environment returns a Grains that exposes the current process environment. Each
// environment variable is a grain with the same name.
func Environment() api.Grains {
	return envGrains{}
}

func (envGrains) Get(name string) dgo.Value {
	if v, ok := os.LookupEnv(name); ok {
		return vf.String(v)
	}
	return nil
}

// YamlFile returns a Grains backed by the YAML hash stored in the given file.
func YamlFile(path string) (api.Grains, error) {
	m, err := loadYamlHash(path)
	if err != nil {
		return nil, err
	}
	return &mapGrains{data: m}, nil
}

// Dir returns a Grains backed by all YAML hash files beneath the given root that
// match the given glob pattern. Files are merged in lexical order so that grains
// from later files win over grains from earlier ones.
func Dir(root, pattern string) (api.Grains, error) {
	matches, err := doublestar.Glob(filepath.Join(root, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	merged := vf.MutableMap()
	for _, path := range matches {
		m, err := loadYamlHash(path)
		if err != nil {
			return nil, err
		}
		merged.PutAll(m)
	}
	return &mapGrains{data: merged}, nil
}

type multiGrains []api.Grains

// Multi returns a Grains that queries the given instances in order and returns the
// first value found.
func Multi(gs ...api.Grains) api.Grains {
	return multiGrains(gs)
}

func (m multiGrains) Get(name string) dgo.Value {
	for _, g := range m {
		if v := g.Get(name); v != nil {
			return v
		}
	}
	return nil
}

func loadYamlHash(path string) (dgo.Map, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	v, err := yaml.Unmarshal(bs)
	if err != nil {
		return nil, err
	}
	m, ok := v.(dgo.Map)
	if !ok {
		return nil, api.NotHash(`YAML`, path)
	}
	return m, nil
}
