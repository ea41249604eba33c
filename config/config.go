// Package config reads the master configuration that names the external pillar
// sources to run for a minion and the options to run them with.
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/pillar/api"
	"gopkg.in/yaml.v3"
)

// FileName is the default name of the master configuration file.
const FileName = `pillar.yaml`

// An Entry names one configured pillar source together with its options. Option
// keys that a source does not recognize are retained but ignored, so configurations
// written for hosts with a richer option set still load.
type Entry struct {
	// Name is the registered name of the source, e.g. `http_yaml`.
	Name string

	// Options holds the source options, e.g. `url` and `with_grains`.
	Options dgo.Map
}

// Config is the parsed master configuration.
type Config struct {
	// ExtPillar lists the configured sources in the order they will run.
	ExtPillar []Entry

	// Merge is the name of the strategy used to combine source results. It defaults
	// to `hash`.
	Merge string
}

type cfgFile struct {
	ExtPillar []map[string]map[string]interface{} `yaml:"ext_pillar"`
	Merge     string                              `yaml:"merge"`
}

var mergeNames = map[string]bool{`first`: true, `hash`: true, `deep`: true}

// Parse creates a Config from the given YAML document.
func Parse(bs []byte) (*Config, error) {
	cf := cfgFile{}
	if err := yaml.Unmarshal(bs, &cf); err != nil {
		return nil, err
	}
	if cf.Merge == `` {
		cf.Merge = `hash`
	}
	if !mergeNames[cf.Merge] {
		return nil, fmt.Errorf(`unknown merge strategy '%s'`, cf.Merge)
	}
	cfg := &Config{Merge: cf.Merge}
	for i, se := range cf.ExtPillar {
		if len(se) != 1 {
			return nil, fmt.Errorf(`ext_pillar entry %d must have exactly one source name`, i+1)
		}
		for name, opts := range se {
			cfg.ExtPillar = append(cfg.ExtPillar, Entry{
				Name:    name,
				Options: api.ToMap(fmt.Sprintf(`options of ext_pillar entry '%s'`, name), opts),
			})
		}
	}
	return cfg, nil
}

// Load creates a Config from the YAML document stored in the given file.
func Load(path string) (*Config, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(bs)
	if err != nil {
		return nil, fmt.Errorf(`unable to parse '%s': %s`, path, err.Error())
	}
	return cfg, nil
}
