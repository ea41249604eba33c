package config_test

import (
	"path/filepath"
	"testing"

	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/pillar/config"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cfg, err := config.Parse([]byte(`
ext_pillar:
  - http_yaml:
      url: http://example.com/api/%s
  - http_json:
      url: http://example.com/api/<nodename>
      with_grains: true
merge: deep
`))
	require.NoError(t, err)
	require.Equal(t, `deep`, cfg.Merge)
	require.Len(t, cfg.ExtPillar, 2)
	require.Equal(t, `http_yaml`, cfg.ExtPillar[0].Name)
	require.True(t, vf.Map(`url`, `http://example.com/api/%s`).Equals(cfg.ExtPillar[0].Options))
	require.Equal(t, `http_json`, cfg.ExtPillar[1].Name)
	require.True(t, vf.Map(`url`, `http://example.com/api/<nodename>`, `with_grains`, true).Equals(cfg.ExtPillar[1].Options))
}

func TestParse_defaultMerge(t *testing.T) {
	cfg, err := config.Parse([]byte(`
ext_pillar:
  - http_yaml:
      url: http://example.com/api/%s
`))
	require.NoError(t, err)
	require.Equal(t, `hash`, cfg.Merge)
}

func TestParse_unknownOptionsRetained(t *testing.T) {
	// options that no source recognizes, such as credentials from hosts with a
	// richer option set, still load
	cfg, err := config.Parse([]byte(`
ext_pillar:
  - http_yaml:
      url: http://example.com/api/%s
      username: user
      password: secret
`))
	require.NoError(t, err)
	require.Equal(t, `user`, cfg.ExtPillar[0].Options.Get(`username`).String())
}

func TestParse_badMerge(t *testing.T) {
	_, err := config.Parse([]byte(`merge: sideways`))
	require.Error(t, err)
	require.Contains(t, err.Error(), `unknown merge strategy 'sideways'`)
}

func TestParse_multiKeyEntry(t *testing.T) {
	_, err := config.Parse([]byte(`
ext_pillar:
  - http_yaml:
      url: http://one.example.com
    http_json:
      url: http://two.example.com
`))
	require.Error(t, err)
	require.Contains(t, err.Error(), `exactly one source name`)
}

func TestParse_badYaml(t *testing.T) {
	_, err := config.Parse([]byte(`ext_pillar: [unclosed`))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	cfg, err := config.Load(filepath.Join(`testdata`, config.FileName))
	require.NoError(t, err)
	require.Equal(t, `deep`, cfg.Merge)
	require.Len(t, cfg.ExtPillar, 1)
	require.Equal(t, `http_yaml`, cfg.ExtPillar[0].Name)
	require.True(t, vf.Value(true).Equals(cfg.ExtPillar[0].Options.Get(`with_grains`)))
}

func TestLoad_missing(t *testing.T) {
	_, err := config.Load(filepath.Join(`testdata`, `nonexistent.yaml`))
	require.Error(t, err)
}
