package provider_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/pillar/api"
	"github.com/lyraproj/pillar/grains"
	"github.com/lyraproj/pillar/provider"
	"github.com/stretchr/testify/require"
)

// testContext is a SourceContext double with canned collaborators.
type testContext struct {
	options dgo.Map
	grains  api.Grains
	querier api.Querier
	logger  hclog.Logger
}

func (c *testContext) Option(key string) dgo.Value {
	return c.options.Get(key)
}

func (c *testContext) StringOption(key string) string {
	if s, ok := c.options.Get(key).(dgo.String); ok {
		return s.GoString()
	}
	return ``
}

func (c *testContext) BoolOption(key string) bool {
	if b, ok := c.options.Get(key).(dgo.Boolean); ok {
		return b.GoBool()
	}
	return false
}

func (c *testContext) Grains() api.Grains {
	return c.grains
}

func (c *testContext) Querier() api.Querier {
	return c.querier
}

func (c *testContext) Logger() hclog.Logger {
	return c.logger
}

// stubQuerier records the URLs it is asked for and returns a canned envelope.
type stubQuerier struct {
	urls     []string
	envelope dgo.Map
}

func (s *stubQuerier) Query(url, _ string) dgo.Map {
	s.urls = append(s.urls, url)
	return s.envelope
}

func newTestContext(options dgo.Map, g api.Grains, q api.Querier, out *bytes.Buffer) *testContext {
	return &testContext{
		options: options,
		grains:  g,
		querier: q,
		logger:  hclog.New(&hclog.LoggerOptions{Name: `pillar`, Level: hclog.Debug, Output: out}),
	}
}

func TestResolveURL_noPlaceholders(t *testing.T) {
	u, err := provider.ResolveURL(`http://example.com/api/static`, `web01`, false, nil)
	require.NoError(t, err)
	require.Equal(t, `http://example.com/api/static`, u)
}

func TestResolveURL_minionID(t *testing.T) {
	u, err := provider.ResolveURL(`http://example.com/api/%s`, `node one&two`, false, nil)
	require.NoError(t, err)
	require.Equal(t, `http://example.com/api/node%20one%26two`, u)
}

func TestResolveURL_minionIDWithoutGrainsFlag(t *testing.T) {
	// %s substitution does not depend on the with_grains flag and <name>
	// placeholders are left alone without it
	u, err := provider.ResolveURL(`http://example.com/<role>/%s`, `web01`, false, nil)
	require.NoError(t, err)
	require.Equal(t, `http://example.com/<role>/web01`, u)
}

func TestResolveURL_grain(t *testing.T) {
	g := grains.Map(map[string]string{`nodename`: `web01.example.com`})
	u, err := provider.ResolveURL(`http://example.com/api/<nodename>`, `web01`, true, g)
	require.NoError(t, err)
	require.Equal(t, `http://example.com/api/web01.example.com`, u)
}

func TestResolveURL_repeatedGrain(t *testing.T) {
	g := grains.Map(map[string]string{`a`: `v`})
	u, err := provider.ResolveURL(`http://x/<a>/<a>`, `web01`, true, g)
	require.NoError(t, err)
	require.Equal(t, `http://x/v/v`, u)
}

func TestResolveURL_multipleGrains(t *testing.T) {
	g := grains.Map(map[string]interface{}{`role`: `web`, `id`: 42})
	u, err := provider.ResolveURL(`http://x/<role>/<id>`, `web01`, true, g)
	require.NoError(t, err)
	require.Equal(t, `http://x/web/42`, u)
}

func TestResolveURL_grainEncoding(t *testing.T) {
	g := grains.Map(map[string]string{`dc`: `us east`})
	u, err := provider.ResolveURL(`http://x/<dc>`, `web01`, true, g)
	require.NoError(t, err)
	require.Equal(t, `http://x/us%20east`, u)
}

func TestResolveURL_missingGrain(t *testing.T) {
	g := grains.Map(map[string]string{})
	_, err := provider.ResolveURL(`http://x/<missing>`, `web01`, true, g)
	require.Error(t, err)
	var mg *api.MissingGrainError
	require.True(t, errors.As(err, &mg))
	require.Equal(t, `missing`, mg.Grain)
}

func TestResolveURL_falsyGrain(t *testing.T) {
	// a grain set to zero counts as absent
	g := grains.Map(map[string]interface{}{`cpus`: 0})
	_, err := provider.ResolveURL(`http://x/<cpus>`, `web01`, true, g)
	require.Error(t, err)
	var mg *api.MissingGrainError
	require.True(t, errors.As(err, &mg))
	require.Equal(t, `cpus`, mg.Grain)
}

func TestResolveURL_emptyCollectionGrain(t *testing.T) {
	// a grain holding an empty list, such as ipv4 on a host without addresses,
	// counts as absent rather than being stringified into the url
	g := grains.Map(map[string]interface{}{`ipv4`: []string{}})
	_, err := provider.ResolveURL(`http://x/<ipv4>`, `web01`, true, g)
	require.Error(t, err)
	var mg *api.MissingGrainError
	require.True(t, errors.As(err, &mg))
	require.Equal(t, `ipv4`, mg.Grain)
}

func TestResolveURL_failsFast(t *testing.T) {
	looked := make([]string, 0, 2)
	g := api.GrainsFunc(func(name string) dgo.Value {
		looked = append(looked, name)
		return nil
	})
	_, err := provider.ResolveURL(`http://x/<first>/<second>`, `web01`, true, g)
	require.Error(t, err)
	require.Equal(t, []string{`first`}, looked)
}

func TestResolveURL_unclosedPlaceholder(t *testing.T) {
	g := grains.Map(map[string]string{})
	u, err := provider.ResolveURL(`http://x/<oops`, `web01`, true, g)
	require.NoError(t, err)
	require.Equal(t, `http://x/<oops`, u)
}

func TestExtPillar_success(t *testing.T) {
	out := new(bytes.Buffer)
	q := &stubQuerier{envelope: vf.Map(`dict`, vf.Map(`role`, `web`), `status`, 200)}
	sc := newTestContext(vf.Map(`url`, `http://x/api/%s`), grains.Map(map[string]string{}), q, out)

	result := provider.ExtPillar(sc, `web01`, nil)
	require.True(t, vf.Map(`role`, `web`).Equals(result))
	require.Equal(t, []string{`http://x/api/web01`}, q.urls)
}

func TestExtPillar_withGrains(t *testing.T) {
	out := new(bytes.Buffer)
	q := &stubQuerier{envelope: vf.Map(`dict`, vf.Map(`role`, `web`))}
	g := grains.Map(map[string]string{`nodename`: `web01.example.com`})
	sc := newTestContext(vf.Map(`url`, `http://x/api/<nodename>`, `with_grains`, true), g, q, out)

	result := provider.ExtPillar(sc, `web01`, nil)
	require.True(t, vf.Map(`role`, `web`).Equals(result))
	require.Equal(t, []string{`http://x/api/web01.example.com`}, q.urls)
}

func TestExtPillar_missingGrain(t *testing.T) {
	out := new(bytes.Buffer)
	q := &stubQuerier{envelope: vf.Map(`dict`, vf.Map(`role`, `web`))}
	sc := newTestContext(vf.Map(`url`, `http://x/api/<missing>`, `with_grains`, true), grains.Map(map[string]string{}), q, out)

	result := provider.ExtPillar(sc, `web01`, nil)
	require.Equal(t, 0, result.Len())
	// no request is made when a grain cannot be resolved
	require.Empty(t, q.urls)
	require.Contains(t, out.String(), `unable to get minion grain`)
	require.Contains(t, out.String(), `missing`)
	require.Contains(t, out.String(), `web01`)
}

func TestExtPillar_emptyCollectionGrain(t *testing.T) {
	out := new(bytes.Buffer)
	q := &stubQuerier{envelope: vf.Map(`dict`, vf.Map(`role`, `web`))}
	g := grains.Map(map[string]interface{}{`ipv4`: []string{}})
	sc := newTestContext(vf.Map(`url`, `http://x/api/<ipv4>`, `with_grains`, true), g, q, out)

	result := provider.ExtPillar(sc, `web01`, nil)
	require.Equal(t, 0, result.Len())
	require.Empty(t, q.urls)
	require.Contains(t, out.String(), `unable to get minion grain`)
	require.Contains(t, out.String(), `ipv4`)
}

func TestExtPillar_errorEnvelope(t *testing.T) {
	out := new(bytes.Buffer)
	q := &stubQuerier{envelope: vf.Map(`error`, `timeout`)}
	sc := newTestContext(vf.Map(`url`, `http://x/api/%s`), grains.Map(map[string]string{}), q, out)

	result := provider.ExtPillar(sc, `web01`, nil)
	require.Equal(t, 0, result.Len())
	require.Contains(t, out.String(), `error on minion http query`)
	require.Contains(t, out.String(), `http://x/api/web01`)
	require.Contains(t, out.String(), `timeout`)
}

func TestExtPillar_missingURLOption(t *testing.T) {
	out := new(bytes.Buffer)
	q := &stubQuerier{envelope: vf.Map()}
	sc := newTestContext(vf.Map(), grains.Map(map[string]string{}), q, out)

	require.Panics(t, func() { provider.ExtPillar(sc, `web01`, nil) })
}

func TestSources_registered(t *testing.T) {
	_, ok := api.LookupSource(`http_yaml`)
	require.True(t, ok)
	_, ok = api.LookupSource(`http_json`)
	require.True(t, ok)
}
