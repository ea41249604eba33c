// Package api contains the contracts shared by pillar sources and the hosts that invoke them.
package api

import (
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
)

// Grains is the node attribute store collaborator. A Grains implementation exposes
// per-node facts such as hostname or OS, queryable by name.
type Grains interface {
	// Get returns the value of the named grain or nil when no such grain exists.
	Get(name string) dgo.Value
}

// GrainsFunc adapts an ordinary function to the Grains interface.
type GrainsFunc func(name string) dgo.Value

// Get returns the value of the named grain or nil when no such grain exists.
func (f GrainsFunc) Get(name string) dgo.Value {
	return f(name)
}

// Querier is the HTTP transport collaborator. It owns connection handling, TLS,
// timeouts, and response decoding. A Query never returns an error. It returns an
// envelope map where the key `dict` holds the decoded payload on success and where
// the keys `error`, `status`, and `body` describe the failure otherwise.
type Querier interface {
	// Query issues a GET against the given URL and decodes the response body using
	// the given format (`yaml` or `json`).
	Query(url string, format string) dgo.Map
}

// QueryFunc adapts an ordinary function to the Querier interface.
type QueryFunc func(url string, format string) dgo.Map

// Query issues a GET against the given URL and decodes the response body.
func (f QueryFunc) Query(url string, format string) dgo.Map {
	return f(url, format)
}

// SourceContext is the context passed to a pillar Source when it is invoked.
type SourceContext interface {
	// Option returns the configured option for the given key or nil when no such
	// option exists.
	Option(key string) dgo.Value

	// StringOption returns the string value of the configured option for the given
	// key or an empty string when no such option exists.
	StringOption(key string) string

	// BoolOption returns the boolean value of the configured option for the given
	// key or false when no such option exists.
	BoolOption(key string) bool

	// Grains returns the node attribute store.
	Grains() Grains

	// Querier returns the HTTP transport.
	Querier() Querier

	// Logger returns the logger that the source should emit diagnostics on.
	Logger() hclog.Logger
}

// A Source produces a pillar fragment for the given minion. The pillar argument is
// the data assembled by sources that ran before this one. A Source must return a
// well-formed, possibly empty, map for every failure that relates to the minion or
// the remote data. It may panic on configuration errors such as a missing required
// option.
type Source func(sc SourceContext, minionID string, pillar dgo.Map) dgo.Map

var sourcesLock sync.RWMutex
var sources = map[string]Source{}

// RegisterSource makes a pillar source available under the given name. When the
// available check is non-nil and returns false, the source is not registered and
// hosts will skip configuration entries that name it.
func RegisterSource(name string, available func() bool, src Source) {
	if available != nil && !available() {
		return
	}
	sourcesLock.Lock()
	sources[name] = src
	sourcesLock.Unlock()
}

// LookupSource returns the source registered under the given name together with a
// boolean indicating if the source was found or not.
func LookupSource(name string) (Source, bool) {
	sourcesLock.RLock()
	src, ok := sources[name]
	sourcesLock.RUnlock()
	return src, ok
}

// EachSource calls the given function once for each registered source.
func EachSource(f func(name string, src Source)) {
	sourcesLock.RLock()
	defer sourcesLock.RUnlock()
	for n, s := range sources {
		f(n, s)
	}
}
