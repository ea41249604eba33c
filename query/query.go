// Package query provides the HTTP transport collaborator that pillar sources use to
// fetch remote data. The transport owns connection handling, TLS, timeouts, and
// response decoding. It layers no retry or caching policy on top of a request.
package query

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/lyraproj/dgo/dgo"
	"github.com/lyraproj/dgo/vf"
	"github.com/lyraproj/dgoyaml/yaml"
	"github.com/lyraproj/pillar/api"
)

// Options configure the HTTP transport.
type Options struct {
	// Client is the http.Client to use. When nil, a client is created from the
	// remaining options.
	Client *http.Client

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration

	// CAFile is the path of a PEM file with extra CA certificates to trust.
	CAFile string

	// InsecureSkipVerify disables verification of the server certificate chain.
	InsecureSkipVerify bool

	// Logger receives debug output. When nil, the hclog default logger is used.
	Logger hclog.Logger
}

type querier struct {
	client *http.Client
	log    hclog.Logger
}

// New creates a Querier from the given options. An error is returned when the
// CAFile option names a file that cannot be read or does not contain certificates.
func New(opts Options) (api.Querier, error) {
	log := opts.Logger
	if log == nil {
		log = hclog.Default()
	}
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
		if opts.CAFile != `` || opts.InsecureSkipVerify {
			pool, err := x509.SystemCertPool()
			if err != nil {
				return nil, fmt.Errorf(`unable to create a cert pool: %s`, err.Error())
			}
			if opts.CAFile != `` {
				pem, err := ioutil.ReadFile(filepath.Clean(opts.CAFile))
				if err != nil {
					return nil, fmt.Errorf(`unable to read CA file '%s': %s`, opts.CAFile, err.Error())
				}
				if !pool.AppendCertsFromPEM(pem) {
					return nil, fmt.Errorf(`no certificates found in CA file '%s'`, opts.CAFile)
				}
			}
			client.Transport = &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: opts.InsecureSkipVerify,
					RootCAs:            pool,
				},
			}
		}
	}
	return &querier{client: client, log: log}, nil
}

// Default returns a Querier that uses a plain http.Client without timeout.
func Default() api.Querier {
	q, _ := New(Options{})
	return q
}

// Query issues a GET against the given URL and returns the envelope described by
// api.Querier. All failure modes, from an unparsable URL to a response body that
// does not decode into a hash, end up as an `error` entry in the envelope.
func (q *querier) Query(u string, format string) dgo.Map {
	if _, err := url.ParseRequestURI(u); err != nil {
		return vf.Map(`error`, fmt.Sprintf(`invalid url '%s': %s`, u, err.Error()))
	}
	q.log.Debug(`getting url`, `url`, u)
	resp, err := q.client.Get(u)
	if err != nil {
		return vf.Map(`error`, err.Error())
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	bs, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return vf.Map(`error`, err.Error(), `status`, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return vf.Map(
			`error`, fmt.Sprintf(`request returned status %s`, resp.Status),
			`status`, resp.StatusCode,
			`body`, string(bs))
	}

	v, err := decode(bs, format)
	if err != nil {
		return vf.Map(
			`error`, fmt.Sprintf(`unable to decode response as %s: %s`, format, err.Error()),
			`status`, resp.StatusCode,
			`body`, string(bs))
	}
	m, ok := v.(dgo.Map)
	if !ok {
		return vf.Map(
			`error`, fmt.Sprintf(`response is not a %s hash`, format),
			`status`, resp.StatusCode,
			`body`, string(bs))
	}
	return vf.Map(`dict`, m, `status`, resp.StatusCode)
}

func decode(bs []byte, format string) (dgo.Value, error) {
	switch format {
	case `yaml`:
		return yaml.Unmarshal(bs)
	case `json`:
		var v interface{}
		if err := json.Unmarshal(bs, &v); err != nil {
			return nil, err
		}
		return vf.Value(v), nil
	default:
		panic(api.UnsupportedFormat(format))
	}
}
