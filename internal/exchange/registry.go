package exchange

import (
	"fmt"
	"net/http"
	"sort"
)

// defaultDepth is the number of order book levels requested from venues that
// support a limit parameter.
const defaultDepth = 5

// Config configures a single adapter instance.
type Config struct {
	// BaseURL overrides the production API host, mainly for tests.
	BaseURL string

	// Depth is the number of order book levels to request. Zero means
	// defaultDepth.
	Depth int

	// Credentials is the API key pair for venues whose chain endpoints are
	// signed. Public-only venues ignore it.
	Credentials Credentials

	// HTTPClient overrides the default client with its 10s timeout.
	HTTPClient *http.Client
}

func (c Config) baseURLOr(def string) string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return def
}

func (c Config) depthOr() int {
	if c.Depth > 0 {
		return c.Depth
	}
	return defaultDepth
}

var constructors = map[string]func(Config) Adapter{
	bybitName:  func(cfg Config) Adapter { return NewBybit(cfg) },
	kucoinName: func(cfg Config) Adapter { return NewKuCoin(cfg) },
	huobiName:  func(cfg Config) Adapter { return NewHuobi(cfg) },
	bingxName:  func(cfg Config) Adapter { return NewBingX(cfg) },
	bitgetName: func(cfg Config) Adapter { return NewBitget(cfg) },
	mexcName:   func(cfg Config) Adapter { return NewMEXC(cfg) },
}

// Supported returns the canonical names of all supported exchanges, sorted.
func Supported() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the adapter for the named exchange.
func New(name string, cfg Config) (Adapter, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("exchange: unknown exchange %q", name)
	}
	return ctor(cfg), nil
}

// Options configures a set of adapters built together.
type Options struct {
	Depth       int
	HTTPClient  *http.Client
	Credentials map[string]Credentials // keyed by exchange name
}

// NewAll builds adapters for every named exchange. Names must be canonical
// lowercase identifiers from Supported().
func NewAll(names []string, opts Options) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(names))
	for _, name := range names {
		a, err := New(name, Config{
			Depth:       opts.Depth,
			HTTPClient:  opts.HTTPClient,
			Credentials: opts.Credentials[name],
		})
		if err != nil {
			return nil, err
		}
		adapters = append(adapters, a)
	}
	return adapters, nil
}
