package cli

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/spendwatch/paygraph/pkg/client"
	"github.com/spendwatch/paygraph/pkg/errors"
	"github.com/spendwatch/paygraph/pkg/force"
	"github.com/spendwatch/paygraph/pkg/store"
	"github.com/spendwatch/paygraph/pkg/viewport"
)

// Config is the TOML configuration shared by serve, view, and export.
// Every field has a working default so a missing config file is not an
// error; flags override whatever the file provides.
type Config struct {
	API      APIConfig      `toml:"api"`
	Store    StoreConfig    `toml:"store"`
	Physics  PhysicsConfig  `toml:"physics"`
	Viewport ViewportConfig `toml:"viewport"`
	Filter   FilterConfig   `toml:"filter"`
	Cache    CacheConfig    `toml:"cache"`
}

// APIConfig configures the HTTP API, both serving it and fetching from it.
type APIConfig struct {
	Addr    string `toml:"addr"`     // serve listen address
	BaseURL string `toml:"base_url"` // view/export fetch target
}

// StoreConfig selects and configures the payment store backend.
type StoreConfig struct {
	Backend    string `toml:"backend"` // "memory" or "mongo"
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// PhysicsConfig overrides the force-simulation constants.
type PhysicsConfig struct {
	CenterStrength float64 `toml:"center_strength"`
	SpringStrength float64 `toml:"spring_strength"`
	ChargeStrength float64 `toml:"charge_strength"`
	Damping        float64 `toml:"damping"`
	AlphaDecay     float64 `toml:"alpha_decay"`
	Seed           uint64  `toml:"seed"`
}

// ViewportConfig sets the world bounds and zoom limits.
type ViewportConfig struct {
	Width    float64 `toml:"width"`
	Height   float64 `toml:"height"`
	MinScale float64 `toml:"min_scale"`
	MaxScale float64 `toml:"max_scale"`
}

// FilterConfig sets the initial network query.
type FilterConfig struct {
	MinAmount float64 `toml:"min_amount"`
	MaxEdges  int     `toml:"max_edges"`
}

// CacheConfig configures the payload cache. An empty dir uses the XDG
// default; a non-empty redis_addr switches to a shared Redis backend.
type CacheConfig struct {
	Dir        string `toml:"dir"`
	RedisAddr  string `toml:"redis_addr"`
	TTLMinutes int    `toml:"ttl_minutes"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Addr:    ":8000",
			BaseURL: "http://localhost:8000",
		},
		Store: StoreConfig{
			Backend:    "memory",
			MongoURI:   store.DefaultMongoURI,
			Database:   store.DefaultMongoDatabase,
			Collection: store.DefaultMongoCollection,
		},
		Physics: PhysicsConfig{
			CenterStrength: force.DefaultCenterStrength,
			SpringStrength: force.DefaultSpringStrength,
			ChargeStrength: force.DefaultChargeStrength,
			Damping:        force.DefaultDamping,
			AlphaDecay:     force.DefaultAlphaDecay,
			Seed:           force.DefaultSeed,
		},
		Viewport: ViewportConfig{
			Width:    800,
			Height:   600,
			MinScale: viewport.DefaultMinScale,
			MaxScale: viewport.DefaultMaxScale,
		},
		Filter: FilterConfig{
			MinAmount: client.DefaultMinAmount,
			MaxEdges:  client.DefaultMaxEdges,
		},
		Cache: CacheConfig{
			TTLMinutes: int(client.DefaultCacheTTL.Minutes()),
		},
	}
}

// LoadConfig reads the TOML file at path on top of the defaults. An empty
// path or a missing file returns the defaults unchanged; a file that exists
// but does not parse is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store.Backend {
	case "memory", "mongo":
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	if c.Physics.Damping <= 0 || c.Physics.Damping >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "damping must be in (0, 1), got %g", c.Physics.Damping)
	}
	if c.Viewport.Width <= 0 || c.Viewport.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "viewport bounds must be positive")
	}
	if c.Viewport.MinScale <= 0 || c.Viewport.MaxScale <= c.Viewport.MinScale {
		return errors.New(errors.ErrCodeInvalidConfig, "scale limits must satisfy 0 < min < max")
	}
	if c.Filter.MinAmount < 0 || c.Filter.MaxEdges < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "filter must have min_amount >= 0 and max_edges >= 1")
	}
	if c.Cache.TTLMinutes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl_minutes must not be negative")
	}
	return nil
}

// cacheTTL returns the payload cache expiry.
func (c Config) cacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLMinutes) * time.Minute
}

// forceConfig maps the physics section onto the simulation config.
func (c Config) forceConfig() force.Config {
	fc := force.DefaultConfig()
	fc.CenterStrength = c.Physics.CenterStrength
	fc.SpringStrength = c.Physics.SpringStrength
	fc.ChargeStrength = c.Physics.ChargeStrength
	fc.Damping = c.Physics.Damping
	fc.AlphaDecay = c.Physics.AlphaDecay
	fc.Seed = c.Physics.Seed
	return fc
}

// transform returns a viewport transform carrying the configured zoom limits.
func (c Config) transform() *viewport.Transform {
	return viewport.NewWithLimits(c.Viewport.MinScale, c.Viewport.MaxScale)
}

// bounds returns the world bounds from the viewport section.
func (c Config) bounds() force.Bounds {
	return force.Bounds{Width: c.Viewport.Width, Height: c.Viewport.Height}
}

// query returns the initial network filter.
func (c Config) query() client.Query {
	return client.Query{MinAmount: c.Filter.MinAmount, MaxEdges: c.Filter.MaxEdges}
}
