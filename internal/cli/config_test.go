package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spendwatch/paygraph/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paygraph.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Addr != ":8000" {
		t.Errorf("addr = %q", cfg.API.Addr)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Store.Backend)
	}
	if cfg.Filter.MinAmount != 10000 || cfg.Filter.MaxEdges != 80 {
		t.Errorf("filter = %+v", cfg.Filter)
	}
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Physics.ChargeStrength != -300 {
		t.Errorf("charge = %g", cfg.Physics.ChargeStrength)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[api]
addr = ":9001"

[store]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[physics]
damping = 0.8

[filter]
min_amount = 50000.0
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Addr != ":9001" {
		t.Errorf("addr = %q", cfg.API.Addr)
	}
	if cfg.Store.Backend != "mongo" || cfg.Store.MongoURI != "mongodb://db:27017" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Physics.Damping != 0.8 {
		t.Errorf("damping = %g", cfg.Physics.Damping)
	}
	// Untouched sections keep their defaults.
	if cfg.Physics.ChargeStrength != -300 {
		t.Errorf("charge = %g", cfg.Physics.ChargeStrength)
	}
	if cfg.Filter.MinAmount != 50000 || cfg.Filter.MaxEdges != 80 {
		t.Errorf("filter = %+v", cfg.Filter)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"UnknownBackend", "[store]\nbackend = \"sqlite\"\n"},
		{"DampingOutOfRange", "[physics]\ndamping = 1.5\n"},
		{"NegativeBounds", "[viewport]\nwidth = -10.0\n"},
		{"InvertedScaleLimits", "[viewport]\nmin_scale = 3.0\nmax_scale = 0.2\n"},
		{"ZeroMaxEdges", "[filter]\nmax_edges = 0\n"},
		{"MalformedTOML", "[api\naddr=\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestForceConfigCarriesPhysicsSection(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Physics.SpringStrength = 0.25
	cfg.Physics.Seed = 7

	fc := cfg.forceConfig()
	if fc.SpringStrength != 0.25 {
		t.Errorf("spring = %g", fc.SpringStrength)
	}
	if fc.Seed != 7 {
		t.Errorf("seed = %d", fc.Seed)
	}
	// Constants without a config knob keep their defaults.
	if fc.RestBase != 120 || fc.RestSpan != 80 {
		t.Errorf("rest = %g/%g", fc.RestBase, fc.RestSpan)
	}
}
