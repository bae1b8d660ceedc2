package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/spendwatch/paygraph/internal/api"
	"github.com/spendwatch/paygraph/pkg/httputil"
	"github.com/spendwatch/paygraph/pkg/store"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		configPath string
		addr       string
		backend    string
		mongoURI   string
		demo       bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the spending network HTTP API",
		Long: `Serve the aggregated payment graph over HTTP.

The API exposes /api/network, /api/stats, and /api/health. Payments come
from MongoDB or from an in-memory store; --demo seeds the in-memory store
with a small sample dataset so the view and export commands have something
to show without a database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.API.Addr = addr
			}
			if backend != "" {
				cfg.Store.Backend = backend
			}
			if mongoURI != "" {
				cfg.Store.MongoURI = mongoURI
			}

			st, err := c.openStore(cmd.Context(), cfg, demo)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			return api.New(st, c.Logger).ListenAndServe(cmd.Context(), cfg.API.Addr)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&backend, "store", "", "store backend: memory or mongo (overrides config)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI (overrides config)")
	cmd.Flags().BoolVar(&demo, "demo", false, "seed the memory store with sample payments")

	return cmd
}

// openStore builds the configured payment store. Mongo connections retry a
// few times with backoff since the database often starts alongside the API.
func (c *CLI) openStore(ctx context.Context, cfg Config, demo bool) (store.Store, error) {
	if cfg.Store.Backend == "mongo" && !demo {
		var st *store.MongoStore
		err := httputil.Retry(ctx, 3, time.Second, func() error {
			var err error
			st, err = store.NewMongoStore(ctx, cfg.Store.MongoURI, cfg.Store.Database, cfg.Store.Collection)
			if err != nil {
				return &httputil.RetryableError{Err: err}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		c.Logger.Info("connected to MongoDB", "uri", cfg.Store.MongoURI, "db", cfg.Store.Database)
		return st, nil
	}

	st := store.NewMemoryStore()
	if demo {
		if err := seedDemoPayments(ctx, st); err != nil {
			return nil, err
		}
		c.Logger.Info("seeded demo payments")
	}
	return st, nil
}
