package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinwheel/internal/config"
	"github.com/matzehuels/pinwheel/pkg/observability"
	"github.com/matzehuels/pinwheel/pkg/server"
	"github.com/matzehuels/pinwheel/pkg/session"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		store      string
		sessionTTL time.Duration
		noCache    bool
		trace      bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Sessions hold a growing layout that clients extend box by box
(POST /api/v1/sessions/{id}/boxes); placements are streamed as server-sent
events from /api/v1/events?stream={id}. Sessions live in memory, on disk,
in Redis or in MongoDB (--store or server.session_store in the config).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("store") {
				cfg.SessionStore = store
			}
			if cmd.Flags().Changed("session-ttl") {
				cfg.SessionTTL = config.Duration{Duration: sessionTTL}
			}
			if trace {
				observability.RegisterOTel()
			}
			return c.runServe(cmd.Context(), cfg, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&store, "store", config.StoreMemory, "session store: memory, file, redis, mongo")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", session.DefaultTTL, "idle session lifetime")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().BoolVar(&trace, "trace", false, "record pipeline and placement events on OpenTelemetry spans")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cfg config.ServerConfig, noCache bool) error {
	store, err := c.openStore(ctx, cfg)
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		store.Close()
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	srv := server.New(store, runner,
		server.WithLogger(c.Logger),
		server.WithSessionTTL(cfg.SessionTTL.Duration),
	)
	defer srv.Close()

	printSuccess("Serving on http://%s", cfg.Addr)
	printDetail("Sessions: %s, idle TTL %s", cfg.SessionStore, cfg.SessionTTL.Duration)
	return srv.ListenAndServe(ctx, cfg.Addr)
}

// openStore builds the configured session store.
func (c *CLI) openStore(ctx context.Context, cfg config.ServerConfig) (session.Store, error) {
	switch cfg.SessionStore {
	case config.StoreMemory, "":
		return session.NewMemoryStore(), nil
	case config.StoreFile:
		dir := cfg.SessionDir
		if dir == "" {
			d, err := config.Dir()
			if err != nil {
				return nil, err
			}
			dir = filepath.Join(d, "sessions")
		}
		return session.NewFileStore(dir)
	case config.StoreRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("redis session store needs server.redis_url")
		}
		return session.NewRedisStore(ctx, cfg.RedisURL)
	case config.StoreMongo:
		if cfg.MongoURI == "" {
			return nil, fmt.Errorf("mongo session store needs server.mongo_uri")
		}
		return session.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, "sessions")
	}
	return nil, fmt.Errorf("unknown session store %q (must be memory, file, redis or mongo)", cfg.SessionStore)
}
