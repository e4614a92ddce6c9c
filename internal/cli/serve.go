package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelcanvas/internal/api"
	"github.com/matzehuels/modelcanvas/pkg/cache"
	"github.com/matzehuels/modelcanvas/pkg/store"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr      string
		mongoURI  string
		redisAddr string
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server.

Graphs are held in memory by default; pass --mongo-uri to persist them
in MongoDB. Layouts and artifacts are cached on disk by default; pass
--redis-addr to share the cache between instances, or --no-cache to
disable caching.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, mongoURI, redisAddr, noCache)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB connection URI for graph persistence")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for the shared cache")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable layout and artifact caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, mongoURI, redisAddr string, noCache bool) error {
	st, err := newStore(ctx, mongoURI)
	if err != nil {
		return fmt.Errorf("initialize store: %w", err)
	}
	defer st.Close(context.Background())

	cch, err := newServeCache(ctx, redisAddr, noCache)
	if err != nil {
		printWarning("Cache unavailable, continuing without: %v", err)
		cch = cache.NewNullCache()
	}

	srv := api.NewServer(api.Config{
		Addr:   addr,
		Store:  st,
		Cache:  cch,
		Logger: c.Logger,
	})

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	printSuccess("Serving on %s", addr)
	printNextStep("Try", "curl http://localhost"+addr+"/healthz")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	c.Logger.Info("server stopped")
	return nil
}

// newStore selects the persistence backend: MongoDB when a URI is
// given, in-memory otherwise.
func newStore(ctx context.Context, mongoURI string) (store.Store, error) {
	if mongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewMongoStore(ctx, store.MongoOptions{URI: mongoURI})
}

// newServeCache selects the cache backend: Redis when an address is
// given, the local file cache otherwise.
func newServeCache(ctx context.Context, redisAddr string, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisOptions{Addr: redisAddr})
	}
	dir, err := cacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}
