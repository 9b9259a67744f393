package cli

import (
	"context"
	"fmt"
	"time"

	"quizmaster/internal/app"
	"quizmaster/internal/config"
	"quizmaster/internal/infra/memory"
	"quizmaster/internal/infra/postgres"
	redisstore "quizmaster/internal/infra/redis"
	"quizmaster/internal/infra/sqlite"
	"quizmaster/internal/logging"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// runtime is what every command needs: config, logger, a loaded service and its store.
type runtime struct {
	cfg     config.Config
	log     *zap.Logger
	service *app.QuizService
	closers []func()
}

func (rt *runtime) Close() {
	rt.service.Shutdown()
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	_ = rt.log.Sync()
}

func openRuntime(ctx context.Context, opts *rootOptions, svcOpts ...app.Option) (*runtime, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.port != "" {
		cfg.Server.Port = opts.port
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, log: log}
	store, err := rt.openStore(ctx)
	if err != nil {
		rt.runClosers()
		return nil, err
	}

	rt.service = app.NewQuizService(store, append([]app.Option{app.WithLogger(log)}, svcOpts...)...)
	rt.service.Load(ctx)
	return rt, nil
}

func (rt *runtime) runClosers() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
}

func (rt *runtime) openStore(ctx context.Context) (app.KeyValueStore, error) {
	cfg := rt.cfg
	cacheTTL := config.TTLDuration(cfg.Cache.TTL, 30*time.Second)
	cached := func(backend memory.Backend) app.KeyValueStore {
		if cacheTTL <= 0 {
			return backend
		}
		return memory.NewCachedStore(backend, cacheTTL)
	}

	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(), nil
	case config.StoreSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLite.Path, err)
		}
		rt.closers = append(rt.closers, func() { store.Close() })
		rt.log.Debug("using sqlite store", zap.String("path", cfg.SQLite.Path))
		return store, nil
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		rt.closers = append(rt.closers, func() { client.Close() })
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		ttl := config.TTLDuration(cfg.Redis.TTL, 0)
		rt.log.Debug("using redis store", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", ttl))
		return cached(redisstore.NewStore(client, cfg.Redis.Prefix, ttl)), nil
	case config.StorePostgres:
		if err := runMigrations(ctx, cfg, rt.log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.log.Debug("using postgres store")
		return cached(postgres.NewStore(pool)), nil
	}
	return nil, fmt.Errorf("unknown store %q", cfg.Store)
}
