// Package app 按配置装配时间源、生成器注册表、存储与HTTP服务
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"katydid-common-idgen/internal/server"
	"katydid-common-idgen/internal/store"
	"katydid-common-idgen/pkg/config"
	"katydid-common-idgen/pkg/database"
	"katydid-common-idgen/pkg/idgen/clock"
	"katydid-common-idgen/pkg/idgen/core"
	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/idgen/snowflake"
)

// App 已装配的服务
type App struct {
	cfg     *config.Config
	logger  *zap.Logger
	ts      core.TimeSource
	epoch   time.Time
	reg     *registry.Registry
	def     snowflake.SharedGenerator
	store   *store.Store
	server  *server.Server
	closers []func() error
}

// New 按配置装配服务，失败时释放已打开的资源
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (_ *App, err error) {
	if cfg == nil {
		return nil, core.ErrNilConfig
	}
	if l == nil {
		l = zap.NewNop()
	}

	a := &App{cfg: cfg, logger: l}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	if a.epoch, err = cfg.Clock.EpochTime(); err != nil {
		return nil, err
	}
	if a.ts, err = a.timeSource(); err != nil {
		return nil, err
	}

	a.reg = registry.New(a.ts, registry.WithLogger(l.Named("registry")))
	if err = a.registerConfigured(); err != nil {
		return nil, err
	}

	if cfg.Database.Driver != "" {
		if err = a.openStore(ctx); err != nil {
			return nil, err
		}
	}

	a.server = server.New(server.Options{
		Server:   cfg.Server,
		Auth:     cfg.Auth,
		Registry: a.reg,
		Default:  a.def,
		Parser:   snowflake.NewParser(a.epoch),
		Store:    a.store,
		Logger:   l.Named("server"),
	})

	l.Info("app assembled",
		zap.String("clock", cfg.Clock.Source),
		zap.Time("epoch", a.epoch),
		zap.Uint64("default_identifier", a.def.Generator().Identifier()),
		zap.Strings("generators", a.reg.ListKeys()),
		zap.Bool("store", a.store != nil))
	return a, nil
}

// timeSource 按clock.source构造时间源，配置了纪元时再包一层Offset
func (a *App) timeSource() (core.TimeSource, error) {
	var ts core.TimeSource
	switch a.cfg.Clock.Source {
	case "", "system":
		ts = clock.System{}
	case "monotonic":
		ts = clock.NewMonotonic()
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Redis.Addr,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		ts = clock.NewRedis(client,
			clock.WithTimeout(a.cfg.Redis.Timeout),
			clock.WithBackoff(a.cfg.Redis.Backoff),
			clock.WithFallback(clock.NewMonotonic()),
			clock.WithLogger(a.logger.Named("clock.redis")))
	default:
		return nil, fmt.Errorf("unsupported clock source %q", a.cfg.Clock.Source)
	}

	if a.epoch.UnixMilli() > 0 {
		ts = clock.NewOffset(ts, a.epoch)
	}
	return ts, nil
}

// registerConfigured 注册配置文件中的生成器；键为default的条目用作默认生成器
func (a *App) registerConfigured() error {
	opts := []snowflake.Option{snowflake.WithLogger(a.logger.Named("snowflake"))}

	defCfg := snowflake.DefaultConfig()
	for _, g := range a.cfg.Generators {
		gc := generatorConfig(g)
		if g.Key == registry.DefaultGeneratorKey {
			defCfg = gc
			continue
		}
		if _, err := a.reg.Create(g.Key, core.GeneratorTypeSnowflake, gc); err != nil {
			return fmt.Errorf("register generator %q: %w", g.Key, err)
		}
	}

	def, err := snowflake.NewFactory(a.ts, opts...).Create(defCfg)
	if err != nil {
		return fmt.Errorf("create default generator: %w", err)
	}
	a.def = def
	return nil
}

// openStore 打开存储并把已持久化的定义加载进注册表
func (a *App) openStore(ctx context.Context) error {
	db, err := database.Open(a.cfg.Database.Driver, a.cfg.Database.DSN, a.logger.Named("database"))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	a.closers = append(a.closers, sqlDB.Close)

	if a.store, err = store.New(db, a.def); err != nil {
		return err
	}

	defs, err := a.store.List(ctx)
	if err != nil {
		return err
	}
	for i := range defs {
		def := &defs[i]
		if a.reg.Has(def.Key) {
			// 配置文件优先
			a.logger.Warn("stored generator shadowed by config", zap.String("key", def.Key))
			continue
		}
		if _, err := a.reg.Create(def.Key, core.GeneratorTypeSnowflake, def.Config()); err != nil {
			return fmt.Errorf("restore generator %q: %w", def.Key, err)
		}
	}
	return nil
}

func generatorConfig(g config.GeneratorConfig) *snowflake.Config {
	return &snowflake.Config{
		Identifier:       g.Identifier,
		IdentifierSource: core.IdentifierSource(g.IdentifierSource),
		EnableMetrics:    g.EnableMetrics,
	}
}

// Registry 生成器注册表
func (a *App) Registry() *registry.Registry {
	return a.reg
}

// Default 默认生成器
func (a *App) Default() snowflake.SharedGenerator {
	return a.def
}

// Server HTTP服务
func (a *App) Server() *server.Server {
	return a.server
}

// Run 启动HTTP服务，ctx结束时优雅关闭并释放资源
func (a *App) Run(ctx context.Context) error {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn("close app", zap.Error(err))
		}
	}()
	return a.server.ListenAndServe(ctx)
}

// Close 释放数据库连接与Redis客户端，可重复调用
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
