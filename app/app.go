// Package app 按配置组装候选池、编码器、分类器、引擎与结果缓存。
// 组装结果是显式的：成功时得到可用的 App；失败时得到带分类的错误，
// 以及一个降级 App（Matcher 对所有查询返回该错误，已加载的候选池仍可用于 /compare）。
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/rushteam/cetmatch/auth"
	"github.com/rushteam/cetmatch/config"
	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/dataset"
	"github.com/rushteam/cetmatch/engine"
	"github.com/rushteam/cetmatch/feature"
	"github.com/rushteam/cetmatch/store"
)

// App 是组装完成的应用。
type App struct {
	Matcher engine.Matcher
	Engine  *engine.Engine // 降级时为 nil
	Pool    *core.Pool     // 候选池加载失败时为 nil
	Report  *dataset.Report
	InitErr error // 初始化失败的原因，成功时为 nil

	store core.Store
}

// Close 释放缓存连接等资源。
func (a *App) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// NewSource 按配置创建候选池数据源。
func NewSource(cfg config.DataConfig) (dataset.Source, error) {
	switch cfg.Source {
	case "", "csv":
		return dataset.NewCSVSource(cfg.Paths...), nil
	case "sqlite":
		return dataset.NewSQLiteSource(cfg.SQLiteDSN, cfg.Table), nil
	default:
		return nil, core.NewConfigurationError(core.ModuleDataset, fmt.Sprintf("unknown data source %q", cfg.Source), nil)
	}
}

// LoadPool 加载候选池并记录被丢弃的行。
func LoadPool(ctx context.Context, cfg config.DataConfig, logger *zap.Logger) (*core.Pool, *dataset.Report, error) {
	src, err := NewSource(cfg)
	if err != nil {
		return nil, nil, err
	}
	pool, report, err := src.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("pool loaded",
		zap.String("source", report.Source),
		zap.Int("rows", report.Rows),
		zap.Int("loaded", report.Loaded),
		zap.Int("dropped", report.Dropped),
	)
	if report.Issues != nil {
		logger.Warn("rows dropped", zap.String("source", report.Source), zap.Error(report.Issues))
	}
	return pool, report, nil
}

// Build 组装应用。任何一步失败都返回错误和降级 App，候选池只读取一次。
func Build(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, report, err := LoadPool(ctx, cfg.Data, logger)
	if err != nil {
		return degraded(nil, nil, err), err
	}
	a, err := build(ctx, cfg, pool, report, logger)
	if err != nil {
		return degraded(pool, report, err), err
	}
	return a, nil
}

func degraded(pool *core.Pool, report *dataset.Report, err error) *App {
	return &App{
		Matcher: engine.NewUnavailable(err),
		Pool:    pool,
		Report:  report,
		InitErr: err,
	}
}

func build(ctx context.Context, cfg *config.AppConfig, pool *core.Pool, report *dataset.Report, logger *zap.Logger) (*App, error) {
	enc, err := feature.LoadOneHotEncoder(cfg.Encoder.Path)
	if err != nil {
		return nil, core.NewConfigurationError(core.ModuleFeature, "load encoder "+cfg.Encoder.Path, err)
	}

	clf, err := config.BuildClassifier(cfg.Classifier)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(pool, enc, clf, engine.WithLogger(logger.Named("engine")))
	if err != nil {
		return nil, err
	}

	a := &App{Matcher: eng, Engine: eng, Pool: pool, Report: report}

	if cfg.Cache.Backend != "" && cfg.Cache.Backend != "none" {
		s, err := store.New(ctx, store.Options{
			Backend:    cfg.Cache.Backend,
			Addr:       cfg.Cache.Addr,
			Password:   cfg.Cache.Password,
			DB:         cfg.Cache.DB,
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		})
		if err != nil {
			return nil, core.NewConfigurationError(core.ModuleStore, "open cache "+cfg.Cache.Backend, err)
		}
		a.store = s
		a.Matcher = engine.NewCachedMatcher(eng, s, engine.WithCacheLogger(logger.Named("cache")))
	}

	logger.Info("engine ready",
		zap.Int("pool", pool.Len()),
		zap.Int("encoder_width", enc.Width()),
		zap.String("classifier", clf.Name()),
		zap.String("cache", cfg.Cache.Backend),
	)
	return a, nil
}

// BuildAuth 在启用账号功能时打开用户库并创建 auth.Service；未启用时返回 nil, nil。
func BuildAuth(ctx context.Context, cfg config.AuthConfig, logger *zap.Logger) (*auth.Service, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	users, err := auth.OpenSQLiteUserStore(ctx, cfg.DSN)
	if err != nil {
		return nil, core.NewConfigurationError(core.ModuleAuth, "open user store "+cfg.DSN, err)
	}
	svc, err := auth.NewService(users, cfg.JWTSecret,
		auth.WithTokenTTL(cfg.TokenTTL),
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithLogger(logger),
	)
	if err != nil {
		_ = users.Close()
		return nil, err
	}
	logger.Info("auth enabled", zap.String("dsn", cfg.DSN), zap.Duration("token_ttl", cfg.TokenTTL))
	return svc, nil
}
