package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rushteam/cetmatch/app"
	"github.com/rushteam/cetmatch/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Loads the candidate pool, encoder and classifier, then serves
/health, /predict and /compare until interrupted. With auth.enabled the
/auth/signup, /auth/signin and /auth/me routes are served as well.

If initialization fails and server.strict is false, the server still starts:
/health reports "degraded" and every query returns the initialization error.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []server.Option{
		server.WithLogger(logger.Named("http")),
		server.WithRateLimit(cfg.Server.RateLimit, cfg.Server.Burst),
	}

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		if cfg.Server.Strict {
			return err
		}
		// 降级 App 的 Matcher 返回初始化错误；候选池已加载时 /compare 仍可用
		logger.Error("initialization failed, serving in degraded mode", zap.Error(err))
		opts = append(opts, server.WithInitError(err))
	}
	defer func() { _ = a.Close() }()

	svc, err := app.BuildAuth(ctx, cfg.Auth, logger.Named("auth"))
	switch {
	case err != nil && cfg.Server.Strict:
		return err
	case err != nil:
		logger.Error("auth unavailable, /auth routes disabled", zap.Error(err))
	case svc != nil:
		defer func() { _ = svc.Close() }()
		opts = append(opts, server.WithAuth(svc))
	}

	srv := server.New(a.Matcher, a.Pool, opts...)

	return srv.Run(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
}
