// Package server 通过 HTTP 暴露匹配引擎：/health、/predict、/compare，
// 以及启用账号功能时的 /auth/signup、/auth/signin、/auth/me。
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rushteam/cetmatch/auth"
	"github.com/rushteam/cetmatch/core"
	"github.com/rushteam/cetmatch/engine"
)

// Server 是 HTTP 服务。
type Server struct {
	matcher engine.Matcher
	pool    *core.Pool
	initErr error
	auth    *auth.Service

	logger  *zap.Logger
	limiter *rate.Limiter
	router  *http.ServeMux
}

// Option 配置 Server
type Option func(*Server)

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRateLimit 设置全局限流，rps <= 0 表示不限流
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithInitError 标记引擎初始化失败，/health 报告 degraded
func WithInitError(err error) Option {
	return func(s *Server) { s.initErr = err }
}

// WithAuth 启用账号路由，svc 为 nil 时不注册
func WithAuth(svc *auth.Service) Option {
	return func(s *Server) { s.auth = svc }
}

// New 创建服务。pool 可以为 nil（初始化失败时），此时 /compare 返回初始化错误。
func New(matcher engine.Matcher, pool *core.Pool, opts ...Option) *Server {
	s := &Server{
		matcher: matcher,
		pool:    pool,
		logger:  zap.NewNop(),
		router:  http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("POST /predict", s.handlePredict)
	s.router.HandleFunc("GET /compare", s.handleCompare)
	if s.auth != nil {
		s.router.HandleFunc("POST /auth/signup", s.handleSignup)
		s.router.HandleFunc("POST /auth/signin", s.handleSignin)
		s.router.HandleFunc("GET /auth/me", s.handleMe)
	}
}

// Handler 返回带中间件的根 Handler。
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = s.rateLimit(h)
	h = s.accessLog(h)
	h = requestID(h)
	return h
}

// Run 监听 addr 直到 ctx 结束，然后优雅关闭。
func (s *Server) Run(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
