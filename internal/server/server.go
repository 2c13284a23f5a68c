// Package server 对外HTTP接口（gin）
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"katydid-common-idgen/internal/server/docs"
	"katydid-common-idgen/internal/store"
	"katydid-common-idgen/pkg/config"
	"katydid-common-idgen/pkg/idgen/registry"
	"katydid-common-idgen/pkg/idgen/snowflake"
	"katydid-common-idgen/pkg/logger"
)

const defaultShutdownTimeout = 5 * time.Second

// Options 服务依赖
type Options struct {
	Server    config.ServerConfig
	Auth      config.AuthConfig
	Registry  *registry.Registry
	Default   snowflake.SharedGenerator
	Parser    *snowflake.Parser
	Validator *snowflake.Validator
	Store     *store.Store // 可选，为nil时生成器定义不持久化
	Logger    *zap.Logger
}

// Server HTTP服务
type Server struct {
	opts   Options
	engine *gin.Engine
	srv    *http.Server
	logger *zap.Logger
}

// New 创建服务并注册路由
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logger.Named("server")
	}
	if opts.Parser == nil {
		opts.Parser = snowflake.DefaultParser()
	}
	if opts.Validator == nil {
		opts.Validator = snowflake.NewValidator(opts.Default.TimeSource())
	}
	if opts.Server.MaxBatch <= 0 {
		opts.Server.MaxBatch = 1000
	}
	if opts.Server.Mode != "" {
		gin.SetMode(opts.Server.Mode)
	}

	s := &Server{
		opts:   opts,
		engine: gin.New(),
		logger: opts.Logger,
	}
	s.routes()
	s.srv = &http.Server{
		Handler:      s.engine,
		ReadTimeout:  opts.Server.ReadTimeout,
		WriteTimeout: opts.Server.WriteTimeout,
	}
	return s
}

func (s *Server) routes() {
	s.engine.Use(requestID(), accessLog(s.logger), recovery(s.logger))

	s.engine.GET("/healthz", s.handleHealth)

	if s.opts.Server.Swagger {
		docs.SwaggerInfo.BasePath = "/"
		s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := s.engine.Group("/v1")
	if s.opts.Auth.Enabled {
		v1.Use(bearerAuth([]byte(s.opts.Auth.Secret), s.opts.Auth.Issuer))
	}
	v1.GET("/ids", s.handleAssign)
	v1.GET("/ids/:id", s.handleDecode)
	v1.GET("/generators", s.handleListGenerators)
	v1.POST("/generators", s.handleCreateGenerator)
	v1.DELETE("/generators/:key", s.handleDeleteGenerator)
	v1.GET("/generators/:key/ids", s.handleAssignNamed)
	v1.GET("/generators/:key/metrics", s.handleMetrics)
}

// Handler 路由处理器（测试用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe 监听并服务，ctx结束时优雅关闭
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.opts.Server.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("http server listening", zap.String("addr", l.Addr().String()))

	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()

	select {
	case <-ctx.Done():
		timeout := s.opts.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		cctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("http server shutting down")
		return s.srv.Shutdown(cctx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
