package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kamal-hamza/nfts-cli/internal/adapters/localstore"
)

// Options configures the backend
type Options struct {
	Host    string
	Port    int
	CORS    bool
	Debug   bool
	Title   string
	Version string

	// Token, when set, is the bearer token /store requires
	Token string
	Store *localstore.Store

	Logger          *zap.Logger
	ShutdownTimeout time.Duration
}

// Server is the nfts HTTP backend
type Server struct {
	opts     Options
	engine   *gin.Engine
	registry *prometheus.Registry
	metrics  *metrics
	routes   []route
	logger   *zap.Logger
}

// New builds the engine and registers every route
func New(opts Options) (*Server, error) {
	if opts.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if opts.Port == 0 {
		opts.Port = 3000
	}
	if opts.Title == "" {
		opts.Title = "nfts"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	s := &Server{
		opts:     opts,
		engine:   gin.New(),
		registry: registry,
		metrics:  newMetrics(registry),
		logger:   logger,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(accessLog(logger))
	s.engine.Use(s.metrics.middleware())

	if opts.CORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", requestIDHeader}
		corsConfig.ExposeHeaders = []string{requestIDHeader}
		s.engine.Use(cors.New(corsConfig))
	}

	s.routes = s.apiRoutes()
	for _, r := range s.routes {
		s.engine.Handle(r.Method, r.Path, r.Handler)
	}
	s.registerDocs()

	return s, nil
}

// Handler exposes the engine, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, fmt.Sprint(s.opts.Port))
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
