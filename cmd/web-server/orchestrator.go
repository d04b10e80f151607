package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/revelare/revelare-web/internal/auth"
	"github.com/revelare/revelare-web/internal/grpcsrv"
	"github.com/revelare/revelare-web/internal/guard"
	"github.com/revelare/revelare-web/internal/health"
	"github.com/revelare/revelare-web/internal/live"
	"github.com/revelare/revelare-web/internal/mutation"
	"github.com/revelare/revelare-web/internal/session"
	"github.com/revelare/revelare-web/internal/upstream"
	"github.com/revelare/revelare-web/internal/web"
	"github.com/revelare/revelare-web/internal/web/view"
	"github.com/revelare/revelare-web/pkg/config"
	"github.com/revelare/revelare-web/pkg/database"
	"github.com/revelare/revelare-web/pkg/logger"
	"github.com/revelare/revelare-web/pkg/metrics"
)

const purgeInterval = time.Hour

type ServerOrchestrator struct {
	config   *config.Config
	client   *upstream.Client
	sessions *session.Manager
	router   *gin.Engine
	http     *http.Server
	live     *live.Server
	grpc     *grpcsrv.Server
	logger   *logger.Logger
	cancel   context.CancelFunc
	stopChan chan os.Signal
}

func NewServerOrchestrator(cfg *config.Config, db *sql.DB) (*ServerOrchestrator, error) {
	log := logger.GetLogger().WithContext("component", "orchestrator")

	client := upstream.NewClient(cfg.Upstream.BaseURL, upstream.Options{
		Timeout:          cfg.Upstream.Timeout,
		RPS:              cfg.Upstream.RPS,
		Burst:            cfg.Upstream.Burst,
		BreakerThreshold: cfg.Upstream.BreakerFail,
		BreakerTimeout:   cfg.Upstream.BreakerWait,
	})

	sessions, err := session.NewManager(session.Options{
		Secret:       cfg.Session.Secret,
		TTL:          cfg.Session.TTL,
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		Revocations:  session.NewSQLRevocations(db),
	})
	if err != nil {
		return nil, fmt.Errorf("session manager: %w", err)
	}

	o := &ServerOrchestrator{
		config:   cfg,
		client:   client,
		sessions: sessions,
		logger:   log,
		stopChan: make(chan os.Signal, 1),
	}
	o.router = o.buildRouter()
	o.http = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           o.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if cfg.EnableGRPC {
		o.grpc = grpcsrv.NewServer(client, logger.GetLogger())
	}
	return o, nil
}

func (o *ServerOrchestrator) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(o.logger.WithContext("component", "http")))
	router.Use(metrics.Middleware())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = o.config.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.Use(o.sessions.Middleware())
	router.Use(guard.Middleware())
	router.SetHTMLTemplate(view.MustTemplates())

	health.NewHandler(o.client).Register(router)
	router.GET("/metrics", metrics.Handler())

	auth.NewHandler(o.client, o.sessions, auth.Options{
		Google:    o.config.Google,
		PublicURL: o.config.PublicURL,
	}).Register(router)

	o.live = live.NewServer(live.Options{
		Searcher:       o.client,
		Books:          o.client,
		Sessions:       o.sessions,
		Debounce:       o.config.SearchDebounce,
		AllowedOrigins: o.config.AllowedOrigins,
	})
	o.live.Register(router)

	web.NewHandler(o.client, o.sessions, web.Options{
		Tracker:        mutation.NewTracker(),
		SimilarTimeout: 5 * time.Second,
	}).Register(router)

	router.NoRoute(func(c *gin.Context) {
		view.Error(c, http.StatusNotFound, "Page not found")
	})
	return router
}

// requestLogger logs one event per request.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		kv := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case status >= 500:
			log.Error("http_request", kv...)
		case status >= 400:
			log.Warn("http_request", kv...)
		default:
			log.Debug("http_request", kv...)
		}
	}
}

func (o *ServerOrchestrator) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	errChan := make(chan error, 2)

	go func() {
		o.logger.Info("starting_http_server", "addr", o.http.Addr)
		if err := o.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			o.logger.Error("http_server_failed", "error", err.Error())
			errChan <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	if o.grpc != nil {
		lis, err := net.Listen("tcp", ":"+o.config.GRPCPort)
		if err != nil {
			cancel()
			return fmt.Errorf("gRPC listen: %w", err)
		}
		go o.grpc.Watch(ctx, 5*time.Second)
		go func() {
			o.logger.Info("starting_grpc_server", "port", o.config.GRPCPort)
			if err := o.grpc.Serve(lis); err != nil {
				o.logger.Error("grpc_server_failed", "error", err.Error())
				errChan <- fmt.Errorf("gRPC server: %w", err)
			}
		}()
	}

	go o.purgeRevocations(ctx)

	select {
	case err := <-errChan:
		cancel()
		return err
	case <-time.After(500 * time.Millisecond):
		o.logger.Info("all_servers_started_successfully")
	}

	signal.Notify(o.stopChan, os.Interrupt, syscall.SIGTERM)
	return nil
}

// purgeRevocations drops expired revocation rows until ctx ends.
func (o *ServerOrchestrator) purgeRevocations(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := database.PurgeExpired(now)
			if err != nil {
				o.logger.Warn("revocation_purge_failed", "error", err.Error())
				continue
			}
			if n > 0 {
				o.logger.Info("revocations_purged", "count", n)
			}
		}
	}
}

func (o *ServerOrchestrator) WaitForShutdown() {
	sig := <-o.stopChan
	o.logger.Info("shutdown_signal_received", "signal", sig.String())
	o.Shutdown()
}

func (o *ServerOrchestrator) Shutdown() {
	o.logger.Info("orchestrator_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.logger.Info("closing_live_connections", "count", o.live.Manager().GetClientCount())
		o.live.Close()

		if err := o.http.Shutdown(ctx); err != nil {
			o.logger.Warn("http_shutdown_failed", "error", err.Error())
		}
		if o.grpc != nil {
			o.logger.Info("stopping_grpc_server")
			o.grpc.Stop()
		}
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("graceful_shutdown_complete")
	case <-ctx.Done():
		o.logger.Warn("shutdown_timeout_forcing_stop")
	}
}
