/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/friendsincode/matchday/internal/api"
	"github.com/friendsincode/matchday/internal/cache"
	"github.com/friendsincode/matchday/internal/config"
	"github.com/friendsincode/matchday/internal/db"
	"github.com/friendsincode/matchday/internal/eventbus"
	"github.com/friendsincode/matchday/internal/events"
	"github.com/friendsincode/matchday/internal/logbuffer"
	"github.com/friendsincode/matchday/internal/matchplan"
	"github.com/friendsincode/matchday/internal/plans"
	"github.com/friendsincode/matchday/internal/schedule"
	"github.com/friendsincode/matchday/internal/scheduler"
	"github.com/friendsincode/matchday/internal/storage"
	"github.com/friendsincode/matchday/internal/sweep"
	"github.com/friendsincode/matchday/internal/telemetry"
)

// SweepInterval is how often the background loop looks for open sweep runs.
const SweepInterval = 5 * time.Second

// Server bundles HTTP and supporting services.
type Server struct {
	cfg           *config.Config
	logger        zerolog.Logger
	router        chi.Router
	httpServer    *http.Server
	metricsServer *http.Server
	closers       []func() error

	db     *gorm.DB
	logs   *logbuffer.Buffer
	cache  *cache.Cache
	bus    *events.Bus
	store  storage.ObjectStore
	plans  *plans.Service
	sweeps *sweep.Service
	api    *api.API
}

// New connects all dependencies and builds the router. The database is
// migrated before the server accepts requests. logs may be nil.
func New(ctx context.Context, cfg *config.Config, logs *logbuffer.Buffer, logger zerolog.Logger) (*Server, error) {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(securityHeadersMiddleware)
	router.Use(telemetry.TracingMiddleware(telemetry.ServiceName + "-api"))
	router.Use(telemetry.MetricsMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:    cfg,
		logger: logger,
		router: router,
		logs:   logs,
		bus:    events.NewBus(),
	}

	if err := srv.initDependencies(ctx); err != nil {
		_ = srv.Close()
		return nil, err
	}

	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           srv.router,
		ReadHeaderTimeout: 15 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	if cfg.MetricsBind != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", telemetry.Handler())
		srv.metricsServer = &http.Server{
			Addr:              cfg.MetricsBind,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return srv, nil
}

func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("X-Frame-Options", "DENY")

		// Only advertise HSTS for requests served over HTTPS.
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) initDependencies(ctx context.Context) error {
	database, err := db.Connect(s.cfg)
	if err != nil {
		return err
	}
	s.DeferClose(func() error { return db.Close(database) })
	if err := db.Migrate(database); err != nil {
		return err
	}
	s.db = database

	if s.cfg.RedisAddr != "" {
		cacheCfg := cache.DefaultConfig()
		cacheCfg.RedisAddr = s.cfg.RedisAddr
		cacheCfg.RedisPassword = s.cfg.RedisPassword
		cacheCfg.RedisDB = s.cfg.RedisDB
		cacheCfg.PlanTTL = s.cfg.CacheTTL
		planCache, err := cache.New(cacheCfg, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("cache initialization failed, continuing without cache")
		} else {
			s.cache = planCache
			s.DeferClose(s.cache.Close)
		}
	}

	if s.cfg.NATSURL != "" {
		natsCfg := eventbus.DefaultNATSConfig()
		natsCfg.URL = s.cfg.NATSURL
		natsCfg.Token = s.cfg.NATSToken
		nb, err := eventbus.NewNATSBus(natsCfg, s.bus, s.logger)
		if err != nil {
			s.logger.Warn().Err(err).Msg("NATS unavailable, events stay local")
		} else {
			s.DeferClose(nb.Close)
		}
	}

	store, err := s.openStore(ctx)
	if err != nil {
		return err
	}
	s.store = store

	gen := scheduler.New(matchplan.Diversity{}, s.logger)
	s.plans = plans.NewService(database, gen, s.cache, s.bus, s.logger)
	s.sweeps = sweep.NewService(database, gen, store, s.bus, s.cfg.SweepWorkers, s.logger)
	exportSvc := schedule.NewExportService(s.plans, s.logger)
	s.api = api.New(database, s.plans, s.sweeps, exportSvc, s.logger)
	if s.logs != nil {
		s.api.SetLogBuffer(s.logs)
	}

	return nil
}

func (s *Server) openStore(ctx context.Context) (storage.ObjectStore, error) {
	if s.cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          s.cfg.S3Bucket,
			Region:          s.cfg.S3Region,
			Endpoint:        s.cfg.S3Endpoint,
			UsePathStyle:    s.cfg.S3UsePathStyle,
			AccessKeyID:     s.cfg.S3AccessKeyID,
			SecretAccessKey: s.cfg.S3SecretAccessKey,
			Prefix:          "matchday",
		}, s.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := storage.NewFSStore(s.cfg.ReportDir)
	if err != nil {
		return nil, fmt.Errorf("report directory %s: %w", s.cfg.ReportDir, err)
	}
	s.logger.Info().Str("path", s.cfg.ReportDir).Msg("report directory ready")
	return store, nil
}

func (s *Server) configureRoutes() {
	if s.cfg.MetricsBind == "" {
		s.router.Handle("/metrics", telemetry.Handler())
	}
	s.api.Routes(s.router)
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP and drives the sweep loop until ctx is cancelled, then
// shuts everything down.
func (s *Server) Run(ctx context.Context) error {
	if err := s.sweeps.RecoverStale(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("recover stale sweep items")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if s.metricsServer != nil {
		g.Go(func() error {
			s.logger.Info().Str("addr", s.metricsServer.Addr).Msg("metrics server listening")
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		err := s.sweeps.Run(gctx, SweepInterval)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		s.runCacheInvalidationListener(gctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				db.UpdateConnectionMetrics(s.db)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info().Msg("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("graceful shutdown failed")
		}
		if s.metricsServer != nil {
			_ = s.metricsServer.Shutdown(shutdownCtx)
		}
		return nil
	})

	return g.Wait()
}

// runCacheInvalidationListener drops cached activities when any node
// deletes a plan.
func (s *Server) runCacheInvalidationListener(ctx context.Context) {
	if s.cache == nil {
		<-ctx.Done()
		return
	}
	deleted := s.bus.Subscribe(events.EventPlanDeleted)
	defer s.bus.Unsubscribe(events.EventPlanDeleted, deleted)

	for {
		select {
		case <-ctx.Done():
			return
		case payload := <-deleted:
			planID, _ := payload["plan_id"].(string)
			hash, _ := payload["params_hash"].(string)
			if planID == "" {
				continue
			}
			if err := s.cache.InvalidatePlan(ctx, planID, hash); err != nil {
				s.logger.Debug().Err(err).Str("plan_id", planID).Msg("invalidate cached plan")
			}
		}
	}
}

// Close releases owned resources in reverse order.
func (s *Server) Close() error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// DeferClose registers a cleanup hook.
func (s *Server) DeferClose(fn func() error) {
	s.closers = append(s.closers, fn)
}
