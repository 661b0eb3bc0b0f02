package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Simplici0/signworks/internal/config"
	"github.com/Simplici0/signworks/internal/db"
	"github.com/Simplici0/signworks/internal/estimate"
	"github.com/Simplici0/signworks/internal/logging"
	"github.com/Simplici0/signworks/internal/migrations"
	"github.com/Simplici0/signworks/internal/pricingdata"
	"github.com/Simplici0/signworks/internal/seed"
)

// pricingCache is the part of pricingdata.Resource the API exposes.
type pricingCache interface {
	Snapshot(ctx context.Context) (*pricingdata.Snapshot, uint64, error)
	ClearCache(ctx context.Context) error
}

// Cache clears are throttled across all callers.
const (
	cacheClearInterval = time.Second
	cacheClearBurst    = 3
)

type server struct {
	db           *sql.DB
	estimator    *estimate.Estimator
	pricing      pricingCache
	clearLimiter *rate.Limiter
	log          *zap.Logger
}

func newClearLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(cacheClearInterval), cacheClearBurst)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := prepareDevDatabase(context.Background(), database, logger); err != nil {
			logger.Fatal("failed to prepare dev database", zap.Error(err))
		}
	}

	var loader pricingdata.Loader = pricingdata.NewSQLStore(database)
	opts := []pricingdata.Option{
		pricingdata.WithTTL(cfg.Pricing.CacheTTL),
		pricingdata.WithLogger(logger),
	}
	if cfg.RedisEnabled() {
		client := pricingdata.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer client.Close()
		cache := pricingdata.NewRedisCache(client, loader, cfg.Pricing.CacheTTL, logger)
		loader = cache
		opts = append(opts, pricingdata.WithInvalidator(cache))
		logger.Info("redis pricing tier enabled", zap.String("addr", cfg.Redis.Addr))
	}
	resource := pricingdata.NewResource(loader, opts...)

	srv := &server{
		db: database,
		estimator: estimate.New(resource,
			estimate.WithMaxParallelRows(cfg.Pricing.MaxParallelRows),
			estimate.WithLogger(logger),
		),
		pricing:      resource,
		clearLimiter: newClearLimiter(),
		log:          logger,
	}

	httpSrv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("listening", zap.String("addr", httpSrv.Addr), zap.String("env", cfg.Env))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
}

func prepareDevDatabase(ctx context.Context, database *sql.DB, logger *zap.Logger) error {
	applied, err := migrations.Up(ctx, database)
	if err != nil {
		return err
	}
	fixture, err := seed.Default()
	if err != nil {
		return err
	}
	stats, err := seed.Run(ctx, database, fixture)
	if err != nil {
		return err
	}
	logger.Info("dev database ready",
		zap.Int("migrations_applied", applied),
		zap.Int("seed_inserts", stats.Inserts),
	)
	return nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/estimates/calculate", s.handleEstimateCalculate)
		r.Post("/estimates", s.handleEstimateCreate)
		r.Get("/estimates", s.handleEstimatesList)
		r.Get("/estimates/{id}", s.handleEstimateDetail)
		r.Get("/estimates/{id}/text", s.handleEstimateText)
		r.Get("/estimates/{id}/xlsx", s.handleEstimateXLSX)

		r.Get("/pricing/snapshot", s.handlePricingSnapshot)
		r.Post("/pricing/cache/clear", s.handlePricingCacheClear)
	})
	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		}
		switch {
		case status >= 500:
			s.log.Error("server error", fields...)
		case status >= 400:
			s.log.Warn("client error", fields...)
		default:
			s.log.Info("request", fields...)
		}
	})
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handlePricingSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, gen, err := s.pricing.Snapshot(r.Context())
	if err != nil {
		s.log.Error("load pricing snapshot", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load pricing configuration")
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Generation uint64                `json:"generation"`
		Snapshot   *pricingdata.Snapshot `json:"snapshot"`
	}{gen, snap})
}

func (s *server) handlePricingCacheClear(w http.ResponseWriter, r *http.Request) {
	if !s.clearLimiter.Allow() {
		w.Header().Set("Retry-After", "1")
		writeError(w, http.StatusTooManyRequests, "pricing cache was cleared recently")
		return
	}
	if err := s.pricing.ClearCache(r.Context()); err != nil {
		// The in-process entry is already gone; only a shared tier failed.
		s.log.Warn("clear pricing cache", zap.Error(err))
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
