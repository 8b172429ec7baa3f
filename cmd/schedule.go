package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hh-scout/internal/filtering"
	"github.com/spigell/hh-scout/internal/logger"
	"github.com/spigell/hh-scout/internal/metrics"
	"github.com/spigell/hh-scout/internal/pipeline"
	"github.com/spigell/hh-scout/internal/scheduler"
	"github.com/spigell/hh-scout/internal/search"
	"github.com/spigell/hh-scout/internal/store"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Send daily vacancy digests to every active user",
	Run: func(cmd *cobra.Command, _ []string) {
		schedule(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().Bool("once", false, "run a single digest cycle and exit")
	scheduleCmd.Flags().String("metrics-addr", "", "address to serve prometheus metrics on, e.g. :9090")

	viper.BindPFlag("metrics-addr", scheduleCmd.Flags().Lookup("metrics-addr"))
}

func schedule(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config.Database == nil || config.Database.URL == "" {
		logger.Fatal("database.url is required", zap.String("hint", "set DATABASE_URL environment variable"))
	}

	pool, err := store.NewPostgresPool(ctx, config.Database.URL)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool); err != nil {
		logger.Fatal("preparing database schema", zap.Error(err))
	}

	hh, err := newHHClient(config, logger, false)
	if err != nil {
		logger.Fatal("creating hh.ru client", zap.Error(err))
	}

	gen, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("ai is disabled", zap.Error(err))
	}

	rdb := newRedis(ctx, config, logger)
	if rdb != nil {
		defer rdb.Close()
	}

	sent := store.NewSentRepository(pool)
	orchestrator := search.NewOrchestrator(hh, logger)
	ranker := newRanker(config, logger)

	pipelines := func(userID int64) scheduler.Runner {
		steps := append(baseFilters(config, logger), filtering.NewSentHistory(
			filtering.SentHistoryConfig{UserID: userID},
			&filtering.SentHistoryDeps{Store: sent, Logger: logger},
		))
		return pipeline.New(orchestrator, filtering.New(logger, steps...), ranker, logger)
	}

	s, err := scheduler.New(scheduleConfig(config, logger), scheduler.Deps{
		Users:     store.NewUsers(pool),
		Sent:      sent,
		Analyzer:  newAnalyzer(config, gen, rdb, logger),
		Pipelines: pipelines,
		Notifier:  scheduler.NewLogNotifier(logger),
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("creating scheduler", zap.Error(err))
	}

	if addr := viper.GetString("metrics-addr"); addr != "" {
		srv := serveMetrics(addr, pool.Ping, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if once, _ := cmd.Flags().GetBool("once"); once {
		report, err := s.RunOnce(ctx)
		if err != nil {
			logger.Fatal("digest cycle failed", zap.Error(err))
		}
		logger.Info("digest cycle done", zap.Any("report", report))
		return
	}

	if err := s.Start(ctx); err != nil {
		logger.Fatal("starting scheduler", zap.Error(err))
	}

	<-ctx.Done()
	logger.Info("shutting down", zap.String("reason", "got a signal"))
	s.Stop()
}

func scheduleConfig(config *Config, logger *zap.Logger) scheduler.Config {
	cfg := scheduler.Config{UserPause: scheduler.DefaultUserPause}
	if config.Schedule == nil {
		return cfg
	}

	cfg.Spec = config.Schedule.Spec
	cfg.DigestSize = config.Schedule.DigestSize
	cfg.RunOnStart = config.Schedule.RunOnStart
	if config.Schedule.UserPause > 0 {
		cfg.UserPause = config.Schedule.UserPause
	}

	if tz := config.Schedule.Timezone; tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			logger.Fatal("loading schedule timezone", zap.String("timezone", tz), zap.Error(err))
		}
		cfg.Location = loc
	}

	return cfg
}

// serveMetrics exposes prometheus metrics and health probes. ready is checked by /readyz.
func serveMetrics(addr string, ready func(context.Context) error, logger *zap.Logger) *http.Server {
	metrics.Init()

	srv := &http.Server{
		Addr:              addr,
		Handler:           metricsRouter(ready),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return srv
}

func metricsRouter(ready func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := ready(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
