package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/db"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/http/middlewares"
	"github.com/geocoder89/taskhub/internal/ids"
	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/queue/redisclient"
	"github.com/geocoder89/taskhub/internal/queue/worker"
	"github.com/geocoder89/taskhub/internal/repo/memory"
	"github.com/geocoder89/taskhub/internal/repo/postgres"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env, "taskhub-api")
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	if err := ids.Init(cfg.SnowflakeNode); err != nil {
		log.Error("snowflake init failed", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, "taskhub-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	var (
		store service.Store
		pings []func(context.Context) error
		queue worker.Queue
	)

	switch cfg.Store {
	case "memory":
		mem := memory.NewStore()
		store, queue = mem, mem.Queue()
		pings = append(pings, mem.Ping)
		log.Warn("using in-memory store, data is lost on restart")
	default:
		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.Error("db migrate failed", "err", err)
			os.Exit(1)
		}

		pg := postgres.NewStore(pool, prom)
		store = pg
		pings = append(pings, pg.Ping)
	}

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	var revoker auth.Revoker
	if cfg.RedisAddr != "" {
		rc, err := redisclient.Connect(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Error("redis connect failed", "err", err, "addr", cfg.RedisAddr)
			os.Exit(1)
		}
		defer rc.Close()

		revoker = auth.NewRedisRevoker(rc.Raw())
		pings = append(pings, rc.Ping)
	} else {
		revoker = auth.NewMemoryRevoker(cfg.JWTTTL())
		log.Warn("REDIS_ADDR not set, revoked tokens are kept in process memory")
	}

	// set up routers with the log
	router, err := httpx.NewRouter(httpx.Deps{
		Config:      cfg,
		Log:         log,
		Prom:        prom,
		Gatherer:    reg,
		Auth:        middlewares.NewAuthMiddleware(jwtManager, revoker, prom),
		AuthService: service.NewAuthService(store, jwtManager, revoker, log),
		Workspaces:  service.NewWorkspaceService(store, log),
		Members:     service.NewMembershipService(store, log),
		Boards:      service.NewBoardService(store, log),
		Tasks:       service.NewTaskService(store, log),
		Ping: func(ctx context.Context) error {
			for _, ping := range pings {
				if err := ping(ctx); err != nil {
					return err
				}
			}
			return nil
		},
	})
	if err != nil {
		log.Error("router setup failed", "err", err)
		os.Exit(1)
	}

	// The memory outbox is only visible to this process, so drain it here.
	workerDone := make(chan struct{})
	if queue != nil {
		notifier := notifications.NewProtectedNotifier(
			notifications.NewLogNotifier(log, notifications.LogNotifierConfig{
				Delay:   time.Duration(cfg.NotifierDelayMS) * time.Millisecond,
				FailAll: cfg.NotifierFailAll,
			}),
			notifications.ProtectedNotifierConfig{},
		)
		w := worker.New(worker.Config{
			PollInterval: time.Duration(cfg.WorkerPollMS) * time.Millisecond,
			WorkerID:     "taskhub-api-inproc",
			Concurrency:  1,
		}, queue, notifier, log, prom, observability.NewJobStats())

		go func() {
			defer close(workerDone)
			_ = w.Run(ctx)
		}()
	} else {
		close(workerDone)
	}

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(sctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
		<-workerDone
		if err := shutdownTracer(sctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
