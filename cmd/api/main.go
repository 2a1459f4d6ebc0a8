package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/argentech/argentech-backend/config"
	httpapi "github.com/argentech/argentech-backend/internal/api/http"
	"github.com/argentech/argentech-backend/internal/api/http/middleware"
	"github.com/argentech/argentech-backend/internal/bootstrap"
	"github.com/argentech/argentech-backend/internal/logging"
	"github.com/argentech/argentech-backend/internal/metrics"
	"github.com/argentech/argentech-backend/internal/projects/cache"
	"github.com/argentech/argentech-backend/internal/projects/directory"
	"github.com/argentech/argentech-backend/internal/projects/domain"
	projectshttp "github.com/argentech/argentech-backend/internal/projects/http"
	"github.com/argentech/argentech-backend/internal/projects/repository"
	"github.com/argentech/argentech-backend/internal/projects/service"
	"github.com/argentech/argentech-backend/internal/reconcile"
	redisstore "github.com/argentech/argentech-backend/internal/storage/redis"
)

const serviceName = "argentech-backend"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load config")
	}

	logging.Init(logging.Options{
		Level:       cfg.App.LogLevel,
		Environment: cfg.App.Environment,
		File:        cfg.App.LogFile,
	})
	log := logging.Logger.WithField("service", serviceName)
	bootstrap.SetGinMode(cfg.App.Environment)

	vocab, err := config.LoadVocabulary(cfg.Directory.VocabularyFile)
	if err != nil {
		log.WithError(err).Fatal("failed to load vocabulary")
	}

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{Config: &cfg.Database})
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	rdb, err := redisstore.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.WithError(err).Warn("redis unavailable, directory cache disabled")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg, serviceName)

	repo := repository.NewProjectRepository(db)

	var (
		loader      directory.Loader = repo
		redisLoader *cache.RedisLoader
	)
	if rdb != nil {
		redisLoader = cache.NewRedisLoader(repo, rdb, cfg.Redis.CacheTTL)
		loader = redisLoader
	}

	dir := directory.NewStore(loader,
		directory.WithBreaker(directory.NewBreaker("directory-load", 30*time.Second)),
		directory.WithMetrics(m),
	)

	wf := service.NewWorkflow(repo, vocab,
		service.WithTransactional(cfg.Submission.Transactional),
		service.WithMetrics(m),
		service.WithSuccessHook(func(ctx context.Context, id domain.ProjectID) {
			hookLog := logging.Op(ctx, "projects.after_submit").WithField("project_id", id)
			if redisLoader != nil {
				if err := redisLoader.Invalidate(ctx); err != nil {
					hookLog.WithError(err).Warn("failed to invalidate directory cache")
				}
			}
			if _, err := dir.Refresh(ctx); err != nil {
				hookLog.WithError(err).Warn("failed to refresh directory after submission")
			}
		}),
	)

	if _, err := dir.Refresh(ctx); err != nil {
		log.WithError(err).Warn("initial directory load failed, serving errors until the next refresh")
	}

	reconcileOpts := reconcile.Options{
		RefreshSchedule: cfg.Directory.RefreshSchedule,
		Grace:           cfg.Reconcile.Grace,
		Delete:          cfg.Reconcile.Delete,
	}
	if cfg.Reconcile.Enabled {
		reconcileOpts.ReconcileSchedule = cfg.Reconcile.Schedule
	}
	if redisLoader != nil {
		reconcileOpts.InvalidateCache = redisLoader.Invalidate
	}
	scheduler := reconcile.NewScheduler(dir, repo, reconcileOpts, m)
	if err := scheduler.Start(); err != nil {
		log.WithError(err).Fatal("failed to start scheduler")
	}

	var limiter *middleware.ClientRateLimiter
	if cfg.Submission.RatePerMinute > 0 {
		limiter = middleware.NewClientRateLimiter(float64(cfg.Submission.RatePerMinute), cfg.Submission.Burst)
	}

	var projectOpts []projectshttp.Option
	if redisLoader != nil {
		projectOpts = append(projectOpts, projectshttp.WithCacheInvalidator(redisLoader.Invalidate))
	}

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		CORSOrigins:   cfg.Server.CORSOrigins,
		Health:        httpapi.NewHealthHandler(serviceName, cfg.App.Version, dbPing(db), redisPing(rdb), func() string { return dir.Status().String() }),
		Projects:      projectshttp.New(dir, wf, vocab, projectOpts...),
		SubmitLimiter: limiter,
		Metrics:       m,
		Gatherer:      reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}

func dbPing(db *sql.DB) httpapi.PingFunc {
	return db.PingContext
}

func redisPing(rdb *goredis.Client) httpapi.PingFunc {
	if rdb == nil {
		return nil
	}
	return func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
}
