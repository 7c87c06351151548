package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/classbell/internal/driver"
	"github.com/noah-isme/classbell/internal/metrics"
	"github.com/noah-isme/classbell/internal/notifier"
	"github.com/noah-isme/classbell/internal/repository"
	"github.com/noah-isme/classbell/internal/scheduler"
	"github.com/noah-isme/classbell/internal/timetable"
	"github.com/noah-isme/classbell/pkg/config"
	"github.com/noah-isme/classbell/pkg/database"
	"github.com/noah-isme/classbell/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Notify.WebhookURL == "" {
		logr.Sugar().Fatalw("DISCORD_WEBHOOK_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source timetable.Source
	switch cfg.Timetable.Source {
	case config.TimetableSourcePostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to database", "error", err)
		}
		defer db.Close()
		source = repository.NewTimetableRepository(db)
	default:
		source = timetable.NewFileSource(cfg.Timetable.Path)
	}

	tt, err := source.Weekly(ctx)
	if err != nil {
		logr.Sugar().Fatalw("failed to load timetable", "error", err)
	}
	logr.Sugar().Infow("timetable loaded", "source", cfg.Timetable.Source, "sessions", tt.SessionCount())

	m := metrics.NewService()
	channel := notifier.NewWebhookChannel(cfg.Notify.WebhookURL, cfg.Notify.CallTimeout, logr)
	notif := notifier.New(channel, logr, m)
	clock := scheduler.SystemClock()
	disp := scheduler.NewDispatcher(notif, clock, cfg.Notify.MissedThreshold, logr, m)
	drv := driver.New(tt, notif, disp, clock, cfg.Notify.NoticeWindow, cfg.Notify.ResetHour, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready", "tracked": notif.Tracked()})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Port), Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Errorw("ops server failed", "error", err)
		}
	}()

	logr.Sugar().Infow("classbell starting",
		"env", cfg.Env,
		"notice_window", cfg.Notify.NoticeWindow,
		"missed_threshold", cfg.Notify.MissedThreshold,
		"reset_hour", cfg.Notify.ResetHour,
	)

	if err := drv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Sugar().Errorw("driver stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logr.Sugar().Infow("shutdown complete")
}
