package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"invoice-courier/internal/bootstrap"
	"invoice-courier/internal/creds"
	"invoice-courier/internal/shared/config"
	"invoice-courier/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg)
	if err != nil {
		if errors.Is(err, creds.ErrReauthRequired) {
			log.Printf("storage credential unusable: %v", err)
			log.Printf("run `go run ./cmd/authorize` to re-authorize, then restart")
			os.Exit(1)
		}
		log.Fatalf("bootstrap build: %v", err)
	}

	go serveHealth(cfg)

	log.Printf("poller started backend=%s folder=%s poll=%s sweep=%s retention=%s",
		cfg.StorageBackend, app.Folder.ID, cfg.PollInterval, cfg.SweepInterval, cfg.RetentionWindow)

	pollTicker := time.NewTicker(cfg.PollInterval)
	defer pollTicker.Stop()
	sweepTicker := time.NewTicker(cfg.SweepInterval)
	defer sweepTicker.Stop()

	// One pass of each right away so a restart doesn't wait a full interval.
	app.Poller.Tick(ctx)
	app.Sweeper.Sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("shutdown requested")
			return
		case <-pollTicker.C:
			app.Poller.Tick(ctx)
		case <-sweepTicker.C:
			app.Sweeper.Sweep(ctx)
		}
	}
}

func serveHealth(cfg config.Config) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Printf("health server error: %v", err)
	}
}
