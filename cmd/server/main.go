package main // Entry point of the HTTP API

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/bus-seat-reservation/internal/app"
	"github.com/iliyamo/bus-seat-reservation/internal/config"
	"github.com/iliyamo/bus-seat-reservation/internal/handler"
	"github.com/iliyamo/bus-seat-reservation/internal/metrics"
	"github.com/iliyamo/bus-seat-reservation/internal/middleware"
	"github.com/iliyamo/bus-seat-reservation/internal/router"
	"github.com/iliyamo/bus-seat-reservation/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("missing required env var: JWT_SECRET")
	}
	adminHash, err := cfg.AdminHash()
	if err != nil {
		log.Fatalf("admin password: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var opts []service.Option
	var scrape http.Handler
	if cfg.MetricsEnabled {
		col := metrics.NewCollector()
		opts = append(opts, service.WithRecorder(col))
		scrape = col.Handler()
	}
	svc, closeStore, err := app.NewService(ctx, cfg, opts...)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unavailable, rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.Logger())
	router.RegisterRoutes(e, svc, scrape)
	router.RegisterReservation(e, handler.NewReservationHandler(svc), limiter)
	router.RegisterAdmin(e, handler.NewAdminHandler(svc, adminHash, cfg.JWTSecret, time.Duration(cfg.AccessTTLMin)*time.Minute), cfg.JWTSecret, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	if err := svc.Flush(shutdownCtx); err != nil {
		log.Printf("final flush: %v", err)
	}
	log.Println("shutdown complete")
}
