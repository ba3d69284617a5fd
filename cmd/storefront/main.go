package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/api"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/auth"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/cart"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/checkout"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/events"
	"github.com/iHerbYou/i-Herb-You-React-sub000/internal/gateway"
	"github.com/iHerbYou/i-Herb-You-React-sub000/pkg/config"
	"github.com/iHerbYou/i-Herb-You-React-sub000/pkg/logger"
	"github.com/iHerbYou/i-Herb-You-React-sub000/pkg/shutdown"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "storefront-gateway",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	base := api.New(api.Options{
		BaseURL:    cfg.BackendBaseURL,
		HTTPClient: &http.Client{Timeout: cfg.RequestTimeout},
		Metrics:    api.NewMetrics(nil),
		Breaker:    api.NewBreaker("commerce-backend"),
		Logger:     log,
	})
	bus := auth.NewBus()

	var (
		cartCache cart.Cache
		attempts  checkout.AttemptStore = checkout.NewMemoryAttemptStore()
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("redis unreachable", "addr", cfg.RedisAddr, "err", err)
		} else {
			cartCache = cart.NewRedisCache(rdb)
			attempts = checkout.NewRedisAttemptStore(rdb)
			log.Info("redis connected", "addr", cfg.RedisAddr)
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaTopic, cfg.KafkaBrokers...)
		defer kp.Close()
		publisher = kp
		log.Info("kafka publisher enabled", "topic", cfg.KafkaTopic)
	}

	gw := gateway.New(gateway.Options{
		Base:             base,
		Bus:              bus,
		Cache:            cartCache,
		Attempts:         attempts,
		Publisher:        publisher,
		SuccessReturnURL: cfg.SuccessReturnURL,
		FailReturnURL:    cfg.FailReturnURL,
		Logger:           log,
	})
	go gw.WatchAuthEvents(ctx)

	router := gw.Routes(cfg.RequestTimeout)
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront gateway starting", "port", cfg.HTTPPort, "backend", cfg.BackendBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	log.Info("shutting down storefront gateway")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
	log.Info("server exited")
}
