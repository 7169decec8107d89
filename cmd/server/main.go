package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	appquotes "moex-client/internal/application/service/quotes"
	"moex-client/internal/config"
	"moex-client/internal/domain/markets"
	"moex-client/internal/infrastructure/iss"
	infrahttp "moex-client/internal/interfaces/http"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Env == "development" {
		logger.SetLevel(logrus.DebugLevel)
	}

	loc, err := cfg.Market.Location()
	if err != nil {
		logger.Fatalf("failed to load market timezone: %v", err)
	}

	registry := markets.NewRegistry(markets.WithLocation(loc))
	issClient := iss.NewClient(cfg.ISS.BaseURL, cfg.ISS.Timeout, logger)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	}

	quoteService := appquotes.NewService(registry, issClient, logger)
	handler := infrahttp.NewHandler(quoteService, redisClient, cfg.Cache.TTL(), logger)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.HTTP.Addr(),
			"iss":      cfg.ISS.BaseURL,
			"timezone": loc.String(),
			"cache":    redisClient != nil,
		}).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown error: %v", err)
	}
	logger.Info("server stopped")
}
