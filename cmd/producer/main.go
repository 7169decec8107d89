package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	appquotes "moex-client/internal/application/service/quotes"
	"moex-client/internal/config"
	"moex-client/internal/domain/entity/market"
	"moex-client/internal/domain/markets"
	"moex-client/internal/infrastructure/broker"
	"moex-client/internal/infrastructure/iss"
)

const drainTimeout = 5 * time.Second

// collector is the part of the quote service the poll loop needs.
type collector interface {
	Collect(ctx context.Context, items []appquotes.WatchItem) ([]market.Reading, error)
}

// readingWriter buffers readings for publishing.
type readingWriter interface {
	Add(readings ...market.Reading) error
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	items, err := readWatchlist(cfg.Producer.WatchlistFile)
	if err != nil {
		logger.Fatalf("watchlist error: %v", err)
	}

	loc, err := cfg.Market.Location()
	if err != nil {
		logger.Fatalf("market timezone: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rabbitConn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		logger.Fatalf("connect rabbitmq: %v", err)
	}
	defer rabbitConn.Close()

	pub, err := broker.NewPublisher(rabbitConn, cfg.RabbitMQ.Exchange, logger)
	if err != nil {
		logger.Fatalf("init publisher: %v", err)
	}
	defer pub.Close()

	writer, err := broker.NewBatchWriter(broker.BatchConfig{
		Size:    cfg.RabbitMQ.BatchSize,
		Timeout: cfg.RabbitMQ.BatchTimeout,
	}, pub, logger)
	if err != nil {
		logger.Fatalf("init batch writer: %v", err)
	}

	svc := appquotes.NewService(
		markets.NewRegistry(markets.WithLocation(loc)),
		iss.NewClient(cfg.ISS.BaseURL, cfg.ISS.Timeout, logger),
		logger,
	)

	g, gctx := errgroup.WithContext(ctx)
	writer.Run(gctx)
	g.Go(func() error {
		return pollLoop(gctx, svc, items, writer, cfg.Producer.PollInterval, logger)
	})
	g.Go(func() error {
		<-gctx.Done()
		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := writer.Stop(drainCtx); err != nil {
			return fmt.Errorf("drain readings: %w", err)
		}
		return nil
	})

	logger.WithFields(logrus.Fields{
		"securities": len(items),
		"exchange":   cfg.RabbitMQ.Exchange,
		"interval":   cfg.Producer.PollInterval.String(),
	}).Info("producer started")

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("producer stopped with error: %v", err)
	}

	logger.Info("producer stopped")
}

// pollLoop collects the watchlist immediately and then once per interval
// until ctx is done. Collection failures are logged; publish failures stop the loop.
func pollLoop(ctx context.Context, svc collector, items []appquotes.WatchItem, w readingWriter, interval time.Duration, logger *logrus.Logger) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := pollOnce(ctx, svc, items, w, logger); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func pollOnce(ctx context.Context, svc collector, items []appquotes.WatchItem, w readingWriter, logger *logrus.Logger) error {
	readings, err := svc.Collect(ctx, items)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if err != nil {
		logger.WithError(err).Warn("collect finished with errors")
	}
	if len(readings) == 0 {
		return nil
	}
	if err := w.Add(readings...); err != nil {
		return fmt.Errorf("publish readings: %w", err)
	}
	return nil
}
