// Command worker consumes rating.submitted events and notifies store
// owners.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger("store-rating-worker", cfg.Env, cfg.LogLevel)
	if cfg.RabbitMQURL == "" {
		logger.Fatal("RABBITMQ_URL is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := queue.RatingConsumer{URL: cfg.RabbitMQURL, Queue: cfg.RatingQueue, Log: logger}
	logger.WithField("queue", cfg.RatingQueue).Info("rating consumer started")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("rating consumer stopped")
	}
}
