package main // Entry point package

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/database"
	"github.com/iliyamo/store-rating/internal/handler"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/router"
	"github.com/iliyamo/store-rating/internal/utils"
)

func main() {
	migrateOnly := flag.Bool("migrate", false, "apply database migrations and exit")
	flag.Parse()

	_ = godotenv.Load() // .env is optional; real environment wins

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger("store-rating", cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if cfg.MigrateOnStart || *migrateOnly {
		if err := database.Migrate(db.DB, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
	}
	if *migrateOnly {
		return
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.SessionTTL)
	if err != nil {
		logger.WithError(err).Fatal("token service")
	}

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		pub := queue.NewAMQPPublisher(cfg.RabbitMQURL, logger)
		defer pub.Close()
		events = pub
	} else {
		logger.Info("RABBITMQ_URL not set; domain events are disabled")
	}

	users := repository.NewUserRepo(db)
	ratings := repository.NewRatingRepo(db)

	e := router.New(router.Deps{
		Cfg:     cfg,
		Log:     logger,
		DB:      db,
		Session: middleware.SessionResolver{Tokens: tokens, Users: users, DBTimeout: cfg.DBTimeout},
		Auth:    handler.NewAuthHandler(cfg, users, tokens),
		Stores:  handler.NewStoreHandler(cfg, ratings, events, logger),
		Owner:   handler.NewOwnerHandler(cfg, ratings),
		Admin: &handler.AdminHandler{
			Cfg:       cfg,
			Users:     users,
			Stores:    repository.NewStoreRepo(db),
			Dashboard: repository.NewDashboardRepo(db),
			Events:    events,
			Log:       logger,
		},
	})

	addr := ":" + cfg.Port
	go func() {
		logger.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	logger.Info("server stopped")
}
