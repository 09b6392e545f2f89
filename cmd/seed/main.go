// Command seed creates the demo accounts (one per role).
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/database"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/seed"
)

func main() {
	password := flag.String("password", seed.DefaultPassword, "password for every demo account")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	logger := config.NewLogger("store-rating-seed", cfg.Env, cfg.LogLevel)

	db, err := database.Open(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	if err := database.Migrate(db.DB, logger); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	n, err := seed.Run(ctx, repository.NewUserRepo(db), seed.Accounts(*password), cfg.BcryptCost, logger)
	if err != nil {
		logger.WithError(err).Fatal("seeding failed")
	}
	logger.WithField("created", n).Info("seeding finished")
}
