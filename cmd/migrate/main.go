package main

import (
	"context"
	"os"
	"time"

	"fliptrack/config"
	"fliptrack/database"
	"fliptrack/logger"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	log := logger.New(config.GetEnv("APP_ENV", "production"))
	defer func() { _ = log.Sync() }()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		log.Fatal("Failed to connect", zap.Error(err))
	}
	defer conn.Close(context.Background())

	err = database.RunMigrations(ctx, conn, func(name string) {
		log.Info("Migration applied", zap.String("file", name))
	})
	if err != nil {
		log.Fatal("Migrations failed", zap.Error(err))
	}

	log.Info("All migrations completed")
}
