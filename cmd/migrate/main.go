package main

import (
	"context"

	"github.com/saulo-duarte/examgate-lambda/internal/config"
	"github.com/saulo-duarte/examgate-lambda/internal/migrate"
)

func main() {
	ctx := context.Background()
	config.Init()
	log := config.WithContext(ctx)

	if err := config.Connect(ctx, config.GetEnv("DATABASE_DSN")); err != nil {
		log.WithError(err).Fatal("Failed to connect to DB")
	}

	if err := migrate.Run(ctx, config.DB); err != nil {
		log.WithError(err).Fatal("Migration failed")
	}

	if err := migrate.SeedSuperadmin(ctx, config.DB,
		config.GetEnv("SUPERADMIN_USERNAME"),
		config.GetEnv("SUPERADMIN_PASSWORD"),
	); err != nil {
		log.WithError(err).Fatal("Failed to seed superadmin")
	}
	log.Info("Database is up to date")
}
