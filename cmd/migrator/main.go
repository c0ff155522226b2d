package main

import (
	"log"

	"github.com/UnknownOlympus/aeolus/internal/config"
	"github.com/UnknownOlympus/aeolus/internal/repository"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose"
)

const migrationsDir = "migrations"

func main() {
	cfg := config.MustLoad()

	dbpool, dbErr := repository.NewDatabase(
		cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
	if dbErr != nil {
		log.Fatalf("Failed to connect to DB: %v", dbErr)
	}
	defer dbpool.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("Failed to set migration dialect: %v", err)
	}

	dtb := stdlib.OpenDBFromPool(dbpool)
	defer dtb.Close()

	if migrationErr := goose.Up(dtb, migrationsDir); migrationErr != nil {
		log.Fatalf("Failed to apply migrations: %v", migrationErr)
	}

	log.Println("✅ Migrations applied successfully")
}
