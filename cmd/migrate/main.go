// Command migrate applies the local cache schema without starting the
// console. Useful when a packaged upgrade wants the database ready
// before the first interactive run.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"sge-console/config"
	"sge-console/core/localstore"
	"sge-console/core/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger := utils.NewLogger()
	db, err := localstore.NewDB(cfg, logger)
	if err != nil {
		logger.Fatalf("db: %v", err)
	}
	defer db.Close()

	if err := localstore.ApplyMigrations(context.Background(), db, cfg, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}
	logger.Printf("migrations applied")
}
