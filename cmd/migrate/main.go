package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"
	"github.com/playmatatu/pitch/internal/config"
	"github.com/playmatatu/pitch/internal/migrations"
)

func main() {
	var (
		dir     string
		down    int
		version bool
	)
	flag.StringVar(&dir, "dir", "migrations", "migrations directory")
	flag.IntVar(&down, "down", 0, "roll back this many migrations instead of migrating up")
	flag.BoolVar(&version, "version", false, "print the current schema version and exit")
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	switch {
	case version:
		v, dirty, err := migrations.Version(cfg.DatabaseURL, dir)
		if err != nil {
			log.Fatalf("Failed to read schema version: %v", err)
		}
		log.Printf("Schema version %d (dirty=%v)", v, dirty)

	case down > 0:
		if err := migrations.Rollback(cfg.DatabaseURL, dir, down); err != nil {
			log.Fatalf("Failed to roll back %d migrations: %v", down, err)
		}
		log.Printf("Rolled back %d migrations", down)

	default:
		if err := migrations.RunMigrationsFrom(cfg.DatabaseURL, dir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations applied")
	}
}
