package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/ze-parceiro/simulator_api/seed/seeders"
	"github.com/ze-parceiro/simulator_api/services"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var (
		seedType = flag.String("type", "demo", "Type of seeding: demo, legacy, migrate")
		dbPath   = flag.String("db", "", "Database path (overrides DB_DATABASE env var)")
		file     = flag.String("file", "", "localStorage export to import with -type=legacy")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := openDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)
	ctx := context.Background()

	switch *seedType {
	case "migrate":
		if err := mainSeeder.Migrate(); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	case "demo":
		log.Println("Seeding demo data...")
		if err := mainSeeder.SeedDemo(ctx); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
	case "legacy":
		if *file == "" {
			log.Fatal("-file is required for -type=legacy")
		}
		data, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", *file, err)
		}
		result, err := mainSeeder.SeedLegacy(ctx, data)
		if err != nil {
			log.Fatalf("Failed to import legacy data: %v", err)
		}
		log.Printf("Imported %d players, %d sessions, %d checkpoint attempts (%d skipped)",
			result.Players, result.Sessions, result.Checkpoints, result.Skipped)
	default:
		log.Fatalf("Unknown seed type: %s. Use 'demo', 'legacy' or 'migrate'", *seedType)
	}

	log.Println("Seeding operation completed successfully!")
}

func openDatabase(dbPath string) (*gorm.DB, error) {
	if services.UsePostgres() && dbPath == "" {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			log.Fatal("DATABASE_URL is required when LOCAL_STORE=postgres")
		}
		return gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Info),
		})
	}

	databasePath := dbPath
	if databasePath == "" {
		databasePath = os.Getenv("DB_DATABASE")
		if databasePath == "" {
			databasePath = "data/simulator.db"
		}
	}
	log.Printf("Using database: %s", databasePath)
	return services.OpenSqlite(databasePath)
}

func showHelp() {
	log.Println(`
Database seeding tool for the delivery partner simulator

Usage: go run ./seed [flags]

Flags:
  -type string
        demo (default), legacy or migrate
  -db string
        Sqlite path (overrides DB_DATABASE)
  -file string
        localStorage export for -type=legacy

Examples:
  go run ./seed -type=migrate
  go run ./seed -type=legacy -file=export.json

Environment Variables:
  DB_DATABASE  - sqlite path (default: data/simulator.db)
  LOCAL_STORE  - set to postgres to seed DATABASE_URL instead
`)
}
