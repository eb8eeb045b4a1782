package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PostgresService is the local store for deployments that share one database
// between API replicas. Selected with LOCAL_STORE=postgres.
type PostgresService struct {
	context.DefaultService
	db    *gorm.DB
	local *LocalStore

	database string
}

const POSTGRES_SVC = "postgres_svc"

func (ds PostgresService) Id() string {
	return POSTGRES_SVC
}

func (ds PostgresService) Db() *gorm.DB {
	return ds.db
}

func (ds *PostgresService) LocalStore() *LocalStore {
	return ds.local
}

func (ds *PostgresService) Configure(ctx *context.Context) error {
	ds.database = os.Getenv("DATABASE_URL")
	if ds.database == "" {
		ds.database = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			getEnv("DB_HOST", "localhost"),
			getEnv("DB_USER", "postgres"),
			getEnv("DB_PASSWORD", "postgres"),
			getEnv("DB_NAME", "simulator"),
			getEnv("DB_PORT", "5432"),
			getEnv("DB_SSLMODE", "disable"),
			getEnv("DB_TIMEZONE", "UTC"))
	}

	return ds.DefaultService.Configure(ctx)
}

func (ds *PostgresService) Start() (err error) {
	if !UsePostgres() {
		return nil
	}

	// Retry connection with exponential backoff
	maxRetries := 10
	retryDelay := time.Second

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Printf("Attempting to connect to database (attempt %d/%d)...", attempt, maxRetries)

		ds.db, err = gorm.Open(postgres.Open(ds.database), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Error),
		})
		if err == nil {
			sqlDB, dbErr := ds.db.DB()
			if dbErr == nil {
				if err = sqlDB.Ping(); err == nil {
					log.Println("Successfully connected to database")
					break
				}
			} else {
				err = dbErr
			}
		}

		if attempt == maxRetries {
			log.Printf("Failed to connect to database after %d attempts: %v", maxRetries, err)
			return err
		}

		log.Printf("Database connection failed: %v. Retrying in %v...", err, retryDelay)
		time.Sleep(retryDelay)

		retryDelay *= 2
		if retryDelay > 10*time.Second {
			retryDelay = 10 * time.Second
		}
	}

	if err = MigrateLocalStore(ds.db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		return err
	}
	ds.local = NewLocalStore("postgres", ds.db)

	log.Println("Database connected and migrated successfully")
	return nil
}

func (ds *PostgresService) Shutdown() {
	if ds.db == nil {
		return
	}
	sqlDB, err := ds.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// UsePostgres reports whether LOCAL_STORE selects postgres over sqlite.
func UsePostgres() bool {
	return strings.EqualFold(os.Getenv("LOCAL_STORE"), "postgres")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
