package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/ze-parceiro/simulator_api/services"
)

// @title Ze Simulator API
// @version 1.0
// @description Delivery partner training simulator: checkpoint game state and session persistence.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded, using process environment")
	}

	ctx, err := context.NewCtx(
		&services.MonitoringService{},

		&services.SqliteService{},
		&services.PostgresService{},
		&services.FirestoreService{},
		&services.RedisService{},
		&services.MinIOService{},

		&services.JWTService{},
		&services.ContentService{},
		&services.CertificateService{},
		&services.GatewayService{},
		&services.RateLimitService{},
		&services.PlayService{},

		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build service context")
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err).Msg("Service context stopped")
		return
	}
}
