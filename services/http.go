package services

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alphabatem/common/context"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	log "github.com/sirupsen/logrus"

	"github.com/ze-parceiro/simulator_api/docs"
	"github.com/ze-parceiro/simulator_api/middleware"
	"github.com/ze-parceiro/simulator_api/services/handlers"
	"github.com/ze-parceiro/simulator_api/shared"
)

type HttpService struct {
	context.DefaultService

	jwtSvc        *JWTService
	playSvc       *PlayService
	contentSvc    *ContentService
	gatewaySvc    *GatewayService
	rateLimitSvc  *RateLimitService
	monitoringSvc *MonitoringService

	port int
	app  *fiber.App
}

const HTTP_SVC = "http_svc"

func (svc HttpService) Id() string {
	return HTTP_SVC
}

func (svc *HttpService) Configure(ctx *context.Context) error {
	if port := os.Getenv("HTTP_PORT"); port != "" {
		var err error
		if svc.port, err = strconv.Atoi(port); err != nil {
			return err
		}
	} else {
		svc.port = 8000
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *HttpService) Start() error {
	svc.jwtSvc = svc.Service(JWT_SVC).(*JWTService)
	svc.playSvc = svc.Service(PLAY_SVC).(*PlayService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	svc.gatewaySvc = svc.Service(GATEWAY_SVC).(*GatewayService)
	svc.rateLimitSvc = svc.Service(RATE_LIMIT_SVC).(*RateLimitService)
	if m, ok := svc.Service(MONITORING_SVC).(*MonitoringService); ok {
		svc.monitoringSvc = m
	}

	svc.app = svc.NewApp()

	log.WithField("port", svc.port).Info("HTTP server listening")
	return svc.app.Listen(fmt.Sprintf(":%v", svc.port))
}

// NewApp builds the fiber application with every route registered.
func (svc *HttpService) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "ze-simulator",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: shared.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getEnv("CORS_ALLOW_ORIGINS", "*"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	if os.Getenv("LOG_LEVEL") == "TRACE" {
		app.Use(logger.New())
	}
	if svc.monitoringSvc != nil {
		app.Use(MonitoringMiddleware())
	}

	docs.SwaggerInfo.BasePath = ""

	//Validation endpoints
	app.Get("/ping", svc.ping)
	app.Get("/swagger/*", swagger.HandlerDefault)

	v1 := app.Group("/api/v1", svc.rateLimitSvc.IPRateLimit())
	v1.Get("/ping", svc.ping)

	checkpointHandler := handlers.NewCheckpointHandler(svc.contentSvc)
	v1.Get("/checkpoints", checkpointHandler.GetCheckpoints)
	v1.Get("/checkpoints/:id", checkpointHandler.GetCheckpoint)

	playHandler := handlers.NewPlayHandler(svc.playSvc)
	v1.Post("/play/login", svc.rateLimitSvc.RateLimit("login"), playHandler.Login)

	play := v1.Group("/play", middleware.RequiredPlay(svc.jwtSvc))
	play.Get("/state", playHandler.GetState)
	play.Post("/move", playHandler.Move)
	play.Post("/checkpoints/:id/reach", playHandler.Reach)
	play.Post("/checkpoints/:id/answer", svc.rateLimitSvc.RateLimit("answer"), playHandler.Answer)
	play.Put("/settings", playHandler.UpdateSettings)
	play.Post("/reset", playHandler.Reset)
	play.Get("/certificate", playHandler.GetCertificate)
	play.Delete("/", playHandler.End)

	reportHandler := handlers.NewReportHandler(svc.gatewaySvc)
	v1.Get("/reports/sessions/completed", reportHandler.GetCompletedSessions)
	v1.Get("/reports/checkpoints", reportHandler.GetCheckpointStats)

	app.Use(func(c *fiber.Ctx) error {
		return shared.ResponseNotFound(c)
	})

	return app
}

func (svc *HttpService) Shutdown() {
	if svc.app != nil {
		_ = svc.app.Shutdown()
	}
}

// @Summary Ping
// @Description This endpoint checks the health of the service
// @Tags health
// @Accept  json
// @Produce json
// @Success 200 {object} shared.Response{data=string}
// @Router /ping [get]
func (svc *HttpService) ping(c *fiber.Ctx) error {
	c.Set("Cache-Control", "max-age=10")

	return shared.ResponseJSON(c, fiber.StatusOK, "Success", "pong")
}
