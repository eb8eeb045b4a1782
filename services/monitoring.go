package services

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/ze-parceiro/simulator_api/store"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "simulator_api"
	DEFAULT_PROMETHEUS_PORT = 2112
)

// HTTP Metrics
var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "simulator_http_requests_active",
			Help: "HTTP requests in flight",
		},
	)

	httpRequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simulator_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"route", "method"},
	)
)

// Game Metrics
var (
	answersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_answers_total",
			Help: "Checkpoint answers by result",
		},
		[]string{"checkpoint", "result"},
	)

	storeFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_store_fallbacks_total",
			Help: "Operations served by the local store after a remote failure",
		},
		[]string{"operation", "code"},
	)

	sessionsFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulator_sessions_finished_total",
			Help: "Sessions that ended in victory or loss",
		},
		[]string{"outcome"},
	)

	activePlays = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "simulator_active_plays",
			Help: "Plays currently held in memory",
		},
	)
)

// MonitoringService serves /metrics and /health on its own port.
type MonitoringService struct {
	context.DefaultService

	port     int
	registry *prometheus.Registry
	server   *fiber.App
}

func (svc MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT"))
	if err != nil {
		port = DEFAULT_PROMETHEUS_PORT
	}
	svc.port = port

	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) Start() error {
	svc.registry = newMetricsRegistry()

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	svc.server.Use(recover.New())
	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

// newMetricsRegistry registers the runtime collectors (heap, GC, goroutines)
// next to the service metrics and zeroes the labelled series.
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		httpRequestsTotal,
		httpRequestsActive,
		httpRequestDurationSeconds,
		answersTotal,
		storeFallbacksTotal,
		sessionsFinishedTotal,
		activePlays,
	)

	for _, outcome := range []string{"victory", "loss"} {
		sessionsFinishedTotal.WithLabelValues(outcome).Add(0)
	}
	return reg
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.registry, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

func observeAnswer(checkpointID int, correct bool) {
	result := "wrong"
	if correct {
		result = "correct"
	}
	answersTotal.WithLabelValues(strconv.Itoa(checkpointID), result).Inc()
}

func observeFallback(op string, code store.ErrorCode) {
	storeFallbacksTotal.WithLabelValues(op, string(code)).Inc()
}

func observeSessionFinished(outcome string) {
	sessionsFinishedTotal.WithLabelValues(outcome).Inc()
}

// MonitoringMiddleware records count and latency per route pattern.
func MonitoringMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		httpRequestsActive.Inc()
		defer httpRequestsActive.Dec()

		err := c.Next()
		if err != nil {
			// let the app error handler set the final status
			if hErr := c.App().ErrorHandler(c, err); hErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		// the matched route is only known once the chain has run
		route := c.Route().Path
		method := c.Method()
		httpRequestsTotal.WithLabelValues(route, method, strconv.Itoa(c.Response().StatusCode())).Inc()
		httpRequestDurationSeconds.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		return nil
	}
}
