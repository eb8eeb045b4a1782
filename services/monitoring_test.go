package services

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ze-parceiro/simulator_api/shared"
)

func TestMonitoringMiddleware_RecordsRouteAndStatus(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: shared.ErrorHandler})
	app.Use(MonitoringMiddleware())
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "0" {
			return shared.NewNotFoundError(errors.New("no item"), "Item not found")
		}
		return c.SendString("ok")
	})

	ok := httpRequestsTotal.WithLabelValues("/items/:id", "GET", "200")
	missing := httpRequestsTotal.WithLabelValues("/items/:id", "GET", "404")
	okBefore, missingBefore := testutil.ToFloat64(ok), testutil.ToFloat64(missing)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/7", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/items/0", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, missingBefore+1, testutil.ToFloat64(missing))
	assert.Equal(t, 0.0, testutil.ToFloat64(httpRequestsActive))
}

func TestMetricsRegistry_GameMetrics(t *testing.T) {
	reg := newMetricsRegistry()

	before := testutil.ToFloat64(sessionsFinishedTotal.WithLabelValues("victory"))
	observeSessionFinished("victory")
	assert.Equal(t, before+1, testutil.ToFloat64(sessionsFinishedTotal.WithLabelValues("victory")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["simulator_sessions_finished_total"])
	assert.True(t, names["simulator_active_plays"])
	assert.True(t, names["go_goroutines"])
}
