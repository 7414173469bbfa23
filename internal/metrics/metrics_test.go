package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/misdis-backend/internal/apperror"
)

func TestMiddleware_CountsByRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg, nil)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Middleware())
	app.Get("/federal/country/:id<int>/", func(c *fiber.Ctx) error {
		if c.Params("id") == "9" {
			return apperror.NotFound("Country with the id 9 is not found")
		}
		return c.SendString("ok")
	})
	app.Get("/metrics", m.Handler())

	for _, path := range []string{"/federal/country/1/", "/federal/country/2/", "/federal/country/9/"} {
		_, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
	}

	route := "/federal/country/:id<int>/"
	assert.Equal(t, 2.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", route, "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requestsTotal.WithLabelValues("GET", route, "404")))

	res, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(body), "http_requests_total")
}
