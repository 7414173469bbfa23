package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFromError(t *testing.T) {
	notFound := NotFound("Country with the id %d is not found", 4)

	tests := []struct {
		name     string
		err      error
		wantCode Code
		wantHTTP int
	}{
		{"app error passes through", notFound, CodeNotFound, 404},
		{"wrapped app error", fmt.Errorf("load: %w", notFound), CodeNotFound, 404},
		{"fiber not found", fiber.ErrNotFound, CodeNotFound, 404},
		{"fiber method not allowed", fiber.ErrMethodNotAllowed, CodeMethodNotAllowed, 405},
		{"fiber bad request", fiber.NewError(fiber.StatusBadRequest, "bad"), CodeBadRequest, 422},
		{"unknown error", errors.New("boom"), CodeInternalError, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantHTTP, got.HTTPCode)
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("%s with the id %d is not found", "Province", 12)
	assert.Equal(t, "Province with the id 12 is not found", err.Message)
	assert.True(t, HasCode(err, CodeNotFound))
	assert.False(t, HasCode(errors.New("x"), CodeNotFound))
}

func TestFiberHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: FiberHandler(zap.NewNop())})
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return Conflict("Country with the id %d has dependent provinces and cannot be deleted", 1)
	})
	app.Get("/auth", func(c *fiber.Ctx) error {
		return InvalidCredentials()
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("connection reset by peer")
	})
	app.Get("/invalid", func(c *fiber.Ctx) error {
		return Validation(map[string]string{"title": "This field is required"})
	})

	res, err := app.Test(httptest.NewRequest("GET", "/conflict", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/auth", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, "Bearer", res.Header.Get(fiber.HeaderWWWAuthenticate))

	res, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.NotContains(t, string(b), "connection reset")

	res, err = app.Test(httptest.NewRequest("GET", "/invalid", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, res.StatusCode)
	var body struct {
		Code    Code              `json:"code"`
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	assert.Equal(t, CodeValidationFailed, body.Code)
	assert.Equal(t, "This field is required", body.Details["title"])
}
