package apperror

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// FiberHandler returns the application-wide fiber.ErrorHandler. Every error a
// handler or middleware returns ends up here and is rendered as
// {"code","message","details"}.
func FiberHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := FromError(err)

		if appErr.HTTPCode >= fiber.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		if appErr.HTTPCode == fiber.StatusUnauthorized {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
		}

		return c.Status(appErr.HTTPCode).JSON(appErr)
	}
}

// FromError converts any error into an *AppError. Unknown errors become an
// opaque 500 so internal details never reach the client.
func FromError(err error) *AppError {
	if appErr, ok := As(err); ok {
		return appErr
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusNotFound:
			return New(CodeNotFound, fe.Message, fe.Code)
		case fiber.StatusMethodNotAllowed:
			return New(CodeMethodNotAllowed, fe.Message, fe.Code)
		case fiber.StatusUnauthorized:
			return Unauthorized(fe.Message)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return BadRequest(fe.Message)
		}
		if fe.Code < fiber.StatusInternalServerError {
			return New(CodeBadRequest, fe.Message, fe.Code)
		}
	}

	return Internal(err)
}
