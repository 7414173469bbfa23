package auth

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/wichananm65/misdis-backend/internal/apperror"
)

const (
	tokenKey   = "user"
	subjectKey = "subject"
)

// Guard rejects requests without a valid bearer token with 401. On success
// the token subject is available through SubjectFromCtx.
func Guard(tokens *Tokens) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    tokens.secret,
		SigningMethod: jwt.SigningMethodHS256.Alg(),
		Claims:        &tokenClaims{},
		ContextKey:    tokenKey,
		SuccessHandler: func(c *fiber.Ctx) error {
			token, _ := c.Locals(tokenKey).(*jwt.Token)
			subject, err := tokens.Subject(token)
			if err != nil {
				return apperror.Unauthorized("Could not validate credentials")
			}
			c.Locals(subjectKey, subject)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if c.Get(fiber.HeaderAuthorization) == "" {
				return apperror.Unauthorized("Not authenticated")
			}
			return apperror.Unauthorized("Could not validate credentials")
		},
	})
}

// SubjectFromCtx returns the subject stored by Guard.
func SubjectFromCtx(c *fiber.Ctx) (string, bool) {
	subject, ok := c.Locals(subjectKey).(string)
	return subject, ok && subject != ""
}
