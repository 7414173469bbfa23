package server

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wichananm65/misdis-backend/internal/account"
	"github.com/wichananm65/misdis-backend/internal/apperror"
	"github.com/wichananm65/misdis-backend/internal/auth"
	"github.com/wichananm65/misdis-backend/internal/config"
	"github.com/wichananm65/misdis-backend/internal/database"
	"github.com/wichananm65/misdis-backend/internal/federal"
	"github.com/wichananm65/misdis-backend/internal/logger"
	"github.com/wichananm65/misdis-backend/internal/metrics"
	"github.com/wichananm65/misdis-backend/internal/validation"
	"go.uber.org/zap"
)

// New builds the HTTP application. reg receives the request and pool
// metrics served on /metrics.
func New(cfg config.Config, db *sql.DB, log *zap.Logger, reg *prometheus.Registry) (*fiber.App, error) {
	v, err := validation.New(account.Rules()...)
	if err != nil {
		return nil, err
	}
	m, err := metrics.New(reg, db)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		AppName:               "misdis-backend",
		ErrorHandler:          apperror.FiberHandler(log),
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.Middleware(log))
	app.Use(m.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", health(db))
	app.Get("/metrics", m.Handler())

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTLeeway)
	guard := auth.Guard(tokens)
	session := database.Session(db, cfg.RequestTimeout)

	federalMW := []fiber.Handler{session}
	if cfg.AuthFederalRoutes {
		federalMW = []fiber.Handler{guard, session}
	}
	services := federal.NewServices(func(l *federal.Level) federal.Repository {
		return federal.NewPostgresRepository(db, l)
	})
	federal.NewHandler(v, services...).RegisterRoutes(app.Group("/federal"), federalMW...)

	accounts := account.NewHandler(
		account.NewService(account.NewPostgresRepository(db), tokens, cfg.BcryptCost),
		v,
	)
	readMW := []fiber.Handler{session}
	if cfg.AuthAccountRoutes {
		readMW = []fiber.Handler{guard, session}
	}
	grp := app.Group("/account")
	accounts.RegisterMeRoute(grp, guard, session)
	accounts.RegisterPublicRoutes(grp, session)
	accounts.RegisterProtectedRoutes(grp, readMW...)

	return app, nil
}

func health(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
