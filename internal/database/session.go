package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Session scopes one transaction to each request. The transaction is
// committed when the handler succeeds with a status below 400 and rolled
// back on every other exit path, panics included.
func Session(db *sql.DB, timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		done := false
		defer func() {
			if !done {
				_ = tx.Rollback()
			}
		}()

		parent := c.UserContext()
		c.SetUserContext(WithQuerier(ctx, tx))
		defer c.SetUserContext(parent)

		if err := c.Next(); err != nil {
			return err
		}
		if c.Response().StatusCode() >= fiber.StatusBadRequest {
			return nil
		}

		done = true
		return tx.Commit()
	}
}
