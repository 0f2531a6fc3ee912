package middlewares

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"invoice-backend/database"
)

// RequestTx opens a per-request DB transaction.
// Order: run AFTER IsAuthenticatedHeader() and AFTER Idempotency() so
// idempotency records aren't tied to the handler TX.
// The TX rolls back when the handler errors or answers with a 4xx/5xx status.
func RequestTx() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		if database.DB == nil {
			return fiber.NewError(fiber.StatusInternalServerError, "database not initialized")
		}

		tx := database.DB.WithContext(c.UserContext()).Begin()
		if tx.Error != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to begin transaction")
		}

		defer func() {
			if r := recover(); r != nil {
				_ = tx.Rollback()
				panic(r) // re-panic after rollback so Fiber's handler can catch
			}
			if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
				_ = tx.Rollback()
				return
			}
			if e := tx.Commit().Error; e != nil {
				slog.Error("tx commit failed", "path", c.Path(), "error", e)
				err = fiber.NewError(fiber.StatusInternalServerError, "transaction commit failed")
			}
		}()

		// Make the TX available to handlers via database.GetDB(c).
		c.Locals("tx", tx)

		err = c.Next()
		return err
	}
}
