package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"invoice-backend/database"
	"invoice-backend/models"
)

// Idempotency processes Idempotency-Key for mutating HTTP methods. The first
// completed response for a key is stored and replayed for retries of the same
// request; reusing a key with a different request is a 409.
func Idempotency() fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Idempotency-Key too long"})
		}

		userID := UserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "auth context missing"})
		}

		path := c.OriginalURL() // includes query string
		reqHash := requestHash(method, path, c.Body(), userID)

		// ---- Phase 1: read or create the "pending" record
		replayed := false
		err := database.DB.Transaction(func(tx *gorm.DB) error {
			var existing models.IdempotencyKey
			err := tx.Where("user_id = ? AND idem_key = ?", userID, key).First(&existing).Error
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
				}
				rec := models.IdempotencyKey{
					Key:         key,
					UserID:      userID,
					RequestHash: reqHash,
					Method:      method,
					Path:        path,
				}
				if e2 := tx.Create(&rec).Error; e2 != nil {
					// Could be a unique race: read again
					if e3 := tx.Where("user_id = ? AND idem_key = ?", userID, key).First(&existing).Error; e3 != nil {
						return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
					}
				} else {
					existing = rec
				}
			}

			if existing.RequestHash != reqHash {
				return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
			}
			if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
				replayed = true
				c.Status(existing.ResponseStatus)
				c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
				c.Set("Idempotent-Replayed", "true")
				return c.Send(existing.ResponseBody)
			}
			return nil
		})
		if err != nil || replayed {
			return err
		}

		forget := func() {
			// Failed attempts may be retried with the same key.
			_ = database.DB.Where("user_id = ? AND idem_key = ?", userID, key).Delete(&models.IdempotencyKey{}).Error
		}
		if err := c.Next(); err != nil {
			forget()
			return err
		}

		status := c.Response().StatusCode()
		if status >= fiber.StatusBadRequest {
			forget()
			return nil
		}

		// ---- Phase 2: store the response (best-effort)
		now := time.Now().UTC()
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)
		if err := database.DB.Model(&models.IdempotencyKey{}).
			Where("user_id = ? AND idem_key = ?", userID, key).
			Updates(map[string]any{
				"response_status": status,
				"response_body":   blob,
				"completed_at":    &now,
			}).Error; err != nil {
			slog.Warn("idempotency store failed", "key", key, "error", err)
		}
		return nil
	}
}

// requestHash is sha256(method|path|body|user).
func requestHash(method, path string, body []byte, userID string) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(path))
	h.Write([]byte{'\n'})
	h.Write(body)
	h.Write([]byte{'\n'})
	h.Write([]byte(userID))
	return hex.EncodeToString(h.Sum(nil))
}
