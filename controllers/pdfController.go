package controllers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"invoice-backend/cache"
	"invoice-backend/database"
	"invoice-backend/models"
	"invoice-backend/pdf"
)

// GetInvoicePDF serves the rendered invoice. The route is public: the link is
// what the recipient receives by email.
func GetInvoicePDF(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	userID, invoiceID := c.Params("userId"), c.Params("invoiceId")
	invoice, err := findInvoice(db, userID, invoiceID)
	if isNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No invoice found"})
	}
	if err != nil {
		return err
	}

	var settings models.Settings
	err = db.Where("user_id = ?", userID).First(&settings).Error
	if isNotFound(err) {
		return pdf.ErrMissingSettings
	}
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	key := cache.PDFKey(invoice.ID, invoice.UpdatedAt, settings.UpdatedAt)
	body, err := deps.PDFCache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrMiss) {
			deps.Logger.Warn("pdf cache read failed", "invoice_id", invoice.ID, "error", err)
		}
		doc, err := deps.Renderer.Render(invoice, &settings)
		if err != nil {
			return err
		}
		body = doc.Bytes
		if err := deps.PDFCache.Set(ctx, key, body, deps.PDFCacheTTL); err != nil {
			deps.Logger.Warn("pdf cache write failed", "invoice_id", invoice.ID, "error", err)
		}
		c.Set("X-Cache", "MISS")
	} else {
		c.Set("X-Cache", "HIT")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="invoice-%s.pdf"`, invoice.InvoiceNo))
	return c.Send(body)
}
