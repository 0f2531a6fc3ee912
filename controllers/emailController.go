package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"invoice-backend/currency"
	"invoice-backend/database"
	"invoice-backend/mailer"
	"invoice-backend/middlewares"
)

type emailInput struct {
	Subject string `json:"subject" validate:"required,max=200"`
}

// invoiceURL is the public PDF link for an invoice.
func invoiceURL(userID, invoiceID string) string {
	return fmt.Sprintf("%s/api/invoice/%s/%s", deps.Domain, userID, invoiceID)
}

// SendInvoiceEmail mails the invoice summary and PDF link to the recipient.
func SendInvoiceEmail(c *fiber.Ctx) error {
	var data emailInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	if deps.Mailer == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "email is not configured")
	}

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	userID := middlewares.UserID(c)

	invoice, err := findInvoice(db, userID, c.Params("invoiceId"))
	if isNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No invoice found"})
	}
	if err != nil {
		return err
	}
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	email := mailer.InvoiceEmail{
		To:         invoice.To.Email,
		Subject:    data.Subject,
		FirstName:  user.FirstName,
		InvoiceNo:  invoice.InvoiceNo,
		DueDate:    mailer.LongDate(invoice.DueDate),
		Total:      currency.Format(invoice.Total, invoice.Currency),
		InvoiceURL: invoiceURL(userID, invoice.ID),
	}
	if err := deps.Mailer.SendInvoice(c.UserContext(), email); err != nil {
		deps.Logger.Error("send invoice email", "invoice_id", invoice.ID, "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Failed to send email")
	}

	return c.JSON(fiber.Map{"message": "Email sent successfully"})
}
