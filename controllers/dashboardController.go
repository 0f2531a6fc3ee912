package controllers

import (
	"github.com/gofiber/fiber/v2"

	"invoice-backend/dashboard"
	"invoice-backend/database"
	"invoice-backend/middlewares"
	"invoice-backend/models"
)

func userInvoices(c *fiber.Ctx) ([]models.Invoice, error) {
	db, err := database.GetDB(c)
	if err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	err = db.Where("user_id = ?", middlewares.UserID(c)).Order("created_at ASC").Find(&invoices).Error
	return invoices, err
}

func DashboardStats(c *fiber.Ctx) error {
	invoices, err := userInvoices(c)
	if err != nil {
		return err
	}
	return c.JSON(dashboard.ComputeStats(invoices, deps.Now()))
}

func DashboardCharts(c *fiber.Ctx) error {
	invoices, err := userInvoices(c)
	if err != nil {
		return err
	}
	return c.JSON(dashboard.ComputeCharts(invoices, deps.Now()))
}
