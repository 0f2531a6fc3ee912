package routes

import (
	"github.com/gofiber/fiber/v2"

	"invoice-backend/controllers"
	"invoice-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Public PDF link sent to invoice recipients. The guid constraints keep
	// /invoice/:id/versions out of this route.
	api.Get("/invoice/:userId<guid>/:invoiceId<guid>", controllers.GetInvoicePDF)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction (commits on success, rolls back on 4xx/5xx)
	protected.Use(middlewares.RequestTx())

	// Profile and onboarding
	protected.Get("/user", controllers.GetUser)
	protected.Put("/user", controllers.UpdateUser)

	// Branding
	protected.Get("/settings", controllers.GetSettings)
	protected.Put("/settings", controllers.SaveSettings)
	protected.Post("/settings", controllers.SaveSettings)

	// Invoices (every change keeps a version)
	protected.Post("/invoice", controllers.CreateInvoice)
	protected.Get("/invoice", controllers.GetInvoices)
	protected.Get("/invoice/:id", controllers.GetInvoice)
	protected.Put("/invoice/:id", controllers.UpdateInvoice)
	protected.Delete("/invoice/:id", controllers.DeleteInvoice)
	protected.Patch("/invoice/:id/status", controllers.UpdateInvoiceStatus)
	protected.Get("/invoice/:id/versions", controllers.GetInvoiceVersions)

	// Email
	protected.Post("/email/:invoiceId", controllers.SendInvoiceEmail)

	// Dashboard
	protected.Get("/dashboard/stats", controllers.DashboardStats)
	protected.Get("/dashboard/charts", controllers.DashboardCharts)
}
