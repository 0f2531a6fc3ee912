package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"invoice-backend/billing"
	"invoice-backend/currency"
	"invoice-backend/database"
	"invoice-backend/middlewares"
	"invoice-backend/models"
	"invoice-backend/utils"
)

const invoicesPerPage = 10

type partyInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Address1 string `json:"address1" validate:"max=200"`
	Address2 string `json:"address2" validate:"max=200"`
	Address3 string `json:"address3" validate:"max=200"`
}

func (p partyInput) party() models.Party {
	return models.Party{
		Name:     p.Name,
		Email:    p.Email,
		Address1: p.Address1,
		Address2: p.Address2,
		Address3: p.Address3,
	}
}

type invoiceItemInput struct {
	ItemName string          `json:"item_name" validate:"required,max=500"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

type invoiceInput struct {
	InvoiceNo     string             `json:"invoice_no" validate:"required,max=50"`
	InvoiceDate   time.Time          `json:"invoice_date" validate:"required"`
	DueDate       time.Time          `json:"due_date" validate:"required,gtefield=InvoiceDate"`
	From          partyInput         `json:"from"`
	To            partyInput         `json:"to"`
	Items         []invoiceItemInput `json:"items" validate:"required,min=1,max=500,dive"`
	Discount      decimal.Decimal    `json:"discount" validate:"gte=0"`
	TaxPercentage decimal.Decimal    `json:"tax_percentage" validate:"gte=0,lte=100"`
	Currency      currency.Code      `json:"currency" validate:"required,currency"`
	Status        models.Status      `json:"status" validate:"omitempty,invoice_status"`
	Notes         string             `json:"notes" validate:"max=5000"`
}

type statusInput struct {
	Status models.Status `json:"status" validate:"required,invoice_status"`
}

func bindInvoice(c *fiber.Ctx) (*invoiceInput, error) {
	var data invoiceInput
	if err := c.BodyParser(&data); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizeDTO(&data)
	if err := middlewares.ValidateStruct(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// apply copies the input onto inv and recomputes every amount. Client
// supplied totals are never trusted.
func (in *invoiceInput) apply(inv *models.Invoice) ([]string, error) {
	// Inputs are rounded to the column scales before totals are derived.
	lines := make([]billing.Line, len(in.Items))
	for i, it := range in.Items {
		lines[i] = billing.Line{
			Name:     it.ItemName,
			Quantity: it.Quantity.Round(models.QuantityScale),
			Price:    in.Currency.Round(it.Price),
		}
	}
	tax := in.TaxPercentage.Round(models.PercentScale)
	res, err := billing.Compute(lines, in.Discount, tax, in.Currency)
	if err != nil {
		return nil, err
	}

	inv.InvoiceNo = in.InvoiceNo
	inv.InvoiceDate = in.InvoiceDate
	inv.DueDate = in.DueDate
	inv.From = in.From.party()
	inv.To = in.To.party()
	inv.Currency = in.Currency
	inv.Notes = in.Notes
	if in.Status != "" {
		inv.Status = in.Status
	}

	inv.Items = make([]models.InvoiceItem, len(in.Items))
	for i, l := range lines {
		inv.Items[i] = models.InvoiceItem{
			InvoiceID: inv.ID,
			Position:  i,
			ItemName:  l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Total:     res.LineTotals[i],
		}
	}
	inv.SubTotal = res.Subtotal
	inv.Discount = res.Discount
	inv.TaxPercentage = res.TaxPercentage
	inv.Total = res.Total

	var warnings []string
	for _, w := range res.Warnings {
		warnings = append(warnings, w.Error())
	}
	return warnings, nil
}

func withItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func findInvoice(db *gorm.DB, userID, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := withItems(db).Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func invoiceNoTaken(db *gorm.DB, userID, invoiceNo, exceptID string) (bool, error) {
	var n int64
	q := db.Model(&models.Invoice{}).Where("user_id = ? AND invoice_no = ?", userID, invoiceNo)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// snapshot stores the current state of inv as the next version.
func snapshot(db *gorm.DB, inv *models.Invoice, reason string) error {
	blob, err := json.Marshal(inv)
	if err != nil {
		return err
	}
	var last int
	if err := db.Model(&models.InvoiceVersion{}).
		Where("invoice_id = ?", inv.ID).
		Select("COALESCE(MAX(version_no), 0)").
		Scan(&last).Error; err != nil {
		return err
	}
	return db.Create(&models.InvoiceVersion{
		InvoiceID: inv.ID,
		VersionNo: last + 1,
		Reason:    reason,
		Snapshot:  datatypes.JSON(blob),
	}).Error
}

func CreateInvoice(c *fiber.Ctx) error {
	data, err := bindInvoice(c)
	if err != nil {
		return err
	}

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	userID := middlewares.UserID(c)

	taken, err := invoiceNoTaken(db, userID, data.InvoiceNo, "")
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusConflict, "invoice number already exists")
	}

	invoice := models.Invoice{UserID: userID, Status: models.StatusPending}
	warnings, err := data.apply(&invoice)
	if err != nil {
		return err
	}
	if err := db.Create(&invoice).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Invoice created successfully",
		"data":     invoice,
		"warnings": warnings,
	})
}

// GetInvoices lists the caller's invoices newest first, ten per page.
func GetInvoices(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	userID := middlewares.UserID(c)

	page := utils.ParseIntDefault(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}

	var total int64
	if err := db.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return err
	}

	invoices := []models.Invoice{}
	if err := withItems(db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id").
		Limit(invoicesPerPage).
		Offset((page - 1) * invoicesPerPage).
		Find(&invoices).Error; err != nil {
		return err
	}

	totalPage := int((total + invoicesPerPage - 1) / invoicesPerPage)
	if totalPage == 0 {
		totalPage = 1
	}
	return c.JSON(fiber.Map{
		"message":   "success",
		"data":      invoices,
		"page":      page,
		"total":     total,
		"totalPage": totalPage,
	})
}

func GetInvoice(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	invoice, err := findInvoice(db, middlewares.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": invoice})
}

// UpdateInvoice replaces the invoice content and line items. The previous
// state is kept as a version.
func UpdateInvoice(c *fiber.Ctx) error {
	data, err := bindInvoice(c)
	if err != nil {
		return err
	}

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	userID := middlewares.UserID(c)

	invoice, err := findInvoice(db, userID, c.Params("id"))
	if err != nil {
		return err
	}

	taken, err := invoiceNoTaken(db, userID, data.InvoiceNo, invoice.ID)
	if err != nil {
		return err
	}
	if taken {
		return fiber.NewError(fiber.StatusConflict, "invoice number already exists")
	}

	if err := snapshot(db, invoice, "update"); err != nil {
		return err
	}

	warnings, err := data.apply(invoice)
	if err != nil {
		return err
	}

	if err := db.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if err := db.Omit("Items").Save(invoice).Error; err != nil {
		return err
	}
	if err := db.Create(&invoice.Items).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message":  "Invoice updated successfully",
		"data":     invoice,
		"warnings": warnings,
	})
}

func UpdateInvoiceStatus(c *fiber.Ctx) error {
	var data statusInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	invoice, err := findInvoice(db, middlewares.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}
	if invoice.Status == data.Status {
		return c.JSON(fiber.Map{"message": "Status unchanged", "data": invoice})
	}

	if err := snapshot(db, invoice, "status"); err != nil {
		return err
	}
	if err := db.Model(invoice).Update("status", data.Status).Error; err != nil {
		return err
	}
	invoice.Status = data.Status

	return c.JSON(fiber.Map{
		"message": "Status updated successfully",
		"data":    invoice,
	})
}

func DeleteInvoice(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	invoice, err := findInvoice(db, middlewares.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	if err := db.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceVersion{}).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", invoice.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.Invoice{}, "id = ?", invoice.ID).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Invoice deleted successfully"})
}

func GetInvoiceVersions(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	invoice, err := findInvoice(db, middlewares.UserID(c), c.Params("id"))
	if err != nil {
		return err
	}

	versions := []models.InvoiceVersion{}
	if err := db.Where("invoice_id = ?", invoice.ID).Order("version_no DESC").Find(&versions).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": versions})
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
