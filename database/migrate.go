package database

import (
	"fmt"

	"gorm.io/gorm"

	"invoice-backend/models"
)

// AutoMigrate applies (idempotent) migrations:
// - AutoMigrate (tables/columns/index tags)
// - CHECK constraints on money columns (postgres only)
func AutoMigrate(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&models.User{},
			&models.Settings{},
			&models.Invoice{},
			&models.InvoiceItem{},
			&models.InvoiceVersion{},
			&models.IdempotencyKey{},
		); err != nil {
			return fmt.Errorf("automigrate failed: %w", err)
		}

		if tx.Dialector.Name() != "postgres" {
			return nil
		}

		checks := []struct{ table, name, expr string }{
			{"invoices", "chk_invoices_discount_nonneg", "discount >= 0"},
			{"invoices", "chk_invoices_tax_range", "tax_percentage >= 0 AND tax_percentage <= 100"},
			{"invoices", "chk_invoices_status", "status IN ('PAID','PENDING','CANCEL')"},
			{"invoice_items", "chk_invoice_items_quantity_nonneg", "quantity >= 0"},
			{"invoice_items", "chk_invoice_items_price_nonneg", "price >= 0"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%s'::regclass
		  AND conname  = '%s'
	) THEN
		ALTER TABLE %s ADD CONSTRAINT %s CHECK (%s);
	END IF;
END $$;`, c.table, c.name, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", c.name, err)
			}
		}
		return nil
	})
}
