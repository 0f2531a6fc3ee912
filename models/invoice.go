package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"invoice-backend/currency"
)

func init() {
	// Amounts go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Status string

const (
	StatusPaid    Status = "PAID"
	StatusPending Status = "PENDING"
	StatusCancel  Status = "CANCEL"
)

func Statuses() []Status {
	return []Status{StatusPaid, StatusPending, StatusCancel}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusCancel:
		return true
	}
	return false
}

// Party is the sender or the recipient of an invoice.
type Party struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	Address3 string `json:"address3"`
}

// AddressLines returns the non-blank address lines in order.
func (p Party) AddressLines() []string {
	var lines []string
	for _, l := range []string{p.Address1, p.Address2, p.Address3} {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// Decimal places of the quantity and percentage columns. Money columns hold
// two places, enough for every supported currency.
const (
	QuantityScale = 3
	PercentScale  = 2
)

// Invoice is the current state of a billing document.
type Invoice struct {
	ID        string `json:"id" gorm:"primaryKey;size:36"`
	UserID    string `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_invoices_user_no,priority:1"`
	InvoiceNo string `json:"invoice_no" gorm:"not null;uniqueIndex:idx_invoices_user_no,priority:2"`

	From Party `json:"from" gorm:"embedded;embeddedPrefix:from_"`
	To   Party `json:"to" gorm:"embedded;embeddedPrefix:to_"`

	InvoiceDate time.Time `json:"invoice_date"`
	DueDate     time.Time `json:"due_date"`

	Items         []InvoiceItem   `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	SubTotal      decimal.Decimal `json:"sub_total" gorm:"type:numeric(14,2)"`
	Discount      decimal.Decimal `json:"discount" gorm:"type:numeric(14,2)"`
	TaxPercentage decimal.Decimal `json:"tax_percentage" gorm:"type:numeric(5,2)"`
	Total         decimal.Decimal `json:"total" gorm:"type:numeric(14,2)"`

	Currency currency.Code `json:"currency" gorm:"size:3;not null"`
	Status   Status        `json:"status" gorm:"size:10;not null;default:PENDING;index"`
	Notes    string        `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (invoice *Invoice) BeforeCreate(tx *gorm.DB) (err error) {
	if invoice.ID == "" {
		invoice.ID = uuid.NewString()
	}
	if invoice.Status == "" {
		invoice.Status = StatusPending
	}
	return
}

type InvoiceItem struct {
	ID        uint            `json:"-" gorm:"primaryKey"`
	InvoiceID string          `json:"-" gorm:"size:36;index"`
	Position  int             `json:"-"`
	ItemName  string          `json:"item_name" gorm:"not null"`
	Quantity  decimal.Decimal `json:"quantity" gorm:"type:numeric(12,3)"`
	Price     decimal.Decimal `json:"price" gorm:"type:numeric(14,2)"`
	Total     decimal.Decimal `json:"total" gorm:"type:numeric(14,2)"`
}

// InvoiceVersion is an immutable snapshot taken before an invoice changes.
type InvoiceVersion struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	InvoiceID string         `json:"invoice_id" gorm:"size:36;uniqueIndex:idx_invoice_versions_invoice_id_version_no,priority:1"`
	VersionNo int            `json:"version_no" gorm:"not null;uniqueIndex:idx_invoice_versions_invoice_id_version_no,priority:2"`
	Reason    string         `json:"reason" gorm:"size:20"` // "update" | "status"
	Snapshot  datatypes.JSON `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}
