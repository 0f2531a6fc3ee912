package models

import "time"

// Settings holds the branding a user applies to rendered invoices. Images are
// stored as data URLs ("data:image/png;base64,...").
type Settings struct {
	ID          uint      `json:"-" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"uniqueIndex;not null"`
	InvoiceLogo string    `json:"invoiceLogo" gorm:"type:text"`
	Signature   Signature `json:"signature" gorm:"embedded;embeddedPrefix:signature_"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Signature struct {
	Name  string `json:"name"`
	Image string `json:"image" gorm:"type:text"`
}
