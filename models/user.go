package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"invoice-backend/currency"
)

const passwordCost = 12

type User struct {
	Id        string        `json:"id" gorm:"primaryKey"`
	FirstName string        `json:"first_name" gorm:"size:50"`
	LastName  string        `json:"last_name" gorm:"size:50"`
	Password  []byte        `json:"-" gorm:"not null"`
	Email     string        `json:"email" gorm:"unique;not null"`
	Currency  currency.Code `json:"currency" gorm:"size:3;not null;default:USD"`
	Onboarded bool          `json:"onboarded"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// UUID version 4
	user.Id = uuid.NewString()
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if user.Currency == "" {
		user.Currency = currency.Default
	}
	return
}

func (user *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return err
	}
	user.Password = hashedPassword
	return nil
}

func (user *User) ComparePassword(password string) error {
	return bcrypt.CompareHashAndPassword(user.Password, []byte(password))
}

// DisplayName is the name used in email greetings.
func (user *User) DisplayName() string {
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
