package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"invoice-backend/database"
	"invoice-backend/middlewares"
	"invoice-backend/models"
	"invoice-backend/utils"
)

type signatureInput struct {
	Name  *string `json:"name" validate:"omitempty,max=100"`
	Image *string `json:"image"`
}

type settingsInput struct {
	InvoiceLogo *string         `json:"invoiceLogo"`
	Signature   *signatureInput `json:"signature"`
}

func (in settingsInput) applyTo(s *models.Settings) {
	if in.InvoiceLogo != nil {
		s.InvoiceLogo = *in.InvoiceLogo
	}
	if in.Signature == nil {
		return
	}
	if in.Signature.Name != nil {
		s.Signature.Name = *in.Signature.Name
	}
	if in.Signature.Image != nil {
		s.Signature.Image = *in.Signature.Image
	}
}

func GetSettings(c *fiber.Ctx) error {
	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	var settings models.Settings
	err = db.Where("user_id = ?", middlewares.UserID(c)).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.JSON(fiber.Map{"data": nil})
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// SaveSettings creates or patches the caller's branding. Omitted fields are
// left unchanged.
func SaveSettings(c *fiber.Ctx) error {
	var data settingsInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizePtrDTO(&data)
	updates := utils.UpdatesFromPtrDTO(&data, nil)

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	userID := middlewares.UserID(c)
	var settings models.Settings
	err = db.Where("user_id = ?", userID).First(&settings).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings = models.Settings{UserID: userID}
		data.applyTo(&settings)
		if err := db.Create(&settings).Error; err != nil {
			return err
		}
	case err != nil:
		return err
	case len(updates) > 0:
		if err := db.Model(&settings).Updates(updates).Error; err != nil {
			return err
		}
		if err := db.Where("user_id = ?", userID).First(&settings).Error; err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{
		"message": "Setting updated Successfully",
		"data":    settings,
	})
}
