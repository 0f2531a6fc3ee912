package controllers

import (
	"github.com/gofiber/fiber/v2"

	"invoice-backend/currency"
	"invoice-backend/database"
	"invoice-backend/middlewares"
	"invoice-backend/models"
	"invoice-backend/utils"
)

type onboardingInput struct {
	FirstName string        `json:"firstName" validate:"required,min=3,max=50"`
	LastName  string        `json:"lastName" validate:"required,min=3,max=50"`
	Currency  currency.Code `json:"currency" validate:"omitempty,currency"`
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	db, err := database.GetDB(c)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := db.Where("id = ?", middlewares.UserID(c)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUser(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user})
}

// UpdateUser completes onboarding: name and default currency.
func UpdateUser(c *fiber.Ctx) error {
	var data onboardingInput
	if err := c.BodyParser(&data); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	utils.NormalizeDTO(&data)
	if data.Currency == "" {
		data.Currency = currency.Default
	}
	if err := middlewares.ValidateStruct(&data); err != nil {
		return err
	}

	user, err := currentUser(c)
	if err != nil {
		return err
	}

	user.FirstName = data.FirstName
	user.LastName = data.LastName
	user.Currency = data.Currency
	user.Onboarded = true

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}
	if err := db.Model(user).Updates(map[string]any{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"currency":   user.Currency,
		"onboarded":  true,
	}).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data":    user,
	})
}
