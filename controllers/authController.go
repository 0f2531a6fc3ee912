package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"invoice-backend/currency"
	"invoice-backend/database"
	"invoice-backend/middlewares"
	"invoice-backend/models"
	"invoice-backend/utils"
)

type registerInput struct {
	FirstName       string        `json:"first_name" validate:"max=50"`
	LastName        string        `json:"last_name" validate:"max=50"`
	Email           string        `json:"email" validate:"required,email"`
	Password        string        `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string        `json:"password_confirm" validate:"required"`
	Currency        currency.Code `json:"currency" validate:"omitempty,currency"`
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(c *fiber.Ctx) error {
	var data registerInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}
	utils.NormalizeDTO(&data)
	data.Email = strings.ToLower(data.Email)

	if data.Password != data.PasswordConfirm {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "passwords do not match",
		})
	}

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	var mailExist models.User
	err = db.Where("email = ?", data.Email).First(&mailExist).Error
	if err == nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "email already exists",
		})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	user := models.User{
		FirstName: data.FirstName,
		LastName:  data.LastName,
		Email:     data.Email,
		Currency:  data.Currency,
	}
	if err := user.SetPassword(data.Password); err != nil {
		return err
	}
	if err := db.Create(&user).Error; err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Could not create User",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func Login(c *fiber.Ctx) error {
	var data loginInput
	if err := middlewares.BindAndValidate(c, &data); err != nil {
		return err
	}

	db, err := database.GetDB(c)
	if err != nil {
		return err
	}

	var user models.User
	if err := db.Where("email = ?", strings.ToLower(strings.TrimSpace(data.Email))).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"message": "Invalid credentials",
			})
		}
		return err
	}

	if err := user.ComparePassword(data.Password); err != nil {
		c.Status(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"message": "Invalid credentials",
		})
	}

	token, err := middlewares.GenerateJWT(user.Id, user.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":        user.Id,
			"name":      user.DisplayName(),
			"email":     user.Email,
			"currency":  user.Currency,
			"onboarded": user.Onboarded,
		},
	})
}

// Logout clears a cookie left by older clients; bearer tokens simply expire.
func Logout(c *fiber.Ctx) error {
	cookie := fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	}
	c.Cookie(&cookie)
	return c.JSON(fiber.Map{
		"message": "success",
	})
}
