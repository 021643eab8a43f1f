package controllers

import (
	"errors"
	"time"

	"certilang/backend/config"
	"certilang/backend/models"
	"certilang/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewPaymentsController(db *gorm.DB, cfg *config.Config) *PaymentsController {
	return &PaymentsController{DB: db, Cfg: cfg}
}

// lookupPromo returns the promo code row when it is usable right now.
func (pc *PaymentsController) lookupPromo(code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	if err := pc.DB.Where("code = ? AND is_active = ?", code, true).First(&promo).Error; err != nil {
		return nil, err
	}
	if promo.ExpiresAt != nil && promo.ExpiresAt.Before(time.Now()) {
		return nil, gorm.ErrRecordNotFound
	}
	if promo.MaxUses > 0 && promo.UsedCount >= promo.MaxUses {
		return nil, gorm.ErrRecordNotFound
	}
	return &promo, nil
}

// ValidatePromo checks a promo code and returns its discount.
func (pc *PaymentsController) ValidatePromo(c *fiber.Ctx) error {
	var input struct {
		Code string `json:"code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	promo, err := pc.lookupPromo(input.Code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Promo code is invalid or expired")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"code":             promo.Code,
		"discount_percent": promo.DiscountPercent,
	})
}

// CreatePayment records a pending payment, applying a promo code if one is
// supplied. The actual charge is handled by the external payment provider;
// this row tracks the intent and the final amount.
func (pc *PaymentsController) CreatePayment(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		AmountCents int    `json:"amount_cents"`
		PromoCode   string `json:"promo_code"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.AmountCents <= 0 {
		return utils.BadRequest(c, "amount_cents must be positive")
	}

	amount := input.AmountCents
	var promoID *uint
	if input.PromoCode != "" {
		promo, err := pc.lookupPromo(input.PromoCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.BadRequest(c, "Promo code is invalid or expired")
			}
			return utils.InternalServerError(c, "Could not query database")
		}
		amount = amount * (100 - promo.DiscountPercent) / 100
		promoID = &promo.ID

		promo.UsedCount++
		if err := pc.DB.Save(promo).Error; err != nil {
			return utils.InternalServerError(c, "Could not update promo code")
		}
	}

	payment := models.Payment{
		UserID:      userID,
		Reference:   uuid.NewString(),
		AmountCents: amount,
		Currency:    "EUR",
		PromoCodeID: promoID,
		Status:      "pending",
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create payment")
	}

	return c.JSON(fiber.Map{
		"message": "Payment created",
		"payment": fiber.Map{
			"reference":    payment.Reference,
			"amount_cents": payment.AmountCents,
			"currency":     payment.Currency,
			"status":       payment.Status,
		},
	})
}

// CreatePromoCode is the admin endpoint for issuing promo codes.
func (pc *PaymentsController) CreatePromoCode(c *fiber.Ctx) error {
	var input struct {
		Code            string     `json:"code"`
		DiscountPercent int        `json:"discount_percent"`
		MaxUses         int        `json:"max_uses"`
		ExpiresAt       *time.Time `json:"expires_at"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Code == "" || input.DiscountPercent < 1 || input.DiscountPercent > 100 {
		return utils.BadRequest(c, "code and a discount between 1 and 100 are required")
	}

	promo := models.PromoCode{
		Code:            input.Code,
		DiscountPercent: input.DiscountPercent,
		MaxUses:         input.MaxUses,
		ExpiresAt:       input.ExpiresAt,
		IsActive:        true,
	}
	if err := pc.DB.Create(&promo).Error; err != nil {
		return utils.InternalServerError(c, "Could not create promo code")
	}

	return c.JSON(fiber.Map{
		"message": "Promo code created",
		"promo":   promo,
	})
}

// ListPayments is the admin view over recorded payments.
func (pc *PaymentsController) ListPayments(c *fiber.Ctx) error {
	var payments []models.Payment
	if err := pc.DB.Order("created_at DESC").Limit(200).Find(&payments).Error; err != nil {
		return utils.InternalServerError(c, "Could not query payments")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"payments": payments})
}
