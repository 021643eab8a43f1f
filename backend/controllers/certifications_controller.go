package controllers

import (
	"certilang/backend/config"
	"certilang/backend/services"
	"certilang/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CertificationsController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Certs *services.CertificationService
}

func NewCertificationsController(db *gorm.DB, cfg *config.Config, certs *services.CertificationService) *CertificationsController {
	return &CertificationsController{DB: db, Cfg: cfg, Certs: certs}
}

func (cc *CertificationsController) GetCertifications(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	certs, err := cc.Certs.ListForUser(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not load certifications")
	}

	var result []fiber.Map
	for _, cert := range certs {
		result = append(result, fiber.Map{
			"level":        cert.Level,
			"score":        cert.Score,
			"certified_at": cert.CertifiedAt,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"certifications": result})
}

func (cc *CertificationsController) GetMaxLevel(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, cc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	maxLevel, err := cc.Certs.MaxCertifiedLevel(userID)
	if err != nil {
		return utils.InternalServerError(c, "Could not compute max certified level")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"max_certified_level": maxLevel})
}
