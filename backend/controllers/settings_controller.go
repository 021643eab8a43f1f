package controllers

import (
	"strconv"

	"certilang/backend/config"
	"certilang/backend/models"
	"certilang/backend/services"
	"certilang/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SettingsController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Settings *services.SettingsService
}

func NewSettingsController(db *gorm.DB, cfg *config.Config, settings *services.SettingsService) *SettingsController {
	return &SettingsController{DB: db, Cfg: cfg, Settings: settings}
}

func (sc *SettingsController) ListSettings(c *fiber.Ctx) error {
	var settings []models.Setting
	if err := sc.DB.Order("key").Find(&settings).Error; err != nil {
		return utils.InternalServerError(c, "Could not query settings")
	}
	return utils.Success(c, fiber.StatusOK, fiber.Map{"settings": settings})
}

// UpsertSetting writes one configuration key. Changing a questions percentage
// resizes the session count for the affected level on each user's next
// progress load; in-flight progress gets clamped, not migrated.
func (sc *SettingsController) UpsertSetting(c *fiber.Ctx) error {
	var input struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Key == "" {
		return utils.BadRequest(c, "key is required")
	}

	if err := sc.Settings.Set(input.Key, input.Value); err != nil {
		return utils.InternalServerError(c, "Could not save setting")
	}

	return c.JSON(fiber.Map{"message": "Setting saved"})
}

// GetLevelPercentage exposes the effective percentage for a level, after
// override and fallback resolution.
func (sc *SettingsController) GetLevelPercentage(c *fiber.Ctx) error {
	level, err := strconv.Atoi(c.Params("level"))
	if err != nil || level < 1 {
		return utils.BadRequest(c, "Invalid level")
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"level":                level,
		"questions_percentage": sc.Settings.QuestionsPercentage(level),
	})
}
