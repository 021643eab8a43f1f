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

type ProgressController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Tracker *services.ProgressTracker
}

func NewProgressController(db *gorm.DB, cfg *config.Config, tracker *services.ProgressTracker) *ProgressController {
	return &ProgressController{DB: db, Cfg: cfg, Tracker: tracker}
}

// GetLevelProgress returns the user's progress row for one level, creating it
// lazily. The payload also says whether a remedial session is available.
func (pc *ProgressController) GetLevelProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	level, err := strconv.Atoi(c.Params("level"))
	if err != nil || level < 1 {
		return utils.BadRequest(c, "Invalid level")
	}

	progress, err := pc.Tracker.GetOrCreate(userID, level)
	if err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	outstanding, err := pc.Tracker.HasOutstandingFailures(userID, level)
	if err != nil {
		return utils.InternalServerError(c, "Could not load failed questions")
	}

	remedialAvailable := outstanding &&
		progress.CompletedSessions >= progress.TotalSessionsForLevel &&
		!progress.IsLevelCompleted

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"level":                    progress.Level,
		"current_session_number":   progress.CurrentSessionNumber,
		"total_sessions_for_level": progress.TotalSessionsForLevel,
		"completed_sessions":       progress.CompletedSessions,
		"is_level_completed":       progress.IsLevelCompleted,
		"remedial_available":       remedialAvailable,
	})
}

// GetProgress lists the user's progress across all levels they touched.
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var rows []models.SessionProgress
	if err := pc.DB.Where("user_id = ?", userID).Order("level").Find(&rows).Error; err != nil {
		return utils.InternalServerError(c, "Could not load progress")
	}

	var result []fiber.Map
	for _, progress := range rows {
		result = append(result, fiber.Map{
			"level":                    progress.Level,
			"current_session_number":   progress.CurrentSessionNumber,
			"total_sessions_for_level": progress.TotalSessionsForLevel,
			"completed_sessions":       progress.CompletedSessions,
			"is_level_completed":       progress.IsLevelCompleted,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"progress": result})
}

// GetProgressOverview returns the user's aggregate statistics row.
func (pc *ProgressController) GetProgressOverview(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, pc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var stats models.UserStats
	pc.DB.Where("user_id = ?", userID).First(&stats)

	var certCount int64
	pc.DB.Model(&models.UserCertification{}).Where("user_id = ?", userID).Count(&certCount)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"sessions_completed": stats.SessionsCompleted,
		"sessions_passed":    stats.SessionsPassed,
		"questions_answered": stats.QuestionsAnswered,
		"correct_answers":    stats.CorrectAnswers,
		"average_score":      stats.AverageScore,
		"streak_days":        stats.StreakDays,
		"certifications":     certCount,
	})
}
