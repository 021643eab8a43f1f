package controllers

import (
	"strconv"

	"certilang/backend/config"
	"certilang/backend/models"
	"certilang/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AnalyticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAnalyticsController(db *gorm.DB, cfg *config.Config) *AnalyticsController {
	return &AnalyticsController{DB: db, Cfg: cfg}
}

// GetLevelAnalytics aggregates session outcomes per level for the back office.
func (ac *AnalyticsController) GetLevelAnalytics(c *fiber.Ctx) error {
	var rows []struct {
		Level    int     `json:"level"`
		Attempts int     `json:"attempts"`
		Passed   int     `json:"passed"`
		AvgScore float64 `json:"avg_score"`
	}

	err := ac.DB.Model(&models.TestSession{}).
		Select("level, COUNT(*) as attempts, SUM(CASE WHEN is_session_validated THEN 1 ELSE 0 END) as passed, AVG(score) as avg_score").
		Group("level").
		Order("level").
		Scan(&rows).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query sessions")
	}

	var certRows []struct {
		Level int `json:"level"`
		Count int `json:"count"`
	}
	ac.DB.Model(&models.UserCertification{}).
		Select("level, COUNT(*) as count").
		Group("level").
		Scan(&certRows)

	certsByLevel := make(map[int]int, len(certRows))
	for _, row := range certRows {
		certsByLevel[row.Level] = row.Count
	}

	var result []fiber.Map
	for _, row := range rows {
		result = append(result, fiber.Map{
			"level":          row.Level,
			"attempts":       row.Attempts,
			"passed":         row.Passed,
			"avg_score":      row.AvgScore,
			"certifications": certsByLevel[row.Level],
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"levels": result})
}

// GetQuestionAnalytics lists the hardest questions of a level by success rate.
func (ac *AnalyticsController) GetQuestionAnalytics(c *fiber.Ctx) error {
	query := ac.DB.Model(&models.QuestionStat{}).Where("times_asked > 0")
	if level, err := strconv.Atoi(c.Query("level")); err == nil {
		query = query.Where("level = ?", level)
	}

	var stats []models.QuestionStat
	if err := query.Find(&stats).Error; err != nil {
		return utils.InternalServerError(c, "Could not query question stats")
	}

	var result []fiber.Map
	for _, stat := range stats {
		result = append(result, fiber.Map{
			"question_id":   stat.QuestionID,
			"level":         stat.Level,
			"times_asked":   stat.TimesAsked,
			"times_correct": stat.TimesCorrect,
			"success_rate":  float64(stat.TimesCorrect) / float64(stat.TimesAsked) * 100,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{"questions": result})
}

// GetUsers is the back-office user list with progress summaries.
func (ac *AnalyticsController) GetUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "25"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 25
	}

	query := ac.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		return utils.InternalServerError(c, "Could not query users")
	}

	var result []fiber.Map
	for _, user := range users {
		var stats models.UserStats
		ac.DB.Where("user_id = ?", user.ID).First(&stats)

		var certCount int64
		ac.DB.Model(&models.UserCertification{}).Where("user_id = ?", user.ID).Count(&certCount)

		result = append(result, fiber.Map{
			"id":                 user.ID,
			"username":           user.Username,
			"email":              user.Email,
			"role":               user.Role,
			"sessions_completed": stats.SessionsCompleted,
			"average_score":      stats.AverageScore,
			"certifications":     certCount,
			"last_active":        stats.LastActive,
		})
	}

	return utils.Paginate(c, result, total, page, pageSize)
}
