package controllers

import (
	"errors"
	"strconv"
	"time"

	"certilang/backend/config"
	"certilang/backend/models"
	"certilang/backend/services"
	"certilang/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SessionController struct {
	DB       *gorm.DB
	Cfg      *config.Config
	Sessions *services.SessionService
}

func NewSessionController(db *gorm.DB, cfg *config.Config, sessions *services.SessionService) *SessionController {
	return &SessionController{DB: db, Cfg: cfg, Sessions: sessions}
}

// GetQuestions serves the question set for one session. Correct answers are
// stripped before anything leaves the server.
func (sc *SessionController) GetQuestions(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	level, err := strconv.Atoi(c.Query("level"))
	if err != nil || level < 1 {
		return utils.BadRequest(c, "Invalid level")
	}

	sessionType := c.Query("type", models.SessionTypeRegular)
	if sessionType != models.SessionTypeRegular && sessionType != models.SessionTypeRemedial {
		return utils.BadRequest(c, "Invalid session type")
	}

	sessionNumber := models.RemedialSessionNumber
	if sessionType == models.SessionTypeRegular {
		sessionNumber, err = strconv.Atoi(c.Query("number"))
		if err != nil || sessionNumber < 1 {
			return utils.BadRequest(c, "Invalid session number")
		}
	}

	questions, err := sc.Sessions.SelectQuestions(userID, level, sessionNumber, sessionType)
	if err != nil {
		if errors.Is(err, services.ErrNoQuestions) {
			return utils.NotFound(c, "No questions available for this session")
		}
		return utils.InternalServerError(c, "Could not load questions")
	}

	var result []fiber.Map
	for _, q := range questions {
		result = append(result, fiber.Map{
			"id":      q.ID,
			"content": q.Content,
			"type":    q.Type,
			"level":   q.Level,
			"choices": q.Choices,
		})
	}

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"session_number": sessionNumber,
		"session_type":   sessionType,
		"questions":      result,
	})
}

// ValidateAnswer checks one answer server side. The response carries the
// explanation and rule only when the answer was wrong.
func (sc *SessionController) ValidateAnswer(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		QuestionID uint   `json:"question_id"`
		UserAnswer string `json:"user_answer"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.QuestionID == 0 {
		return utils.BadRequest(c, "question_id is required")
	}

	result, err := sc.Sessions.ValidateAnswer(userID, input.QuestionID, input.UserAnswer)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not validate answer")
	}

	return c.JSON(result)
}

// CompleteSession runs the completion sequence for an accumulated set of
// answers and reports score, pass/fail and any certification issued.
func (sc *SessionController) CompleteSession(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input struct {
		Level         int                        `json:"level"`
		SessionNumber int                        `json:"session_number"`
		SessionType   string                     `json:"session_type"`
		StartedAt     time.Time                  `json:"started_at"`
		Answers       []services.SubmittedAnswer `json:"answers"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Level < 1 {
		return utils.BadRequest(c, "Invalid level")
	}
	if input.SessionType == "" {
		input.SessionType = models.SessionTypeRegular
	}
	if input.SessionType != models.SessionTypeRegular && input.SessionType != models.SessionTypeRemedial {
		return utils.BadRequest(c, "Invalid session type")
	}
	if input.SessionType == models.SessionTypeRemedial {
		input.SessionNumber = models.RemedialSessionNumber
	} else if input.SessionNumber < 1 {
		return utils.BadRequest(c, "Invalid session number")
	}
	if input.StartedAt.IsZero() {
		input.StartedAt = time.Now()
	}

	result, err := sc.Sessions.CompleteSession(userID, input.Level, input.SessionNumber, input.SessionType, input.StartedAt, input.Answers)
	if err != nil {
		if errors.Is(err, services.ErrNoQuestions) {
			return utils.BadRequest(c, "No answers submitted")
		}
		return utils.InternalServerError(c, "Could not save session results")
	}

	return c.JSON(result)
}

// GetResult returns the stored summary for one session attempt.
func (sc *SessionController) GetResult(c *fiber.Ctx) error {
	userID, err := utils.ExtractUserIDFromToken(c, sc.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	level, err := strconv.Atoi(c.Query("level"))
	if err != nil {
		return utils.BadRequest(c, "Invalid level")
	}
	sessionNumber, err := strconv.Atoi(c.Query("number"))
	if err != nil {
		return utils.BadRequest(c, "Invalid session number")
	}
	sessionType := c.Query("type", models.SessionTypeRegular)

	var session models.TestSession
	if err := sc.DB.Where("user_id = ? AND level = ? AND session_number = ? AND session_type = ?",
		userID, level, sessionNumber, sessionType).First(&session).Error; err != nil {
		return utils.NotFound(c, "Session not found")
	}

	var answers []models.TestAnswer
	sc.DB.Where("session_id = ?", session.ID).Order("answered_at").Find(&answers)

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"session": session,
		"answers": answers,
	})
}
