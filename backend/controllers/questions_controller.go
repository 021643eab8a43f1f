package controllers

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"certilang/backend/config"
	"certilang/backend/models"
	"certilang/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewQuestionsController(db *gorm.DB, cfg *config.Config) *QuestionsController {
	return &QuestionsController{DB: db, Cfg: cfg}
}

type questionInput struct {
	Content       string   `json:"content"`
	Type          string   `json:"type"`
	Level         int      `json:"level"`
	Rule          string   `json:"rule"`
	Explanation   string   `json:"explanation"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
	IsActive      *bool    `json:"is_active"`
}

func (qc *QuestionsController) ListQuestions(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	query := qc.DB.Model(&models.Question{})
	if level, err := strconv.Atoi(c.Query("level")); err == nil {
		query = query.Where("level = ?", level)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("content LIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var questions []models.Question
	if err := query.Order("level, id").Offset((page - 1) * pageSize).Limit(pageSize).Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query questions")
	}

	return utils.Paginate(c, questions, total, page, pageSize)
}

func (qc *QuestionsController) CreateQuestion(c *fiber.Ctx) error {
	var input questionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if input.Content == "" || input.CorrectAnswer == "" || input.Level < 1 {
		return utils.BadRequest(c, "content, correct_answer and level are required")
	}

	question, err := buildQuestion(input)
	if err != nil {
		return utils.InternalServerError(c, "Could not encode choices")
	}
	if err := qc.DB.Create(question).Error; err != nil {
		return utils.InternalServerError(c, "Could not create question")
	}

	return c.JSON(fiber.Map{
		"message":  "Question created",
		"question": question,
	})
}

func (qc *QuestionsController) UpdateQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	var input questionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var question models.Question
	if err := qc.DB.First(&question, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Question not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if input.Content != "" {
		question.Content = input.Content
	}
	if input.Type != "" {
		question.Type = input.Type
	}
	if input.Level > 0 {
		question.Level = input.Level
	}
	if input.Rule != "" {
		question.Rule = input.Rule
	}
	if input.Explanation != "" {
		question.Explanation = input.Explanation
	}
	if input.CorrectAnswer != "" {
		question.CorrectAnswer = input.CorrectAnswer
	}
	if input.Choices != nil {
		choices, err := json.Marshal(input.Choices)
		if err != nil {
			return utils.InternalServerError(c, "Could not encode choices")
		}
		question.Choices = datatypes.JSON(choices)
	}
	if input.IsActive != nil {
		question.IsActive = *input.IsActive
	}

	if err := qc.DB.Save(&question).Error; err != nil {
		return utils.InternalServerError(c, "Could not update question")
	}

	return c.JSON(fiber.Map{
		"message":  "Question updated",
		"question": question,
	})
}

func (qc *QuestionsController) DeleteQuestion(c *fiber.Ctx) error {
	questionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid question ID")
	}

	if err := qc.DB.Delete(&models.Question{}, questionID).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete question")
	}

	return c.JSON(fiber.Map{"message": "Question deleted"})
}

// csvHeader is the column layout shared by import and export. Choices are
// pipe-separated inside their single column.
var csvHeader = []string{"level", "type", "content", "rule", "explanation", "choices", "correct_answer"}

// ImportCSV bulk-creates questions from a CSV body.
func (qc *QuestionsController) ImportCSV(c *fiber.Ctx) error {
	reader := csv.NewReader(strings.NewReader(string(c.Body())))
	reader.FieldsPerRecord = len(csvHeader)

	records, err := reader.ReadAll()
	if err != nil {
		return utils.BadRequest(c, "Invalid CSV: "+err.Error())
	}
	if len(records) < 2 {
		return utils.BadRequest(c, "CSV must contain a header row and at least one question")
	}

	imported := 0
	var rowErrors []string
	for i, record := range records[1:] {
		level, err := strconv.Atoi(record[0])
		if err != nil || level < 1 {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: invalid level %q", i+2, record[0]))
			continue
		}
		if record[2] == "" || record[6] == "" {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: content and correct_answer are required", i+2))
			continue
		}

		var choices []string
		if record[5] != "" {
			choices = strings.Split(record[5], "|")
		}
		question, err := buildQuestion(questionInput{
			Content:       record[2],
			Type:          record[1],
			Level:         level,
			Rule:          record[3],
			Explanation:   record[4],
			Choices:       choices,
			CorrectAnswer: record[6],
		})
		if err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		if err := qc.DB.Create(question).Error; err != nil {
			rowErrors = append(rowErrors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		imported++
	}

	return c.JSON(fiber.Map{
		"message":  "Import finished",
		"imported": imported,
		"errors":   rowErrors,
	})
}

// ExportCSV streams the question bank as CSV, optionally filtered by level.
func (qc *QuestionsController) ExportCSV(c *fiber.Ctx) error {
	query := qc.DB.Model(&models.Question{}).Order("level, id")
	if level, err := strconv.Atoi(c.Query("level")); err == nil {
		query = query.Where("level = ?", level)
	}

	var questions []models.Question
	if err := query.Find(&questions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query questions")
	}

	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	writer.Write(csvHeader)
	for _, q := range questions {
		var choices []string
		if len(q.Choices) > 0 {
			json.Unmarshal(q.Choices, &choices)
		}
		writer.Write([]string{
			strconv.Itoa(q.Level),
			q.Type,
			q.Content,
			q.Rule,
			q.Explanation,
			strings.Join(choices, "|"),
			q.CorrectAnswer,
		})
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return utils.InternalServerError(c, "Could not write CSV")
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=questions.csv")
	return c.SendString(sb.String())
}

func buildQuestion(input questionInput) (*models.Question, error) {
	qType := input.Type
	if qType == "" {
		qType = "choice"
	}

	question := models.Question{
		Content:       input.Content,
		Type:          qType,
		Level:         input.Level,
		Rule:          input.Rule,
		Explanation:   input.Explanation,
		CorrectAnswer: input.CorrectAnswer,
		IsActive:      true,
	}
	if input.Choices != nil {
		choices, err := json.Marshal(input.Choices)
		if err != nil {
			return nil, err
		}
		question.Choices = datatypes.JSON(choices)
	}
	if input.IsActive != nil {
		question.IsActive = *input.IsActive
	}
	return &question, nil
}
