package services

import (
	"errors"
	"time"

	"certilang/backend/models"

	"gorm.io/gorm"
)

// StatsService maintains per-question attempt counters and the per-user
// aggregate statistics row.
type StatsService struct {
	DB *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{DB: db}
}

// BumpQuestionStat increments the attempt counters for one question.
func (s *StatsService) BumpQuestionStat(questionID uint, level int, correct bool) error {
	var stat models.QuestionStat
	err := s.DB.Where("question_id = ?", questionID).First(&stat).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.QuestionStat{QuestionID: questionID, Level: level}
	} else if err != nil {
		return err
	}

	stat.TimesAsked++
	if correct {
		stat.TimesCorrect++
	}
	return s.DB.Save(&stat).Error
}

// RefreshUserStats recomputes the user's aggregate row from the session and
// answer tables.
func (s *StatsService) RefreshUserStats(userID uint) error {
	var stats models.UserStats
	err := s.DB.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: userID}
	} else if err != nil {
		return err
	}

	var sessionsCompleted, sessionsPassed int64
	s.DB.Model(&models.TestSession{}).Where("user_id = ?", userID).Count(&sessionsCompleted)
	s.DB.Model(&models.TestSession{}).Where("user_id = ? AND is_session_validated = ?", userID, true).Count(&sessionsPassed)

	var questionsAnswered, correctAnswers int64
	s.DB.Model(&models.TestAnswer{}).Where("user_id = ?", userID).Count(&questionsAnswered)
	s.DB.Model(&models.TestAnswer{}).Where("user_id = ? AND is_correct = ?", userID, true).Count(&correctAnswers)

	var avgScore *float64
	s.DB.Model(&models.TestSession{}).Where("user_id = ?", userID).Select("AVG(score)").Scan(&avgScore)

	stats.SessionsCompleted = int(sessionsCompleted)
	stats.SessionsPassed = int(sessionsPassed)
	stats.QuestionsAnswered = int(questionsAnswered)
	stats.CorrectAnswers = int(correctAnswers)
	if avgScore != nil {
		stats.AverageScore = *avgScore
	}
	stats.LastActive = time.Now()

	return s.DB.Save(&stats).Error
}
