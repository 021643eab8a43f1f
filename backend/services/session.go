package services

import (
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"certilang/backend/models"

	"gorm.io/gorm"
)

// PassThreshold is the minimum score (out of 100) that validates a session.
const PassThreshold = 75

// ErrNoQuestions is returned when a session has no questions to serve.
var ErrNoQuestions = errors.New("no questions available for this session")

// SessionService runs test sessions: it selects the question set, validates
// answers server side and performs the completion sequence.
type SessionService struct {
	DB       *gorm.DB
	Settings *SettingsService
	Tracker  *ProgressTracker
	Stats    *StatsService
	Logger   *log.Logger
}

func NewSessionService(db *gorm.DB, settings *SettingsService, tracker *ProgressTracker, stats *StatsService, logger *log.Logger) *SessionService {
	if logger == nil {
		logger = log.Default()
	}
	return &SessionService{DB: db, Settings: settings, Tracker: tracker, Stats: stats, Logger: logger}
}

// SelectQuestions returns the ordered question set for one session. Regular
// sessions serve the session's slice of the level's question bank, sized by
// the configured percentage; remedial sessions serve the user's unremediated
// failed questions for the level.
func (s *SessionService) SelectQuestions(userID uint, level, sessionNumber int, sessionType string) ([]models.Question, error) {
	if sessionType == models.SessionTypeRemedial {
		var questions []models.Question
		err := s.DB.
			Joins("JOIN failed_questions ON failed_questions.question_id = questions.id").
			Where("failed_questions.user_id = ? AND failed_questions.level = ? AND failed_questions.is_remediated = ?", userID, level, false).
			Where("failed_questions.deleted_at IS NULL").
			Order("questions.id").
			Find(&questions).Error
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return nil, ErrNoQuestions
		}
		return questions, nil
	}

	var bank []models.Question
	err := s.DB.Where("level = ? AND is_active = ?", level, true).Order("id").Find(&bank).Error
	if err != nil {
		return nil, err
	}
	if len(bank) == 0 {
		return nil, ErrNoQuestions
	}

	pct := s.Settings.QuestionsPercentage(level)
	size := int(math.Ceil(float64(len(bank)) * float64(pct) / 100.0))
	start := (sessionNumber - 1) * size
	if sessionNumber < 1 || start >= len(bank) {
		return nil, ErrNoQuestions
	}
	end := start + size
	if end > len(bank) {
		end = len(bank)
	}
	return bank[start:end], nil
}

// ValidationResult is what the client learns about one answer. The correct
// answer itself is never included; explanation and rule are only filled in
// when the answer was wrong.
type ValidationResult struct {
	IsCorrect   bool   `json:"is_correct"`
	Explanation string `json:"explanation,omitempty"`
	Rule        string `json:"rule,omitempty"`
}

// ValidateAnswer checks one answer against the stored correct answer and
// records a failed question when it is wrong.
func (s *SessionService) ValidateAnswer(userID, questionID uint, userAnswer string) (*ValidationResult, error) {
	var question models.Question
	if err := s.DB.First(&question, questionID).Error; err != nil {
		return nil, err
	}

	if answersMatch(userAnswer, question.CorrectAnswer) {
		return &ValidationResult{IsCorrect: true}, nil
	}

	if err := s.Tracker.RecordFailedQuestion(userID, question.ID, question.Level); err != nil {
		return nil, err
	}
	return &ValidationResult{
		IsCorrect:   false,
		Explanation: question.Explanation,
		Rule:        question.Rule,
	}, nil
}

// SubmittedAnswer is one accumulated answer handed in at session completion.
type SubmittedAnswer struct {
	QuestionID uint      `json:"question_id"`
	UserAnswer string    `json:"user_answer"`
	AnsweredAt time.Time `json:"answered_at"`
}

// CompletionResult summarizes a finished session.
type CompletionResult struct {
	Score          int                       `json:"score"`
	Passed         bool                      `json:"passed"`
	LevelCompleted bool                      `json:"level_completed"`
	Certification  *models.UserCertification `json:"certification"`
	Session        *models.TestSession       `json:"session"`
}

// CompleteSession recomputes correctness for the submitted answers and runs
// the completion sequence in order: session summary upsert, answer rows
// delete+reinsert, question stat upserts, progress update, user stats
// refresh. The first failing step aborts the remaining ones; there is no
// compensating rollback.
func (s *SessionService) CompleteSession(userID uint, level, sessionNumber int, sessionType string, startedAt time.Time, answers []SubmittedAnswer) (*CompletionResult, error) {
	if len(answers) == 0 {
		return nil, ErrNoQuestions
	}

	correct := 0
	graded := make([]models.TestAnswer, 0, len(answers))
	for _, answer := range answers {
		var question models.Question
		if err := s.DB.First(&question, answer.QuestionID).Error; err != nil {
			return nil, err
		}
		isCorrect := answersMatch(answer.UserAnswer, question.CorrectAnswer)
		if isCorrect {
			correct++
		} else if err := s.Tracker.RecordFailedQuestion(userID, question.ID, question.Level); err != nil {
			return nil, err
		}
		graded = append(graded, models.TestAnswer{
			UserID:     userID,
			QuestionID: question.ID,
			UserAnswer: answer.UserAnswer,
			IsCorrect:  isCorrect,
			AnsweredAt: answer.AnsweredAt,
		})
	}

	score := int(math.Round(float64(correct) / float64(len(answers)) * 100))
	passed := score >= PassThreshold

	session, err := s.upsertSession(userID, level, sessionNumber, sessionType, score, passed, len(answers), startedAt)
	if err != nil {
		return nil, err
	}

	if err := s.replaceAnswers(session.ID, graded); err != nil {
		return nil, err
	}

	for _, answer := range graded {
		if err := s.Stats.BumpQuestionStat(answer.QuestionID, level, answer.IsCorrect); err != nil {
			s.Logger.Printf("question stat update failed for question %d: %v", answer.QuestionID, err)
			return nil, err
		}
	}

	progress := s.Tracker.UpdateProgress(userID, level, sessionNumber, passed, score)

	if err := s.Stats.RefreshUserStats(userID); err != nil {
		return nil, err
	}

	return &CompletionResult{
		Score:          score,
		Passed:         passed,
		LevelCompleted: progress.LevelCompleted,
		Certification:  progress.Certification,
		Session:        session,
	}, nil
}

// upsertSession overwrites the summary row for the
// (user, level, session_number, session_type) key, so re-attempting a session
// replaces its prior summary.
func (s *SessionService) upsertSession(userID uint, level, sessionNumber int, sessionType string, score int, passed bool, totalQuestions int, startedAt time.Time) (*models.TestSession, error) {
	status := models.SessionStatusFailed
	if passed {
		status = models.SessionStatusCompleted
	}

	var session models.TestSession
	err := s.DB.Where("user_id = ? AND level = ? AND session_number = ? AND session_type = ?",
		userID, level, sessionNumber, sessionType).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		session = models.TestSession{
			UserID:        userID,
			Level:         level,
			SessionNumber: sessionNumber,
			SessionType:   sessionType,
		}
	} else if err != nil {
		return nil, err
	}

	session.Score = score
	session.Status = status
	session.TotalQuestions = totalQuestions
	session.StartedAt = startedAt
	session.EndedAt = time.Now()
	session.IsSessionValidated = passed

	if err := s.DB.Save(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *SessionService) replaceAnswers(sessionID uint, answers []models.TestAnswer) error {
	if err := s.DB.Where("session_id = ?", sessionID).Delete(&models.TestAnswer{}).Error; err != nil {
		return err
	}
	for i := range answers {
		answers[i].SessionID = sessionID
	}
	return s.DB.Create(&answers).Error
}

func answersMatch(userAnswer, correctAnswer string) bool {
	return strings.EqualFold(strings.TrimSpace(userAnswer), strings.TrimSpace(correctAnswer))
}
