package services

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"testing"

	"certilang/backend/models"
	"certilang/backend/utils"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, utils.Migrate(db))
	return db
}

type testEnv struct {
	db       *gorm.DB
	settings *SettingsService
	certs    *CertificationService
	tracker  *ProgressTracker
	stats    *StatsService
	sessions *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	quiet := log.New(os.Stderr, "", 0)
	settings := NewSettingsService(db)
	certs := NewCertificationService(db)
	tracker := NewProgressTracker(db, settings, certs, quiet)
	stats := NewStatsService(db)
	sessions := NewSessionService(db, settings, tracker, stats, quiet)

	return &testEnv{
		db:       db,
		settings: settings,
		certs:    certs,
		tracker:  tracker,
		stats:    stats,
		sessions: sessions,
	}
}

func (e *testEnv) seedUser(t *testing.T, username string) uint {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, e.db.Create(&user).Error)
	return user.ID
}

// seedQuestions creates count active questions on the level. The correct
// answer of question i is "answer-i".
func (e *testEnv) seedQuestions(t *testing.T, level, count int) []models.Question {
	t.Helper()
	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		q := models.Question{
			Content:       fmt.Sprintf("Question %d of level %d", i+1, level),
			Type:          "choice",
			Level:         level,
			Rule:          fmt.Sprintf("rule-%d", i+1),
			Explanation:   fmt.Sprintf("explanation-%d", i+1),
			CorrectAnswer: fmt.Sprintf("answer-%d", i+1),
			IsActive:      true,
		}
		require.NoError(t, e.db.Create(&q).Error)
		questions = append(questions, q)
	}
	return questions
}

// answersFor builds submitted answers for the given questions, answering the
// first wrongCount of them incorrectly.
func answersFor(questions []models.Question, wrongCount int) []SubmittedAnswer {
	answers := make([]SubmittedAnswer, 0, len(questions))
	for i, q := range questions {
		answer := q.CorrectAnswer
		if i < wrongCount {
			answer = "wrong"
		}
		answers = append(answers, SubmittedAnswer{QuestionID: q.ID, UserAnswer: answer})
	}
	return answers
}
