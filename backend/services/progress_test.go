package services

import (
	"testing"

	"certilang/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalSessionsFromPercentage(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		percent string
		want    int
	}{
		{"100", 1},
		{"50", 2},
		{"34", 3},
		{"33", 4},
		{"25", 4},
		{"20", 5},
		{"10", 10},
		{"1", 100},
	}
	for _, tc := range cases {
		require.NoError(t, env.settings.Set("questions_percentage_per_level", tc.percent))
		assert.Equal(t, tc.want, env.tracker.TotalSessions(1), "percent %s", tc.percent)
	}
}

func TestGetOrCreateLazyInit(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.CurrentSessionNumber)
	assert.Equal(t, 0, progress.CompletedSessions)
	assert.Equal(t, 5, progress.TotalSessionsForLevel) // default 20% -> 5 sessions
	assert.False(t, progress.IsLevelCompleted)

	again, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.Equal(t, progress.ID, again.ID)
}

func TestUpdateProgressAdvancesRegularSessions(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	lastCurrent := 0
	for session := 1; session <= 4; session++ {
		result := env.tracker.UpdateProgress(userID, 1, session, true, 80)
		assert.False(t, result.LevelCompleted)
		assert.Nil(t, result.Certification)

		progress, err := env.tracker.GetOrCreate(userID, 1)
		require.NoError(t, err)
		assert.Equal(t, session, progress.CompletedSessions)
		assert.Equal(t, session+1, progress.CurrentSessionNumber)
		assert.GreaterOrEqual(t, progress.CurrentSessionNumber, lastCurrent)
		lastCurrent = progress.CurrentSessionNumber
	}
}

func TestUpdateProgressFailedSessionDoesNotAdvance(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	result := env.tracker.UpdateProgress(userID, 1, 1, false, 40)
	assert.False(t, result.LevelCompleted)
	assert.Nil(t, result.Certification)

	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CompletedSessions)
	assert.Equal(t, 1, progress.CurrentSessionNumber)
}

func TestFinalSessionWithoutFailuresCompletesLevel(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	for session := 1; session <= 4; session++ {
		env.tracker.UpdateProgress(userID, 1, session, true, 80)
	}
	result := env.tracker.UpdateProgress(userID, 1, 5, true, 88)

	assert.True(t, result.LevelCompleted)
	require.NotNil(t, result.Certification)
	assert.Equal(t, 88, result.Certification.Score)

	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.True(t, progress.IsLevelCompleted)
	assert.Equal(t, 5, progress.CompletedSessions)
}

func TestFinalSessionWithOutstandingFailuresLeavesLevelOpen(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")
	questions := env.seedQuestions(t, 1, 2)

	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))

	for session := 1; session <= 4; session++ {
		env.tracker.UpdateProgress(userID, 1, session, true, 80)
	}
	result := env.tracker.UpdateProgress(userID, 1, 5, true, 90)

	assert.False(t, result.LevelCompleted)
	assert.Nil(t, result.Certification)

	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.False(t, progress.IsLevelCompleted)
	assert.Equal(t, 5, progress.CompletedSessions)

	var count int64
	env.db.Model(&models.UserCertification{}).Where("user_id = ?", userID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestRemedialSessionCompletesLevelAndRemediates(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")
	questions := env.seedQuestions(t, 1, 3)

	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))
	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[1].ID, 1))

	result := env.tracker.UpdateProgress(userID, 1, models.RemedialSessionNumber, true, 100)

	assert.True(t, result.LevelCompleted)
	require.NotNil(t, result.Certification)
	assert.Equal(t, 100, result.Certification.Score)

	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.True(t, progress.IsLevelCompleted)

	var remaining int64
	env.db.Model(&models.FailedQuestion{}).
		Where("user_id = ? AND level = ? AND is_remediated = ?", userID, 1, false).
		Count(&remaining)
	assert.EqualValues(t, 0, remaining)
}

func TestFailedRemedialSessionChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")
	questions := env.seedQuestions(t, 1, 1)

	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))

	result := env.tracker.UpdateProgress(userID, 1, models.RemedialSessionNumber, false, 30)
	assert.False(t, result.LevelCompleted)

	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.False(t, progress.IsLevelCompleted)

	outstanding, err := env.tracker.HasOutstandingFailures(userID, 1)
	require.NoError(t, err)
	assert.True(t, outstanding)
}

func TestResizeClampsProgress(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	// 10% -> 10 sessions; user has completed 8 of them.
	require.NoError(t, env.settings.Set("questions_percentage_per_level", "10"))
	for session := 1; session <= 8; session++ {
		env.tracker.UpdateProgress(userID, 1, session, true, 80)
	}
	progress, err := env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	require.Equal(t, 8, progress.CompletedSessions)
	require.Equal(t, 9, progress.CurrentSessionNumber)

	// Resize to 20% -> 5 sessions; progress is clamped on the next load.
	require.NoError(t, env.settings.Set("questions_percentage_per_level", "20"))
	progress, err = env.tracker.GetOrCreate(userID, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, progress.TotalSessionsForLevel)
	assert.Equal(t, 5, progress.CompletedSessions)
	assert.Equal(t, 5, progress.CurrentSessionNumber)
}

func TestRecordFailedQuestionIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")
	questions := env.seedQuestions(t, 1, 1)

	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))
	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))

	var count int64
	env.db.Model(&models.FailedQuestion{}).
		Where("user_id = ? AND question_id = ?", userID, questions[0].ID).
		Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestRecordFailedQuestionReopensRemediatedRow(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")
	questions := env.seedQuestions(t, 1, 1)

	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))
	require.NoError(t, env.tracker.RemediateAll(userID, 1))
	require.NoError(t, env.tracker.RecordFailedQuestion(userID, questions[0].ID, 1))

	outstanding, err := env.tracker.HasOutstandingFailures(userID, 1)
	require.NoError(t, err)
	assert.True(t, outstanding)
}
