package tests

import (
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedQuestionBank creates questions on the level through the admin API and
// returns nothing; the flow tests rediscover them through the session API.
func seedQuestionBank(t *testing.T, level, count int) {
	t.Helper()
	for i := 1; i <= count; i++ {
		resp, _ := doRequest(t, "POST", "/api/admin/questions", adminToken, map[string]interface{}{
			"content":        fmt.Sprintf("Complétez: phrase %d du niveau %d", i, level),
			"type":           "choice",
			"level":          level,
			"rule":           fmt.Sprintf("règle %d", i),
			"explanation":    fmt.Sprintf("explication %d", i),
			"choices":        []string{fmt.Sprintf("answer-%d", i), "distracteur"},
			"correct_answer": fmt.Sprintf("answer-%d", i),
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
}

func TestSessionFlow(t *testing.T) {
	seedQuestionBank(t, 1, 10) // default 20% -> 5 sessions of 2 questions

	// Load the first session's questions; correct answers must not leak.
	resp, result := doRequest(t, "GET", "/api/sessions/questions?level=1&number=1&type=regular", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := result["data"].(map[string]interface{})
	questions := data["questions"].([]interface{})
	require.Len(t, questions, 2)

	first := questions[0].(map[string]interface{})
	assert.NotEmpty(t, first["content"])
	assert.NotContains(t, first, "correct_answer")
	assert.NotContains(t, first, "CorrectAnswer")

	firstID := uint(first["id"].(float64))
	secondID := uint(questions[1].(map[string]interface{})["id"].(float64))

	// A wrong answer returns the explanation and rule.
	resp, result = doRequest(t, "POST", "/api/sessions/validate", studentToken, map[string]interface{}{
		"question_id": firstID,
		"user_answer": "n'importe quoi",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, result["is_correct"])
	assert.NotEmpty(t, result["explanation"])
	assert.NotEmpty(t, result["rule"])

	// A correct answer returns neither.
	resp, result = doRequest(t, "POST", "/api/sessions/validate", studentToken, map[string]interface{}{
		"question_id": firstID,
		"user_answer": "answer-1",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, result["is_correct"])
	assert.NotContains(t, result, "explanation")

	// Complete the session with both answers correct.
	resp, result = doRequest(t, "POST", "/api/sessions/complete", studentToken, map[string]interface{}{
		"level":          1,
		"session_number": 1,
		"session_type":   "regular",
		"answers": []map[string]interface{}{
			{"question_id": firstID, "user_answer": "answer-1"},
			{"question_id": secondID, "user_answer": "answer-2"},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 100, result["score"])
	assert.Equal(t, true, result["passed"])
	assert.Equal(t, false, result["level_completed"])

	// Progress advanced to session 2.
	resp, result = doRequest(t, "GET", "/api/progress/1", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = result["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["completed_sessions"])
	assert.EqualValues(t, 2, data["current_session_number"])
	assert.EqualValues(t, 5, data["total_sessions_for_level"])
	assert.Equal(t, false, data["is_level_completed"])

	// The stored result is retrievable.
	resp, result = doRequest(t, "GET", "/api/sessions/result?level=1&number=1&type=regular", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = result["data"].(map[string]interface{})
	answers := data["answers"].([]interface{})
	assert.Len(t, answers, 2)
}

func TestSessionQuestionsEmptyLevel(t *testing.T) {
	resp, _ := doRequest(t, "GET", "/api/sessions/questions?level=42&number=1", studentToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProgressOverview(t *testing.T) {
	resp, result := doRequest(t, "GET", "/api/progress/overview", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := result["data"].(map[string]interface{})
	assert.NotNil(t, data["sessions_completed"])
	assert.NotNil(t, data["average_score"])
}

func TestMaxCertifiedLevelStartsAtZero(t *testing.T) {
	resp, result := doRequest(t, "GET", "/api/certifications/max-level", studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	data := result["data"].(map[string]interface{})
	assert.EqualValues(t, 0, data["max_certified_level"])
}
