package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionsPercentageDefault(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, DefaultQuestionsPercent, env.settings.QuestionsPercentage(1))
}

func TestQuestionsPercentageGlobalKey(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.settings.Set("questions_percentage_per_level", "25"))
	assert.Equal(t, 25, env.settings.QuestionsPercentage(1))
	assert.Equal(t, 25, env.settings.QuestionsPercentage(3))
}

func TestQuestionsPercentageLevelOverride(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.settings.Set("questions_percentage_per_level", "25"))
	require.NoError(t, env.settings.Set("test_questions_percentage_level_2", "50"))

	assert.Equal(t, 25, env.settings.QuestionsPercentage(1))
	assert.Equal(t, 50, env.settings.QuestionsPercentage(2))
}

func TestQuestionsPercentageMalformedValues(t *testing.T) {
	env := newTestEnv(t)

	for _, value := range []string{"abc", "", "0", "-5", "150"} {
		require.NoError(t, env.settings.Set("questions_percentage_per_level", value))
		assert.Equal(t, DefaultQuestionsPercent, env.settings.QuestionsPercentage(1), "value %q", value)
	}
}

func TestSetUpdatesExistingKey(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.settings.Set("questions_percentage_per_level", "10"))
	require.NoError(t, env.settings.Set("questions_percentage_per_level", "50"))

	value, ok := env.settings.Get("questions_percentage_per_level")
	require.True(t, ok)
	assert.Equal(t, "50", value)
}
