package services

import (
	"testing"

	"certilang/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueCreatesOneRow(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	cert, err := env.certs.Issue(userID, 2, 85)
	require.NoError(t, err)
	assert.Equal(t, 2, cert.Level)
	assert.Equal(t, 85, cert.Score)
	assert.False(t, cert.CertifiedAt.IsZero())
}

func TestIssueIsDeduplicatedPerLevel(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	first, err := env.certs.Issue(userID, 2, 85)
	require.NoError(t, err)

	// A retried remedial session must not insert a second certification.
	second, err := env.certs.Issue(userID, 2, 92)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 85, second.Score)

	var count int64
	env.db.Model(&models.UserCertification{}).Where("user_id = ? AND level = ?", userID, 2).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestMaxCertifiedLevel(t *testing.T) {
	env := newTestEnv(t)
	userID := env.seedUser(t, "alice")

	maxLevel, err := env.certs.MaxCertifiedLevel(userID)
	require.NoError(t, err)
	assert.Equal(t, 0, maxLevel)

	_, err = env.certs.Issue(userID, 1, 80)
	require.NoError(t, err)
	_, err = env.certs.Issue(userID, 3, 90)
	require.NoError(t, err)

	maxLevel, err = env.certs.MaxCertifiedLevel(userID)
	require.NoError(t, err)
	assert.Equal(t, 3, maxLevel)
}
