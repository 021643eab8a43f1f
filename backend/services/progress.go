package services

import (
	"errors"
	"log"
	"math"

	"certilang/backend/models"

	"gorm.io/gorm"
)

// ProgressTracker computes and persists how many test sessions exist for a
// level, which one a user should attempt next, and whether the level is
// complete.
type ProgressTracker struct {
	DB       *gorm.DB
	Settings *SettingsService
	Certs    *CertificationService
	Logger   *log.Logger
}

func NewProgressTracker(db *gorm.DB, settings *SettingsService, certs *CertificationService, logger *log.Logger) *ProgressTracker {
	if logger == nil {
		logger = log.Default()
	}
	return &ProgressTracker{DB: db, Settings: settings, Certs: certs, Logger: logger}
}

// ProgressResult is what session completion reports back to the caller. The
// zero value doubles as the "swallowed error" outcome, which callers cannot
// distinguish from "level not yet complete".
type ProgressResult struct {
	LevelCompleted bool                      `json:"level_completed"`
	Certification  *models.UserCertification `json:"certification"`
}

// TotalSessions derives the session count for a level from the configured
// question percentage: ceil(100 / percentage).
func (t *ProgressTracker) TotalSessions(level int) int {
	pct := t.Settings.QuestionsPercentage(level)
	return int(math.Ceil(100.0 / float64(pct)))
}

// GetOrCreate loads the progress row for (user, level), creating it lazily on
// first access. The session total is recomputed on every load; if the
// configured percentage shrank the total below the user's progress, the
// progress is clamped to the new total.
func (t *ProgressTracker) GetOrCreate(userID uint, level int) (*models.SessionProgress, error) {
	total := t.TotalSessions(level)

	var progress models.SessionProgress
	err := t.DB.Where("user_id = ? AND level = ?", userID, level).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.SessionProgress{
			UserID:                userID,
			Level:                 level,
			CurrentSessionNumber:  1,
			TotalSessionsForLevel: total,
			CompletedSessions:     0,
		}
		if err := t.DB.Create(&progress).Error; err != nil {
			return nil, err
		}
		return &progress, nil
	}
	if err != nil {
		return nil, err
	}

	if progress.TotalSessionsForLevel != total {
		progress.TotalSessionsForLevel = total
		if progress.CompletedSessions > total {
			progress.CompletedSessions = total
		}
		if progress.CurrentSessionNumber > total {
			progress.CurrentSessionNumber = total
		}
		if err := t.DB.Save(&progress).Error; err != nil {
			return nil, err
		}
	}

	return &progress, nil
}

// UpdateProgress applies the outcome of one attempted session. Errors are
// logged and swallowed: the caller receives the zero result on any failure.
func (t *ProgressTracker) UpdateProgress(userID uint, level, sessionNumber int, completed bool, score int) ProgressResult {
	result, err := t.updateProgress(userID, level, sessionNumber, completed, score)
	if err != nil {
		t.Logger.Printf("updateProgress user=%d level=%d session=%d: %v", userID, level, sessionNumber, err)
		return ProgressResult{}
	}
	return result
}

func (t *ProgressTracker) updateProgress(userID uint, level, sessionNumber int, completed bool, score int) (ProgressResult, error) {
	progress, err := t.GetOrCreate(userID, level)
	if err != nil {
		return ProgressResult{}, err
	}

	// Remedial sessions complete the level unconditionally and clear every
	// outstanding failed question. Two sequential writes, no atomicity: a
	// crash in between leaves the failed questions unremediated.
	if sessionNumber >= models.RemedialSessionNumber {
		if !completed {
			return ProgressResult{}, nil
		}
		progress.IsLevelCompleted = true
		if err := t.DB.Save(progress).Error; err != nil {
			return ProgressResult{}, err
		}
		if err := t.RemediateAll(userID, level); err != nil {
			return ProgressResult{}, err
		}
		cert, err := t.Certs.Issue(userID, level, score)
		if err != nil {
			return ProgressResult{}, err
		}
		return ProgressResult{LevelCompleted: true, Certification: cert}, nil
	}

	if !completed {
		return ProgressResult{}, nil
	}

	total := progress.TotalSessionsForLevel
	if sessionNumber < total {
		progress.CompletedSessions = sessionNumber
		progress.CurrentSessionNumber = sessionNumber + 1
		return ProgressResult{}, t.DB.Save(progress).Error
	}

	// Final regular session. The level only completes when no unremediated
	// failed questions remain; otherwise it stays open for remediation.
	progress.CompletedSessions = total
	outstanding, err := t.HasOutstandingFailures(userID, level)
	if err != nil {
		return ProgressResult{}, err
	}
	if outstanding {
		return ProgressResult{}, t.DB.Save(progress).Error
	}

	progress.IsLevelCompleted = true
	if err := t.DB.Save(progress).Error; err != nil {
		return ProgressResult{}, err
	}
	cert, err := t.Certs.Issue(userID, level, score)
	if err != nil {
		return ProgressResult{}, err
	}
	return ProgressResult{LevelCompleted: true, Certification: cert}, nil
}

// RecordFailedQuestion upserts a failed-question row keyed by
// (user, question, level). Re-failing the same question is a no-op.
func (t *ProgressTracker) RecordFailedQuestion(userID, questionID uint, level int) error {
	var existing models.FailedQuestion
	err := t.DB.Where("user_id = ? AND question_id = ?", userID, questionID).First(&existing).Error
	if err == nil {
		if existing.IsRemediated {
			existing.IsRemediated = false
			return t.DB.Save(&existing).Error
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return t.DB.Create(&models.FailedQuestion{
		UserID:     userID,
		QuestionID: questionID,
		Level:      level,
	}).Error
}

// HasOutstandingFailures reports whether unremediated failed questions remain
// for (user, level).
func (t *ProgressTracker) HasOutstandingFailures(userID uint, level int) (bool, error) {
	var count int64
	err := t.DB.Model(&models.FailedQuestion{}).
		Where("user_id = ? AND level = ? AND is_remediated = ?", userID, level, false).
		Count(&count).Error
	return count > 0, err
}

// RemediateAll marks every failed question of (user, level) as remediated.
func (t *ProgressTracker) RemediateAll(userID uint, level int) error {
	return t.DB.Model(&models.FailedQuestion{}).
		Where("user_id = ? AND level = ?", userID, level).
		Update("is_remediated", true).Error
}
