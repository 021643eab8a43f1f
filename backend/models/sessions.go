package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	SessionTypeRegular  = "regular"
	SessionTypeRemedial = "remedial"

	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"

	// RemedialSessionNumber is the sentinel session number used for the
	// catch-up session covering previously failed questions of a level.
	RemedialSessionNumber = 99
)

// SessionProgress tracks, per user and level, how many test sessions have been
// completed and which one should be attempted next. Created lazily on first
// access; never deleted in normal operation.
type SessionProgress struct {
	gorm.Model
	UserID                uint `gorm:"not null;uniqueIndex:idx_progress_user_level,priority:1"`
	Level                 int  `gorm:"not null;uniqueIndex:idx_progress_user_level,priority:2"`
	CurrentSessionNumber  int  `gorm:"default:1"`
	TotalSessionsForLevel int
	CompletedSessions     int  `gorm:"default:0"`
	IsLevelCompleted      bool `gorm:"default:false"`
}

// TestSession is the summary row for one session attempt, upserted on the
// (user, level, session_number, session_type) key so that re-attempting a
// session overwrites its prior summary.
type TestSession struct {
	gorm.Model
	UserID             uint   `gorm:"not null;uniqueIndex:idx_session_key,priority:1"`
	Level              int    `gorm:"not null;uniqueIndex:idx_session_key,priority:2"`
	SessionNumber      int    `gorm:"not null;uniqueIndex:idx_session_key,priority:3"`
	SessionType        string `gorm:"not null;default:regular;uniqueIndex:idx_session_key,priority:4"`
	Score              int
	Status             string
	TotalQuestions     int
	StartedAt          time.Time
	EndedAt            time.Time
	IsSessionValidated bool `gorm:"default:false"`
}

// TestAnswer holds one answer of one session attempt. Answers are deleted and
// re-inserted wholesale on re-attempt; no partial-answer history is kept.
type TestAnswer struct {
	gorm.Model
	UserID     uint `gorm:"not null;index"`
	SessionID  uint `gorm:"not null;index"`
	QuestionID uint `gorm:"not null"`
	UserAnswer string
	IsCorrect  bool
	AnsweredAt time.Time
}

// FailedQuestion marks a question a user got wrong on a level. Cleared
// (remediated) when the user passes the level's remedial session.
type FailedQuestion struct {
	gorm.Model
	UserID       uint `gorm:"not null;uniqueIndex:idx_failed_user_question,priority:1"`
	QuestionID   uint `gorm:"not null;uniqueIndex:idx_failed_user_question,priority:2"`
	Level        int  `gorm:"not null;index"`
	IsRemediated bool `gorm:"default:false"`
}

// UserCertification records that a user passed a level. The unique index on
// (user, level) is what prevents a retried remedial session from inserting a
// second certification for the same level.
type UserCertification struct {
	gorm.Model
	UserID      uint `gorm:"not null;uniqueIndex:idx_cert_user_level,priority:1"`
	Level       int  `gorm:"not null;uniqueIndex:idx_cert_user_level,priority:2"`
	Score       int
	CertifiedAt time.Time
}
