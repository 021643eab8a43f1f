package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Question struct {
	gorm.Model
	Content       string `gorm:"not null"`
	Type          string `gorm:"default:choice"` // choice, dictation
	Level         int    `gorm:"not null;index"`
	Rule          string
	Explanation   string
	Choices       datatypes.JSON // array of proposed answers
	CorrectAnswer string         `gorm:"not null" json:"-"` // never serialized to clients
	IsActive      bool           `gorm:"default:true"`
}

// QuestionStat accumulates per-question attempt counters across all users.
type QuestionStat struct {
	gorm.Model
	QuestionID   uint `gorm:"uniqueIndex"`
	Level        int
	TimesAsked   int `gorm:"default:0"`
	TimesCorrect int `gorm:"default:0"`
}
