package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string `gorm:"unique;not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"default:user"` // user, admin
	FirstName    string
	LastName     string
}

// UserStats is the aggregate row refreshed after every completed test session.
type UserStats struct {
	gorm.Model
	UserID            uint `gorm:"uniqueIndex"`
	SessionsCompleted int  `gorm:"default:0"`
	SessionsPassed    int  `gorm:"default:0"`
	QuestionsAnswered int  `gorm:"default:0"`
	CorrectAnswers    int  `gorm:"default:0"`
	AverageScore      float64
	LastActive        time.Time
	StreakDays        int `gorm:"default:0"`
}

type LoginHistory struct {
	gorm.Model
	UserID    uint
	LoginTime time.Time
}
