package services

import (
	"errors"
	"fmt"
	"strconv"

	"certilang/backend/models"

	"gorm.io/gorm"
)

// DefaultQuestionsPercent is used whenever the configuration store has no
// usable percentage for a level.
const DefaultQuestionsPercent = 20

const questionsPercentKey = "questions_percentage_per_level"

// SettingsService reads and writes the generic key/value configuration store.
type SettingsService struct {
	DB *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{DB: db}
}

func (s *SettingsService) Get(key string) (string, bool) {
	var setting models.Setting
	if err := s.DB.Where("key = ?", key).First(&setting).Error; err != nil {
		return "", false
	}
	return setting.Value, true
}

// Set upserts a configuration key.
func (s *SettingsService) Set(key, value string) error {
	var setting models.Setting
	err := s.DB.Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.DB.Create(&models.Setting{Key: key, Value: value}).Error
	}
	if err != nil {
		return err
	}
	setting.Value = value
	return s.DB.Save(&setting).Error
}

// QuestionsPercentage returns the share of a level's question bank served per
// test session. A per-level override wins over the global key; malformed or
// missing values fall back to the default of 20%.
func (s *SettingsService) QuestionsPercentage(level int) int {
	if value, ok := s.Get(fmt.Sprintf("test_questions_percentage_level_%d", level)); ok {
		if pct, valid := parsePercent(value); valid {
			return pct
		}
	}
	if value, ok := s.Get(questionsPercentKey); ok {
		if pct, valid := parsePercent(value); valid {
			return pct
		}
	}
	return DefaultQuestionsPercent
}

func parsePercent(value string) (int, bool) {
	pct, err := strconv.Atoi(value)
	if err != nil || pct < 1 || pct > 100 {
		return 0, false
	}
	return pct, true
}
