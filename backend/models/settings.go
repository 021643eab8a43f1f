package models

import "gorm.io/gorm"

// Setting is a generic key/value configuration row. Known keys include
// "questions_percentage_per_level" and the per-level overrides
// "test_questions_percentage_level_{n}".
type Setting struct {
	gorm.Model
	Key   string `gorm:"unique;not null"`
	Value string
}
