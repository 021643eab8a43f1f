package utils

import (
	"fmt"

	"certilang/backend/config"
	"certilang/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB opens the Postgres connection and runs the schema migration.
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates all tables. Shared with the test setup so the
// test database always matches the production schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.UserStats{},
		&models.LoginHistory{},
		&models.Question{},
		&models.QuestionStat{},
		&models.SessionProgress{},
		&models.TestSession{},
		&models.TestAnswer{},
		&models.FailedQuestion{},
		&models.UserCertification{},
		&models.PromoCode{},
		&models.Payment{},
		&models.Setting{},
	)
}
