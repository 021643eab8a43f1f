package services

import (
	"errors"
	"time"

	"certilang/backend/models"

	"gorm.io/gorm"
)

// CertificationService creates one UserCertification per (user, level)
// qualifying event. A pre-check plus the unique index on (user, level) keep a
// retried remedial session from inserting a duplicate row.
type CertificationService struct {
	DB *gorm.DB
}

func NewCertificationService(db *gorm.DB) *CertificationService {
	return &CertificationService{DB: db}
}

// Issue returns the existing certification if the user already holds one for
// the level, otherwise inserts a new row.
func (s *CertificationService) Issue(userID uint, level, score int) (*models.UserCertification, error) {
	var existing models.UserCertification
	err := s.DB.Where("user_id = ? AND level = ?", userID, level).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cert := models.UserCertification{
		UserID:      userID,
		Level:       level,
		Score:       score,
		CertifiedAt: time.Now(),
	}
	if err := s.DB.Create(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *CertificationService) ListForUser(userID uint) ([]models.UserCertification, error) {
	var certs []models.UserCertification
	err := s.DB.Where("user_id = ?", userID).Order("level").Find(&certs).Error
	return certs, err
}

// MaxCertifiedLevel returns the highest level the user is certified for,
// or 0 when the user holds no certification.
func (s *CertificationService) MaxCertifiedLevel(userID uint) (int, error) {
	var maxLevel *int
	err := s.DB.Model(&models.UserCertification{}).
		Where("user_id = ?", userID).
		Select("MAX(level)").
		Scan(&maxLevel).Error
	if err != nil || maxLevel == nil {
		return 0, err
	}
	return *maxLevel, nil
}
