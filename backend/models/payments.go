package models

import (
	"time"

	"gorm.io/gorm"
)

type PromoCode struct {
	gorm.Model
	Code            string `gorm:"unique;not null"`
	DiscountPercent int    `gorm:"not null"`
	MaxUses         int    `gorm:"default:0"` // 0 = unlimited
	UsedCount       int    `gorm:"default:0"`
	ExpiresAt       *time.Time
	IsActive        bool `gorm:"default:true"`
}

type Payment struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index"`
	Reference   string `gorm:"unique;not null"` // uuid assigned at creation
	AmountCents int    `gorm:"not null"`
	Currency    string `gorm:"default:EUR"`
	PromoCodeID *uint
	Status      string `gorm:"default:pending"` // pending, paid, cancelled
	PaidAt      *time.Time
}
