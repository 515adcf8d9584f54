package models

import (
	"time"

	"github.com/google/uuid"
)

type ApiCredential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(100);not null"`
	KeyPrefix    string    `gorm:"type:varchar(20);not null"`
	KeyHash      string    `gorm:"type:varchar(64);uniqueIndex;not null"` // SHA256 of secret
	SecretMasked string    `gorm:"type:varchar(20);not null"`
	Status       string    `gorm:"type:varchar(10);not null;default:'active'"`
	UsageCount   int64     `gorm:"not null;default:0"`
	LastUsedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
