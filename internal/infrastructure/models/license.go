package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

type License struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	LicenseKey      string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	ProductName     string    `gorm:"type:varchar(255);not null;index"`
	CustomerEmail   string    `gorm:"type:varchar(255);not null;index"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active';index"`
	ActivationLimit int       `gorm:"not null;default:1"`
	Activations     int       `gorm:"not null;default:0"`
	Expires         null.Time
	TransferLimit   int  `gorm:"not null;default:1"`
	DomainLocked    bool `gorm:"not null;default:false"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// KeyChecksum rows are written once at key generation and never updated.
type KeyChecksum struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	LicenseKey string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	Checksum   string    `gorm:"type:varchar(64);not null"`
	CreatedAt  time.Time
}
