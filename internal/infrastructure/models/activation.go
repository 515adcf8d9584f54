package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Activation has two uniqueness guarantees: (license_id, site_url) for slot
// identity, and site_url alone for global domain exclusivity. The latter
// closes the read-then-insert race between two licenses claiming the same
// domain; a violation surfaces as Conflict.
type Activation struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	LicenseID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_activations_license_site"`
	SiteURL          string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_activations_license_site;uniqueIndex:idx_activations_site"`
	ActivatedAt      time.Time `gorm:"not null"`
	LastCheck        null.Time
	TransferCount    int `gorm:"not null;default:0"`
	LastTransferDate null.Time
	License          License `gorm:"foreignKey:LicenseID"`
}
