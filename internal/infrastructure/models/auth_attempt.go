package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthAttempt rows are append-only; the blocking decision counts them, it
// never mutates them.
type AuthAttempt struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType   string    `gorm:"type:varchar(50);not null"`
	IPAddress   string    `gorm:"type:varchar(45);not null;index:idx_auth_attempts_ip_time"`
	UserAgent   string    `gorm:"type:varchar(255)"`
	Status      string    `gorm:"type:varchar(10);not null"`
	AttemptTime time.Time `gorm:"not null;index:idx_auth_attempts_ip_time"`
}
