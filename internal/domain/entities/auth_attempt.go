package entities

import (
	"time"

	"github.com/google/uuid"
)

// AuthAttemptStatus is the outcome of a single credential check
type AuthAttemptStatus string

const (
	AuthAttemptSuccess AuthAttemptStatus = "success"
	AuthAttemptFailed  AuthAttemptStatus = "failed"
	AuthAttemptBlocked AuthAttemptStatus = "blocked"
)

// AuthAttempt is one row of the append-only auth trail. The trail is the sole
// input to IP-blocking decisions; there is no separate counter to
// desynchronize.
type AuthAttempt struct {
	ID          uuid.UUID         `json:"id"`
	EventType   string            `json:"eventType"`
	IPAddress   string            `json:"ipAddress"`
	UserAgent   string            `json:"userAgent"`
	Status      AuthAttemptStatus `json:"status"`
	AttemptTime time.Time         `json:"attemptTime"`
}
