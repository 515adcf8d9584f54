package repositories

import (
	"context"
	"time"

	"licensekit.backend/internal/domain/entities"
)

type AuthAttemptRepository interface {
	Append(ctx context.Context, attempt *entities.AuthAttempt) error
	CountFailedSince(ctx context.Context, ipAddress string, since time.Time) (int64, error)
	// ClearFailedForIP removes the failed-attempt history for an IP after a
	// successful auth.
	ClearFailedForIP(ctx context.Context, ipAddress string) error
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
