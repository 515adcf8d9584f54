package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"licensekit.backend/internal/domain/entities"
	"licensekit.backend/internal/infrastructure/models"
)

// AuthAttemptRepository implements the append-only auth trail
type AuthAttemptRepository struct {
	db *gorm.DB
}

// NewAuthAttemptRepository creates a new auth attempt repository
func NewAuthAttemptRepository(db *gorm.DB) *AuthAttemptRepository {
	return &AuthAttemptRepository{db: db}
}

// Append records one auth outcome
func (r *AuthAttemptRepository) Append(ctx context.Context, attempt *entities.AuthAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if attempt.AttemptTime.IsZero() {
		attempt.AttemptTime = time.Now()
	}

	m := &models.AuthAttempt{
		ID:          attempt.ID,
		EventType:   attempt.EventType,
		IPAddress:   attempt.IPAddress,
		UserAgent:   attempt.UserAgent,
		Status:      string(attempt.Status),
		AttemptTime: attempt.AttemptTime,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// CountFailedSince counts failed attempts from an IP in the trailing window
func (r *AuthAttemptRepository) CountFailedSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.AuthAttempt{}).
		Where("ip_address = ? AND status = ? AND attempt_time >= ?", ipAddress, string(entities.AuthAttemptFailed), since).
		Count(&count).Error
	return count, err
}

// ClearFailedForIP drops the failed-attempt history for an IP
func (r *AuthAttemptRepository) ClearFailedForIP(ctx context.Context, ipAddress string) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Where("ip_address = ? AND status = ?", ipAddress, string(entities.AuthAttemptFailed)).
		Delete(&models.AuthAttempt{}).Error
}

// PurgeBefore removes trail rows older than the cutoff; called by the
// external log-retention job
func (r *AuthAttemptRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Where("attempt_time < ?", cutoff).Delete(&models.AuthAttempt{})
	return res.RowsAffected, res.Error
}
