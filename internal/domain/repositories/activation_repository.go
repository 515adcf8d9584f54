package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"licensekit.backend/internal/domain/entities"
)

type ActivationRepository interface {
	Create(ctx context.Context, activation *entities.Activation) error
	GetSlot(ctx context.Context, licenseID uuid.UUID, siteURL string) (*entities.Activation, error)
	// GetBySiteURL looks a site up across all licenses; used for the global
	// domain-exclusivity check.
	GetBySiteURL(ctx context.Context, siteURL string) (*entities.Activation, error)
	ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*entities.Activation, error)
	CountByLicense(ctx context.Context, licenseID uuid.UUID) (int, error)
	Delete(ctx context.Context, licenseID uuid.UUID, siteURL string) error
	DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error
	TouchLastCheck(ctx context.Context, licenseID uuid.UUID, siteURL string, now time.Time) error
	RecordTransfer(ctx context.Context, licenseID uuid.UUID, siteURL string, now time.Time) error
	ResetTransferCount(ctx context.Context, licenseID uuid.UUID, siteURL string) error
}
