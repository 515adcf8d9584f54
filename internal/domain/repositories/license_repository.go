package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"licensekit.backend/internal/domain/entities"
	"licensekit.backend/pkg/utils"
)

type LicenseRepository interface {
	Create(ctx context.Context, license *entities.License) error
	GetByKey(ctx context.Context, licenseKey string) (*entities.License, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.License, error)
	Update(ctx context.Context, license *entities.License) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.LicenseStatus) error
	SetActivations(ctx context.Context, id uuid.UUID, count int) error
	SetTransferLimit(ctx context.Context, id uuid.UUID, limit int) error
	SetDomainLock(ctx context.Context, id uuid.UUID, locked bool) error
	// MarkExpiredStatuses labels active licenses whose expiry has passed.
	// The label is a cached report value only; live expiry is always computed
	// per request.
	MarkExpiredStatuses(ctx context.Context, now time.Time) (int64, error)
	List(ctx context.Context, params utils.PaginationParams) ([]*entities.License, int64, error)
}

type KeyChecksumRepository interface {
	Create(ctx context.Context, checksum *entities.KeyChecksum) error
	GetByKey(ctx context.Context, licenseKey string) (*entities.KeyChecksum, error)
}
