package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/infrastructure/models"
)

// KeyChecksumRepository implements checksum record operations
type KeyChecksumRepository struct {
	db *gorm.DB
}

// NewKeyChecksumRepository creates a new checksum repository
func NewKeyChecksumRepository(db *gorm.DB) *KeyChecksumRepository {
	return &KeyChecksumRepository{db: db}
}

// Create writes the once-only checksum record for a freshly generated key
func (r *KeyChecksumRepository) Create(ctx context.Context, checksum *entities.KeyChecksum) error {
	if checksum.ID == uuid.Nil {
		checksum.ID = uuid.New()
	}
	checksum.CreatedAt = time.Now()

	m := &models.KeyChecksum{
		ID:         checksum.ID,
		LicenseKey: checksum.LicenseKey,
		Checksum:   checksum.Checksum,
		CreatedAt:  checksum.CreatedAt,
	}
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByKey gets the checksum record for a license key
func (r *KeyChecksumRepository) GetByKey(ctx context.Context, licenseKey string) (*entities.KeyChecksum, error) {
	var m models.KeyChecksum
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("license_key = ?", licenseKey).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return &entities.KeyChecksum{
		ID:         m.ID,
		LicenseKey: m.LicenseKey,
		Checksum:   m.Checksum,
		CreatedAt:  m.CreatedAt,
	}, nil
}
