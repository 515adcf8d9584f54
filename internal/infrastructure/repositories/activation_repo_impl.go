package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/infrastructure/models"
)

// ActivationRepository implements activation slot data operations
type ActivationRepository struct {
	db *gorm.DB
}

// NewActivationRepository creates a new activation repository
func NewActivationRepository(db *gorm.DB) *ActivationRepository {
	return &ActivationRepository{db: db}
}

// Create inserts a slot. The unique indexes turn both duplicate-slot and
// cross-license domain claims into ErrConflict.
func (r *ActivationRepository) Create(ctx context.Context, activation *entities.Activation) error {
	if activation.ID == uuid.Nil {
		activation.ID = uuid.New()
	}
	if activation.ActivatedAt.IsZero() {
		activation.ActivatedAt = time.Now()
	}

	m := r.toModel(activation)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetSlot gets the slot binding a license to a site
func (r *ActivationRepository) GetSlot(ctx context.Context, licenseID uuid.UUID, siteURL string) (*entities.Activation, error) {
	var m models.Activation
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("license_id = ? AND site_url = ?", licenseID, siteURL).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetBySiteURL looks a site up across all licenses
func (r *ActivationRepository) GetBySiteURL(ctx context.Context, siteURL string) (*entities.Activation, error) {
	var m models.Activation
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("site_url = ?", siteURL).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// ListByLicense lists all slots of a license
func (r *ActivationRepository) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*entities.Activation, error) {
	var ms []models.Activation
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("license_id = ?", licenseID).Order("activated_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Activation, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, nil
}

// CountByLicense returns the live slot count for a license
func (r *ActivationRepository) CountByLicense(ctx context.Context, licenseID uuid.UUID) (int, error) {
	var count int64
	if err := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Activation{}).Where("license_id = ?", licenseID).Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// Delete removes a slot outright; no soft delete
func (r *ActivationRepository) Delete(ctx context.Context, licenseID uuid.UUID, siteURL string) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Where("license_id = ? AND site_url = ?", licenseID, siteURL).Delete(&models.Activation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// DeleteByLicense removes every slot of a license (revoke path)
func (r *ActivationRepository) DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Where("license_id = ?", licenseID).Delete(&models.Activation{}).Error
}

// TouchLastCheck stamps the recheck probe time on a slot
func (r *ActivationRepository) TouchLastCheck(ctx context.Context, licenseID uuid.UUID, siteURL string, now time.Time) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Activation{}).
		Where("license_id = ? AND site_url = ?", licenseID, siteURL).
		Update("last_check", null.TimeFrom(now))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// RecordTransfer increments the slot's transfer counter and restarts its
// cooldown clock
func (r *ActivationRepository) RecordTransfer(ctx context.Context, licenseID uuid.UUID, siteURL string, now time.Time) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Activation{}).
		Where("license_id = ? AND site_url = ?", licenseID, siteURL).
		Updates(map[string]interface{}{
			"transfer_count":     gorm.Expr("transfer_count + 1"),
			"last_transfer_date": null.TimeFrom(now),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ResetTransferCount is the operator override clearing a slot's cooldown
func (r *ActivationRepository) ResetTransferCount(ctx context.Context, licenseID uuid.UUID, siteURL string) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Activation{}).
		Where("license_id = ? AND site_url = ?", licenseID, siteURL).
		Updates(map[string]interface{}{
			"transfer_count":     0,
			"last_transfer_date": null.Time{},
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ActivationRepository) toModel(e *entities.Activation) *models.Activation {
	return &models.Activation{
		ID:               e.ID,
		LicenseID:        e.LicenseID,
		SiteURL:          e.SiteURL,
		ActivatedAt:      e.ActivatedAt,
		LastCheck:        e.LastCheck,
		TransferCount:    e.TransferCount,
		LastTransferDate: e.LastTransferDate,
	}
}

func (r *ActivationRepository) toEntity(m *models.Activation) *entities.Activation {
	return &entities.Activation{
		ID:               m.ID,
		LicenseID:        m.LicenseID,
		SiteURL:          m.SiteURL,
		ActivatedAt:      m.ActivatedAt,
		LastCheck:        m.LastCheck,
		TransferCount:    m.TransferCount,
		LastTransferDate: m.LastTransferDate,
	}
}
