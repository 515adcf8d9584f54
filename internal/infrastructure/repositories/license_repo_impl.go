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
	"licensekit.backend/pkg/utils"
)

// LicenseRepository implements license data operations
type LicenseRepository struct {
	db *gorm.DB
}

// NewLicenseRepository creates a new license repository
func NewLicenseRepository(db *gorm.DB) *LicenseRepository {
	return &LicenseRepository{db: db}
}

// Create inserts a new license. A license-key collision is reported as
// ErrAlreadyExists so issuance can regenerate and retry.
func (r *LicenseRepository) Create(ctx context.Context, license *entities.License) error {
	if license.ID == uuid.Nil {
		license.ID = uuid.New()
	}
	license.CreatedAt = time.Now()
	license.UpdatedAt = license.CreatedAt

	m := r.toModel(license)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByKey gets a license by its key
func (r *LicenseRepository) GetByKey(ctx context.Context, licenseKey string) (*entities.License, error) {
	var m models.License
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("license_key = ?", licenseKey).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByID gets a license by ID
func (r *LicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.License, error) {
	var m models.License
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update persists all mutable license fields
func (r *LicenseRepository) Update(ctx context.Context, license *entities.License) error {
	license.UpdatedAt = time.Now()
	m := r.toModel(license)
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{}).Where("id = ?", license.ID).Updates(map[string]interface{}{
		"product_name":     m.ProductName,
		"customer_email":   m.CustomerEmail,
		"status":           m.Status,
		"activation_limit": m.ActivationLimit,
		"activations":      m.Activations,
		"expires":          m.Expires,
		"transfer_limit":   m.TransferLimit,
		"domain_locked":    m.DomainLocked,
		"updated_at":       m.UpdatedAt,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// UpdateStatus sets the stored status label
func (r *LicenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.LicenseStatus) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":     string(status),
		"updated_at": time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetActivations persists the recomputed live slot count (floor 0)
func (r *LicenseRepository) SetActivations(ctx context.Context, id uuid.UUID, count int) error {
	if count < 0 {
		count = 0
	}
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{}).Where("id = ?", id).Updates(map[string]interface{}{
		"activations": count,
		"updated_at":  time.Now(),
	}).Error
}

// SetTransferLimit overrides the per-license transfer limit
func (r *LicenseRepository) SetTransferLimit(ctx context.Context, id uuid.UUID, limit int) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{}).Where("id = ?", id).Updates(map[string]interface{}{
		"transfer_limit": limit,
		"updated_at":     time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// SetDomainLock toggles the operator domain lock
func (r *LicenseRepository) SetDomainLock(ctx context.Context, id uuid.UUID, locked bool) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{}).Where("id = ?", id).Updates(map[string]interface{}{
		"domain_locked": locked,
		"updated_at":    time.Now(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// MarkExpiredStatuses labels lapsed active licenses; called by the external
// sweep, never consulted for live expiry decisions.
func (r *LicenseRepository) MarkExpiredStatuses(ctx context.Context, now time.Time) (int64, error) {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{}).
		Where("status = ? AND expires IS NOT NULL AND expires < ?", string(entities.LicenseStatusActive), now).
		Updates(map[string]interface{}{
			"status":     string(entities.LicenseStatusExpired),
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// List returns licenses ordered by creation time, newest first
func (r *LicenseRepository) List(ctx context.Context, params utils.PaginationParams) ([]*entities.License, int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx).Model(&models.License{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := db.Order("created_at DESC")
	if params.Limit > 0 {
		q = q.Offset(params.CalculateOffset()).Limit(params.Limit)
	}

	var ms []models.License
	if err := q.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.License, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, total, nil
}

func (r *LicenseRepository) toModel(e *entities.License) *models.License {
	return &models.License{
		ID:              e.ID,
		LicenseKey:      e.LicenseKey,
		ProductName:     e.ProductName,
		CustomerEmail:   e.CustomerEmail,
		Status:          string(e.Status),
		ActivationLimit: e.ActivationLimit,
		Activations:     e.Activations,
		Expires:         e.Expires,
		TransferLimit:   e.TransferLimit,
		DomainLocked:    e.DomainLocked,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func (r *LicenseRepository) toEntity(m *models.License) *entities.License {
	return &entities.License{
		ID:              m.ID,
		LicenseKey:      m.LicenseKey,
		ProductName:     m.ProductName,
		CustomerEmail:   m.CustomerEmail,
		Status:          entities.LicenseStatus(m.Status),
		ActivationLimit: m.ActivationLimit,
		Activations:     m.Activations,
		Expires:         m.Expires,
		TransferLimit:   m.TransferLimit,
		DomainLocked:    m.DomainLocked,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
