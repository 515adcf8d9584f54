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

// ApiCredentialRepository implements API credential data operations
type ApiCredentialRepository struct {
	db *gorm.DB
}

// NewApiCredentialRepository creates a new credential repository
func NewApiCredentialRepository(db *gorm.DB) *ApiCredentialRepository {
	return &ApiCredentialRepository{db: db}
}

// Create inserts a new credential
func (r *ApiCredentialRepository) Create(ctx context.Context, credential *entities.ApiCredential) error {
	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}
	credential.CreatedAt = time.Now()
	credential.UpdatedAt = credential.CreatedAt

	m := r.toModel(credential)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByHash gets a credential by the SHA-256 hash of its secret
func (r *ApiCredentialRepository) GetByHash(ctx context.Context, keyHash string) (*entities.ApiCredential, error) {
	var m models.ApiCredential
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("key_hash = ?", keyHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByID gets a credential by ID
func (r *ApiCredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ApiCredential, error) {
	var m models.ApiCredential
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// List returns all credentials, newest first
func (r *ApiCredentialRepository) List(ctx context.Context) ([]*entities.ApiCredential, error) {
	var ms []models.ApiCredential
	if err := GetDB(ctx, r.db).WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.ApiCredential, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, nil
}

// SetStatus enables or disables a credential
func (r *ApiCredentialRepository) SetStatus(ctx context.Context, id uuid.UUID, status entities.ApiCredentialStatus) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Model(&models.ApiCredential{}).Where("id = ?", id).Updates(map[string]interface{}{
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

// Delete hard-deletes a credential
func (r *ApiCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).Delete(&models.ApiCredential{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// IncrementUsage bumps the usage counter and last-used stamp
func (r *ApiCredentialRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).WithContext(ctx).Model(&models.ApiCredential{}).Where("id = ?", id).Updates(map[string]interface{}{
		"usage_count":  gorm.Expr("usage_count + 1"),
		"last_used_at": time.Now(),
	}).Error
}

func (r *ApiCredentialRepository) toModel(e *entities.ApiCredential) *models.ApiCredential {
	return &models.ApiCredential{
		ID:           e.ID,
		Name:         e.Name,
		KeyPrefix:    e.KeyPrefix,
		KeyHash:      e.KeyHash,
		SecretMasked: e.SecretMasked,
		Status:       string(e.Status),
		UsageCount:   e.UsageCount,
		LastUsedAt:   e.LastUsedAt,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func (r *ApiCredentialRepository) toEntity(m *models.ApiCredential) *entities.ApiCredential {
	return &entities.ApiCredential{
		ID:           m.ID,
		Name:         m.Name,
		KeyPrefix:    m.KeyPrefix,
		KeyHash:      m.KeyHash,
		SecretMasked: m.SecretMasked,
		Status:       entities.ApiCredentialStatus(m.Status),
		UsageCount:   m.UsageCount,
		LastUsedAt:   m.LastUsedAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}
