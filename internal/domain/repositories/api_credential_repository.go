package repositories

import (
	"context"

	"github.com/google/uuid"
	"licensekit.backend/internal/domain/entities"
)

type ApiCredentialRepository interface {
	Create(ctx context.Context, credential *entities.ApiCredential) error
	GetByHash(ctx context.Context, keyHash string) (*entities.ApiCredential, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entities.ApiCredential, error)
	List(ctx context.Context) ([]*entities.ApiCredential, error)
	SetStatus(ctx context.Context, id uuid.UUID, status entities.ApiCredentialStatus) error
	// Delete is a hard delete; disabled credentials that should be kept for
	// audit use SetStatus instead.
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementUsage(ctx context.Context, id uuid.UUID) error
}
