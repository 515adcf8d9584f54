package usecases

import (
	"context"
	"crypto/hmac"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/domain/repositories"
	"licensekit.backend/pkg/crypto"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/metrics"
)

const credentialPrefix = "lk_live_"

// CredentialUsecase is the auth gatekeeper: it validates inbound API
// credentials and blocks abusive IPs. The append-only auth trail is the sole
// input to the blocking decision, so there is no counter to desynchronize.
type CredentialUsecase struct {
	credentialRepo repositories.ApiCredentialRepository
	attemptRepo    repositories.AuthAttemptRepository
	threshold      int
	window         time.Duration

	nowFn func() time.Time
}

// NewCredentialUsecase creates the gatekeeper
func NewCredentialUsecase(
	credentialRepo repositories.ApiCredentialRepository,
	attemptRepo repositories.AuthAttemptRepository,
	threshold int,
	window time.Duration,
) *CredentialUsecase {
	return &CredentialUsecase{
		credentialRepo: credentialRepo,
		attemptRepo:    attemptRepo,
		threshold:      threshold,
		window:         window,
		nowFn:          time.Now,
	}
}

// Authenticate validates a credential presented from ip. The IP's failed
// count is evaluated before the credential: an already-blocked caller is
// rejected without touching the credential at all, which is both fail-fast
// and denies a timing oracle to blocked callers.
func (u *CredentialUsecase) Authenticate(ctx context.Context, credential, ip, userAgent string) error {
	now := u.nowFn()

	failed, err := u.attemptRepo.CountFailedSince(ctx, ip, now.Add(-u.window))
	if err != nil {
		return domainerrors.InternalError(err)
	}
	if failed >= int64(u.threshold) {
		u.record(ctx, ip, userAgent, entities.AuthAttemptBlocked)
		return domainerrors.Blocked("too many failed attempts, retry later")
	}

	if credential == "" {
		u.record(ctx, ip, userAgent, entities.AuthAttemptFailed)
		return domainerrors.Unauthorized("api credential is required")
	}

	hash := crypto.SHA256Hex([]byte(credential))
	cred, err := u.credentialRepo.GetByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			u.record(ctx, ip, userAgent, entities.AuthAttemptFailed)
			return domainerrors.Unauthorized("invalid api credential")
		}
		return domainerrors.InternalError(err)
	}

	// The lookup is already keyed by hash; the explicit compare keeps the
	// final decision constant-time regardless of how the store behaves.
	if !hmac.Equal([]byte(cred.KeyHash), []byte(hash)) || cred.Status != entities.ApiCredentialActive {
		u.record(ctx, ip, userAgent, entities.AuthAttemptFailed)
		return domainerrors.Unauthorized("invalid api credential")
	}

	u.record(ctx, ip, userAgent, entities.AuthAttemptSuccess)
	if err := u.attemptRepo.ClearFailedForIP(ctx, ip); err != nil {
		logger.Warn(ctx, "failed to clear auth attempt history", zap.String("ip", ip), zap.Error(err))
	}
	if err := u.credentialRepo.IncrementUsage(ctx, cred.ID); err != nil {
		logger.Warn(ctx, "failed to bump credential usage", zap.Error(err))
	}
	return nil
}

// CreateCredential mints a credential and returns the plaintext secret once
func (u *CredentialUsecase) CreateCredential(ctx context.Context, input *entities.CreateCredentialInput) (*entities.CreateCredentialResponse, error) {
	raw, err := generateRandomHex(48)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	secret := credentialPrefix + raw

	cred := &entities.ApiCredential{
		Name:         input.Name,
		KeyPrefix:    credentialPrefix,
		KeyHash:      crypto.SHA256Hex([]byte(secret)),
		SecretMasked: maskSecret(secret),
		Status:       entities.ApiCredentialActive,
	}
	if err := u.credentialRepo.Create(ctx, cred); err != nil {
		return nil, err
	}

	return &entities.CreateCredentialResponse{
		ID:         cred.ID,
		Name:       cred.Name,
		Credential: secret,
		CreatedAt:  cred.CreatedAt,
	}, nil
}

// ListCredentials lists all credentials (hashes never leave the store layer
// exposed; the entity hides KeyHash from JSON)
func (u *CredentialUsecase) ListCredentials(ctx context.Context) ([]*entities.ApiCredential, error) {
	return u.credentialRepo.List(ctx)
}

// SetCredentialStatus enables or disables a credential
func (u *CredentialUsecase) SetCredentialStatus(ctx context.Context, id uuid.UUID, status entities.ApiCredentialStatus) error {
	if status != entities.ApiCredentialActive && status != entities.ApiCredentialDisabled {
		return domainerrors.BadRequest("invalid credential status")
	}
	if err := u.credentialRepo.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("credential not found")
		}
		return err
	}
	return nil
}

// DeleteCredential hard-deletes a credential
func (u *CredentialUsecase) DeleteCredential(ctx context.Context, id uuid.UUID) error {
	if err := u.credentialRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("credential not found")
		}
		return err
	}
	return nil
}

func (u *CredentialUsecase) record(ctx context.Context, ip, userAgent string, status entities.AuthAttemptStatus) {
	metrics.AuthAttempts.WithLabelValues(string(status)).Inc()
	err := u.attemptRepo.Append(ctx, &entities.AuthAttempt{
		EventType:   "api_auth",
		IPAddress:   ip,
		UserAgent:   userAgent,
		Status:      status,
		AttemptTime: u.nowFn(),
	})
	if err != nil {
		logger.Error(ctx, "failed to append auth attempt", zap.String("ip", ip), zap.Error(err))
	}
}
