package usecases

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/domain/repositories"
	"licensekit.backend/pkg/crypto"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/metrics"
	"licensekit.backend/pkg/utils"
)

// ActivationUsecase is the license/activation state machine: validate,
// deactivate, revoke, recheck. Every mutation spanning more than one row runs
// inside one unit of work; the webhook fires only after the transaction has
// committed.
type ActivationUsecase struct {
	licenseRepo    repositories.LicenseRepository
	activationRepo repositories.ActivationRepository
	checksumRepo   repositories.KeyChecksumRepository
	uow            repositories.UnitOfWork
	notifier       Notifier
	checksumSecret string

	nowFn    func() time.Time
	dispatch func(f func())
}

// NewActivationUsecase creates the activation state machine
func NewActivationUsecase(
	licenseRepo repositories.LicenseRepository,
	activationRepo repositories.ActivationRepository,
	checksumRepo repositories.KeyChecksumRepository,
	uow repositories.UnitOfWork,
	notifier Notifier,
	checksumSecret string,
) *ActivationUsecase {
	return &ActivationUsecase{
		licenseRepo:    licenseRepo,
		activationRepo: activationRepo,
		checksumRepo:   checksumRepo,
		uow:            uow,
		notifier:       notifier,
		checksumSecret: checksumSecret,
		nowFn:          time.Now,
		dispatch:       func(f func()) { go f() },
	}
}

// Validate activates the site for the license, or confirms an existing
// activation. An expired license may still activate (usage is allowed);
// can_update is what expiry gates.
func (u *ActivationUsecase) Validate(ctx context.Context, licenseKey, siteURL string) (*entities.ValidateResponse, error) {
	site := utils.NormalizeDomain(siteURL)
	if site == "" {
		return nil, domainerrors.BadRequest("site url is required")
	}

	lic, err := u.getVerifiedLicense(ctx, licenseKey)
	if err != nil {
		return nil, err
	}

	switch lic.Status {
	case entities.LicenseStatusRevoked:
		return nil, domainerrors.Forbidden("license has been revoked")
	case entities.LicenseStatusInactive:
		return nil, domainerrors.Forbidden("license is inactive")
	}

	now := u.nowFn()

	// Already activated for this license: a pure read, idempotent.
	if _, err := u.activationRepo.GetSlot(ctx, lic.ID, site); err == nil {
		return &entities.ValidateResponse{
			Success:          true,
			AlreadyActivated: true,
			IsExpired:        lic.IsExpired(now),
			CanUpdate:        lic.CanUpdate(now),
			Expires:          lic.Expires,
			Message:          "site already activated",
		}, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	// Cheap pre-checks outside the transaction; both re-verified inside it
	// (limit under lock, exclusivity by unique constraint).
	if lic.Activations >= lic.ActivationLimit {
		return nil, domainerrors.Forbidden("activation limit reached")
	}
	if other, err := u.activationRepo.GetBySiteURL(ctx, site); err == nil && other.LicenseID != lic.ID {
		return nil, domainerrors.Conflict("site is already bound to another license")
	} else if err != nil && !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := u.uow.WithLock(txCtx)

		// Re-read under lock so two concurrent activations at limit-1 cannot
		// both pass the limit check.
		current, err := u.licenseRepo.GetByID(lockCtx, lic.ID)
		if err != nil {
			return err
		}
		if current.Activations >= current.ActivationLimit {
			return domainerrors.Forbidden("activation limit reached")
		}

		if err := u.activationRepo.Create(txCtx, &entities.Activation{
			LicenseID:   lic.ID,
			SiteURL:     site,
			ActivatedAt: now,
		}); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				return domainerrors.Conflict("site is already bound to another license")
			}
			return err
		}

		count, err := u.activationRepo.CountByLicense(txCtx, lic.ID)
		if err != nil {
			return err
		}
		return u.licenseRepo.SetActivations(txCtx, lic.ID, count)
	})
	if err != nil {
		return nil, err
	}

	metrics.LicenseOps.WithLabelValues("activate").Inc()
	logger.Info(ctx, "license activated",
		zap.String("license_key", lic.LicenseKey),
		zap.String("site_url", site),
	)

	return &entities.ValidateResponse{
		Success:   true,
		IsExpired: lic.IsExpired(now),
		CanUpdate: lic.CanUpdate(now),
		Expires:   lic.Expires,
		Message:   "license activated",
	}, nil
}

// Deactivate frees the slot binding the license to the site. Operator calls
// bypass the domain lock; the webhook notice is fire-and-forget after commit.
func (u *ActivationUsecase) Deactivate(ctx context.Context, licenseKey, siteURL string, operator bool) (*entities.DeactivateResponse, error) {
	site := utils.NormalizeDomain(siteURL)

	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}

	if lic.Status == entities.LicenseStatusRevoked {
		return nil, domainerrors.Forbidden("license has been revoked")
	}
	if !operator && lic.DomainLocked {
		return nil, domainerrors.Forbidden("license is domain locked")
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.activationRepo.Delete(txCtx, lic.ID, site); err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("no activation found for this site")
			}
			return err
		}
		count, err := u.activationRepo.CountByLicense(txCtx, lic.ID)
		if err != nil {
			return err
		}
		return u.licenseRepo.SetActivations(txCtx, lic.ID, count)
	})
	if err != nil {
		return nil, err
	}

	metrics.LicenseOps.WithLabelValues("deactivate").Inc()
	u.notifyAfterCommit(lic, site, "license deactivated on server")

	return &entities.DeactivateResponse{
		Success: true,
		Message: "license deactivated",
	}, nil
}

// Revoke is terminal: status flips to revoked, every slot is deleted, and the
// counter is zeroed, all in one transaction. There is no un-revoke.
func (u *ActivationUsecase) Revoke(ctx context.Context, licenseKey string) (*entities.DeactivateResponse, error) {
	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}

	if lic.Status == entities.LicenseStatusRevoked {
		return nil, domainerrors.Forbidden("license is already revoked")
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.licenseRepo.UpdateStatus(txCtx, lic.ID, entities.LicenseStatusRevoked); err != nil {
			return err
		}
		if err := u.activationRepo.DeleteByLicense(txCtx, lic.ID); err != nil {
			return err
		}
		return u.licenseRepo.SetActivations(txCtx, lic.ID, 0)
	})
	if err != nil {
		return nil, err
	}

	metrics.LicenseOps.WithLabelValues("revoke").Inc()
	logger.Info(ctx, "license revoked", zap.String("license_key", lic.LicenseKey))

	return &entities.DeactivateResponse{
		Success: true,
		Message: "license revoked",
	}, nil
}

// Recheck is the read-only probe for an already-activated site. It stamps
// last_check and reports the live status flags.
func (u *ActivationUsecase) Recheck(ctx context.Context, licenseKey, siteURL string) (*entities.RecheckResponse, error) {
	site := utils.NormalizeDomain(siteURL)

	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}

	now := u.nowFn()
	if err := u.activationRepo.TouchLastCheck(ctx, lic.ID, site, now); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("no activation found for this site")
		}
		return nil, err
	}

	return &entities.RecheckResponse{
		Success:   true,
		IsActive:  lic.Status == entities.LicenseStatusActive,
		IsExpired: lic.IsExpired(now),
		CanUpdate: lic.CanUpdate(now),
	}, nil
}

// getVerifiedLicense loads a license and verifies its checksum record. A
// missing record is tolerated (keys issued before checksums existed); a
// mismatching one is tampering.
func (u *ActivationUsecase) getVerifiedLicense(ctx context.Context, licenseKey string) (*entities.License, error) {
	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}

	cs, err := u.checksumRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return lic, nil
		}
		return nil, err
	}
	if !crypto.VerifyKeyChecksum(u.checksumSecret, licenseKey, cs.Checksum) {
		logger.Warn(ctx, "license key failed checksum verification", zap.String("license_key", licenseKey))
		return nil, domainerrors.Forbidden("license key failed integrity check")
	}
	return lic, nil
}

// notifyAfterCommit dispatches the webhook outside the request path. The
// notice uses a fresh context so a caller disconnect cannot cancel it; its
// outcome never changes the response already computed.
func (u *ActivationUsecase) notifyAfterCommit(lic *entities.License, site, message string) {
	if u.notifier == nil {
		return
	}
	u.dispatch(func() {
		_ = u.notifier.NotifyDeactivated(context.Background(), lic, site, message)
	})
}
