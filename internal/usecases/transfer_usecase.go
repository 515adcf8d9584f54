package usecases

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/domain/repositories"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/metrics"
	"licensekit.backend/pkg/utils"
)

// TransferUsecase is the transfer-control engine: cooldown enforcement,
// atomic slot transfer, and the operator overrides that bypass both.
// The per-license transfer_limit column is the single source for the limit.
type TransferUsecase struct {
	licenseRepo    repositories.LicenseRepository
	activationRepo repositories.ActivationRepository
	uow            repositories.UnitOfWork
	notifier       Notifier
	cooldown       time.Duration

	nowFn    func() time.Time
	dispatch func(f func())
}

// NewTransferUsecase creates the transfer control engine
func NewTransferUsecase(
	licenseRepo repositories.LicenseRepository,
	activationRepo repositories.ActivationRepository,
	uow repositories.UnitOfWork,
	notifier Notifier,
	cooldown time.Duration,
) *TransferUsecase {
	return &TransferUsecase{
		licenseRepo:    licenseRepo,
		activationRepo: activationRepo,
		uow:            uow,
		notifier:       notifier,
		cooldown:       cooldown,
		nowFn:          time.Now,
		dispatch:       func(f func()) { go f() },
	}
}

// CheckEligibility reports whether the slot may transfer now. A slot is
// blocked only while its transfer count has reached the license's limit AND
// the last transfer is inside the cooldown window; the counter itself is
// never reset by time.
func (u *TransferUsecase) CheckEligibility(ctx context.Context, licenseKey, siteURL string) error {
	site := utils.NormalizeDomain(siteURL)

	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("license key not found")
		}
		return err
	}

	slot, err := u.activationRepo.GetSlot(ctx, lic.ID, site)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("no activation found for this site")
		}
		return err
	}

	if !slot.TransferEligible(lic.TransferLimit, u.cooldown, u.nowFn()) {
		return domainerrors.TransferLimitExceeded("transfer limit reached for this slot, retry after the cooldown window")
	}
	return nil
}

// ConsumeTransferAndDeactivate backs the signed external
// deactivation-with-transfer flow: it stamps a consumed transfer on the slot
// and releases it in one transaction. Every refusal (unknown key, revoked,
// domain lock, missing slot, cooldown) is decided before anything is written,
// so a rejected request never burns the slot's transfer credit.
func (u *TransferUsecase) ConsumeTransferAndDeactivate(ctx context.Context, licenseKey, siteURL string) (*entities.DeactivateResponse, error) {
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
	if lic.DomainLocked {
		return nil, domainerrors.Forbidden("license is domain locked")
	}

	slot, err := u.activationRepo.GetSlot(ctx, lic.ID, site)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("no activation found for this site")
		}
		return nil, err
	}

	now := u.nowFn()
	if !slot.TransferEligible(lic.TransferLimit, u.cooldown, now) {
		return nil, domainerrors.TransferLimitExceeded("transfer limit reached for this slot, retry after the cooldown window")
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.activationRepo.RecordTransfer(txCtx, lic.ID, site, now); err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("no activation found for this site")
			}
			return err
		}

		if err := u.activationRepo.Delete(txCtx, lic.ID, site); err != nil {
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
	logger.Info(ctx, "license deactivated via signed transfer flow",
		zap.String("license_key", lic.LicenseKey),
		zap.String("domain", site),
	)

	if u.notifier != nil {
		u.dispatch(func() {
			_ = u.notifier.NotifyDeactivated(context.Background(), lic, site, "license deactivated on server")
		})
	}

	return &entities.DeactivateResponse{
		Success: true,
		Message: "license deactivated",
	}, nil
}

// TransferSlot atomically rebinds a slot from oldDomain to newDomain. The new
// slot starts its own cooldown clock: transfer_count resets to zero but
// last_transfer_date is stamped now. Any failure rolls the whole operation
// back; a crash mid-transfer can never leave zero or duplicate slots.
func (u *TransferUsecase) TransferSlot(ctx context.Context, licenseKey, oldDomain, newDomain string, operator bool) (*entities.DeactivateResponse, error) {
	oldSite := utils.NormalizeDomain(oldDomain)
	newSite := utils.NormalizeDomain(newDomain)
	if newSite == "" {
		return nil, domainerrors.BadRequest("new domain is required")
	}
	if oldSite == newSite {
		return nil, domainerrors.BadRequest("new domain must differ from the old one")
	}

	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}

	if lic.Status == entities.LicenseStatusRevoked || lic.Status == entities.LicenseStatusInactive {
		return nil, domainerrors.Forbidden("license status does not allow transfer")
	}
	if !operator {
		if lic.DomainLocked {
			return nil, domainerrors.Forbidden("license is domain locked")
		}
		if err := u.CheckEligibility(ctx, licenseKey, oldSite); err != nil {
			return nil, err
		}
	}

	now := u.nowFn()
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		old, err := u.activationRepo.GetSlot(txCtx, lic.ID, oldSite)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("no activation found for this site")
			}
			return err
		}

		if _, err := u.activationRepo.GetSlot(txCtx, lic.ID, newSite); err == nil {
			return domainerrors.Conflict("new domain is already activated for this license")
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		if err := u.activationRepo.Delete(txCtx, lic.ID, old.SiteURL); err != nil {
			return err
		}

		if err := u.activationRepo.Create(txCtx, &entities.Activation{
			LicenseID:        lic.ID,
			SiteURL:          newSite,
			ActivatedAt:      now,
			TransferCount:    0,
			LastTransferDate: nullTimeFrom(now),
		}); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				return domainerrors.Conflict("new domain is already bound to another license")
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

	metrics.LicenseOps.WithLabelValues("transfer").Inc()
	logger.Info(ctx, "license slot transferred",
		zap.String("license_key", lic.LicenseKey),
		zap.String("old_domain", oldSite),
		zap.String("new_domain", newSite),
	)

	if u.notifier != nil {
		u.dispatch(func() {
			_ = u.notifier.NotifyDeactivated(context.Background(), lic, oldSite, "license transferred to a new site")
		})
	}

	return &entities.DeactivateResponse{
		Success: true,
		Message: "license transferred",
	}, nil
}

// ResetTransferCount is an operator override clearing a slot's cooldown
func (u *TransferUsecase) ResetTransferCount(ctx context.Context, licenseKey, siteURL string) error {
	site := utils.NormalizeDomain(siteURL)

	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("license key not found")
		}
		return err
	}

	if err := u.activationRepo.ResetTransferCount(ctx, lic.ID, site); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("no activation found for this site")
		}
		return err
	}
	return nil
}

// ToggleDomainLock flips the per-license lock and returns the new state.
// The lock blocks user-initiated transfer and deactivate, never operator
// actions.
func (u *TransferUsecase) ToggleDomainLock(ctx context.Context, licenseKey string) (bool, error) {
	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return false, domainerrors.NotFound("license key not found")
		}
		return false, err
	}

	locked := !lic.DomainLocked
	if err := u.licenseRepo.SetDomainLock(ctx, lic.ID, locked); err != nil {
		return false, err
	}
	return locked, nil
}

// EditTransferLimit overrides a license's transfer limit
func (u *TransferUsecase) EditTransferLimit(ctx context.Context, licenseKey string, limit int) error {
	if limit < 0 {
		return domainerrors.BadRequest("transfer limit must not be negative")
	}

	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("license key not found")
		}
		return err
	}

	return u.licenseRepo.SetTransferLimit(ctx, lic.ID, limit)
}
