package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"licensekit.backend/internal/domain/entities"
	domainerrors "licensekit.backend/internal/domain/errors"
	"licensekit.backend/internal/domain/repositories"
	"licensekit.backend/pkg/crypto"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/utils"
)

const keyGenerationRetries = 5

// LicenseUsecase covers issuance, operator reads, the public product lookup,
// and the maintenance entry points called by external schedulers.
type LicenseUsecase struct {
	licenseRepo  repositories.LicenseRepository
	checksumRepo repositories.KeyChecksumRepository
	attemptRepo  repositories.AuthAttemptRepository
	uow          repositories.UnitOfWork

	defaultActivationLimit int
	defaultTransferLimit   int
	checksumSecret         string

	nowFn func() time.Time
}

// NewLicenseUsecase creates the license lifecycle usecase
func NewLicenseUsecase(
	licenseRepo repositories.LicenseRepository,
	checksumRepo repositories.KeyChecksumRepository,
	attemptRepo repositories.AuthAttemptRepository,
	uow repositories.UnitOfWork,
	defaultActivationLimit int,
	defaultTransferLimit int,
	checksumSecret string,
) *LicenseUsecase {
	return &LicenseUsecase{
		licenseRepo:            licenseRepo,
		checksumRepo:           checksumRepo,
		attemptRepo:            attemptRepo,
		uow:                    uow,
		defaultActivationLimit: defaultActivationLimit,
		defaultTransferLimit:   defaultTransferLimit,
		checksumSecret:         checksumSecret,
		nowFn:                  time.Now,
	}
}

// IssueLicense creates a license with a fresh key and its immutable checksum
// record in one transaction. Key collisions regenerate and retry.
func (u *LicenseUsecase) IssueLicense(ctx context.Context, input *entities.IssueLicenseInput) (*entities.License, error) {
	activationLimit := input.ActivationLimit
	if activationLimit <= 0 {
		activationLimit = u.defaultActivationLimit
	}
	transferLimit := input.TransferLimit
	if transferLimit <= 0 {
		transferLimit = u.defaultTransferLimit
	}

	var expires null.Time
	if input.Expires != nil {
		expires = null.TimeFrom(*input.Expires)
	}

	var issued *entities.License
	for attempt := 0; attempt < keyGenerationRetries; attempt++ {
		key, err := generateLicenseKey()
		if err != nil {
			return nil, domainerrors.InternalError(err)
		}
		checksum, err := crypto.KeyChecksum(u.checksumSecret, key)
		if err != nil {
			return nil, domainerrors.InternalError(err)
		}

		lic := &entities.License{
			LicenseKey:      key,
			ProductName:     input.ProductName,
			CustomerEmail:   input.CustomerEmail,
			Status:          entities.LicenseStatusActive,
			ActivationLimit: activationLimit,
			TransferLimit:   transferLimit,
			Expires:         expires,
		}

		err = u.uow.Do(ctx, func(txCtx context.Context) error {
			if err := u.licenseRepo.Create(txCtx, lic); err != nil {
				return err
			}
			return u.checksumRepo.Create(txCtx, &entities.KeyChecksum{
				LicenseKey: key,
				Checksum:   checksum,
			})
		})
		if err == nil {
			issued = lic
			break
		}
		if !errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, err
		}
	}
	if issued == nil {
		return nil, domainerrors.InternalError(errors.New("license key generation kept colliding"))
	}

	logger.Info(ctx, "license issued",
		zap.String("license_key", issued.LicenseKey),
		zap.String("product", issued.ProductName),
	)
	return issued, nil
}

// GetLicense is the operator read of a license and its slots
func (u *LicenseUsecase) GetLicense(ctx context.Context, licenseKey string) (*entities.License, error) {
	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}
	return lic, nil
}

// ListLicenses pages through all licenses
func (u *LicenseUsecase) ListLicenses(ctx context.Context, params utils.PaginationParams) ([]*entities.License, utils.PaginationMeta, error) {
	licenses, total, err := u.licenseRepo.List(ctx, params)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return licenses, utils.CalculateMeta(total, params.Page, params.Limit), nil
}

// ProductInfo is the public, unauthenticated lookup. It exposes nothing a
// site could not already observe about its own license.
func (u *LicenseUsecase) ProductInfo(ctx context.Context, licenseKey string) (*entities.ProductInfoResponse, error) {
	lic, err := u.licenseRepo.GetByKey(ctx, licenseKey)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("license key not found")
		}
		return nil, err
	}

	now := u.nowFn()
	return &entities.ProductInfoResponse{
		ProductName: lic.ProductName,
		Status:      string(lic.Status),
		IsExpired:   lic.IsExpired(now),
		Expires:     lic.Expires,
		ServerTime:  now.UTC(),
	}, nil
}

// ExpirySweep labels lapsed licenses; the stored label is a cached report
// value, live expiry stays computed per request. Called by the external
// scheduler.
func (u *LicenseUsecase) ExpirySweep(ctx context.Context) (int64, error) {
	return u.licenseRepo.MarkExpiredStatuses(ctx, u.nowFn())
}

// PurgeAuthLog drops auth-trail rows older than the retention period
func (u *LicenseUsecase) PurgeAuthLog(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, domainerrors.BadRequest("retention must be positive")
	}
	return u.attemptRepo.PurgeBefore(ctx, u.nowFn().Add(-retention))
}
