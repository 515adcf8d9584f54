package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"licensekit.backend/internal/domain/entities"
	"licensekit.backend/pkg/utils"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context)
}

// Mock LicenseRepository
type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) Create(ctx context.Context, license *entities.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) GetByKey(ctx context.Context, licenseKey string) (*entities.License, error) {
	args := m.Called(ctx, licenseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.License), args.Error(1)
}

func (m *MockLicenseRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.License, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.License), args.Error(1)
}

func (m *MockLicenseRepository) Update(ctx context.Context, license *entities.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.LicenseStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLicenseRepository) SetActivations(ctx context.Context, id uuid.UUID, count int) error {
	args := m.Called(ctx, id, count)
	return args.Error(0)
}

func (m *MockLicenseRepository) SetTransferLimit(ctx context.Context, id uuid.UUID, limit int) error {
	args := m.Called(ctx, id, limit)
	return args.Error(0)
}

func (m *MockLicenseRepository) SetDomainLock(ctx context.Context, id uuid.UUID, locked bool) error {
	args := m.Called(ctx, id, locked)
	return args.Error(0)
}

func (m *MockLicenseRepository) MarkExpiredStatuses(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLicenseRepository) List(ctx context.Context, params utils.PaginationParams) ([]*entities.License, int64, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*entities.License), args.Get(1).(int64), args.Error(2)
}

// Mock ActivationRepository
type MockActivationRepository struct {
	mock.Mock
}

func (m *MockActivationRepository) Create(ctx context.Context, activation *entities.Activation) error {
	args := m.Called(ctx, activation)
	return args.Error(0)
}

func (m *MockActivationRepository) GetSlot(ctx context.Context, licenseID uuid.UUID, siteURL string) (*entities.Activation, error) {
	args := m.Called(ctx, licenseID, siteURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Activation), args.Error(1)
}

func (m *MockActivationRepository) GetBySiteURL(ctx context.Context, siteURL string) (*entities.Activation, error) {
	args := m.Called(ctx, siteURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Activation), args.Error(1)
}

func (m *MockActivationRepository) ListByLicense(ctx context.Context, licenseID uuid.UUID) ([]*entities.Activation, error) {
	args := m.Called(ctx, licenseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Activation), args.Error(1)
}

func (m *MockActivationRepository) CountByLicense(ctx context.Context, licenseID uuid.UUID) (int, error) {
	args := m.Called(ctx, licenseID)
	return args.Int(0), args.Error(1)
}

func (m *MockActivationRepository) Delete(ctx context.Context, licenseID uuid.UUID, siteURL string) error {
	args := m.Called(ctx, licenseID, siteURL)
	return args.Error(0)
}

func (m *MockActivationRepository) DeleteByLicense(ctx context.Context, licenseID uuid.UUID) error {
	args := m.Called(ctx, licenseID)
	return args.Error(0)
}

func (m *MockActivationRepository) TouchLastCheck(ctx context.Context, licenseID uuid.UUID, siteURL string, now time.Time) error {
	args := m.Called(ctx, licenseID, siteURL, now)
	return args.Error(0)
}

func (m *MockActivationRepository) RecordTransfer(ctx context.Context, licenseID uuid.UUID, siteURL string, now time.Time) error {
	args := m.Called(ctx, licenseID, siteURL, now)
	return args.Error(0)
}

func (m *MockActivationRepository) ResetTransferCount(ctx context.Context, licenseID uuid.UUID, siteURL string) error {
	args := m.Called(ctx, licenseID, siteURL)
	return args.Error(0)
}

// Mock KeyChecksumRepository
type MockKeyChecksumRepository struct {
	mock.Mock
}

func (m *MockKeyChecksumRepository) Create(ctx context.Context, checksum *entities.KeyChecksum) error {
	args := m.Called(ctx, checksum)
	return args.Error(0)
}

func (m *MockKeyChecksumRepository) GetByKey(ctx context.Context, licenseKey string) (*entities.KeyChecksum, error) {
	args := m.Called(ctx, licenseKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.KeyChecksum), args.Error(1)
}

// Mock AuthAttemptRepository
type MockAuthAttemptRepository struct {
	mock.Mock
}

func (m *MockAuthAttemptRepository) Append(ctx context.Context, attempt *entities.AuthAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAuthAttemptRepository) CountFailedSince(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	args := m.Called(ctx, ipAddress, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuthAttemptRepository) ClearFailedForIP(ctx context.Context, ipAddress string) error {
	args := m.Called(ctx, ipAddress)
	return args.Error(0)
}

func (m *MockAuthAttemptRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// Mock ApiCredentialRepository
type MockApiCredentialRepository struct {
	mock.Mock
}

func (m *MockApiCredentialRepository) Create(ctx context.Context, credential *entities.ApiCredential) error {
	args := m.Called(ctx, credential)
	return args.Error(0)
}

func (m *MockApiCredentialRepository) GetByHash(ctx context.Context, keyHash string) (*entities.ApiCredential, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiCredential), args.Error(1)
}

func (m *MockApiCredentialRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.ApiCredential, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiCredential), args.Error(1)
}

func (m *MockApiCredentialRepository) List(ctx context.Context) ([]*entities.ApiCredential, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiCredential), args.Error(1)
}

func (m *MockApiCredentialRepository) SetStatus(ctx context.Context, id uuid.UUID, status entities.ApiCredentialStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockApiCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockApiCredentialRepository) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyDeactivated(ctx context.Context, license *entities.License, siteURL, message string) error {
	args := m.Called(ctx, license, siteURL, message)
	return args.Error(0)
}
