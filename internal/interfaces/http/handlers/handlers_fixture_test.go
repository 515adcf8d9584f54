package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"licensekit.backend/internal/domain/entities"
	infraRepos "licensekit.backend/internal/infrastructure/repositories"
	"licensekit.backend/internal/usecases"
)

const (
	testChecksumSecret = "test-checksum-secret"
	testWebhookSecret  = "test-webhook-secret"
)

// noticeRecorder satisfies the notifier contract and keeps notices out of the
// network during tests.
type noticeRecorder struct{}

func (n *noticeRecorder) NotifyDeactivated(ctx context.Context, license *entities.License, siteURL, message string) error {
	return nil
}

type handlerEnv struct {
	router         *gin.Engine
	licenseUsecase *usecases.LicenseUsecase
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	for _, ddl := range []string{
		`CREATE TABLE licenses (
			id TEXT PRIMARY KEY,
			license_key TEXT NOT NULL UNIQUE,
			product_name TEXT NOT NULL,
			customer_email TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			activation_limit INTEGER NOT NULL DEFAULT 1,
			activations INTEGER NOT NULL DEFAULT 0,
			expires DATETIME,
			transfer_limit INTEGER NOT NULL DEFAULT 1,
			domain_locked BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE key_checksums (
			id TEXT PRIMARY KEY,
			license_key TEXT NOT NULL UNIQUE,
			checksum TEXT NOT NULL,
			created_at DATETIME
		);`,
		`CREATE TABLE activations (
			id TEXT PRIMARY KEY,
			license_id TEXT NOT NULL,
			site_url TEXT NOT NULL,
			activated_at DATETIME NOT NULL,
			last_check DATETIME,
			transfer_count INTEGER NOT NULL DEFAULT 0,
			last_transfer_date DATETIME
		);`,
		`CREATE UNIQUE INDEX idx_activations_license_site ON activations(license_id, site_url);`,
		`CREATE UNIQUE INDEX idx_activations_site ON activations(site_url);`,
		`CREATE TABLE auth_attempts (
			id TEXT PRIMARY KEY,
			event_type TEXT NOT NULL,
			ip_address TEXT NOT NULL,
			user_agent TEXT,
			status TEXT NOT NULL,
			attempt_time DATETIME NOT NULL
		);`,
		`CREATE TABLE api_credentials (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			key_prefix TEXT NOT NULL,
			key_hash TEXT NOT NULL UNIQUE,
			secret_masked TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			usage_count INTEGER NOT NULL DEFAULT 0,
			last_used_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}

	licenseRepo := infraRepos.NewLicenseRepository(db)
	activationRepo := infraRepos.NewActivationRepository(db)
	checksumRepo := infraRepos.NewKeyChecksumRepository(db)
	attemptRepo := infraRepos.NewAuthAttemptRepository(db)
	credentialRepo := infraRepos.NewApiCredentialRepository(db)
	uow := infraRepos.NewUnitOfWork(db)
	notifier := &noticeRecorder{}

	activationUsecase := usecases.NewActivationUsecase(licenseRepo, activationRepo, checksumRepo, uow, notifier, testChecksumSecret)
	transferUsecase := usecases.NewTransferUsecase(licenseRepo, activationRepo, uow, notifier, 365*24*time.Hour)
	licenseUsecase := usecases.NewLicenseUsecase(licenseRepo, checksumRepo, attemptRepo, uow, 1, 1, testChecksumSecret)
	credentialUsecase := usecases.NewCredentialUsecase(credentialRepo, attemptRepo, 5, time.Hour)

	licenseHandler := NewLicenseHandler(activationUsecase, transferUsecase, licenseUsecase, testWebhookSecret)
	adminHandler := NewAdminHandler(licenseUsecase, transferUsecase, activationUsecase)
	credentialHandler := NewCredentialHandler(credentialUsecase)

	gin.SetMode(gin.TestMode)
	r := gin.New()

	licenses := r.Group("/api/v1/licenses")
	{
		licenses.POST("/validate", licenseHandler.Validate)
		licenses.POST("/deactivate", licenseHandler.Deactivate)
		licenses.POST("/recheck", licenseHandler.Recheck)
		licenses.POST("/revoke", licenseHandler.Revoke)
		licenses.POST("/deactivate-controlled", licenseHandler.DeactivateControlled)
		licenses.POST("/transfer", licenseHandler.TransferSlot)
	}
	r.GET("/api/v1/products/info", licenseHandler.ProductInfo)

	admin := r.Group("/api/v1/admin")
	{
		admin.POST("/licenses", adminHandler.IssueLicense)
		admin.GET("/licenses", adminHandler.ListLicenses)
		admin.GET("/licenses/:licenseKey", adminHandler.GetLicense)
		admin.POST("/licenses/deactivate", adminHandler.AdminDeactivate)
		admin.POST("/licenses/transfer", adminHandler.AdminTransfer)
		admin.POST("/licenses/reset-transfers", adminHandler.ResetTransfers)
		admin.POST("/licenses/domain-lock", adminHandler.ToggleDomainLock)
		admin.POST("/licenses/transfer-limit", adminHandler.EditTransferLimit)
		admin.POST("/licenses/expiry-sweep", adminHandler.ExpirySweep)
		admin.POST("/auth-log/purge", adminHandler.PurgeAuthLog)
		admin.POST("/credentials", credentialHandler.Create)
		admin.GET("/credentials", credentialHandler.List)
		admin.POST("/credentials/:id/enable", credentialHandler.Enable)
		admin.POST("/credentials/:id/disable", credentialHandler.Disable)
		admin.DELETE("/credentials/:id", credentialHandler.Delete)
	}

	return &handlerEnv{router: r, licenseUsecase: licenseUsecase}
}

func (e *handlerEnv) issueLicense(t *testing.T, input *entities.IssueLicenseInput) *entities.License {
	t.Helper()
	lic, err := e.licenseUsecase.IssueLicense(context.Background(), input)
	require.NoError(t, err)
	return lic
}

func (e *handlerEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
