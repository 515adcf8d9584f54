package middleware

import (
	"context"
	"fmt"
	"net/http"
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

func newGatekeeper(t *testing.T) (*usecases.CredentialUsecase, string) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")

	require.NoError(t, db.Exec(`CREATE TABLE api_credentials (
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
	);`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE auth_attempts (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		ip_address TEXT NOT NULL,
		user_agent TEXT,
		status TEXT NOT NULL,
		attempt_time DATETIME NOT NULL
	);`).Error)

	gatekeeper := usecases.NewCredentialUsecase(
		infraRepos.NewApiCredentialRepository(db),
		infraRepos.NewAuthAttemptRepository(db),
		5,
		time.Hour,
	)

	created, err := gatekeeper.CreateCredential(context.Background(), &entities.CreateCredentialInput{Name: "test-client"})
	require.NoError(t, err)

	return gatekeeper, created.Credential
}

func newAuthTestRouter(gatekeeper *usecases.CredentialUsecase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CredentialAuthMiddleware(gatekeeper))
	r.POST("/validate", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestCredentialAuthMiddleware_HeaderAndBearer(t *testing.T) {
	gatekeeper, credential := newGatekeeper(t)
	r := newAuthTestRouter(gatekeeper)

	t.Run("credential header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set(CredentialHeader, credential)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("bearer fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set(AuthorizationHeader, BearerPrefix+credential)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("credential header wins over bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set(CredentialHeader, credential)
		req.Header.Set(AuthorizationHeader, BearerPrefix+"garbage")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestCredentialAuthMiddleware_Rejections(t *testing.T) {
	gatekeeper, _ := newGatekeeper(t)
	r := newAuthTestRouter(gatekeeper)

	t.Run("missing credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
		require.Contains(t, w.Body.String(), "UNAUTHORIZED")
	})

	t.Run("unknown credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set(CredentialHeader, "lk_live_unknown")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestCredentialAuthMiddleware_BlocksAfterRepeatedFailures(t *testing.T) {
	gatekeeper, credential := newGatekeeper(t)
	r := newAuthTestRouter(gatekeeper)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/validate", nil)
		req.Header.Set(CredentialHeader, "lk_live_wrong")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusUnauthorized, w.Code)
	}

	// Over the threshold the valid credential is rejected too; the block is
	// on the IP, not the credential.
	req := httptest.NewRequest(http.MethodPost, "/validate", nil)
	req.Header.Set(CredentialHeader, credential)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "BLOCKED")
}
