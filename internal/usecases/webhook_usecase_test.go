package usecases

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"licensekit.backend/internal/domain/entities"
	"licensekit.backend/pkg/crypto"
)

const testWebhookSecret = "webhook-secret"

func newWebhookFixture(t *testing.T, handler http.HandlerFunc) (*WebhookNotifier, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	n := NewWebhookNotifier(testWebhookSecret, "https://license.example.com", 2*time.Second)
	n.endpoint = func(string) string { return srv.URL }
	n.nowFn = func() time.Time { return time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC) }

	return n, srv
}

func TestWebhookNotifier_SignedPayload(t *testing.T) {
	var received DeactivationNotice
	var contentType string

	n, _ := newWebhookFixture(t, func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &received))
		w.WriteHeader(http.StatusOK)
	})

	license := &entities.License{LicenseKey: "LK-AAAA-BBBB-CCCC-DDDD-EEEE", ProductName: "LicenseKit Pro"}

	err := n.NotifyDeactivated(context.Background(), license, "example.com", "license transferred to another site")
	require.NoError(t, err)

	require.Equal(t, "application/json", contentType)
	require.Equal(t, "license_deactivated", received.Action)
	require.Equal(t, license.LicenseKey, received.LicenseKey)
	require.Equal(t, "example.com", received.SiteURL)
	require.Equal(t, "LicenseKit Pro", received.ProductName)
	require.Equal(t, "https://license.example.com", received.ServerURL)
	require.Equal(t, "license transferred to another site", received.Message)
	require.Equal(t, "2026-04-01T12:00:00Z", received.DeactivatedAt)
	require.Equal(t, received.DeactivatedAt, received.ServerTime)

	// Receiver re-derives the signature from the flat string, not the body.
	msg := crypto.DeactivationString(received.LicenseKey, received.SiteURL, received.Timestamp)
	require.True(t, crypto.VerifyHMACSHA256Hex(testWebhookSecret, msg, received.Signature))
}

func TestWebhookNotifier_RejectedBySite(t *testing.T) {
	n, _ := newWebhookFixture(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	license := &entities.License{LicenseKey: "LK-AAAA-BBBB-CCCC-DDDD-EEEE"}

	err := n.NotifyDeactivated(context.Background(), license, "example.com", "deactivated")
	require.Error(t, err)
	require.Contains(t, err.Error(), "403")
}

func TestWebhookNotifier_UnreachableSite(t *testing.T) {
	n, srv := newWebhookFixture(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	license := &entities.License{LicenseKey: "LK-AAAA-BBBB-CCCC-DDDD-EEEE"}

	err := n.NotifyDeactivated(context.Background(), license, "example.com", "deactivated")
	require.Error(t, err)
}

func TestWebhookNotifier_DefaultEndpoint(t *testing.T) {
	n := NewWebhookNotifier(testWebhookSecret, "https://license.example.com", time.Second)
	require.Equal(t, "https://example.com/wp-json/licensekit/v1/deactivated", n.endpoint("example.com"))
}
