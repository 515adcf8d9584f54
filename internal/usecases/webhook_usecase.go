package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"licensekit.backend/internal/domain/entities"
	"licensekit.backend/pkg/crypto"
	"licensekit.backend/pkg/logger"
	"licensekit.backend/pkg/metrics"
)

// Notifier delivers best-effort deactivation notices to client sites
type Notifier interface {
	NotifyDeactivated(ctx context.Context, license *entities.License, siteURL, message string) error
}

// DeactivationNotice is the payload POSTed to the previously bound site.
// The signature covers the flat string "license_key|site_url|timestamp", not
// the JSON body, so the receiver re-derives it from three fields without
// agreeing on a byte-exact serialization.
type DeactivationNotice struct {
	Action        string `json:"action"`
	LicenseKey    string `json:"license_key"`
	SiteURL       string `json:"site_url"`
	DeactivatedAt string `json:"deactivated_at"`
	ProductName   string `json:"product_name"`
	ServerURL     string `json:"server_url"`
	ServerTime    string `json:"server_time"`
	Message       string `json:"message"`
	Timestamp     string `json:"timestamp"`
	Signature     string `json:"signature"`
}

// WebhookNotifier posts signed deactivation notices. Delivery is a single
// attempt with a hard timeout; failure is logged and counted but never
// retried, queued, or surfaced to the caller whose deactivation triggered it.
type WebhookNotifier struct {
	client    *http.Client
	secret    string
	serverURL string
	endpoint  func(siteURL string) string
	nowFn     func() time.Time
}

// NewWebhookNotifier creates a notifier with the given shared secret and
// delivery timeout
func NewWebhookNotifier(secret, serverURL string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		client:    &http.Client{Timeout: timeout},
		secret:    secret,
		serverURL: serverURL,
		endpoint: func(siteURL string) string {
			return "https://" + siteURL + "/wp-json/licensekit/v1/deactivated"
		},
		nowFn: time.Now,
	}
}

// NotifyDeactivated posts the signed notice to the site's well-known path
func (n *WebhookNotifier) NotifyDeactivated(ctx context.Context, license *entities.License, siteURL, message string) error {
	now := n.nowFn().UTC()
	ts := strconv.FormatInt(now.Unix(), 10)

	notice := DeactivationNotice{
		Action:        "license_deactivated",
		LicenseKey:    license.LicenseKey,
		SiteURL:       siteURL,
		DeactivatedAt: now.Format(time.RFC3339),
		ProductName:   license.ProductName,
		ServerURL:     n.serverURL,
		ServerTime:    now.Format(time.RFC3339),
		Message:       message,
		Timestamp:     ts,
		Signature:     crypto.HMACSHA256Hex(n.secret, crypto.DeactivationString(license.LicenseKey, siteURL, ts)),
	}

	body, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint(siteURL), bytes.NewReader(body))
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		logger.Warn(ctx, "deactivation webhook delivery failed",
			zap.String("site_url", siteURL),
			zap.Error(err),
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		metrics.WebhookDeliveries.WithLabelValues("rejected").Inc()
		logger.Warn(ctx, "deactivation webhook rejected by site",
			zap.String("site_url", siteURL),
			zap.Int("status", resp.StatusCode),
		)
		return fmt.Errorf("webhook rejected with status %d", resp.StatusCode)
	}

	metrics.WebhookDeliveries.WithLabelValues("delivered").Inc()
	logger.Info(ctx, "deactivation webhook delivered", zap.String("site_url", siteURL))
	return nil
}
