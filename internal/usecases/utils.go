package usecases

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

func nullTimeFrom(t time.Time) null.Time {
	return null.TimeFrom(t)
}

// generateRandomHex returns n random hex characters
func generateRandomHex(n int) (string, error) {
	bytes := make([]byte, (n+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes)[:n], nil
}

// generateLicenseKey returns a key of the form LK-XXXX-XXXX-XXXX-XXXX-XXXX,
// 80 bits of entropy. Collisions are negligible but issuance still retries.
func generateLicenseKey() (string, error) {
	raw, err := generateRandomHex(20)
	if err != nil {
		return "", err
	}
	raw = strings.ToUpper(raw)

	groups := make([]string, 0, 5)
	for i := 0; i < len(raw); i += 4 {
		groups = append(groups, raw[i:i+4])
	}
	return "LK-" + strings.Join(groups, "-"), nil
}

// maskSecret keeps only the trailing four characters visible
func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
