package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// HMACSHA256Hex signs msg with secret and returns the hex digest
func HMACSHA256Hex(secret, msg string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(msg))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyHMACSHA256Hex checks a hex signature in constant time
func VerifyHMACSHA256Hex(secret, msg, signature string) bool {
	expected := HMACSHA256Hex(secret, msg)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// DeactivationString is the flat deterministic string signed on outbound
// deactivation webhooks. A flat string avoids the serialization drift a
// signed JSON blob is prone to; signer and verifier only need to agree on
// three fields and a separator.
func DeactivationString(licenseKey, siteURL, timestamp string) string {
	return licenseKey + "|" + siteURL + "|" + timestamp
}

// ControlledDeactivationString is the string signed by the external
// deactivation-with-transfer flow
func ControlledDeactivationString(licenseKey, domain string) string {
	return licenseKey + "|" + domain
}

// KeyChecksum computes the keyed digest recorded at key generation. Keyed
// BLAKE2b rather than a bare hash so a tampered key cannot be re-checksummed
// without the server secret.
func KeyChecksum(secret, licenseKey string) (string, error) {
	key := []byte(secret)
	if len(key) > blake2b.Size {
		sum := sha256.Sum256(key)
		key = sum[:]
	}
	h, err := blake2b.New256(key)
	if err != nil {
		return "", err
	}
	h.Write([]byte(licenseKey))
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyKeyChecksum checks a stored checksum in constant time
func VerifyKeyChecksum(secret, licenseKey, checksum string) bool {
	expected, err := KeyChecksum(secret, licenseKey)
	if err != nil {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(checksum))
}

// SHA256Hex returns the hex SHA-256 of data; used for credential hashing
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
