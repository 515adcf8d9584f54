package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log"

	"licensekit.backend/pkg/crypto"
)

// Generates an API credential offline: prints the plaintext once and the
// SHA-256 hash to seed the api_credentials table with.
func main() {
	prefix := flag.String("prefix", "lk_live_", "credential prefix")
	hexLen := flag.Int("hex-len", 48, "random hex length (must be even)")
	flag.Parse()

	if *hexLen <= 0 || *hexLen%2 != 0 {
		log.Fatalf("invalid hex-len: %d (must be positive and even)", *hexLen)
	}

	raw, err := generateRandomHex(*hexLen)
	if err != nil {
		log.Fatalf("failed to generate credential: %v", err)
	}

	credential := *prefix + raw

	fmt.Println("Generated API credential")
	fmt.Printf("CREDENTIAL=%s\n", credential)
	fmt.Printf("KEY_HASH=%s\n", crypto.SHA256Hex([]byte(credential)))
}

func generateRandomHex(n int) (string, error) {
	b := make([]byte, n/2)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
