package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"licensekit.backend/internal/config"
	"licensekit.backend/pkg/jwt"
)

// Mints an operator token for the admin endpoints using the configured
// OPERATOR_JWT_SECRET.
func main() {
	operator := flag.String("operator", "", "operator name to embed in the token")
	ttl := flag.Duration("ttl", 0, "token lifetime (default from config)")
	flag.Parse()

	if *operator == "" {
		log.Fatal("operator name is required (-operator)")
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := config.Load()

	lifetime := cfg.Operator.TokenTTL
	if *ttl > 0 {
		lifetime = *ttl
	}

	svc := jwt.NewService(cfg.Operator.JWTSecret, lifetime)
	token, err := svc.GenerateOperatorToken(*operator)
	if err != nil {
		log.Fatalf("failed to generate token: %v", err)
	}

	fmt.Printf("OPERATOR_TOKEN=%s\n", token)
	fmt.Printf("Expires: %s\n", time.Now().Add(lifetime).Format(time.RFC3339))
}
