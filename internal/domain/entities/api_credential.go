package entities

import (
	"time"

	"github.com/google/uuid"
)

// ApiCredentialStatus is the operator-managed lifecycle state of a credential
type ApiCredentialStatus string

const (
	ApiCredentialActive   ApiCredentialStatus = "active"
	ApiCredentialDisabled ApiCredentialStatus = "disabled"
)

// ApiCredential authenticates inbound API callers. Only the SHA-256 hash of
// the opaque secret is stored; the secret itself is shown once at creation.
type ApiCredential struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	KeyPrefix    string              `json:"keyPrefix"`
	KeyHash      string              `json:"-"`
	SecretMasked string              `json:"secretMasked"`
	Status       ApiCredentialStatus `json:"status"`
	UsageCount   int64               `json:"usageCount"`
	LastUsedAt   *time.Time          `json:"lastUsedAt,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
	UpdatedAt    time.Time           `json:"updatedAt"`
}

// CreateCredentialInput is the operator request to mint a credential
type CreateCredentialInput struct {
	Name string `json:"name" binding:"required"`
}

// CreateCredentialResponse carries the one-time plaintext secret
type CreateCredentialResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Credential string    `json:"credential"`
	CreatedAt  time.Time `json:"createdAt"`
}
