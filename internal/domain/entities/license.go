package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// LicenseStatus represents the stored lifecycle status of a license
type LicenseStatus string

const (
	LicenseStatusActive   LicenseStatus = "active"
	LicenseStatusInactive LicenseStatus = "inactive"
	LicenseStatusExpired  LicenseStatus = "expired"
	LicenseStatusRevoked  LicenseStatus = "revoked"
)

// License represents a license key issued for a product. A revoked license is
// never deleted; revocation is a terminal status.
type License struct {
	ID              uuid.UUID     `json:"id"`
	LicenseKey      string        `json:"licenseKey"`
	ProductName     string        `json:"productName"`
	CustomerEmail   string        `json:"customerEmail"`
	Status          LicenseStatus `json:"status"`
	ActivationLimit int           `json:"activationLimit"`
	Activations     int           `json:"activations"`
	Expires         null.Time     `json:"expires,omitempty"`
	TransferLimit   int           `json:"transferLimit"`
	DomainLocked    bool          `json:"domainLocked"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// IsExpired reports whether the license is expired at the given instant.
// The stored "expired" status label is only a cached report value written by
// the sweep; this live computation is always authoritative.
func (l *License) IsExpired(now time.Time) bool {
	return l.Expires.Valid && l.Expires.Time.Before(now)
}

// CanUpdate reports whether the license is entitled to product updates.
// Updates are gated by expiry; usage is not.
func (l *License) CanUpdate(now time.Time) bool {
	return !l.IsExpired(now)
}

// KeyChecksum is the immutable keyed digest recorded at key generation.
// It detects tampering of externally visible keys.
type KeyChecksum struct {
	ID         uuid.UUID `json:"id"`
	LicenseKey string    `json:"licenseKey"`
	Checksum   string    `json:"checksum"`
	CreatedAt  time.Time `json:"createdAt"`
}

// IssueLicenseInput is the operator request to issue a new license
type IssueLicenseInput struct {
	ProductName     string     `json:"productName" binding:"required"`
	CustomerEmail   string     `json:"customerEmail" binding:"required,email"`
	ActivationLimit int        `json:"activationLimit"`
	TransferLimit   int        `json:"transferLimit"`
	Expires         *time.Time `json:"expires"`
}

// ValidateInput is the request body shared by validate/deactivate/recheck
type ValidateInput struct {
	LicenseKey string `json:"licenseKey" binding:"required"`
	SiteURL    string `json:"siteUrl" binding:"required"`
}

// ValidateResponse is returned by the validate operation
type ValidateResponse struct {
	Success          bool      `json:"success"`
	AlreadyActivated bool      `json:"alreadyActivated,omitempty"`
	IsExpired        bool      `json:"isExpired"`
	CanUpdate        bool      `json:"canUpdate"`
	Expires          null.Time `json:"expires,omitempty"`
	Message          string    `json:"message"`
}

// DeactivateResponse is returned by deactivate and revoke
type DeactivateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// RecheckResponse is returned by the recheck probe
type RecheckResponse struct {
	Success   bool `json:"success"`
	IsActive  bool `json:"isActive"`
	IsExpired bool `json:"isExpired"`
	CanUpdate bool `json:"canUpdate"`
}

// ProductInfoResponse is the public, unauthenticated product lookup
type ProductInfoResponse struct {
	ProductName string    `json:"productName"`
	Status      string    `json:"status"`
	IsExpired   bool      `json:"isExpired"`
	Expires     null.Time `json:"expires,omitempty"`
	ServerTime  time.Time `json:"serverTime"`
}

// TransferInput is the request body for a slot transfer
type TransferInput struct {
	LicenseKey string `json:"licenseKey" binding:"required"`
	OldDomain  string `json:"oldDomain" binding:"required"`
	NewDomain  string `json:"newDomain" binding:"required"`
}

// ControlledDeactivateInput is the signature-authenticated deactivation
// variant used by the external deactivation-with-transfer flow
type ControlledDeactivateInput struct {
	LicenseKey string `json:"licenseKey" binding:"required"`
	Domain     string `json:"domain" binding:"required"`
	Signature  string `json:"signature" binding:"required"`
}
