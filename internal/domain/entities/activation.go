package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Activation is a slot binding one license to one site. A site consumes one
// unit of the license's activation limit while the row exists; rows are
// deleted outright on deactivate, never soft-deleted.
type Activation struct {
	ID               uuid.UUID `json:"id"`
	LicenseID        uuid.UUID `json:"licenseId"`
	SiteURL          string    `json:"siteUrl"`
	ActivatedAt      time.Time `json:"activatedAt"`
	LastCheck        null.Time `json:"lastCheck,omitempty"`
	TransferCount    int       `json:"transferCount"`
	LastTransferDate null.Time `json:"lastTransferDate,omitempty"`
}

// TransferEligible reports whether the slot may transfer under the given
// per-license limit and cooldown window. The counter is never reset by the
// passage of time; eligibility reopens once the window has elapsed since the
// last transfer, independent of the absolute count.
func (a *Activation) TransferEligible(limit int, window time.Duration, now time.Time) bool {
	if a.TransferCount < limit {
		return true
	}
	if !a.LastTransferDate.Valid {
		return true
	}
	return now.Sub(a.LastTransferDate.Time) >= window
}
