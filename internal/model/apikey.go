package model

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is the metadata record for one stored credential. The secret value
// itself never lives here; it is held by the keystore under KeystoreRef.
type APIKey struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	KeystoreRef string    `json:"-"`
	PlatformID  uuid.UUID `json:"platform_id"`
	IsValid     bool      `json:"is_valid"`
	Note        *string   `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
