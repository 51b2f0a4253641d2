package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/byok-vault-service/internal/model"
)

// PlatformStore defines operations on platform rows.
type PlatformStore interface {
	GetPlatformByID(ctx context.Context, id uuid.UUID) (*model.Platform, error)
	GetPlatformByName(ctx context.Context, name string) (*model.Platform, error)
	// GetOrCreatePlatform resolves a platform by exact name, creating it
	// with the supplied icon when absent.
	GetOrCreatePlatform(ctx context.Context, name, iconData string) (*model.Platform, error)
	ListPlatforms(ctx context.Context) ([]*model.PlatformSummary, error)
	DeletePlatform(ctx context.Context, id uuid.UUID) error
	// DeleteEmptyCustomPlatforms removes platforms that have no keys and
	// are not in the protected name list. Returns the number removed.
	DeleteEmptyCustomPlatforms(ctx context.Context, protected []string) (int64, error)
	CountKeysForPlatform(ctx context.Context, platformID uuid.UUID) (int, error)
}

// APIKeyStore defines operations on API key metadata records.
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, key *model.APIKey) error
	GetAPIKeyByID(ctx context.Context, id uuid.UUID) (*model.APIKey, error)
	GetAPIKeyByKeystoreRef(ctx context.Context, ref string) (*model.APIKey, error)
	ListAPIKeys(ctx context.Context, platformID *uuid.UUID, page, perPage int) ([]*model.APIKey, int, error)
	UpdateAPIKey(ctx context.Context, id uuid.UUID, updates APIKeyUpdates) error
	DeleteAPIKey(ctx context.Context, id uuid.UUID) error
}

// Store combines both PlatformStore and APIKeyStore.
type Store interface {
	PlatformStore
	APIKeyStore
}

// APIKeyUpdates describes a partial metadata update. Nil fields are left
// untouched; a non-nil empty Note clears the note.
type APIKeyUpdates struct {
	Name       *string
	PlatformID *uuid.UUID
	IsValid    *bool
	Note       *string
}
