// Package keystore holds plaintext secret values encrypted at rest,
// addressed solely by opaque references. Values never appear in metadata
// records or logs; the only way out is Get.
package keystore

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no secret exists under a reference.
var ErrNotFound = errors.New("keystore: secret not found")

// Store is the secret store contract consumed by the vault service.
type Store interface {
	// Save writes a new secret under ref.
	Save(ctx context.Context, value, ref string) error
	// Get returns the plaintext stored under ref, or ErrNotFound.
	Get(ctx context.Context, ref string) (string, error)
	// Update replaces the secret stored under ref, or returns ErrNotFound.
	Update(ctx context.Context, value, ref string) error
	// Delete removes the secret under ref. Deleting a missing ref is not
	// an error.
	Delete(ctx context.Context, ref string) error
	// ListRefs returns every reference currently stored.
	ListRefs(ctx context.Context) ([]string, error)
	// Exists reports whether a secret is stored under ref.
	Exists(ctx context.Context, ref string) (bool, error)
}
