package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/byok-vault-service/internal/keystore"
	"github.com/byok-vault-service/internal/model"
	"github.com/byok-vault-service/internal/store"
)

// DuplicateCheckResult reports whether a candidate secret value is already
// stored, and under which record.
type DuplicateCheckResult struct {
	Duplicate    bool
	Key          *model.APIKey
	PlatformName string
}

// DuplicateChecker scans the secret store for an existing entry equal to a
// candidate value. The store has no index by value (that would require
// plaintext outside the keystore or equality-preserving encryption), so the
// check is a linear decrypt-and-compare over every stored reference, which
// is acceptable for the tens of keys one user holds.
type DuplicateChecker struct {
	secrets keystore.Store
	store   store.Store
}

func NewDuplicateChecker(secrets keystore.Store, st store.Store) *DuplicateChecker {
	return &DuplicateChecker{secrets: secrets, store: st}
}

// Check scans every stored secret for an exact match with candidate.
// excludeRef, when non-empty, is skipped so an edited key is not flagged
// against itself. A reference whose value cannot be read is skipped rather
// than failing the scan; one corrupt entry must not block the rest.
func (c *DuplicateChecker) Check(ctx context.Context, candidate, excludeRef string) (DuplicateCheckResult, error) {
	refs, err := c.secrets.ListRefs(ctx)
	if err != nil {
		return DuplicateCheckResult{}, NewInternal("storage_error", "Не удалось прочитать хранилище ключей")
	}

	for _, ref := range refs {
		if ref == excludeRef {
			continue
		}

		stored, err := c.secrets.Get(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				return DuplicateCheckResult{}, ctx.Err()
			}
			log.Warn().Str("ref", ref).Msg("skipping unreadable secret during duplicate scan")
			continue
		}

		if stored != candidate {
			continue
		}

		// A match against an orphaned secret (no metadata record) does
		// not identify a duplicate the user can act on; keep scanning.
		existing, err := c.store.GetAPIKeyByKeystoreRef(ctx, ref)
		if err != nil {
			continue
		}

		platformName := "Неизвестно"
		if platform, err := c.store.GetPlatformByID(ctx, existing.PlatformID); err == nil {
			platformName = platform.Name
		}

		return DuplicateCheckResult{Duplicate: true, Key: existing, PlatformName: platformName}, nil
	}

	return DuplicateCheckResult{}, nil
}
