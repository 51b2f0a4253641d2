package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/byok-vault-service/internal/keystore"
	"github.com/byok-vault-service/internal/metrics"
	"github.com/byok-vault-service/internal/model"
	"github.com/byok-vault-service/internal/provider"
	"github.com/byok-vault-service/internal/store"
)

// VaultService orchestrates the key lifecycle: duplicate check, optional
// live validation, and persistence. Within one save flow the stages run
// strictly sequentially; each stage's outcome gates the next.
type VaultService struct {
	store      store.Store
	secrets    keystore.Store
	validators provider.Dispatcher
	duplicates *DuplicateChecker
}

// NewVaultService creates the orchestrator over its collaborators.
func NewVaultService(st store.Store, secrets keystore.Store, validators provider.Dispatcher) *VaultService {
	return &VaultService{
		store:      st,
		secrets:    secrets,
		validators: validators,
		duplicates: NewDuplicateChecker(secrets, st),
	}
}

// CreateKeyInput contains the parameters for storing a new key.
type CreateKeyInput struct {
	Name     string
	Value    string
	Platform string
	Note     string
	IconData string
	// AllowInvalid skips live validation and stores the key with
	// is_valid=false. Clients set it when re-submitting after being shown
	// a failed validation outcome.
	AllowInvalid bool
}

// CreateKeyResult is the terminal outcome of a create attempt. When Saved is
// false the key was not persisted and Outcome explains why the client should
// re-confirm.
type CreateKeyResult struct {
	Key      *model.APIKey
	Platform *model.Platform
	Outcome  *provider.Outcome
	Saved    bool
}

// CreateKey runs the full save flow for a new key: blank-field rejection,
// duplicate scan, live validation when the platform supports it, then
// persistence with the secret written before the metadata record.
func (s *VaultService) CreateKey(ctx context.Context, input CreateKeyInput) (*CreateKeyResult, error) {
	name := strings.TrimSpace(input.Name)
	platformName := strings.TrimSpace(input.Platform)
	if err := validateKeyFields(name, input.Value, platformName); err != nil {
		return nil, err
	}

	dup, err := s.duplicates.Check(ctx, input.Value, "")
	if err != nil {
		return nil, asServiceError(err)
	}
	if dup.Duplicate {
		metrics.DuplicateChecks.WithLabelValues("duplicate").Inc()
		return nil, NewConflict("duplicate_key",
			"Этот ключ уже добавлен: \""+dup.Key.Name+"\" ("+dup.PlatformName+")")
	}
	metrics.DuplicateChecks.WithLabelValues("clear").Inc()

	isValid := false
	var outcome *provider.Outcome
	if !input.AllowInvalid && s.validators.Supports(platformName) {
		result := s.validators.Validate(ctx, platformName, input.Value)
		metrics.ValidationOutcomes.WithLabelValues(platformName, result.Status.String()).Inc()
		outcome = &result

		if result.Status != provider.StatusValid {
			// Advisory, not fatal: the key's real validity is unknown
			// (or disproven) but the user decides whether to store it.
			// Nothing is persisted until they re-submit with
			// AllowInvalid set.
			return &CreateKeyResult{Outcome: outcome, Saved: false}, nil
		}
		isValid = true
	}

	// The secret write must succeed before the metadata record exists, so
	// a failure never leaves metadata pointing at a missing secret.
	ref := uuid.NewString()
	if err := s.secrets.Save(ctx, input.Value, ref); err != nil {
		log.Error().Err(err).Msg("failed to save secret")
		return nil, NewInternal("storage_error", "Не удалось сохранить ключ в Keystore")
	}

	platform, err := s.store.GetOrCreatePlatform(ctx, platformName, input.IconData)
	if err != nil {
		log.Error().Err(err).Str("platform", platformName).Msg("failed to resolve platform; secret left orphaned")
		return nil, NewInternal("internal_error", "Ошибка создания ключа")
	}

	key := &model.APIKey{
		Name:        name,
		KeystoreRef: ref,
		PlatformID:  platform.ID,
		IsValid:     isValid,
		Note:        optionalNote(input.Note),
	}
	if err := s.store.CreateAPIKey(ctx, key); err != nil {
		log.Error().Err(err).Msg("failed to create key record; secret left orphaned")
		return nil, NewInternal("internal_error", "Ошибка создания ключа")
	}

	return &CreateKeyResult{Key: key, Platform: platform, Outcome: outcome, Saved: true}, nil
}

// UpdateKeyInput contains the parameters for editing an existing key.
type UpdateKeyInput struct {
	Name     string
	Value    string
	Platform string
	Note     string
	IconData string
}

// UpdateKey edits an existing key. The stored value is compared against the
// submitted one: unchanged values leave is_valid alone, a changed value is
// rewritten in place and resets is_valid until the user re-validates.
// Editing performs no duplicate scan.
func (s *VaultService) UpdateKey(ctx context.Context, id uuid.UUID, input UpdateKeyInput) (*model.APIKey, error) {
	name := strings.TrimSpace(input.Name)
	platformName := strings.TrimSpace(input.Platform)
	if err := validateKeyFields(name, input.Value, platformName); err != nil {
		return nil, err
	}

	key, err := s.store.GetAPIKeyByID(ctx, id)
	if err != nil {
		return nil, NewNotFound("not_found", "Ключ не найден")
	}
	previousPlatformID := key.PlatformID

	// An unreadable stored value compares as empty, so the submitted
	// value registers as changed and gets written through.
	current, err := s.secrets.Get(ctx, key.KeystoreRef)
	if err != nil {
		current = ""
	}

	platform, err := s.store.GetOrCreatePlatform(ctx, platformName, input.IconData)
	if err != nil {
		log.Error().Err(err).Str("platform", platformName).Msg("failed to resolve platform")
		return nil, NewInternal("internal_error", "Ошибка обновления ключа")
	}

	note := strings.TrimSpace(input.Note)
	updates := store.APIKeyUpdates{
		Name:       &name,
		PlatformID: &platform.ID,
		Note:       &note,
	}

	if current != input.Value {
		if err := s.updateSecret(ctx, input.Value, key.KeystoreRef); err != nil {
			log.Error().Err(err).Msg("failed to update secret")
			return nil, NewInternal("storage_error", "Не удалось обновить ключ в Keystore")
		}
		invalid := false
		updates.IsValid = &invalid
	}

	if err := s.store.UpdateAPIKey(ctx, id, updates); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, NewNotFound("not_found", "Ключ не найден")
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to update key record")
		return nil, NewInternal("internal_error", "Ошибка обновления ключа")
	}

	if platform.ID != previousPlatformID {
		s.cleanupEmptyCustomPlatforms(ctx)
	}

	updated, err := s.store.GetAPIKeyByID(ctx, id)
	if err != nil {
		return nil, NewNotFound("not_found", "Ключ не найден")
	}
	return updated, nil
}

// updateSecret rewrites the secret in place. A missing entry (orphaned
// metadata) is repaired by writing a fresh one under the same reference.
func (s *VaultService) updateSecret(ctx context.Context, value, ref string) error {
	err := s.secrets.Update(ctx, value, ref)
	if errors.Is(err, keystore.ErrNotFound) {
		return s.secrets.Save(ctx, value, ref)
	}
	return err
}

// DeleteKey removes the secret and the metadata record. When it was the
// platform's last key and the platform is not a default one, the platform
// row goes too; the key count is read before the deletion so the cascade
// decision comes from a consistent snapshot.
func (s *VaultService) DeleteKey(ctx context.Context, id uuid.UUID) error {
	key, err := s.store.GetAPIKeyByID(ctx, id)
	if err != nil {
		return NewNotFound("not_found", "Ключ не найден")
	}

	platform, err := s.store.GetPlatformByID(ctx, key.PlatformID)
	if err != nil {
		log.Error().Err(err).Str("id", id.String()).Msg("failed to resolve platform for key deletion")
		platform = nil
	}

	keyCount, err := s.store.CountKeysForPlatform(ctx, key.PlatformID)
	if err != nil {
		log.Error().Err(err).Msg("failed to count platform keys")
		return NewInternal("internal_error", "Ошибка удаления ключа")
	}
	isLastKey := keyCount == 1

	if err := s.secrets.Delete(ctx, key.KeystoreRef); err != nil {
		log.Error().Err(err).Msg("failed to delete secret")
		return NewInternal("storage_error", "Не удалось удалить ключ из Keystore")
	}

	if err := s.store.DeleteAPIKey(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return NewNotFound("not_found", "Ключ не найден")
		}
		log.Error().Err(err).Str("id", id.String()).Msg("failed to delete key record")
		return NewInternal("internal_error", "Ошибка удаления ключа")
	}

	if isLastKey && platform != nil && !platform.IsDefault() {
		if err := s.store.DeletePlatform(ctx, platform.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("platform", platform.Name).Msg("failed to remove empty platform")
		}
	}

	return nil
}

// Reveal returns the plaintext secret for a stored key.
func (s *VaultService) Reveal(ctx context.Context, id uuid.UUID) (string, error) {
	key, err := s.store.GetAPIKeyByID(ctx, id)
	if err != nil {
		return "", NewNotFound("not_found", "Ключ не найден")
	}

	value, err := s.secrets.Get(ctx, key.KeystoreRef)
	if err != nil {
		if errors.Is(err, keystore.ErrNotFound) {
			return "", NewNotFound("not_found", "Ключ не найден в хранилище")
		}
		log.Error().Err(err).Msg("failed to read secret")
		return "", NewInternal("storage_error", "Не удалось прочитать ключ")
	}
	return value, nil
}

// ValidateKey runs a standalone validation without touching storage.
func (s *VaultService) ValidateKey(ctx context.Context, platformName, value string) provider.Outcome {
	outcome := s.validators.Validate(ctx, platformName, value)
	metrics.ValidationOutcomes.WithLabelValues(platformName, outcome.Status.String()).Inc()
	return outcome
}

// SupportsValidation reports whether the platform has a validator.
func (s *VaultService) SupportsValidation(platformName string) bool {
	return s.validators.Supports(platformName)
}

// SupportedPlatforms lists the platforms with validators.
func (s *VaultService) SupportedPlatforms() []string {
	return s.validators.Platforms()
}

// CheckDuplicate runs a standalone duplicate scan.
func (s *VaultService) CheckDuplicate(ctx context.Context, value, excludeRef string) (DuplicateCheckResult, error) {
	result, err := s.duplicates.Check(ctx, value, excludeRef)
	if err != nil {
		return DuplicateCheckResult{}, asServiceError(err)
	}
	return result, nil
}

func (s *VaultService) cleanupEmptyCustomPlatforms(ctx context.Context) {
	removed, err := s.store.DeleteEmptyCustomPlatforms(ctx, model.DefaultPlatforms)
	if err != nil {
		log.Error().Err(err).Msg("failed to clean up empty platforms")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("removed empty custom platforms")
	}
}

func validateKeyFields(name, value, platformName string) error {
	if name == "" {
		return NewBadRequest("invalid_request", "Введите название ключа")
	}
	if strings.TrimSpace(value) == "" {
		return NewBadRequest("invalid_request", "Введите значение ключа")
	}
	if platformName == "" {
		return NewBadRequest("invalid_request", "Выберите или введите название платформы")
	}
	return nil
}

func optionalNote(note string) *string {
	trimmed := strings.TrimSpace(note)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// asServiceError passes typed domain errors through and wraps anything else
// so callers never see a raw storage or context error.
func asServiceError(err error) error {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return NewInternal("internal_error", "An unexpected error occurred")
}
