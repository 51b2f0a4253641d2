package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/byok-vault-service/internal/keystore"
	"github.com/byok-vault-service/internal/model"
	"github.com/byok-vault-service/internal/provider"
	"github.com/byok-vault-service/internal/store"
)

// --- fakes ---

type fakeKeystore struct {
	refs      []string
	values    map[string]string
	saveErr   error
	getErr    map[string]error
	updateErr error
	deleteErr error
	listErr   error
	updated   []string
	deleted   []string
}

func newFakeKeystore() *fakeKeystore {
	return &fakeKeystore{values: map[string]string{}, getErr: map[string]error{}}
}

func (f *fakeKeystore) put(ref, value string) {
	f.refs = append(f.refs, ref)
	f.values[ref] = value
}

func (f *fakeKeystore) Save(ctx context.Context, value, ref string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.put(ref, value)
	return nil
}

func (f *fakeKeystore) Get(ctx context.Context, ref string) (string, error) {
	if err := f.getErr[ref]; err != nil {
		return "", err
	}
	value, ok := f.values[ref]
	if !ok {
		return "", keystore.ErrNotFound
	}
	return value, nil
}

func (f *fakeKeystore) Update(ctx context.Context, value, ref string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.values[ref]; !ok {
		return keystore.ErrNotFound
	}
	f.values[ref] = value
	f.updated = append(f.updated, ref)
	return nil
}

func (f *fakeKeystore) Delete(ctx context.Context, ref string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.values, ref)
	for i, r := range f.refs {
		if r == ref {
			f.refs = append(f.refs[:i], f.refs[i+1:]...)
			break
		}
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

func (f *fakeKeystore) ListRefs(ctx context.Context) ([]string, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	refs := make([]string, len(f.refs))
	copy(refs, f.refs)
	return refs, nil
}

func (f *fakeKeystore) Exists(ctx context.Context, ref string) (bool, error) {
	_, ok := f.values[ref]
	return ok, nil
}

type fakeStore struct {
	platforms        map[uuid.UUID]*model.Platform
	keys             map[uuid.UUID]*model.APIKey
	createErr        error
	platformErr      error
	deletedPlatforms []uuid.UUID
	cleanupCalls     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		platforms: map[uuid.UUID]*model.Platform{},
		keys:      map[uuid.UUID]*model.APIKey{},
	}
}

func (f *fakeStore) addPlatform(name string) *model.Platform {
	p := &model.Platform{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	f.platforms[p.ID] = p
	return p
}

func (f *fakeStore) addKey(name, ref string, platformID uuid.UUID, isValid bool) *model.APIKey {
	key := &model.APIKey{
		ID:          uuid.New(),
		Name:        name,
		KeystoreRef: ref,
		PlatformID:  platformID,
		IsValid:     isValid,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.keys[key.ID] = key
	return key
}

func (f *fakeStore) GetPlatformByID(ctx context.Context, id uuid.UUID) (*model.Platform, error) {
	p, ok := f.platforms[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetPlatformByName(ctx context.Context, name string) (*model.Platform, error) {
	for _, p := range f.platforms {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) GetOrCreatePlatform(ctx context.Context, name, iconData string) (*model.Platform, error) {
	if f.platformErr != nil {
		return nil, f.platformErr
	}
	if p, err := f.GetPlatformByName(ctx, name); err == nil {
		return p, nil
	}
	p := f.addPlatform(name)
	p.IconData = iconData
	return p, nil
}

func (f *fakeStore) ListPlatforms(ctx context.Context) ([]*model.PlatformSummary, error) {
	var out []*model.PlatformSummary
	for _, p := range f.platforms {
		count, _ := f.CountKeysForPlatform(ctx, p.ID)
		out = append(out, &model.PlatformSummary{Platform: *p, KeyCount: count})
	}
	return out, nil
}

func (f *fakeStore) DeletePlatform(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.platforms[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.platforms, id)
	f.deletedPlatforms = append(f.deletedPlatforms, id)
	return nil
}

func (f *fakeStore) DeleteEmptyCustomPlatforms(ctx context.Context, protected []string) (int64, error) {
	f.cleanupCalls++
	var removed int64
	for id, p := range f.platforms {
		count, _ := f.CountKeysForPlatform(ctx, id)
		if count == 0 && !containsName(protected, p.Name) {
			delete(f.platforms, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeStore) CountKeysForPlatform(ctx context.Context, platformID uuid.UUID) (int, error) {
	count := 0
	for _, key := range f.keys {
		if key.PlatformID == platformID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	if f.createErr != nil {
		return f.createErr
	}
	key.ID = uuid.New()
	key.CreatedAt = time.Now()
	key.UpdatedAt = time.Now()
	f.keys[key.ID] = key
	return nil
}

func (f *fakeStore) GetAPIKeyByID(ctx context.Context, id uuid.UUID) (*model.APIKey, error) {
	key, ok := f.keys[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *key
	return &copied, nil
}

func (f *fakeStore) GetAPIKeyByKeystoreRef(ctx context.Context, ref string) (*model.APIKey, error) {
	for _, key := range f.keys {
		if key.KeystoreRef == ref {
			copied := *key
			return &copied, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListAPIKeys(ctx context.Context, platformID *uuid.UUID, page, perPage int) ([]*model.APIKey, int, error) {
	var out []*model.APIKey
	for _, key := range f.keys {
		if platformID == nil || key.PlatformID == *platformID {
			out = append(out, key)
		}
	}
	return out, len(out), nil
}

func (f *fakeStore) UpdateAPIKey(ctx context.Context, id uuid.UUID, updates store.APIKeyUpdates) error {
	key, ok := f.keys[id]
	if !ok {
		return store.ErrNotFound
	}
	if updates.Name != nil {
		key.Name = *updates.Name
	}
	if updates.PlatformID != nil {
		key.PlatformID = *updates.PlatformID
	}
	if updates.IsValid != nil {
		key.IsValid = *updates.IsValid
	}
	if updates.Note != nil {
		if *updates.Note == "" {
			key.Note = nil
		} else {
			note := *updates.Note
			key.Note = &note
		}
	}
	key.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) DeleteAPIKey(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.keys[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.keys, id)
	return nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

type fakeDispatcher struct {
	supported map[string]bool
	outcome   provider.Outcome
	calls     int
}

func (f *fakeDispatcher) Supports(platform string) bool { return f.supported[platform] }

func (f *fakeDispatcher) Validate(ctx context.Context, platform, secret string) provider.Outcome {
	f.calls++
	if !f.supported[platform] {
		return provider.ServerError("Платформа не поддерживает валидацию")
	}
	return f.outcome
}

func (f *fakeDispatcher) Platforms() []string {
	var out []string
	for name := range f.supported {
		out = append(out, name)
	}
	return out
}

func newVault(secrets *fakeKeystore, st *fakeStore, dispatcher *fakeDispatcher) *VaultService {
	return NewVaultService(st, secrets, dispatcher)
}

func requireServiceError(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *service.Error, got %v", err)
	}
	if svcErr.Kind != kind {
		t.Fatalf("error kind = %v, want %v", svcErr.Kind, kind)
	}
	return svcErr
}

// --- CreateKey ---

func TestCreateKeyRejectsBlankFields(t *testing.T) {
	vault := newVault(newFakeKeystore(), newFakeStore(), &fakeDispatcher{})

	cases := []struct {
		name    string
		input   CreateKeyInput
		wantMsg string
	}{
		{"blank name", CreateKeyInput{Name: "  ", Value: "sk-1", Platform: "OpenAI"}, "Введите название ключа"},
		{"blank value", CreateKeyInput{Name: "Work", Value: "   ", Platform: "OpenAI"}, "Введите значение ключа"},
		{"blank platform", CreateKeyInput{Name: "Work", Value: "sk-1", Platform: ""}, "Выберите или введите название платформы"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := vault.CreateKey(context.Background(), tc.input)
			svcErr := requireServiceError(t, err, ErrBadRequest)
			if svcErr.Message != tc.wantMsg {
				t.Fatalf("message = %q, want %q", svcErr.Message, tc.wantMsg)
			}
		})
	}
}

func TestCreateKeyBlocksDuplicates(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	dispatcher := &fakeDispatcher{supported: map[string]bool{"OpenAI": true}, outcome: provider.Valid()}
	vault := newVault(secrets, st, dispatcher)

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-existing")
	st.addKey("Work key", "ref-1", platform.ID, true)

	_, err := vault.CreateKey(context.Background(), CreateKeyInput{
		Name:     "Another",
		Value:    "sk-existing",
		Platform: "OpenAI",
	})
	svcErr := requireServiceError(t, err, ErrConflict)
	if !strings.Contains(svcErr.Message, "Этот ключ уже добавлен") {
		t.Fatalf("unexpected message: %q", svcErr.Message)
	}
	if !strings.Contains(svcErr.Message, `"Work key"`) || !strings.Contains(svcErr.Message, "(OpenAI)") {
		t.Fatalf("expected existing key name and platform in message, got %q", svcErr.Message)
	}

	// The duplicate must short-circuit before any validation network call.
	if dispatcher.calls != 0 {
		t.Fatalf("expected no validation call, got %d", dispatcher.calls)
	}
	if len(st.keys) != 1 {
		t.Fatalf("expected no new record, have %d keys", len(st.keys))
	}
}

func TestCreateKeyFailedValidationIsNotPersisted(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	dispatcher := &fakeDispatcher{
		supported: map[string]bool{"OpenAI": true},
		outcome:   provider.Invalid("Неверный API ключ"),
	}
	vault := newVault(secrets, st, dispatcher)

	result, err := vault.CreateKey(context.Background(), CreateKeyInput{
		Name:     "Work",
		Value:    "sk-bad",
		Platform: "OpenAI",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Saved {
		t.Fatal("expected key not to be saved")
	}
	if result.Outcome == nil || result.Outcome.Status != provider.StatusInvalid {
		t.Fatalf("unexpected outcome: %+v", result.Outcome)
	}
	if result.Outcome.Message != "Неверный API ключ" {
		t.Fatalf("unexpected message: %q", result.Outcome.Message)
	}
	if len(secrets.values) != 0 || len(st.keys) != 0 {
		t.Fatal("expected no secret or record to be written")
	}
}

func TestCreateKeyValidKeyIsPersisted(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	dispatcher := &fakeDispatcher{supported: map[string]bool{"Anthropic": true}, outcome: provider.Valid()}
	vault := newVault(secrets, st, dispatcher)

	result, err := vault.CreateKey(context.Background(), CreateKeyInput{
		Name:     "  Work  ",
		Value:    "sk-ant-good",
		Platform: "Anthropic",
		Note:     "  team account  ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Saved {
		t.Fatal("expected key to be saved")
	}
	if !result.Key.IsValid {
		t.Fatal("expected is_valid=true after successful validation")
	}
	if result.Key.Name != "Work" {
		t.Fatalf("expected trimmed name, got %q", result.Key.Name)
	}
	if result.Key.Note == nil || *result.Key.Note != "team account" {
		t.Fatalf("unexpected note: %v", result.Key.Note)
	}
	if result.Platform.Name != "Anthropic" {
		t.Fatalf("unexpected platform: %q", result.Platform.Name)
	}

	stored, err := secrets.Get(context.Background(), result.Key.KeystoreRef)
	if err != nil || stored != "sk-ant-good" {
		t.Fatalf("secret not stored under ref: value=%q err=%v", stored, err)
	}
}

func TestCreateKeyAllowInvalidSkipsValidation(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	dispatcher := &fakeDispatcher{supported: map[string]bool{"OpenAI": true}, outcome: provider.Valid()}
	vault := newVault(secrets, st, dispatcher)

	result, err := vault.CreateKey(context.Background(), CreateKeyInput{
		Name:         "Work",
		Value:        "sk-unverified",
		Platform:     "OpenAI",
		AllowInvalid: true,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Saved {
		t.Fatal("expected key to be saved")
	}
	if result.Key.IsValid {
		t.Fatal("expected is_valid=false when validation was skipped")
	}
	if dispatcher.calls != 0 {
		t.Fatalf("expected no validation call, got %d", dispatcher.calls)
	}
}

func TestCreateKeyUnsupportedPlatformSavesUnvalidated(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	dispatcher := &fakeDispatcher{supported: map[string]bool{}}
	vault := newVault(secrets, st, dispatcher)

	result, err := vault.CreateKey(context.Background(), CreateKeyInput{
		Name:     "Search",
		Value:    "cse-key",
		Platform: "Google Image Search",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Saved {
		t.Fatal("expected key to be saved")
	}
	if result.Key.IsValid {
		t.Fatal("expected is_valid=false for unsupported platform")
	}
	if result.Outcome != nil {
		t.Fatalf("expected no validation outcome, got %+v", result.Outcome)
	}
}

func TestCreateKeySecretWriteFailureAbortsBeforeMetadata(t *testing.T) {
	secrets := newFakeKeystore()
	secrets.saveErr = errors.New("disk full")
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	_, err := vault.CreateKey(context.Background(), CreateKeyInput{
		Name:     "Work",
		Value:    "sk-1",
		Platform: "GitHub",
	})
	svcErr := requireServiceError(t, err, ErrInternal)
	if svcErr.Message != "Не удалось сохранить ключ в Keystore" {
		t.Fatalf("unexpected message: %q", svcErr.Message)
	}
	if len(st.keys) != 0 {
		t.Fatal("expected no metadata record after secret write failure")
	}
}

// --- UpdateKey ---

func TestUpdateKeyUnchangedValuePreservesValidity(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-same")
	key := st.addKey("Work", "ref-1", platform.ID, true)

	updated, err := vault.UpdateKey(context.Background(), key.ID, UpdateKeyInput{
		Name:     "Work renamed",
		Value:    "sk-same",
		Platform: "OpenAI",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !updated.IsValid {
		t.Fatal("expected unchanged value to preserve is_valid")
	}
	if updated.Name != "Work renamed" {
		t.Fatalf("unexpected name: %q", updated.Name)
	}
	if len(secrets.updated) != 0 {
		t.Fatal("expected no secret rewrite for an unchanged value")
	}
}

func TestUpdateKeyChangedValueResetsValidity(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-old")
	key := st.addKey("Work", "ref-1", platform.ID, true)

	updated, err := vault.UpdateKey(context.Background(), key.ID, UpdateKeyInput{
		Name:     "Work",
		Value:    "sk-new",
		Platform: "OpenAI",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.IsValid {
		t.Fatal("expected changed value to reset is_valid")
	}
	if updated.KeystoreRef != "ref-1" {
		t.Fatalf("expected in-place rewrite under the same ref, got %q", updated.KeystoreRef)
	}

	stored, err := secrets.Get(context.Background(), "ref-1")
	if err != nil || stored != "sk-new" {
		t.Fatalf("secret not rewritten: value=%q err=%v", stored, err)
	}
}

func TestUpdateKeyRepairsMissingSecret(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	// Metadata exists but the secret entry was lost.
	key := st.addKey("Work", "ref-orphan", platform.ID, true)

	updated, err := vault.UpdateKey(context.Background(), key.ID, UpdateKeyInput{
		Name:     "Work",
		Value:    "sk-recovered",
		Platform: "OpenAI",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if updated.IsValid {
		t.Fatal("expected repaired value to reset is_valid")
	}

	stored, err := secrets.Get(context.Background(), "ref-orphan")
	if err != nil || stored != "sk-recovered" {
		t.Fatalf("secret not repaired: value=%q err=%v", stored, err)
	}
}

func TestUpdateKeyPlatformChangeCleansUpEmptyPlatforms(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	custom := st.addPlatform("My Custom Tool")
	secrets.put("ref-1", "sk-1")
	key := st.addKey("Work", "ref-1", custom.ID, false)

	_, err := vault.UpdateKey(context.Background(), key.ID, UpdateKeyInput{
		Name:     "Work",
		Value:    "sk-1",
		Platform: "OpenAI",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if st.cleanupCalls != 1 {
		t.Fatalf("expected one cleanup call, got %d", st.cleanupCalls)
	}
	if _, ok := st.platforms[custom.ID]; ok {
		t.Fatal("expected the now-empty custom platform to be removed")
	}
}

func TestUpdateKeyMissingKey(t *testing.T) {
	vault := newVault(newFakeKeystore(), newFakeStore(), &fakeDispatcher{})

	_, err := vault.UpdateKey(context.Background(), uuid.New(), UpdateKeyInput{
		Name:     "Work",
		Value:    "sk-1",
		Platform: "OpenAI",
	})
	requireServiceError(t, err, ErrNotFound)
}

// --- DeleteKey ---

func TestDeleteKeyRemovesSecretAndRecord(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-1")
	key := st.addKey("Work", "ref-1", platform.ID, true)

	if err := vault.DeleteKey(context.Background(), key.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := st.keys[key.ID]; ok {
		t.Fatal("expected record to be removed")
	}
	if _, err := secrets.Get(context.Background(), "ref-1"); !errors.Is(err, keystore.ErrNotFound) {
		t.Fatalf("expected secret to be removed, got %v", err)
	}
}

func TestDeleteKeyCascadesCustomPlatform(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	custom := st.addPlatform("My Custom Tool")
	secrets.put("ref-1", "sk-1")
	key := st.addKey("Only key", "ref-1", custom.ID, false)

	if err := vault.DeleteKey(context.Background(), key.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := st.platforms[custom.ID]; ok {
		t.Fatal("expected custom platform to be removed with its last key")
	}
}

func TestDeleteKeyKeepsDefaultPlatform(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-1")
	key := st.addKey("Only key", "ref-1", platform.ID, true)

	if err := vault.DeleteKey(context.Background(), key.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := st.platforms[platform.ID]; !ok {
		t.Fatal("expected default platform to survive losing its last key")
	}
}

func TestDeleteKeyKeepsPlatformWithRemainingKeys(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	custom := st.addPlatform("My Custom Tool")
	secrets.put("ref-1", "sk-1")
	secrets.put("ref-2", "sk-2")
	first := st.addKey("First", "ref-1", custom.ID, false)
	st.addKey("Second", "ref-2", custom.ID, false)

	if err := vault.DeleteKey(context.Background(), first.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, ok := st.platforms[custom.ID]; !ok {
		t.Fatal("expected platform with remaining keys to survive")
	}
}

func TestDeleteKeySecretFailureKeepsRecord(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-1")
	key := st.addKey("Work", "ref-1", platform.ID, true)
	secrets.deleteErr = errors.New("backend down")

	err := vault.DeleteKey(context.Background(), key.ID)
	svcErr := requireServiceError(t, err, ErrInternal)
	if svcErr.Message != "Не удалось удалить ключ из Keystore" {
		t.Fatalf("unexpected message: %q", svcErr.Message)
	}
	if _, ok := st.keys[key.ID]; !ok {
		t.Fatal("expected record to survive a failed secret deletion")
	}
}

func TestDeleteKeyMissing(t *testing.T) {
	vault := newVault(newFakeKeystore(), newFakeStore(), &fakeDispatcher{})
	err := vault.DeleteKey(context.Background(), uuid.New())
	requireServiceError(t, err, ErrNotFound)
}

// --- Reveal ---

func TestReveal(t *testing.T) {
	secrets := newFakeKeystore()
	st := newFakeStore()
	vault := newVault(secrets, st, &fakeDispatcher{})

	platform := st.addPlatform("OpenAI")
	secrets.put("ref-1", "sk-plain")
	key := st.addKey("Work", "ref-1", platform.ID, true)

	t.Run("returns plaintext", func(t *testing.T) {
		value, err := vault.Reveal(context.Background(), key.ID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if value != "sk-plain" {
			t.Fatalf("unexpected value: %q", value)
		}
	})

	t.Run("missing record", func(t *testing.T) {
		_, err := vault.Reveal(context.Background(), uuid.New())
		requireServiceError(t, err, ErrNotFound)
	})

	t.Run("missing secret", func(t *testing.T) {
		orphan := st.addKey("Orphan", "ref-gone", platform.ID, false)
		_, err := vault.Reveal(context.Background(), orphan.ID)
		requireServiceError(t, err, ErrNotFound)
	})
}

// --- validation passthroughs ---

func TestValidateKeyPassthrough(t *testing.T) {
	dispatcher := &fakeDispatcher{
		supported: map[string]bool{"Gemini": true},
		outcome:   provider.Invalid("Неверный API ключ"),
	}
	vault := newVault(newFakeKeystore(), newFakeStore(), dispatcher)

	outcome := vault.ValidateKey(context.Background(), "Gemini", "AIza-bad")
	if outcome.Status != provider.StatusInvalid || outcome.Message != "Неверный API ключ" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	if dispatcher.calls != 1 {
		t.Fatalf("expected one dispatch, got %d", dispatcher.calls)
	}

	if !vault.SupportsValidation("Gemini") {
		t.Fatal("expected Gemini to be supported")
	}
	if vault.SupportsValidation("GitHub") {
		t.Fatal("expected GitHub to be unsupported")
	}
}
