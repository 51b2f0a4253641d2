package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/byok-vault-service/internal/httputil"
	"github.com/byok-vault-service/internal/model"
	"github.com/byok-vault-service/internal/provider"
	"github.com/byok-vault-service/internal/service"
	"github.com/byok-vault-service/internal/store"
)

type keyJSON struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PlatformID uuid.UUID `json:"platform_id"`
	IsValid    bool      `json:"is_valid"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  string    `json:"created_at"`
	UpdatedAt  string    `json:"updated_at"`
}

func toKeyJSON(key *model.APIKey) keyJSON {
	note := ""
	if key.Note != nil {
		note = *key.Note
	}
	return keyJSON{
		ID:         key.ID,
		Name:       key.Name,
		PlatformID: key.PlatformID,
		IsValid:    key.IsValid,
		Note:       note,
		CreatedAt:  key.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  key.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

// --- Create Key ---

type CreateKeyHandler struct {
	svc *service.VaultService
}

func NewCreateKeyHandler(svc *service.VaultService) *CreateKeyHandler {
	return &CreateKeyHandler{svc: svc}
}

type createKeyRequest struct {
	Name         string `json:"name"`
	Value        string `json:"value"`
	Platform     string `json:"platform"`
	Note         string `json:"note,omitempty"`
	IconData     string `json:"icon_data,omitempty"`
	AllowInvalid bool   `json:"allow_invalid,omitempty"`
}

type createKeyResponse struct {
	Saved      bool              `json:"saved"`
	Key        *keyJSON          `json:"key,omitempty"`
	Platform   string            `json:"platform,omitempty"`
	Validation *provider.Outcome `json:"validation,omitempty"`
}

func (h *CreateKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	result, err := h.svc.CreateKey(r.Context(), service.CreateKeyInput{
		Name:         req.Name,
		Value:        req.Value,
		Platform:     req.Platform,
		Note:         req.Note,
		IconData:     req.IconData,
		AllowInvalid: req.AllowInvalid,
	})
	if err != nil {
		service.RespondError(w, err)
		return
	}

	resp := createKeyResponse{Saved: result.Saved, Validation: result.Outcome}
	status := http.StatusOK
	if result.Saved {
		status = http.StatusCreated
		kj := toKeyJSON(result.Key)
		resp.Key = &kj
		resp.Platform = result.Platform.Name
	}
	RespondJSON(w, status, resp)
}

// --- Get Key ---

type GetKeyHandler struct {
	store store.APIKeyStore
}

func NewGetKeyHandler(s store.APIKeyStore) *GetKeyHandler {
	return &GetKeyHandler{store: s}
}

func (h *GetKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid key ID")
		return
	}

	key, err := h.store.GetAPIKeyByID(r.Context(), id)
	if err != nil {
		RespondError(w, http.StatusNotFound, "not_found", "Key not found")
		return
	}
	RespondJSON(w, http.StatusOK, toKeyJSON(key))
}

// --- List Keys ---

type ListKeysHandler struct {
	store store.APIKeyStore
}

func NewListKeysHandler(s store.APIKeyStore) *ListKeysHandler {
	return &ListKeysHandler{store: s}
}

type listKeysResponse struct {
	Keys    []keyJSON `json:"keys"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
}

func (h *ListKeysHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := httputil.ParsePagination(r.URL.Query().Get("page"), r.URL.Query().Get("per_page"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var platformID *uuid.UUID
	if raw := r.URL.Query().Get("platform_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid platform_id")
			return
		}
		platformID = &id
	}

	keys, total, err := h.store.ListAPIKeys(r.Context(), platformID, page, perPage)
	if err != nil {
		log.Error().Err(err).Msg("failed to list keys")
		RespondError(w, http.StatusInternalServerError, "internal_error", "Failed to list keys")
		return
	}

	items := make([]keyJSON, 0, len(keys))
	for _, key := range keys {
		items = append(items, toKeyJSON(key))
	}
	RespondJSON(w, http.StatusOK, listKeysResponse{Keys: items, Total: total, Page: page, PerPage: perPage})
}

// --- Update Key ---

type UpdateKeyHandler struct {
	svc *service.VaultService
}

func NewUpdateKeyHandler(svc *service.VaultService) *UpdateKeyHandler {
	return &UpdateKeyHandler{svc: svc}
}

type updateKeyRequest struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Platform string `json:"platform"`
	Note     string `json:"note,omitempty"`
	IconData string `json:"icon_data,omitempty"`
}

func (h *UpdateKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid key ID")
		return
	}

	var req updateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	key, err := h.svc.UpdateKey(r.Context(), id, service.UpdateKeyInput{
		Name:     req.Name,
		Value:    req.Value,
		Platform: req.Platform,
		Note:     req.Note,
		IconData: req.IconData,
	})
	if err != nil {
		service.RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, toKeyJSON(key))
}

// --- Delete Key ---

type DeleteKeyHandler struct {
	svc *service.VaultService
}

func NewDeleteKeyHandler(svc *service.VaultService) *DeleteKeyHandler {
	return &DeleteKeyHandler{svc: svc}
}

func (h *DeleteKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid key ID")
		return
	}

	if err := h.svc.DeleteKey(r.Context(), id); err != nil {
		service.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Reveal Key ---

type RevealKeyHandler struct {
	svc *service.VaultService
}

func NewRevealKeyHandler(svc *service.VaultService) *RevealKeyHandler {
	return &RevealKeyHandler{svc: svc}
}

type revealKeyResponse struct {
	Value string `json:"value"`
}

func (h *RevealKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid key ID")
		return
	}

	value, err := h.svc.Reveal(r.Context(), id)
	if err != nil {
		service.RespondError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	RespondJSON(w, http.StatusOK, revealKeyResponse{Value: value})
}

// --- Check Duplicate ---

type CheckDuplicateHandler struct {
	svc *service.VaultService
}

func NewCheckDuplicateHandler(svc *service.VaultService) *CheckDuplicateHandler {
	return &CheckDuplicateHandler{svc: svc}
}

type checkDuplicateRequest struct {
	Value      string `json:"value"`
	ExcludeRef string `json:"exclude_ref,omitempty"`
}

type checkDuplicateResponse struct {
	Duplicate    bool   `json:"duplicate"`
	ExistingName string `json:"existing_name,omitempty"`
	Platform     string `json:"platform,omitempty"`
}

func (h *CheckDuplicateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req checkDuplicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Value == "" {
		RespondError(w, http.StatusBadRequest, "invalid_request", "value is required")
		return
	}

	result, err := h.svc.CheckDuplicate(r.Context(), req.Value, req.ExcludeRef)
	if err != nil {
		service.RespondError(w, err)
		return
	}

	resp := checkDuplicateResponse{Duplicate: result.Duplicate}
	if result.Duplicate {
		resp.ExistingName = result.Key.Name
		resp.Platform = result.PlatformName
	}
	RespondJSON(w, http.StatusOK, resp)
}
