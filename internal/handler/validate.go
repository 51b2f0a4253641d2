package handler

import (
	"encoding/json"
	"net/http"

	"github.com/byok-vault-service/internal/service"
)

// --- Validate Key ---

type ValidateKeyHandler struct {
	svc *service.VaultService
}

func NewValidateKeyHandler(svc *service.VaultService) *ValidateKeyHandler {
	return &ValidateKeyHandler{svc: svc}
}

type validateKeyRequest struct {
	Platform string `json:"platform"`
	Value    string `json:"value"`
}

func (h *ValidateKeyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req validateKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Platform == "" || req.Value == "" {
		RespondError(w, http.StatusBadRequest, "invalid_request", "platform and value are required")
		return
	}

	outcome := h.svc.ValidateKey(r.Context(), req.Platform, req.Value)
	RespondJSON(w, http.StatusOK, outcome)
}

// --- Supported Platforms ---

type SupportedPlatformsHandler struct {
	svc *service.VaultService
}

func NewSupportedPlatformsHandler(svc *service.VaultService) *SupportedPlatformsHandler {
	return &SupportedPlatformsHandler{svc: svc}
}

type supportedPlatformsResponse struct {
	Platforms []string `json:"platforms"`
}

type platformSupportResponse struct {
	Platform  string `json:"platform"`
	Supported bool   `json:"supported"`
}

func (h *SupportedPlatformsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if platform := r.URL.Query().Get("platform"); platform != "" {
		RespondJSON(w, http.StatusOK, platformSupportResponse{
			Platform:  platform,
			Supported: h.svc.SupportsValidation(platform),
		})
		return
	}
	RespondJSON(w, http.StatusOK, supportedPlatformsResponse{Platforms: h.svc.SupportedPlatforms()})
}
