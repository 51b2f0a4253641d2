package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/byok-vault-service/internal/store"
)

type ListPlatformsHandler struct {
	store store.PlatformStore
}

func NewListPlatformsHandler(s store.PlatformStore) *ListPlatformsHandler {
	return &ListPlatformsHandler{store: s}
}

type platformJSON struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IconData  string    `json:"icon_data,omitempty"`
	IsDefault bool      `json:"is_default"`
	KeyCount  int       `json:"key_count"`
	CreatedAt string    `json:"created_at"`
}

type listPlatformsResponse struct {
	Platforms []platformJSON `json:"platforms"`
}

func (h *ListPlatformsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	platforms, err := h.store.ListPlatforms(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list platforms")
		RespondError(w, http.StatusInternalServerError, "internal_error", "Failed to list platforms")
		return
	}

	items := make([]platformJSON, 0, len(platforms))
	for _, p := range platforms {
		items = append(items, platformJSON{
			ID:        p.ID,
			Name:      p.Name,
			IconData:  p.IconData,
			IsDefault: p.IsDefault(),
			KeyCount:  p.KeyCount,
			CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	RespondJSON(w, http.StatusOK, listPlatformsResponse{Platforms: items})
}
