package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPlatforms are the well-known platform names that ship with the
// vault. They are created lazily like any other platform but are never
// removed by the empty-platform cascade.
var DefaultPlatforms = []string{
	"Anthropic",
	"OpenAI",
	"Gemini",
	"Hailuo",
	"DeepSeek",
	"Reve AI",
	"GitHub",
	"Google Image Search",
}

// IsDefaultPlatform reports whether name is one of the built-in platforms.
// Matching is exact and case-sensitive.
func IsDefaultPlatform(name string) bool {
	for _, p := range DefaultPlatforms {
		if p == name {
			return true
		}
	}
	return false
}

// Platform groups API keys that belong to one provider or tool.
type Platform struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IconData  string    `json:"icon_data,omitempty"` // base64-encoded custom icon
	CreatedAt time.Time `json:"created_at"`
}

// IsDefault reports whether the platform is one of the built-in set.
func (p *Platform) IsDefault() bool {
	return IsDefaultPlatform(p.Name)
}

// PlatformSummary is a platform together with the number of keys stored
// under it.
type PlatformSummary struct {
	Platform
	KeyCount int `json:"key_count"`
}
