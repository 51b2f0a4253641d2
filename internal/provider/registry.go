package provider

import (
	"context"
	"net/http"
)

// Dispatcher routes a platform name to its validator.
type Dispatcher interface {
	// Supports reports whether the platform has a validator. Matching is
	// exact and case-sensitive.
	Supports(platform string) bool
	// Validate dispatches to the matching validator. A platform without
	// one resolves to a terminal ServerError without any network I/O.
	Validate(ctx context.Context, platform, secret string) Outcome
	// Platforms lists the supported platform names.
	Platforms() []string
}

// Registry is the production Dispatcher holding one validator per supported
// platform.
type Registry struct {
	validators map[string]Validator
	names      []string
}

// NewRegistry builds a registry with the five production validators sharing
// one HTTP client. Base URLs are the providers' public endpoints.
func NewRegistry(client *http.Client) *Registry {
	return NewRegistryOf(
		NewAnthropicValidator(client, ""),
		NewDeepSeekValidator(client, ""),
		NewGeminiValidator(client, ""),
		NewOpenAIValidator(client, ""),
		NewHailuoValidator(client, ""),
	)
}

// NewRegistryOf builds a registry from explicit validators.
func NewRegistryOf(validators ...Validator) *Registry {
	r := &Registry{validators: make(map[string]Validator, len(validators))}
	for _, v := range validators {
		r.validators[v.Name()] = v
		r.names = append(r.names, v.Name())
	}
	return r
}

func (r *Registry) Supports(platform string) bool {
	_, ok := r.validators[platform]
	return ok
}

func (r *Registry) Validate(ctx context.Context, platform, secret string) Outcome {
	v, ok := r.validators[platform]
	if !ok {
		return ServerError(msgUnsupported)
	}
	return v.Validate(ctx, secret)
}

func (r *Registry) Platforms() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
