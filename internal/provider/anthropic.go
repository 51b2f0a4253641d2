package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

const anthropicBaseURL = "https://api.anthropic.com"

// AnthropicValidator probes the Anthropic messages endpoint with a
// one-token request.
type AnthropicValidator struct {
	client  *http.Client
	baseURL string
}

func NewAnthropicValidator(client *http.Client, baseURL string) *AnthropicValidator {
	if baseURL == "" {
		baseURL = anthropicBaseURL
	}
	return &AnthropicValidator{client: client, baseURL: baseURL}
}

func (v *AnthropicValidator) Name() string { return "Anthropic" }

func (v *AnthropicValidator) Validate(ctx context.Context, secret string) Outcome {
	body, _ := json.Marshal(map[string]any{
		"model":      "claude-3-haiku-20240307",
		"max_tokens": 1,
		"messages": []map[string]string{
			{"role": "user", "content": "Hi"},
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return NetworkError("Ошибка сети: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", secret)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := v.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Valid()
	case http.StatusUnauthorized:
		return Invalid(msgInvalidKey)
	case http.StatusForbidden:
		return Invalid(msgKeyBlocked)
	case http.StatusTooManyRequests:
		// Rate limited, but the request authenticated.
		return Valid()
	case http.StatusInternalServerError, 529:
		return ServerError(msgServerDown)
	default:
		return fallbackOutcome(resp.StatusCode, readBody(resp))
	}
}
