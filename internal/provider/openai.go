package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

const openAIBaseURL = "https://api.openai.com"

// OpenAIValidator probes the OpenAI chat completions endpoint with a
// one-token request.
type OpenAIValidator struct {
	client  *http.Client
	baseURL string
}

func NewOpenAIValidator(client *http.Client, baseURL string) *OpenAIValidator {
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return &OpenAIValidator{client: client, baseURL: baseURL}
}

func (v *OpenAIValidator) Name() string { return "OpenAI" }

func (v *OpenAIValidator) Validate(ctx context.Context, secret string) Outcome {
	body, _ := json.Marshal(map[string]any{
		"model":      "gpt-4o-mini",
		"max_tokens": 1,
		"messages": []map[string]string{
			{"role": "user", "content": "Hi"},
		},
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return NetworkError("Ошибка сети: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+secret)

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
		return Valid()
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ServerError(msgServerDown)
	default:
		return fallbackOutcome(resp.StatusCode, readBody(resp))
	}
}
