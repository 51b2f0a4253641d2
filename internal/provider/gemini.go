package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com"

// GeminiValidator probes the Gemini generateContent endpoint. Gemini
// authenticates via a query parameter rather than a header, and reports bad
// keys as HTTP 400 with an "API key" mention in the error message, so the
// body must be inspected to tell a bad key from a malformed request.
type GeminiValidator struct {
	client  *http.Client
	baseURL string
}

func NewGeminiValidator(client *http.Client, baseURL string) *GeminiValidator {
	if baseURL == "" {
		baseURL = geminiBaseURL
	}
	return &GeminiValidator{client: client, baseURL: baseURL}
}

func (v *GeminiValidator) Name() string { return "Gemini" }

func (v *GeminiValidator) Validate(ctx context.Context, secret string) Outcome {
	body, _ := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": "Hi"}}},
		},
		"generationConfig": map[string]int{"maxOutputTokens": 1},
	})

	endpoint := v.baseURL + "/v1beta/models/gemini-2.0-flash:generateContent?key=" + url.QueryEscape(secret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return NetworkError("Ошибка сети: " + err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return Valid()
	case http.StatusBadRequest:
		// A 400 mentioning "API key" is a bad key; any other message is
		// surfaced as-is. A 400 without a message still classifies as
		// Invalid, matching the historical behavior.
		if msg := errorMessage(readBody(resp)); msg != "" {
			if strings.Contains(strings.ToLower(msg), "api key") {
				return Invalid(msgInvalidKey)
			}
			return Invalid(msg)
		}
		return Invalid(msgBadRequest)
	case http.StatusUnauthorized, http.StatusForbidden:
		return Invalid(msgInvalidKey)
	case http.StatusTooManyRequests:
		return Valid()
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable:
		return ServerError(msgServerDown)
	default:
		return fallbackOutcome(resp.StatusCode, readBody(resp))
	}
}
