package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	hailuoBaseURL = "https://api.minimax.io"

	// The probe asks for a file that cannot exist: an authenticated key
	// gets a "file not found" envelope (status_code 2013, or an
	// ambiguous 1004 without auth keywords), a bad key gets an auth
	// failure envelope.
	hailuoProbePath = "/v1/files/retrieve?GroupId=1956997081382003480&file_id=test_invalid_id"
)

// HailuoValidator probes the MiniMax files endpoint. MiniMax does not use
// HTTP status codes as its primary signal; results arrive in a base_resp
// envelope that must be parsed first, with the HTTP status only as fallback.
type HailuoValidator struct {
	client  *http.Client
	baseURL string
}

func NewHailuoValidator(client *http.Client, baseURL string) *HailuoValidator {
	if baseURL == "" {
		baseURL = hailuoBaseURL
	}
	return &HailuoValidator{client: client, baseURL: baseURL}
}

func (v *HailuoValidator) Name() string { return "Hailuo" }

func (v *HailuoValidator) Validate(ctx context.Context, secret string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+hailuoProbePath, nil)
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

	if outcome, ok := classifyHailuoEnvelope(readBody(resp)); ok {
		return outcome
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Valid()
	case resp.StatusCode == http.StatusBadRequest:
		return Invalid(msgBadRequest)
	case resp.StatusCode == http.StatusUnauthorized:
		return Invalid(msgInvalidKey)
	case resp.StatusCode == http.StatusForbidden:
		return Invalid(msgKeyBlocked)
	case resp.StatusCode == http.StatusTooManyRequests:
		return Valid()
	case resp.StatusCode == http.StatusInternalServerError,
		resp.StatusCode == http.StatusBadGateway,
		resp.StatusCode == http.StatusServiceUnavailable:
		return ServerError(msgServerDown)
	default:
		return ServerError(fmt.Sprintf("Код ошибки: %d", resp.StatusCode))
	}
}

// classifyHailuoEnvelope inspects the base_resp envelope. The second return
// is false when the body carries no envelope and the HTTP status must decide.
func classifyHailuoEnvelope(body []byte) (Outcome, bool) {
	if len(body) == 0 {
		return Outcome{}, false
	}
	var payload struct {
		BaseResp *struct {
			StatusCode int    `json:"status_code"`
			StatusMsg  string `json:"status_msg"`
		} `json:"base_resp"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.BaseResp == nil {
		return Outcome{}, false
	}

	code := payload.BaseResp.StatusCode
	msg := payload.BaseResp.StatusMsg
	authFailure := hailuoAuthFailureMessage(msg)

	if authFailure {
		return Invalid(msgInvalidKey), true
	}

	switch code {
	case 1001, 1002, 2049:
		// MiniMax authorization error codes.
		if msg == "" {
			return Invalid(msgInvalidKey), true
		}
		return Invalid(msg), true
	case 0, 2013:
		return Valid(), true
	case 1004:
		// 1004 without auth keywords is "file not found", the probe's
		// expected answer for a working key.
		return Valid(), true
	}

	return Outcome{}, false
}

func hailuoAuthFailureMessage(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range []string{"login fail", "invalid api", "authorization", "api key", "api secret"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
