// Package provider validates API keys against the third-party services they
// belong to. Each validator issues one minimal, low-cost request that
// exercises authentication and classifies the raw response into an Outcome;
// the Registry routes a platform name to its validator.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// maxErrorBody bounds how much of a provider response body is read when
// extracting error details.
const maxErrorBody = 1 << 20

// Validator checks one provider's API key.
type Validator interface {
	// Name is the exact platform name the validator serves.
	Name() string
	// Validate issues the probe request and classifies the response.
	// It never returns a Go error; transport failures become
	// NetworkError outcomes.
	Validate(ctx context.Context, secret string) Outcome
}

// classifyTransportError maps request-level failures to NetworkError
// outcomes. DNS failures and timeouts get fixed messages; anything else
// carries the underlying description.
func classifyTransportError(err error) Outcome {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return NetworkError(msgNoNetwork)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return NetworkError(msgTimeout)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NetworkError(msgTimeout)
	}
	return NetworkError("Ошибка сети: " + err.Error())
}

// readBody drains up to maxErrorBody bytes of the response body. A read
// failure yields nil; callers treat a missing body as no extra detail.
func readBody(resp *http.Response) []byte {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil
	}
	return body
}

// errorMessage extracts error.message from the JSON error envelope shared by
// Anthropic, OpenAI, DeepSeek and Gemini responses. Returns "" when the body
// does not carry one.
func errorMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}

// fallbackOutcome handles status codes outside a validator's classification
// table: a provider-supplied error message is surfaced as Invalid, otherwise
// the status is unknown territory and reported as ServerError.
func fallbackOutcome(status int, body []byte) Outcome {
	if msg := errorMessage(body); msg != "" {
		return Invalid(msg)
	}
	return ServerError(fmt.Sprintf("Код ошибки: %d", status))
}
