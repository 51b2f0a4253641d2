package provider

// Status classifies the result of a key validation attempt.
type Status int

const (
	// StatusValid means the provider accepted the key (including 429
	// rate-limit responses, which prove the key authenticated).
	StatusValid Status = iota
	// StatusInvalid means the key is definitively wrong and safe to reject.
	StatusInvalid
	// StatusServerError means the provider failed; the key's real validity
	// is unknown and must not be treated as invalid.
	StatusServerError
	// StatusNetworkError means the request never got a usable response
	// (DNS failure, timeout, transport error).
	StatusNetworkError
)

// MarshalJSON encodes the status as its snake_case name.
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// String returns the snake_case name used in JSON responses and metrics.
func (s Status) String() string {
	switch s {
	case StatusValid:
		return "valid"
	case StatusInvalid:
		return "invalid"
	case StatusServerError:
		return "server_error"
	case StatusNetworkError:
		return "network_error"
	default:
		return "unknown"
	}
}

// Outcome is the normalized result every validator resolves to. Validators
// never return Go errors past their boundary; all failure paths collapse
// into one of the four statuses.
type Outcome struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

func Valid() Outcome {
	return Outcome{Status: StatusValid}
}

func Invalid(message string) Outcome {
	return Outcome{Status: StatusInvalid, Message: message}
}

func ServerError(message string) Outcome {
	return Outcome{Status: StatusServerError, Message: message}
}

func NetworkError(message string) Outcome {
	return Outcome{Status: StatusNetworkError, Message: message}
}

// User-facing messages, kept verbatim from the mobile releases so every
// client surface shows identical wording.
const (
	msgInvalidKey  = "Неверный API ключ"
	msgKeyBlocked  = "Ключ заблокирован"
	msgBadRequest  = "Неверный запрос"
	msgServerDown  = "Сервер недоступен"
	msgNoNetwork   = "Нет подключения к сети"
	msgTimeout     = "Превышено время ожидания"
	msgUnsupported = "Платформа не поддерживает валидацию"
)
