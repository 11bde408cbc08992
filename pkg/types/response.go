package types

// RequestIDHeader carries the correlation id echoed on every response.
const RequestIDHeader = "X-Request-Id"

// SuccessEnvelope wraps every 2xx payload, including operations reports.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request.
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
