package types

// SuccessEnvelope wraps every 2xx payload under a data key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error shape. Details carries per-field
// validation messages when the code allows them.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
