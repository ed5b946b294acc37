package types

// ErrorEnvelope is the body written for every failed request.
type ErrorEnvelope struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// StatusEnvelope is the body of the health endpoints.
type StatusEnvelope struct {
	Status string `json:"status"`
}
