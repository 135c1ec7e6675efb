package dtos

// APIError is the JSON error envelope returned by all API controllers.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Meta    map[string]string `json:"meta,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}
