package model

import (
	"time"
)

// Payload is a decoded JSON value of caller-defined shape: nil, bool,
// json.Number, string, []any or map[string]any.
type Payload = any

// RequestConfig holds the fully resolved parameters for one trigger call
type RequestConfig struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Payload Payload           `json:"payload"`
	Timeout time.Duration     `json:"-"`
}

// Request represents a sent trigger request as kept in history
type Request struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Method    string            `json:"method"`
	URL       string            `json:"url"`
	Headers   map[string]string `json:"headers"`
	Body      string            `json:"body"`
	Response  *Response         `json:"response,omitempty"`
}

// Response represents an HTTP response
type Response struct {
	StatusCode int               `json:"status_code"`
	Status     string            `json:"status"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
	DurationMs int64             `json:"duration_ms"`
}

// History represents the request history storage
type History struct {
	Requests []Request `json:"requests"`
}

// Flows represents all saved flow URLs
type Flows struct {
	Flows map[string]string `json:"flows"` // name -> trigger URL
}
