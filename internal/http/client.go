package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"flowtrigger/internal/model"
)

const (
	// MaxResponseSize limits response body to 50MB to prevent memory exhaustion
	MaxResponseSize = 50 * 1024 * 1024

	// Default timeout for HTTP requests
	DefaultTimeout = 30 * time.Second
)

// Client wraps the standard http.Client for one-shot trigger calls
type Client struct {
	transport http.RoundTripper
	log       *zap.Logger
}

// NewClient creates a new HTTP client. A nil logger discards log output.
func NewClient(log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{log: log}
}

// WithTransport replaces the round tripper used for requests
func (c *Client) WithTransport(rt http.RoundTripper) *Client {
	c.transport = rt
	return c
}

// Send executes the configured request once. GET carries the payload as
// query parameters, every other method as a JSON body.
func (c *Client) Send(ctx context.Context, cfg *model.RequestConfig) (*model.Response, error) {
	reqURL := cfg.URL
	var bodyReader io.Reader

	if cfg.Method == http.MethodGet {
		query, err := QueryFromPayload(cfg.Payload)
		if err != nil {
			return nil, err
		}
		reqURL = appendQuery(reqURL, query)
	} else {
		body, err := EncodeBody(cfg.Payload)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, reqURL, bodyReader)
	if err != nil {
		return nil, err
	}

	for key, value := range cfg.Headers {
		req.Header.Set(key, value)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := &http.Client{
		Timeout:   timeout,
		Transport: c.transport,
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	duration := time.Since(start)

	// Read response body with size limit to prevent memory exhaustion
	limitedReader := io.LimitReader(resp.Body, MaxResponseSize+1)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, err
	}

	if int64(len(respBody)) > MaxResponseSize {
		respBody = respBody[:MaxResponseSize]
		c.log.Warn("response body truncated", zap.Int("limit_bytes", MaxResponseSize))
	}

	respHeaders := make(map[string]string)
	for key, values := range resp.Header {
		if len(values) > 0 {
			respHeaders[key] = values[0]
		}
	}

	return &model.Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Headers:    respHeaders,
		Body:       string(respBody),
		DurationMs: duration.Milliseconds(),
	}, nil
}

// EncodeBody renders the payload as a JSON request body
func EncodeBody(payload model.Payload) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("encoding payload: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// QueryFromPayload flattens a JSON object into query parameters. Arrays
// become repeated keys, nulls are skipped and nested values are sent as
// their JSON text.
func QueryFromPayload(payload model.Payload) (url.Values, error) {
	query := url.Values{}
	if payload == nil {
		return query, nil
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("query parameters need a JSON object payload, got %T", payload)
	}

	for key, raw := range obj {
		values := []any{raw}
		if list, ok := raw.([]any); ok {
			values = list
		}
		for _, v := range values {
			if v == nil {
				continue
			}
			s, err := queryValue(v)
			if err != nil {
				return nil, err
			}
			query.Add(key, s)
		}
	}
	return query, nil
}

func queryValue(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case float64:
		return fmt.Sprint(v), nil
	default:
		data, err := EncodeBody(v)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}

// appendQuery adds params after any query the URL already carries
func appendQuery(rawURL string, query url.Values) string {
	if len(query) == 0 {
		return rawURL
	}

	base, fragment, hasFragment := strings.Cut(rawURL, "#")
	switch {
	case !strings.Contains(base, "?"):
		base += "?"
	case !strings.HasSuffix(base, "?") && !strings.HasSuffix(base, "&"):
		base += "&"
	}
	base += query.Encode()

	if hasFragment {
		base += "#" + fragment
	}
	return base
}
