package ollama

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// CreateRequest derives a named model from a base model with a fixed
// system prompt and parameters
type CreateRequest struct {
	Model      string         `json:"model"`
	From       string         `json:"from"`
	System     string         `json:"system,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Stream     bool           `json:"stream"`
}

type createResponse struct {
	Status string `json:"status"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// CreateModel creates a custom model and returns the final status line
func (c *Client) CreateModel(ctx context.Context, request CreateRequest) (string, error) {
	if request.Model == "" {
		return "", errors.New("model name is required")
	}
	if request.From == "" {
		request.From = DefaultModel
	}
	request.Stream = false

	req, err := client.NewJSONRequest(request)
	if err != nil {
		return "", err
	}

	var response createResponse
	if err := c.DoWithContext(ctx, req, &response, client.OptPath("create")); err != nil {
		return "", err
	}
	return response.Status, nil
}

// ParseParameters turns "key=value" pairs into model parameters. Values
// that parse as numbers are sent as numbers.
func ParseParameters(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		value = strings.TrimSpace(value)
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			params[key] = n
		} else if f, err := strconv.ParseFloat(value, 64); err == nil {
			params[key] = f
		} else {
			params[key] = value
		}
	}
	return params, nil
}

// Modelfile renders the equivalent Modelfile text for a create request
func Modelfile(request CreateRequest) string {
	var b strings.Builder
	from := request.From
	if from == "" {
		from = DefaultModel
	}
	fmt.Fprintf(&b, "FROM %s\n", from)
	if request.System != "" {
		fmt.Fprintf(&b, "SYSTEM %s\n", request.System)
	}
	for _, key := range slices.Sorted(maps.Keys(request.Parameters)) {
		fmt.Fprintf(&b, "PARAMETER %s %v\n", key, request.Parameters[key])
	}
	return b.String()
}
