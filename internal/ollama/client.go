/*
ollama is a minimal client for the local Ollama chat API.
https://github.com/ollama/ollama/blob/main/docs/api.md
*/
package ollama

import (
	"os"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Client struct {
	*client.Client
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// HostEnv names the environment variable holding the Ollama address
	HostEnv     = "OLLAMA_HOST"
	DefaultHost = "http://localhost:11434"

	DefaultModel       = "mistral"
	DefaultTemperature = 0.8
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a client for an Ollama host such as "http://localhost:11434".
// The "/api" suffix is added when missing.
func New(host string, opts ...client.ClientOpt) (*Client, error) {
	c, err := client.New(append(opts, client.OptEndpoint(Endpoint(host)))...)
	if err != nil {
		return nil, err
	}
	return &Client{c}, nil
}

// Endpoint turns an Ollama host into its API endpoint. An empty host means
// $OLLAMA_HOST, falling back to the local default.
func Endpoint(host string) string {
	if host == "" {
		host = os.Getenv(HostEnv)
	}
	if host == "" {
		host = DefaultHost
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	host = strings.TrimSuffix(host, "/")
	if !strings.HasSuffix(host, "/api") {
		host += "/api"
	}
	return host
}
