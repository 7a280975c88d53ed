package trigger

import (
	"net/url"
	"slices"
	"strings"
	"time"

	"flowtrigger/internal/model"
)

const (
	EnvURL    = "FLOW_URL"
	EnvBearer = "FLOW_BEARER"
	EnvSecret = "FLOW_SECRET"

	DefaultMethod  = "POST"
	DefaultTimeout = 30
)

// Methods lists the accepted HTTP verbs
var Methods = []string{"GET", "POST", "PUT", "DELETE"}

// Env is the snapshot of the FLOW_* environment taken at startup
type Env struct {
	URL    string
	Bearer string
	Secret string
}

// LoadEnv reads the FLOW_* variables once through getenv
func LoadEnv(getenv func(string) string) Env {
	return Env{
		URL:    getenv(EnvURL),
		Bearer: getenv(EnvBearer),
		Secret: getenv(EnvSecret),
	}
}

// Options are the command line values. Empty strings mean "not given".
type Options struct {
	URL         string
	PayloadPath string
	Data        string
	Method      string
	Bearer      string
	Secret      string
	Headers     []string
	Timeout     int
}

// FlowLookup resolves a saved flow name to its trigger URL
type FlowLookup interface {
	GetFlow(name string) (string, bool, error)
}

// Resolve merges options over the environment and produces the request
// configuration. flows may be nil.
func Resolve(opts Options, env Env, flows FlowLookup) (*model.RequestConfig, error) {
	target := firstNonEmpty(opts.URL, env.URL)
	if target == "" {
		return nil, configError("missing --url or %s", EnvURL)
	}
	target, err := resolveFlow(target, flows)
	if err != nil {
		return nil, err
	}
	if err := validateURL(target); err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = DefaultMethod
	}
	if !slices.Contains(Methods, method) {
		return nil, configError("invalid method %q (choose from %s)", method, strings.Join(Methods, ", "))
	}

	if opts.Timeout <= 0 {
		return nil, configError("timeout must be a positive number of seconds, got %d", opts.Timeout)
	}

	payload, err := LoadPayload(opts.PayloadPath, opts.Data)
	if err != nil {
		return nil, err
	}
	if method == "GET" && payload != nil {
		if _, ok := payload.(map[string]any); !ok {
			return nil, configError("GET payload must be a JSON object to be sent as query parameters")
		}
	}

	headers := BuildHeaders(
		firstNonEmpty(opts.Bearer, env.Bearer),
		firstNonEmpty(opts.Secret, env.Secret),
		ParseHeaders(opts.Headers),
	)

	return &model.RequestConfig{
		Method:  method,
		URL:     target,
		Headers: headers,
		Payload: payload,
		Timeout: time.Duration(opts.Timeout) * time.Second,
	}, nil
}

// resolveFlow replaces a bare flow name with its saved URL. Anything that
// already looks like a URL is returned as-is.
func resolveFlow(target string, flows FlowLookup) (string, error) {
	if flows == nil || strings.Contains(target, "://") {
		return target, nil
	}
	saved, exists, err := flows.GetFlow(target)
	if err != nil {
		return "", configError("looking up flow %q: %w", target, err)
	}
	if !exists {
		return target, nil
	}
	return saved, nil
}

func validateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return configError("invalid URL: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return configError("unsupported URL scheme %q (only http and https are allowed)", parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return configError("URL must have a hostname")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
