package trigger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFlows map[string]string

func (s stubFlows) GetFlow(name string) (string, bool, error) {
	url, ok := s[name]
	return url, ok, nil
}

type failingFlows struct{}

func (failingFlows) GetFlow(string) (string, bool, error) {
	return "", false, errors.New("database is locked")
}

func baseOptions() Options {
	return Options{
		URL:     "https://example.com/hook",
		Method:  DefaultMethod,
		Timeout: DefaultTimeout,
	}
}

func TestLoadEnv(t *testing.T) {
	vars := map[string]string{
		EnvURL:    "https://env.example.com",
		EnvBearer: "env-token",
		EnvSecret: "env-secret",
	}
	env := LoadEnv(func(k string) string { return vars[k] })
	assert.Equal(t, Env{URL: "https://env.example.com", Bearer: "env-token", Secret: "env-secret"}, env)
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Resolve(baseOptions(), Env{}, nil)
	require.NoError(t, err)

	assert.Equal(t, "POST", cfg.Method)
	assert.Equal(t, "https://example.com/hook", cfg.URL)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, cfg.Headers)
	assert.Equal(t, map[string]any{}, cfg.Payload)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestResolveMissingURL(t *testing.T) {
	opts := baseOptions()
	opts.URL = ""

	_, err := Resolve(opts, Env{}, nil)
	require.Error(t, err)
	assert.True(t, IsConfig(err))
	assert.Contains(t, err.Error(), EnvURL)
}

func TestResolveFlagsOverrideEnv(t *testing.T) {
	env := Env{URL: "https://env.example.com/hook", Bearer: "env-token", Secret: "env-secret"}

	t.Run("env fills gaps", func(t *testing.T) {
		opts := baseOptions()
		opts.URL = ""
		cfg, err := Resolve(opts, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.com/hook", cfg.URL)
		assert.Equal(t, "Bearer env-token", cfg.Headers[HeaderAuthorization])
		assert.Equal(t, "env-secret", cfg.Headers[HeaderSharedSecret])
	})

	t.Run("flags win", func(t *testing.T) {
		opts := baseOptions()
		opts.Bearer = "flag-token"
		opts.Secret = "flag-secret"
		cfg, err := Resolve(opts, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/hook", cfg.URL)
		assert.Equal(t, "Bearer flag-token", cfg.Headers[HeaderAuthorization])
		assert.Equal(t, "flag-secret", cfg.Headers[HeaderSharedSecret])
	})

	t.Run("explicit header wins over all", func(t *testing.T) {
		opts := baseOptions()
		opts.Bearer = "flag-token"
		opts.Headers = []string{"Authorization:Custom"}
		cfg, err := Resolve(opts, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "Custom", cfg.Headers[HeaderAuthorization])
	})
}

func TestResolveRejects(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Options)
	}{
		{"lowercase method", func(o *Options) { o.Method = "post" }},
		{"unknown method", func(o *Options) { o.Method = "PATCH" }},
		{"zero timeout", func(o *Options) { o.Timeout = 0 }},
		{"negative timeout", func(o *Options) { o.Timeout = -5 }},
		{"bad scheme", func(o *Options) { o.URL = "ftp://example.com/hook" }},
		{"no host", func(o *Options) { o.URL = "https:///hook" }},
		{"not a url", func(o *Options) { o.URL = "example.com/hook" }},
		{"malformed data", func(o *Options) { o.Data = "{oops" }},
		{"GET with array payload", func(o *Options) { o.Method = "GET"; o.Data = `[1,2]` }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			tt.modify(&opts)
			_, err := Resolve(opts, Env{}, nil)
			require.Error(t, err)
			assert.True(t, IsConfig(err), "want config error, got %v", err)
		})
	}
}

func TestResolveEmptyMethodDefaultsToPost(t *testing.T) {
	opts := baseOptions()
	opts.Method = ""
	cfg, err := Resolve(opts, Env{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "POST", cfg.Method)
}

func TestResolveFlowName(t *testing.T) {
	flows := stubFlows{"daily-report": "https://flows.example.com/daily"}

	t.Run("saved name", func(t *testing.T) {
		opts := baseOptions()
		opts.URL = "daily-report"
		cfg, err := Resolve(opts, Env{}, flows)
		require.NoError(t, err)
		assert.Equal(t, "https://flows.example.com/daily", cfg.URL)
	})

	t.Run("unknown name is still validated", func(t *testing.T) {
		opts := baseOptions()
		opts.URL = "weekly-report"
		_, err := Resolve(opts, Env{}, flows)
		require.Error(t, err)
		assert.True(t, IsConfig(err))
	})

	t.Run("full URL skips lookup", func(t *testing.T) {
		cfg, err := Resolve(baseOptions(), Env{}, failingFlows{})
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/hook", cfg.URL)
	})

	t.Run("lookup failure", func(t *testing.T) {
		opts := baseOptions()
		opts.URL = "daily-report"
		_, err := Resolve(opts, Env{}, failingFlows{})
		require.Error(t, err)
		assert.True(t, IsConfig(err))
	})
}

func TestResolveGETWithNullPayload(t *testing.T) {
	opts := baseOptions()
	opts.Method = "GET"
	opts.Data = "null"

	cfg, err := Resolve(opts, Env{}, nil)
	require.NoError(t, err)
	assert.Nil(t, cfg.Payload)
}

func TestResolveDropsEmptyHeaderName(t *testing.T) {
	opts := baseOptions()
	opts.Headers = []string{":v", "X-Trace: 42"}

	cfg, err := Resolve(opts, Env{}, nil)
	require.NoError(t, err)
	assert.NotContains(t, cfg.Headers, "")
	assert.Equal(t, "42", cfg.Headers["X-Trace"])
}
