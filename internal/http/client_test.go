package http_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "flowtrigger/internal/http"
	"flowtrigger/internal/model"
	"flowtrigger/internal/trigger"
)

type captured struct {
	mu     sync.Mutex
	method string
	query  url.Values
	raw    string
	body   string
}

func newCaptureServer(t *testing.T) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.method = r.Method
		c.query = r.URL.Query()
		c.raw = r.URL.RawQuery
		c.body = string(body)
		c.mu.Unlock()
		w.Header().Set("X-Run-Id", "run-1")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func decode(t *testing.T, s string) model.Payload {
	t.Helper()
	var v any
	d := json.NewDecoder(strings.NewReader(s))
	d.UseNumber()
	require.NoError(t, d.Decode(&v))
	return v
}

func TestSendGETUsesQuery(t *testing.T) {
	srv, got := newCaptureServer(t)

	cfg := &model.RequestConfig{
		Method:  http.MethodGet,
		URL:     srv.URL + "/hook?existing=1",
		Headers: map[string]string{"Content-Type": "application/json"},
		Payload: decode(t, `{"page": 2, "tags": ["a", "b"], "skip": null, "on": true, "filter": {"x": 1}}`),
		Timeout: 5 * time.Second,
	}

	resp, err := httpclient.NewClient(nil).Send(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "run-1", resp.Headers["X-Run-Id"])
	assert.Equal(t, `{"ok":true}`, resp.Body)

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, http.MethodGet, got.method)
	assert.Empty(t, got.body)
	assert.Equal(t, []string{"1"}, got.query["existing"])
	assert.Equal(t, []string{"2"}, got.query["page"])
	assert.Equal(t, []string{"a", "b"}, got.query["tags"])
	assert.Equal(t, []string{"true"}, got.query["on"])
	assert.Equal(t, []string{`{"x":1}`}, got.query["filter"])
	assert.NotContains(t, got.query, "skip")
}

func TestSendGETEmptyPayloadLeavesURL(t *testing.T) {
	srv, got := newCaptureServer(t)

	cfg := &model.RequestConfig{
		Method:  http.MethodGet,
		URL:     srv.URL + "/hook?a=1",
		Payload: map[string]any{},
		Timeout: 5 * time.Second,
	}

	_, err := httpclient.NewClient(nil).Send(context.Background(), cfg)
	require.NoError(t, err)

	got.mu.Lock()
	defer got.mu.Unlock()
	assert.Equal(t, "a=1", got.raw)
}

func TestSendPOSTUsesBody(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			srv, got := newCaptureServer(t)

			cfg := &model.RequestConfig{
				Method:  method,
				URL:     srv.URL + "/hook?sig=abc",
				Payload: decode(t, `{"amount": 1.50, "html": "<p>&</p>"}`),
				Timeout: 5 * time.Second,
			}

			_, err := httpclient.NewClient(nil).Send(context.Background(), cfg)
			require.NoError(t, err)

			got.mu.Lock()
			defer got.mu.Unlock()
			assert.Equal(t, method, got.method)
			assert.Equal(t, "sig=abc", got.raw)
			assert.Equal(t, `{"amount":1.50,"html":"<p>&</p>"}`, got.body)
		})
	}
}

func TestSendTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := &model.RequestConfig{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Payload: map[string]any{},
		Timeout: 50 * time.Millisecond,
	}

	start := time.Now()
	_, err := httpclient.NewClient(nil).Send(context.Background(), cfg)
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSendConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	cfg := &model.RequestConfig{Method: http.MethodPost, URL: addr, Payload: map[string]any{}, Timeout: time.Second}
	_, err := httpclient.NewClient(nil).Send(context.Background(), cfg)
	assert.Error(t, err)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestWithTransport(t *testing.T) {
	var seen *http.Request
	rt := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = r
		return &http.Response{
			StatusCode: http.StatusAccepted,
			Status:     "202 Accepted",
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader("")),
		}, nil
	})

	cfg := &model.RequestConfig{
		Method:  http.MethodPost,
		URL:     "https://flows.example.com/hook#frag",
		Headers: map[string]string{"Authorization": "Bearer tok"},
		Payload: map[string]any{},
		Timeout: time.Second,
	}
	resp, err := httpclient.NewClient(nil).WithTransport(rt).Send(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	require.NotNil(t, seen)
	assert.Equal(t, "Bearer tok", seen.Header.Get("Authorization"))
}

func TestQueryFromPayload(t *testing.T) {
	q, err := httpclient.QueryFromPayload(nil)
	require.NoError(t, err)
	assert.Empty(t, q)

	_, err = httpclient.QueryFromPayload([]any{"a"})
	assert.Error(t, err)

	q, err = httpclient.QueryFromPayload(map[string]any{"n": 2.5, "s": "x y", "f": false})
	require.NoError(t, err)
	assert.Equal(t, "f=false&n=2.5&s=x+y", q.Encode())
}

func TestEncodeBody(t *testing.T) {
	body, err := httpclient.EncodeBody(map[string]any{"url": "https://a.example/?x=1&y=2"})
	require.NoError(t, err)
	assert.Equal(t, `{"url":"https://a.example/?x=1&y=2"}`, string(body))

	body, err = httpclient.EncodeBody("plain")
	require.NoError(t, err)
	assert.Equal(t, `"plain"`, string(body))
}

func TestSendExplicitHeaderWinsIgnoringCase(t *testing.T) {
	var (
		mu   sync.Mutex
		seen = map[string]int{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("Authorization")]++
		mu.Unlock()
	}))
	defer srv.Close()

	cfg := &model.RequestConfig{
		Method:  http.MethodPost,
		URL:     srv.URL,
		Headers: trigger.BuildHeaders("tok", "", trigger.ParseHeaders([]string{"authorization: Custom"})),
		Payload: map[string]any{},
		Timeout: 5 * time.Second,
	}

	c := httpclient.NewClient(nil)
	for i := 0; i < 50; i++ {
		_, err := c.Send(context.Background(), cfg)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]int{"Custom": 50}, seen)
}
