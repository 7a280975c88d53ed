package format

import (
	"bytes"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowtrigger/internal/model"
)

func init() {
	color.NoColor = true
}

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"object", `{"x":1}`, "{\n  \"x\": 1\n}"},
		{"key order kept", `{"b":1,"a":2}`, "{\n  \"b\": 1,\n  \"a\": 2\n}"},
		{"nested", `{"a":{"b":true}}`, "{\n  \"a\": {\n    \"b\": true\n  }\n}"},
		{"bare string", `"hi"`, `"hi"`},
		{"bare number", "42", "42"},
		{"array", "[1,2]", "[\n  1,\n  2\n]"},
		{"empty array", "[]", "[]"},
		{"plain text", "Accepted", "Accepted"},
		{"broken json", `{"x":`, `{"x":`},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeBody(tt.body))
		})
	}
}

func TestWriteResponse(t *testing.T) {
	resp := &model.Response{
		StatusCode: 202,
		Headers:    map[string]string{"X-Run-Id": "abc"},
		Body:       `{"ok":true}`,
		DurationMs: 12,
	}

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		WriteResponse(&buf, resp, false)
		assert.Equal(t, "Status: 202\n{\n  \"ok\": true\n}\n", buf.String())
	})

	t.Run("with headers", func(t *testing.T) {
		var buf bytes.Buffer
		WriteResponse(&buf, resp, true)
		assert.Contains(t, buf.String(), "Time: 12ms  Size: 11 B")
		assert.Contains(t, buf.String(), "X-Run-Id: abc")
	})
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSummary(&buf, &model.RequestConfig{
		Method:  "POST",
		URL:     "https://example.com/hook?a=1&b=2",
		Headers: map[string]string{"Content-Type": "application/json"},
		Payload: map[string]any{"name": "John"},
	})
	require.NoError(t, err)

	want := `{
  "method": "POST",
  "url": "https://example.com/hook?a=1&b=2",
  "headers": {
    "Content-Type": "application/json"
  },
  "payload": {
    "name": "John"
  }
}
`
	assert.Equal(t, want, buf.String())
}

func TestSanitizeOutput(t *testing.T) {
	assert.Equal(t, "a\\x1b[31mb", sanitizeOutput("a\x1b[31mb"))
	assert.Equal(t, "line\nnext\ttab", sanitizeOutput("line\nnext\ttab"))
	assert.Equal(t, "\\x07", sanitizeOutput("\a"))
}

func TestPrintHistoryList(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		PrintHistoryList(&buf, nil, 10)
		assert.Equal(t, "No requests in history\n", buf.String())
	})

	t.Run("limited", func(t *testing.T) {
		requests := []model.Request{
			{ID: "1", Method: "POST", URL: "https://a.example", Timestamp: time.Now(), Response: &model.Response{StatusCode: 200}},
			{ID: "2", Method: "GET", URL: "https://b.example", Timestamp: time.Now()},
			{ID: "3", Method: "PUT", URL: "https://c.example", Timestamp: time.Now()},
		}
		var buf bytes.Buffer
		PrintHistoryList(&buf, requests, 2)
		out := buf.String()
		assert.Contains(t, out, "[1] POST")
		assert.Contains(t, out, "now")
		assert.Contains(t, out, "[2] GET")
		assert.NotContains(t, out, "c.example")
		assert.Contains(t, out, "... and 1 more requests")
	})
}

func TestPrintFlowList(t *testing.T) {
	var buf bytes.Buffer
	PrintFlowList(&buf, &model.Flows{Flows: map[string]string{
		"zeta":  "https://z.example",
		"alpha": "https://a.example",
	}})
	out := buf.String()
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("alpha")), bytes.Index(buf.Bytes(), []byte("zeta")))
	assert.Contains(t, out, "alpha → https://a.example")

	buf.Reset()
	PrintFlowList(&buf, &model.Flows{})
	assert.Equal(t, "No flows saved\n", buf.String())
}
