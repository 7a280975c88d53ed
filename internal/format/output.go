package format

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/tidwall/pretty"

	"flowtrigger/internal/model"
)

// sanitizeOutput removes or escapes potentially dangerous control characters
// that could manipulate terminal display or execute commands
func sanitizeOutput(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			result.WriteRune(r)
		case r == '\x1b':
			// Escape ANSI escape sequences - replace ESC with visible representation
			result.WriteString("\\x1b")
		case unicode.IsControl(r) && r < 0x20:
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		case r == 0x7F:
			result.WriteString("\\x7f")
		default:
			result.WriteRune(r)
		}
	}

	return result.String()
}

var (
	successColor   = color.New(color.FgGreen, color.Bold)
	redirectColor  = color.New(color.FgYellow, color.Bold)
	clientErrColor = color.New(color.FgRed, color.Bold)
	serverErrColor = color.New(color.FgRed, color.Bold, color.BgWhite)
	headerKeyColor = color.New(color.FgCyan)
	methodColor    = color.New(color.FgMagenta, color.Bold)
	urlColor       = color.New(color.FgBlue)
	dimColor       = color.New(color.Faint)
)

var prettyOptions = &pretty.Options{Indent: "  "}

// NormalizeBody re-renders any valid JSON body with two-space indentation,
// keeping key order. Anything else is returned unchanged.
func NormalizeBody(body string) string {
	if !json.Valid([]byte(body)) {
		return body
	}
	out := pretty.PrettyOptions([]byte(body), prettyOptions)
	return strings.TrimSuffix(string(out), "\n")
}

// WriteResponse prints the status code followed by the normalized body
func WriteResponse(w io.Writer, resp *model.Response, showHeaders bool) {
	getStatusColor(resp.StatusCode).Fprintf(w, "Status: %d\n", resp.StatusCode)

	if showHeaders {
		dimColor.Fprintf(w, "  Time: %dms  Size: %s\n", resp.DurationMs, humanize.IBytes(uint64(len(resp.Body))))
		writeHeaders(w, resp.Headers)
	}

	fmt.Fprintln(w, NormalizeBody(resp.Body))
}

type summary struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Payload model.Payload     `json:"payload"`
}

// WriteSummary prints the resolved request as one indented JSON object
func WriteSummary(w io.Writer, cfg *model.RequestConfig) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(summary{
		Method:  cfg.Method,
		URL:     cfg.URL,
		Headers: cfg.Headers,
		Payload: cfg.Payload,
	})
}

func getStatusColor(code int) *color.Color {
	switch {
	case code >= 200 && code < 300:
		return successColor
	case code >= 300 && code < 400:
		return redirectColor
	case code >= 400 && code < 500:
		return clientErrColor
	default:
		return serverErrColor
	}
}

func writeHeaders(w io.Writer, headers map[string]string) {
	if len(headers) == 0 {
		return
	}

	fmt.Fprintln(w, "Headers:")

	// Sort headers for consistent output
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		headerKeyColor.Fprintf(w, "  %s: ", sanitizeOutput(key))
		fmt.Fprintln(w, sanitizeOutput(headers[key]))
	}
	fmt.Fprintln(w)
}

// PrintRequestDetail prints full request/response details
func PrintRequestDetail(w io.Writer, req *model.Request) {
	fmt.Fprintln(w, "Request:")
	fmt.Fprintln(w, strings.Repeat("-", 40))
	methodColor.Fprintf(w, "%s ", req.Method)
	urlColor.Fprintln(w, sanitizeOutput(req.URL))
	dimColor.Fprintf(w, "ID: %s\n", req.ID)
	dimColor.Fprintf(w, "Time: %s\n\n", req.Timestamp.Format("2006-01-02 15:04:05"))

	writeHeaders(w, req.Headers)

	if req.Body != "" {
		fmt.Fprintln(w, "Payload:")
		fmt.Fprintln(w, sanitizeOutput(NormalizeBody(req.Body)))
		fmt.Fprintln(w)
	}

	if req.Response != nil {
		fmt.Fprintln(w, "\nResponse:")
		fmt.Fprintln(w, strings.Repeat("-", 40))
		getStatusColor(req.Response.StatusCode).Fprintln(w, sanitizeOutput(req.Response.Status))
		dimColor.Fprintf(w, "  Time: %dms\n\n", req.Response.DurationMs)
		writeHeaders(w, req.Response.Headers)
		fmt.Fprintln(w, sanitizeOutput(NormalizeBody(req.Response.Body)))
	}
}

// PrintHistoryList prints a list of requests in a compact format
func PrintHistoryList(w io.Writer, requests []model.Request, limit int) {
	if len(requests) == 0 {
		dimColor.Fprintln(w, "No requests in history")
		return
	}

	count := len(requests)
	if limit > 0 && limit < count {
		count = limit
	}

	for i := 0; i < count; i++ {
		req := requests[i]
		dimColor.Fprintf(w, "[%d] ", i+1)
		methodColor.Fprintf(w, "%-7s ", req.Method)

		// Truncate URL if too long, then sanitize
		url := req.URL
		if len(url) > 60 {
			url = url[:57] + "..."
		}
		urlColor.Fprintf(w, "%-60s ", sanitizeOutput(url))

		if req.Response != nil {
			getStatusColor(req.Response.StatusCode).Fprintf(w, "%d ", req.Response.StatusCode)
			dimColor.Fprintf(w, "(%dms) ", req.Response.DurationMs)
		}
		dimColor.Fprintln(w, humanize.Time(req.Timestamp))
	}

	if limit > 0 && len(requests) > limit {
		dimColor.Fprintf(w, "\n... and %d more requests\n", len(requests)-limit)
	}
}

// PrintFlowList prints saved flows sorted by name
func PrintFlowList(w io.Writer, flows *model.Flows) {
	if len(flows.Flows) == 0 {
		dimColor.Fprintln(w, "No flows saved")
		return
	}

	names := make([]string, 0, len(flows.Flows))
	for name := range flows.Flows {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "Flows:")
	for _, name := range names {
		fmt.Fprint(w, "  ")
		PrintFlow(w, name, flows.Flows[name])
	}
}

// PrintFlow prints a single saved flow
func PrintFlow(w io.Writer, name, url string) {
	headerKeyColor.Fprintf(w, "%s ", sanitizeOutput(name))
	dimColor.Fprint(w, "→ ")
	urlColor.Fprintln(w, sanitizeOutput(url))
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, msg string) {
	successColor.Fprintf(w, "✓ %s\n", msg)
}

// PrintError prints an error message
func PrintError(w io.Writer, msg string) {
	clientErrColor.Fprintf(w, "✗ %s\n", msg)
}

// PrintReply prints a chat reply under a label
func PrintReply(w io.Writer, label, text string) {
	headerKeyColor.Fprintln(w, label)
	fmt.Fprintln(w, sanitizeOutput(text))
}
