package cmd

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpclient "flowtrigger/internal/http"
	"flowtrigger/internal/model"
	"flowtrigger/internal/storage"
	"flowtrigger/internal/trigger"
)

// sensitiveHeaders is a list of headers that should be redacted before storing in history
var sensitiveHeaders = map[string]bool{
	// Standard authentication headers
	"authorization":       true,
	"proxy-authorization": true,
	"x-shared-secret":     true,

	// Session and token headers
	"cookie":       true,
	"set-cookie":   true,
	"x-api-key":    true,
	"api-key":      true,
	"x-auth-token": true,
	"x-csrf-token": true,

	// Azure / Power Platform
	"x-ms-client-principal":   true,
	"x-ms-token-aad-id-token": true,

	"x-access-token":  true,
	"x-refresh-token": true,
	"x-secret-key":    true,
}

// triggerFlags holds the request flags shared by the root and forward commands
type triggerFlags struct {
	opts      trigger.Options
	dryRun    bool
	noHistory bool
}

func (f *triggerFlags) bind(cmd *cobra.Command, withMethod bool) {
	flags := cmd.Flags()
	flags.StringVar(&f.opts.URL, "url", "", "Flow trigger URL or saved flow name (or set FLOW_URL)")
	flags.StringVar(&f.opts.PayloadPath, "payload", "", "Path to JSON payload file")
	flags.StringVarP(&f.opts.Data, "data", "d", "", "Inline JSON string payload (ignored when --payload is given)")
	if withMethod {
		flags.StringVarP(&f.opts.Method, "method", "X", trigger.DefaultMethod, "HTTP method: "+strings.Join(trigger.Methods, ", "))
	}
	flags.StringVar(&f.opts.Bearer, "bearer", "", "Auth Bearer token (or set FLOW_BEARER)")
	flags.StringVar(&f.opts.Secret, "secret", "", "Shared secret header (or set FLOW_SECRET)")
	flags.StringArrayVarP(&f.opts.Headers, "header", "H", []string{}, "Extra header as 'Key:Value' (can be used multiple times)")
	flags.IntVar(&f.opts.Timeout, "timeout", trigger.DefaultTimeout, "Request timeout seconds")
	flags.BoolVar(&f.dryRun, "dry-run", false, "Print the resolved request and exit without sending")
	flags.BoolVar(&f.noHistory, "no-history", false, "Don't save to history")
}

// resolve builds the request configuration. store may be nil, in which
// case saved flow names are not resolved.
func (f *triggerFlags) resolve(store *storage.SQLiteStorage) (*model.RequestConfig, error) {
	var flows trigger.FlowLookup
	if store != nil {
		flows = store
	}
	return trigger.Resolve(f.opts, env, flows)
}

// send previews or sends cfg. The response is nil for a dry run.
func (f *triggerFlags) send(cmd *cobra.Command, store *storage.SQLiteStorage, cfg *model.RequestConfig) (*model.Response, error) {
	runner := &trigger.Runner{
		Sender:  httpclient.NewClient(log),
		Out:     cmd.OutOrStdout(),
		Log:     log,
		Verbose: verbose,
	}
	if store != nil && !f.noHistory {
		runner.Recorder = &historyRecorder{store: store}
	}

	return runner.Run(cmd.Context(), cfg, f.dryRun)
}

// needsStore reports whether the store has work to do: a saved flow name
// to look up, or a sent request to record
func (f *triggerFlags) needsStore() bool {
	target := f.opts.URL
	if target == "" {
		target = env.URL
	}
	if target == "" {
		return false
	}
	if !strings.Contains(target, "://") {
		return true
	}
	return !f.dryRun && !f.noHistory
}

// openStore opens the store only when needsStore says so
func (f *triggerFlags) openStore() *storage.SQLiteStorage {
	if !f.needsStore() {
		return nil
	}
	return openStore()
}

func runTrigger(cmd *cobra.Command, args []string) error {
	store := rootFlags.openStore()
	if store != nil {
		defer store.Close()
	}

	cfg, err := rootFlags.resolve(store)
	if err != nil {
		return err
	}
	_, err = rootFlags.send(cmd, store, cfg)
	return err
}

// openStore opens the history store. Failure only costs history and
// saved-flow lookups, so it is logged rather than returned.
func openStore() *storage.SQLiteStorage {
	store, err := storage.NewStorage()
	if err != nil {
		log.Warn("history store unavailable", zap.Error(err))
		return nil
	}
	return store
}

// historyRecorder saves sent requests with credentials redacted
type historyRecorder struct {
	store *storage.SQLiteStorage
}

func (h *historyRecorder) Record(cfg *model.RequestConfig, resp *model.Response) error {
	body, err := httpclient.EncodeBody(cfg.Payload)
	if err != nil {
		return err
	}

	var filteredResp *model.Response
	if resp != nil {
		filteredResp = &model.Response{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Headers:    filterSensitiveHeaders(resp.Headers),
			Body:       resp.Body,
			DurationMs: resp.DurationMs,
		}
	}

	return h.store.AddToHistory(model.Request{
		ID:        uuid.New().String()[:8],
		Timestamp: time.Now(),
		Method:    cfg.Method,
		URL:       cfg.URL,
		Headers:   filterSensitiveHeaders(cfg.Headers),
		Body:      string(body),
		Response:  filteredResp,
	})
}

// filterSensitiveHeaders returns a copy of headers with sensitive values redacted
func filterSensitiveHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}

	filtered := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
