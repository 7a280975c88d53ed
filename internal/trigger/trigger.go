package trigger

import (
	"context"
	"io"

	"go.uber.org/zap"

	"flowtrigger/internal/format"
	"flowtrigger/internal/model"
)

// Sender issues the single HTTP request
type Sender interface {
	Send(ctx context.Context, cfg *model.RequestConfig) (*model.Response, error)
}

// Recorder keeps a record of sent requests
type Recorder interface {
	Record(cfg *model.RequestConfig, resp *model.Response) error
}

// Runner previews or sends one resolved request and prints the outcome
type Runner struct {
	Sender   Sender
	Out      io.Writer
	Recorder Recorder // optional
	Log      *zap.Logger
	Verbose  bool
}

// Run prints the resolved request and returns when dryRun is set.
// Otherwise it sends the request exactly once and prints the status code
// and normalized body. Non-2xx responses are not errors.
func (r *Runner) Run(ctx context.Context, cfg *model.RequestConfig, dryRun bool) (*model.Response, error) {
	log := r.logger()

	if dryRun {
		if err := format.WriteSummary(r.Out, cfg); err != nil {
			return nil, err
		}
		return nil, nil
	}

	log.Debug("sending request",
		zap.String("method", cfg.Method),
		zap.String("url", cfg.URL),
		zap.Duration("timeout", cfg.Timeout),
	)

	resp, err := r.Sender.Send(ctx, cfg)
	if err != nil {
		if IsTransport(err) || IsConfig(err) {
			return nil, err
		}
		return nil, TransportError(err)
	}

	log.Debug("response received",
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", resp.DurationMs),
	)

	format.WriteResponse(r.Out, resp, r.Verbose)

	if r.Recorder != nil {
		if err := r.Recorder.Record(cfg, resp); err != nil {
			log.Warn("failed to save request to history", zap.Error(err))
		}
	}

	return resp, nil
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
