// Package workflow sequences a single monitored invocation: optional start
// ping, command execution, payload formatting and the completion ping.
package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deixis/hcrun/internal/checkin"
	"github.com/deixis/hcrun/internal/report"
	"github.com/deixis/hcrun/internal/runner"
)

// CommandRunner executes the monitored command.
// Implemented by runner.Runner.
type CommandRunner interface {
	Run(ctx context.Context, argv []string, capture bool) *runner.Result
}

// Notifier delivers check-ins.
// Implemented by checkin.Client.
type Notifier interface {
	NotifyStart(ctx context.Context, runID uuid.NullUUID) (*checkin.Response, error)
	NotifyComplete(ctx context.Context, runID uuid.NullUUID, code *uint8, body string) (*checkin.Response, error)
}

// Invocation describes one monitored run.
type Invocation struct {
	Command  []string       // argv of the monitored command
	Time     bool           // ping start as well as completion, paired by a run ID
	PingOnly bool           // report only the exit code, no output
	Format   report.Options // how the completion body is built
}

// Engine holds the dependencies of an invocation.
type Engine struct {
	Runner   CommandRunner
	Notifier Notifier
	Logger   zerolog.Logger

	// NewRunID generates the correlation token; uuid.New when nil.
	NewRunID func() uuid.UUID
}

// Run performs inv. A failed start ping is logged and ignored; the command
// runs regardless. The completion ping's error is the only error returned,
// since it is what records the outcome.
func (e *Engine) Run(ctx context.Context, inv Invocation) (*checkin.Response, error) {
	var runID uuid.NullUUID
	if inv.Time {
		runID = uuid.NullUUID{UUID: e.newRunID(), Valid: true}
		if _, err := e.Notifier.NotifyStart(ctx, runID); err != nil {
			e.Logger.Warn().Err(err).Msg("failed to send start ping")
		}
	}

	res := e.Runner.Run(ctx, inv.Command, !inv.PingOnly)
	payload := report.Format(res, inv.Command, inv.Format)

	e.Logger.Debug().
		Stringer("status", res.Status).
		Bool("log_only", payload.IsLog()).
		Int("body_bytes", len(payload.Text)).
		Msg("reporting completion")

	resp, err := e.Notifier.NotifyComplete(ctx, runID, payload.ExitCode, payload.Text)
	if err != nil {
		return resp, fmt.Errorf("completion ping: %w", err)
	}
	return resp, nil
}

func (e *Engine) newRunID() uuid.UUID {
	if e.NewRunID != nil {
		return e.NewRunID()
	}
	return uuid.New()
}
