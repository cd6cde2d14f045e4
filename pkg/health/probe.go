package health

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/cuemby/opsboard/pkg/log"
	"github.com/cuemby/opsboard/pkg/metrics"
)

// FailureReason is the diagnostic code attached to a ProbeFailure
type FailureReason string

const (
	ReasonTimeout   FailureReason = "timeout"
	ReasonExit      FailureReason = "exit"
	ReasonSpawn     FailureReason = "spawn"
	ReasonNoCommand FailureReason = "no-command"
	ReasonCanceled  FailureReason = "canceled"
)

// ProbeFailure reports why a probe produced no usable output. The
// underlying exec error is logged, not carried.
type ProbeFailure struct {
	Reason   FailureReason
	ExitCode int
	Duration time.Duration
}

func (f *ProbeFailure) Error() string {
	if f.Reason == ReasonExit {
		return fmt.Sprintf("probe failed: %s (code %d)", f.Reason, f.ExitCode)
	}
	return fmt.Sprintf("probe failed: %s", f.Reason)
}

// AsProbeFailure extracts the *ProbeFailure from err
func AsProbeFailure(err error) (*ProbeFailure, bool) {
	var failure *ProbeFailure
	ok := errors.As(err, &failure)
	return failure, ok
}

// Probe runs the external health-check command
type Probe struct {
	// Command is the command to execute (e.g., ["openclaw", "health", "--verbose"])
	Command []string

	// Dir is the working directory; empty means the current directory
	Dir string

	// Timeout caps a single invocation (default: 10 seconds)
	Timeout time.Duration
}

// NewProbe creates a new probe for command
func NewProbe(command []string) *Probe {
	return &Probe{
		Command: command,
		Timeout: 10 * time.Second,
	}
}

// Invoke runs the probe and returns its stdout
func (p *Probe) Invoke(ctx context.Context) (RawOutput, error) {
	start := time.Now()
	logger := log.WithComponent("probe")

	if len(p.Command) == 0 {
		return "", p.fail(ReasonNoCommand, 0, start)
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, p.Command[0], p.Command[1:]...)
	cmd.Dir = p.Dir
	// A probe that forks children holding stdout open must not outlive
	// the timeout by more than this.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if stderr.Len() > 0 {
		logger.Debug().Str("stderr", truncate(stderr.String(), 200)).Msg("Probe wrote to stderr")
	}

	if err != nil {
		logger.Debug().Err(err).Strs("command", p.Command).Msg("Probe invocation failed")

		switch {
		case errors.Is(execCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
			return "", p.fail(ReasonTimeout, 0, start)
		case ctx.Err() != nil:
			return "", p.fail(ReasonCanceled, 0, start)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", p.fail(ReasonExit, exitErr.ExitCode(), start)
		}
		return "", p.fail(ReasonSpawn, 0, start)
	}

	elapsed := time.Since(start)
	metrics.ProbeInvocationsTotal.WithLabelValues("success").Inc()
	metrics.ProbeDuration.Observe(elapsed.Seconds())
	logger.Debug().Dur("duration", elapsed).Int("bytes", stdout.Len()).Msg("Probe completed")

	return RawOutput(stdout.String()), nil
}

func (p *Probe) fail(reason FailureReason, exitCode int, start time.Time) *ProbeFailure {
	elapsed := time.Since(start)
	metrics.ProbeInvocationsTotal.WithLabelValues(string(reason)).Inc()
	metrics.ProbeDuration.Observe(elapsed.Seconds())
	return &ProbeFailure{Reason: reason, ExitCode: exitCode, Duration: elapsed}
}

// WithTimeout sets the execution timeout
func (p *Probe) WithTimeout(timeout time.Duration) *Probe {
	p.Timeout = timeout
	return p
}

// WithDir sets the working directory
func (p *Probe) WithDir(dir string) *Probe {
	p.Dir = dir
	return p
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
