package shell

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bnema/neruai/internal/domain"
	"github.com/bnema/neruai/internal/ports"
	"github.com/rs/zerolog"
)

const (
	DefaultTimeout     = 10 * time.Second
	DefaultOutputLimit = 1500
	waitDelay          = 500 * time.Millisecond
)

type Options struct {
	Timeout     time.Duration
	OutputLimit int
}

// Runner execs a single already validated command line without a shell.
type Runner struct {
	timeout     time.Duration
	outputLimit int
	logger      zerolog.Logger
}

var _ ports.CommandRunner = (*Runner)(nil)

func NewRunner(opts Options, logger zerolog.Logger) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.OutputLimit <= len(domain.OutputTruncatedMarker) {
		opts.OutputLimit = DefaultOutputLimit
	}

	return &Runner{timeout: opts.Timeout, outputLimit: opts.OutputLimit, logger: logger}
}

func (r *Runner) Run(ctx context.Context, command string) domain.CommandResult {
	result := domain.CommandResult{Timeout: r.timeout}

	args := strings.Fields(command)
	if len(args) == 0 {
		result.ExitCode = -1
		result.Error = "no command given"
		return result
	}

	path, err := exec.LookPath(args[0])
	if err != nil {
		result.ExitCode = -1
		result.Error = fmt.Sprintf("command %q not found", args[0])
		return result
	}

	cmdCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, path, args[1:]...)
	cmd.Env = minimalEnv()
	cmd.WaitDelay = waitDelay

	budget := &outputBudget{remaining: r.outputLimit - len(domain.OutputTruncatedMarker)}
	stdout := &cappedWriter{budget: budget}
	stderr := &cappedWriter{budget: budget}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	started := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(started)

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	if budget.truncated {
		result.Truncated = true
		if stdout.truncated {
			result.Stdout += domain.OutputTruncatedMarker
		} else {
			result.Stderr += domain.OutputTruncatedMarker
		}
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(cmdCtx.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = -1
	case runErr == nil:
		result.ExitCode = 0
	case errors.As(runErr, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		result.ExitCode = -1
		result.Error = runErr.Error()
	}

	r.logger.Debug().
		Str("command", args[0]).
		Int("exit_code", result.ExitCode).
		Bool("timed_out", result.TimedOut).
		Bool("truncated", result.Truncated).
		Dur("elapsed", elapsed).
		Msg("command finished")

	return result
}

func minimalEnv() []string {
	return []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + os.Getenv("HOME"),
		"LANG=C",
	}
}

// outputBudget is shared by stdout and stderr so their combined capture
// stays under the limit.
type outputBudget struct {
	mu        sync.Mutex
	remaining int
	truncated bool
}

type cappedWriter struct {
	budget *outputBudget
	buf    []byte
	cut    bool
	// truncated marks the stream that hit the limit first.
	truncated bool
}

func (w *cappedWriter) Write(p []byte) (int, error) {
	w.budget.mu.Lock()
	defer w.budget.mu.Unlock()

	take := len(p)
	if take > w.budget.remaining {
		take = w.budget.remaining
		w.cut = true
		if !w.budget.truncated {
			w.truncated = true
		}
		w.budget.truncated = true
	}
	w.buf = append(w.buf, p[:take]...)
	w.budget.remaining -= take

	// Report the full length so the child never sees a short write.
	return len(p), nil
}

func (w *cappedWriter) String() string {
	w.budget.mu.Lock()
	defer w.budget.mu.Unlock()

	if !w.cut {
		return string(w.buf)
	}
	return string(trimPartialRune(w.buf))
}

func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax-1 && len(b) > 0; i++ {
		r, size := utf8.DecodeLastRune(b)
		if r != utf8.RuneError || size != 1 {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
