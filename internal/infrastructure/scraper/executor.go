// Package scraper implements the boundary to the external content-discovery
// subprocess: bounded execution, strict parsing of its stdout document, and
// mapping of discovered lesson records into the catalog domain.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"github.com/infoapp-hub/learning-engine/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// SUBPROCESS EXECUTOR
// ══════════════════════════════════════════════════════════════════════════════

// ExecResult holds the captured output of one subprocess invocation.
// Stdout and stderr are captured separately: stdout carries the structured
// result document, stderr carries diagnostics.
type ExecResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Duration time.Duration
}

// Executor runs the external discovery command. Implemented by
// CommandExecutor; faked in tests.
type Executor interface {
	// Execute runs the command with a hard timeout. On timeout the
	// subprocess is terminated and shared.ErrScrapeTimeout is returned;
	// a non-zero exit returns shared.ErrScrapeProcess.
	Execute(ctx context.Context, timeout time.Duration) (*ExecResult, error)
}

// CommandExecutor executes a fixed command line via os/exec.
type CommandExecutor struct {
	command string
	args    []string
	dir     string
	logger  *slog.Logger
}

// CommandExecutorConfig contains configuration for CommandExecutor.
type CommandExecutorConfig struct {
	// Command is the executable to invoke (e.g., "python3").
	Command string

	// Args are the command arguments (e.g., ["scraper.py"]).
	Args []string

	// Dir is the working directory for the subprocess.
	Dir string

	// Logger for structured logging.
	Logger *slog.Logger
}

// NewCommandExecutor creates a CommandExecutor.
func NewCommandExecutor(cfg CommandExecutorConfig) *CommandExecutor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &CommandExecutor{
		command: cfg.Command,
		args:    cfg.Args,
		dir:     cfg.Dir,
		logger:  cfg.Logger,
	}
}

// Execute implements Executor.
func (e *CommandExecutor) Execute(ctx context.Context, timeout time.Duration) (*ExecResult, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, e.command, e.args...)
	cmd.Dir = e.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	e.logger.Debug("invoking discovery subprocess", "command", e.command, "timeout", timeout.String())

	err := cmd.Run()
	result := &ExecResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		Duration: time.Since(start),
	}

	if runCtx.Err() == context.DeadlineExceeded {
		return result, shared.WrapDomainError("scraper", "Execute", shared.ErrScrapeTimeout,
			fmt.Sprintf("subprocess exceeded %s", timeout), runCtx.Err())
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, shared.WrapDomainError("scraper", "Execute", shared.ErrScrapeProcess,
				fmt.Sprintf("subprocess exited with code %d: %s", result.ExitCode, firstLine(result.Stderr)), err)
		}
		return result, shared.WrapDomainError("scraper", "Execute", shared.ErrScrapeProcess,
			"subprocess failed to start", err)
	}

	e.logger.Debug("discovery subprocess finished",
		"duration", result.Duration.String(),
		"stdout_bytes", len(result.Stdout),
	)
	return result, nil
}

// firstLine returns the first line of diagnostic output for error messages.
func firstLine(b []byte) string {
	if idx := bytes.IndexByte(b, '\n'); idx >= 0 {
		b = b[:idx]
	}
	const max = 200
	if len(b) > max {
		b = b[:max]
	}
	return string(bytes.TrimSpace(b))
}
