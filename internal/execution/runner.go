package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/praxis-lms/praxis-go-api/internal/languages"
	"github.com/praxis-lms/praxis-go-api/pkg/sandbox"
)

// Outcome classifies how a sandboxed run ended.
const (
	OutcomeOK           = "ok"
	OutcomeCompileError = "compile_error"
	OutcomeRuntimeError = "runtime_error"
	OutcomeTimeout      = "timeout"
)

// Result is the normalized outcome of running one piece of submitted code.
// Code-level failures (compile errors, crashes, timeouts) land here; they are
// expected, scorable behaviour. Infrastructure failures are returned as
// errors by Runner.Execute instead.
type Result struct {
	Output   string
	Error    string
	Outcome  string
	Duration time.Duration
}

// Failed reports whether the run ended in a code-level failure.
func (r Result) Failed() bool {
	return r.Outcome != OutcomeOK
}

// Config holds execution limits applied to every run.
type Config struct {
	WorkspaceRoot  string
	Timeout        time.Duration
	CompileTimeout time.Duration
	MemoryLimitMB  int64
	CPUShares      int64
}

// Runner executes untrusted code: it stages the source into a fresh
// workspace, compiles when the language requires it, and runs the program
// inside the sandbox with the provided stdin.
type Runner struct {
	executor sandbox.Executor
	cfg      Config
	logger   zerolog.Logger
}

// NewRunner constructs a Runner on top of a sandbox executor.
func NewRunner(executor sandbox.Executor, cfg Config, logger zerolog.Logger) *Runner {
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = os.TempDir()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CompileTimeout <= 0 {
		cfg.CompileTimeout = 30 * time.Second
	}
	if cfg.MemoryLimitMB <= 0 {
		cfg.MemoryLimitMB = 128
	}

	return &Runner{
		executor: executor,
		cfg:      cfg,
		logger:   logger.With().Str("component", "execution_runner").Logger(),
	}
}

// Execute runs the submitted source once. The workspace is created fresh for
// this invocation and removed afterwards; it is never shared between runs, so
// concurrent submissions cannot contaminate each other.
func (r *Runner) Execute(ctx context.Context, source, language, stdin string) (Result, error) {
	runtime, err := languages.Get(language)
	if err != nil {
		return Result{}, err
	}

	workspace, err := os.MkdirTemp(r.cfg.WorkspaceRoot, "submission-")
	if err != nil {
		return Result{}, fmt.Errorf("create workspace: %w", err)
	}
	defer os.RemoveAll(workspace)

	filePath := filepath.Join(workspace, runtime.FileName)
	if err := os.WriteFile(filePath, []byte(source), 0o600); err != nil {
		return Result{}, fmt.Errorf("write source: %w", err)
	}

	if runtime.Compiled() {
		compileRes, err := r.executor.Run(ctx, sandbox.RunRequest{
			Image:         runtime.Image,
			Cmd:           runtime.CompileCmd,
			Timeout:       r.cfg.CompileTimeout,
			Workspace:     workspace,
			MemoryLimitMB: r.cfg.MemoryLimitMB,
			CPUShares:     r.cfg.CPUShares,
		})
		if err != nil && !compileRes.TimedOut {
			return Result{}, fmt.Errorf("compile %s: %w", language, err)
		}
		if compileRes.TimedOut || compileRes.ExitCode != 0 {
			return Result{
				Error:    compileMessage(compileRes),
				Outcome:  OutcomeCompileError,
				Duration: compileRes.Duration,
			}, nil
		}
	}

	runRes, err := r.executor.Run(ctx, sandbox.RunRequest{
		Image:         runtime.Image,
		Cmd:           runtime.RunCmd,
		Stdin:         stdin,
		Timeout:       r.cfg.Timeout,
		Workspace:     workspace,
		MemoryLimitMB: r.cfg.MemoryLimitMB,
		CPUShares:     r.cfg.CPUShares,
	})

	switch {
	case runRes.TimedOut:
		return Result{
			Error:    fmt.Sprintf("execution timed out after %s", r.cfg.Timeout),
			Outcome:  OutcomeTimeout,
			Duration: runRes.Duration,
		}, nil
	case err != nil:
		return Result{}, fmt.Errorf("run %s: %w", language, err)
	case runRes.ExitCode != 0:
		message := strings.TrimSpace(runRes.Stderr)
		if message == "" {
			message = fmt.Sprintf("process exited with code %d", runRes.ExitCode)
		}
		return Result{
			Error:    message,
			Outcome:  OutcomeRuntimeError,
			Duration: runRes.Duration,
		}, nil
	}

	return Result{
		Output:   runRes.Stdout,
		Error:    strings.TrimSpace(runRes.Stderr),
		Outcome:  OutcomeOK,
		Duration: runRes.Duration,
	}, nil
}

func compileMessage(res sandbox.RunResult) string {
	if res.TimedOut {
		return "compilation timed out"
	}
	message := strings.TrimSpace(res.Stderr)
	if message == "" {
		message = fmt.Sprintf("compiler exited with code %d", res.ExitCode)
	}
	return message
}
