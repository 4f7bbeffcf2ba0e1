package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/GeneralBots/botcoder/parser"
	"github.com/GeneralBots/botcoder/patch"
)

// ErrUnknownTool is reported for tool names the executor does not handle.
var ErrUnknownTool = errors.New("unknown tool")

// ErrCommandFailed wraps failures to start a command.
var ErrCommandFailed = errors.New("command could not be started")

// Result pairs a call with its textual result.
type Result struct {
	Call   parser.ToolCall `json:"call"`
	Output string          `json:"output"`

	// Err is set when the call failed. Output already describes the failure.
	Err error `json:"-"`
}

// Executor dispatches tool calls inside a project root.
type Executor struct {
	root    string
	fs      afero.Fs
	files   afero.Fs
	patcher *patch.Patcher
	runner  Runner
	logger  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunner sets the command runner.
func WithRunner(r Runner) Option {
	return func(e *Executor) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithFs sets the filesystem used for reads and patches.
func WithFs(fsys afero.Fs) Option {
	return func(e *Executor) {
		if fsys != nil {
			e.fs = fsys
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an executor confined to root.
func New(root string, opts ...Option) *Executor {
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	e := &Executor{
		root:   root,
		fs:     afero.NewOsFs(),
		runner: ShellRunner{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.files = afero.NewBasePathFs(e.fs, root)
	e.patcher = patch.New(e.fs, root, patch.WithLogger(e.logger))
	return e
}

// Root returns the absolute project root.
func (e *Executor) Root() string {
	return e.root
}

// Execute runs one call and returns its textual result.
func (e *Executor) Execute(ctx context.Context, call parser.ToolCall) string {
	out, _ := e.execute(ctx, call)
	return out
}

// ExecuteAll runs calls sequentially, in order. It stops early only when
// ctx is done; the remaining calls are reported as cancelled.
func (e *Executor) ExecuteAll(ctx context.Context, calls []parser.ToolCall) []Result {
	results := make([]Result, 0, len(calls))
	for _, call := range calls {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{
				Call:   call,
				Output: "Error: " + err.Error(),
				Err:    err,
			})
			continue
		}
		out, err := e.execute(ctx, call)
		results = append(results, Result{Call: call, Output: out, Err: err})
	}
	return results
}

func (e *Executor) execute(ctx context.Context, call parser.ToolCall) (string, error) {
	e.logger.Debug("executing tool", "tool", call.Name, "call", call.String())

	switch call.Name {
	case parser.ToolReadFile:
		return e.readFile(call.Parameter)
	case parser.ToolWriteFileDelta:
		return e.writeDelta(call)
	case parser.ToolExecuteCommand:
		return e.executeCommand(ctx, call.Parameter)
	default:
		return "Unknown tool: " + call.Name, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}
}

func (e *Executor) readFile(rel string) (string, error) {
	name, err := patch.Resolve(rel)
	if err != nil {
		return "Error: Unsafe file path", err
	}
	data, err := afero.ReadFile(e.files, name)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err), err
	}
	return string(data), nil
}

func (e *Executor) writeDelta(call parser.ToolCall) (string, error) {
	spec, err := call.Spec()
	if err != nil {
		return "Error: " + err.Error(), err
	}
	out := e.patcher.Apply(spec.Path, spec.Old, spec.New)
	return out.String(), out.Err()
}

func (e *Executor) executeCommand(ctx context.Context, command string) (string, error) {
	res, err := e.runner.Run(ctx, e.root, command)
	if err != nil {
		e.logger.Warn("command could not be started", "command", command, "error", err)
		return fmt.Sprintf("Error executing command: %v", err), fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	e.logger.Debug("command finished", "command", command, "exit_code", res.ExitCode)
	return FormatRunResult(res), nil
}
