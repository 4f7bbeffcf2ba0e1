package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// RunResult is the captured outcome of a command.
type RunResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exit_code"`
}

// Runner runs a shell command in a directory.
// An error means the command could not be started at all; a command that
// runs and fails is reported through RunResult.ExitCode.
type Runner interface {
	Run(ctx context.Context, dir, command string) (RunResult, error)
}

// sensitiveEnvSuffixes mark variables withheld from commands.
var sensitiveEnvSuffixes = []string{
	"_API_KEY",
	"_KEY",
	"_SECRET",
	"_TOKEN",
	"_PASSWORD",
	"_CREDENTIAL",
}

// safeEnvVars pass through even when they match a suffix.
var safeEnvVars = map[string]bool{
	"PATH": true, "HOME": true, "USER": true, "SHELL": true,
	"LANG": true, "TERM": true, "TMPDIR": true,
	"GOPATH": true, "GOROOT": true, "CARGO_HOME": true, "RUSTUP_HOME": true,
}

// ShellRunner runs commands through the platform shell.
type ShellRunner struct {
	// PassSecrets disables filtering of credential-like environment
	// variables.
	PassSecrets bool
}

// Run implements Runner.
func (r ShellRunner) Run(ctx context.Context, dir, command string) (RunResult, error) {
	name, flag := shellFor(runtime.GOOS)
	cmd := exec.CommandContext(ctx, name, flag, command)
	cmd.Dir = dir
	if !r.PassSecrets {
		cmd.Env = filterEnvironment(os.Environ())
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, err
		}
		// ExitCode is -1 when the process was killed by a signal.
		result.ExitCode = exitErr.ExitCode()
	}
	return result, nil
}

func shellFor(goos string) (name, flag string) {
	if goos == "windows" {
		return "cmd", "/C"
	}
	return "sh", "-c"
}

func isSensitiveEnvVar(name string) bool {
	upper := strings.ToUpper(name)
	for _, suffix := range sensitiveEnvSuffixes {
		if strings.HasSuffix(upper, suffix) {
			return true
		}
	}
	return false
}

func filterEnvironment(environ []string) []string {
	filtered := make([]string, 0, len(environ))
	for _, kv := range environ {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if safeEnvVars[name] || !isSensitiveEnvVar(name) {
			filtered = append(filtered, kv)
		}
	}
	return filtered
}

// FormatRunResult renders a result in the fixed three-section layout.
func FormatRunResult(r RunResult) string {
	return fmt.Sprintf("stdout:\n%s\nstderr:\n%s\nexit_code: %d", r.Stdout, r.Stderr, r.ExitCode)
}
