package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/justapithecus/sigsplit/types"
)

// DefaultToolPath is the predictor binary looked up on PATH when none is set.
const DefaultToolPath = "signalp"

// maxStderrBytes bounds how much tool stderr is kept for diagnostics.
const maxStderrBytes = 64 * 1024

// Invoker runs the prediction tool on one chunk, writing its output to the
// chunk's ResultPath. A nil error means the tool exited 0 and the result file
// is complete. Implementations must not depend on other chunks, so a pool of
// invokers can process the chunk list in any order.
type Invoker interface {
	Invoke(ctx context.Context, chunk types.Chunk) (*InvocationResult, error)
}

// InvokerFactory creates an Invoker. Used for test injection.
type InvokerFactory func(config *ToolConfig) Invoker

// ToolConfig configures tool invocation.
type ToolConfig struct {
	// Path is the tool binary. Defaults to DefaultToolPath.
	Path string
	// Organism selects the tool's organism model.
	Organism types.Organism
	// Args are extra arguments placed before the chunk path.
	Args []string
	// Env holds extra environment variables; they override inherited ones.
	Env map[string]string
}

// InvocationResult describes one completed or failed tool run.
type InvocationResult struct {
	// Chunk is the chunk ordinal.
	Chunk int `json:"chunk"`
	// Command is the shell-style rendering of the invocation.
	Command string `json:"command"`
	// ExitCode is the process exit code, or -1 if the process did not exit
	// normally.
	ExitCode int `json:"exit_code"`
	// Stderr is the captured standard error, cut at 64 KiB.
	Stderr string `json:"stderr,omitempty"`
	// Duration is the wall time of the invocation.
	Duration time.Duration `json:"duration_ns"`
}

// ToolManager invokes the tool as a child process, one chunk at a time.
type ToolManager struct {
	config *ToolConfig
}

// NewToolManager creates a new tool manager.
func NewToolManager(config *ToolConfig) *ToolManager {
	return &ToolManager{config: config}
}

func (m *ToolManager) path() string {
	if m.config.Path == "" {
		return DefaultToolPath
	}
	return m.config.Path
}

// Args builds the argument list for chunk:
// -short -t <organism> [extra args...] <chunk input>.
func (m *ToolManager) Args(chunk types.Chunk) []string {
	args := make([]string, 0, 4+len(m.config.Args))
	args = append(args, "-short", "-t", m.config.Organism.Flag())
	args = append(args, m.config.Args...)
	return append(args, chunk.InputPath)
}

// Command renders the invocation for chunk as a shell command line,
// including the stdout redirect.
func (m *ToolManager) Command(chunk types.Chunk) string {
	parts := []string{shellQuote(m.path())}
	for _, a := range m.Args(chunk) {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ") + " > " + shellQuote(chunk.ResultPath)
}

// Invoke runs the tool synchronously with stdout redirected into
// chunk.ResultPath. Failure to start, a non-zero exit and cancellation are
// all reported as *types.ExternalToolError.
func (m *ToolManager) Invoke(ctx context.Context, chunk types.Chunk) (*InvocationResult, error) {
	result := &InvocationResult{
		Chunk:    chunk.Index,
		Command:  m.Command(chunk),
		ExitCode: -1,
	}

	out, err := os.Create(chunk.ResultPath)
	if err != nil {
		return result, fmt.Errorf("create result file: %w", err)
	}

	var stderr limitedBuffer
	stderr.limit = maxStderrBytes

	cmd := exec.CommandContext(ctx, m.path(), m.Args(chunk)...)
	cmd.Stdout = out
	cmd.Stderr = &stderr
	if len(m.config.Env) > 0 {
		cmd.Env = deduplicateEnv(append(os.Environ(), envList(m.config.Env)...))
	}

	start := time.Now()
	runErr := cmd.Run()
	result.Duration = time.Since(start)
	result.Stderr = stderr.String()

	if cerr := out.Close(); cerr != nil && runErr == nil {
		return result, fmt.Errorf("close result file: %w", cerr)
	}

	if runErr == nil {
		result.ExitCode = 0
		return result, nil
	}

	toolErr := &types.ExternalToolError{
		Command:  result.Command,
		ExitCode: -1,
		Stderr:   result.Stderr,
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			result.ExitCode = status.ExitStatus()
		} else {
			result.ExitCode = exitErr.ExitCode()
		}
		toolErr.ExitCode = result.ExitCode
	} else {
		toolErr.Err = runErr
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		toolErr.Err = ctxErr
	}
	return result, toolErr
}

// envList renders env in key order so command environments are reproducible.
func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}

// deduplicateEnv keeps the last occurrence of each env var key.
// This ensures configured values win over inherited duplicates from
// os.Environ().
func deduplicateEnv(env []string) []string {
	seen := make(map[string]int, len(env))
	for i, entry := range env {
		key, _, _ := strings.Cut(entry, "=")
		seen[key] = i
	}
	result := make([]string, 0, len(seen))
	for i, entry := range env {
		key, _, _ := strings.Cut(entry, "=")
		if seen[key] == i {
			result = append(result, entry)
		}
	}
	return result
}

// shellQuote single-quotes s unless it only holds characters that are safe
// unquoted in a POSIX shell.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, c := range s {
		if !isShellSafe(c) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isShellSafe(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.ContainsRune("-_./+=:,@%", c)
}

// limitedBuffer keeps the first limit bytes written and drops the rest
// while still reporting full writes, so the child never blocks on stderr.
type limitedBuffer struct {
	buf   bytes.Buffer
	limit int
	cut   bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
			b.cut = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.cut = true
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	if b.cut {
		return b.buf.String() + "\n[stderr truncated]"
	}
	return b.buf.String()
}
