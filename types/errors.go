package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for run failure classification.
// Use errors.Is(err, ErrXxx) rather than matching messages.
var (
	// ErrConfiguration indicates bad arguments or configuration, detected
	// before any file is touched.
	ErrConfiguration = errors.New("configuration error")

	// ErrMalformedInput indicates the FASTA input could not be parsed.
	ErrMalformedInput = errors.New("malformed input")

	// ErrExternalTool indicates the prediction tool failed for a chunk.
	ErrExternalTool = errors.New("external tool failed")

	// ErrSchemaViolation indicates a tool output line broke the expected layout.
	ErrSchemaViolation = errors.New("schema violation")
)

// ConfigurationError reports an invalid argument or setting.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// MalformedInputError reports a FASTA line that cannot appear where it does.
type MalformedInputError struct {
	// Path is the input file, if known.
	Path string
	// Line is the 1-based line number.
	Line int
	// Text is the offending line without its newline.
	Text string
	// Reason describes the violation.
	Reason string
}

func (e *MalformedInputError) Error() string {
	loc := fmt.Sprintf("line %d", e.Line)
	if e.Path != "" {
		loc = fmt.Sprintf("%s:%d", e.Path, e.Line)
	}
	return fmt.Sprintf("bad FASTA line at %s: %s: %q", loc, e.Reason, e.Text)
}

// Is matches ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// ExternalToolError reports a failed tool invocation.
type ExternalToolError struct {
	// Command is the shell-style rendering of the failing invocation.
	Command string
	// ExitCode is the process exit status, or -1 if it never ran to exit.
	ExitCode int
	// Stderr is the tool's captured standard error, possibly truncated.
	Stderr string
	// Err is the underlying start or wait error, if any.
	Err error
}

func (e *ExternalToolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("tool failed with exit code %d: %s: %v", e.ExitCode, e.Command, e.Err)
	}
	msg := fmt.Sprintf("tool failed with exit code %d: %s", e.ExitCode, e.Command)
	if s := firstLine(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ExternalToolError) Unwrap() error { return e.Err }

// Is matches ErrExternalTool.
func (e *ExternalToolError) Is(target error) bool { return target == ErrExternalTool }

// SchemaViolationError reports a raw tool output line that does not fit the
// expected field layout.
type SchemaViolationError struct {
	// Path is the result file, if known.
	Path string
	// Line is the 1-based line number within Path.
	Line int
	// Reason describes the violated rule.
	Reason string
}

func (e *SchemaViolationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("schema violation at %s:%d: %s", e.Path, e.Line, e.Reason)
	}
	if e.Line > 0 {
		return fmt.Sprintf("schema violation at line %d: %s", e.Line, e.Reason)
	}
	return "schema violation: " + e.Reason
}

// Is matches ErrSchemaViolation.
func (e *SchemaViolationError) Is(target error) bool { return target == ErrSchemaViolation }

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
