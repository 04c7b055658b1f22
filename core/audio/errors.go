package audio

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"
)

// Error kinds returned by the probe and encode steps. Callers match them
// with errors.Is to decide whether to degrade.
var (
	ErrToolMissing = errors.New("tool not found")
	ErrToolFailed  = errors.New("tool failed")
	ErrBadOutput   = errors.New("unparsable tool output")
)

// ToolError records a failed subprocess call.
type ToolError struct {
	Tool   string
	Kind   error
	Err    error
	Output string // trimmed combined output, may be empty
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *ToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

const maxOutputInError = 512

// tail keeps at most n trailing bytes of s, starting on a rune boundary.
func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	i := len(s) - n
	for i < len(s) && !utf8.RuneStart(s[i]) {
		i++
	}
	return s[i:]
}

func toolError(tool string, err error, output string) error {
	kind := ErrToolFailed
	if _, lookErr := exec.LookPath(tool); lookErr != nil {
		kind = ErrToolMissing
	}
	output = strings.TrimSpace(output)
	output = tail(output, maxOutputInError)
	return &ToolError{Tool: tool, Kind: kind, Err: err, Output: output}
}
