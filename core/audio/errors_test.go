package audio

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTail_KeepsRuneBoundary(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"abcdef", 3, "def"},
		{"a错误", 4, "误"},
		{"错误", 6, "错误"},
	}
	for _, c := range cases {
		if got := tail(c.in, c.n); got != c.want {
			t.Errorf("tail(%q, %d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestToolError_TrimsLocalizedOutput(t *testing.T) {
	output := strings.Repeat("无法打开输入文件", 40)
	err := toolError(filepath.Join(t.TempDir(), "no-ffmpeg"), errors.New("exit status 1"), output)

	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatalf("expected *ToolError, got %T", err)
	}
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("missing binary should be ErrToolMissing: %v", err)
	}
	if len(te.Output) > maxOutputInError {
		t.Fatalf("output not trimmed: %d bytes", len(te.Output))
	}
	if !utf8.ValidString(te.Output) || !strings.HasSuffix(output, te.Output) {
		t.Fatalf("output is not a valid tail: %q", te.Output)
	}
}
