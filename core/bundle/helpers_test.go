package bundle

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"SiteFM/core/audio"
)

// fakeProber returns canned metadata keyed by base name.
type fakeProber struct {
	meta map[string]audio.Metadata
	fail map[string]bool
}

func (p *fakeProber) Probe(_ context.Context, path string) (audio.Metadata, error) {
	name := filepath.Base(path)
	if p.fail[name] {
		return audio.Metadata{}, errors.New("probe: boom")
	}
	return p.meta[name], nil
}

// fakeEncoder writes a marker file per encode and records the calls.
type fakeEncoder struct {
	available bool
	fail      map[audio.Codec]bool

	mu         sync.Mutex
	calls      []string
	availCalls int
}

func (e *fakeEncoder) Available(context.Context) bool {
	e.mu.Lock()
	e.availCalls++
	e.mu.Unlock()
	return e.available
}

func (e *fakeEncoder) Encode(_ context.Context, codec audio.Codec, input, output, bitrate string) error {
	e.mu.Lock()
	e.calls = append(e.calls, string(codec)+":"+filepath.Base(input)+":"+bitrate)
	e.mu.Unlock()
	if e.fail[codec] {
		return errors.New("encode: boom")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	return os.WriteFile(output, []byte(string(codec)+" of "+filepath.Base(input)), 0o644)
}

func touch(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func ptr(f float64) *float64 { return &f }

// listFiles returns the slash paths of every regular file below root.
func listFiles(t *testing.T, root string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			rel, _ := filepath.Rel(root, p)
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}
