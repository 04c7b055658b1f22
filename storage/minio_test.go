package storage

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"SiteFM/config"
)

func TestObjectKey(t *testing.T) {
	cases := []struct {
		prefix, rel, want string
	}{
		{"", "index.json", "index.json"},
		{"site", "audio/raw/a.mp3", "site/audio/raw/a.mp3"},
		{"/site/", "index.json", "site/index.json"},
	}
	for _, c := range cases {
		if got := ObjectKey(c.prefix, c.rel); got != c.want {
			t.Errorf("ObjectKey(%q, %q) = %q, want %q", c.prefix, c.rel, got, c.want)
		}
	}
}

func TestCacheControl(t *testing.T) {
	if got := CacheControl("site/index.json"); got != "no-cache" {
		t.Fatalf("manifest cache = %q", got)
	}
	if got := CacheControl("site/audio/raw/a.mp3"); got == "no-cache" {
		t.Fatalf("audio should be cacheable")
	}
}

func TestPlanUpload(t *testing.T) {
	dir := t.TempDir()
	for _, rel := range []string{"index.json", "app.js", "audio/enc/Jazz/t.m4a"} {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(p, []byte("12345"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	uploads, err := PlanUpload(dir, "pfx")
	if err != nil {
		t.Fatalf("PlanUpload: %v", err)
	}
	got := map[string]string{}
	for _, u := range uploads {
		got[u.Key] = u.ContentType
		if u.Size != 5 {
			t.Errorf("%s size = %d", u.Key, u.Size)
		}
	}
	want := map[string]string{
		"pfx/index.json":           "application/json",
		"pfx/audio/enc/Jazz/t.m4a": "audio/mp4",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("content type of %s = %q, want %q", k, got[k], v)
		}
	}
	if len(uploads) != 3 {
		t.Fatalf("uploads = %+v", uploads)
	}
}

func TestStaleKeys(t *testing.T) {
	uploads := []Upload{{Key: "s/index.json"}, {Key: "s/audio/raw/a.mp3"}}
	remote := []string{"s/index.json", "s/audio/raw/old.mp3", "s/audio/raw/a.mp3"}
	if got := StaleKeys(remote, uploads); !slices.Equal(got, []string{"s/audio/raw/old.mp3"}) {
		t.Fatalf("stale = %v", got)
	}
}

func TestNewPublisher(t *testing.T) {
	p, err := NewPublisher(config.MinioConfig{Endpoint: "127.0.0.1:9000", Bucket: "b"})
	if err != nil || p == nil {
		t.Fatalf("NewPublisher: %v", err)
	}
}
