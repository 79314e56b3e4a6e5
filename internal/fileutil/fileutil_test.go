package fileutil_test

import (
	"os"
	"path/filepath"
	"testing"

	"clipforge/internal/fileutil"
)

func TestCopyFilePreservesContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	payload := []byte("clip payload")
	if err := os.WriteFile(src, payload, 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := fileutil.CopyFile(src, dst); err != nil {
		t.Fatalf("copy: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dst: %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("content mismatch: %q", got)
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")
	if err := os.WriteFile(src, []byte("verified copy"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}
	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		t.Fatalf("copy verified: %v", err)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat dst: %v", err)
	}
	if info.Size() != int64(len("verified copy")) {
		t.Fatalf("unexpected size %d", info.Size())
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := map[string]string{
		`Talk: Part 1/2`:        "Talk- Part 1-2",
		`What? "Quotes" <here>`: "What Quotes here",
		`a|b*c\d`:               "a-b-c-d",
		"  plain name  ":        "plain name",
		"":                      "",
	}
	for input, want := range cases {
		if got := fileutil.SanitizeFileName(input); got != want {
			t.Fatalf("sanitize %q: got %q, want %q", input, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	cases := map[string]string{
		"Team Meeting 2026": "team_meeting_2026",
		"":                  "unknown",
		"___":               "unknown",
		"already-safe":      "already-safe",
	}
	for input, want := range cases {
		if got := fileutil.SanitizeToken(input); got != want {
			t.Fatalf("token %q: got %q, want %q", input, got, want)
		}
	}
}
