package deps_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/deps"
)

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present", "#!/bin/sh\nexit 0\n")
	reqs := []deps.Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unconfigured", Command: "", Optional: true},
	}

	results := deps.CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available {
		t.Fatal("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatal("expected detail message for missing binary")
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail: %s", results[2].Detail)
	}

	if deps.AllRequiredAvailable(results) {
		t.Fatal("expected required availability to fail with missing binary")
	}
	if !deps.AllRequiredAvailable(results[:1]) {
		t.Fatal("expected available-only list to pass")
	}
}

func TestRequirementsMarkDiarizationOptional(t *testing.T) {
	cfg := config.Default()
	cfg.Diarization.Enabled = false

	reqs := deps.Requirements(&cfg)
	var diarization *deps.Requirement
	for i := range reqs {
		if reqs[i].Name == "Diarization" {
			diarization = &reqs[i]
		}
	}
	if diarization == nil {
		t.Fatal("expected diarization requirement")
	}
	if !diarization.Optional {
		t.Fatal("expected diarization to be optional when disabled")
	}

	cfg.Diarization.Enabled = true
	reqs = deps.Requirements(&cfg)
	for _, req := range reqs {
		if req.Name == "Diarization" && req.Optional {
			t.Fatal("expected diarization to be required when enabled")
		}
	}
}

func TestParseFFmpegVersion(t *testing.T) {
	cases := []struct {
		output string
		major  int
		minor  int
	}{
		{"ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023", 6, 1},
		{"ffmpeg version n7.0 Copyright (c) 2000-2024", 7, 0},
		{"ffmpeg version 4.4 Copyright (c) 2000-2021\nbuilt with gcc", 4, 4},
	}
	for _, tc := range cases {
		version, err := deps.ParseFFmpegVersion(tc.output)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.output, err)
		}
		if version.Major != tc.major || version.Minor != tc.minor {
			t.Fatalf("parse %q: got %d.%d", tc.output, version.Major, version.Minor)
		}
	}
}

func TestParseFFmpegVersionRejectsGitSnapshots(t *testing.T) {
	if _, err := deps.ParseFFmpegVersion("ffmpeg version N-109615-g1234abcd Copyright"); err == nil {
		t.Fatal("expected error for git snapshot version")
	}
	if _, err := deps.ParseFFmpegVersion("not ffmpeg output"); err == nil {
		t.Fatal("expected error for unrecognized output")
	}
}

func TestCheckFFmpegVersionEnforcesFloor(t *testing.T) {
	binDir := t.TempDir()
	modern := writeStub(t, binDir, "ffmpeg-modern",
		"#!/bin/sh\necho 'ffmpeg version 6.1.1-3ubuntu5 Copyright (c) 2000-2023'\n")
	ancient := writeStub(t, binDir, "ffmpeg-ancient",
		"#!/bin/sh\necho 'ffmpeg version 3.4.8 Copyright (c) 2000-2020'\n")

	status := deps.CheckFFmpegVersion(context.Background(), modern)
	if !status.Available {
		t.Fatalf("expected modern ffmpeg to pass, detail: %s", status.Detail)
	}
	if !strings.Contains(status.Detail, "6.1") {
		t.Fatalf("expected resolved version in detail, got %q", status.Detail)
	}

	status = deps.CheckFFmpegVersion(context.Background(), ancient)
	if status.Available {
		t.Fatal("expected ancient ffmpeg to fail the floor")
	}
	if !strings.Contains(status.Detail, "older than") {
		t.Fatalf("expected floor message, got %q", status.Detail)
	}
}

func TestCheckFFmpegVersionMissingBinary(t *testing.T) {
	status := deps.CheckFFmpegVersion(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if status.Available {
		t.Fatal("expected missing binary to fail")
	}
	if status.Detail == "" {
		t.Fatal("expected detail for missing binary")
	}
}
