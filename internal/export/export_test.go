package export_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/diarize"
	"clipforge/internal/export"
	"clipforge/internal/logging"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/stage"
	"clipforge/internal/staging"
	"clipforge/internal/testsupport"
)

type concatRunner struct {
	calls [][]string
}

func (c *concatRunner) run(_ context.Context, name string, args ...string) error {
	c.calls = append(c.calls, append([]string{name}, args...))
	if len(args) > 0 {
		if err := os.WriteFile(args[len(args)-1], []byte("reel"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// stageRenderedClips fakes the render stage output: clip files in the item's
// staging directory plus the matching ClipsJSON on the item.
func stageRenderedClips(t *testing.T, cfg *config.Config, item *queue.Item, count int) render.Result {
	t.Helper()

	workDir, err := staging.EnsureItemDir(cfg.Paths.StagingDir, item.ID, item.Title)
	if err != nil {
		t.Fatalf("ensure staging dir: %v", err)
	}
	clipsDir := filepath.Join(workDir, "clips")
	if err := os.MkdirAll(clipsDir, 0o755); err != nil {
		t.Fatalf("mkdir clips: %v", err)
	}

	result := render.Result{}
	titles := []string{"Opening question", "Key idea", "Closing thought"}
	for i := 0; i < count; i++ {
		stem := render.ClipFileStem(i, titles[i%len(titles)])
		clip := render.RenderedClip{
			Index:         i,
			Title:         titles[i%len(titles)],
			Start:         float64(i * 10),
			End:           float64(i*10 + 8),
			VideoPath:     filepath.Join(clipsDir, stem+".mp4"),
			SubtitlePath:  filepath.Join(clipsDir, stem+".srt"),
			ThumbnailPath: filepath.Join(clipsDir, stem+".jpg"),
		}
		for _, path := range []string{clip.VideoPath, clip.SubtitlePath, clip.ThumbnailPath} {
			testsupport.WriteFile(t, path, 32)
		}
		result.Clips = append(result.Clips, clip)
	}

	encoded, err := stage.EncodeArtifact("test", "clips", result)
	if err != nil {
		t.Fatalf("encode clips: %v", err)
	}
	item.ClipsJSON = encoded
	return result
}

func TestExecuteExportsClipsAndManifest(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(t.TempDir(), "team_meeting.mp4")
	testsupport.WriteFile(t, source, 64)
	item := testsupport.NewFile(t, store, source)
	stageRenderedClips(t, cfg, item, 2)

	speakers := diarize.Diarization{
		Enabled: true,
		Speakers: []diarize.SpeakerSummary{
			{Speaker: "spk0", TurnCount: 3, SpeakingSeconds: 42},
		},
	}
	var err error
	if item.SpeakersJSON, err = stage.EncodeArtifact("test", "speakers", speakers); err != nil {
		t.Fatalf("encode speakers: %v", err)
	}

	exporter := export.NewExporterWithDependencies(cfg, store, logging.NewNop(), (&concatRunner{}).run, nil)
	if err := exporter.Prepare(context.Background(), item); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := exporter.Execute(context.Background(), item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if item.FinalDir == "" {
		t.Fatal("expected final dir to be set")
	}
	if filepath.Dir(item.FinalDir) != cfg.Paths.LibraryDir {
		t.Fatalf("final dir %q not under library", item.FinalDir)
	}

	raw, err := os.ReadFile(filepath.Join(item.FinalDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest export.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if manifest.Title != item.Title {
		t.Fatalf("unexpected manifest title %q", manifest.Title)
	}
	if len(manifest.Clips) != 2 {
		t.Fatalf("expected 2 manifest clips, got %d", len(manifest.Clips))
	}
	if len(manifest.Speakers) != 1 || manifest.Speakers[0].Speaker != "spk0" {
		t.Fatalf("expected speaker summary in manifest, got %+v", manifest.Speakers)
	}
	for _, clip := range manifest.Clips {
		if _, err := os.Stat(filepath.Join(item.FinalDir, clip.Video)); err != nil {
			t.Fatalf("exported video missing: %v", err)
		}
		if _, err := os.Stat(filepath.Join(item.FinalDir, clip.Subtitle)); err != nil {
			t.Fatalf("exported subtitles missing: %v", err)
		}
	}

	stagingPath := filepath.Join(cfg.Paths.StagingDir, staging.ItemDirName(item.ID, item.Title))
	if _, err := os.Stat(stagingPath); !os.IsNotExist(err) {
		t.Fatalf("expected staging dir removed, stat err = %v", err)
	}
}

func TestExecuteBuildsReel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Clips.BuildReel = true
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(t.TempDir(), "talk.mp4")
	testsupport.WriteFile(t, source, 64)
	item := testsupport.NewFile(t, store, source)
	stageRenderedClips(t, cfg, item, 3)

	runner := &concatRunner{}
	exporter := export.NewExporterWithDependencies(cfg, store, logging.NewNop(), runner.run, nil)
	if err := exporter.Execute(context.Background(), item); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if len(runner.calls) != 1 {
		t.Fatalf("expected 1 ffmpeg invocation, got %d", len(runner.calls))
	}
	args := runner.calls[0]
	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-f concat") {
		t.Fatalf("expected concat invocation, got %q", joined)
	}

	raw, err := os.ReadFile(filepath.Join(item.FinalDir, "manifest.json"))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var manifest export.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if manifest.Reel != "reel.mp4" {
		t.Fatalf("expected reel in manifest, got %q", manifest.Reel)
	}
	if _, err := os.Stat(filepath.Join(item.FinalDir, "reel.mp4")); err != nil {
		t.Fatalf("reel missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(item.FinalDir, "reel-inputs.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected concat list removed, stat err = %v", err)
	}
}

func TestExecuteSuffixesCollidingLibraryDirs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	dirA := t.TempDir()
	dirB := t.TempDir()
	exporter := export.NewExporterWithDependencies(cfg, store, logging.NewNop(), (&concatRunner{}).run, nil)

	var finalDirs []string
	for _, dir := range []string{dirA, dirB} {
		source := filepath.Join(dir, "talk.mp4")
		testsupport.WriteFile(t, source, 64)
		item := testsupport.NewFile(t, store, source)
		stageRenderedClips(t, cfg, item, 1)
		if err := exporter.Execute(context.Background(), item); err != nil {
			t.Fatalf("execute: %v", err)
		}
		finalDirs = append(finalDirs, item.FinalDir)
	}

	if finalDirs[0] == finalDirs[1] {
		t.Fatalf("expected distinct library dirs, got %q twice", finalDirs[0])
	}
	if filepath.Base(finalDirs[1]) != "talk (2)" {
		t.Fatalf("expected suffixed dir, got %q", finalDirs[1])
	}
}

func TestPrepareRejectsMissingClips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	item := testsupport.NewFile(t, store, "/videos/talk.mp4")

	exporter := export.NewExporterWithDependencies(cfg, store, logging.NewNop(), (&concatRunner{}).run, nil)
	if err := exporter.Prepare(context.Background(), item); err == nil {
		t.Fatal("expected error for missing clips")
	}
}

func TestRouteToReviewMovesSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	source := filepath.Join(t.TempDir(), "silent.mp4")
	testsupport.WriteFile(t, source, 64)
	item := testsupport.NewFile(t, store, source)
	item.SetReview("Source has no audio stream")

	target, err := export.RouteToReview(context.Background(), cfg, logging.NewNop(), item)
	if err != nil {
		t.Fatalf("route to review: %v", err)
	}
	if filepath.Dir(target) != cfg.Paths.ReviewDir {
		t.Fatalf("target %q not in review dir", target)
	}
	if filepath.Base(target) != "source-has-no-audio-stream-1.mp4" {
		t.Fatalf("unexpected review filename %q", filepath.Base(target))
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("review file missing: %v", err)
	}
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected source moved away, stat err = %v", err)
	}

	// Second routed item with the same reason gets the next slot.
	source2 := filepath.Join(t.TempDir(), "silent.mp4")
	testsupport.WriteFile(t, source2, 64)
	item2 := testsupport.NewFile(t, store, source2)
	item2.SetReview("Source has no audio stream")
	target2, err := export.RouteToReview(context.Background(), cfg, logging.NewNop(), item2)
	if err != nil {
		t.Fatalf("route to review: %v", err)
	}
	if filepath.Base(target2) != "source-has-no-audio-stream-2.mp4" {
		t.Fatalf("unexpected second review filename %q", filepath.Base(target2))
	}
}
