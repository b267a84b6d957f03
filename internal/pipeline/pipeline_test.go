package pipeline

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/narration"
	"github.com/ivlev/prompt2video/internal/storyboard"
)

func fixedSynth(duration float64) narration.Synthesizer {
	return narration.SynthesizerFunc(func(_ context.Context, text, voice string, _ float64) (narration.Clip, error) {
		return narration.Clip{Path: "audio/" + text + ".mp3", Duration: duration}, nil
	})
}

func pipelineSpec() *storyboard.Spec {
	return &storyboard.Spec{
		DurationTarget: 90,
		Scenes: []storyboard.Scene{
			{Type: "intro", Start: 0, End: 30, Narration: []string{"Hello there"}},
			{Type: "summary", Start: 30, End: 90, Narration: []string{"Goodbye", "See you"}},
		},
		Style: storyboard.Style{Voice: "alloy", Colors: storyboard.Palette{Primary: "#000"}},
	}
}

func testConfig(t *testing.T) config.Config {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Workers = 2
	return cfg
}

func TestSynthesizeLeavesInputUntouched(t *testing.T) {
	p := New(testConfig(t), fixedSynth(2.0))
	spec := pipelineSpec()

	out, err := p.Synthesize(context.Background(), spec)
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}

	if spec.AudioSegments != nil {
		t.Error("input spec must not be mutated")
	}
	if len(out.AudioSegments) != 3 {
		t.Errorf("expected 3 segments, got %d", len(out.AudioSegments))
	}
	if float64(out.AudioSegments["scene0_chunk0"].End) != 2.0 {
		t.Errorf("unexpected first segment: %+v", out.AudioSegments["scene0_chunk0"])
	}
}

func TestSynthesizeRejectsInvalidSpec(t *testing.T) {
	p := New(testConfig(t), fixedSynth(2.0))
	spec := pipelineSpec()
	spec.DurationTarget = 10

	if _, err := p.Synthesize(context.Background(), spec); err == nil {
		t.Fatal("invalid spec must be rejected before synthesis")
	}
}

func TestExportWritesArtifacts(t *testing.T) {
	p := New(testConfig(t), fixedSynth(1.0))

	result, err := p.Export(context.Background(), pipelineSpec())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	vtt, err := os.ReadFile(result.SubtitlePath)
	if err != nil {
		t.Fatalf("subtitles not written: %v", err)
	}
	if !strings.HasPrefix(string(vtt), "WEBVTT") {
		t.Errorf("subtitle file is not WebVTT:\n%s", vtt)
	}

	transcript, err := os.ReadFile(result.TranscriptPath)
	if err != nil {
		t.Fatalf("transcript not written: %v", err)
	}
	if !strings.Contains(string(transcript), "[INTRO] Hello there") {
		t.Errorf("transcript missing narration:\n%s", transcript)
	}

	if _, err := os.Stat(result.ManifestPath); err != nil {
		t.Errorf("manifest not written: %v", err)
	}

	saved, err := os.ReadFile(result.SpecPath)
	if err != nil {
		t.Fatalf("spec not written: %v", err)
	}
	roundTrip, err := storyboard.Parse(saved)
	if err != nil {
		t.Fatalf("exported spec does not parse: %v", err)
	}
	if len(roundTrip.AudioSegments) != 3 {
		t.Errorf("exported spec should carry the segment map, got %d entries", len(roundTrip.AudioSegments))
	}

	if !result.SyncReport.Valid {
		t.Errorf("expected clean sync report, got %+v", result.SyncReport)
	}
}

func TestExportReusesCachedClips(t *testing.T) {
	calls := 0
	synth := narration.SynthesizerFunc(func(_ context.Context, text, voice string, _ float64) (narration.Clip, error) {
		calls++
		return narration.Clip{Path: text + ".mp3", Duration: 1.0}, nil
	})
	p := New(testConfig(t), synth)

	if _, err := p.Export(context.Background(), pipelineSpec()); err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	first := calls

	if _, err := p.Export(context.Background(), pipelineSpec()); err != nil {
		t.Fatalf("second export failed: %v", err)
	}

	if calls != first {
		t.Errorf("unchanged chunks should come from cache, calls went %d -> %d", first, calls)
	}
}
