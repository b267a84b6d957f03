// Package pipeline sequences the export stages: validate the spec, resolve
// narration timing against the speech collaborator, check cross-media sync,
// and derive the assembly artifacts. Each stage receives a copy and returns
// a new copy or an error; no stage mutates shared state.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ivlev/prompt2video/internal/assembly"
	"github.com/ivlev/prompt2video/internal/config"
	"github.com/ivlev/prompt2video/internal/narration"
	"github.com/ivlev/prompt2video/internal/storyboard"
	"github.com/ivlev/prompt2video/internal/system"
)

// Pipeline wires the stages with their collaborators.
type Pipeline struct {
	Config config.Config
	Synth  narration.Synthesizer
	Cache  *narration.Cache
}

// New builds a pipeline with a shared synthesis cache, so re-exports after
// small edits only synthesize the chunks that changed.
func New(cfg config.Config, synth narration.Synthesizer) *Pipeline {
	cache := narration.NewCache()
	return &Pipeline{
		Config: cfg,
		Synth:  narration.Cached(synth, cache),
		Cache:  cache,
	}
}

// Result collects the artifacts of one export run.
type Result struct {
	Spec       *storyboard.Spec
	SyncReport narration.Report
	RunDir     string

	SpecPath       string
	SubtitlePath   string
	TranscriptPath string
	ManifestPath   string
}

// Synthesize resolves narration timing for the spec and returns a new copy
// with the audio segment map swapped in whole. The input spec is never
// touched, so concurrent readers cannot observe a half-built map.
func (p *Pipeline) Synthesize(ctx context.Context, spec *storyboard.Spec) (*storyboard.Spec, error) {
	if err := storyboard.Validate(spec); err != nil {
		return nil, err
	}

	workers := system.SynthWorkers(p.Config.Workers)
	fmt.Printf("[*] Synthesizing narration: %d scenes, %d workers\n", len(spec.Scenes), workers)

	voice := spec.Style.Voice
	if voice == "" {
		voice = p.Config.Voice
	}

	resolver := &narration.Resolver{
		Synth:   p.Synth,
		Pause:   p.Config.PausePadding,
		Workers: workers,
	}
	segments, err := resolver.Resolve(ctx, spec.Scenes, voice, p.Config.Speed)
	if err != nil {
		return nil, err
	}

	report := narration.CheckSyncWithin(segments, p.Config.GapTolerance)
	for _, w := range report.Warnings {
		log.Printf("[!] sync: %s", w)
	}
	for _, e := range report.Errors {
		log.Printf("[!] sync: %s", e)
	}

	out := spec.Clone()
	out.AudioSegments = segments
	return out, nil
}

// Export runs the full pipeline and writes the assembly artifacts into a
// fresh run directory. A spec without audio segments is synthesized first.
func (p *Pipeline) Export(ctx context.Context, spec *storyboard.Spec) (*Result, error) {
	startTime := time.Now()

	if err := storyboard.Validate(spec); err != nil {
		return nil, err
	}

	if len(spec.AudioSegments) == 0 {
		var err error
		spec, err = p.Synthesize(ctx, spec)
		if err != nil {
			return nil, err
		}
	}

	runDir, err := storyboard.NewRunDir(p.Config.OutputDir)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Spec:       spec,
		SyncReport: narration.CheckSyncWithin(spec.AudioSegments, p.Config.GapTolerance),
		RunDir:     runDir,
	}

	cues := assembly.CuesFromSegments(spec)
	result.SubtitlePath = filepath.Join(runDir, "subtitles.vtt")
	if err := os.WriteFile(result.SubtitlePath, []byte(assembly.WebVTT(cues)), 0644); err != nil {
		return nil, fmt.Errorf("write subtitles: %w", err)
	}

	result.TranscriptPath = filepath.Join(runDir, "transcript.txt")
	transcript := assembly.Transcript(spec, time.Now())
	if err := os.WriteFile(result.TranscriptPath, []byte(transcript), 0644); err != nil {
		return nil, fmt.Errorf("write transcript: %w", err)
	}

	manifest, err := assembly.BuildManifest(spec).JSON()
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	result.ManifestPath = filepath.Join(runDir, "cues.json")
	if err := os.WriteFile(result.ManifestPath, manifest, 0644); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	specData, err := spec.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	result.SpecPath = filepath.Join(runDir, "spec.json")
	if err := os.WriteFile(result.SpecPath, specData, 0644); err != nil {
		return nil, fmt.Errorf("write spec: %w", err)
	}

	if p.Config.ShowStats {
		fmt.Printf("--- [EXPORT REPORT] ---\n")
		fmt.Printf("Host: %s\n", system.Snapshot())
		fmt.Printf("Total Time: %.2fs\n", time.Since(startTime).Seconds())
		fmt.Printf("Segments: %d | Cached clips: %d\n", len(spec.AudioSegments), p.Cache.Len())
		fmt.Printf("-----------------------\n")
	}

	fmt.Printf("[+] Export complete: %s\n", runDir)
	return result, nil
}
