package narration

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// PausePadding is the silence inserted between consecutive narration
// segments. It is a fixed design constant, not derived from scene
// boundaries: segments are never clipped to scene start/end, so total
// narration length may drift from the scene-boxed duration.
const PausePadding = 1.5

// Clip is the synthesis result for one narration chunk. Path is opaque to
// the timing core; only Duration feeds the timeline.
type Clip struct {
	Path     string
	Duration float64
}

// Synthesizer is the speech collaborator boundary. Implementations own
// retries and timeouts; the resolver only sequences calls and places results.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string, speed float64) (Clip, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, text, voice string, speed float64) (Clip, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, text, voice string, speed float64) (Clip, error) {
	return f(ctx, text, voice, speed)
}

// SynthesisError reports the chunk whose synthesis failed. A single failure
// aborts the whole resolution so downstream consumers never see a map with
// some chunks timed and others missing.
type SynthesisError struct {
	ChunkID string
	Err     error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize %s: %v", e.ChunkID, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Resolver derives the audio segment map for a spec's narration: it obtains
// per-chunk durations from the Synthesizer and lays the chunks out on the
// absolute timeline with PausePadding between them.
type Resolver struct {
	Synth Synthesizer
	Pause float64 // 0 means PausePadding
	// Workers > 1 issues synthesis requests concurrently. Timestamps are
	// always placed in chunk order afterwards, so the output is identical
	// to a sequential run.
	Workers int
}

func (r *Resolver) pause() float64 {
	if r.Pause > 0 {
		return r.Pause
	}
	return PausePadding
}

// chunkRef identifies one narration chunk in flattening order: scene order
// first, then chunk order within the scene.
type chunkRef struct {
	Scene, Chunk int
	Text         string
}

func (c chunkRef) ID() string {
	return storyboard.ChunkID(c.Scene, c.Chunk)
}

func flatten(scenes []storyboard.Scene) []chunkRef {
	var refs []chunkRef
	for i, sc := range scenes {
		for j, text := range sc.Narration {
			refs = append(refs, chunkRef{Scene: i, Chunk: j, Text: text})
		}
	}
	return refs
}

// Resolve synthesizes every narration chunk and returns the placed segment
// map. Any chunk failure aborts the resolution; the partial map is discarded.
func (r *Resolver) Resolve(ctx context.Context, scenes []storyboard.Scene, voice string, speed float64) (storyboard.SegmentMap, error) {
	refs := flatten(scenes)
	if len(refs) == 0 {
		return storyboard.SegmentMap{}, nil
	}

	clips := make([]Clip, len(refs))

	if r.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.Workers)
		for i, ref := range refs {
			i, ref := i, ref
			g.Go(func() error {
				clip, err := r.Synth.Synthesize(gctx, ref.Text, voice, speed)
				if err != nil {
					return &SynthesisError{ChunkID: ref.ID(), Err: err}
				}
				clips[i] = clip
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i, ref := range refs {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			clip, err := r.Synth.Synthesize(ctx, ref.Text, voice, speed)
			if err != nil {
				return nil, &SynthesisError{ChunkID: ref.ID(), Err: err}
			}
			clips[i] = clip
		}
	}

	return r.place(refs, clips), nil
}

// place lays clips out along the timeline in flattening order. It is the
// only step that assigns timestamps, which is what keeps concurrent and
// sequential synthesis byte-identical in output.
func (r *Resolver) place(refs []chunkRef, clips []Clip) storyboard.SegmentMap {
	segments := make(storyboard.SegmentMap, len(refs))
	cursor := 0.0
	for i, ref := range refs {
		clip := clips[i]
		segments[ref.ID()] = storyboard.AudioSegment{
			Path:  clip.Path,
			Start: storyboard.TimelineSeconds(cursor),
			End:   storyboard.TimelineSeconds(cursor + clip.Duration),
		}
		cursor += clip.Duration + r.pause()
	}
	return segments
}
