package assembly

import (
	"fmt"
	"strings"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// Cue is one subtitle entry on the absolute timeline.
type Cue struct {
	ID    string
	Start float64
	End   float64
	Text  string
}

// Cues derives subtitle cues by splitting each scene's window evenly among
// its narration chunks. This is the canonical subtitle timing source; use
// CuesFromSegments when synthesized audio timings exist and should drive the
// display instead. An export picks one source, never both.
func Cues(spec *storyboard.Spec) []Cue {
	var cues []Cue
	for i, scene := range spec.Scenes {
		n := len(scene.Narration)
		if n == 0 {
			continue
		}
		chunkDuration := scene.Duration() / float64(n)
		for j, text := range scene.Narration {
			start := float64(scene.Start) + float64(j)*chunkDuration
			cues = append(cues, Cue{
				ID:    fmt.Sprintf("%d.%d", i+1, j+1),
				Start: start,
				End:   start + chunkDuration,
				Text:  text,
			})
		}
	}
	return cues
}

// CuesFromSegments derives cues from the audio segment map, so subtitles
// track the actual synthesized speech. Chunks without a segment fall back to
// the even-split placement within their scene.
func CuesFromSegments(spec *storyboard.Spec) []Cue {
	even := Cues(spec)
	if len(spec.AudioSegments) == 0 {
		return even
	}

	cues := make([]Cue, len(even))
	copy(cues, even)

	for idx := range cues {
		var scene, chunk int
		if _, err := fmt.Sscanf(cues[idx].ID, "%d.%d", &scene, &chunk); err != nil {
			continue
		}
		seg, ok := spec.AudioSegments[storyboard.ChunkID(scene-1, chunk-1)]
		if !ok {
			continue
		}
		cues[idx].Start = float64(seg.Start)
		cues[idx].End = float64(seg.End)
	}
	return cues
}

// WebVTT renders cues as a WebVTT document.
func WebVTT(cues []Cue) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, c := range cues {
		b.WriteString(c.ID)
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s --> %s\n", Timecode(c.Start), Timecode(c.End)))
		b.WriteString(c.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
