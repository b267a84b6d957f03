package assembly

import (
	"encoding/json"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// Manifest is the structured cues/timing document handed to the muxing
// collaborator.
type Manifest struct {
	Duration float64     `json:"duration"`
	Scenes   []SceneCues `json:"scenes"`
}

// SceneCues is the manifest entry for one scene.
type SceneCues struct {
	ID        int                      `json:"id"`
	Type      string                   `json:"type"`
	Start     float64                  `json:"start"`
	End       float64                  `json:"end"`
	Narration []string                 `json:"narration"`
	Events    []storyboard.VisualEvent `json:"events,omitempty"`
}

// BuildManifest derives the manifest from a validated spec.
func BuildManifest(spec *storyboard.Spec) Manifest {
	m := Manifest{
		Duration: spec.DurationTarget,
		Scenes:   make([]SceneCues, len(spec.Scenes)),
	}
	for i, scene := range spec.Scenes {
		m.Scenes[i] = SceneCues{
			ID:        i + 1,
			Type:      scene.Type,
			Start:     float64(scene.Start),
			End:       float64(scene.End),
			Narration: scene.Narration,
			Events:    scene.Events,
		}
	}
	return m
}

// JSON serializes the manifest for downstream consumption.
func (m Manifest) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
