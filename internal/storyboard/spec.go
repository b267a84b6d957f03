package storyboard

import (
	"encoding/json"
	"fmt"
	"sort"
)

const (
	// MinDuration and MaxDuration bound the target length of a generated video.
	MinDuration = 80.0
	MaxDuration = 180.0

	// EndBuffer is how far the last scene may run past the duration target.
	EndBuffer = 5.0

	// DefaultEventDuration applies when an event carries no explicit duration.
	DefaultEventDuration = 1.0

	// DefaultTransition is the scene transition length when the style omits one.
	DefaultTransition = 0.3
)

// Spec is the root description of a video: a duration target, ordered
// non-overlapping scenes, a style configuration and (after synthesis)
// the audio segment map derived from the narration.
type Spec struct {
	DurationTarget float64    `json:"durationTarget"`
	Scenes         []Scene    `json:"scenes"`
	Style          Style      `json:"style"`
	AudioSegments  SegmentMap `json:"audioSegments,omitempty"`
}

// Scene is one contiguous time window of the video. Narration chunks are
// rendered in order; event order carries no meaning beyond iteration.
type Scene struct {
	Type      string          `json:"type"`
	Start     TimelineSeconds `json:"start"`
	End       TimelineSeconds `json:"end"`
	Narration []string        `json:"narration"`
	Events    []VisualEvent   `json:"events"`
}

// RelativeTime converts a timeline position into this scene's own clock.
func (s Scene) RelativeTime(t TimelineSeconds) SceneSeconds {
	return SceneSeconds(float64(t) - float64(s.Start))
}

// Duration returns the scene's window length in seconds.
func (s Scene) Duration() float64 {
	return float64(s.End) - float64(s.Start)
}

// VisualEvent is a timestamped instruction to the renderer. T is relative to
// the owning scene's start, never to the global timeline. Params holds
// action-specific fields the timing core treats as opaque.
type VisualEvent struct {
	T        SceneSeconds   `json:"t"`
	Action   string         `json:"action"`
	Duration float64        `json:"duration,omitempty"`
	Params   map[string]any `json:"-"`
}

// ActiveDuration returns the event's duration, falling back to the default
// when none was set.
func (e VisualEvent) ActiveDuration() float64 {
	if e.Duration > 0 {
		return e.Duration
	}
	return DefaultEventDuration
}

// Window returns the scene-relative interval during which the event is active.
func (e VisualEvent) Window() (start, end SceneSeconds) {
	return e.T, e.T + SceneSeconds(e.ActiveDuration())
}

// MarshalJSON flattens Params into the event object so the persisted shape
// stays {t, action, duration?, <action-specific fields>...}.
func (e VisualEvent) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(e.Params)+3)
	for k, v := range e.Params {
		obj[k] = v
	}
	obj["t"] = float64(e.T)
	obj["action"] = e.Action
	if e.Duration > 0 {
		obj["duration"] = e.Duration
	}
	return json.Marshal(obj)
}

// UnmarshalJSON splits the known timing fields from the action-specific rest.
func (e *VisualEvent) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	if raw, ok := obj["t"]; ok {
		var t float64
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("event field t: %w", err)
		}
		e.T = SceneSeconds(t)
	}
	if raw, ok := obj["action"]; ok {
		if err := json.Unmarshal(raw, &e.Action); err != nil {
			return fmt.Errorf("event field action: %w", err)
		}
	}
	if raw, ok := obj["duration"]; ok {
		if err := json.Unmarshal(raw, &e.Duration); err != nil {
			return fmt.Errorf("event field duration: %w", err)
		}
	}

	delete(obj, "t")
	delete(obj, "action")
	delete(obj, "duration")
	if len(obj) == 0 {
		e.Params = nil
		return nil
	}

	e.Params = make(map[string]any, len(obj))
	for k, raw := range obj {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("event field %s: %w", k, err)
		}
		e.Params[k] = v
	}
	return nil
}

// Style parameterizes rendering. It carries no temporal invariants.
type Style struct {
	Voice       string  `json:"voice"`
	Colors      Palette `json:"colors"`
	Transitions float64 `json:"transitions,omitempty"`
}

// Palette holds the color scheme for a video.
type Palette struct {
	Primary string `json:"primary"`
	Accent  string `json:"accent,omitempty"`
}

// TransitionDuration returns the configured transition length or the default.
func (s Style) TransitionDuration() float64 {
	if s.Transitions > 0 {
		return s.Transitions
	}
	return DefaultTransition
}

// AudioSegment is one synthesized narration chunk placed on the absolute
// video timeline. Path is an opaque reference owned by the TTS collaborator.
type AudioSegment struct {
	Path  string          `json:"path"`
	Start TimelineSeconds `json:"start"`
	End   TimelineSeconds `json:"end"`
}

// Duration returns the segment length in seconds.
func (a AudioSegment) Duration() float64 {
	return float64(a.End) - float64(a.Start)
}

// SegmentMap maps chunk ids ("scene{N}_chunk{M}") to their placed audio.
// It is derived state with its own lifecycle: a voice change regenerates the
// map without touching scene or event data.
type SegmentMap map[string]AudioSegment

// ChunkID builds the canonical key for a narration chunk. Indices are
// zero-based.
func ChunkID(scene, chunk int) string {
	return fmt.Sprintf("scene%d_chunk%d", scene, chunk)
}

// Sorted returns the segments ordered by start time, ties broken by key so
// the result is stable across calls.
func (m SegmentMap) Sorted() []AudioSegment {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := m[keys[i]], m[keys[j]]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return keys[i] < keys[j]
	})

	out := make([]AudioSegment, len(keys))
	for i, k := range keys {
		out[i] = m[k]
	}
	return out
}

// Clone returns a deep copy of the spec. Stages pass specs by value; Clone
// keeps the nested slices and maps from being shared between copies.
func (s *Spec) Clone() *Spec {
	out := *s
	out.Scenes = make([]Scene, len(s.Scenes))
	for i, sc := range s.Scenes {
		cp := sc
		cp.Narration = append([]string(nil), sc.Narration...)
		cp.Events = make([]VisualEvent, len(sc.Events))
		for j, e := range sc.Events {
			ce := e
			if e.Params != nil {
				ce.Params = make(map[string]any, len(e.Params))
				for k, v := range e.Params {
					ce.Params[k] = v
				}
			}
			cp.Events[j] = ce
		}
		out.Scenes[i] = cp
	}
	if s.AudioSegments != nil {
		out.AudioSegments = make(SegmentMap, len(s.AudioSegments))
		for k, v := range s.AudioSegments {
			out.AudioSegments[k] = v
		}
	}
	return &out
}

// Parse decodes a spec from its persisted JSON form.
func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse spec: %w", err)
	}
	return &s, nil
}

// Encode serializes the spec to indented JSON.
func (s *Spec) Encode() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
