package storyboard

import (
	"encoding/json"
	"reflect"
	"testing"
)

func testSpec() *Spec {
	return &Spec{
		DurationTarget: 90,
		Scenes: []Scene{
			{
				Type:      "intro",
				Start:     0,
				End:       10,
				Narration: []string{"Welcome", "Let us begin"},
				Events: []VisualEvent{
					{T: 0, Action: "move", Duration: 5, Params: map[string]any{
						"from": []any{0.0, 0.0},
						"to":   []any{10.0, 0.0},
					}},
					{T: 6, Action: "fade"},
				},
			},
			{
				Type:      "skill",
				Start:     10,
				End:       85,
				Narration: []string{"The main part"},
			},
		},
		Style: Style{
			Voice:  "alloy",
			Colors: Palette{Primary: "#112233", Accent: "#445566"},
		},
	}
}

func TestSpecRoundTrip(t *testing.T) {
	spec := testSpec()
	spec.AudioSegments = SegmentMap{
		ChunkID(0, 0): {Path: "audio/a.mp3", Start: 0, End: 2},
		ChunkID(0, 1): {Path: "audio/b.mp3", Start: 3.5, End: 5},
	}

	data, err := spec.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if !reflect.DeepEqual(spec, parsed) {
		t.Errorf("round trip mismatch:\nbefore: %+v\nafter:  %+v", spec, parsed)
	}
}

func TestEventParamsSurviveRoundTrip(t *testing.T) {
	in := []byte(`{"t": 1.5, "action": "move", "duration": 2, "from": [0, 0], "to": [10, 20], "color": "#ff0000"}`)

	var e VisualEvent
	if err := json.Unmarshal(in, &e); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if e.T != 1.5 || e.Action != "move" || e.Duration != 2 {
		t.Errorf("known fields wrong: %+v", e)
	}
	if e.Params["color"] != "#ff0000" {
		t.Errorf("expected color param to survive, got %v", e.Params)
	}
	if _, ok := e.Params["t"]; ok {
		t.Error("timing field t leaked into params")
	}

	out, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var back VisualEvent
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("second Unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(e, back) {
		t.Errorf("event round trip mismatch:\nbefore: %+v\nafter:  %+v", e, back)
	}
}

func TestEventDefaults(t *testing.T) {
	e := VisualEvent{T: 2, Action: "fade"}

	if got := e.ActiveDuration(); got != DefaultEventDuration {
		t.Errorf("expected default duration %.1f, got %.1f", DefaultEventDuration, got)
	}

	start, end := e.Window()
	if start != 2 || end != 3 {
		t.Errorf("expected window [2, 3], got [%v, %v]", start, end)
	}

	// Explicit duration must not be replaced.
	e.Duration = 4
	if _, end = e.Window(); end != 6 {
		t.Errorf("expected window end 6, got %v", end)
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID(0, 1); got != "scene0_chunk1" {
		t.Errorf("expected scene0_chunk1, got %s", got)
	}
	if got := ChunkID(12, 3); got != "scene12_chunk3" {
		t.Errorf("expected scene12_chunk3, got %s", got)
	}
}

func TestSegmentMapSorted(t *testing.T) {
	m := SegmentMap{
		"scene1_chunk0": {Path: "c.mp3", Start: 7, End: 9},
		"scene0_chunk0": {Path: "a.mp3", Start: 0, End: 2},
		"scene0_chunk1": {Path: "b.mp3", Start: 3.5, End: 5},
	}

	sorted := m.Sorted()
	if len(sorted) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(sorted))
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].Start {
			t.Errorf("segments not sorted at %d: %v then %v", i, sorted[i-1], sorted[i])
		}
	}
	if sorted[0].Path != "a.mp3" || sorted[2].Path != "c.mp3" {
		t.Errorf("unexpected order: %+v", sorted)
	}
}

func TestSceneRelativeTime(t *testing.T) {
	sc := Scene{Start: 10, End: 20}

	tests := []struct {
		global TimelineSeconds
		want   SceneSeconds
	}{
		{10, 0},
		{15, 5},
		{8, -2},
	}
	for _, tt := range tests {
		if got := sc.RelativeTime(tt.global); got != tt.want {
			t.Errorf("RelativeTime(%v) = %v, want %v", tt.global, got, tt.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	spec := testSpec()
	spec.AudioSegments = SegmentMap{ChunkID(0, 0): {Path: "a.mp3", Start: 0, End: 2}}

	clone := spec.Clone()
	if !reflect.DeepEqual(spec, clone) {
		t.Fatal("clone should equal original")
	}

	clone.Scenes[0].Narration[0] = "changed"
	clone.Scenes[0].Events[0].Params["from"] = "changed"
	clone.AudioSegments[ChunkID(0, 0)] = AudioSegment{Path: "z.mp3"}

	if spec.Scenes[0].Narration[0] != "Welcome" {
		t.Error("narration shared between clone and original")
	}
	if spec.Scenes[0].Events[0].Params["from"] == "changed" {
		t.Error("event params shared between clone and original")
	}
	if spec.AudioSegments[ChunkID(0, 0)].Path != "a.mp3" {
		t.Error("segment map shared between clone and original")
	}
}
