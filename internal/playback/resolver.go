package playback

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// State is the resolved render state of the animated object for one frame.
type State struct {
	X, Y    float64
	Scale   float64
	Opacity float64
}

// Rest returns the object's defined rest state: origin, unit scale, fully
// visible.
func Rest() State {
	return State{Scale: 1, Opacity: 1}
}

var (
	anomalies   atomic.Uint64
	anomalyOnce sync.Once
)

// Anomalies reports how many malformed events the resolver has clamped.
// A non-zero count means an invariant was violated upstream of validation.
func Anomalies() uint64 {
	return anomalies.Load()
}

func flagAnomaly(e storyboard.VisualEvent) {
	anomalies.Add(1)
	anomalyOnce.Do(func() {
		log.Printf("[!] event %q has negative offset %.2f; clamped to scene start", e.Action, float64(e.T))
	})
}

// Resolve computes the render state for a scene at an arbitrary timeline
// position. It is a pure function of its inputs with no memory of prior
// calls: scrubbing invokes it out of order and repeated calls must return
// identical output.
//
// Rules, in order:
//   - before the scene starts, the object is at rest;
//   - events whose active window covers the scene-relative time are applied
//     at their clamped progress;
//   - an action kind whose last event has already finished holds at
//     progress 1.0 rather than reverting to rest;
//   - with no governing event at all, the object is at rest.
func Resolve(scene storyboard.Scene, globalTime storyboard.TimelineSeconds) State {
	rel := scene.RelativeTime(globalTime)
	if rel <= 0 {
		return Rest()
	}

	governing := governingEvents(scene.Events, rel)
	if len(governing) == 0 {
		return Rest()
	}

	state := Rest()
	for _, g := range governing {
		ip, ok := Lookup(g.event.Action)
		if !ok {
			// Unknown kinds still occupy their windows; rendering them is
			// the renderer's problem, not the timing core's.
			continue
		}
		state = ip.Apply(g.event, g.progress, state)
	}
	return state
}

type governed struct {
	event    storyboard.VisualEvent
	progress float64
	active   bool
	order    int
}

// supersedes reports whether g should replace prev as the governing event
// of its kind. Active beats finished; otherwise the later start wins, with
// declaration order as the tiebreak.
func (g governed) supersedes(prev governed) bool {
	if g.active != prev.active {
		return g.active
	}
	if g.event.T != prev.event.T {
		return g.event.T > prev.event.T
	}
	return g.order > prev.order
}

// governingEvents picks, per action kind, the event that controls the state
// at scene-relative time rel: an active event if one covers rel, otherwise
// the most recently finished one held at progress 1.0. Events still in the
// future govern nothing. The result is ordered by event start time so the
// fold over interpolators is deterministic.
func governingEvents(events []storyboard.VisualEvent, rel storyboard.SceneSeconds) []governed {
	best := make(map[string]governed)

	for i, e := range events {
		if e.T < 0 {
			flagAnomaly(e)
			e.T = 0
		}
		start, end := e.Window()

		var g governed
		switch {
		case rel >= start && rel <= end:
			progress := Clamp01(float64(rel-start) / e.ActiveDuration())
			g = governed{event: e, progress: progress, active: true, order: i}
		case rel > end:
			g = governed{event: e, progress: 1.0, order: i}
		default:
			continue // not started yet
		}

		prev, seen := best[e.Action]
		if !seen || g.supersedes(prev) {
			best[e.Action] = g
		}
	}

	out := make([]governed, 0, len(best))
	for _, g := range best {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].event.T != out[j].event.T {
			return out[i].event.T < out[j].event.T
		}
		return out[i].order < out[j].order
	})
	return out
}
