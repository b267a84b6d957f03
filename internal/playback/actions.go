package playback

import (
	"sync"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// Interpolator applies one event kind to a state at a given progress.
// Implementations read their parameters from the event and must be pure:
// the resolver calls them at frame rate and in arbitrary order.
type Interpolator interface {
	Apply(e storyboard.VisualEvent, progress float64, s State) State
}

// InterpolatorFunc adapts a function to the Interpolator interface.
type InterpolatorFunc func(e storyboard.VisualEvent, progress float64, s State) State

func (f InterpolatorFunc) Apply(e storyboard.VisualEvent, progress float64, s State) State {
	return f(e, progress, s)
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Interpolator)
)

// Register installs the interpolator for an action kind. New kinds plug in
// here; the resolver's window and hold logic never changes for them.
func Register(action string, ip Interpolator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[action] = ip
}

// Lookup returns the interpolator for an action kind, if one is registered.
func Lookup(action string) (Interpolator, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ip, ok := registry[action]
	return ip, ok
}

func init() {
	Register("move", InterpolatorFunc(applyMove))
	Register("fade", InterpolatorFunc(applyFade))
	Register("scale", InterpolatorFunc(applyScale))
}

// applyMove eases the object from a "from" [x,y] pair to a "to" pair.
func applyMove(e storyboard.VisualEvent, progress float64, s State) State {
	fx, fy := paramPair(e, "from", s.X, s.Y)
	tx, ty := paramPair(e, "to", fx, fy)

	t := EaseInOutCubic(progress)
	s.X = Lerp(fx, tx, t)
	s.Y = Lerp(fy, ty, t)
	return s
}

// applyFade interpolates opacity linearly; defaults fade in from 0 to 1.
func applyFade(e storyboard.VisualEvent, progress float64, s State) State {
	from := paramFloat(e, "from", 0)
	to := paramFloat(e, "to", 1)
	s.Opacity = Lerp(from, to, progress)
	return s
}

// applyScale eases the object's scale factor.
func applyScale(e storyboard.VisualEvent, progress float64, s State) State {
	from := paramFloat(e, "from", 1)
	to := paramFloat(e, "to", 1)
	s.Scale = Lerp(from, to, EaseInOutCubic(progress))
	return s
}

// paramFloat reads a numeric parameter, tolerating the float64/int variants
// JSON decoding can produce.
func paramFloat(e storyboard.VisualEvent, key string, def float64) float64 {
	v, ok := e.Params[key]
	if !ok {
		return def
	}
	return asFloat(v, def)
}

// paramPair reads a two-element numeric array parameter.
func paramPair(e storyboard.VisualEvent, key string, defX, defY float64) (float64, float64) {
	v, ok := e.Params[key]
	if !ok {
		return defX, defY
	}
	arr, ok := v.([]any)
	if !ok || len(arr) < 2 {
		return defX, defY
	}
	return asFloat(arr[0], defX), asFloat(arr[1], defY)
}

func asFloat(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return def
}
