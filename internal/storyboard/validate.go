package storyboard

import (
	"fmt"
	"sort"
	"strings"
)

// ErrorKind classifies a structural violation in a spec.
type ErrorKind string

const (
	KindDurationOutOfRange ErrorKind = "duration_out_of_range"
	KindNoScenes           ErrorKind = "no_scenes"
	KindInvalidSceneBounds ErrorKind = "invalid_scene_bounds"
	KindSceneOverlap       ErrorKind = "scene_overlap"
	KindDurationMismatch   ErrorKind = "duration_mismatch"
	KindInvalidEvent       ErrorKind = "invalid_event"
)

// ValidationError pinpoints a single violation: its kind, the path of the
// offending field and a human-readable message. Structural errors are
// deterministic and recoverable by user edit, so the path has to be precise
// enough to drive a fix.
type ValidationError struct {
	Kind    ErrorKind
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Message, e.Kind)
}

// ValidationErrors collects every violation found during an interactive check.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return strings.Join(parts, "; ")
}

// Validate enforces the structural invariants and stops at the first
// violation. Use it as a pipeline gate; use Check when editing interactively.
func Validate(s *Spec) error {
	errs := s.violations(true)
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// Check collects every violation instead of stopping at the first, so an
// editing UI can surface all problems in one pass. A nil result means the
// spec is structurally valid.
func Check(s *Spec) ValidationErrors {
	return s.violations(false)
}

// violations runs the rules in precedence order. Scenes are examined in
// start order regardless of their position in the slice, so the overlap rule
// is insensitive to storage order.
func (s *Spec) violations(failFast bool) ValidationErrors {
	var errs ValidationErrors
	add := func(v ValidationError) bool {
		errs = append(errs, v)
		return failFast
	}

	if s.DurationTarget < MinDuration || s.DurationTarget > MaxDuration {
		if add(ValidationError{
			Kind: KindDurationOutOfRange,
			Path: "durationTarget",
			Message: fmt.Sprintf("duration target %.1fs outside allowed range [%.0f, %.0f]",
				s.DurationTarget, MinDuration, MaxDuration),
		}) {
			return errs
		}
	}

	if len(s.Scenes) == 0 {
		add(ValidationError{
			Kind:    KindNoScenes,
			Path:    "scenes",
			Message: "spec has no scenes",
		})
		// Every remaining rule needs at least one scene.
		return errs
	}

	order := make([]int, len(s.Scenes))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return s.Scenes[order[a]].Start < s.Scenes[order[b]].Start
	})

	for _, i := range order {
		sc := s.Scenes[i]
		if sc.End <= sc.Start {
			if add(ValidationError{
				Kind: KindInvalidSceneBounds,
				Path: fmt.Sprintf("scenes[%d]", i),
				Message: fmt.Sprintf("scene end %.2fs must be after start %.2fs",
					float64(sc.End), float64(sc.Start)),
			}) {
				return errs
			}
		}
	}

	for k := 0; k < len(order)-1; k++ {
		cur, next := order[k], order[k+1]
		if s.Scenes[cur].End > s.Scenes[next].Start {
			if add(ValidationError{
				Kind: KindSceneOverlap,
				Path: fmt.Sprintf("scenes[%d]", next),
				Message: fmt.Sprintf("scene %d (ends %.2fs) overlaps scene %d (starts %.2fs)",
					cur, float64(s.Scenes[cur].End), next, float64(s.Scenes[next].Start)),
			}) {
				return errs
			}
		}
	}

	last := s.Scenes[order[len(order)-1]]
	if float64(last.End) > s.DurationTarget+EndBuffer {
		if add(ValidationError{
			Kind: KindDurationMismatch,
			Path: fmt.Sprintf("scenes[%d].end", order[len(order)-1]),
			Message: fmt.Sprintf("last scene ends at %.2fs, beyond target %.1fs + %.0fs buffer",
				float64(last.End), s.DurationTarget, EndBuffer),
		}) {
			return errs
		}
	}

	for i, sc := range s.Scenes {
		for j, e := range sc.Events {
			if e.T < 0 {
				if add(ValidationError{
					Kind: KindInvalidEvent,
					Path: fmt.Sprintf("scenes[%d].events[%d].t", i, j),
					Message: fmt.Sprintf("event offset %.2fs is negative (offsets are scene-relative)",
						float64(e.T)),
				}) {
					return errs
				}
			}
			if e.Action == "" {
				if add(ValidationError{
					Kind:    KindInvalidEvent,
					Path:    fmt.Sprintf("scenes[%d].events[%d].action", i, j),
					Message: "event has empty action",
				}) {
					return errs
				}
			}
		}
	}

	return errs
}
