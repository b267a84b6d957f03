package narration

import (
	"fmt"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// GapTolerance is the largest silence between adjacent segments that passes
// without comment. It covers the intentional pause padding plus jitter.
const GapTolerance = 2.0

// Report is the advisory output of a sync check. Overlaps land in Errors
// and make the report invalid; large gaps are only Warnings. A check never
// fails as a Go error: it is a diagnostic for a human or a higher-level
// policy, not a gate.
type Report struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// CheckSync examines adjacent segments (sorted by start) for overlaps and
// oversized gaps, using the default GapTolerance.
func CheckSync(segments storyboard.SegmentMap) Report {
	return CheckSyncWithin(segments, GapTolerance)
}

// CheckSyncWithin is CheckSync with a caller-chosen gap tolerance.
func CheckSyncWithin(segments storyboard.SegmentMap, tolerance float64) Report {
	if tolerance <= 0 {
		tolerance = GapTolerance
	}
	sorted := segments.Sorted()

	report := Report{Valid: true}
	for i := 0; i < len(sorted)-1; i++ {
		cur, next := sorted[i], sorted[i+1]

		if next.Start < cur.End {
			overlap := float64(cur.End) - float64(next.Start)
			report.Errors = append(report.Errors, fmt.Sprintf(
				"segments at %.2fs and %.2fs overlap by %.2fs",
				float64(cur.Start), float64(next.Start), overlap))
			continue
		}

		gap := float64(next.Start) - float64(cur.End)
		if gap > tolerance {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"gap of %.2fs between segments at %.2fs and %.2fs exceeds %.1fs",
				gap, float64(cur.Start), float64(next.Start), tolerance))
		}
	}

	report.Valid = len(report.Errors) == 0
	return report
}
