package assembly

import (
	"fmt"
	"math"
)

// Timecode formats seconds as a WebVTT timestamp: HH:MM:SS.mmm.
func Timecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	millis := int64(math.Round(seconds * 1000))
	h := millis / 3600000
	millis -= h * 3600000
	m := millis / 60000
	millis -= m * 60000
	s := millis / 1000
	ms := millis - s*1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
