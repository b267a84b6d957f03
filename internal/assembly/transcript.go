package assembly

import (
	"fmt"
	"strings"
	"time"

	"github.com/ivlev/prompt2video/internal/storyboard"
)

// Transcript renders the narration as plain text, one block per scene,
// prefixed with the scene type. The generation time is a parameter so the
// function stays a pure derivation of its inputs.
func Transcript(spec *storyboard.Spec, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Transcript generated %s\n\n", generatedAt.Format("2006-01-02 15:04:05")))

	for _, scene := range spec.Scenes {
		if len(scene.Narration) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("[%s] %s\n",
			strings.ToUpper(scene.Type),
			strings.Join(scene.Narration, " ")))
	}
	return b.String()
}
