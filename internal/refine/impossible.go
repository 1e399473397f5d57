package refine

import (
	"fmt"
	"strings"

	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/rack"
)

// Impossibility reports whether a request asks for hardware the rack does
// not have, with a human-readable reason when it does.
type Impossibility struct {
	Impossible bool
	Reason     string
}

// hardwareCategories lists the targets that name a physical module
// category. Only these can make a request impossible; a target like
// "general" never does.
var hardwareCategories = []string{
	"reverb", "delay", "echo", "distortion", "fuzz", "chorus", "flanger",
	"phaser", "filter", "wavefolder", "lfo", "envelope", "noise",
	"sampler", "sequencer",
}

// CheckImpossible runs before mapping so the engine never proposes edits
// for modules the rack lacks. Remove intents are exempt: removing something
// that was never there is a harmless no-op, not an impossibility.
func CheckImpossible(fb feedback.ParsedFeedback, rk rack.Rack) Impossibility {
	if fb.Intent != feedback.IntentAdd && fb.Intent != feedback.IntentAdjust {
		return Impossibility{}
	}
	category, ok := categoryFor(fb.Target)
	if !ok {
		return Impossibility{}
	}
	if len(rk.FindByCategory(category)) > 0 {
		return Impossibility{}
	}
	return Impossibility{
		Impossible: true,
		Reason: fmt.Sprintf("Your rack doesn't have a %s module, so I can't change the %s here. Want to adjust something the rack can do instead?",
			category, humanizeTarget(fb.Target)),
	}
}

// categoryFor maps a feedback target to a hardware category. Compound
// targets like "filter_cutoff" resolve through their leading segment.
func categoryFor(target string) (string, bool) {
	head := strings.ToLower(strings.TrimSpace(target))
	if i := strings.IndexRune(head, '_'); i > 0 {
		head = head[:i]
	}
	for _, category := range hardwareCategories {
		if head == category {
			return category, true
		}
	}
	return "", false
}

func humanizeTarget(target string) string {
	return strings.ReplaceAll(strings.TrimSpace(target), "_", " ")
}
