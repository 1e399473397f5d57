package feedback

import "fmt"

// Detection is the result of one meta-command classifier.
type Detection struct {
	Detected   bool
	Confidence float64
	Reasoning  string
}

// Special bundles the three independent meta-command checks. All three can
// be true for the same utterance; the caller decides precedence.
type Special struct {
	Save       bool
	StartFresh bool
	Variations bool
}

// saveTier groups save phrasings by how strongly they signal the intent.
type saveTier struct {
	phrases    []string
	confidence float64
	label      string
}

// Negative patterns veto a save no matter what else matches: a refinement
// request riding on praise ("love it but darker") must still refine.
var saveNegatives = []string{
	"no", "not", "nope", "nah", "dont", "but", "instead", "change",
	"make it", "tweak", "adjust", "undo", "go back", "revert",
}

var saveTiers = []saveTier{
	{
		phrases:    []string{"save this", "save it", "save the patch", "keep this", "keep it", "save"},
		confidence: 0.95,
		label:      "explicit save phrase",
	},
	{
		phrases:    []string{"perfect", "love it", "love this", "amazing", "beautiful", "incredible", "exactly what i wanted"},
		confidence: 0.85,
		label:      "strong positive reaction",
	},
	{
		phrases:    []string{"done", "thats it", "that is it", "finished", "all set", "good to go", "were done", "we are done"},
		confidence: 0.75,
		label:      "completion phrase",
	},
	{
		phrases:    []string{"yes", "yeah", "yep", "sure", "sounds good", "ok", "okay", "great", "nice", "good"},
		confidence: 0.65,
		label:      "bare approval",
	},
}

var startFreshPhrases = []string{
	"start fresh", "start over", "start again", "new patch", "from scratch",
	"reset", "clear", "scrap this", "begin again", "try something completely different",
}

var variationsPhrases = []string{
	"variations", "variation", "other options", "different versions",
	"alternatives", "alternative", "show me more", "what else",
	"try another", "another one", "other ideas", "more options",
}

var undoPhrases = []string{
	"undo", "go back", "revert", "previous version", "take that back", "last version",
}

// DetectSaveIntent classifies whether the user wants to keep the current
// patch. Tiers run strongest-first; negative patterns win over everything.
func DetectSaveIntent(text string) Detection {
	norm := normalize(text)
	if norm == "" {
		return Detection{Reasoning: "empty input"}
	}
	if DetectVariationsIntent(text) || DetectStartFreshIntent(text) {
		return Detection{Reasoning: "variation or restart request takes priority over save"}
	}
	for _, neg := range saveNegatives {
		if containsWord(norm, neg) {
			return Detection{Reasoning: fmt.Sprintf("negative pattern %q vetoes save", neg)}
		}
	}
	for _, tier := range saveTiers {
		for _, phrase := range tier.phrases {
			if containsWord(norm, phrase) {
				return Detection{
					Detected:   true,
					Confidence: tier.confidence,
					Reasoning:  fmt.Sprintf("%s: %q", tier.label, phrase),
				}
			}
		}
	}
	return Detection{Reasoning: "no save phrasing found"}
}

// DetectStartFreshIntent reports whether the user wants to abandon the
// current patch and begin again.
func DetectStartFreshIntent(text string) bool {
	return matchesAny(normalize(text), startFreshPhrases)
}

// DetectVariationsIntent reports whether the user wants to see alternative
// takes on the current patch.
func DetectVariationsIntent(text string) bool {
	return matchesAny(normalize(text), variationsPhrases)
}

// DetectUndoIntent reports whether the user wants the previous snapshot
// back.
func DetectUndoIntent(text string) bool {
	return matchesAny(normalize(text), undoPhrases)
}

// CheckSpecialIntents runs the three meta-command classifiers independently.
func CheckSpecialIntents(text string) Special {
	return Special{
		Save:       DetectSaveIntent(text).Detected,
		StartFresh: DetectStartFreshIntent(text),
		Variations: DetectVariationsIntent(text),
	}
}

func matchesAny(norm string, phrases []string) bool {
	if norm == "" {
		return false
	}
	for _, phrase := range phrases {
		if containsWord(norm, phrase) {
			return true
		}
	}
	return false
}
