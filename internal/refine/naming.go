package refine

import (
	"fmt"
	"strings"

	"github.com/voltlab/patchmind/internal/patch"
)

// maxPatchNameLen bounds generated patch names so they fit list views.
const maxPatchNameLen = 80

// maxNameDescriptors caps how many mood descriptors decorate a name.
const maxNameDescriptors = 3

// SaveDecision tells the caller what to persist and what to say. This core
// never writes storage itself.
type SaveDecision struct {
	ShouldSave          bool
	PatchName           string
	ConfirmationMessage string
}

// FreshGuidance is the fixed response to a start-over request. Discarding
// the current patch is the caller's job.
type FreshGuidance struct {
	StartFresh bool
	Message    string
}

// VariationsGuidance is the fixed response to a show-me-more request.
type VariationsGuidance struct {
	ShowVariations bool
	Message        string
}

// descriptorRule maps a keyword seen in modification descriptions or
// conversation text to a name descriptor.
type descriptorRule struct {
	keyword    string
	descriptor string
}

// descriptorTable is ordered: earlier rules win when several keywords
// appear, so mood words beat the parameter nouns they ride on.
var descriptorTable = []descriptorRule{
	{"darker", "Darker"},
	{"brighter", "Brighter"},
	{"warmer", "Warmer"},
	{"colder", "Icy"},
	{"reverb", "Reverb Heavy"},
	{"delay", "Echoing"},
	{"echo", "Echoing"},
	{"distortion", "Gritty"},
	{"fuzz", "Gritty"},
	{"chorus", "Lush"},
	{"noise", "Noisy"},
	{"lfo", "Wobbly"},
	{"cutoff", "Filter Tweaked"},
}

// HandleSaveIntent produces the save decision for the current patch: a
// descriptive name plus a confirmation naming the refinements made along
// the way.
func (e *Engine) HandleSaveIntent(p *patch.Patch, mods []Modification, conversation []string) SaveDecision {
	base := strings.TrimSpace(p.Metadata.Title)
	if base == "" {
		base = "Untitled Patch"
	}
	name := GeneratePatchName(base, mods, conversation)
	return SaveDecision{
		ShouldSave:          true,
		PatchName:           name,
		ConfirmationMessage: confirmationMessage(name, mods),
	}
}

// HandleStartFreshIntent returns guidance for abandoning the current patch.
// No patch state changes here; the session owns that.
func HandleStartFreshIntent() FreshGuidance {
	return FreshGuidance{
		StartFresh: true,
		Message:    "Starting fresh! Tell me the vibe you're after and I'll work up a new patch for this rack.",
	}
}

// HandleVariationsIntent returns guidance for a variations request.
func HandleVariationsIntent() VariationsGuidance {
	return VariationsGuidance{
		ShowVariations: true,
		Message:        "Happy to riff on this one — I'll keep the backbone and change the flavor. Which part should stay untouched?",
	}
}

// GeneratePatchName decorates the base title with up to three descriptors
// derived from the refinement descriptions and conversational mood words,
// truncated with an ellipsis past 80 characters.
func GeneratePatchName(base string, mods []Modification, conversation []string) string {
	var texts []string
	for _, mod := range mods {
		texts = append(texts, strings.ToLower(mod.Description))
	}
	for _, line := range conversation {
		texts = append(texts, strings.ToLower(line))
	}
	var descriptors []string
	seen := make(map[string]bool)
	for _, rule := range descriptorTable {
		if len(descriptors) == maxNameDescriptors {
			break
		}
		if seen[rule.descriptor] {
			continue
		}
		for _, text := range texts {
			if strings.Contains(text, rule.keyword) {
				descriptors = append(descriptors, rule.descriptor)
				seen[rule.descriptor] = true
				break
			}
		}
	}
	name := base
	if len(descriptors) > 0 {
		name = fmt.Sprintf("%s (%s)", base, strings.Join(descriptors, ", "))
	}
	return truncateName(name, maxPatchNameLen)
}

func confirmationMessage(name string, mods []Modification) string {
	if len(mods) == 0 {
		return fmt.Sprintf("Saved %q exactly as generated.", name)
	}
	listed := len(mods)
	if listed > 3 {
		listed = 3
	}
	descriptions := make([]string, 0, listed)
	for _, mod := range mods[:listed] {
		descriptions = append(descriptions, mod.Description)
	}
	msg := fmt.Sprintf("Saved %q after %d refinement(s): %s", name, len(mods), strings.Join(descriptions, "; "))
	if rest := len(mods) - listed; rest > 0 {
		msg += fmt.Sprintf(" ...and %d more", rest)
	}
	return msg
}

func truncateName(name string, limit int) string {
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit-3]) + "..."
}
