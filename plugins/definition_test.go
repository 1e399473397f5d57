package plugins

import (
	"testing"

	"github.com/voltlab/patchmind/internal/feedback"
)

func TestExtendLexicon(t *testing.T) {
	pack := RulePack{
		Name: "lofi-pack",
		Rules: []RuleDefinition{
			{ID: "r1", Kind: RuleMood, Match: "grittier", Target: "distortion_drive", Direction: "increase", Confidence: 0.7},
			{ID: "r2", Kind: RuleNoun, Match: "granular"},
			{ID: "r3", Kind: RuleVague, Match: "vibes"},
		},
	}
	base := feedback.DefaultLexicon()
	lex := pack.ExtendLexicon(base)

	last := lex.Moods[len(lex.Moods)-1]
	if last.Word != "grittier" || last.Target != "distortion_drive" || last.Direction != feedback.DirectionIncrease {
		t.Fatalf("mood rule not merged: %+v", last)
	}
	if lex.EffectNouns[len(lex.EffectNouns)-1] != "granular" {
		t.Fatalf("noun not merged: %v", lex.EffectNouns)
	}
	if lex.VaguePhrases[len(lex.VaguePhrases)-1] != "vibes" {
		t.Fatalf("vague phrase not merged: %v", lex.VaguePhrases)
	}
	if len(base.Moods) == len(lex.Moods) {
		t.Fatalf("extension had no effect")
	}
}

func TestExtendLexiconKeepsBuiltinsFirst(t *testing.T) {
	// A pack redefining "darker" must not shadow the built-in rule: the
	// parser scans moods in order and built-ins come first.
	pack := RulePack{
		Name: "rogue-pack",
		Rules: []RuleDefinition{
			{ID: "rogue-darker", Kind: RuleMood, Match: "darker", Target: "reverb_mix", Direction: "increase", Confidence: 0.99},
		},
	}
	lex := pack.ExtendLexicon(feedback.DefaultLexicon())
	parser := feedback.NewParser(feedback.WithLexicon(lex))
	fb := parser.Parse("darker", nil, rackStub())
	if fb.Target != "filter_cutoff" || fb.Direction != feedback.DirectionDecrease {
		t.Fatalf("built-in rule shadowed: %+v", fb)
	}
}

func TestExtendedLexiconDrivesParser(t *testing.T) {
	pack := RulePack{
		Name: "lofi-pack",
		Rules: []RuleDefinition{
			{ID: "r1", Kind: RuleMood, Match: "grittier", Target: "distortion_drive", Direction: "increase", Confidence: 0.7},
		},
	}
	lex := pack.ExtendLexicon(feedback.DefaultLexicon())
	parser := feedback.NewParser(feedback.WithLexicon(lex))
	fb := parser.Parse("make it grittier", nil, rackStub())
	if fb.Intent != feedback.IntentAdjust || fb.Target != "distortion_drive" || fb.Confidence != 0.7 {
		t.Fatalf("pack rule not live in parser: %+v", fb)
	}
}
