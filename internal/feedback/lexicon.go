// Package feedback classifies free-text user feedback about a patch into a
// structured intent. It is not a general NLU layer: it recognizes a closed,
// extensible set of phrasing patterns for patch adjustment and deliberately
// fails toward asking a clarifying question instead of guessing.
package feedback

// Intent is the classified purpose of a feedback utterance.
type Intent string

const (
	IntentAdjust  Intent = "adjust"
	IntentAdd     Intent = "add"
	IntentRemove  Intent = "remove"
	IntentClarify Intent = "clarify"
)

// Direction says which way a vague adjustment should move.
type Direction string

const (
	DirectionIncrease Direction = "increase"
	DirectionDecrease Direction = "decrease"
)

// Specificity distinguishes "a bit darker" from "set the cutoff to 2kHz".
type Specificity string

const (
	SpecificityVague    Specificity = "vague"
	SpecificitySpecific Specificity = "specific"
)

// ParsedFeedback is the ephemeral classification result. It is produced by
// the Parser and consumed immediately by the modification mapper; nothing
// persists it.
type ParsedFeedback struct {
	Intent      Intent
	Target      string
	Direction   Direction
	Value       string
	Specificity Specificity
	Confidence  float64
	Reasoning   string
}

// MoodRule maps one subjective adjective to a concrete adjustment.
type MoodRule struct {
	Word       string  `yaml:"word"`
	Target     string  `yaml:"target"`
	Direction  Direction `yaml:"direction"`
	Confidence float64 `yaml:"confidence"`
}

// UnitAlias normalizes unit spellings extracted from quantified commands.
// Aliases are matched longest-first within a group, groups in order.
type UnitAlias struct {
	Aliases   []string
	Canonical string
}

// Lexicon is the fixed rule table behind the parser. It is immutable
// configuration: built once (DefaultLexicon plus any rule packs) and shared
// read-only across requests. The With* methods return extended copies and
// never mutate the receiver.
type Lexicon struct {
	Moods        []MoodRule
	EffectNouns  []string
	VaguePhrases []string
	Units        []UnitAlias
}

// DefaultLexicon returns the built-in rule tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Moods: []MoodRule{
			{Word: "darker", Target: "filter_cutoff", Direction: DirectionDecrease, Confidence: 0.9},
			{Word: "brighter", Target: "filter_cutoff", Direction: DirectionIncrease, Confidence: 0.9},
			{Word: "warmer", Target: "filter_cutoff", Direction: DirectionDecrease, Confidence: 0.8},
			{Word: "colder", Target: "filter_cutoff", Direction: DirectionIncrease, Confidence: 0.8},
			{Word: "icier", Target: "filter_cutoff", Direction: DirectionIncrease, Confidence: 0.75},
			{Word: "duller", Target: "filter_cutoff", Direction: DirectionDecrease, Confidence: 0.75},
			{Word: "mellower", Target: "filter_cutoff", Direction: DirectionDecrease, Confidence: 0.75},
			{Word: "harsher", Target: "filter_cutoff", Direction: DirectionIncrease, Confidence: 0.75},
		},
		EffectNouns: []string{
			"reverb", "delay", "echo", "distortion", "fuzz", "chorus",
			"flanger", "phaser", "filter", "wavefolder", "lfo",
			"envelope", "noise", "sampler", "sequencer",
		},
		VaguePhrases: []string{
			"better", "fix", "improve", "nicer", "cooler",
			"more interesting", "something else", "not sure",
		},
		Units: []UnitAlias{
			{Aliases: []string{"milliseconds", "millisecond", "msec", "ms"}, Canonical: "ms"},
			{Aliases: []string{"seconds", "second", "secs", "sec", "s"}, Canonical: "s"},
			{Aliases: []string{"kilohertz", "khz"}, Canonical: "kHz"},
			{Aliases: []string{"hertz", "hz"}, Canonical: "Hz"},
			{Aliases: []string{"percent", "pct", "%"}, Canonical: "%"},
			{Aliases: []string{"volts", "volt", "v"}, Canonical: "V"},
			{Aliases: []string{"bpm"}, Canonical: "bpm"},
		},
	}
}

// WithMoods returns a copy with extra mood rules appended after the
// built-ins, so built-in phrasing always wins a tie.
func (l Lexicon) WithMoods(extra ...MoodRule) Lexicon {
	out := l
	out.Moods = append(append([]MoodRule(nil), l.Moods...), extra...)
	return out
}

// WithEffectNouns returns a copy with extra effect nouns appended.
func (l Lexicon) WithEffectNouns(extra ...string) Lexicon {
	out := l
	out.EffectNouns = append(append([]string(nil), l.EffectNouns...), extra...)
	return out
}

// WithVaguePhrases returns a copy with extra clarify-triggering phrases.
func (l Lexicon) WithVaguePhrases(extra ...string) Lexicon {
	out := l
	out.VaguePhrases = append(append([]string(nil), l.VaguePhrases...), extra...)
	return out
}

// NormalizeUnit maps a unit spelling to its canonical form. Unknown units
// pass through unchanged so a specific value is never silently dropped.
func (l Lexicon) NormalizeUnit(unit string) string {
	for _, group := range l.Units {
		for _, alias := range group.Aliases {
			if equalFoldTrim(alias, unit) {
				return group.Canonical
			}
		}
	}
	return unit
}
