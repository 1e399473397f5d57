package feedback

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
)

var (
	addVerbRe    = regexp.MustCompile(`\b(add|insert|include|throw in|patch in|bring in)\b`)
	removeVerbRe = regexp.MustCompile(`\b(remove|take out|get rid of|delete|drop|lose|cut)\b`)
	moreRe       = regexp.MustCompile(`\b(more|extra|heavier)\b`)
	lessRe       = regexp.MustCompile(`\b(less|lighter|subtler)\b`)
	quantifiedRe = regexp.MustCompile(`\b(?:set|change|put|dial)\s+(?:the\s+)?([a-z][a-z0-9 _/-]*?)\s+(?:to|at)\s+(-?\d+(?:\.\d+)?)\s*([a-z%]+)?\b`)
	punctRe      = regexp.MustCompile(`[.,;:!?'"()]+`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// input carries one utterance plus the state it was uttered against. Rules
// receive the whole thing so rule packs can consult the patch or rack even
// though most built-ins only need the text.
type input struct {
	raw  string
	norm string
	cur  *patch.Patch
	rk   rack.Rack
}

// rule is one predicate→result pair in the cascade. Order in Parser.rules
// is the classification priority; the first rule to match wins.
type rule struct {
	name  string
	match func(input) (ParsedFeedback, bool)
}

// Parser turns raw feedback text into a ParsedFeedback. It holds only
// immutable rule tables, so a single Parser is safe to share across
// concurrent sessions. Classification is deterministic: identical text and
// state always yield the identical result.
type Parser struct {
	lex   Lexicon
	rules []rule
}

// Option customizes parser construction.
type Option func(*Parser)

// WithLexicon replaces the default rule tables, typically after rule packs
// have been merged in.
func WithLexicon(lex Lexicon) Option {
	return func(p *Parser) {
		p.lex = lex
	}
}

// NewParser builds a parser with the ordered rule cascade.
func NewParser(opts ...Option) *Parser {
	p := &Parser{lex: DefaultLexicon()}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.rules = []rule{
		{name: "mood-adjective", match: p.matchMood},
		{name: "add-effect", match: p.matchAdd},
		{name: "remove-effect", match: p.matchRemove},
		{name: "relative-amount", match: p.matchRelative},
		{name: "quantified-command", match: p.matchQuantified},
		{name: "vague-subjective", match: p.matchVague},
	}
	return p
}

// Lexicon exposes the parser's rule tables, shared with the mapper so both
// sides agree on unit spellings.
func (p *Parser) Lexicon() Lexicon {
	return p.lex
}

// Parse classifies one utterance. It never fails: empty or unrecognized
// input comes back as a low-confidence adjust/general result so the caller
// asks for clarification instead of crashing the turn.
func (p *Parser) Parse(text string, cur *patch.Patch, rk rack.Rack) ParsedFeedback {
	in := input{raw: text, norm: normalize(text), cur: cur, rk: rk}
	if in.norm == "" {
		return fallbackFeedback("empty input")
	}
	for _, r := range p.rules {
		if fb, ok := r.match(in); ok {
			return fb
		}
	}
	return fallbackFeedback(fmt.Sprintf("no phrasing pattern matched %q", in.norm))
}

func (p *Parser) matchMood(in input) (ParsedFeedback, bool) {
	for _, mood := range p.lex.Moods {
		if !containsWord(in.norm, mood.Word) {
			continue
		}
		return ParsedFeedback{
			Intent:      IntentAdjust,
			Target:      mood.Target,
			Direction:   mood.Direction,
			Specificity: SpecificityVague,
			Confidence:  mood.Confidence,
			Reasoning:   fmt.Sprintf("mood word %q maps to %s %s", mood.Word, mood.Direction, mood.Target),
		}, true
	}
	return ParsedFeedback{}, false
}

func (p *Parser) matchAdd(in input) (ParsedFeedback, bool) {
	if !addVerbRe.MatchString(in.norm) {
		return ParsedFeedback{}, false
	}
	noun, ok := p.findEffectNoun(in.norm)
	if !ok {
		return ParsedFeedback{}, false
	}
	return ParsedFeedback{
		Intent:      IntentAdd,
		Target:      noun,
		Specificity: SpecificityVague,
		Confidence:  0.8,
		Reasoning:   fmt.Sprintf("add verb with effect noun %q", noun),
	}, true
}

func (p *Parser) matchRemove(in input) (ParsedFeedback, bool) {
	if !removeVerbRe.MatchString(in.norm) {
		return ParsedFeedback{}, false
	}
	noun, ok := p.findEffectNoun(in.norm)
	if !ok {
		return ParsedFeedback{}, false
	}
	return ParsedFeedback{
		Intent:      IntentRemove,
		Target:      noun,
		Specificity: SpecificityVague,
		Confidence:  0.8,
		Reasoning:   fmt.Sprintf("remove verb with effect noun %q", noun),
	}, true
}

func (p *Parser) matchRelative(in input) (ParsedFeedback, bool) {
	noun, ok := p.findEffectNoun(in.norm)
	if !ok {
		return ParsedFeedback{}, false
	}
	var dir Direction
	switch {
	case moreRe.MatchString(in.norm):
		dir = DirectionIncrease
	case lessRe.MatchString(in.norm):
		dir = DirectionDecrease
	default:
		return ParsedFeedback{}, false
	}
	return ParsedFeedback{
		Intent:      IntentAdjust,
		Target:      noun,
		Direction:   dir,
		Specificity: SpecificityVague,
		Confidence:  0.75,
		Reasoning:   fmt.Sprintf("relative amount: %s %s", dir, noun),
	}, true
}

func (p *Parser) matchQuantified(in input) (ParsedFeedback, bool) {
	m := quantifiedRe.FindStringSubmatch(in.norm)
	if m == nil {
		return ParsedFeedback{}, false
	}
	target := slugify(m[1])
	value := m[2]
	if unit := strings.TrimSpace(m[3]); unit != "" {
		value += p.lex.NormalizeUnit(unit)
	}
	return ParsedFeedback{
		Intent:      IntentAdjust,
		Target:      target,
		Value:       value,
		Specificity: SpecificitySpecific,
		Confidence:  0.85,
		Reasoning:   fmt.Sprintf("quantified command: %s = %s", target, value),
	}, true
}

func (p *Parser) matchVague(in input) (ParsedFeedback, bool) {
	if _, hasNoun := p.findEffectNoun(in.norm); hasNoun {
		return ParsedFeedback{}, false
	}
	for _, phrase := range p.lex.VaguePhrases {
		if containsWord(in.norm, phrase) {
			return ParsedFeedback{
				Intent:      IntentClarify,
				Target:      "general",
				Specificity: SpecificityVague,
				Confidence:  0.35,
				Reasoning:   fmt.Sprintf("subjective phrase %q with no actionable noun", phrase),
			}, true
		}
	}
	return ParsedFeedback{}, false
}

// findEffectNoun scans the noun table in order so the match is stable when
// an utterance names several effects.
func (p *Parser) findEffectNoun(norm string) (string, bool) {
	for _, noun := range p.lex.EffectNouns {
		if containsWord(norm, noun) {
			return noun, true
		}
	}
	return "", false
}

func fallbackFeedback(reason string) ParsedFeedback {
	return ParsedFeedback{
		Intent:      IntentAdjust,
		Target:      "general",
		Specificity: SpecificityVague,
		Confidence:  0.3,
		Reasoning:   reason,
	}
}

func normalize(text string) string {
	lowered := strings.ToLower(strings.TrimSpace(text))
	lowered = punctRe.ReplaceAllString(lowered, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(lowered, " "))
}

// containsWord reports whether phrase occurs in norm on word boundaries, so
// "no" never matches inside "noise".
func containsWord(norm, phrase string) bool {
	needle := strings.TrimSpace(strings.ToLower(phrase))
	if needle == "" {
		return false
	}
	return strings.Contains(" "+norm+" ", " "+needle+" ")
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func slugify(words string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(words)), "_")
}
