// Package plugins loads phrasing rule packs: user-supplied extensions to
// the parser's closed rule tables. Packs live under .patchmind/rules and
// come in two flavors, YAML files and yaegi-interpreted Go files; both
// funnel through the same validation before touching the lexicon.
package plugins

import (
	"fmt"
	"strings"

	"github.com/voltlab/patchmind/internal/feedback"
)

// RuleKind selects which lexicon table a rule extends.
type RuleKind string

const (
	// RuleMood maps a subjective adjective to a directional adjustment.
	RuleMood RuleKind = "mood"
	// RuleNoun adds an effect noun recognized after add/remove verbs.
	RuleNoun RuleKind = "noun"
	// RuleVague adds a phrase that triggers a clarification question.
	RuleVague RuleKind = "vague"
)

const defaultMoodConfidence = 0.7

// RuleDefinition describes one phrasing rule loaded from a pack.
type RuleDefinition struct {
	ID         string  `json:"id" yaml:"id"`
	Kind       RuleKind `json:"kind" yaml:"kind"`
	Match      string  `json:"match" yaml:"match"`
	Target     string  `json:"target,omitempty" yaml:"target,omitempty"`
	Direction  string  `json:"direction,omitempty" yaml:"direction,omitempty"`
	Confidence float64 `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// RulePack is the on-disk schema under .patchmind/rules/*.yaml.
type RulePack struct {
	Name  string           `json:"name" yaml:"name"`
	Rules []RuleDefinition `json:"rules" yaml:"rules"`
}

// Normalized returns a trimmed copy with defaults filled in.
func (pack RulePack) Normalized() RulePack {
	clone := RulePack{Name: strings.TrimSpace(pack.Name)}
	if len(pack.Rules) > 0 {
		clone.Rules = make([]RuleDefinition, len(pack.Rules))
		for i, rule := range pack.Rules {
			clone.Rules[i] = rule.normalized()
		}
	}
	return clone
}

func (rule RuleDefinition) normalized() RuleDefinition {
	out := RuleDefinition{
		ID:         strings.TrimSpace(rule.ID),
		Kind:       RuleKind(strings.ToLower(strings.TrimSpace(string(rule.Kind)))),
		Match:      strings.ToLower(strings.TrimSpace(rule.Match)),
		Target:     strings.TrimSpace(rule.Target),
		Direction:  strings.ToLower(strings.TrimSpace(rule.Direction)),
		Confidence: rule.Confidence,
	}
	if out.Kind == RuleMood && out.Confidence == 0 {
		out.Confidence = defaultMoodConfidence
	}
	return out
}

// Validate ensures the pack is well-formed before it extends the parser.
func (pack RulePack) Validate() error {
	normalized := pack.Normalized()
	if normalized.Name == "" {
		return fmt.Errorf("plugin: pack name is required")
	}
	if len(normalized.Rules) == 0 {
		return fmt.Errorf("plugin: pack %s has no rules", normalized.Name)
	}
	for i, rule := range normalized.Rules {
		if err := rule.validate(); err != nil {
			return fmt.Errorf("plugin: pack %s rules[%d]: %w", normalized.Name, i, err)
		}
	}
	return nil
}

func (rule RuleDefinition) validate() error {
	if rule.ID == "" {
		return fmt.Errorf("id is required")
	}
	if rule.Match == "" {
		return fmt.Errorf("%s: match is required", rule.ID)
	}
	switch rule.Kind {
	case RuleMood:
		if rule.Target == "" {
			return fmt.Errorf("%s: mood rules need a target", rule.ID)
		}
		switch feedback.Direction(rule.Direction) {
		case feedback.DirectionIncrease, feedback.DirectionDecrease:
		default:
			return fmt.Errorf("%s: direction must be 'increase' or 'decrease'", rule.ID)
		}
		if rule.Confidence <= 0 || rule.Confidence > 1 {
			return fmt.Errorf("%s: confidence must be in (0,1]", rule.ID)
		}
	case RuleNoun, RuleVague:
		// match is all these need
	default:
		return fmt.Errorf("%s: kind must be 'mood', 'noun', or 'vague'", rule.ID)
	}
	return nil
}

// ExtendLexicon merges the pack's rules into a copy of the lexicon.
// Built-in tables come first, so built-in phrasing always wins a tie.
func (pack RulePack) ExtendLexicon(lex feedback.Lexicon) feedback.Lexicon {
	out := lex
	for _, rule := range pack.Normalized().Rules {
		switch rule.Kind {
		case RuleMood:
			out = out.WithMoods(feedback.MoodRule{
				Word:       rule.Match,
				Target:     rule.Target,
				Direction:  feedback.Direction(rule.Direction),
				Confidence: rule.Confidence,
			})
		case RuleNoun:
			out = out.WithEffectNouns(rule.Match)
		case RuleVague:
			out = out.WithVaguePhrases(rule.Match)
		}
	}
	return out
}
