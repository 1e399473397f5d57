package refine

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
)

// Default scaling factors for vague directional adjustments. A fixed
// percentage step per request keeps refinement predictable; a perceptual
// mapping per parameter type would be better and is tracked as an open
// design question.
const (
	DefaultDecreaseFactor = 0.7
	DefaultIncreaseFactor = 1.3
)

var leadingNumberRe = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*(.*)$`)

// Mapper turns a ParsedFeedback into a concrete Modification. It never
// fails for a well-formed classification: when nothing concrete can be
// proposed it returns a no-op modification whose description says why.
type Mapper struct {
	decrease float64
	increase float64
	newID    func() string
}

// MapperOption customizes mapper construction.
type MapperOption func(*Mapper)

// WithMultipliers overrides the vague-adjustment scaling factors.
func WithMultipliers(decrease, increase float64) MapperOption {
	return func(m *Mapper) {
		if decrease > 0 {
			m.decrease = decrease
		}
		if increase > 0 {
			m.increase = increase
		}
	}
}

// WithIDGenerator swaps the connection id source (tests).
func WithIDGenerator(fn func() string) MapperOption {
	return func(m *Mapper) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// NewMapper builds a mapper with the default factors and uuid ids.
func NewMapper(opts ...MapperOption) *Mapper {
	m := &Mapper{
		decrease: DefaultDecreaseFactor,
		increase: DefaultIncreaseFactor,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Map produces the modification for one classified utterance. Every
// description contains the humanized target so naming and confirmation text
// can key off it.
func (m *Mapper) Map(fb feedback.ParsedFeedback, p *patch.Patch, rk rack.Rack) Modification {
	switch fb.Intent {
	case feedback.IntentClarify:
		return Modification{
			Description: "Waiting for clarification before changing anything",
			Confidence:  fb.Confidence,
		}
	case feedback.IntentAdd:
		return m.mapAdd(fb, p, rk)
	case feedback.IntentRemove:
		return m.mapRemove(fb, p, rk)
	default:
		if fb.Specificity == feedback.SpecificitySpecific && fb.Value != "" {
			return m.mapSpecific(fb, p, rk)
		}
		if strings.Contains(fb.Target, "cutoff") {
			return m.mapCutoff(fb, p, rk)
		}
		if fb.Direction != "" {
			return m.mapEffectAmount(fb, p, rk)
		}
		return Modification{
			Description: fmt.Sprintf("No concrete edit for %s yet", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
}

// mapCutoff scales the current filter cutoff down for darker, up for
// brighter. Without a recorded base value it falls back to a relative
// instruction on the rack's filter module.
func (m *Mapper) mapCutoff(fb feedback.ParsedFeedback, p *patch.Patch, rk rack.Rack) Modification {
	factor, motion, mood := m.directionWords(fb.Direction)
	if sug, ok := findCutoffSuggestion(p); ok {
		newValue, scaled := scaleValue(sug.Value, factor)
		if !scaled {
			newValue = m.relativeValue(fb.Direction)
		}
		return Modification{
			Description: fmt.Sprintf("%s the filter cutoff on %s from %s to %s for a %s tone",
				motion, sug.ModuleName, sug.Value, newValue, mood),
			Changes: Changes{ParametersChanged: []ParameterChange{{
				ModuleID:   sug.ModuleID,
				ModuleName: sug.ModuleName,
				Parameter:  sug.Parameter,
				OldValue:   sug.Value,
				NewValue:   newValue,
				Reasoning:  fmt.Sprintf("%s cutoff makes the patch %s", strings.ToLower(motion), mood),
			}}},
			Confidence: fb.Confidence,
		}
	}
	filters := rk.FindByCategory("filter")
	if len(filters) == 0 {
		return Modification{
			Description: fmt.Sprintf("No filter in the rack to change the %s on", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	mod := filters[0]
	newValue := m.relativeValue(fb.Direction)
	return Modification{
		Description: fmt.Sprintf("%s the filter cutoff on %s (%s) for a %s tone", motion, mod.Name, newValue, mood),
		Changes: Changes{ParametersChanged: []ParameterChange{{
			ModuleID:   mod.ID,
			ModuleName: mod.Name,
			Parameter:  "cutoff",
			NewValue:   newValue,
			Reasoning:  fmt.Sprintf("no recorded cutoff value, so a relative move: %s", newValue),
		}}},
		Confidence: fb.Confidence,
	}
}

// mapEffectAmount nudges the prominent level parameter of an effect, e.g.
// "more reverb" raises the reverb module's mix.
func (m *Mapper) mapEffectAmount(fb feedback.ParsedFeedback, p *patch.Patch, rk rack.Rack) Modification {
	modules := rk.FindByCategory(fb.Target)
	if len(modules) == 0 {
		return Modification{
			Description: fmt.Sprintf("No %s module in the rack to adjust", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	target := modules[0]
	factor, motion, _ := m.directionWords(fb.Direction)
	parameter := "mix"
	oldValue := ""
	newValue := m.relativeValue(fb.Direction)
	if sug, ok := findLevelSuggestion(p, target.ID); ok {
		parameter = sug.Parameter
		oldValue = sug.Value
		if scaled, ok := scaleValue(sug.Value, factor); ok {
			newValue = scaled
		}
	}
	return Modification{
		Description: fmt.Sprintf("%s the %s %s on %s to %s", motion, humanizeTarget(fb.Target), parameter, target.Name, newValue),
		Changes: Changes{ParametersChanged: []ParameterChange{{
			ModuleID:   target.ID,
			ModuleName: target.Name,
			Parameter:  parameter,
			OldValue:   oldValue,
			NewValue:   newValue,
			Reasoning:  fmt.Sprintf("%s %s per request", strings.ToLower(motion), humanizeTarget(fb.Target)),
		}}},
		Confidence: fb.Confidence,
	}
}

// mapSpecific bypasses the percentage heuristic and sets the parameter to
// exactly what the user asked for.
func (m *Mapper) mapSpecific(fb feedback.ParsedFeedback, p *patch.Patch, rk rack.Rack) Modification {
	words := strings.Split(strings.TrimSpace(fb.Target), "_")
	category := words[0]
	parameter := strings.Join(words[1:], " ")
	if parameter == "" {
		parameter = "level"
	}
	modules := rk.FindByCategory(category)
	if len(modules) == 0 {
		return Modification{
			Description: fmt.Sprintf("No module matches %s to set", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	target := modules[0]
	oldValue := ""
	if sug, ok := p.FindSuggestion(target.ID, parameter); ok {
		oldValue = sug.Value
	}
	return Modification{
		Description: fmt.Sprintf("Set the %s to %s on %s", humanizeTarget(fb.Target), fb.Value, target.Name),
		Changes: Changes{ParametersChanged: []ParameterChange{{
			ModuleID:   target.ID,
			ModuleName: target.Name,
			Parameter:  parameter,
			OldValue:   oldValue,
			NewValue:   fb.Value,
			Reasoning:  "exact value requested",
		}}},
		Confidence: fb.Confidence,
	}
}

// mapAdd splices an unused effect module onto the end of the primary audio
// chain.
func (m *Mapper) mapAdd(fb feedback.ParsedFeedback, p *patch.Patch, rk rack.Rack) Modification {
	candidates := rk.FindByCategory(fb.Target)
	if len(candidates) == 0 {
		return Modification{
			Description: fmt.Sprintf("No %s module available to add", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	target, ok := firstUnwired(candidates, p)
	if !ok {
		return Modification{
			Description: fmt.Sprintf("Every %s module is already in the signal path", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	from, ok := chainTap(p, rk)
	if !ok {
		return Modification{
			Description: fmt.Sprintf("No audio chain to hang the %s off yet", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	conn := patch.Connection{
		ID:         m.newID(),
		From:       from,
		To:         patch.PortRef{ModuleID: target.ID, ModuleName: target.Name, Port: target.PrimaryInput()},
		SignalType: patch.SignalAudio,
		Importance: patch.ImportancePrimary,
	}
	return Modification{
		Description: fmt.Sprintf("Added %s to the end of the audio chain for %s", target.Name, humanizeTarget(fb.Target)),
		Changes:     Changes{ConnectionsAdded: []patch.Connection{conn}},
		Confidence:  fb.Confidence,
	}
}

// mapRemove collects every connection feeding a module of the target
// category. An empty result is fine: removing what isn't there is a no-op.
func (m *Mapper) mapRemove(fb feedback.ParsedFeedback, p *patch.Patch, rk rack.Rack) Modification {
	var removed []patch.Connection
	for _, conn := range p.Connections {
		if connectionTargets(conn, fb.Target, rk) {
			removed = append(removed, conn)
		}
	}
	if len(removed) == 0 {
		return Modification{
			Description: fmt.Sprintf("Nothing patched into %s, so there was nothing to remove", humanizeTarget(fb.Target)),
			Confidence:  fb.Confidence,
		}
	}
	return Modification{
		Description: fmt.Sprintf("Removed %d connection(s) into %s", len(removed), humanizeTarget(fb.Target)),
		Changes:     Changes{ConnectionsRemoved: removed},
		Confidence:  fb.Confidence,
	}
}

func (m *Mapper) directionWords(dir feedback.Direction) (factor float64, motion, mood string) {
	if dir == feedback.DirectionIncrease {
		return m.increase, "Raised", "brighter"
	}
	return m.decrease, "Lowered", "darker"
}

// relativeValue describes a directional move when no base value exists to
// scale, e.g. "30% lower" for the 0.7 factor.
func (m *Mapper) relativeValue(dir feedback.Direction) string {
	if dir == feedback.DirectionIncrease {
		return fmt.Sprintf("%d%% higher", int(math.Round((m.increase-1)*100)))
	}
	return fmt.Sprintf("%d%% lower", int(math.Round((1-m.decrease)*100)))
}

// scaleValue multiplies the numeric head of a value like "5kHz" and keeps
// the unit, trimming trailing zeros (5 × 0.7 → "3.5kHz").
func scaleValue(value string, factor float64) (string, bool) {
	m := leadingNumberRe.FindStringSubmatch(value)
	if m == nil {
		return "", false
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return "", false
	}
	scaled := math.Round(n*factor*1e6) / 1e6
	return strconv.FormatFloat(scaled, 'f', -1, 64) + m[2], true
}

func findCutoffSuggestion(p *patch.Patch) (patch.ParameterSuggestion, bool) {
	for _, sug := range p.ParameterSuggestions {
		if strings.Contains(strings.ToLower(sug.Parameter), "cutoff") {
			return sug, true
		}
	}
	return patch.ParameterSuggestion{}, false
}

func findLevelSuggestion(p *patch.Patch, moduleID string) (patch.ParameterSuggestion, bool) {
	for _, sug := range p.ParameterSuggestions {
		if sug.ModuleID != moduleID {
			continue
		}
		param := strings.ToLower(sug.Parameter)
		for _, hint := range []string{"mix", "amount", "level", "send", "depth"} {
			if strings.Contains(param, hint) {
				return sug, true
			}
		}
	}
	return patch.ParameterSuggestion{}, false
}

func firstUnwired(candidates []rack.Module, p *patch.Patch) (rack.Module, bool) {
	for _, candidate := range candidates {
		wired := false
		for _, conn := range p.Connections {
			if conn.To.ModuleID == candidate.ID {
				wired = true
				break
			}
		}
		if !wired {
			return candidate, true
		}
	}
	return rack.Module{}, false
}

// chainTap finds where to splice a new effect in: the output of the module
// at the downstream end of the primary audio chain, or the first sound
// source in the rack when the patch has no audio path yet.
func chainTap(p *patch.Patch, rk rack.Rack) (patch.PortRef, bool) {
	if tap, ok := p.LastPrimaryAudioTap(); ok {
		port := "out"
		if mod, found := rk.ModuleByID(tap.ModuleID); found {
			port = mod.PrimaryOutput()
		}
		return patch.PortRef{ModuleID: tap.ModuleID, ModuleName: tap.ModuleName, Port: port}, true
	}
	for _, mod := range rk.Modules {
		if len(mod.Outputs) > 0 {
			return patch.PortRef{ModuleID: mod.ID, ModuleName: mod.Name, Port: mod.PrimaryOutput()}, true
		}
	}
	return patch.PortRef{}, false
}

func connectionTargets(conn patch.Connection, target string, rk rack.Rack) bool {
	needle := strings.ToLower(humanizeTarget(target))
	if strings.Contains(strings.ToLower(conn.To.ModuleName), needle) {
		return true
	}
	if mod, ok := rk.ModuleByID(conn.To.ModuleID); ok {
		return mod.Matches(needle)
	}
	return false
}
