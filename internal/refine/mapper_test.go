package refine

import (
	"strings"
	"testing"

	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
)

func testRack() rack.Rack {
	return rack.Rack{
		ID: "test-rack",
		Modules: []rack.Module{
			{ID: "vco-1", Name: "Dixie II+", Type: "Oscillator", Outputs: []string{"saw"}},
			{ID: "vcf-1", Name: "Polaris Filter", Type: "Filter", Inputs: []string{"audio in"}, Outputs: []string{"lp out"}},
			{ID: "vca-1", Name: "Veils", Type: "VCA", Inputs: []string{"in 1"}, Outputs: []string{"out 1"}},
			{ID: "fx-1", Name: "FX Aid Reverb", Type: "Effect", Inputs: []string{"in l"}, Outputs: []string{"out l"}},
			{ID: "dly-1", Name: "Magneto Delay", Type: "Effect", Inputs: []string{"in l"}, Outputs: []string{"out l"}},
		},
	}
}

func testPatch() *patch.Patch {
	return &patch.Patch{
		ID:       "p1",
		Metadata: patch.Metadata{Title: "Evening Pad"},
		Connections: []patch.Connection{
			{
				ID:         "c1",
				From:       patch.PortRef{ModuleID: "vco-1", ModuleName: "Dixie II+", Port: "saw"},
				To:         patch.PortRef{ModuleID: "vcf-1", ModuleName: "Polaris Filter", Port: "audio in"},
				SignalType: patch.SignalAudio,
				Importance: patch.ImportancePrimary,
			},
			{
				ID:         "c2",
				From:       patch.PortRef{ModuleID: "vcf-1", ModuleName: "Polaris Filter", Port: "lp out"},
				To:         patch.PortRef{ModuleID: "vca-1", ModuleName: "Veils", Port: "in 1"},
				SignalType: patch.SignalAudio,
				Importance: patch.ImportancePrimary,
			},
		},
		PatchingOrder: []string{"c1", "c2"},
		ParameterSuggestions: []patch.ParameterSuggestion{
			{ModuleID: "vcf-1", ModuleName: "Polaris Filter", Parameter: "cutoff", Value: "5kHz", Reasoning: "open voicing"},
		},
	}
}

func TestMapCutoffScalesDown(t *testing.T) {
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "filter_cutoff",
		Direction:  feedback.DirectionDecrease,
		Confidence: 0.9,
	}
	mod := m.Map(fb, testPatch(), testRack())
	if len(mod.Changes.ParametersChanged) != 1 {
		t.Fatalf("expected one parameter change, got %+v", mod.Changes)
	}
	change := mod.Changes.ParametersChanged[0]
	if change.ModuleID != "vcf-1" || change.Parameter != "cutoff" {
		t.Fatalf("unexpected change: %+v", change)
	}
	if change.OldValue != "5kHz" || change.NewValue != "3.5kHz" {
		t.Fatalf("expected 5kHz -> 3.5kHz, got %q -> %q", change.OldValue, change.NewValue)
	}
	if !strings.Contains(mod.Description, "Lowered") || !strings.Contains(mod.Description, "darker") {
		t.Fatalf("description should say lowered and darker: %s", mod.Description)
	}
}

func TestMapCutoffScalesUp(t *testing.T) {
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "filter_cutoff",
		Direction:  feedback.DirectionIncrease,
		Confidence: 0.9,
	}
	mod := m.Map(fb, testPatch(), testRack())
	change := mod.Changes.ParametersChanged[0]
	if change.NewValue != "6.5kHz" {
		t.Fatalf("expected 6.5kHz, got %q", change.NewValue)
	}
	if !strings.Contains(mod.Description, "Raised") || !strings.Contains(mod.Description, "brighter") {
		t.Fatalf("description should say raised and brighter: %s", mod.Description)
	}
}

func TestMapCutoffCustomMultipliers(t *testing.T) {
	m := NewMapper(WithMultipliers(0.5, 2.0))
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "filter_cutoff",
		Direction:  feedback.DirectionDecrease,
		Confidence: 0.9,
	}
	mod := m.Map(fb, testPatch(), testRack())
	if got := mod.Changes.ParametersChanged[0].NewValue; got != "2.5kHz" {
		t.Fatalf("expected 2.5kHz with 0.5 factor, got %q", got)
	}
}

func TestMapCutoffWithoutRecordedValue(t *testing.T) {
	p := testPatch()
	p.ParameterSuggestions = nil
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "filter_cutoff",
		Direction:  feedback.DirectionDecrease,
		Confidence: 0.9,
	}
	mod := m.Map(fb, p, testRack())
	change := mod.Changes.ParametersChanged[0]
	if change.ModuleID != "vcf-1" || change.NewValue != "30% lower" {
		t.Fatalf("expected relative move on the rack filter, got %+v", change)
	}
}

func TestMapEffectAmount(t *testing.T) {
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "reverb",
		Direction:  feedback.DirectionIncrease,
		Confidence: 0.75,
	}
	mod := m.Map(fb, testPatch(), testRack())
	change := mod.Changes.ParametersChanged[0]
	if change.ModuleID != "fx-1" || change.Parameter != "mix" {
		t.Fatalf("expected reverb mix change, got %+v", change)
	}
	if change.NewValue != "30% higher" {
		t.Fatalf("expected relative value, got %q", change.NewValue)
	}
}

func TestMapEffectAmountScalesRecordedLevel(t *testing.T) {
	p := testPatch()
	p.ParameterSuggestions = append(p.ParameterSuggestions, patch.ParameterSuggestion{
		ModuleID: "fx-1", ModuleName: "FX Aid Reverb", Parameter: "mix", Value: "50%",
	})
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "reverb",
		Direction:  feedback.DirectionDecrease,
		Confidence: 0.75,
	}
	mod := m.Map(fb, p, testRack())
	change := mod.Changes.ParametersChanged[0]
	if change.OldValue != "50%" || change.NewValue != "35%" {
		t.Fatalf("expected 50%% -> 35%%, got %q -> %q", change.OldValue, change.NewValue)
	}
}

func TestMapSpecificValue(t *testing.T) {
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:      feedback.IntentAdjust,
		Target:      "delay_time",
		Value:       "5s",
		Specificity: feedback.SpecificitySpecific,
		Confidence:  0.85,
	}
	mod := m.Map(fb, testPatch(), testRack())
	change := mod.Changes.ParametersChanged[0]
	if change.ModuleID != "dly-1" || change.Parameter != "time" || change.NewValue != "5s" {
		t.Fatalf("unexpected change: %+v", change)
	}
	if !strings.Contains(mod.Description, "Set the delay time to 5s on Magneto Delay") {
		t.Fatalf("unexpected description: %s", mod.Description)
	}
}

func TestMapAddSplicesOntoChainEnd(t *testing.T) {
	m := NewMapper(WithIDGenerator(func() string { return "new-conn" }))
	fb := feedback.ParsedFeedback{Intent: feedback.IntentAdd, Target: "reverb", Confidence: 0.8}
	mod := m.Map(fb, testPatch(), testRack())
	if len(mod.Changes.ConnectionsAdded) != 1 {
		t.Fatalf("expected one added connection, got %+v", mod.Changes)
	}
	conn := mod.Changes.ConnectionsAdded[0]
	if conn.ID != "new-conn" {
		t.Fatalf("id generator ignored: %+v", conn)
	}
	if conn.From.ModuleID != "vca-1" {
		t.Fatalf("new effect should hang off the chain end (vca-1), got %+v", conn.From)
	}
	if conn.To.ModuleID != "fx-1" || conn.To.Port != "in l" {
		t.Fatalf("unexpected target: %+v", conn.To)
	}
	if conn.SignalType != patch.SignalAudio || conn.Importance != patch.ImportancePrimary {
		t.Fatalf("new connections are primary audio: %+v", conn)
	}
}

func TestMapAddSkipsWiredModules(t *testing.T) {
	p := testPatch()
	p.Connections = append(p.Connections, patch.Connection{
		ID:         "c3",
		From:       patch.PortRef{ModuleID: "vca-1", ModuleName: "Veils", Port: "out 1"},
		To:         patch.PortRef{ModuleID: "fx-1", ModuleName: "FX Aid Reverb", Port: "in l"},
		SignalType: patch.SignalAudio,
		Importance: patch.ImportancePrimary,
	})
	p.PatchingOrder = append(p.PatchingOrder, "c3")
	m := NewMapper()
	fb := feedback.ParsedFeedback{Intent: feedback.IntentAdd, Target: "reverb", Confidence: 0.8}
	mod := m.Map(fb, p, testRack())
	if !mod.IsNoOp() {
		t.Fatalf("only reverb module already wired, expected no-op: %+v", mod)
	}
	if !strings.Contains(mod.Description, "already in the signal path") {
		t.Fatalf("unexpected description: %s", mod.Description)
	}
}

func TestMapRemoveCollectsConnections(t *testing.T) {
	p := testPatch()
	p.Connections = append(p.Connections, patch.Connection{
		ID:         "c3",
		From:       patch.PortRef{ModuleID: "vca-1", ModuleName: "Veils", Port: "out 1"},
		To:         patch.PortRef{ModuleID: "dly-1", ModuleName: "Magneto Delay", Port: "in l"},
		SignalType: patch.SignalAudio,
		Importance: patch.ImportancePrimary,
	})
	p.PatchingOrder = append(p.PatchingOrder, "c3")
	m := NewMapper()
	fb := feedback.ParsedFeedback{Intent: feedback.IntentRemove, Target: "delay", Confidence: 0.8}
	mod := m.Map(fb, p, testRack())
	if len(mod.Changes.ConnectionsRemoved) != 1 || mod.Changes.ConnectionsRemoved[0].ID != "c3" {
		t.Fatalf("expected c3 removed, got %+v", mod.Changes)
	}
}

func TestMapRemoveNothingIsNoOp(t *testing.T) {
	m := NewMapper()
	fb := feedback.ParsedFeedback{Intent: feedback.IntentRemove, Target: "reverb", Confidence: 0.8}
	mod := m.Map(fb, testPatch(), testRack())
	if !mod.IsNoOp() {
		t.Fatalf("removing an absent effect must be a no-op: %+v", mod)
	}
	if !strings.Contains(mod.Description, "nothing to remove") {
		t.Fatalf("unexpected description: %s", mod.Description)
	}
}

func TestMapClarifyIsNoOp(t *testing.T) {
	m := NewMapper()
	fb := feedback.ParsedFeedback{Intent: feedback.IntentClarify, Target: "general", Confidence: 0.35}
	mod := m.Map(fb, testPatch(), testRack())
	if !mod.IsNoOp() {
		t.Fatalf("clarify must not propose edits: %+v", mod)
	}
	if mod.Confidence != 0.35 {
		t.Fatalf("confidence should pass through, got %v", mod.Confidence)
	}
}

func TestMapDoesNotTouchInput(t *testing.T) {
	p := testPatch()
	before := p.ParameterSuggestions[0].Value
	m := NewMapper()
	fb := feedback.ParsedFeedback{
		Intent:     feedback.IntentAdjust,
		Target:     "filter_cutoff",
		Direction:  feedback.DirectionDecrease,
		Confidence: 0.9,
	}
	m.Map(fb, p, testRack())
	if p.ParameterSuggestions[0].Value != before {
		t.Fatalf("mapper mutated the input patch")
	}
}

func TestScaleValue(t *testing.T) {
	tests := []struct {
		value  string
		factor float64
		want   string
		ok     bool
	}{
		{"5kHz", 0.7, "3.5kHz", true},
		{"5kHz", 1.3, "6.5kHz", true},
		{"100ms", 1.3, "130ms", true},
		{"50%", 0.7, "35%", true},
		{"0.5", 1.3, "0.65", true},
		{"-2V", 0.7, "-1.4V", true},
		{"noon", 0.7, "", false},
		{"", 0.7, "", false},
	}
	for _, tc := range tests {
		got, ok := scaleValue(tc.value, tc.factor)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("scaleValue(%q, %v) = %q, %v; want %q, %v", tc.value, tc.factor, got, ok, tc.want, tc.ok)
		}
	}
}
