// Package refine turns classified feedback into validated, applied patch
// edits. The pipeline is parse → impossibility check → clarification gate →
// map → validate → apply; every stage returns values, never panics, and the
// engine converts anything unexpected into a failure result.
package refine

import "github.com/voltlab/patchmind/internal/patch"

// ParameterChange is one proposed knob edit.
type ParameterChange struct {
	ModuleID   string
	ModuleName string
	Parameter  string
	OldValue   string
	NewValue   string
	Reasoning  string
}

// Changes groups the typed edits inside one modification.
type Changes struct {
	ParametersChanged  []ParameterChange
	ConnectionsAdded   []patch.Connection
	ConnectionsRemoved []patch.Connection
}

// Modification is a structured, human-describable edit proposal. It is
// produced by the mapper, checked by the validator, merged by the applier,
// and its description feeds naming and confirmation text.
type Modification struct {
	Description string
	Changes     Changes
	Confidence  float64
}

// IsNoOp reports whether the modification carries no edits at all.
func (m Modification) IsNoOp() bool {
	return len(m.Changes.ParametersChanged) == 0 &&
		len(m.Changes.ConnectionsAdded) == 0 &&
		len(m.Changes.ConnectionsRemoved) == 0
}
