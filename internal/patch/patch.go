// Package patch defines the artifact being refined: a generated set of
// module connections and parameter suggestions for a rack, plus the
// narrative metadata shown to the user.
//
// Patches are treated as immutable values by the refinement pipeline.
// Anything that needs to change a patch works on a Clone and hands the
// result back; the pipeline never edits a patch in place.
package patch

import (
	"fmt"
	"strings"
	"time"
)

// SignalType classifies what a connection carries.
type SignalType string

const (
	SignalAudio SignalType = "audio"
	SignalCV    SignalType = "cv"
	SignalGate  SignalType = "gate"
	SignalClock SignalType = "clock"
	SignalVideo SignalType = "video"
)

// Importance marks whether a connection is part of the main signal path.
type Importance string

const (
	ImportancePrimary   Importance = "primary"
	ImportanceSecondary Importance = "secondary"
)

// PortRef identifies one end of a connection: a module plus the jack name
// on that module. For a Connection's From side Port is an output name; for
// the To side it is an input name.
type PortRef struct {
	ModuleID   string `yaml:"module_id"`
	ModuleName string `yaml:"module_name"`
	Port       string `yaml:"port"`
}

// Connection is a directed signal link between two module jacks. Connections
// are owned by the Patch and are only created or removed by the modification
// applier.
type Connection struct {
	ID         string     `yaml:"id"`
	From       PortRef    `yaml:"from"`
	To         PortRef    `yaml:"to"`
	SignalType SignalType `yaml:"signal_type"`
	Importance Importance `yaml:"importance"`
}

// ParameterSuggestion records a recommended knob setting. A patch holds at
// most one suggestion per (module, parameter) pair; the applier upserts.
type ParameterSuggestion struct {
	ModuleID   string `yaml:"module_id"`
	ModuleName string `yaml:"module_name"`
	Parameter  string `yaml:"parameter"`
	Value      string `yaml:"value"`
	Reasoning  string `yaml:"reasoning,omitempty"`
}

// Metadata carries the narrative framing produced alongside a patch.
type Metadata struct {
	Title         string   `yaml:"title"`
	Description   string   `yaml:"description,omitempty"`
	Difficulty    string   `yaml:"difficulty,omitempty"`
	EstimatedTime string   `yaml:"estimated_time,omitempty"`
	Techniques    []string `yaml:"techniques,omitempty"`
	Genres        []string `yaml:"genres,omitempty"`
	UserIntent    string   `yaml:"user_intent,omitempty"`
}

// Patch is a generated patch for a specific rack.
type Patch struct {
	ID                   string                `yaml:"id"`
	UserID               string                `yaml:"user_id,omitempty"`
	RackID               string                `yaml:"rack_id,omitempty"`
	Metadata             Metadata              `yaml:"metadata"`
	Connections          []Connection          `yaml:"connections"`
	PatchingOrder        []string              `yaml:"patching_order,omitempty"`
	ParameterSuggestions []ParameterSuggestion `yaml:"parameter_suggestions,omitempty"`
	WhyThisWorks         string                `yaml:"why_this_works,omitempty"`
	Tips                 []string              `yaml:"tips,omitempty"`
	CreatedAt            time.Time             `yaml:"created_at,omitempty"`
	UpdatedAt            time.Time             `yaml:"updated_at,omitempty"`
	Saved                bool                  `yaml:"saved,omitempty"`
	Tags                 []string              `yaml:"tags,omitempty"`
	UserRating           int                   `yaml:"user_rating,omitempty"`
	UserNotes            string                `yaml:"user_notes,omitempty"`
	TriedAt              *time.Time            `yaml:"tried_at,omitempty"`
}

// Clone returns a deep copy. Slices are copied so the clone shares no
// mutable state with the original.
func (p *Patch) Clone() *Patch {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Metadata.Techniques = copyStrings(p.Metadata.Techniques)
	clone.Metadata.Genres = copyStrings(p.Metadata.Genres)
	clone.PatchingOrder = copyStrings(p.PatchingOrder)
	clone.Tips = copyStrings(p.Tips)
	clone.Tags = copyStrings(p.Tags)
	if p.Connections != nil {
		clone.Connections = make([]Connection, len(p.Connections))
		copy(clone.Connections, p.Connections)
	}
	if p.ParameterSuggestions != nil {
		clone.ParameterSuggestions = make([]ParameterSuggestion, len(p.ParameterSuggestions))
		copy(clone.ParameterSuggestions, p.ParameterSuggestions)
	}
	if p.TriedAt != nil {
		tried := *p.TriedAt
		clone.TriedAt = &tried
	}
	return &clone
}

// ConnectionByID looks up a connection by id.
func (p *Patch) ConnectionByID(id string) (Connection, bool) {
	for _, conn := range p.Connections {
		if conn.ID == id {
			return conn, true
		}
	}
	return Connection{}, false
}

// FindSuggestion returns the suggestion for a (module, parameter) pair.
func (p *Patch) FindSuggestion(moduleID, parameter string) (ParameterSuggestion, bool) {
	for _, sug := range p.ParameterSuggestions {
		if sug.ModuleID == moduleID && strings.EqualFold(sug.Parameter, parameter) {
			return sug, true
		}
	}
	return ParameterSuggestion{}, false
}

// OrderedConnections returns connections in patching order. Connections
// missing from PatchingOrder are appended in declaration order so nothing
// silently disappears from a rendering.
func (p *Patch) OrderedConnections() []Connection {
	seen := make(map[string]bool, len(p.Connections))
	ordered := make([]Connection, 0, len(p.Connections))
	for _, id := range p.PatchingOrder {
		if conn, ok := p.ConnectionByID(id); ok && !seen[id] {
			ordered = append(ordered, conn)
			seen[id] = true
		}
	}
	for _, conn := range p.Connections {
		if !seen[conn.ID] {
			ordered = append(ordered, conn)
			seen[conn.ID] = true
		}
	}
	return ordered
}

// LastPrimaryAudioTap returns the downstream end of the last primary audio
// connection in patching order. That module is the current end of the audio
// chain and the natural place to splice in a new effect.
func (p *Patch) LastPrimaryAudioTap() (PortRef, bool) {
	var tap PortRef
	found := false
	for _, conn := range p.OrderedConnections() {
		if conn.Importance == ImportancePrimary && conn.SignalType == SignalAudio {
			tap = conn.To
			found = true
		}
	}
	return tap, found
}

// Validate checks the structural invariants: every patching-order id refers
// to a real connection, connection ids are unique, and there is at most one
// suggestion per (module, parameter) pair.
func (p *Patch) Validate() error {
	ids := make(map[string]bool, len(p.Connections))
	for _, conn := range p.Connections {
		if conn.ID == "" {
			return fmt.Errorf("patch %s: connection without id", p.ID)
		}
		if ids[conn.ID] {
			return fmt.Errorf("patch %s: duplicate connection id %s", p.ID, conn.ID)
		}
		ids[conn.ID] = true
	}
	for _, id := range p.PatchingOrder {
		if !ids[id] {
			return fmt.Errorf("patch %s: patching order references unknown connection %s", p.ID, id)
		}
	}
	pairs := make(map[string]bool, len(p.ParameterSuggestions))
	for _, sug := range p.ParameterSuggestions {
		key := sug.ModuleID + "\x00" + strings.ToLower(sug.Parameter)
		if pairs[key] {
			return fmt.Errorf("patch %s: duplicate suggestion for %s %s", p.ID, sug.ModuleName, sug.Parameter)
		}
		pairs[key] = true
	}
	return nil
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
