package refine

import (
	"strings"
	"time"

	"github.com/voltlab/patchmind/internal/patch"
)

// Applier merges modifications into patches. Application is pure: the input
// patch is never touched, the result is a fresh value. There is no partial
// application; the validator rejects bad modifications before they get here.
type Applier struct {
	now func() time.Time
}

// ApplierOption customizes applier construction.
type ApplierOption func(*Applier)

// WithClock overrides the timestamp source (tests).
func WithClock(clock func() time.Time) ApplierOption {
	return func(a *Applier) {
		if clock != nil {
			a.now = clock
		}
	}
}

// NewApplier builds an applier stamping with the wall clock.
func NewApplier(opts ...ApplierOption) *Applier {
	a := &Applier{now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Apply merges the modification into a clone of the patch. Parameter
// changes upsert on the (module, parameter) pair so re-applying the same
// change can never grow the suggestion list; added connections keep ids
// unique; removals also drop the id from the patching order so the order
// invariant holds.
func (a *Applier) Apply(p *patch.Patch, mod Modification) *patch.Patch {
	out := p.Clone()
	for _, change := range mod.Changes.ParametersChanged {
		upsertSuggestion(out, change)
	}
	for _, conn := range mod.Changes.ConnectionsAdded {
		if _, exists := out.ConnectionByID(conn.ID); exists {
			continue
		}
		out.Connections = append(out.Connections, conn)
		out.PatchingOrder = append(out.PatchingOrder, conn.ID)
	}
	for _, conn := range mod.Changes.ConnectionsRemoved {
		removeConnection(out, conn)
	}
	out.UpdatedAt = a.now()
	return out
}

func upsertSuggestion(p *patch.Patch, change ParameterChange) {
	for i, sug := range p.ParameterSuggestions {
		if sug.ModuleID == change.ModuleID && strings.EqualFold(sug.Parameter, change.Parameter) {
			p.ParameterSuggestions[i].Value = change.NewValue
			if change.Reasoning != "" {
				p.ParameterSuggestions[i].Reasoning = change.Reasoning
			}
			return
		}
	}
	p.ParameterSuggestions = append(p.ParameterSuggestions, patch.ParameterSuggestion{
		ModuleID:   change.ModuleID,
		ModuleName: change.ModuleName,
		Parameter:  change.Parameter,
		Value:      change.NewValue,
		Reasoning:  change.Reasoning,
	})
}

func removeConnection(p *patch.Patch, target patch.Connection) {
	kept := p.Connections[:0]
	for _, conn := range p.Connections {
		if sameConnection(conn, target) {
			continue
		}
		kept = append(kept, conn)
	}
	p.Connections = kept
	order := p.PatchingOrder[:0]
	for _, id := range p.PatchingOrder {
		if _, ok := p.ConnectionByID(id); ok {
			order = append(order, id)
		}
	}
	p.PatchingOrder = order
}

// sameConnection matches by id when one is present, otherwise by endpoint
// equality, so mapper-synthesized removals without ids still land.
func sameConnection(a, b patch.Connection) bool {
	if a.ID != "" && b.ID != "" {
		return a.ID == b.ID
	}
	return a.From == b.From && a.To == b.To
}
