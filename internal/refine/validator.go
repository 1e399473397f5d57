package refine

import (
	"fmt"

	"github.com/voltlab/patchmind/internal/patch"
	"github.com/voltlab/patchmind/internal/rack"
)

// Validation is the referential-integrity verdict for one modification.
// Valid is true exactly when Issues is empty.
type Validation struct {
	Valid  bool
	Issues []string
}

// Validate checks that every edit references modules that exist in the rack
// and, for removals, connections that exist in the patch. This is integrity
// checking against an external inventory, not schema validation; failures
// are reported as issues, never as errors.
func Validate(mod Modification, p *patch.Patch, rk rack.Rack) Validation {
	var issues []string
	for _, change := range mod.Changes.ParametersChanged {
		if !rk.HasModule(change.ModuleID) {
			issues = append(issues, fmt.Sprintf("Module %s not found in rack", change.ModuleName))
		}
	}
	for _, conn := range mod.Changes.ConnectionsAdded {
		if !rk.HasModule(conn.From.ModuleID) {
			issues = append(issues, fmt.Sprintf("Source module %s not found in rack", conn.From.ModuleName))
		}
		if !rk.HasModule(conn.To.ModuleID) {
			issues = append(issues, fmt.Sprintf("Target module %s not found in rack", conn.To.ModuleName))
		}
	}
	for _, conn := range mod.Changes.ConnectionsRemoved {
		if conn.ID == "" {
			continue
		}
		if _, ok := p.ConnectionByID(conn.ID); !ok {
			issues = append(issues, fmt.Sprintf("Connection %s not found in patch", conn.ID))
		}
	}
	return Validation{Valid: len(issues) == 0, Issues: issues}
}
