// Package rack models the user's module inventory. Racks are produced
// outside this program (the web scraper or the vision pipeline) and are
// strictly read-only here: the refinement engine consults a rack, it never
// changes one.
package rack

import (
	"fmt"
	"strings"
)

// Module is one piece of hardware in the rack.
type Module struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	HP      int      `yaml:"hp,omitempty"`
	PowerMA int      `yaml:"power_ma,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
}

// PrimaryInput returns the first declared input jack, falling back to a
// generic name for modules scraped without jack detail.
func (m Module) PrimaryInput() string {
	if len(m.Inputs) > 0 {
		return m.Inputs[0]
	}
	return "in"
}

// PrimaryOutput returns the first declared output jack.
func (m Module) PrimaryOutput() string {
	if len(m.Outputs) > 0 {
		return m.Outputs[0]
	}
	return "out"
}

// Matches reports whether the module's type or name contains the given
// category, case-insensitively. "reverb" matches a module typed "Effect"
// and named "FX Aid Reverb" as well as one typed "reverb".
func (m Module) Matches(category string) bool {
	needle := strings.ToLower(strings.TrimSpace(category))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(m.Type), needle) ||
		strings.Contains(strings.ToLower(m.Name), needle)
}

// Row describes one physical row of the case.
type Row struct {
	Index     int      `yaml:"index"`
	HP        int      `yaml:"hp,omitempty"`
	ModuleIDs []string `yaml:"module_ids,omitempty"`
}

// Rack is the parsed inventory for one case.
type Rack struct {
	ID           string   `yaml:"id,omitempty"`
	Name         string   `yaml:"name,omitempty"`
	Modules      []Module `yaml:"modules"`
	Rows         []Row    `yaml:"rows,omitempty"`
	TotalHP      int      `yaml:"total_hp,omitempty"`
	TotalPowerMA int      `yaml:"total_power_ma,omitempty"`
}

// ModuleByID looks up a module by id.
func (r Rack) ModuleByID(id string) (Module, bool) {
	for _, mod := range r.Modules {
		if mod.ID == id {
			return mod, true
		}
	}
	return Module{}, false
}

// HasModule reports whether the rack contains the module id.
func (r Rack) HasModule(id string) bool {
	_, ok := r.ModuleByID(id)
	return ok
}

// FindByCategory returns every module whose type or name contains the
// category, preserving rack order so the first match is stable.
func (r Rack) FindByCategory(category string) []Module {
	var found []Module
	for _, mod := range r.Modules {
		if mod.Matches(category) {
			found = append(found, mod)
		}
	}
	return found
}

// Validate checks the inventory is usable: every module needs an id and a
// name, ids must be unique, and rows may only reference known modules.
func (r Rack) Validate() error {
	if len(r.Modules) == 0 {
		return fmt.Errorf("rack: no modules in inventory")
	}
	seen := make(map[string]bool, len(r.Modules))
	for i, mod := range r.Modules {
		if strings.TrimSpace(mod.ID) == "" {
			return fmt.Errorf("rack: modules[%d]: id is required", i)
		}
		if strings.TrimSpace(mod.Name) == "" {
			return fmt.Errorf("rack: module %s: name is required", mod.ID)
		}
		if seen[mod.ID] {
			return fmt.Errorf("rack: duplicate module id %s", mod.ID)
		}
		seen[mod.ID] = true
	}
	for _, row := range r.Rows {
		for _, id := range row.ModuleIDs {
			if !seen[id] {
				return fmt.Errorf("rack: row %d references unknown module %s", row.Index, id)
			}
		}
	}
	return nil
}
