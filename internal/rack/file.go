package rack

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a rack inventory payload.
func Parse(data []byte) (Rack, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Rack{}, fmt.Errorf("rack: inventory payload is empty")
	}
	var r Rack
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rack{}, fmt.Errorf("rack: decode inventory: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rack{}, err
	}
	return r, nil
}

// Load reads a rack inventory file as produced by the scraping pipeline.
func Load(path string) (Rack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rack{}, fmt.Errorf("rack: read %s: %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return Rack{}, fmt.Errorf("rack: %s: %w", path, err)
	}
	return r, nil
}

// Demo returns a small built-in rack so the TUI works before the user has
// exported a real inventory.
func Demo() Rack {
	return Rack{
		ID:   "demo-rack",
		Name: "Starter Case",
		Modules: []Module{
			{ID: "vco-1", Name: "Dixie II+", Type: "Oscillator", HP: 8, Outputs: []string{"saw", "square", "sine"}},
			{ID: "vcf-1", Name: "Polaris Filter", Type: "Filter", HP: 10, Inputs: []string{"audio in", "cutoff cv"}, Outputs: []string{"lp out", "bp out"}},
			{ID: "vca-1", Name: "Veils", Type: "VCA", HP: 10, Inputs: []string{"in 1", "cv 1"}, Outputs: []string{"out 1"}},
			{ID: "env-1", Name: "Maths", Type: "Envelope", HP: 20, Inputs: []string{"trig 1"}, Outputs: []string{"env 1"}},
			{ID: "fx-1", Name: "FX Aid Reverb", Type: "Effect", HP: 4, Inputs: []string{"in l"}, Outputs: []string{"out l"}},
			{ID: "dly-1", Name: "Magneto Delay", Type: "Effect", HP: 16, Inputs: []string{"in l"}, Outputs: []string{"out l"}},
		},
		Rows:         []Row{{Index: 0, HP: 84, ModuleIDs: []string{"vco-1", "vcf-1", "vca-1", "env-1", "fx-1", "dly-1"}}},
		TotalHP:      68,
		TotalPowerMA: 540,
	}
}
