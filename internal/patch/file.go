package patch

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads a patch from a YAML file, typically one previously written by
// Write or produced by the generation service.
func Load(path string) (*Patch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("patch: read %s: %w", path, err)
	}
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("patch: decode %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("patch: %s: %w", path, err)
	}
	return &p, nil
}

// Write persists a patch as YAML. Callers decide when a patch deserves
// saving; this core only reports the decision.
func Write(path string, p *Patch) error {
	if p == nil {
		return fmt.Errorf("patch: nothing to write")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("patch: ensure dir for %s: %w", path, err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("patch: encode %s: %w", p.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("patch: write %s: %w", path, err)
	}
	return nil
}
