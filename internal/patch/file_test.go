package patch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patches", "evening-pad.yaml")
	original := samplePatch()
	if err := Write(path, original); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != original.ID || loaded.Metadata.Title != original.Metadata.Title {
		t.Fatalf("unexpected patch: %+v", loaded)
	}
	if len(loaded.Connections) != len(original.Connections) {
		t.Fatalf("connections lost: %d vs %d", len(loaded.Connections), len(original.Connections))
	}
	if loaded.Connections[1].SignalType != SignalCV {
		t.Fatalf("signal type lost: %+v", loaded.Connections[1])
	}
	if err := loaded.Validate(); err != nil {
		t.Fatalf("loaded patch should validate: %v", err)
	}
}

func TestWriteNil(t *testing.T) {
	if err := Write(filepath.Join(t.TempDir(), "p.yaml"), nil); err == nil {
		t.Fatalf("writing a nil patch must fail")
	}
}

func TestLoadRejectsInvalidPatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	payload := `id: broken
connections:
  - id: c1
    from: {module_id: a, module_name: A, port: out}
    to: {module_id: b, module_name: B, port: in}
    signal_type: audio
    importance: primary
patching_order: [c1, ghost]
`
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}
