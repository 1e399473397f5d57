package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/voltlab/patchmind/internal/feedback"
	"github.com/voltlab/patchmind/internal/rack"
)

func rackStub() rack.Rack {
	return rack.Rack{Modules: []rack.Module{
		{ID: "vcf-1", Name: "Polaris Filter", Type: "Filter"},
	}}
}

func TestLoadLexiconMissingDir(t *testing.T) {
	lex, err := LoadLexicon(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("missing dir should not error: %v", err)
	}
	defaults := feedback.DefaultLexicon()
	if len(lex.Moods) != len(defaults.Moods) {
		t.Fatalf("expected the default lexicon, got %d moods", len(lex.Moods))
	}
}

func TestLoadLexiconMergesPacks(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "lofi.yaml"), []byte(samplePack), 0644); err != nil {
		t.Fatalf("write pack: %v", err)
	}
	lex, err := LoadLexicon(root)
	if err != nil {
		t.Fatalf("load lexicon: %v", err)
	}
	parser := feedback.NewParser(feedback.WithLexicon(lex))
	fb := parser.Parse("grittier", nil, rackStub())
	if fb.Target != "distortion_drive" {
		t.Fatalf("pack rule not active: %+v", fb)
	}
}

func TestLoadLexiconDuplicateRuleIDs(t *testing.T) {
	root := t.TempDir()
	pack := `name: %s
rules:
  - id: shared-rule
    kind: noun
    match: granular
`
	for _, name := range []string{"a.yaml", "b.yaml"} {
		payload := strings.Replace(pack, "%s", name, 1)
		if err := os.WriteFile(filepath.Join(root, name), []byte(payload), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	_, err := LoadLexicon(root)
	if err == nil {
		t.Fatalf("expected duplicate rule id error")
	}
	if !strings.Contains(err.Error(), "duplicate rule id shared-rule") {
		t.Fatalf("unexpected error: %v", err)
	}
}
