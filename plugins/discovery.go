package plugins

import (
	"fmt"

	"github.com/voltlab/patchmind/internal/feedback"
)

// LoadLexicon builds the parser lexicon from the built-in tables plus every
// rule pack found in dir (YAML and interpreted Go). Rule ids must be unique
// across packs; a collision is a configuration error worth failing loudly
// on rather than silently shadowing someone's rule.
func LoadLexicon(dir string) (feedback.Lexicon, error) {
	lex := feedback.DefaultLexicon()
	packs, err := loadAllPackFiles(dir)
	if err != nil {
		return feedback.Lexicon{}, err
	}
	seen := make(map[string]string)
	for _, file := range packs {
		for _, rule := range file.Pack.Rules {
			if existing, ok := seen[rule.ID]; ok {
				return feedback.Lexicon{}, fmt.Errorf("plugin: duplicate rule id %s (%s and %s)", rule.ID, existing, file.Path)
			}
			seen[rule.ID] = file.Path
		}
		lex = file.Pack.ExtendLexicon(lex)
	}
	return lex, nil
}

func loadAllPackFiles(dir string) ([]PackFile, error) {
	yamlPacks, err := LoadPackDir(dir)
	if err != nil {
		return nil, err
	}
	goPacks, err := LoadGoPackDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlPacks, goPacks...), nil
}
