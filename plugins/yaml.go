package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// PackFile pairs a parsed rule pack with its on-disk source.
type PackFile struct {
	Pack RulePack
	Path string
}

// ParsePackYAML decodes and validates a single rule-pack payload.
func ParsePackYAML(data []byte) (RulePack, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RulePack{}, fmt.Errorf("plugin: pack payload is empty")
	}
	var pack RulePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return RulePack{}, fmt.Errorf("plugin: decode pack: %w", err)
	}
	if err := pack.Validate(); err != nil {
		return RulePack{}, err
	}
	return pack.Normalized(), nil
}

// LoadPackFile reads a YAML file from disk and returns the parsed pack.
func LoadPackFile(path string) (PackFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return PackFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return PackFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PackFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	pack, err := ParsePackYAML(data)
	if err != nil {
		return PackFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return PackFile{Pack: pack, Path: filepath.Clean(path)}, nil
}

// LoadPackDir scans a directory for *.yaml packs and returns them sorted by
// path for deterministic rule order. Missing directories mean "no packs".
func LoadPackDir(dir string) ([]PackFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var packs []PackFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !isYAMLFile(name) {
			continue
		}
		pack, err := LoadPackFile(filepath.Join(trimmed, name))
		if err != nil {
			return nil, err
		}
		packs = append(packs, pack)
	}
	if len(packs) == 0 {
		return nil, nil
	}
	sort.Slice(packs, func(i, j int) bool { return packs[i].Path < packs[j].Path })
	return packs, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
