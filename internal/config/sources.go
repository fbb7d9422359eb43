package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source describes one configured connector.
type Source struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"` // currently "rss"
	URL         string `yaml:"url"`
	ExtractFull bool   `yaml:"extract_full"`
}

// Category defines one scoring rule for the relevance classifier.
type Category struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Phrases  []string `yaml:"phrases"`
	Weight   float64  `yaml:"weight"`
}

// SourcesFile is the YAML layout of the sources/categories config.
type SourcesFile struct {
	Sources         []Source   `yaml:"sources"`
	Categories      []Category `yaml:"categories"`
	ExcludeKeywords []string   `yaml:"exclude_keywords"`
	DisplayOrder    []string   `yaml:"display_order"`
}

// LoadSources reads the sources/categories definition from a YAML file.
func LoadSources(path string) (*SourcesFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var sf SourcesFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&sf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(sf.Sources) == 0 {
		return nil, fmt.Errorf("%s defines no sources", path)
	}
	for i, s := range sf.Sources {
		if s.ID == "" || s.URL == "" {
			return nil, fmt.Errorf("source %d is missing id or url", i)
		}
		if s.Type != "" && s.Type != "rss" {
			return nil, fmt.Errorf("source %s: unsupported type %q", s.ID, s.Type)
		}
	}
	return &sf, nil
}
