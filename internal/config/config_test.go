package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("SUMMARY_WORKERS", "5")
	t.Setenv("RELEVANCE_THRESHOLD", "35.5")
	t.Setenv("FETCH_TIMEOUT_SECONDS", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.SummaryBackend != "gemini" {
		t.Errorf("SummaryBackend = %q, want gemini default", cfg.SummaryBackend)
	}
	if cfg.SummaryWorkers != 5 {
		t.Errorf("SummaryWorkers = %d, want 5", cfg.SummaryWorkers)
	}
	if cfg.RelevanceThreshold != 35.5 {
		t.Errorf("RelevanceThreshold = %f, want 35.5", cfg.RelevanceThreshold)
	}
	if cfg.FetchTimeout != 10*time.Second {
		t.Errorf("FetchTimeout = %v, want 10s", cfg.FetchTimeout)
	}
	if cfg.SimilarityThreshold != 0.9 {
		t.Errorf("SimilarityThreshold = %f, want default 0.9", cfg.SimilarityThreshold)
	}
}

func TestLoad_MissingBackendKeyRejected(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SUMMARY_BACKEND", "gemini")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when GEMINI_API_KEY is unset")
	}

	t.Setenv("SUMMARY_BACKEND", "carrier-pigeon")
	t.Setenv("GEMINI_API_KEY", "x")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error on unknown backend")
	}
}

func TestLoadSources(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	yaml := `
sources:
  - id: feed-a
    type: rss
    url: https://example.com/a.xml
    extract_full: true
  - id: feed-b
    url: https://example.com/b.xml
categories:
  - name: water
    keywords: [eau, riviere]
    phrases: ["qualite de l'eau"]
    weight: 10
exclude_keywords: [horoscope]
display_order: [water]
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	sf, err := LoadSources(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sf.Sources) != 2 || !sf.Sources[0].ExtractFull {
		t.Errorf("sources parsed wrong: %+v", sf.Sources)
	}
	if len(sf.Categories) != 1 || sf.Categories[0].Weight != 10 {
		t.Errorf("categories parsed wrong: %+v", sf.Categories)
	}
	if len(sf.ExcludeKeywords) != 1 || sf.DisplayOrder[0] != "water" {
		t.Errorf("exclude/display parsed wrong: %+v", sf)
	}
}

func TestLoadSources_Validation(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"no sources":       "sources: []",
		"missing url":      "sources:\n  - id: a",
		"unsupported type": "sources:\n  - id: a\n    type: scrape\n    url: https://x",
	}
	for name, yaml := range cases {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
			t.Fatalf("write fixture: %v", err)
		}
		if _, err := LoadSources(path); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}
