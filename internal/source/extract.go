package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Extractor fetches an article page and pulls the readable text out of it.
// Shared by connectors whose feeds only carry a teaser description.
type Extractor struct {
	client    *http.Client
	maxRunes  int
	userAgent string
}

func NewExtractor(timeout time.Duration, maxRunes int) *Extractor {
	if maxRunes <= 0 {
		maxRunes = 8000
	}
	return &Extractor{
		client:    &http.Client{Timeout: timeout},
		maxRunes:  maxRunes,
		userAgent: "infolettre/1.0 (+newsletter pipeline)",
	}
}

// Extract downloads url and returns the article body text.
func (e *Extractor) Extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	content := e.extractParagraphs(doc)
	if content == "" {
		return "", fmt.Errorf("no content extracted from %s", url)
	}
	return content, nil
}

// extractParagraphs walks common content selectors, most specific first, and
// stops at the first one yielding enough paragraphs.
func (e *Extractor) extractParagraphs(doc *goquery.Document) string {
	selectors := []string{
		"article p",
		".article-body p",
		".post-content p",
		".entry-content p",
		".content p",
		"main p",
		"p",
	}

	var paragraphs []string
	for _, selector := range selectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
		paragraphs = paragraphs[:0]
	}

	if len(paragraphs) == 0 {
		return ""
	}
	return e.clip(strings.Join(paragraphs, "\n\n"))
}

// clip trims the text to maxRunes, cutting at a paragraph boundary when one
// is close enough.
func (e *Extractor) clip(text string) string {
	runes := []rune(text)
	if len(runes) <= e.maxRunes {
		return text
	}
	clipped := string(runes[:e.maxRunes])
	if idx := strings.LastIndex(clipped, "\n\n"); idx > e.maxRunes/2 {
		clipped = clipped[:idx]
	}
	return strings.TrimSpace(clipped)
}
