package source

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// RSSConnector pulls one RSS/Atom feed and normalizes its items.
type RSSConnector struct {
	id          string
	feedURL     string
	extractFull bool // fetch the article page when the feed body is too thin
	minBodyLen  int
	parser      *gofeed.Parser
	extractor   *Extractor
}

type RSSOption func(*RSSConnector)

// WithFullExtraction enables fetching the linked page via the extractor when
// the feed-provided body is shorter than minBodyLen runes.
func WithFullExtraction(e *Extractor, minBodyLen int) RSSOption {
	return func(c *RSSConnector) {
		c.extractFull = true
		c.extractor = e
		c.minBodyLen = minBodyLen
	}
}

func NewRSSConnector(id, feedURL string, client *http.Client, opts ...RSSOption) *RSSConnector {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	c := &RSSConnector{
		id:      id,
		feedURL: feedURL,
		parser:  parser,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RSSConnector) ID() string { return c.id }

// Fetch downloads and parses the feed, keeping items inside the window.
// Items without a title or link are skipped as malformed.
func (c *RSSConnector) Fetch(ctx context.Context, window newsletter.TimeRange) ([]newsletter.Article, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, unavailable(c.id, err)
	}

	articles := make([]newsletter.Article, 0, len(feed.Items))
	skipped := 0
	for _, item := range feed.Items {
		article, ok := c.normalizeItem(item)
		if !ok {
			skipped++
			continue
		}
		if !window.Contains(article.PublishedAt) {
			continue
		}
		if c.extractFull && len([]rune(article.Body)) < c.minBodyLen {
			if full, err := c.extractor.Extract(ctx, article.URL); err == nil && len(full) > len(article.Body) {
				article.Body = full
				article.ContentHash = newsletter.ContentHash(article.Title, article.Body)
			}
		}
		articles = append(articles, article)
	}

	if skipped > 0 {
		logger.Warn("skipped malformed feed items", "source", c.id, "count", skipped)
	}
	logger.Info("feed fetched", "source", c.id, "items", len(feed.Items), "kept", len(articles))
	return articles, nil
}

// normalizeItem maps one feed item onto the canonical Article shape. Reports
// ok=false for items missing the fields we cannot work without.
func (c *RSSConnector) normalizeItem(item *gofeed.Item) (newsletter.Article, bool) {
	if item == nil {
		return newsletter.Article{}, false
	}

	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return newsletter.Article{}, false
	}

	body := strings.TrimSpace(item.Content)
	if body == "" {
		body = strings.TrimSpace(item.Description)
	}
	body = stripHTML(body)

	externalID := strings.TrimSpace(item.GUID)
	if externalID == "" {
		externalID = link
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		published = *item.UpdatedParsed
	}

	return newsletter.Article{
		SourceID:    c.id,
		ExternalID:  externalID,
		URL:         link,
		Title:       title,
		Body:        body,
		PublishedAt: published,
		ContentHash: newsletter.ContentHash(title, body),
	}, true
}

// stripHTML removes tags and collapses whitespace. Feed descriptions often
// embed markup that would otherwise pollute hashing and summarization.
func stripHTML(s string) string {
	if !strings.ContainsRune(s, '<') {
		return strings.Join(strings.Fields(s), " ")
	}

	inTag := false
	var b strings.Builder
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
