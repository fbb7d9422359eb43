// Package newsletter holds the domain types shared by every pipeline stage.
package newsletter

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
	"unicode"
)

// SummaryStatus describes the terminal state of one summarization attempt.
type SummaryStatus string

const (
	StatusOK        SummaryStatus = "ok"
	StatusTruncated SummaryStatus = "truncated"
	StatusFailed    SummaryStatus = "failed"
)

// TimeRange is the window of published time covered by one run.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the window. A zero t is accepted:
// many feeds carry no usable published time and we would rather dedupe such
// items later than drop them at the door.
func (r TimeRange) Contains(t time.Time) bool {
	if t.IsZero() {
		return true
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// Article is one normalized candidate news item. Connectors create it; every
// later stage treats it as read-only.
type Article struct {
	SourceID    string    `json:"source_id"`
	ExternalID  string    `json:"external_id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PublishedAt time.Time `json:"published_at"`

	// ContentHash is the exact-duplicate key: sha256 over the normalized
	// title+body, identical for identical text regardless of source.
	ContentHash string `json:"content_hash"`

	// Fingerprint carries the hashed word shingles used for near-duplicate
	// detection. Filled in by the deduplicator, not serialized.
	Fingerprint []uint64 `json:"-"`
}

// ClassifiedArticle is an Article plus the classifier's verdict.
type ClassifiedArticle struct {
	Article
	RelevanceScore float64 `json:"relevance_score"`
	Category       string  `json:"category"`
}

// SummarizedArticle is a ClassifiedArticle plus its summary outcome.
type SummarizedArticle struct {
	ClassifiedArticle
	Summary       string        `json:"summary"`
	SummaryStatus SummaryStatus `json:"summary_status"`
}

// CategoryUnclassified is assigned when an article clears the relevance
// threshold without matching any configured category.
const CategoryUnclassified = "unclassified"

// NormalizeText lowercases, strips punctuation, and collapses whitespace so
// that cosmetic differences between providers don't defeat deduplication.
func NormalizeText(s string) string {
	s = strings.ToLower(s)
	b := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b = append(b, r)
		default:
			b = append(b, ' ')
		}
	}
	return strings.Join(strings.Fields(string(b)), " ")
}

// ContentHash returns the stable exact-duplicate key for a title/body pair.
func ContentHash(title, body string) string {
	h := sha256.New()
	h.Write([]byte(NormalizeText(title) + "|" + NormalizeText(body)))
	return hex.EncodeToString(h.Sum(nil))
}
