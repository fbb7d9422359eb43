// Package summarize condenses classified articles into bounded-length
// synopses via a language-generation backend, under bounded concurrency,
// per-call timeouts, a retry/backoff policy, and an outbound rate cap.
package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/retry"
)

type Config struct {
	Workers           int           // simultaneous in-flight backend calls
	CallTimeout       time.Duration // per-call deadline, expiry = transient
	MaxAttempts       int
	RetryDelay        time.Duration
	MaxRetryDelay     time.Duration
	MaxInputChars     int // prompt body budget, runes
	MaxSummaryChars   int // output budget, runes
	RequestsPerMinute int // outbound rate cap, 0 = uncapped
	RequestBudget     int // backend calls allowed per run, 0 = unlimited
}

func (c *Config) applyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 3
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 30 * time.Second
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
	if c.MaxInputChars <= 0 {
		c.MaxInputChars = 6000
	}
	if c.MaxSummaryChars <= 0 {
		c.MaxSummaryChars = 1200
	}
}

type Summarizer struct {
	backend Backend
	cfg     Config
	limiter *rate.Limiter
	cache   *Cache // optional
}

func New(backend Backend, cfg Config, cache *Cache) *Summarizer {
	cfg.applyDefaults()
	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), cfg.Workers)
	}
	return &Summarizer{
		backend: backend,
		cfg:     cfg,
		limiter: limiter,
		cache:   cache,
	}
}

// SummarizeAll produces exactly one SummarizedArticle per input, in input
// order. Failures never drop an article: it comes back with StatusFailed and
// an empty summary. The worker pool is the pipeline's backpressure point.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []newsletter.ClassifiedArticle) []newsletter.SummarizedArticle {
	results := make([]newsletter.SummarizedArticle, len(articles))
	if len(articles) == 0 {
		return results
	}

	budget := int64(s.cfg.RequestBudget)

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = s.summarizeOne(ctx, articles[idx], &budget)
			}
		}()
	}

	for idx := range articles {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Summarizer) summarizeOne(ctx context.Context, article newsletter.ClassifiedArticle, budget *int64) newsletter.SummarizedArticle {
	out := newsletter.SummarizedArticle{ClassifiedArticle: article}

	if s.cache != nil {
		if summary, status, hit := s.cache.Get(article.ContentHash); hit {
			logger.Debug("summary cache hit", "title", article.Title)
			out.Summary = summary
			out.SummaryStatus = status
			return out
		}
	}

	if s.cfg.RequestBudget > 0 && atomic.AddInt64(budget, -1) < 0 {
		logger.Warn("summary request budget exhausted", "title", article.Title)
		out.SummaryStatus = newsletter.StatusFailed
		return out
	}

	body := truncateRunes(article.Body, s.cfg.MaxInputChars)

	var raw string
	err := retry.WithRetry(ctx, retry.Config{
		MaxAttempts: s.cfg.MaxAttempts,
		Delay:       s.cfg.RetryDelay,
		MaxDelay:    s.cfg.MaxRetryDelay,
	}, IsTransient, func() error {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()

		var callErr error
		raw, callErr = s.backend.Summarize(callCtx, article.Title, body, s.cfg.MaxSummaryChars)
		return callErr
	})
	if err != nil {
		logger.Error("summarization failed", "backend", s.backend.Name(), "title", article.Title, "error", err)
		out.SummaryStatus = newsletter.StatusFailed
		return out
	}

	summary := sanitizeSummary(raw)
	if summary == "" {
		logger.Error("backend returned empty summary", "backend", s.backend.Name(), "title", article.Title)
		out.SummaryStatus = newsletter.StatusFailed
		return out
	}

	out.SummaryStatus = newsletter.StatusOK
	if len([]rune(summary)) > s.cfg.MaxSummaryChars {
		summary = truncateAtSentence(summary, s.cfg.MaxSummaryChars)
		out.SummaryStatus = newsletter.StatusTruncated
	}
	out.Summary = summary

	if s.cache != nil {
		s.cache.Set(article.ContentHash, out.Summary, out.SummaryStatus)
	}
	return out
}

// truncateRunes cuts s to at most max runes on a rune boundary.
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// truncateAtSentence cuts to max runes, preferring the last full sentence
// when it keeps a meaningful share of the budget.
func truncateAtSentence(s string, max int) string {
	trimmed := truncateRunes(s, max)
	if idx := strings.LastIndex(trimmed, ". "); idx > max/3 {
		trimmed = trimmed[:idx+1]
	}
	return strings.TrimSpace(trimmed)
}

var (
	labelPrefix    = regexp.MustCompile(`(?i)^(summary|synopsis|tl;dr)\s*:\s*`)
	inlineNote     = regexp.MustCompile(`(?i)\((note|disclaimer)[^)]*\)`)
	bracketedNote  = regexp.MustCompile(`(?i)\[(note|disclaimer)[^\]]*\]`)
	noteLinePrefix = regexp.MustCompile(`(?i)^(note|disclaimer)\s*:`)
)

// sanitizeSummary strips the boilerplate generation models like to attach:
// "Summary:" labels, parenthesized or bracketed notes, full disclaimer lines.
func sanitizeSummary(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = inlineNote.ReplaceAllString(s, "")
	s = bracketedNote.ReplaceAllString(s, "")

	var kept []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || noteLinePrefix.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	s = strings.Join(kept, " ")
	s = labelPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}

// buildPrompt is shared by the backends; kept here so prompts stay uniform
// across providers.
func buildPrompt(title, body string, maxChars int) string {
	return fmt.Sprintf(`Summarize the following news article in at most %d characters.
Keep proper nouns as-is. No preamble, no labels, no disclaimers - output only the summary text.

TITLE: %s

ARTICLE:
%s`, maxChars, title, body)
}
