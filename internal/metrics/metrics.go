package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	ArticlesFetched     int64
	DuplicatesFiltered  int64
	RelevanceFiltered   int64
	SummariesOK         int64
	SummariesTruncated  int64
	SummariesFailed     int64
	SourceFailures      int64
	NewslettersAssembled int64

	// Timings
	LastRunDuration    time.Duration
	TotalRunDuration   time.Duration
	AverageRunDuration time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) AddFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) AddDuplicatesFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DuplicatesFiltered += int64(n)
}

func (m *Metrics) AddRelevanceFiltered(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RelevanceFiltered += int64(n)
}

func (m *Metrics) AddSummaries(ok, truncated, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummariesOK += int64(ok)
	m.SummariesTruncated += int64(truncated)
	m.SummariesFailed += int64(failed)
}

func (m *Metrics) IncrementSourceFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SourceFailures++
}

func (m *Metrics) IncrementNewslettersAssembled() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NewslettersAssembled++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"articles_fetched":        m.ArticlesFetched,
		"duplicates_filtered":     m.DuplicatesFiltered,
		"relevance_filtered":      m.RelevanceFiltered,
		"summaries_ok":            m.SummariesOK,
		"summaries_truncated":     m.SummariesTruncated,
		"summaries_failed":        m.SummariesFailed,
		"source_failures":         m.SourceFailures,
		"newsletters_assembled":   m.NewslettersAssembled,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
