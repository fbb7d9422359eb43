package metrics

import (
	"testing"
	"time"
)

func TestMetrics_CountersAndStats(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	m.AddFetched(10)
	m.AddDuplicatesFiltered(3)
	m.AddRelevanceFiltered(2)
	m.AddSummaries(4, 1, 1)
	m.IncrementSourceFailures()
	m.IncrementNewslettersAssembled()
	m.RecordRunDuration(2 * time.Second)
	m.SetLastRun()

	stats := m.GetStats()
	if stats["articles_fetched"].(int64) != 10 {
		t.Errorf("articles_fetched = %v, want 10", stats["articles_fetched"])
	}
	if stats["summaries_ok"].(int64) != 4 || stats["summaries_truncated"].(int64) != 1 {
		t.Errorf("summary counters wrong: %v", stats)
	}
	if stats["newsletters_assembled"].(int64) != 1 {
		t.Errorf("newsletters_assembled = %v, want 1", stats["newsletters_assembled"])
	}
	if !stats["is_healthy"].(bool) {
		t.Errorf("expected healthy after SetLastRun")
	}
}

func TestMetrics_SetErrorMarksUnhealthy(t *testing.T) {
	m := &Metrics{IsHealthy: true}
	m.SetError("ledger unavailable")

	stats := m.GetStats()
	if stats["is_healthy"].(bool) {
		t.Errorf("expected unhealthy after SetError")
	}
	if stats["last_error"].(string) != "ledger unavailable" {
		t.Errorf("last_error = %v", stats["last_error"])
	}
}
