package newsletter

import "time"

// Section groups the summarized articles of one category, already ordered.
type Section struct {
	Category string              `json:"category"`
	Articles []SummarizedArticle `json:"articles"`
}

// Newsletter is the assembled output of one run. Immutable once built; the
// JSON shape is the stable contract handed to rendering/delivery layers.
type Newsletter struct {
	PeriodStart time.Time `json:"period_start"`
	PeriodEnd   time.Time `json:"period_end"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
}

// RunReport carries the observability counts for one run. It accompanies the
// Newsletter but is not part of it.
type RunReport struct {
	RunID               string   `json:"run_id"`
	Fetched             int      `json:"fetched"`
	DedupedOut          int      `json:"deduped_out"`
	FilteredOut         int      `json:"filtered_out"`
	SummarizedOK        int      `json:"summarized_ok"`
	SummarizedTruncated int      `json:"summarized_truncated"`
	SummarizedFailed    int      `json:"summarized_failed"`
	SourceFailures      []string `json:"source_failures,omitempty"`
	Degraded            bool     `json:"degraded"`
}
