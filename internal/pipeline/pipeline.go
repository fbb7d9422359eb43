// Package pipeline drives one end-to-end curation cycle: concurrent source
// fetches, deduplication against the run ledger, relevance classification,
// bounded-concurrency summarization, and newsletter assembly. Per-item
// failures stay contained in their stage; only an unreachable ledger is
// fatal to the run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/assemble"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/classify"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/dedup"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/ledger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/metrics"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/source"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/summarize"
)

// ErrLedgerUnavailable is the single fatal error class: without the ledger
// the idempotency guarantee is gone, so the run aborts instead of risking
// duplicate processing.
var ErrLedgerUnavailable = errors.New("ledger unavailable")

type Deps struct {
	Connectors []source.Connector
	Ledger     ledger.Store
	Classifier *classify.Classifier
	Summarizer *summarize.Summarizer
	Assembler  *assemble.Assembler

	SimilarityThreshold float64
	FetchTimeout        time.Duration
	RunDeadline         time.Duration // 0 = no overall deadline
}

type Orchestrator struct {
	connectors   []source.Connector
	store        ledger.Store
	dedup        *dedup.Deduplicator
	classifier   *classify.Classifier
	summarizer   *summarize.Summarizer
	assembler    *assemble.Assembler
	fetchTimeout time.Duration
	runDeadline  time.Duration
}

func New(deps Deps) *Orchestrator {
	fetchTimeout := deps.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = 30 * time.Second
	}
	return &Orchestrator{
		connectors:   deps.Connectors,
		store:        deps.Ledger,
		dedup:        dedup.New(deps.SimilarityThreshold, &ledgerGate{store: deps.Ledger}),
		classifier:   deps.Classifier,
		summarizer:   deps.Summarizer,
		assembler:    deps.Assembler,
		fetchTimeout: fetchTimeout,
		runDeadline:  deps.RunDeadline,
	}
}

// Run executes one cycle over the given window. It always returns a
// Newsletter and a report unless the ledger itself is unreachable.
func (o *Orchestrator) Run(ctx context.Context, window newsletter.TimeRange) (*newsletter.Newsletter, *newsletter.RunReport, error) {
	started := time.Now()
	defer func() {
		metrics.Global.RecordRunDuration(time.Since(started))
	}()

	if o.runDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.runDeadline)
		defer cancel()
	}

	report := &newsletter.RunReport{RunID: uuid.NewString()}
	logger.Info("run started", "run_id", report.RunID,
		"window_start", window.Start, "window_end", window.End)

	// The ledger is the idempotency backbone; probe it before doing any
	// work so an unreachable store aborts cleanly instead of half-running.
	if err := o.store.Cleanup(ctx); err != nil {
		metrics.Global.SetError(err.Error())
		return nil, report, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	merged := o.fetchAll(ctx, window, report)
	report.Fetched = len(merged)
	metrics.Global.AddFetched(len(merged))

	dedupRes := o.dedup.Deduplicate(ctx, merged)
	report.DedupedOut = dedupRes.DroppedTotal()
	metrics.Global.AddDuplicatesFiltered(report.DedupedOut)

	classified, filteredOut := o.classifier.ClassifyAll(dedupRes.Kept)
	report.FilteredOut = filteredOut
	metrics.Global.AddRelevanceFiltered(filteredOut)

	summarized := o.summarizer.SummarizeAll(ctx, classified)
	for _, article := range summarized {
		switch article.SummaryStatus {
		case newsletter.StatusOK:
			report.SummarizedOK++
		case newsletter.StatusTruncated:
			report.SummarizedTruncated++
		case newsletter.StatusFailed:
			report.SummarizedFailed++
		}
	}
	metrics.Global.AddSummaries(report.SummarizedOK, report.SummarizedTruncated, report.SummarizedFailed)

	result := o.assembler.Assemble(summarized, window, time.Now())
	metrics.Global.IncrementNewslettersAssembled()

	// Every article that reached a terminal state lands in the ledger;
	// failed entries stay retryable on the next run. Writes are serialized
	// here, the stores also guarantee atomic upserts on their own. The run
	// deadline must not cancel this bookkeeping: an article already placed
	// in the newsletter but missing from the ledger would be re-included by
	// the next run.
	persistCtx := context.WithoutCancel(ctx)
	for _, article := range summarized {
		entry := ledger.Entry{
			ContentHash: article.ContentHash,
			RunID:       report.RunID,
			Outcome:     outcomeFor(article.SummaryStatus),
			SeenAt:      time.Now(),
		}
		if err := o.store.Upsert(persistCtx, entry); err != nil {
			logger.Error("ledger upsert failed", "content_hash", article.ContentHash, "error", err)
		}
	}

	report.Degraded = report.SummarizedOK+report.SummarizedTruncated == 0
	if report.Degraded {
		logger.Warn("run degraded: no articles survived to assembly", "run_id", report.RunID)
	}

	metrics.Global.SetLastRun()
	logger.Info("run finished", "run_id", report.RunID,
		"fetched", report.Fetched, "deduped_out", report.DedupedOut,
		"filtered_out", report.FilteredOut, "summarized_ok", report.SummarizedOK,
		"summarized_failed", report.SummarizedFailed, "degraded", report.Degraded)

	return result, report, nil
}

// fetchAll runs every connector concurrently, each under its own timeout.
// A failing source is recorded on the report and skipped; the rest continue.
func (o *Orchestrator) fetchAll(ctx context.Context, window newsletter.TimeRange, report *newsletter.RunReport) []newsletter.Article {
	var (
		mu     sync.Mutex
		merged []newsletter.Article
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, connector := range o.connectors {
		connector := connector
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, o.fetchTimeout)
			defer cancel()

			articles, err := connector.Fetch(fetchCtx, window)
			if err != nil {
				logger.Warn("source fetch failed, skipping", "source", connector.ID(), "error", err)
				metrics.Global.IncrementSourceFailures()
				mu.Lock()
				report.SourceFailures = append(report.SourceFailures, connector.ID())
				mu.Unlock()
				return nil // non-fatal for the run
			}

			mu.Lock()
			merged = append(merged, articles...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // goroutines only ever return nil

	return merged
}

func outcomeFor(status newsletter.SummaryStatus) ledger.Outcome {
	switch status {
	case newsletter.StatusOK:
		return ledger.OutcomeOK
	case newsletter.StatusTruncated:
		return ledger.OutcomeTruncated
	default:
		return ledger.OutcomeFailed
	}
}

// ledgerGate adapts the ledger store to the deduplicator: only ok/truncated
// outcomes block reprocessing, failed ones stay eligible for retry. Lookup
// errors are logged and treated as absent so one flaky read never drops an
// article.
type ledgerGate struct {
	store ledger.Store
}

func (g *ledgerGate) IsProcessed(ctx context.Context, contentHash string) bool {
	outcome, found, err := g.store.Lookup(ctx, contentHash)
	if err != nil {
		logger.Warn("ledger lookup failed, treating as absent", "error", err)
		return false
	}
	return found && outcome != ledger.OutcomeFailed
}
