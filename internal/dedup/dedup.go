// Package dedup removes exact and near-duplicate articles across connectors
// and across runs. Exact duplicates share a content hash; near-duplicates
// exceed a configured Jaccard similarity over word-shingle fingerprints.
package dedup

import (
	"context"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// Ledger is the slice of the run ledger the deduplicator consults: whether a
// content hash was already processed to a non-retryable outcome in a prior
// run within the retention window.
type Ledger interface {
	IsProcessed(ctx context.Context, contentHash string) bool
}

// Result is the deduplication outcome for one run's merged input.
type Result struct {
	Kept          []newsletter.Article
	DroppedExact  int // same content hash seen this run
	DroppedLedger int // content hash already in the ledger
	DroppedNear   int // lost the near-duplicate cluster election
	DroppedBroken int // fingerprint could not be computed
}

// DroppedTotal is the count reported as deduplicated-out.
func (r Result) DroppedTotal() int {
	return r.DroppedExact + r.DroppedLedger + r.DroppedNear + r.DroppedBroken
}

type Deduplicator struct {
	threshold float64
	ledger    Ledger
}

// New builds a deduplicator with the given near-duplicate similarity
// threshold (articles strictly above it are considered the same story).
func New(threshold float64, ledger Ledger) *Deduplicator {
	return &Deduplicator{threshold: threshold, ledger: ledger}
}

// Deduplicate filters the merged article stream of one run. The output
// contains no two articles with equal content hash and no two articles whose
// fingerprint similarity exceeds the threshold.
func (d *Deduplicator) Deduplicate(ctx context.Context, articles []newsletter.Article) Result {
	var res Result

	// Pass 1: exact dedup against this run and the ledger.
	seen := make(map[string]struct{}, len(articles))
	exact := make([]newsletter.Article, 0, len(articles))
	for _, a := range articles {
		hash := a.ContentHash
		if hash == "" {
			hash = newsletter.ContentHash(a.Title, a.Body)
		}
		if _, dup := seen[hash]; dup {
			res.DroppedExact++
			logger.Debug("exact duplicate dropped", "title", a.Title, "source", a.SourceID)
			continue
		}
		seen[hash] = struct{}{}

		if d.ledger != nil && d.ledger.IsProcessed(ctx, hash) {
			res.DroppedLedger++
			logger.Debug("already processed in a prior run", "title", a.Title)
			continue
		}

		a.ContentHash = hash
		exact = append(exact, a)
	}

	// Pass 2: near-duplicate clustering. Fingerprints live in a flat arena
	// indexed alongside the articles; clusters hold indexes, not pointers.
	fingerprints := make([][]uint64, 0, len(exact))
	indexed := make([]newsletter.Article, 0, len(exact))
	for _, a := range exact {
		fp := Fingerprint(a.Title, a.Body)
		if fp == nil {
			res.DroppedBroken++
			logger.Warn("could not fingerprint article, excluding", "title", a.Title, "source", a.SourceID)
			continue
		}
		a.Fingerprint = fp
		fingerprints = append(fingerprints, fp)
		indexed = append(indexed, a)
	}

	// An article can match several existing clusters (it bridges them); all
	// matched clusters collapse into one, otherwise two representatives of
	// the same story could survive.
	var clusters [][]int
	for i := range indexed {
		var matched []int
		for ci, members := range clusters {
			for _, j := range members {
				if Jaccard(fingerprints[i], fingerprints[j]) > d.threshold {
					matched = append(matched, ci)
					break
				}
			}
		}
		switch len(matched) {
		case 0:
			clusters = append(clusters, []int{i})
		case 1:
			clusters[matched[0]] = append(clusters[matched[0]], i)
		default:
			merged := append(clusters[matched[0]], i)
			for _, ci := range matched[1:] {
				merged = append(merged, clusters[ci]...)
			}
			clusters[matched[0]] = merged
			for k := len(matched) - 1; k >= 1; k-- {
				ci := matched[k]
				clusters = append(clusters[:ci], clusters[ci+1:]...)
			}
		}
	}

	res.Kept = make([]newsletter.Article, 0, len(clusters))
	for _, members := range clusters {
		rep := d.electRepresentative(indexed, members)
		res.DroppedNear += len(members) - 1
		res.Kept = append(res.Kept, indexed[rep])
	}

	return res
}

// electRepresentative picks the cluster member with the longest body,
// tie-broken by earliest published time.
func (d *Deduplicator) electRepresentative(articles []newsletter.Article, members []int) int {
	best := members[0]
	for _, idx := range members[1:] {
		a, b := articles[idx], articles[best]
		switch {
		case len(a.Body) > len(b.Body):
			best = idx
		case len(a.Body) == len(b.Body):
			if !a.PublishedAt.IsZero() && (b.PublishedAt.IsZero() || a.PublishedAt.Before(b.PublishedAt)) {
				best = idx
			}
		}
	}
	return best
}
