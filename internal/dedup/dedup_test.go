package dedup

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

type fakeLedger struct {
	processed map[string]bool
}

func (f *fakeLedger) IsProcessed(_ context.Context, hash string) bool {
	return f.processed[hash]
}

func article(sourceID, title, body string, published time.Time) newsletter.Article {
	return newsletter.Article{
		SourceID:    sourceID,
		URL:         "https://example.com/" + sourceID + "/" + newsletter.NormalizeText(title),
		Title:       title,
		Body:        body,
		PublishedAt: published,
		ContentHash: newsletter.ContentHash(title, body),
	}
}

const longBody = "The provincial government announced new wetland protection rules today. " +
	"The regulation introduces stricter compensation requirements for developers and " +
	"expands the inventory of protected areas across several administrative regions."

func TestDeduplicate_ExactDuplicateAcrossSources(t *testing.T) {
	// Scenario: identical title/body arriving from two different sources.
	now := time.Now()
	d := New(0.9, nil)

	res := d.Deduplicate(context.Background(), []newsletter.Article{
		article("src-a", "Wetland rules announced", longBody, now),
		article("src-b", "Wetland rules announced", longBody, now.Add(-time.Hour)),
	})

	if len(res.Kept) != 1 {
		t.Fatalf("kept %d articles, want 1", len(res.Kept))
	}
	if res.DroppedExact != 1 {
		t.Errorf("DroppedExact = %d, want 1", res.DroppedExact)
	}
}

func TestDeduplicate_LedgerBlocksReprocessing(t *testing.T) {
	now := time.Now()
	a := article("src-a", "Wetland rules announced", longBody, now)
	d := New(0.9, &fakeLedger{processed: map[string]bool{a.ContentHash: true}})

	res := d.Deduplicate(context.Background(), []newsletter.Article{a})
	if len(res.Kept) != 0 {
		t.Fatalf("kept %d articles, want 0 (already in ledger)", len(res.Kept))
	}
	if res.DroppedLedger != 1 {
		t.Errorf("DroppedLedger = %d, want 1", res.DroppedLedger)
	}
}

func TestDeduplicate_NearDuplicatesKeepLongestBody(t *testing.T) {
	now := time.Now()
	short := article("src-a", "Wetland rules announced", longBody, now)
	long := article("src-b", "Wetland rules announced by ministry", longBody+" Consultations begin next month.", now.Add(-2*time.Hour))

	d := New(0.5, nil)
	res := d.Deduplicate(context.Background(), []newsletter.Article{short, long})

	if len(res.Kept) != 1 {
		t.Fatalf("kept %d articles, want 1", len(res.Kept))
	}
	if res.Kept[0].SourceID != "src-b" {
		t.Errorf("kept %s, want the longer-bodied src-b", res.Kept[0].SourceID)
	}
	if res.DroppedNear != 1 {
		t.Errorf("DroppedNear = %d, want 1", res.DroppedNear)
	}
}

func TestDeduplicate_BridgingArticleMergesClusters(t *testing.T) {
	// Three tellings of one story where the longest one bridges the other
	// two: the short and medium variants are not similar enough to each
	// other, but the last-arriving variant is similar to both. All three
	// must collapse into a single cluster; keeping one representative per
	// partial cluster would leave two survivors above the threshold.
	now := time.Now()
	base := "provincial regulators announced stricter wetland compensation"
	short := article("src-a", "Wetland rules update", base, now)
	long := article("src-b", "Wetland rules update", base+" requirements nationwide", now)
	bridge := article("src-c", "Wetland rules update", base+" requirements", now)

	threshold := 0.8
	if sim := Jaccard(Fingerprint(short.Title, short.Body), Fingerprint(long.Title, long.Body)); sim > threshold {
		t.Fatalf("fixture broken: short/long similarity %f already above threshold", sim)
	}

	d := New(threshold, nil)
	res := d.Deduplicate(context.Background(), []newsletter.Article{short, long, bridge})

	if len(res.Kept) != 1 {
		t.Fatalf("kept %d articles, want 1 merged story", len(res.Kept))
	}
	if res.Kept[0].SourceID != "src-b" {
		t.Errorf("kept %s, want the longest-bodied src-b", res.Kept[0].SourceID)
	}
	if res.DroppedNear != 2 {
		t.Errorf("DroppedNear = %d, want 2", res.DroppedNear)
	}
	for i := 0; i < len(res.Kept); i++ {
		for j := i + 1; j < len(res.Kept); j++ {
			if sim := Jaccard(res.Kept[i].Fingerprint, res.Kept[j].Fingerprint); sim > threshold {
				t.Errorf("survivors %d and %d exceed threshold: %f", i, j, sim)
			}
		}
	}
}

func TestDeduplicate_SurvivorsBelowThreshold(t *testing.T) {
	now := time.Now()
	input := []newsletter.Article{
		article("a", "Wetland rules announced", longBody, now),
		article("b", "New battery plant breaks ground", "Construction of the battery materials plant started near the port, with production expected in two years.", now),
		article("c", "Carbon market prices rise", "Allowance prices on the joint carbon market rose sharply after the latest auction results were published.", now),
	}

	threshold := 0.9
	d := New(threshold, nil)
	res := d.Deduplicate(context.Background(), input)

	if len(res.Kept) != 3 {
		t.Fatalf("kept %d articles, want 3 distinct stories", len(res.Kept))
	}
	for i := 0; i < len(res.Kept); i++ {
		for j := i + 1; j < len(res.Kept); j++ {
			sim := Jaccard(res.Kept[i].Fingerprint, res.Kept[j].Fingerprint)
			if sim > threshold {
				t.Errorf("survivors %d and %d exceed threshold: %f", i, j, sim)
			}
		}
	}
}

func TestDeduplicate_UnfingerprintableExcluded(t *testing.T) {
	now := time.Now()
	broken := newsletter.Article{SourceID: "x", Title: "!!!", Body: "???", PublishedAt: now}
	ok := article("a", "Wetland rules announced", longBody, now)

	d := New(0.9, nil)
	res := d.Deduplicate(context.Background(), []newsletter.Article{broken, ok})

	if len(res.Kept) != 1 {
		t.Fatalf("kept %d, want 1", len(res.Kept))
	}
	if res.DroppedBroken != 1 {
		t.Errorf("DroppedBroken = %d, want 1", res.DroppedBroken)
	}
}

func TestJaccard(t *testing.T) {
	a := Fingerprint("title one", strings.Repeat("the quick brown fox jumps over the lazy dog ", 3))
	if got := Jaccard(a, a); got != 1.0 {
		t.Errorf("self similarity = %f, want 1.0", got)
	}

	b := Fingerprint("unrelated", "completely different words about municipal budgets and transit fares")
	if got := Jaccard(a, b); got != 0 {
		t.Errorf("disjoint similarity = %f, want 0", got)
	}

	if got := Jaccard(nil, a); got != 0 {
		t.Errorf("nil fingerprint similarity = %f, want 0", got)
	}
}
