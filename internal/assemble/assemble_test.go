package assemble

import (
	"strings"
	"testing"
	"time"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

func summarized(title, category string, score float64, published time.Time, status newsletter.SummaryStatus) newsletter.SummarizedArticle {
	return newsletter.SummarizedArticle{
		ClassifiedArticle: newsletter.ClassifiedArticle{
			Article: newsletter.Article{
				Title:       title,
				URL:         "https://example.com/" + title,
				PublishedAt: published,
			},
			RelevanceScore: score,
			Category:       category,
		},
		Summary:       "summary of " + title,
		SummaryStatus: status,
	}
}

func TestAssemble_FailedArticlesDropped(t *testing.T) {
	now := time.Now()
	a := New(nil)

	n := a.Assemble([]newsletter.SummarizedArticle{
		summarized("good", "water", 50, now, newsletter.StatusOK),
		summarized("broken", "water", 60, now, newsletter.StatusFailed),
	}, newsletter.TimeRange{Start: now.Add(-24 * time.Hour), End: now}, now)

	if len(n.Sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(n.Sections))
	}
	if len(n.Sections[0].Articles) != 1 || n.Sections[0].Articles[0].Title != "good" {
		t.Errorf("failed article leaked into the newsletter: %+v", n.Sections[0].Articles)
	}
}

func TestAssemble_EmptyCategoriesOmitted(t *testing.T) {
	now := time.Now()
	a := New([]string{"water", "climate"})

	n := a.Assemble([]newsletter.SummarizedArticle{
		summarized("only-failed", "climate", 50, now, newsletter.StatusFailed),
		summarized("ok", "water", 50, now, newsletter.StatusOK),
	}, newsletter.TimeRange{}, now)

	if len(n.Sections) != 1 || n.Sections[0].Category != "water" {
		t.Errorf("expected only the water section, got %+v", n.Sections)
	}
}

func TestAssemble_CategoryOrder(t *testing.T) {
	now := time.Now()
	a := New([]string{"climate", "water"})

	n := a.Assemble([]newsletter.SummarizedArticle{
		summarized("w", "water", 10, now, newsletter.StatusOK),
		summarized("z", "zoning", 10, now, newsletter.StatusOK),
		summarized("c", "climate", 10, now, newsletter.StatusOK),
		summarized("b", "biodiversity", 10, now, newsletter.StatusOK),
	}, newsletter.TimeRange{}, now)

	got := make([]string, len(n.Sections))
	for i, s := range n.Sections {
		got[i] = s.Category
	}
	want := []string{"climate", "water", "biodiversity", "zoning"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("section order = %v, want %v", got, want)
		}
	}
}

func TestAssemble_ArticleOrderWithinCategory(t *testing.T) {
	now := time.Now()
	a := New(nil)

	n := a.Assemble([]newsletter.SummarizedArticle{
		summarized("older-high", "water", 90, now.Add(-3*time.Hour), newsletter.StatusOK),
		summarized("newer-low", "water", 40, now, newsletter.StatusOK),
		summarized("newer-high", "water", 90, now.Add(-time.Hour), newsletter.StatusOK),
	}, newsletter.TimeRange{}, now)

	articles := n.Sections[0].Articles
	want := []string{"newer-high", "older-high", "newer-low"}
	for i := range want {
		if articles[i].Title != want[i] {
			t.Fatalf("article order wrong at %d: got %s, want %s", i, articles[i].Title, want[i])
		}
	}
}

func TestMarkdownRendering(t *testing.T) {
	now := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	a := New([]string{"water"})

	n := a.Assemble([]newsletter.SummarizedArticle{
		summarized("River cleanup announced", "water", 50, now, newsletter.StatusOK),
	}, newsletter.TimeRange{Start: now.Add(-24 * time.Hour), End: now}, now)

	md := Markdown(n)
	for _, want := range []string{"## Water", "[River cleanup announced]", "summary of River cleanup announced"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
