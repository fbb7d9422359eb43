// Package assemble turns the run's summarized articles into the final,
// deterministically ordered Newsletter structure.
package assemble

import (
	"sort"
	"time"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

type Assembler struct {
	displayOrder []string
	orderIndex   map[string]int
}

// New builds an assembler with the configured category display order.
// Categories not listed are appended after the configured ones, sorted
// alphabetically.
func New(displayOrder []string) *Assembler {
	idx := make(map[string]int, len(displayOrder))
	for i, category := range displayOrder {
		idx[category] = i
	}
	return &Assembler{displayOrder: displayOrder, orderIndex: idx}
}

// Assemble drops failed summaries, groups the rest by category, and orders
// everything: categories per configuration, articles by descending relevance
// then descending published time. Empty categories are omitted.
func (a *Assembler) Assemble(articles []newsletter.SummarizedArticle, period newsletter.TimeRange, generatedAt time.Time) *newsletter.Newsletter {
	byCategory := make(map[string][]newsletter.SummarizedArticle)
	for _, article := range articles {
		if article.SummaryStatus == newsletter.StatusFailed {
			continue
		}
		byCategory[article.Category] = append(byCategory[article.Category], article)
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool {
		return a.categoryLess(categories[i], categories[j])
	})

	sections := make([]newsletter.Section, 0, len(categories))
	for _, category := range categories {
		items := byCategory[category]
		sort.Slice(items, func(i, j int) bool {
			if items[i].RelevanceScore != items[j].RelevanceScore {
				return items[i].RelevanceScore > items[j].RelevanceScore
			}
			return items[i].PublishedAt.After(items[j].PublishedAt)
		})
		sections = append(sections, newsletter.Section{
			Category: category,
			Articles: items,
		})
	}

	return &newsletter.Newsletter{
		PeriodStart: period.Start,
		PeriodEnd:   period.End,
		GeneratedAt: generatedAt,
		Sections:    sections,
	}
}

// categoryLess orders configured categories by their configured position;
// unconfigured ones come after, alphabetically.
func (a *Assembler) categoryLess(x, y string) bool {
	xi, xok := a.orderIndex[x]
	yi, yok := a.orderIndex[y]
	switch {
	case xok && yok:
		return xi < yi
	case xok:
		return true
	case yok:
		return false
	default:
		return x < y
	}
}
