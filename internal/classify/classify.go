// Package classify scores each article's pertinence to the configured
// subject domain and filters out everything at or below the relevance
// threshold. Scoring strategies are pluggable behind the Scorer interface.
package classify

import (
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/logger"
	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// Scorer rates a text's relevance. Implementations must be deterministic for
// identical input and configuration, and free of side effects on the article.
type Scorer interface {
	Score(title, body string) (category string, score float64, err error)
}

type Classifier struct {
	scorer    Scorer
	threshold float64
}

func New(scorer Scorer, threshold float64) *Classifier {
	return &Classifier{scorer: scorer, threshold: threshold}
}

// Classify scores one article. retained is true only when the score is
// strictly above the threshold; a scorer error counts as score zero.
func (c *Classifier) Classify(a newsletter.Article) (newsletter.ClassifiedArticle, bool) {
	category, score, err := c.scorer.Score(a.Title, a.Body)
	if err != nil {
		logger.Warn("classification failed, treating as irrelevant", "title", a.Title, "error", err)
		category, score = "", 0
	}
	if category == "" && score > c.threshold {
		category = newsletter.CategoryUnclassified
	}

	classified := newsletter.ClassifiedArticle{
		Article:        a,
		RelevanceScore: score,
		Category:       category,
	}
	return classified, score > c.threshold
}

// ClassifyAll filters a batch, returning the retained articles and the count
// filtered out (scorer errors included).
func (c *Classifier) ClassifyAll(articles []newsletter.Article) ([]newsletter.ClassifiedArticle, int) {
	kept := make([]newsletter.ClassifiedArticle, 0, len(articles))
	filtered := 0
	for _, a := range articles {
		classified, retained := c.Classify(a)
		if !retained {
			filtered++
			continue
		}
		kept = append(kept, classified)
	}
	return kept, filtered
}
