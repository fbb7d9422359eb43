package classify

import (
	"errors"
	"testing"

	"github.com/michelKingmaLord/cpeq-infolettre-automatique/internal/newsletter"
)

// stubScorer returns a fixed verdict, for exercising the threshold rule.
type stubScorer struct {
	category string
	score    float64
	err      error
}

func (s stubScorer) Score(_, _ string) (string, float64, error) {
	return s.category, s.score, s.err
}

func TestClassify_ScoreAtThresholdIsExcluded(t *testing.T) {
	// Retention is strictly greater-than: a score exactly at the threshold
	// must be filtered out.
	c := New(stubScorer{category: "water", score: 20}, 20)

	_, retained := c.Classify(newsletter.Article{Title: "t", Body: "b"})
	if retained {
		t.Errorf("article at threshold was retained, want excluded")
	}

	c = New(stubScorer{category: "water", score: 20.01}, 20)
	classified, retained := c.Classify(newsletter.Article{Title: "t", Body: "b"})
	if !retained {
		t.Fatalf("article above threshold was excluded")
	}
	if classified.Category != "water" {
		t.Errorf("category = %q, want water", classified.Category)
	}
}

func TestClassify_ScorerErrorMeansFiltered(t *testing.T) {
	c := New(stubScorer{err: errors.New("scorer exploded")}, 0)

	classified, retained := c.Classify(newsletter.Article{Title: "t", Body: "b"})
	if retained {
		t.Errorf("errored article was retained")
	}
	if classified.RelevanceScore != 0 {
		t.Errorf("score = %f, want 0", classified.RelevanceScore)
	}
}

func TestClassify_DoesNotMutateArticle(t *testing.T) {
	a := newsletter.Article{Title: "original title", Body: "original body"}
	c := New(stubScorer{category: "water", score: 50}, 10)

	classified, _ := c.Classify(a)
	classified.Article.Title = "mutated"

	if a.Title != "original title" {
		t.Errorf("classification mutated the input article")
	}
}

func TestKeywordScorer_Matching(t *testing.T) {
	s := NewKeywordScorer([]Rule{
		{Name: "climate", Keywords: []string{"carbone", "climat"}, Phrases: []string{"gaz a effet de serre"}, Weight: 10},
		{Name: "water", Keywords: []string{"eau", "riviere"}, Weight: 10},
	}, []string{"horoscope"})

	category, score, err := s.Score("Le marche du carbone", "le climat change et les gaz a effet de serre augmentent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != "climate" {
		t.Errorf("category = %q, want climate", category)
	}
	// two keywords + one phrase (double) = 4 hits * weight 10
	if score != 40 {
		t.Errorf("score = %f, want 40", score)
	}
}

func TestKeywordScorer_ShortTokensNeedWordBoundaries(t *testing.T) {
	s := NewKeywordScorer([]Rule{
		{Name: "water", Keywords: []string{"eau"}, Weight: 10},
	}, nil)

	_, score, _ := s.Score("Beaucoup de bureaux", "nouveau reseau de beaute")
	if score != 0 {
		t.Errorf("short token matched inside words, score = %f, want 0", score)
	}

	_, score, _ = s.Score("Qualite de l'eau", "analyse de l'eau potable")
	if score == 0 {
		t.Errorf("standalone short token did not match")
	}
}

func TestKeywordScorer_ExcludeWins(t *testing.T) {
	s := NewKeywordScorer([]Rule{
		{Name: "water", Keywords: []string{"riviere"}, Weight: 10},
	}, []string{"horoscope"})

	category, score, _ := s.Score("Horoscope de la semaine", "la riviere des poissons")
	if category != "" || score != 0 {
		t.Errorf("excluded text scored (%q, %f), want empty", category, score)
	}
}

func TestKeywordScorer_Deterministic(t *testing.T) {
	s := NewKeywordScorer([]Rule{
		{Name: "a", Keywords: []string{"alpha", "beta"}, Weight: 7},
		{Name: "b", Keywords: []string{"gamma"}, Weight: 9},
	}, nil)

	title, body := "alpha beta gamma", "more alpha and gamma text"
	c1, s1, _ := s.Score(title, body)
	for i := 0; i < 50; i++ {
		c2, s2, _ := s.Score(title, body)
		if c1 != c2 || s1 != s2 {
			t.Fatalf("scoring not deterministic: (%q,%f) vs (%q,%f)", c1, s1, c2, s2)
		}
	}
}
