package classify

import (
	"regexp"
	"strings"
)

// Rule defines one category: keywords scored individually, multi-word
// phrases scored double, all weighted. Rules come from configuration.
type Rule struct {
	Name     string
	Keywords []string
	Phrases  []string
	Weight   float64
}

type compiledRule struct {
	name    string
	weight  float64
	words   []matcher
	phrases []string
}

// matcher distinguishes short tokens, which need word-boundary matching so
// "ai" doesn't fire inside "said", from longer substrings.
type matcher struct {
	token string
	re    *regexp.Regexp
}

// KeywordScorer scores text against configured category rules. Matching is
// pure and deterministic for a fixed rule set.
type KeywordScorer struct {
	rules   []compiledRule
	exclude []matcher
}

// NewKeywordScorer compiles the rules once. excludeKeywords short-circuit
// scoring to zero (topics the newsletter never carries).
func NewKeywordScorer(rules []Rule, excludeKeywords []string) *KeywordScorer {
	s := &KeywordScorer{
		exclude: compileMatchers(excludeKeywords),
	}
	for _, r := range rules {
		weight := r.Weight
		if weight <= 0 {
			weight = 10
		}
		cr := compiledRule{
			name:    r.Name,
			weight:  weight,
			words:   compileMatchers(r.Keywords),
			phrases: make([]string, 0, len(r.Phrases)),
		}
		for _, p := range r.Phrases {
			p = strings.ToLower(strings.TrimSpace(p))
			if p != "" {
				cr.phrases = append(cr.phrases, p)
			}
		}
		s.rules = append(s.rules, cr)
	}
	return s
}

func compileMatchers(keywords []string) []matcher {
	out := make([]matcher, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		m := matcher{token: k}
		if len(k) <= 3 && !strings.Contains(k, " ") {
			m.re = regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`)
		}
		out = append(out, m)
	}
	return out
}

func (m matcher) matches(text string) bool {
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.token)
}

// Score returns the best-matching category and its score for the given text.
// The score is the weighted match count clamped to [0, 100]; phrases count
// double. An empty category with score 0 means nothing matched.
func (s *KeywordScorer) Score(title, body string) (string, float64, error) {
	text := strings.ToLower(title + " " + body)

	for _, m := range s.exclude {
		if m.matches(text) {
			return "", 0, nil
		}
	}

	bestCategory := ""
	bestScore := 0.0
	for _, rule := range s.rules {
		hits := 0.0
		for _, m := range rule.words {
			if m.matches(text) {
				hits++
			}
		}
		for _, p := range rule.phrases {
			if strings.Contains(text, p) {
				hits += 2
			}
		}
		score := hits * rule.weight
		if score > 100 {
			score = 100
		}
		if score > bestScore {
			bestScore = score
			bestCategory = rule.name
		}
	}

	return bestCategory, bestScore, nil
}
