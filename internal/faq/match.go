package faq

import (
	"regexp"
	"strings"

	"flightassist/internal/model"
)

var locationWords = regexp.MustCompile(`(?i)(nerede|konum|noktalar|lokasyon|where|location|points)`)

// Similarity boosts, tuned against the production query log. Location
// and fasttrack questions cluster just below the plain Jaccard
// threshold, so matching intent words nudge them over it.
const (
	locationBoost  = 0.08
	fasttrackBoost = 0.06
)

// Match is one scored FAQ candidate
type Match struct {
	Item  model.FAQItem
	Score float64
}

// Matcher scores FAQ questions against a normalized query
type Matcher struct {
	threshold float64
	normalize func(s, lang string) string
}

// NewMatcher creates a matcher; threshold is the minimum accepted
// token similarity.
func NewMatcher(threshold float64, normalize func(s, lang string) string) *Matcher {
	return &Matcher{threshold: threshold, normalize: normalize}
}

func (m *Matcher) Threshold() float64 { return m.threshold }

// Candidates restricts the FAQ set when the query carries a specific
// compound intent. Wifi-kiosk, fasttrack-location and
// parking-subscription questions each collide with near-identical
// general questions, so only same-intent candidates may win.
func (m *Matcher) Candidates(items []model.FAQItem, normQuery, rawQuery, lang string) []model.FAQItem {
	needWifiKiosk := containsWord(normQuery, "wifi") && containsWord(normQuery, "kiosk")
	needFasttrackLoc := containsWord(normQuery, "fasttrack") && locationWords.MatchString(rawQuery)
	needParkingSub := containsWord(normQuery, "parking") && containsWord(normQuery, "subscription")

	filter := func(keep func(item model.FAQItem) bool) []model.FAQItem {
		out := make([]model.FAQItem, 0, len(items))
		for _, item := range items {
			if keep(item) {
				out = append(out, item)
			}
		}
		return out
	}

	switch {
	case needWifiKiosk:
		return filter(func(item model.FAQItem) bool {
			qn := m.normalize(item.QuestionFor(lang), lang)
			return containsWord(qn, "wifi") && containsWord(qn, "kiosk")
		})
	case needFasttrackLoc:
		return filter(func(item model.FAQItem) bool {
			qn := m.normalize(item.QuestionFor(lang), lang)
			return containsWord(qn, "fasttrack") && locationWords.MatchString(item.QuestionFor(lang))
		})
	case needParkingSub:
		return filter(func(item model.FAQItem) bool {
			qn := m.normalize(item.QuestionFor(lang), lang)
			return containsWord(qn, "parking") && containsWord(qn, "subscription")
		})
	}
	return items
}

// Exact finds an exact or substring match on the normalized question,
// which short-circuits similarity scoring entirely. Substring matches
// only count for questions long enough to be distinctive.
func (m *Matcher) Exact(items []model.FAQItem, normQuery, lang string) (Match, bool) {
	for _, item := range items {
		if m.normalize(item.QuestionFor(lang), lang) == normQuery {
			return Match{Item: item, Score: 1}, true
		}
	}
	for _, item := range items {
		qn := m.normalize(item.QuestionFor(lang), lang)
		if len(qn) > 6 && (strings.Contains(qn, normQuery) || strings.Contains(normQuery, qn)) {
			return Match{Item: item, Score: 1}, true
		}
	}
	return Match{}, false
}

// Best returns the highest-scoring candidate and whether it clears
// the threshold.
func (m *Matcher) Best(items []model.FAQItem, normQuery, rawQuery, lang string) (Match, bool) {
	hasLocIntent := locationWords.MatchString(rawQuery)
	wantsFasttrack := containsWord(normQuery, "fasttrack")

	var best Match
	for _, item := range items {
		qText := item.QuestionFor(lang)
		score := Similarity(normQuery, m.normalize(qText, lang))
		if hasLocIntent && locationWords.MatchString(qText) {
			score += locationBoost
		}
		if wantsFasttrack && containsWord(m.normalize(qText, lang), "fasttrack") {
			score += fasttrackBoost
		}
		if score > best.Score {
			best = Match{Item: item, Score: score}
		}
	}
	return best, best.Score >= m.threshold
}

// BestTurkish rescores against the Turkish questions only, used after
// translating an English query that scored below threshold.
func (m *Matcher) BestTurkish(items []model.FAQItem, normQueryTR string) (Match, bool) {
	var best Match
	for _, item := range items {
		score := Similarity(normQueryTR, m.normalize(item.Question, "tr"))
		if score > best.Score {
			best = Match{Item: item, Score: score}
		}
	}
	return best, best.Score >= m.threshold
}

// Similarity is Jaccard similarity over whitespace tokens
func Similarity(a, b string) float64 {
	ta := tokenSet(a)
	tb := tokenSet(b)

	inter := 0
	for tok := range ta {
		if tb[tok] {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func containsWord(s, word string) bool {
	for _, tok := range strings.Fields(s) {
		if tok == word {
			return true
		}
	}
	return false
}
