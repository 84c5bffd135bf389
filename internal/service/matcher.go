package service

import (
	"sort"
	"strings"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/config"
	"flightassist/internal/model"
)

// matchGrace keeps flights that just departed/landed eligible: boards
// lag reality by a few minutes.
const matchGrace = 5 * time.Minute

// matchStopwords are query tokens that never identify a city
var matchStopwords = wordSet(
	"ucus", "ucusu", "ucuslar", "sefer", "seferi", "ne", "zaman",
	"kalkis", "varis", "gelen", "giden", "gate", "kapi", "bagaj",
	"hangi", "saat", "kacta", "bugun", "yarin", "var", "nedir",
	"when", "time", "flight", "flights", "today", "tomorrow",
	"the", "from", "for", "status",
)

// MatchInput is the interpreted query the matcher ranks against
type MatchInput struct {
	Intent     *model.Intent
	Normalized string
	Scope      model.FlightScope
}

// Matcher ranks a flight snapshot against an interpreted query with a
// weighted additive score, then narrows through staged filters. An
// empty snapshot or a query nothing matches yields an empty result;
// the matcher never pads with unrelated flights.
type Matcher struct {
	cfg      config.ScoringConfig
	recent   time.Duration
	domestic map[string]bool
	norm     *Normalizer
	clock    cache.Clock
}

// NewMatcher creates a matcher; a nil clock means wall time
func NewMatcher(cfg config.ScoringConfig, recentFallback time.Duration, domesticCities []string, norm *Normalizer, clock cache.Clock) *Matcher {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	domestic := make(map[string]bool, len(domesticCities))
	for _, c := range domesticCities {
		domestic[norm.Normalize(c, "tr")] = true
	}
	return &Matcher{cfg: cfg, recent: recentFallback, domestic: domestic, norm: norm, clock: clock}
}

// Match returns the ranked flights for the query, at most ResultCap
func (m *Matcher) Match(flights []model.Flight, in MatchInput) []model.Flight {
	if len(flights) == 0 {
		return []model.Flight{}
	}

	intent := in.Intent
	if intent == nil {
		intent = &model.Intent{}
	}
	qNum := compactNumber(intent.FlightNumber)
	qCity := m.norm.Normalize(intent.City, "tr")
	tokens := m.queryTokens(in.Normalized)
	now := m.clock.Now()

	// Stage 1: weighted scoring, positive scores only
	type scoredFlight struct {
		f model.Flight
		s int
	}
	scored := make([]scoredFlight, 0, len(flights))
	for _, f := range flights {
		if s := m.score(f, intent.Direction, qNum, qCity, tokens, in.Scope, now); s > 0 {
			scored = append(scored, scoredFlight{f: f, s: s})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].s > scored[j].s })
	if len(scored) > m.cfg.CandidateCap {
		scored = scored[:m.cfg.CandidateCap]
	}

	prelim := make([]model.Flight, len(scored))
	for i, sf := range scored {
		prelim[i] = sf.f
	}
	// Stage 2: no positive score at all — structured filter on the
	// stated fields; nothing matching means nothing returned
	if len(prelim) == 0 {
		prelim = m.strictFilter(flights, intent, qNum, qCity)
	}

	if intent.Direction != "" {
		prelim = filterDirection(prelim, intent.Direction)
	}
	// A stated flight number pins the result to matching flights so
	// the time sort cannot float an unrelated flight above them
	if qNum != "" {
		if exact := filterNumber(prelim, qNum, true); len(exact) > 0 {
			prelim = exact
		} else if partial := filterNumber(prelim, qNum, false); len(partial) > 0 {
			prelim = partial
		}
	}
	result := m.preferUpcoming(prelim, now)

	// Stage 3: strict city/token confirmation, so a high-scoring but
	// wrong-city flight cannot survive on direction and time alone.
	// Emptying here is deliberate: stage 4 gets one relaxed attempt
	// and after that an unmatched city stays unmatched.
	if qCity != "" || len(tokens) > 0 {
		result = m.confirmCity(result, qCity, tokens)
	}

	// Stage 4: relax direction, rescore on tokens only
	if len(result) == 0 && len(tokens) > 0 {
		result = m.tokenRescore(flights, tokens, now)
	}

	if len(result) > m.cfg.ResultCap {
		result = result[:m.cfg.ResultCap]
	}
	return result
}

func (m *Matcher) score(f model.Flight, dir model.FlightDirection, qNum, qCity string, tokens []string, scope model.FlightScope, now time.Time) int {
	s := 0
	if dir != "" && f.Direction == dir {
		s += m.cfg.Direction
	}

	if qNum != "" {
		fn := compactNumber(f.FlightNumber)
		if fn == qNum {
			s += m.cfg.NumberExact
		} else if strings.Contains(fn, qNum) {
			s += m.cfg.NumberPartial
		}
	}

	oc := m.norm.Normalize(f.OriginCity, "tr")
	dc := m.norm.Normalize(f.DestinationCity, "tr")
	if qCity != "" {
		qBase := trBase(qCity)
		switch {
		case oc == qCity || dc == qCity || oc == qBase || dc == qBase:
			s += m.cfg.CityExact
		case strings.HasPrefix(oc, qBase) || strings.HasPrefix(dc, qBase):
			s += m.cfg.CityPrefix
		case strings.Contains(oc, qBase) || strings.Contains(dc, qBase):
			s += m.cfg.CitySubstring
		}
	}

	// Token hits cover compound city names the single city field misses
	if hits := tokenHits(oc, dc, tokens); hits >= 2 {
		s += m.cfg.MultiToken
	} else if hits == 1 {
		s += m.cfg.SingleToken
	}

	if t, ok := f.ScheduledAt(); ok {
		diff := t.Sub(now)
		if diff < 0 {
			diff = -diff
		}
		if diff < 2*time.Hour {
			s += m.cfg.NearTime
		} else if diff < 6*time.Hour {
			s += m.cfg.MidTime
		}
	}

	if scope != "" {
		isDomestic := m.domestic[m.norm.Normalize(f.OtherCity(), "tr")]
		if (scope == model.ScopeDomestic) == isDomestic {
			s += m.cfg.ScopeAlign
		} else {
			s -= m.cfg.ScopeAlign
		}
	}
	return s
}

// strictFilter keeps flights consistent with every stated intent field
func (m *Matcher) strictFilter(flights []model.Flight, intent *model.Intent, qNum, qCity string) []model.Flight {
	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		if intent.Direction != "" && f.Direction != intent.Direction {
			continue
		}
		if qNum != "" && !strings.Contains(compactNumber(f.FlightNumber), qNum) {
			continue
		}
		if qCity != "" {
			oc := m.norm.Normalize(f.OriginCity, "tr")
			dc := m.norm.Normalize(f.DestinationCity, "tr")
			qBase := trBase(qCity)
			if !strings.Contains(oc, qBase) && !strings.Contains(dc, qBase) {
				continue
			}
		}
		if intent.Direction == "" && qNum == "" && qCity == "" {
			continue // no criteria at all never matches everything
		}
		out = append(out, f)
	}
	return out
}

// preferUpcoming keeps flights at or after now minus the grace window,
// sorted ascending. When everything is in the past, the most recent
// flights inside the fallback window are returned instead, and failing
// that the full set time-ascending.
func (m *Matcher) preferUpcoming(flights []model.Flight, now time.Time) []model.Flight {
	future := make([]model.Flight, 0, len(flights))
	recent := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		t, ok := f.ScheduledAt()
		if !ok || !t.Before(now.Add(-matchGrace)) {
			future = append(future, f)
			continue
		}
		if m.recent > 0 && t.After(now.Add(-m.recent)) {
			recent = append(recent, f)
		}
	}

	if len(future) > 0 {
		sortByTime(future, true)
		return future
	}
	if len(recent) > 0 {
		sortByTime(recent, false)
		return recent
	}
	sortByTime(flights, true)
	return flights
}

// confirmCity demands an actual city or token hit. Multi-word names
// need at least two token hits so "edremit korfez" does not match
// every city containing one of the words.
func (m *Matcher) confirmCity(flights []model.Flight, qCity string, tokens []string) []model.Flight {
	qBase := trBase(qCity)
	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		oc := m.norm.Normalize(f.OriginCity, "tr")
		dc := m.norm.Normalize(f.DestinationCity, "tr")
		cityHit := qCity != "" && (strings.Contains(oc, qBase) || strings.Contains(dc, qBase))
		hits := tokenHits(oc, dc, tokens)

		keep := false
		switch {
		case qCity != "" && len(tokens) >= 2:
			keep = cityHit || hits >= 2
		case qCity != "":
			keep = cityHit
		case len(tokens) >= 2:
			keep = hits >= 2
		default:
			keep = hits >= 1
		}
		if keep {
			out = append(out, f)
		}
	}
	return out
}

// tokenRescore is the last relaxation: direction dropped, only token
// hits count, upcoming flights preferred.
func (m *Matcher) tokenRescore(flights []model.Flight, tokens []string, now time.Time) []model.Flight {
	type scoredFlight struct {
		f model.Flight
		s int
	}
	scored := make([]scoredFlight, 0, len(flights))
	for _, f := range flights {
		oc := m.norm.Normalize(f.OriginCity, "tr")
		dc := m.norm.Normalize(f.DestinationCity, "tr")
		s := 0
		if hits := tokenHits(oc, dc, tokens); hits >= 2 {
			s += m.cfg.MultiToken
		} else if hits == 1 {
			s += m.cfg.SingleToken
		}
		if s == 0 {
			continue
		}
		if t, ok := f.ScheduledAt(); ok && !t.Before(now.Add(-matchGrace)) {
			s += m.cfg.NearTime
		}
		scored = append(scored, scoredFlight{f: f, s: s})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].s > scored[j].s })

	out := make([]model.Flight, len(scored))
	for i, sf := range scored {
		out[i] = sf.f
	}
	return out
}

// NearestByTokens returns up to five token-related flights sorted by
// time, used to ground the no-match answer with real candidates.
func (m *Matcher) NearestByTokens(flights []model.Flight, normalized string) []model.Flight {
	tokens := m.queryTokens(normalized)
	if len(tokens) == 0 {
		return []model.Flight{}
	}
	out := make([]model.Flight, 0, 5)
	for _, f := range flights {
		oc := m.norm.Normalize(f.OriginCity, "tr")
		dc := m.norm.Normalize(f.DestinationCity, "tr")
		if tokenHits(oc, dc, tokens) > 0 {
			out = append(out, f)
		}
	}
	sortByTime(out, true)
	if len(out) > 5 {
		out = out[:5]
	}
	return out
}

func (m *Matcher) queryTokens(normalized string) []string {
	fields := strings.Fields(normalized)
	out := make([]string, 0, len(fields))
	for _, tok := range fields {
		if len(tok) < 3 || matchStopwords[tok] || isDigits(tok) {
			continue
		}
		out = append(out, trBase(tok))
	}
	return out
}

// trSuffixes are the Turkish case endings stripped before matching,
// longest first
var trSuffixes = []string{
	"daki", "deki", "dan", "den", "tan", "ten",
	"ya", "ye", "da", "de", "ta", "te", "a", "e",
}

// trBase strips one case suffix so "istanbula" and "parisden" still
// hit the board's city names. The base must keep at least three
// characters; shorter remainders mean the token was not a suffixed
// city name.
func trBase(tok string) string {
	for _, suf := range trSuffixes {
		if strings.HasSuffix(tok, suf) && len(tok)-len(suf) >= 3 {
			return tok[:len(tok)-len(suf)]
		}
	}
	return tok
}

// isDigits filters flight-number fragments out of the city tokens
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func tokenHits(originCity, destCity string, tokens []string) int {
	hits := 0
	for _, t := range tokens {
		if strings.Contains(originCity, t) || strings.Contains(destCity, t) {
			hits++
		}
	}
	return hits
}

func filterNumber(flights []model.Flight, qNum string, exact bool) []model.Flight {
	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		fn := compactNumber(f.FlightNumber)
		if (exact && fn == qNum) || (!exact && strings.Contains(fn, qNum)) {
			out = append(out, f)
		}
	}
	return out
}

func filterDirection(flights []model.Flight, dir model.FlightDirection) []model.Flight {
	out := make([]model.Flight, 0, len(flights))
	for _, f := range flights {
		if f.Direction == dir {
			out = append(out, f)
		}
	}
	return out
}

func sortByTime(flights []model.Flight, asc bool) {
	sort.SliceStable(flights, func(i, j int) bool {
		ti, oki := flights[i].ScheduledAt()
		tj, okj := flights[j].ScheduledAt()
		if !oki || !okj {
			return false
		}
		if asc {
			return ti.Before(tj)
		}
		return tj.Before(ti)
	})
}

func compactNumber(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, " ", ""))
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
