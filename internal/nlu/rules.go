package nlu

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"flightassist/internal/model"
)

// Query carries one user utterance through the extractors. Normalized
// is the canonical lowercase ASCII form; Raw is what the user typed.
type Query struct {
	Raw        string
	Normalized string
	Lang       string
}

// flightNumberRe matches IATA-style flight designators: two letters,
// optional space, 2-4 digits. "TK 2695" and "TK2695" both match.
var flightNumberRe = regexp.MustCompile(`\b([A-Za-z]{2})\s?(\d{2,4})\b`)

// ExtractFlightNumber returns the canonical form of the first flight
// designator in s ("tk 2695" -> "TK2695"), or "" when none is present.
func ExtractFlightNumber(s string) string {
	m := flightNumberRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1]) + m[2]
}

// Keyword tables operate on normalized text, so entries are written
// without diacritics.
var (
	departureWords = wordSet(
		"kalkis", "kalkan", "gidis", "giden", "gidecek",
		"departure", "departures", "departing", "depart", "leaving", "outbound",
	)
	arrivalWords = wordSet(
		"varis", "inis", "gelen", "gelis", "inen", "indi", "inecek",
		"arrival", "arrivals", "arriving", "arrive", "landing", "landed", "inbound",
	)
	flightWords = wordSet(
		"ucus", "ucusu", "ucuslar", "ucuslari", "sefer", "seferi", "seferler",
		"flight", "flights", "plane", "ucak", "ucagi",
	)
	stopwords = wordSet(
		"ne", "zaman", "nerede", "nereden", "nereye", "hangi", "kacta", "saat",
		"kac", "mi", "mu", "var", "icin", "ile", "bir", "bu", "su", "o",
		"acaba", "lutfen", "bana", "benim", "bilgi", "durumu", "durum",
		"what", "when", "where", "which", "time", "is", "are", "the", "a", "an",
		"to", "from", "for", "my", "me", "please", "about", "of", "at", "in",
		"on", "status", "info", "gate", "kapi", "bagaj", "baggage",
	)
)

// cityAliases maps Turkish exonyms and common variants onto the city
// names the status board uses. Keys and values are normalized form.
var cityAliases = map[string]string{
	"londra":    "london",
	"munih":     "munich",
	"koln":      "cologne",
	"viyana":    "vienna",
	"moskova":   "moscow",
	"pekin":     "beijing",
	"atina":     "athens",
	"roma":      "rome",
	"venedik":   "venice",
	"milano":    "milan",
	"cenevre":   "geneva",
	"zurih":     "zurich",
	"kahire":    "cairo",
	"dubai":     "dubai",
	"bruksel":   "brussels",
	"kopenhag":  "copenhagen",
	"stokholm":  "stockholm",
	"varsova":   "warsaw",
	"budapeste": "budapest",
	"bukres":    "bucharest",
	"lizbon":    "lisbon",
	"selanik":   "thessaloniki",
	"newyork":   "new york",
	"telaviv":   "tel aviv",
}

// HasFlightIntent reports whether the normalized query carries flight
// vocabulary: a designator, a direction word, or a flight noun. The
// orchestrator uses it to route between the FAQ and flight branches.
func HasFlightIntent(normalized string) bool {
	if ExtractFlightNumber(normalized) != "" {
		return true
	}
	for _, tok := range strings.Fields(normalized) {
		if departureWords[tok] || arrivalWords[tok] || flightWords[tok] {
			return true
		}
	}
	return false
}

// RuleExtractor derives intent from keyword tables alone. It never
// fails and never blocks, so it doubles as the deterministic floor
// under the remote extractors.
type RuleExtractor struct{}

func NewRuleExtractor() *RuleExtractor { return &RuleExtractor{} }

func (e *RuleExtractor) Name() string { return "rules" }

// Extract never returns an error; the signature matches the remote
// extractors so the racer can treat both uniformly.
func (e *RuleExtractor) Extract(_ context.Context, q Query) (*model.Intent, error) {
	intent := &model.Intent{
		FlightNumber: ExtractFlightNumber(q.Normalized),
	}

	tokens := strings.Fields(q.Normalized)
	intent.Direction = detectDirection(tokens)

	// A known alias always identifies the city; the looser last-token
	// guess only runs when the query talks about flights at all
	intent.City = aliasCity(tokens)
	if intent.City == "" && HasFlightIntent(q.Normalized) {
		intent.City = guessCity(tokens)
	}
	return intent, nil
}

// detectDirection scans for direction keywords, arrival words first.
// Arrival takes precedence because departure vocabulary overlaps with
// generic flight phrasing far more often than arrival vocabulary does.
func detectDirection(tokens []string) model.FlightDirection {
	for _, tok := range tokens {
		if arrivalWords[tok] {
			return model.DirectionArrival
		}
	}
	for _, tok := range tokens {
		if departureWords[tok] {
			return model.DirectionDeparture
		}
	}
	return ""
}

// aliasCity resolves city mentions through the alias table. Bigrams
// are checked so "new york" style names survive tokenization.
func aliasCity(tokens []string) string {
	for i := 0; i < len(tokens)-1; i++ {
		if city, ok := cityAliases[tokens[i]+tokens[i+1]]; ok {
			return city
		}
	}
	for _, tok := range tokens {
		if city, ok := cityAliases[tok]; ok {
			return city
		}
	}
	return ""
}

// guessCity picks the last token that is not a keyword, a stopword or
// a number. Keyword checks also run on the suffix-stripped base so
// "saati" and "ucuslar" do not pass as city names.
func guessCity(tokens []string) string {
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if len(tok) < 3 || isNumeric(tok) || isKeyword(tok) || isKeyword(baseToken(tok)) {
			continue
		}
		return tok
	}
	return ""
}

func isKeyword(tok string) bool {
	return stopwords[tok] || departureWords[tok] || arrivalWords[tok] || flightWords[tok]
}

// citySuffixes are the Turkish plural/possessive/case endings stripped
// before keyword checks, longest first
var citySuffixes = []string{
	"lari", "leri", "daki", "deki", "dan", "den", "tan", "ten",
	"lar", "ler", "ya", "ye", "da", "de", "ta", "te", "i", "u", "a", "e",
}

func baseToken(tok string) string {
	for _, suf := range citySuffixes {
		if strings.HasSuffix(tok, suf) && len(tok)-len(suf) >= 3 {
			return tok[:len(tok)-len(suf)]
		}
	}
	return tok
}

func isNumeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
