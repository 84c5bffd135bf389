package service

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"flightassist/internal/cache"
)

// canonicalTerms maps spelling/spacing variants of domain terms onto a
// single token so downstream keyword and set matching stays robust.
var canonicalTerms = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\bwi[\s-]?fi\b`), "wifi"},
	{regexp.MustCompile(`\bkio?sk\w*\b`), "kiosk"},
	{regexp.MustCompile(`\bfast\s*track\b`), "fasttrack"},
	{regexp.MustCompile(`\botopark\b`), "parking"},
	{regexp.MustCompile(`\babonelik\w*\b`), "subscription"},
}

var (
	stripMarks  = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	nonAlnum    = regexp.MustCompile(`[^a-z0-9\s]`)
	multiSpace  = regexp.MustCompile(`\s+`)
	lowerTR     = cases.Lower(language.Turkish)
	lowerEN     = cases.Lower(language.English)
	memoMaxSize = 256
)

// Normalizer produces the canonical form of query text: locale-aware
// lowercase, diacritics stripped, punctuation collapsed to spaces,
// domain terms canonicalized. Results are memoized since the same
// queries repeat; the memo is cleared wholesale past a size bound.
type Normalizer struct {
	memo *cache.TTL[string]
}

// NewNormalizer creates a normalizer with a bounded memo
func NewNormalizer() *Normalizer {
	return &Normalizer{memo: cache.NewTTL[string](0, memoMaxSize, nil)}
}

// Normalize canonicalizes s for the given language ("tr" or "en").
// Always returns a string; empty input yields "".
func (n *Normalizer) Normalize(s, lang string) string {
	if s == "" {
		return ""
	}
	key := lang + "|" + s
	if out, ok := n.memo.Get(key); ok {
		return out
	}
	out := normalizeUncached(s, lang)
	n.memo.Set(key, out)
	return out
}

func normalizeUncached(s, lang string) string {
	lower := lowerEN
	if lang == "tr" {
		lower = lowerTR
	}
	out := lower.String(s)

	// Decompose and drop combining marks (ş→s, ü→u, é→e)
	if stripped, _, err := transform.String(stripMarks, out); err == nil {
		out = stripped
	}
	// Dotless ı survives decomposition; fold it so Turkish keyword
	// tables written in ASCII still match
	out = strings.Map(func(r rune) rune {
		if r == 'ı' {
			return 'i'
		}
		return r
	}, out)

	out = nonAlnum.ReplaceAllString(out, " ")
	out = multiSpace.ReplaceAllString(out, " ")
	out = strings.TrimSpace(out)

	for _, ct := range canonicalTerms {
		out = ct.pattern.ReplaceAllString(out, ct.repl)
	}
	return out
}
