package faq

import (
	"strings"
	"testing"

	"flightassist/internal/model"
)

// testNormalize is a minimal stand-in for the full normalizer: the
// matcher only requires lowercase ASCII tokens.
func testNormalize(s, _ string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"wifi sifresi nedir", "wifi sifresi nedir", 1},
		{"wifi sifresi", "wifi sifresi nedir", 2.0 / 3.0},
		{"otopark ucreti", "kayip esya ofisi", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestMatcher_ExactShortcut(t *testing.T) {
	m := NewMatcher(0.20, testNormalize)
	items := []model.FAQItem{
		{Question: "wifi sifresi nedir", Answer: "Ücretsizdir."},
		{Question: "otopark ucreti ne kadar", Answer: "15 dk ücretsiz."},
	}

	match, ok := m.Exact(items, "wifi sifresi nedir", "tr")
	if !ok || match.Score != 1 {
		t.Fatalf("expected exact hit with score 1, got %+v ok=%v", match, ok)
	}
	if match.Item.Answer != "Ücretsizdir." {
		t.Errorf("wrong item matched: %+v", match.Item)
	}

	// Substring containment also short-circuits
	match, ok = m.Exact(items, "otopark ucreti", "tr")
	if !ok {
		t.Fatal("expected substring hit")
	}
	if match.Item.Answer != "15 dk ücretsiz." {
		t.Errorf("wrong item matched: %+v", match.Item)
	}
}

func TestMatcher_BestRespectsThreshold(t *testing.T) {
	m := NewMatcher(0.20, testNormalize)
	items := []model.FAQItem{
		{Question: "kayip esya ofisi nerede", Answer: "Gelen yolcu katında."},
	}

	if _, ok := m.Best(items, "ucak bileti iadesi", "uçak bileti iadesi", "tr"); ok {
		t.Error("unrelated query must not clear the threshold")
	}
	match, ok := m.Best(items, "kayip esya nerede", "kayıp eşya nerede", "tr")
	if !ok {
		t.Fatal("overlapping query should clear the threshold")
	}
	if match.Item.Answer != "Gelen yolcu katında." {
		t.Errorf("wrong item: %+v", match.Item)
	}
}

func TestMatcher_LocationBoost(t *testing.T) {
	m := NewMatcher(0.20, testNormalize)
	items := []model.FAQItem{
		{Question: "fasttrack nedir avantajlari fiyati sartlari", Answer: "Hızlı geçiş hizmetidir."},
		{Question: "fasttrack noktalari nerede bulunur terminalde", Answer: "Güvenlik girişlerindedir."},
	}

	match, ok := m.Best(items, "fasttrack nerede", "fast track nerede", "tr")
	if !ok {
		t.Fatal("expected a match")
	}
	if match.Item.Answer != "Güvenlik girişlerindedir." {
		t.Errorf("location intent should prefer the location question, got %+v", match.Item)
	}
}

func TestMatcher_CandidateRestriction(t *testing.T) {
	m := NewMatcher(0.20, testNormalize)
	items := []model.FAQItem{
		{Question: "wifi sifresi nedir", Answer: "general wifi"},
		{Question: "wifi kiosk nerede bulunur", Answer: "wifi kiosk"},
		{Question: "parking subscription nasil yapilir", Answer: "parking sub"},
	}

	cand := m.Candidates(items, "wifi kiosk nerede", "wifi kiosk nerede", "tr")
	if len(cand) != 1 || cand[0].Answer != "wifi kiosk" {
		t.Errorf("wifi+kiosk intent should restrict candidates, got %+v", cand)
	}

	cand = m.Candidates(items, "parking subscription ucreti", "otopark abonelik ücreti", "tr")
	if len(cand) != 1 || cand[0].Answer != "parking sub" {
		t.Errorf("parking+subscription intent should restrict candidates, got %+v", cand)
	}

	cand = m.Candidates(items, "wifi sifresi", "wifi şifresi", "tr")
	if len(cand) != len(items) {
		t.Errorf("plain query should keep all candidates, got %d", len(cand))
	}
}
