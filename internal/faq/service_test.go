package faq

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

type stubSynth struct {
	enabled bool
	reply   string
	err     error
	calls   []string
}

func (s *stubSynth) IsEnabled() bool { return s.enabled }

func (s *stubSynth) Complete(_ context.Context, system, _ string) (string, error) {
	s.calls = append(s.calls, system)
	return s.reply, s.err
}

func writeFAQFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genelsorular.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestService(t *testing.T, csv string, synth Synthesizer) *Service {
	t.Helper()
	store := NewStore(writeFAQFile(t, csv), "", time.Hour, time.Second, nil, testNormalize, logger.NewNop())
	matcher := NewMatcher(0.20, testNormalize)
	return NewService(store, matcher, synth, nil, nil, nil, testNormalize, logger.NewNop())
}

const testCSV = `soru,cevap,soru_en,cevap_en
"wifi sifresi nedir","Ücretsizdir, şifre gerekmez.","what is the wifi password","It is free, no password needed."
"otopark ucreti ne kadar","İlk 15 dakika ücretsizdir.","",""
"kayip esya ofisi nerede","Gelen yolcu katındadır.","",""
`

func TestService_AnswerTurkish(t *testing.T) {
	s := newTestService(t, testCSV, &stubSynth{})

	resp, ok := s.Answer(context.Background(), "wifi şifresi nedir", "wifi sifresi nedir", "tr")
	if !ok {
		t.Fatal("expected FAQ hit")
	}
	if resp.Answer != "Ücretsizdir, şifre gerekmez." {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
	if resp.NLUProvider != "faq-csv" {
		t.Errorf("unexpected provider %q", resp.NLUProvider)
	}
	if resp.FAQ == nil || resp.FAQ.Score != 1 {
		t.Errorf("exact match should carry score 1, got %+v", resp.FAQ)
	}
}

func TestService_AnswerEnglishColumn(t *testing.T) {
	s := newTestService(t, testCSV, &stubSynth{})

	resp, ok := s.Answer(context.Background(), "what is the wifi password", "what is the wifi password", "en")
	if !ok {
		t.Fatal("expected FAQ hit")
	}
	if resp.Answer != "It is free, no password needed." {
		t.Errorf("expected english answer, got %q", resp.Answer)
	}
}

func TestService_TranslatesTurkishAnswerForEnglish(t *testing.T) {
	synth := &stubSynth{enabled: true, reply: "The first 15 minutes are free."}
	s := newTestService(t, testCSV, synth)

	// The row has no english answer cell, so the Turkish answer is
	// translated on the fly.
	resp, ok := s.Answer(context.Background(), "otopark ucreti ne kadar", "otopark ucreti ne kadar", "en")
	if !ok {
		t.Fatal("expected FAQ hit")
	}
	if resp.NLUProvider != "faq-translate" {
		t.Errorf("expected translated answer, got provider %q answer %q", resp.NLUProvider, resp.Answer)
	}
	if resp.Answer != "The first 15 minutes are free." {
		t.Errorf("unexpected answer %q", resp.Answer)
	}
}

func TestService_NoMatchFallsThrough(t *testing.T) {
	s := newTestService(t, testCSV, &stubSynth{})

	if _, ok := s.Answer(context.Background(), "uçuşum rötarlı mı", "ucusum rotarli mi", "tr"); ok {
		t.Error("unrelated query should fall through to the flight branch")
	}
}

type stubEmbedder struct{ enabled bool }

func (s *stubEmbedder) IsEnabled() bool { return s.enabled }

func (s *stubEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	embeds := make([][]float32, len(texts))
	for i := range texts {
		embeds[i] = []float32{float32(i) + 1}
	}
	return embeds, nil
}

type indexedSet struct {
	items      []model.FAQItem
	embeddings [][]float32
}

type recordingEmbedStore struct{ replaced chan indexedSet }

func (r *recordingEmbedStore) ReplaceFAQ(_ context.Context, items []model.FAQItem, embeddings [][]float32) error {
	r.replaced <- indexedSet{items: items, embeddings: embeddings}
	return nil
}

func TestService_RefreshIndexesEmbeddings(t *testing.T) {
	store := NewStore(writeFAQFile(t, testCSV), "", time.Hour, time.Second, nil, testNormalize, logger.NewNop())
	embedStore := &recordingEmbedStore{replaced: make(chan indexedSet, 1)}
	s := NewService(store, NewMatcher(0.20, testNormalize), &stubSynth{},
		&stubEmbedder{enabled: true}, nil, embedStore, testNormalize, logger.NewNop())

	n, err := s.Refresh(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 items, got %d", n)
	}

	select {
	case got := <-embedStore.replaced:
		if len(got.items) != n || len(got.embeddings) != n {
			t.Fatalf("expected %d items with embeddings, got %d/%d", n, len(got.items), len(got.embeddings))
		}
		if got.items[0].Question != "wifi sifresi nedir" {
			t.Errorf("unexpected first item %+v", got.items[0])
		}
	case <-time.After(time.Second):
		t.Fatal("refresh did not persist embeddings")
	}
}

func TestService_RefreshSkipsIndexWithoutEmbedder(t *testing.T) {
	store := NewStore(writeFAQFile(t, testCSV), "", time.Hour, time.Second, nil, testNormalize, logger.NewNop())
	embedStore := &recordingEmbedStore{replaced: make(chan indexedSet, 1)}
	s := NewService(store, NewMatcher(0.20, testNormalize), &stubSynth{},
		&stubEmbedder{enabled: false}, nil, embedStore, testNormalize, logger.NewNop())

	if _, err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case <-embedStore.replaced:
		t.Fatal("disabled embedder should not index")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestService_SynthFailureDegradesToCanned(t *testing.T) {
	synth := &stubSynth{enabled: true, err: errors.New("upstream down")}
	s := newTestService(t, testCSV, synth)

	// kayip esya row has no english answer; translation fails, the
	// empty-answer synthesis fails, canned message remains.
	resp, ok := s.Answer(context.Background(), "kayip esya ofisi nerede", "kayip esya ofisi nerede", "en")
	if !ok {
		t.Fatal("expected FAQ hit")
	}
	if resp.NLUProvider != "faq-empty" {
		t.Errorf("expected canned fallback, got %q: %q", resp.NLUProvider, resp.Answer)
	}
}
