package faq

import (
	"context"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

const (
	translateAnswerPrompt = "Translate the following Turkish answer into clear, concise English. Do not add extra information."
	translateQueryPrompt  = "Translate the user's question into Turkish only. Return just the translation text."
	emptyAnswerPromptTR   = "İstanbul Havalimanı genel danışma asistanısın. Kullanıcının sorusuna kısa, net ve doğru bir cevap ver. Uydurma bilgi verme. Bilgin yoksa kibarca belirt ve ilgili sayfayı öner."
	emptyAnswerPromptEN   = "You are an Istanbul Airport assistant. Provide a short, accurate answer. If unsure, say so politely and suggest the relevant page."
)

// Synthesizer is the LLM surface the FAQ flow needs: translation and
// short free-form answers. *llm.Client satisfies it.
type Synthesizer interface {
	Complete(ctx context.Context, system, user string) (string, error)
	IsEnabled() bool
}

// Embedder supplies query embeddings for the vector fallback
type Embedder interface {
	CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	IsEnabled() bool
}

// VectorIndex is the nearest-neighbour lookup over stored FAQ
// embeddings. The repository provides it when Postgres is configured.
type VectorIndex interface {
	NearestFAQEmbedding(ctx context.Context, queryEmbedding []float32) (model.FAQItem, float64, bool, error)
}

// EmbeddingStore persists the FAQ set with its question embeddings so
// the vector index has rows to search. The repository provides it when
// Postgres is configured.
type EmbeddingStore interface {
	ReplaceFAQ(ctx context.Context, items []model.FAQItem, embeddings [][]float32) error
}

// Service answers general airport questions from the FAQ set
type Service struct {
	store      *Store
	matcher    *Matcher
	synth      Synthesizer
	embedder   Embedder
	vectors    VectorIndex
	embedStore EmbeddingStore
	normalize  func(s, lang string) string
	log        logger.Logger
}

// NewService wires the FAQ flow. synth may be a disabled client;
// embedder, vectors and embedStore may be nil.
func NewService(store *Store, matcher *Matcher, synth Synthesizer, embedder Embedder, vectors VectorIndex, embedStore EmbeddingStore, normalize func(s, lang string) string, log logger.Logger) *Service {
	return &Service{
		store:      store,
		matcher:    matcher,
		synth:      synth,
		embedder:   embedder,
		vectors:    vectors,
		embedStore: embedStore,
		normalize:  normalize,
		log:        log,
	}
}

// Items returns the current FAQ set
func (s *Service) Items(ctx context.Context) ([]model.FAQItem, error) {
	return s.store.Load(ctx)
}

// Refresh reloads the FAQ set immediately and re-indexes the question
// embeddings in the background.
func (s *Service) Refresh(ctx context.Context) (int, error) {
	items, err := s.store.Refresh(ctx)
	if err != nil {
		return 0, err
	}
	go s.indexEmbeddings(items)
	return len(items), nil
}

// indexEmbeddings embeds the FAQ questions and persists them so the
// vector fallback has rows to search. Runs detached from the request;
// a failure costs only the embedding fallback, never the reload.
func (s *Service) indexEmbeddings(items []model.FAQItem) {
	if s.embedStore == nil || s.embedder == nil || !s.embedder.IsEnabled() || len(items) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	texts := make([]string, len(items))
	for i, item := range items {
		texts[i] = item.Question
	}
	embeds, err := s.embedder.CreateEmbeddings(ctx, texts)
	if err != nil {
		s.log.Warn("faq embedding computation failed", "error", err)
		return
	}
	if err := s.embedStore.ReplaceFAQ(ctx, items, embeds); err != nil {
		s.log.Warn("faq embedding persistence failed", "error", err)
		return
	}
	s.log.Info("faq embeddings indexed", "count", len(items))
}

// Answer tries to resolve the query from the FAQ set. The second
// return is false when no candidate clears the threshold and the
// caller should continue to the flight branch.
func (s *Service) Answer(ctx context.Context, rawQuery, normQuery, lang string) (*model.AssistantResponse, bool) {
	items, err := s.store.Load(ctx)
	if err != nil || len(items) == 0 {
		return nil, false
	}

	cand := s.matcher.Candidates(items, normQuery, rawQuery, lang)
	if len(cand) == 0 {
		cand = items
	}

	if match, ok := s.matcher.Exact(cand, normQuery, lang); ok {
		return s.respond(ctx, match, lang, rawQuery), true
	}

	match, ok := s.matcher.Best(cand, normQuery, rawQuery, lang)

	// English queries against a mostly-Turkish sheet often miss on
	// tokens alone; translate and rescore against the Turkish side.
	if !ok && lang == "en" && s.synth.IsEnabled() {
		if translated, err := s.synth.Complete(ctx, translateQueryPrompt, rawQuery); err == nil && translated != "" {
			match, ok = s.matcher.BestTurkish(cand, s.normalize(translated, "tr"))
		}
	}

	if !ok {
		match, ok = s.nearestByEmbedding(ctx, rawQuery)
	}
	if !ok {
		return nil, false
	}
	return s.respond(ctx, match, lang, rawQuery), true
}

// nearestByEmbedding falls back to vector search over the stored FAQ
// embeddings. Cosine distance converts to a similarity score so the
// shared threshold still applies.
func (s *Service) nearestByEmbedding(ctx context.Context, rawQuery string) (Match, bool) {
	if s.embedder == nil || s.vectors == nil || !s.embedder.IsEnabled() {
		return Match{}, false
	}

	embeds, err := s.embedder.CreateEmbeddings(ctx, []string{rawQuery})
	if err != nil || len(embeds) == 0 || len(embeds[0]) == 0 {
		return Match{}, false
	}
	item, distance, found, err := s.vectors.NearestFAQEmbedding(ctx, embeds[0])
	if err != nil || !found {
		return Match{}, false
	}

	score := 1 - distance
	if score < s.matcher.Threshold() {
		return Match{}, false
	}
	s.log.Debug("faq resolved by embedding", "question", item.Question, "score", score)
	return Match{Item: item, Score: score}, true
}

// respond resolves the matched item into an answer in the requested
// language: the stored answer, a translation of the Turkish answer,
// an LLM-synthesized answer for rows whose answer cell is empty, or
// the canned rephrase request.
func (s *Service) respond(ctx context.Context, match Match, lang, rawQuery string) *model.AssistantResponse {
	ref := &model.FAQRef{Score: match.Score, Question: match.Item.QuestionFor(lang)}

	if answer := match.Item.AnswerFor(lang); answer != "" {
		return &model.AssistantResponse{
			Answer: answer, Matches: []model.Flight{},
			NLUProvider: "faq-csv", FAQ: ref,
		}
	}

	if lang == "en" && match.Item.Answer != "" && s.synth.IsEnabled() {
		if translated, err := s.synth.Complete(ctx, translateAnswerPrompt, match.Item.Answer); err == nil && translated != "" {
			return &model.AssistantResponse{
				Answer: translated, Matches: []model.Flight{},
				NLUProvider: "faq-translate", FAQ: ref,
			}
		}
	}

	if s.synth.IsEnabled() {
		system := emptyAnswerPromptTR
		if lang == "en" {
			system = emptyAnswerPromptEN
		}
		if answer, err := s.synth.Complete(ctx, system, rawQuery); err == nil && answer != "" {
			return &model.AssistantResponse{
				Answer: answer, Matches: []model.Flight{},
				NLUProvider: "faq-openai-empty", FAQ: ref,
			}
		}
	}

	answer := "Bu konuda kesin bir bilgi bulamadım. Lütfen farklı ifade ile tekrar sorar mısınız?"
	if lang == "en" {
		answer = "Couldn't find definitive info. Please rephrase your question."
	}
	return &model.AssistantResponse{
		Answer: answer, Matches: []model.Flight{}, NLUProvider: "faq-empty",
	}
}
