package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/faq"
	"flightassist/internal/model"
	"flightassist/internal/nlu"
	"flightassist/internal/provider"
	"flightassist/pkg/logger"
	"flightassist/pkg/metrics"
)

// airportLocationRe matches questions about where the airport itself
// is; these get a canned address instead of the FAQ/flight pipeline.
// It runs on normalized text.
var airportLocationRe = regexp.MustCompile(
	`havalimani(na|nin)? (nerede|adres|nasil)|where is the airport|airport address|how (do i|to) get to the airport`)

const (
	airportAddressTR = "İstanbul Havalimanı, Tayakadın, Terminal Caddesi No:1, 34283 Arnavutköy/İstanbul adresindedir. Şehir merkezinden Havaist otobüsleri, İST metro hattı ve taksiyle ulaşabilirsiniz."
	airportAddressEN = "Istanbul Airport is at Tayakadın, Terminal Caddesi No:1, 34283 Arnavutköy/Istanbul. Havaist shuttles, the IST metro line and taxis run from the city center."
)

// QueryLogger records answered queries, typically into Postgres
type QueryLogger interface {
	LogQuery(ctx context.Context, query, lang, provider, answer string, matchCount, responseTimeMs int) error
}

// Assistant orchestrates one query through the pipeline: quick cache,
// flight-number fast path, FAQ branch, intent extraction, matching and
// composition. Every stage degrades instead of failing, so Answer
// always produces a response.
type Assistant struct {
	norm      *Normalizer
	racer     *nlu.Racer
	faq       *faq.Service
	flights   provider.Source
	matcher   *Matcher
	composer  *Composer
	queryLog  QueryLogger
	quick     *cache.TTL[*model.AssistantResponse]
	answers   *cache.TTL[*model.AssistantResponse]
	clock     cache.Clock
	log       logger.Logger
	metrics   *metrics.Metrics
	logBudget time.Duration
}

// AssistantOptions bundles the orchestrator's dependencies. QueryLog
// and Metrics may be nil.
type AssistantOptions struct {
	Normalizer *Normalizer
	Racer      *nlu.Racer
	FAQ        *faq.Service
	Flights    provider.Source
	Matcher    *Matcher
	Composer   *Composer
	QueryLog   QueryLogger
	QuickTTL   time.Duration
	AnswerTTL  time.Duration
	Clock      cache.Clock
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

// NewAssistant wires the pipeline
func NewAssistant(opts AssistantOptions) *Assistant {
	clock := opts.Clock
	if clock == nil {
		clock = cache.SystemClock{}
	}
	// The answer cache holds only FAQ and location replies, which stay
	// valid for a day; flight answers go stale with the board
	var answers *cache.TTL[*model.AssistantResponse]
	if opts.AnswerTTL > 0 {
		answers = cache.NewTTL[*model.AssistantResponse](opts.AnswerTTL, 0, clock)
	}
	return &Assistant{
		norm:      opts.Normalizer,
		racer:     opts.Racer,
		faq:       opts.FAQ,
		flights:   opts.Flights,
		matcher:   opts.Matcher,
		composer:  opts.Composer,
		queryLog:  opts.QueryLog,
		quick:     cache.NewTTL[*model.AssistantResponse](opts.QuickTTL, 0, clock),
		answers:   answers,
		clock:     clock,
		log:       opts.Logger,
		metrics:   opts.Metrics,
		logBudget: 3 * time.Second,
	}
}

// Answer resolves a query into the best-effort response. It never
// returns an error: provider failures degrade stage by stage down to
// the canned not-found message.
func (a *Assistant) Answer(ctx context.Context, req *model.AssistantRequest) *model.AssistantResponse {
	started := a.clock.Now()
	lang := req.Language()
	rawQuery := strings.TrimSpace(req.Query)
	normQuery := a.norm.Normalize(rawQuery, lang)

	quickKey := lang + "|" + strings.ToLower(rawQuery)
	if resp, ok := a.quick.Get(quickKey); ok {
		a.count("quick-cache")
		return resp
	}
	answerKey := lang + "|" + normQuery
	if a.answers != nil {
		if resp, ok := a.answers.Get(answerKey); ok {
			a.count("answer-cache")
			return resp
		}
	}

	resp := a.answer(ctx, req, rawQuery, normQuery, lang)

	a.quick.Set(quickKey, resp)
	if a.answers != nil && cacheableAnswer(resp.NLUProvider) {
		a.answers.Set(answerKey, resp)
	}
	a.count(resp.NLUProvider)
	a.observeLatency(started)
	a.logQuery(rawQuery, lang, resp, started)
	return resp
}

func (a *Assistant) answer(ctx context.Context, req *model.AssistantRequest, rawQuery, normQuery, lang string) *model.AssistantResponse {
	if rawQuery == "" {
		return &model.AssistantResponse{
			Answer:  a.composer.NotFound(lang),
			Matches: []model.Flight{},
		}
	}

	if airportLocationRe.MatchString(normQuery) {
		answer := airportAddressTR
		if lang == "en" {
			answer = airportAddressEN
		}
		return &model.AssistantResponse{
			Answer:      answer,
			Matches:     []model.Flight{},
			NLUProvider: "location",
		}
	}

	// Flight-number fast path skips extraction entirely
	if num := nlu.ExtractFlightNumber(rawQuery); num != "" {
		if resp := a.fastPath(ctx, lang, num, req.ScopeFilter()); resp != nil {
			return resp
		}
	}

	// General questions go to the FAQ unless flight vocabulary is
	// present; a miss falls through to the flight branch
	if !nlu.HasFlightIntent(normQuery) {
		if resp, ok := a.faq.Answer(ctx, rawQuery, normQuery, lang); ok {
			return resp
		}
	}

	intent, nluProvider := a.racer.Extract(ctx, nlu.Query{
		Raw:        rawQuery,
		Normalized: normQuery,
		Lang:       lang,
	})

	flights := a.loadFlights(ctx, req.ScopeFilter())
	matches := a.matcher.Match(flights, MatchInput{
		Intent:     intent,
		Normalized: normQuery,
		Scope:      req.ScopeFilter(),
	})

	if len(matches) == 0 {
		if a.metrics != nil {
			a.metrics.NoMatchReplies.Inc()
		}
		nearest := a.matcher.NearestByTokens(flights, normQuery)
		answer, shown := a.composer.ComposeNoMatch(ctx, rawQuery, lang, nearest)
		return &model.AssistantResponse{
			Answer:      answer,
			Matches:     shown,
			NLUProvider: nluProvider,
		}
	}

	answer := a.composer.Compose(ctx, rawQuery, lang, matches, intent.FlightNumber != "")
	return &model.AssistantResponse{
		Answer:      answer,
		Matches:     matches,
		NLUProvider: nluProvider,
	}
}

// fastPath answers direct flight-number queries from the snapshot
// without extraction or scoring. Returns nil when the number is not
// on the board, letting the full pipeline try relaxed matching.
func (a *Assistant) fastPath(ctx context.Context, lang, num string, scope model.FlightScope) *model.AssistantResponse {
	flights := a.loadFlights(ctx, scope)
	for _, f := range flights {
		if compactNumber(f.FlightNumber) != num {
			continue
		}
		answer := "Uçuş: " + FormatLine(f, lang)
		if lang == "en" {
			answer = "Flight: " + FormatLine(f, lang)
		}
		return &model.AssistantResponse{
			Answer:      answer,
			Matches:     []model.Flight{f},
			NLUProvider: "fastpath",
		}
	}
	return nil
}

func (a *Assistant) loadFlights(ctx context.Context, scope model.FlightScope) []model.Flight {
	flights, err := a.flights.Fetch(ctx, scope)
	if err != nil {
		a.log.Warn("flight fetch failed", "error", err)
		if a.metrics != nil {
			a.metrics.ProviderErrors.WithLabelValues(a.flights.Name()).Inc()
		}
		return []model.Flight{}
	}
	if a.metrics != nil {
		a.metrics.FlightsFetched.Add(float64(len(flights)))
	}
	return flights
}

// logQuery persists the query asynchronously; the response never
// waits on the database.
func (a *Assistant) logQuery(query, lang string, resp *model.AssistantResponse, started time.Time) {
	if a.queryLog == nil {
		return
	}
	elapsed := a.clock.Now().Sub(started)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.logBudget)
		defer cancel()
		if err := a.queryLog.LogQuery(ctx, query, lang, resp.NLUProvider, resp.Answer,
			len(resp.Matches), int(elapsed.Milliseconds())); err != nil {
			a.log.Debug("query log failed", "error", err)
		}
	}()
}

// cacheableAnswer marks providers whose replies do not depend on the
// live board
func cacheableAnswer(provider string) bool {
	return provider == "location" || strings.HasPrefix(provider, "faq")
}

func (a *Assistant) count(provider string) {
	if a.metrics == nil {
		return
	}
	if provider == "" {
		provider = "none"
	}
	a.metrics.QueriesTotal.WithLabelValues(provider).Inc()
}

func (a *Assistant) observeLatency(started time.Time) {
	if a.metrics == nil {
		return
	}
	a.metrics.AnswerLatency.Observe(a.clock.Now().Sub(started).Seconds())
}
