package service

import (
	"testing"
	"time"

	"flightassist/internal/config"
	"flightassist/internal/model"
)

var testWeights = config.ScoringConfig{
	Direction:     3,
	NumberExact:   6,
	NumberPartial: 3,
	CityExact:     5,
	CityPrefix:    3,
	CitySubstring: 1,
	MultiToken:    5,
	SingleToken:   2,
	NearTime:      2,
	MidTime:       1,
	ScopeAlign:    2,
	CandidateCap:  20,
	ResultCap:     6,
}

type fixedClock struct {
	now time.Time
}

func (f *fixedClock) Now() time.Time { return f.now }

func newTestMatcher(now time.Time) *Matcher {
	clk := &fixedClock{now: now}
	return NewMatcher(testWeights, 3*time.Hour, []string{"ankara", "izmir", "antalya"}, NewNormalizer(), clk)
}

func testBoard(now time.Time) []model.Flight {
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }
	return []model.Flight{
		{
			ID: "1", FlightNumber: "TK 2695", Direction: model.DirectionDeparture,
			OriginCity: "Istanbul", DestinationCity: "Paris",
			ScheduledTimeLocal: at(90 * time.Minute), Status: model.StatusOnTime, Gate: "A7",
		},
		{
			ID: "2", FlightNumber: "TK1302", Direction: model.DirectionArrival,
			OriginCity: "Paris", DestinationCity: "Istanbul",
			ScheduledTimeLocal: at(3 * time.Hour), Status: model.StatusOnTime, Baggage: "9",
		},
		{
			ID: "3", FlightNumber: "PC2101", Direction: model.DirectionDeparture,
			OriginCity: "Istanbul", DestinationCity: "Ankara",
			ScheduledTimeLocal: at(time.Hour), Status: model.StatusBoarding, Gate: "B2",
		},
		{
			ID: "4", FlightNumber: "TK2158", Direction: model.DirectionDeparture,
			OriginCity: "Istanbul", DestinationCity: "Edremit Korfez",
			ScheduledTimeLocal: at(5 * time.Hour), Status: model.StatusOnTime,
		},
	}
}

func TestMatch_FlightNumberWhitespaceInsensitive(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	// Board stores "TK 2695"; query uses the compact form
	result := m.Match(testBoard(now), MatchInput{
		Intent:     &model.Intent{FlightNumber: "TK2695", Direction: model.DirectionDeparture},
		Normalized: "tk 2695 ne zaman",
	})
	if len(result) == 0 {
		t.Fatal("expected a match")
	}
	if result[0].ID != "1" {
		t.Errorf("exact flight number should rank first, got %+v", result[0])
	}
}

func TestMatch_DirectionFilters(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	result := m.Match(testBoard(now), MatchInput{
		Intent:     &model.Intent{City: "paris", Direction: model.DirectionArrival},
		Normalized: "paris ten gelen ucuslar",
	})
	if len(result) == 0 {
		t.Fatal("expected a match")
	}
	for _, f := range result {
		if f.Direction != model.DirectionArrival {
			t.Errorf("direction filter leaked %+v", f)
		}
	}
	if result[0].ID != "2" {
		t.Errorf("expected the Paris arrival, got %+v", result[0])
	}
}

func TestMatch_EmptyBoardYieldsEmpty(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	result := m.Match(nil, MatchInput{
		Intent:     &model.Intent{City: "paris"},
		Normalized: "paris ucuslari",
	})
	if len(result) != 0 {
		t.Errorf("empty board must yield empty result, got %+v", result)
	}
}

func TestMatch_NoPhantomFallback(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	// A city that exists nowhere on the board must not return the
	// whole list
	result := m.Match(testBoard(now), MatchInput{
		Intent:     &model.Intent{City: "tokyo", Direction: model.DirectionDeparture},
		Normalized: "tokyo ucusu",
	})
	if len(result) != 0 {
		t.Errorf("unmatched city must yield empty result, got %+v", result)
	}
}

func TestMatch_MultiTokenCityName(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	result := m.Match(testBoard(now), MatchInput{
		Intent:     &model.Intent{Direction: model.DirectionDeparture},
		Normalized: "edremit korfez ucusu ne zaman",
	})
	if len(result) != 1 || result[0].ID != "4" {
		t.Errorf("compound city should match on tokens, got %+v", result)
	}
}

func TestMatch_TurkishCaseSuffixOnCity(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	// "ankaraya" carries the dative suffix; the board says "Ankara"
	result := m.Match(testBoard(now), MatchInput{
		Intent:     &model.Intent{City: "ankaraya", Direction: model.DirectionDeparture},
		Normalized: "ankaraya giden ucus var mi",
	})
	if len(result) != 1 || result[0].ID != "3" {
		t.Errorf("suffixed city should match the Ankara departure, got %+v", result)
	}
}

func TestMatch_UpcomingPreferredAndSortedAscending(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	board := []model.Flight{
		{ID: "late", FlightNumber: "TK10", Direction: model.DirectionDeparture,
			DestinationCity: "Berlin", ScheduledTimeLocal: at(6 * time.Hour)},
		{ID: "past", FlightNumber: "TK11", Direction: model.DirectionDeparture,
			DestinationCity: "Berlin", ScheduledTimeLocal: at(-2 * time.Hour)},
		{ID: "soon", FlightNumber: "TK12", Direction: model.DirectionDeparture,
			DestinationCity: "Berlin", ScheduledTimeLocal: at(time.Hour)},
	}

	result := m.Match(board, MatchInput{
		Intent:     &model.Intent{City: "berlin", Direction: model.DirectionDeparture},
		Normalized: "berlin ucuslari",
	})
	if len(result) != 2 {
		t.Fatalf("expected the two upcoming flights, got %+v", result)
	}
	if result[0].ID != "soon" || result[1].ID != "late" {
		t.Errorf("upcoming flights should sort ascending, got %v then %v", result[0].ID, result[1].ID)
	}
}

func TestMatch_RecentFallbackWhenAllPast(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	board := []model.Flight{
		{ID: "old", FlightNumber: "TK20", Direction: model.DirectionArrival,
			OriginCity: "Rome", ScheduledTimeLocal: at(-2 * time.Hour)},
		{ID: "older", FlightNumber: "TK21", Direction: model.DirectionArrival,
			OriginCity: "Rome", ScheduledTimeLocal: at(-150 * time.Minute)},
	}

	result := m.Match(board, MatchInput{
		Intent:     &model.Intent{City: "rome", Direction: model.DirectionArrival},
		Normalized: "roma dan gelen ucus",
	})
	if len(result) == 0 {
		t.Fatal("recently landed flights should still be reported")
	}
	if result[0].ID != "old" {
		t.Errorf("most recent past flight should come first, got %v", result[0].ID)
	}
}

func TestMatch_ResultCap(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	board := make([]model.Flight, 0, 10)
	for i := 0; i < 10; i++ {
		board = append(board, model.Flight{
			ID: string(rune('a' + i)), FlightNumber: "TK10", Direction: model.DirectionDeparture,
			DestinationCity: "London", ScheduledTimeLocal: at(time.Duration(i+1) * time.Hour),
		})
	}

	result := m.Match(board, MatchInput{
		Intent:     &model.Intent{City: "london", Direction: model.DirectionDeparture},
		Normalized: "londra ucuslari",
	})
	if len(result) != testWeights.ResultCap {
		t.Errorf("expected result capped at %d, got %d", testWeights.ResultCap, len(result))
	}
}

func TestMatch_ScopeAlignment(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	m := newTestMatcher(now)

	result := m.Match(testBoard(now), MatchInput{
		Intent:     &model.Intent{Direction: model.DirectionDeparture},
		Normalized: "ankara ucusu",
		Scope:      model.ScopeDomestic,
	})
	if len(result) == 0 || result[0].ID != "3" {
		t.Errorf("domestic scope should surface the Ankara departure, got %+v", result)
	}
}
