package nlu

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

type stubExtractor struct {
	name   string
	intent *model.Intent
	err    error
	delay  time.Duration
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, _ Query) (*model.Intent, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return s.intent, s.err
}

func TestRacer_RemoteWins(t *testing.T) {
	remote := &stubExtractor{
		name:   "groq",
		intent: &model.Intent{City: "london", Direction: model.DirectionArrival},
	}
	r := NewRacer([]Extractor{remote}, time.Second, logger.NewNop())

	// Rules would read this as a departure to paris; the remote's
	// fields must take precedence.
	intent, provider := r.Extract(context.Background(), Query{
		Normalized: "paris e giden ucuslar", Lang: "tr",
	})
	if provider != "groq" {
		t.Fatalf("expected groq to win, got %q", provider)
	}
	if intent.City != "london" || intent.Direction != model.DirectionArrival {
		t.Errorf("remote fields should win, got %+v", intent)
	}
}

func TestRacer_RemoteFillsFromRules(t *testing.T) {
	remote := &stubExtractor{
		name:   "groq",
		intent: &model.Intent{City: "paris"},
	}
	r := NewRacer([]Extractor{remote}, time.Second, logger.NewNop())

	intent, _ := r.Extract(context.Background(), Query{
		Normalized: "paris ten gelen tk 2695", Lang: "tr",
	})
	if intent.FlightNumber != "TK2695" {
		t.Errorf("rules should fill the flight number, got %+v", intent)
	}
	if intent.Direction != model.DirectionArrival {
		t.Errorf("rules should fill the direction, got %+v", intent)
	}
}

func TestRacer_FailedRemoteFallsBackToRules(t *testing.T) {
	remote := &stubExtractor{name: "groq", err: errors.New("upstream 500")}
	r := NewRacer([]Extractor{remote}, time.Second, logger.NewNop())

	intent, provider := r.Extract(context.Background(), Query{
		Normalized: "antalya ya giden ucuslar", Lang: "tr",
	})
	if provider != "rules" {
		t.Fatalf("expected rules fallback, got %q", provider)
	}
	if intent.City != "antalya" || intent.Direction != model.DirectionDeparture {
		t.Errorf("unexpected rule intent %+v", intent)
	}
}

func TestRacer_SlowRemoteDoesNotBlock(t *testing.T) {
	remote := &stubExtractor{
		name:   "groq",
		intent: &model.Intent{City: "rome"},
		delay:  500 * time.Millisecond,
	}
	r := NewRacer([]Extractor{remote}, 50*time.Millisecond, logger.NewNop())

	start := time.Now()
	intent, provider := r.Extract(context.Background(), Query{
		Normalized: "izmir ucuslari", Lang: "tr",
	})
	if elapsed := time.Since(start); elapsed > 300*time.Millisecond {
		t.Fatalf("racer blocked for %v", elapsed)
	}
	if provider != "rules" {
		t.Fatalf("expected rules to win the race, got %q", provider)
	}
	if intent.City != "izmir" {
		t.Errorf("unexpected intent %+v", intent)
	}
}

func TestRacer_DefaultsDirectionToDeparture(t *testing.T) {
	r := NewRacer(nil, time.Second, logger.NewNop())

	intent, _ := r.Extract(context.Background(), Query{
		Normalized: "berlin ucusu", Lang: "tr",
	})
	if intent.Direction != model.DirectionDeparture {
		t.Errorf("missing direction should default to departure, got %+v", intent)
	}
}

func TestRacer_ArrivalFromRulesIsKept(t *testing.T) {
	r := NewRacer(nil, time.Second, logger.NewNop())

	intent, _ := r.Extract(context.Background(), Query{
		Normalized: "paris ucusu indi mi", Lang: "tr",
	})
	if intent.Direction != model.DirectionArrival {
		t.Errorf("arrival phrasing must not default to departure, got %+v", intent)
	}
	if intent.City != "paris" {
		t.Errorf("unexpected city in %+v", intent)
	}
}

func TestRacer_EmptyQueryStaysEmpty(t *testing.T) {
	r := NewRacer(nil, time.Second, logger.NewNop())

	intent, _ := r.Extract(context.Background(), Query{Normalized: "", Lang: "tr"})
	if !intent.Empty() {
		t.Errorf("empty query should yield empty intent, got %+v", intent)
	}
}
