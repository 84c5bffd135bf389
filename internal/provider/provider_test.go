package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

type stubSource struct {
	name    string
	flights []model.Flight
	err     error
	calls   atomic.Int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(_ context.Context, _ model.FlightScope) ([]model.Flight, error) {
	s.calls.Add(1)
	return s.flights, s.err
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func TestFallbackSource_FirstNonEmptyWins(t *testing.T) {
	live := &stubSource{name: "live", err: errors.New("upstream down")}
	db := &stubSource{name: "db", flights: []model.Flight{{FlightNumber: "TK1"}}}
	static := &stubSource{name: "static", flights: []model.Flight{{FlightNumber: "XX9"}}}

	s := NewFallbackSource(logger.NewNop(), live, db, static)
	flights, err := s.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flights) != 1 || flights[0].FlightNumber != "TK1" {
		t.Errorf("expected db flights to win, got %+v", flights)
	}
}

func TestFallbackSource_AllEmpty(t *testing.T) {
	s := NewFallbackSource(logger.NewNop(),
		&stubSource{name: "a"}, &stubSource{name: "b"})

	flights, err := s.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flights) != 0 {
		t.Errorf("expected empty result, got %+v", flights)
	}
}

func TestCachedSource_ServesFromCacheWithinTTL(t *testing.T) {
	clk := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	inner := &stubSource{name: "live", flights: []model.Flight{{FlightNumber: "TK1"}}}
	s := NewCachedSource(inner, 5*time.Minute, clk, logger.NewNop(), nil)

	for i := 0; i < 3; i++ {
		if _, err := s.Fetch(context.Background(), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := inner.calls.Load(); got != 1 {
		t.Errorf("inner source should be hit once, got %d", got)
	}

	clk.now = clk.now.Add(6 * time.Minute)
	if _, err := s.Fetch(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("expired entry should refetch, calls=%d", got)
	}
}

func TestCachedSource_ErrorsAreNotCached(t *testing.T) {
	inner := &stubSource{name: "live", err: errors.New("boom")}
	s := NewCachedSource(inner, 5*time.Minute, nil, logger.NewNop(), nil)

	for i := 0; i < 2; i++ {
		if _, err := s.Fetch(context.Background(), ""); err == nil {
			t.Fatal("expected error from inner source")
		}
	}
	if got := inner.calls.Load(); got != 2 {
		t.Errorf("failed fetches must not be cached, calls=%d", got)
	}
}

func TestStatusBoardSource_ParsesBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostFormValue("pageSize") != "100" {
			t.Errorf("unexpected pageSize %q", r.PostFormValue("pageSize"))
		}
		nature := r.PostFormValue("nature")

		w.Header().Set("Content-Type", "application/json")
		if nature == "1" {
			w.Write([]byte(`{"result":{"data":{"flights":[
				{"flightNumber":"TK2695","airlineName":"Turkish Airlines","fromCityName":"Istanbul","toCityName":"Paris","scheduledDatetime":"2025-06-01T14:30:00","estimatedDatetime":"","remark":"On Time","gate":"A7"}
			]}}}`))
			return
		}
		w.Write([]byte(`{"result":{"data":{"flights":[
			{"flightNumber":"PC350","airlineName":"Pegasus","fromCityName":"Izmir","toCityName":"Istanbul","scheduledDatetime":"2025-06-01T15:00:00","estimatedDatetime":"2025-06-01T15:10:00","remark":"Gecikmeli","carousel":"12"}
		]}}}`))
	}))
	defer srv.Close()

	s := NewStatusBoardSource(srv.URL, "IST", 100, 2*time.Second, logger.NewNop())
	flights, err := s.Fetch(context.Background(), model.ScopeInternational)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flights) != 2 {
		t.Fatalf("expected 2 flights, got %d: %+v", len(flights), flights)
	}

	byNumber := map[string]model.Flight{}
	for _, f := range flights {
		byNumber[f.FlightNumber] = f
	}
	dep := byNumber["TK2695"]
	if dep.Direction != model.DirectionDeparture || dep.DestinationCity != "Paris" || dep.Gate != "A7" {
		t.Errorf("unexpected departure mapping: %+v", dep)
	}
	arr := byNumber["PC350"]
	if arr.Direction != model.DirectionArrival || arr.Status != model.StatusDelayed || arr.Baggage != "12" {
		t.Errorf("unexpected arrival mapping: %+v", arr)
	}
}

func TestStatusBoardSource_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewStatusBoardSource(srv.URL, "IST", 100, 2*time.Second, logger.NewNop())
	if _, err := s.Fetch(context.Background(), ""); err == nil {
		t.Fatal("expected fetch error on upstream failure")
	}
}

func TestDedupFlights(t *testing.T) {
	in := []model.Flight{
		{FlightNumber: "TK1", ScheduledTimeLocal: "2025-06-01T10:00:00", Direction: model.DirectionDeparture, Gate: "A1"},
		{FlightNumber: "TK1", ScheduledTimeLocal: "2025-06-01T10:00:00", Direction: model.DirectionDeparture, Gate: "B2"},
		{FlightNumber: "TK1", ScheduledTimeLocal: "2025-06-01T10:00:00", Direction: model.DirectionArrival},
	}
	out := dedupFlights(in)
	if len(out) != 2 {
		t.Fatalf("expected 2 unique flights, got %d", len(out))
	}
	if out[0].Gate != "A1" {
		t.Errorf("first occurrence should win, got %+v", out[0])
	}
}

func TestStaticSource_ScopeFilter(t *testing.T) {
	s := NewStaticSource("IST", nil)

	all, _ := s.Fetch(context.Background(), "")
	if len(all) != 4 {
		t.Fatalf("expected 4 fixtures, got %d", len(all))
	}
	domestic, _ := s.Fetch(context.Background(), model.ScopeDomestic)
	for _, f := range domestic {
		if f.FlightNumber != "PC2101" {
			t.Errorf("unexpected domestic flight %+v", f)
		}
	}
	intl, _ := s.Fetch(context.Background(), model.ScopeInternational)
	if len(intl)+len(domestic) != 4 {
		t.Errorf("scope split should partition fixtures, got %d+%d", len(domestic), len(intl))
	}
}
