package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
)

type recordingSink struct {
	snapshots chan []model.Flight
	err       error
}

func (r *recordingSink) ReplaceFlights(_ context.Context, _ string, flights []model.Flight) error {
	r.snapshots <- flights
	return r.err
}

func TestRefresher_PersistsOnStart(t *testing.T) {
	src := &stubSource{name: "live", flights: []model.Flight{{FlightNumber: "TK1"}, {FlightNumber: "TK2"}}}
	sink := &recordingSink{snapshots: make(chan []model.Flight, 1)}
	r := NewRefresher(src, sink, "IST", time.Hour, logger.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	select {
	case snap := <-sink.snapshots:
		if len(snap) != 2 {
			t.Errorf("persisted %d flights, want 2", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot was persisted")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("refresher did not stop on cancel")
	}
}

func TestRefresher_SkipsEmptyAndFailedFetches(t *testing.T) {
	sink := &recordingSink{snapshots: make(chan []model.Flight, 1)}

	for _, src := range []*stubSource{
		{name: "live", err: errors.New("upstream down")},
		{name: "live"},
	} {
		r := NewRefresher(src, sink, "IST", time.Hour, logger.NewNop(), nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		r.Run(ctx)
	}

	select {
	case snap := <-sink.snapshots:
		t.Errorf("nothing should be persisted, got %+v", snap)
	default:
	}
}
