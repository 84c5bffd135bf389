package provider

import (
	"context"
	"time"

	"flightassist/internal/model"
	"flightassist/pkg/logger"
	"flightassist/pkg/metrics"
)

// FlightSink persists a flight snapshot; the Postgres repository
// satisfies it
type FlightSink interface {
	ReplaceFlights(ctx context.Context, airportCode string, flights []model.Flight) error
}

// Refresher periodically pulls the live board and persists the
// snapshot, keeping the database source warm for when the live
// providers are down.
type Refresher struct {
	source      Source
	sink        FlightSink
	airportCode string
	interval    time.Duration
	log         logger.Logger
	metrics     *metrics.Metrics
}

// NewRefresher creates a refresher; metrics may be nil
func NewRefresher(source Source, sink FlightSink, airportCode string, interval time.Duration, log logger.Logger, m *metrics.Metrics) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{
		source:      source,
		sink:        sink,
		airportCode: airportCode,
		interval:    interval,
		log:         log,
		metrics:     m,
	}
}

// Run refreshes on a fixed interval until ctx is cancelled. An
// immediate first refresh primes the database on startup.
func (r *Refresher) Run(ctx context.Context) {
	r.refresh(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, r.interval)
	defer cancel()

	flights, err := r.source.Fetch(ctx, "")
	if err != nil {
		r.log.Warn("snapshot refresh fetch failed", "error", err)
		if r.metrics != nil {
			r.metrics.ProviderErrors.WithLabelValues(r.source.Name()).Inc()
		}
		return
	}
	// An empty board is usually an upstream hiccup; keep the last
	// persisted snapshot instead
	if len(flights) == 0 {
		r.log.Warn("snapshot refresh returned no flights, keeping previous snapshot")
		return
	}

	if err := r.sink.ReplaceFlights(ctx, r.airportCode, flights); err != nil {
		r.log.Warn("snapshot persist failed", "error", err)
		return
	}
	r.log.Info("flight snapshot persisted", "flights", len(flights))
}
