package provider

import (
	"context"

	"flightassist/internal/model"
	"flightassist/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Source produces a snapshot of flights at the home airport. Scope
// narrows to domestic or international traffic; the empty scope means
// both.
type Source interface {
	Fetch(ctx context.Context, scope model.FlightScope) ([]model.Flight, error)
	Name() string
}

// FallbackSource queries its members in parallel and returns the
// first non-empty result in priority order. An empty board from every
// member is returned as an empty slice, never padded.
type FallbackSource struct {
	sources []Source
	log     logger.Logger
}

// NewFallbackSource orders members by priority, highest first
func NewFallbackSource(log logger.Logger, sources ...Source) *FallbackSource {
	return &FallbackSource{sources: sources, log: log}
}

func (s *FallbackSource) Name() string { return "fallback" }

func (s *FallbackSource) Fetch(ctx context.Context, scope model.FlightScope) ([]model.Flight, error) {
	results := make([][]model.Flight, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		i, src := i, src
		g.Go(func() error {
			flights, err := src.Fetch(gctx, scope)
			if err != nil {
				s.log.Warn("flight source failed", "source", src.Name(), "error", err)
				return nil // a failed member is just an empty member
			}
			results[i] = flights
			return nil
		})
	}
	_ = g.Wait()

	for i, flights := range results {
		if len(flights) > 0 {
			s.log.Debug("flight source selected",
				"source", s.sources[i].Name(), "count", len(flights))
			return flights, nil
		}
	}
	return []model.Flight{}, nil
}
