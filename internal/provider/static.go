package provider

import (
	"context"
	"time"

	"flightassist/internal/cache"
	"flightassist/internal/model"
)

// StaticSource serves a small built-in board so the assistant keeps
// answering when every real provider is down. Timestamps are produced
// relative to the clock at fetch time, so the fixtures always sit
// inside the matcher's time window.
type StaticSource struct {
	airportCode string
	clock       cache.Clock
}

// NewStaticSource creates the source; a nil clock means wall time
func NewStaticSource(airportCode string, clock cache.Clock) *StaticSource {
	if clock == nil {
		clock = cache.SystemClock{}
	}
	return &StaticSource{airportCode: airportCode, clock: clock}
}

func (s *StaticSource) Name() string { return "static" }

func (s *StaticSource) Fetch(_ context.Context, scope model.FlightScope) ([]model.Flight, error) {
	now := s.clock.Now()
	at := func(d time.Duration) string { return now.Add(d).Format(time.RFC3339) }

	flights := []model.Flight{
		{
			ID: "static-1", AirportCode: s.airportCode,
			FlightNumber: "TK1971", Airline: "Turkish Airlines",
			Direction: model.DirectionDeparture,
			OriginCity: "Istanbul", DestinationCity: "London",
			ScheduledTimeLocal: at(0), EstimatedTimeLocal: at(30 * time.Minute),
			Status: model.StatusOnTime,
		},
		{
			ID: "static-2", AirportCode: s.airportCode,
			FlightNumber: "W43819", Airline: "Wizz Air",
			Direction: model.DirectionArrival,
			OriginCity: "Tuzla", DestinationCity: "Istanbul",
			ScheduledTimeLocal: at(2 * time.Hour), EstimatedTimeLocal: at(2*time.Hour + 12*time.Minute),
			Status: model.StatusDelayed,
		},
		{
			ID: "static-3", AirportCode: s.airportCode,
			FlightNumber: "W44279", Airline: "Wizz Air",
			Direction: model.DirectionArrival,
			OriginCity: "Tuzla", DestinationCity: "Istanbul",
			ScheduledTimeLocal: at(5 * time.Hour), EstimatedTimeLocal: at(5 * time.Hour),
			Status: model.StatusOnTime,
		},
		{
			ID: "static-4", AirportCode: s.airportCode,
			FlightNumber: "PC2101", Airline: "Pegasus",
			Direction: model.DirectionDeparture,
			OriginCity: "Istanbul", DestinationCity: "Ankara",
			ScheduledTimeLocal: at(time.Hour), EstimatedTimeLocal: at(time.Hour),
			Status: model.StatusBoarding,
		},
	}

	if scope == "" {
		return flights, nil
	}
	domestic := map[string]bool{"istanbul": true, "ankara": true}
	out := flights[:0]
	for _, f := range flights {
		isDomestic := domestic[normalizeKey(f.OtherCity())]
		if (scope == model.ScopeDomestic) == isDomestic {
			out = append(out, f)
		}
	}
	return out, nil
}

func normalizeKey(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			r += 'a' - 'A'
		}
		out = append(out, r)
	}
	return string(out)
}
